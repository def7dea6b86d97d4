package fixtures

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/automation"
)

// AutomationBuilder builds test Automation entities
type AutomationBuilder struct {
	t          *testing.T
	key        automation.Key
	name       string
	typ        automation.Type
	platform   automation.Platform
	metadata   automation.PlatformMetadata
	scopes     []string
	ownerID    *string
	lastActive *time.Time
}

// NewAutomationBuilder creates a new AutomationBuilder with defaults
func NewAutomationBuilder(t *testing.T) *AutomationBuilder {
	t.Helper()

	return &AutomationBuilder{
		t: t,
		key: automation.Key{
			OrganizationID: uuid.New(),
			ConnectionID:   uuid.New(),
			ExternalID:     "app-" + uuid.New().String()[:8],
		},
		name:     "Workspace Sync",
		typ:      automation.TypeIntegration,
		platform: automation.PlatformGoogle,
		metadata: automation.PlatformMetadata{
			Google: &automation.GoogleMetadata{AppName: "Workspace Sync"},
		},
	}
}

// WithKey sets the discovery key
func (b *AutomationBuilder) WithKey(key automation.Key) *AutomationBuilder {
	b.key = key
	return b
}

// WithName sets the display name and metadata display text together
func (b *AutomationBuilder) WithName(name string) *AutomationBuilder {
	b.name = name
	if b.metadata.Google != nil {
		b.metadata.Google.AppName = name
	}
	return b
}

// WithType sets the automation type
func (b *AutomationBuilder) WithType(typ automation.Type) *AutomationBuilder {
	b.typ = typ
	return b
}

// WithPlatform sets the platform and resets metadata to match
func (b *AutomationBuilder) WithPlatform(platform automation.Platform, metadata automation.PlatformMetadata) *AutomationBuilder {
	b.platform = platform
	b.metadata = metadata
	return b
}

// WithScopes sets the granted OAuth scopes
func (b *AutomationBuilder) WithScopes(scopes ...string) *AutomationBuilder {
	b.scopes = scopes
	return b
}

// WithOwner sets the platform owner identifier
func (b *AutomationBuilder) WithOwner(ownerID string) *AutomationBuilder {
	b.ownerID = &ownerID
	return b
}

// WithLastTriggered sets the most recent trigger time
func (b *AutomationBuilder) WithLastTriggered(at time.Time) *AutomationBuilder {
	b.lastActive = &at
	return b
}

// Build creates the Automation entity
func (b *AutomationBuilder) Build() *automation.Automation {
	b.t.Helper()

	a, err := automation.NewAutomation(b.key, b.name, b.typ, b.platform, b.metadata)
	require.NoError(b.t, err)

	a.MergeObservation(automation.Observation{
		Permissions:     b.scopes,
		OwnerID:         b.ownerID,
		LastTriggeredAt: b.lastActive,
	})
	return a
}
