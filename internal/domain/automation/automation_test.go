package automation

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validKey() Key {
	return Key{
		OrganizationID: uuid.New(),
		ConnectionID:   uuid.New(),
		ExternalID:     "app-1234",
	}
}

func googleMeta() PlatformMetadata {
	return PlatformMetadata{
		Google: &GoogleMetadata{
			ClientID: "1234.apps.googleusercontent.com",
			AppName:  "Sheet Sync",
		},
	}
}

func TestNewAutomation(t *testing.T) {
	tests := []struct {
		name      string
		key       Key
		typ       Type
		platform  Platform
		meta      PlatformMetadata
		wantError bool
	}{
		{
			name:     "valid google integration",
			key:      validKey(),
			typ:      TypeIntegration,
			platform: PlatformGoogle,
			meta:     googleMeta(),
		},
		{
			name:      "empty external id",
			key:       Key{OrganizationID: uuid.New(), ConnectionID: uuid.New()},
			typ:       TypeBot,
			platform:  PlatformGoogle,
			meta:      googleMeta(),
			wantError: true,
		},
		{
			name:      "unknown type",
			key:       validKey(),
			typ:       Type("cron"),
			platform:  PlatformGoogle,
			meta:      googleMeta(),
			wantError: true,
		},
		{
			name:      "unknown platform",
			key:       validKey(),
			typ:       TypeBot,
			platform:  Platform("notion"),
			meta:      googleMeta(),
			wantError: true,
		},
		{
			name:      "metadata variant mismatch",
			key:       validKey(),
			typ:       TypeBot,
			platform:  PlatformSlack,
			meta:      googleMeta(),
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := NewAutomation(tt.key, "test", tt.typ, tt.platform, tt.meta)
			if tt.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, StatusActive, a.Status)
			assert.Equal(t, DeriveID(tt.key), a.ID)
		})
	}
}

func TestDeriveID_StableAcrossRuns(t *testing.T) {
	key := validKey()
	assert.Equal(t, DeriveID(key), DeriveID(key))

	other := key
	other.ExternalID = "app-5678"
	assert.NotEqual(t, DeriveID(key), DeriveID(other))
}

func TestMergeObservation(t *testing.T) {
	a, err := NewAutomation(validKey(), "Sheet Sync", TypeIntegration, PlatformGoogle, googleMeta())
	require.NoError(t, err)
	a.Permissions = []string{"drive.readonly"}

	earlier := time.Now().Add(-48 * time.Hour)
	a.LastTriggeredAt = &earlier

	later := time.Now().Add(-time.Hour)
	owner := "ops@example.com"
	a.MergeObservation(Observation{
		Name:            "Sheet Sync v2",
		Status:          StatusPaused,
		Permissions:     []string{"gmail.readonly", "drive.readonly"},
		OwnerID:         &owner,
		LastTriggeredAt: &later,
	})

	assert.Equal(t, "Sheet Sync v2", a.Name)
	assert.Equal(t, StatusPaused, a.Status)
	assert.ElementsMatch(t, []string{"drive.readonly", "gmail.readonly"}, a.Permissions)
	assert.Equal(t, &owner, a.OwnerID)
	assert.True(t, a.LastTriggeredAt.Equal(later))

	// a stale observation never moves last-triggered backward
	a.MergeObservation(Observation{LastTriggeredAt: &earlier})
	assert.True(t, a.LastTriggeredAt.Equal(later))
}

func TestMergeObservation_PreservesIdentity(t *testing.T) {
	key := validKey()
	a, err := NewAutomation(key, "Bot", TypeBot, PlatformGoogle, googleMeta())
	require.NoError(t, err)
	created := a.CreatedAt

	a.MergeObservation(Observation{Name: "Renamed Bot"})

	assert.Equal(t, key, a.Key())
	assert.Equal(t, DeriveID(key), a.ID)
	assert.Equal(t, created, a.CreatedAt)
}

func TestPlatformMetadata_Validate(t *testing.T) {
	var empty PlatformMetadata
	assert.Error(t, empty.Validate(PlatformGoogle))

	both := PlatformMetadata{
		Google: &GoogleMetadata{ClientID: "x"},
		Slack:  &SlackMetadata{AppID: "A1"},
	}
	assert.Error(t, both.Validate(PlatformGoogle))

	slack := PlatformMetadata{Slack: &SlackMetadata{AppID: "A1"}}
	assert.NoError(t, slack.Validate(PlatformSlack))
	assert.Error(t, slack.Validate(PlatformGitHub))
}

func TestPlatformMetadata_Accessors(t *testing.T) {
	m := PlatformMetadata{
		Google: &GoogleMetadata{
			ClientID:     "client-1",
			AppName:      "ChatGPT Connector",
			ScriptSource: "function onOpen() {}",
		},
	}
	assert.Equal(t, "ChatGPT Connector", m.DisplayText())
	assert.Equal(t, "client-1", m.ClientIdentifier())
	assert.Equal(t, "function onOpen() {}", m.SourceCode())
}
