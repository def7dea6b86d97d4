package automation

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/errors"
)

// namespace for deriving stable automation identities from platform coordinates
var idNamespace = uuid.MustParse("8f1c9d2a-4b6e-4f3a-9c7d-2e5a8b1f0c3d")

// Automation is a discovered entity on a connected SaaS platform: a bot, OAuth
// app, service account, or scripted workflow. Identity is derived from the
// (organization, connection, external id) key so that re-discovery of the same
// entity always resolves to the same record.
type Automation struct {
	ID             uuid.UUID        `json:"id"`
	OrganizationID uuid.UUID        `json:"organization_id"`
	ConnectionID   uuid.UUID        `json:"connection_id"`
	ExternalID     string           `json:"external_id"`
	Name           string           `json:"name"`
	Type           Type             `json:"type"`
	Platform       Platform         `json:"platform"`
	Status         Status           `json:"status"`
	Trigger        string           `json:"trigger,omitempty"`
	Actions        []string         `json:"actions,omitempty"`
	Permissions    []string         `json:"permissions,omitempty"`
	Metadata       PlatformMetadata `json:"metadata"`
	OwnerID        *string          `json:"owner_id,omitempty"`

	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`
}

type Type string

const (
	TypeBot           Type = "bot"
	TypeWorkflow      Type = "workflow"
	TypeIntegration   Type = "integration"
	TypeWebhook       Type = "webhook"
	TypeScheduledTask Type = "scheduled_task"
	TypeTrigger       Type = "trigger"
)

func (t Type) String() string {
	return string(t)
}

func ValidateType(t Type) error {
	switch t {
	case TypeBot, TypeWorkflow, TypeIntegration, TypeWebhook, TypeScheduledTask, TypeTrigger:
		return nil
	default:
		return errors.NewValidationError("INVALID_AUTOMATION_TYPE",
			fmt.Sprintf("unknown automation type %q", string(t)))
	}
}

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusPaused   Status = "paused"
	StatusError    Status = "error"
)

func (s Status) String() string {
	return string(s)
}

type Platform string

const (
	PlatformGoogle    Platform = "google"
	PlatformSlack     Platform = "slack"
	PlatformGitHub    Platform = "github"
	PlatformMicrosoft Platform = "microsoft"
)

func (p Platform) String() string {
	return string(p)
}

func ValidatePlatform(p Platform) error {
	switch p {
	case PlatformGoogle, PlatformSlack, PlatformGitHub, PlatformMicrosoft:
		return nil
	default:
		return errors.NewValidationError("INVALID_PLATFORM",
			fmt.Sprintf("unknown platform %q", string(p)))
	}
}

// Key is the unique discovery key for an automation across runs.
type Key struct {
	OrganizationID uuid.UUID
	ConnectionID   uuid.UUID
	ExternalID     string
}

// DeriveID returns the stable identifier for a discovery key. The same key
// always yields the same UUID.
func DeriveID(key Key) uuid.UUID {
	name := key.OrganizationID.String() + "/" + key.ConnectionID.String() + "/" + key.ExternalID
	return uuid.NewSHA1(idNamespace, []byte(name))
}

// NewAutomation constructs a discovered automation from collector output.
func NewAutomation(key Key, name string, typ Type, platform Platform, meta PlatformMetadata) (*Automation, error) {
	if key.ExternalID == "" {
		return nil, errors.NewValidationError("MISSING_EXTERNAL_ID", "external id cannot be empty")
	}
	if key.OrganizationID == uuid.Nil {
		return nil, errors.NewValidationError("MISSING_ORGANIZATION", "organization id cannot be nil")
	}
	if key.ConnectionID == uuid.Nil {
		return nil, errors.NewValidationError("MISSING_CONNECTION", "connection id cannot be nil")
	}
	if err := ValidateType(typ); err != nil {
		return nil, err
	}
	if err := ValidatePlatform(platform); err != nil {
		return nil, err
	}
	if err := meta.Validate(platform); err != nil {
		return nil, err
	}

	now := time.Now()
	return &Automation{
		ID:             DeriveID(key),
		OrganizationID: key.OrganizationID,
		ConnectionID:   key.ConnectionID,
		ExternalID:     key.ExternalID,
		Name:           name,
		Type:           typ,
		Platform:       platform,
		Status:         StatusActive,
		Metadata:       meta,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// Key returns the discovery key for this automation.
func (a *Automation) Key() Key {
	return Key{
		OrganizationID: a.OrganizationID,
		ConnectionID:   a.ConnectionID,
		ExternalID:     a.ExternalID,
	}
}

// Observation carries the fields a collector may re-observe on a later run.
type Observation struct {
	Name            string
	Status          Status
	Trigger         string
	Actions         []string
	Permissions     []string
	Metadata        *PlatformMetadata
	OwnerID         *string
	LastTriggeredAt *time.Time
}

// MergeObservation folds a later collector observation into the existing
// record. The record is updated in place, never replaced: identity fields and
// CreatedAt are preserved, list fields are unioned, and timestamps only move
// forward.
func (a *Automation) MergeObservation(obs Observation) {
	if obs.Name != "" {
		a.Name = obs.Name
	}
	if obs.Status != "" {
		a.Status = obs.Status
	}
	if obs.Trigger != "" {
		a.Trigger = obs.Trigger
	}
	a.Actions = mergeStrings(a.Actions, obs.Actions)
	a.Permissions = mergeStrings(a.Permissions, obs.Permissions)
	if obs.Metadata != nil {
		a.Metadata = *obs.Metadata
	}
	if obs.OwnerID != nil {
		a.OwnerID = obs.OwnerID
	}
	if obs.LastTriggeredAt != nil {
		if a.LastTriggeredAt == nil || obs.LastTriggeredAt.After(*a.LastTriggeredAt) {
			a.LastTriggeredAt = obs.LastTriggeredAt
		}
	}
	a.UpdatedAt = time.Now()
}

// Deactivate marks an automation that disappeared from a later discovery run.
func (a *Automation) Deactivate() {
	a.Status = StatusInactive
	a.UpdatedAt = time.Now()
}

func mergeStrings(existing, observed []string) []string {
	if len(observed) == 0 {
		return existing
	}
	seen := make(map[string]struct{}, len(existing)+len(observed))
	merged := make([]string, 0, len(existing)+len(observed))
	for _, s := range existing {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			merged = append(merged, s)
		}
	}
	for _, s := range observed {
		if _, ok := seen[s]; !ok {
			seen[s] = struct{}{}
			merged = append(merged, s)
		}
	}
	sort.Strings(merged)
	return merged
}
