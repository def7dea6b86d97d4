package discovery

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/automation"
	riskdomain "github.com/davidleathers/shadow-automation-backend/internal/domain/risk"
	"github.com/davidleathers/shadow-automation-backend/internal/service/behavior"
	risksvc "github.com/davidleathers/shadow-automation-backend/internal/service/risk"
)

// Connection identifies one platform connection a run operates on.
type Connection struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Platform       automation.Platform
}

// DiscoveredApp is one raw entity a collector observed, with the signals the
// analyzers need: scope grant, metadata bundle, and an optional behavioral
// event stream.
type DiscoveredApp struct {
	ExternalID string
	Name       string
	Type       automation.Type
	Status     automation.Status
	Trigger    string
	Actions    []string
	Scopes     []string
	Metadata   automation.PlatformMetadata
	OwnerID    *string
	OwnerKind  risksvc.Ownership

	LastTriggeredAt *time.Time

	// Events is the actor's time-ordered event stream; nil when the platform
	// exposes none.
	Events []behavior.Event
}

// Collector produces raw platform signals for one connection. Implementations
// live outside this core; a failing collector returns an empty slice, not an
// error, wherever it can degrade.
type Collector interface {
	Collect(ctx context.Context, conn Connection) ([]DiscoveredApp, error)
}

// RunResult summarizes one discovery run.
type RunResult struct {
	Discovered int
	Assessed   int
	Failures   int
	ByLevel    map[riskdomain.Level]int
	Elapsed    time.Duration
}
