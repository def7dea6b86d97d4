package scope

import (
	"context"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/automation"
)

// Severity buckets a scope's severity score using the canonical risk
// thresholds.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// LibraryEntry is read-only reference data describing one OAuth scope on one
// platform. Entries are keyed by (scope id, platform) and maintained outside
// this system.
type LibraryEntry struct {
	ScopeID     string              `json:"scope_id"`
	Platform    automation.Platform `json:"platform"`
	Score       int                 `json:"score"`
	Severity    Severity            `json:"severity"`
	DataTypes   []string            `json:"data_types,omitempty"`
	Description string              `json:"description,omitempty"`
	Alternative string              `json:"alternative,omitempty"`
}

// Reader looks up scope library entries. Implementations return
// errors.ErrScopeNotFound (or an error satisfying ErrorTypeNotFound) on a miss.
type Reader interface {
	Lookup(ctx context.Context, scopeID string, platform automation.Platform) (*LibraryEntry, error)
}
