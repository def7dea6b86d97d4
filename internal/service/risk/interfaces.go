package risk

import (
	"time"

	"github.com/google/uuid"

	riskdomain "github.com/davidleathers/shadow-automation-backend/internal/domain/risk"
	"github.com/davidleathers/shadow-automation-backend/internal/service/aiplatform"
	"github.com/davidleathers/shadow-automation-backend/internal/service/behavior"
	"github.com/davidleathers/shadow-automation-backend/internal/service/scopes"
)

// Aggregator merges independent signal results into one risk assessment.
type Aggregator interface {
	// Aggregate produces the assessment for one automation. The behavioral
	// result is optional: platforms without event streams pass nil and the
	// verdict carries lower confidence.
	Aggregate(automationID uuid.UUID, classifier aiplatform.Result, scopeResult scopes.Result, behavioral *behavior.Result, ctx Context) (*riskdomain.Assessment, error)
}

// Ownership classifies who holds an automation.
type Ownership string

const (
	OwnerMember         Ownership = "member"
	OwnerServiceAccount Ownership = "service_account"
	OwnerExternal       Ownership = "external"
	OwnerUnknown        Ownership = "unknown"
)

// Context carries the contextual flags evaluated after the three signal
// sources: vendor-name matching, activity recency, and ownership pattern.
type Context struct {
	// Name and ClientID are checked against the known automation vendor list.
	Name     string
	ClientID string

	// LastActivity is the automation's most recent trigger time, nil when the
	// platform exposes none.
	LastActivity *time.Time

	Owner Ownership
}
