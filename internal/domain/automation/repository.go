package automation

import (
	"context"

	"github.com/google/uuid"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/risk"
)

// Store persists discovered automations and their assessment history.
type Store interface {
	// SaveWithAssessment upserts the automation by its discovery key and
	// appends the assessment in a single atomic write. A failure leaves
	// neither half applied.
	SaveWithAssessment(ctx context.Context, a *Automation, assessment *risk.Assessment) error

	// GetByKey retrieves an automation by its discovery key.
	GetByKey(ctx context.Context, key Key) (*Automation, error)

	// GetByID retrieves an automation by its derived identifier.
	GetByID(ctx context.Context, id uuid.UUID) (*Automation, error)

	// ListByConnection lists automations discovered through one platform connection.
	ListByConnection(ctx context.Context, connectionID uuid.UUID) ([]*Automation, error)

	// LatestAssessment returns the most recent assessment for an automation.
	LatestAssessment(ctx context.Context, automationID uuid.UUID) (*risk.Assessment, error)
}
