package feedback

import (
	"context"
	"time"

	"github.com/google/uuid"

	feedbackdomain "github.com/davidleathers/shadow-automation-backend/internal/domain/feedback"
	"github.com/davidleathers/shadow-automation-backend/internal/domain/risk"
)

// Service is the feedback loop: it records human verdicts against detection
// results, walks each record through its one-way lifecycle, and exports
// labeled samples for external model retraining.
type Service interface {
	// Record creates a pending feedback record with a frozen snapshot of the
	// automation and its current detection state.
	Record(ctx context.Context, input SubmitInput) (*feedbackdomain.Feedback, error)

	// Transition applies a lifecycle action. Backward moves are rejected with
	// an invalid-transition error naming both statuses.
	Transition(ctx context.Context, orgID, id uuid.UUID, action Action) (*feedbackdomain.Feedback, error)

	// ExportTrainingBatch converts resolved feedback into labeled training
	// samples. A nil orgID exports across organizations.
	ExportTrainingBatch(ctx context.Context, orgID *uuid.UUID, limit int) ([]TrainingSample, error)
}

// SubmitInput is a reviewer's verdict about one automation.
type SubmitInput struct {
	OrganizationID      uuid.UUID                `validate:"required"`
	AutomationID        uuid.UUID                `validate:"required"`
	SubmittedBy         string                   `validate:"required"`
	Type                feedbackdomain.Type      `validate:"required"`
	Sentiment           feedbackdomain.Sentiment `validate:"required"`
	Comment             string                   `validate:"max=4000"`
	SuggestedLevel      *risk.Level              `validate:"omitempty,oneof=low medium high critical"`
	SubmitterConfidence *int                     `validate:"omitempty,gte=0,lte=100"`
}

// Action names a lifecycle transition.
type Action struct {
	// Kind is acknowledge, resolve, or archive.
	Kind ActionKind
	// Resolution is required for resolve actions.
	Resolution *feedbackdomain.Resolution
}

type ActionKind string

const (
	ActionAcknowledge ActionKind = "acknowledge"
	ActionResolve     ActionKind = "resolve"
	ActionArchive     ActionKind = "archive"
)

// TrainingSample is one feature/label pair exported for model retraining. The
// features are the snapshot frozen at submission time, not the automation's
// current state.
type TrainingSample struct {
	FeedbackID   uuid.UUID               `json:"feedback_id"`
	AutomationID uuid.UUID               `json:"automation_id"`
	Features     feedbackdomain.Snapshot `json:"features"`
	Label        bool                    `json:"label"`
	Weight       float64                 `json:"weight"`
	LabeledAt    time.Time               `json:"labeled_at"`
}
