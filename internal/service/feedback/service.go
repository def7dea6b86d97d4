package feedback

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/automation"
	"github.com/davidleathers/shadow-automation-backend/internal/domain/errors"
	feedbackdomain "github.com/davidleathers/shadow-automation-backend/internal/domain/feedback"
	"github.com/davidleathers/shadow-automation-backend/internal/metrics"
	"github.com/davidleathers/shadow-automation-backend/internal/service/aiplatform"
)

// service implements the Service interface.
type service struct {
	store      feedbackdomain.Store
	automata   automation.Store
	classifier *aiplatform.Classifier
	validate   *validator.Validate
	registry   *metrics.Registry
	logger     *slog.Logger
	retention  time.Duration
}

// NewService creates the feedback loop service. Retention gates how soon a
// resolved record may be archived; zero means the default window. A nil
// registry disables metrics.
func NewService(store feedbackdomain.Store, automata automation.Store, classifier *aiplatform.Classifier, registry *metrics.Registry, logger *slog.Logger, retention time.Duration) Service {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &service{
		store:      store,
		automata:   automata,
		classifier: classifier,
		validate:   validator.New(),
		registry:   registry,
		logger:     logger,
		retention:  retention,
	}
}

func (s *service) Record(ctx context.Context, input SubmitInput) (*feedbackdomain.Feedback, error) {
	if err := s.validate.Struct(input); err != nil {
		return nil, errors.NewValidationError("INVALID_FEEDBACK_INPUT",
			"feedback submission failed validation").WithCause(err)
	}

	auto, err := s.automata.GetByID(ctx, input.AutomationID)
	if err != nil {
		return nil, errors.Wrap(err, "loading automation for feedback")
	}
	if auto.OrganizationID != input.OrganizationID {
		return nil, errors.NewForbiddenError("automation belongs to a different organization")
	}

	record, err := feedbackdomain.New(input.OrganizationID, input.AutomationID,
		input.SubmittedBy, input.Type, input.Sentiment, s.snapshot(ctx, auto))
	if err != nil {
		return nil, err
	}
	record.Comment = input.Comment
	record.SuggestedLevel = input.SuggestedLevel
	record.SubmitterConfidence = input.SubmitterConfidence

	if err := s.store.Create(ctx, record); err != nil {
		return nil, errors.NewInternalError("saving feedback").WithCause(err)
	}

	if s.registry != nil {
		s.registry.RecordFeedback(ctx, string(record.Type))
	}
	s.logger.InfoContext(ctx, "feedback recorded",
		"feedback_id", record.ID,
		"automation_id", record.AutomationID,
		"type", string(record.Type))
	return record, nil
}

func (s *service) Transition(ctx context.Context, orgID, id uuid.UUID, action Action) (*feedbackdomain.Feedback, error) {
	record, err := s.store.Get(ctx, orgID, id)
	if err != nil {
		return nil, errors.Wrap(err, "loading feedback")
	}

	switch action.Kind {
	case ActionAcknowledge:
		err = record.Acknowledge()
	case ActionResolve:
		if action.Resolution == nil {
			return nil, errors.NewValidationError("MISSING_RESOLUTION",
				"resolve action requires a resolution payload")
		}
		err = record.Resolve(*action.Resolution)
	case ActionArchive:
		err = record.Archive(s.retention)
	default:
		return nil, errors.NewValidationError("INVALID_ACTION",
			"unknown feedback action")
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.Update(ctx, record); err != nil {
		return nil, errors.NewInternalError("saving feedback transition").WithCause(err)
	}

	s.logger.InfoContext(ctx, "feedback transitioned",
		"feedback_id", record.ID,
		"status", record.Status.String())
	return record, nil
}

// snapshot freezes the automation plus its current detection state. The
// classifier re-runs here; it is pure, so the result matches what any reviewer
// saw for the same metadata.
func (s *service) snapshot(ctx context.Context, auto *automation.Automation) feedbackdomain.Snapshot {
	snap := feedbackdomain.Snapshot{
		AutomationName: auto.Name,
		Platform:       auto.Platform.String(),
		AutomationType: auto.Type.String(),
		Permissions:    auto.Permissions,
	}

	detection := s.classifier.Classify(aiplatform.FromMetadata(auto.Metadata))
	snap.AIDetected = detection.Detected
	snap.AIProvider = detection.Provider.String()
	snap.AIConfidence = detection.Confidence

	if assessment, err := s.automata.LatestAssessment(ctx, auto.ID); err == nil && assessment != nil {
		snap.RiskLevel = assessment.Level
		snap.RiskScore = assessment.Score
		snap.Factors = assessment.Factors
	}
	return snap
}
