package feedback

import (
	"context"

	"github.com/google/uuid"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/errors"
	feedbackdomain "github.com/davidleathers/shadow-automation-backend/internal/domain/feedback"
)

// ExportTrainingBatch converts resolved feedback into labeled samples. The
// label mapping is fixed: detection confirmations and missed detections are
// positive, false positives negative, risk overrides positive at half weight.
// "other" feedback carries no usable label and is skipped.
func (s *service) ExportTrainingBatch(ctx context.Context, orgID *uuid.UUID, limit int) ([]TrainingSample, error) {
	if limit <= 0 {
		return nil, errors.NewValidationError("INVALID_LIMIT", "export limit must be positive")
	}

	records, err := s.store.ListResolved(ctx, orgID, limit)
	if err != nil {
		return nil, errors.NewInternalError("listing resolved feedback").WithCause(err)
	}

	samples := make([]TrainingSample, 0, len(records))
	for _, record := range records {
		label, weight, ok := labelFor(record)
		if !ok {
			continue
		}
		labeledAt := record.CreatedAt
		if record.ResolvedAt != nil {
			labeledAt = *record.ResolvedAt
		}
		samples = append(samples, TrainingSample{
			FeedbackID:   record.ID,
			AutomationID: record.AutomationID,
			Features:     record.Snapshot,
			Label:        label,
			Weight:       weight,
			LabeledAt:    labeledAt,
		})
	}

	if s.registry != nil {
		s.registry.RecordTrainingExport(ctx, len(samples))
	}
	s.logger.InfoContext(ctx, "training batch exported",
		"records", len(records),
		"samples", len(samples))
	return samples, nil
}

// labelFor derives the implied label and training weight for one record.
func labelFor(record *feedbackdomain.Feedback) (label bool, weight float64, ok bool) {
	switch record.Type {
	case feedbackdomain.TypeCorrectDetection, feedbackdomain.TypeFalseNegative:
		label, weight = true, WeightFull
	case feedbackdomain.TypeFalsePositive:
		label, weight = false, WeightFull
	case feedbackdomain.TypeRiskTooHigh, feedbackdomain.TypeRiskTooLow:
		label, weight = true, WeightRiskOverride
	default:
		return false, 0, false
	}

	if record.Sentiment == feedbackdomain.SentimentNegative {
		weight *= SentimentNegativeMultiplier
	}

	fraction := DefaultConfidenceFraction
	if record.SubmitterConfidence != nil {
		fraction = float64(*record.SubmitterConfidence) / 100
	}
	return label, weight * fraction, true
}
