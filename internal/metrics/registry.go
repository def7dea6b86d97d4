package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/risk"
	"github.com/davidleathers/shadow-automation-backend/internal/infrastructure/telemetry"
)

// Registry holds all domain-specific metrics for the application
type Registry struct {
	meter metric.Meter

	// Discovery Metrics
	RunDuration         metric.Float64Histogram
	AutomationsFound    metric.Int64Counter
	AutomationsAssessed metric.Int64Counter
	PersistenceFailures metric.Int64Counter

	// Detection Metrics
	AIDetectionCounter metric.Int64Counter
	AssessmentCounter  metric.Int64Counter

	// Feedback Metrics
	FeedbackCounter       metric.Int64Counter
	TrainingExportCounter metric.Int64Counter
}

// NewRegistry creates a new metrics registry with all domain metrics
func NewRegistry(meterName string) (*Registry, error) {
	r := &Registry{meter: telemetry.Meter(meterName)}

	var err error

	r.RunDuration, err = r.meter.Float64Histogram(
		"shadow.discovery.run.duration",
		metric.WithDescription("Duration of discovery runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create run duration histogram: %w", err)
	}

	r.AutomationsFound, err = r.meter.Int64Counter(
		"shadow.discovery.automations.found",
		metric.WithDescription("Automations returned by platform collectors"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create automations found counter: %w", err)
	}

	r.AutomationsAssessed, err = r.meter.Int64Counter(
		"shadow.discovery.automations.assessed",
		metric.WithDescription("Automations scored and persisted"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create automations assessed counter: %w", err)
	}

	r.PersistenceFailures, err = r.meter.Int64Counter(
		"shadow.discovery.persistence.failures",
		metric.WithDescription("Automations that failed to persist during a run"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create persistence failure counter: %w", err)
	}

	r.AIDetectionCounter, err = r.meter.Int64Counter(
		"shadow.detection.ai.detected",
		metric.WithDescription("Automations classified as AI platform integrations"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ai detection counter: %w", err)
	}

	r.AssessmentCounter, err = r.meter.Int64Counter(
		"shadow.detection.assessments",
		metric.WithDescription("Risk assessments produced, labeled by level"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create assessment counter: %w", err)
	}

	r.FeedbackCounter, err = r.meter.Int64Counter(
		"shadow.feedback.received",
		metric.WithDescription("Feedback records submitted, labeled by type"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create feedback counter: %w", err)
	}

	r.TrainingExportCounter, err = r.meter.Int64Counter(
		"shadow.feedback.training.exported",
		metric.WithDescription("Training samples exported from resolved feedback"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create training export counter: %w", err)
	}

	return r, nil
}

// RecordRun records the outcome of one discovery run
func (r *Registry) RecordRun(ctx context.Context, platform string, discovered, assessed, failures int, elapsed time.Duration) {
	attrs := metric.WithAttributes(attribute.String("platform", platform))
	r.RunDuration.Record(ctx, elapsed.Seconds(), attrs)
	r.AutomationsFound.Add(ctx, int64(discovered), attrs)
	r.AutomationsAssessed.Add(ctx, int64(assessed), attrs)
	if failures > 0 {
		r.PersistenceFailures.Add(ctx, int64(failures), attrs)
	}
}

// RecordAIDetection records one AI platform detection
func (r *Registry) RecordAIDetection(ctx context.Context, provider string) {
	r.AIDetectionCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("provider", provider)))
}

// RecordAssessments records assessments produced at one risk level
func (r *Registry) RecordAssessments(ctx context.Context, level risk.Level, count int) {
	r.AssessmentCounter.Add(ctx, int64(count),
		metric.WithAttributes(attribute.String("level", level.String())))
}

// RecordFeedback records one feedback submission
func (r *Registry) RecordFeedback(ctx context.Context, feedbackType string) {
	r.FeedbackCounter.Add(ctx, 1,
		metric.WithAttributes(attribute.String("type", feedbackType)))
}

// RecordTrainingExport records the size of one training batch export
func (r *Registry) RecordTrainingExport(ctx context.Context, samples int) {
	r.TrainingExportCounter.Add(ctx, int64(samples))
}
