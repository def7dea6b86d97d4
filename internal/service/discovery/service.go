package discovery

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/automation"
	"github.com/davidleathers/shadow-automation-backend/internal/domain/errors"
	riskdomain "github.com/davidleathers/shadow-automation-backend/internal/domain/risk"
	"github.com/davidleathers/shadow-automation-backend/internal/infrastructure/telemetry"
	"github.com/davidleathers/shadow-automation-backend/internal/metrics"
	"github.com/davidleathers/shadow-automation-backend/internal/service/aiplatform"
	"github.com/davidleathers/shadow-automation-backend/internal/service/behavior"
	risksvc "github.com/davidleathers/shadow-automation-backend/internal/service/risk"
	"github.com/davidleathers/shadow-automation-backend/internal/service/scopes"
)

// Config tunes a run.
type Config struct {
	// MaxConcurrency bounds how many automations are analyzed at once.
	MaxConcurrency int
	// CollectRate paces collector calls across runs; nil means unpaced.
	CollectRate *rate.Limiter
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{MaxConcurrency: 8}
}

// Service runs discovery for one platform connection at a time: collect raw
// signals, fan the independent analyzers out per automation, aggregate, and
// persist each automation with its assessment atomically.
type Service struct {
	collector  Collector
	store      automation.Store
	evaluator  *scopes.Evaluator
	classifier *aiplatform.Classifier
	detector   *behavior.Detector
	aggregator risksvc.Aggregator
	registry   *metrics.Registry
	tracer     trace.Tracer
	logger     *slog.Logger
	cfg        Config
}

// NewService wires a discovery service. Evaluator, classifier, detector, and
// aggregator instances are constructed per service, never shared globals, so
// no state leaks across runs.
func NewService(
	collector Collector,
	store automation.Store,
	evaluator *scopes.Evaluator,
	classifier *aiplatform.Classifier,
	detector *behavior.Detector,
	aggregator risksvc.Aggregator,
	registry *metrics.Registry,
	logger *slog.Logger,
	cfg Config,
) *Service {
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = DefaultConfig().MaxConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		collector:  collector,
		store:      store,
		evaluator:  evaluator,
		classifier: classifier,
		detector:   detector,
		aggregator: aggregator,
		registry:   registry,
		tracer:     telemetry.Tracer("shadow.discovery"),
		logger:     logger,
		cfg:        cfg,
	}
}

// signals carries the three analyzer outputs for one automation. The sources
// share nothing; they meet only here on the way into the aggregator.
type signals struct {
	scopeResult scopes.Result
	classified  aiplatform.Result
	behavioral  *behavior.Result
}

// Run executes one discovery run. Partial failure of a signal source never
// aborts the run; persistence failures are counted and surfaced through the
// returned error while the remaining automations still complete.
func (s *Service) Run(ctx context.Context, conn Connection) (*RunResult, error) {
	ctx, span := s.tracer.Start(ctx, "discovery.run", trace.WithAttributes(
		attribute.String("connection.id", conn.ID.String()),
		attribute.String("platform", conn.Platform.String()),
	))
	defer span.End()

	start := time.Now()

	if s.cfg.CollectRate != nil {
		if err := s.cfg.CollectRate.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "waiting for collect slot")
		}
	}

	apps, err := s.collector.Collect(ctx, conn)
	if err != nil {
		// collector failure degrades to an empty run, per the error contract
		s.logger.WarnContext(ctx, "collector failed, treating run as empty",
			"connection_id", conn.ID, "error", err)
		apps = nil
	}

	result := &RunResult{
		Discovered: len(apps),
		ByLevel:    make(map[riskdomain.Level]int),
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		sem       = make(chan struct{}, s.cfg.MaxConcurrency)
		firstErr  error
		persisted int
	)

	for _, app := range apps {
		wg.Add(1)
		sem <- struct{}{}
		go func(app DiscoveredApp) {
			defer wg.Done()
			defer func() { <-sem }()

			assessment, err := s.processOne(ctx, conn, app)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failures++
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			persisted++
			result.ByLevel[assessment.Level]++
		}(app)
	}
	wg.Wait()

	result.Assessed = persisted
	result.Elapsed = time.Since(start)

	if s.registry != nil {
		s.registry.RecordRun(ctx, conn.Platform.String(), result.Discovered, result.Assessed, result.Failures, result.Elapsed)
		for level, n := range result.ByLevel {
			s.registry.RecordAssessments(ctx, level, n)
		}
	}
	s.logger.InfoContext(ctx, "discovery run complete",
		"connection_id", conn.ID,
		"platform", conn.Platform.String(),
		"discovered", result.Discovered,
		"assessed", result.Assessed,
		"failures", result.Failures,
		"elapsed", result.Elapsed)

	span.SetAttributes(
		attribute.Int("discovered", result.Discovered),
		attribute.Int("assessed", result.Assessed),
		attribute.Int("failures", result.Failures),
	)
	if firstErr != nil {
		err := errors.Wrap(firstErr, "discovery run had persistence failures")
		telemetry.RecordError(span, err)
		return result, err
	}
	return result, nil
}

// processOne analyzes and persists a single discovered automation.
func (s *Service) processOne(ctx context.Context, conn Connection, app DiscoveredApp) (*riskdomain.Assessment, error) {
	sig := s.analyze(ctx, conn, app)

	record, err := s.mergeRecord(ctx, conn, app)
	if err != nil {
		return nil, err
	}

	if sig.classified.Detected && s.registry != nil {
		s.registry.RecordAIDetection(ctx, sig.classified.Provider.String())
	}

	assessment, err := s.aggregator.Aggregate(record.ID, sig.classified, sig.scopeResult, sig.behavioral, risksvc.Context{
		Name:         app.Name,
		ClientID:     app.Metadata.ClientIdentifier(),
		LastActivity: app.LastTriggeredAt,
		Owner:        ownerOrUnknown(app.OwnerKind),
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.SaveWithAssessment(ctx, record, assessment); err != nil {
		return nil, errors.NewInternalError("persisting automation with assessment").WithCause(err)
	}
	return assessment, nil
}

// analyze fans the three signal sources out in parallel. Each one is isolated:
// a panic in one source degrades that signal to its neutral value and the
// others still complete.
func (s *Service) analyze(ctx context.Context, conn Connection, app DiscoveredApp) signals {
	var (
		sig signals
		wg  sync.WaitGroup
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer s.recoverSignal(ctx, app.ExternalID, "scope evaluation")
		sig.scopeResult = s.evaluator.Evaluate(ctx, app.Scopes, conn.Platform)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer s.recoverSignal(ctx, app.ExternalID, "ai classification")
		sig.classified = s.classifier.Classify(aiplatform.FromMetadata(app.Metadata))
	}()

	if len(app.Events) > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.recoverSignal(ctx, app.ExternalID, "behavioral analysis")
			detected := s.detector.Detect(app.Events)
			sig.behavioral = &detected
		}()
	}

	wg.Wait()
	return sig
}

func (s *Service) recoverSignal(ctx context.Context, externalID, source string) {
	if r := recover(); r != nil {
		s.logger.ErrorContext(ctx, "signal source panicked, using neutral result",
			"source", source, "external_id", externalID, "panic", r)
	}
}

// mergeRecord upserts the in-memory automation record: existing records are
// merged in place so identity and creation time survive across runs.
func (s *Service) mergeRecord(ctx context.Context, conn Connection, app DiscoveredApp) (*automation.Automation, error) {
	key := automation.Key{
		OrganizationID: conn.OrganizationID,
		ConnectionID:   conn.ID,
		ExternalID:     app.ExternalID,
	}

	obs := automation.Observation{
		Name:            app.Name,
		Status:          app.Status,
		Trigger:         app.Trigger,
		Actions:         app.Actions,
		Permissions:     app.Scopes,
		Metadata:        &app.Metadata,
		OwnerID:         app.OwnerID,
		LastTriggeredAt: app.LastTriggeredAt,
	}

	existing, err := s.store.GetByKey(ctx, key)
	if err == nil && existing != nil {
		existing.MergeObservation(obs)
		return existing, nil
	}
	if err != nil && !errors.IsType(err, errors.ErrorTypeNotFound) {
		return nil, errors.Wrap(err, "loading automation by key")
	}

	record, err := automation.NewAutomation(key, app.Name, app.Type, conn.Platform, app.Metadata)
	if err != nil {
		return nil, err
	}
	record.MergeObservation(obs)
	return record, nil
}

func ownerOrUnknown(kind risksvc.Ownership) risksvc.Ownership {
	if kind == "" {
		return risksvc.OwnerUnknown
	}
	return kind
}
