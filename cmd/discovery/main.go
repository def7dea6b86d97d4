package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/davidleathers/shadow-automation-backend/internal/domain/automation"
	"github.com/davidleathers/shadow-automation-backend/internal/infrastructure/config"
	"github.com/davidleathers/shadow-automation-backend/internal/infrastructure/database"
	"github.com/davidleathers/shadow-automation-backend/internal/infrastructure/repository"
	"github.com/davidleathers/shadow-automation-backend/internal/infrastructure/telemetry"
	"github.com/davidleathers/shadow-automation-backend/internal/metrics"
	"github.com/davidleathers/shadow-automation-backend/internal/service/aiplatform"
	"github.com/davidleathers/shadow-automation-backend/internal/service/behavior"
	"github.com/davidleathers/shadow-automation-backend/internal/service/discovery"
	feedbacksvc "github.com/davidleathers/shadow-automation-backend/internal/service/feedback"
	risksvc "github.com/davidleathers/shadow-automation-backend/internal/service/risk"
	"github.com/davidleathers/shadow-automation-backend/internal/service/scopes"
)

func main() {
	var (
		orgID       = flag.String("org", "", "Organization ID")
		connID      = flag.String("connection", "", "Platform connection ID")
		platform    = flag.String("platform", "google", "Platform (google, slack, github, microsoft)")
		inputPath   = flag.String("input", "", "Path to a JSON export of discovered apps")
		exportLimit = flag.Int("export-training", 0, "Export up to N training samples from resolved feedback instead of running discovery")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	telConfig := telemetry.DefaultConfig()
	telConfig.ServiceName = "shadow-discovery"
	telConfig.ServiceVersion = cfg.Version
	telConfig.Environment = cfg.Environment
	if cfg.Telemetry.OTLPEndpoint != "" {
		telConfig.OTLPEndpoint = cfg.Telemetry.OTLPEndpoint
	}
	telConfig.Enabled = cfg.Telemetry.Enabled

	provider, err := telemetry.InitializeOpenTelemetry(ctx, telConfig)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := provider.Shutdown(ctx); err != nil {
			log.Printf("Failed to shutdown telemetry: %v", err)
		}
	}()

	logger, err := telemetry.SetupLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create database logger: %v", err)
	}
	defer zapLogger.Sync()

	pool, err := database.NewConnectionPool(&cfg.Database, zapLogger)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	registry, err := metrics.NewRegistry("shadow-discovery")
	if err != nil {
		log.Fatalf("Failed to create metrics registry: %v", err)
	}

	if *exportLimit > 0 {
		if err := exportTraining(ctx, cfg, pool, registry, logger, *orgID, *exportLimit); err != nil {
			log.Fatalf("Training export failed: %v", err)
		}
		return
	}

	conn, err := parseConnection(*orgID, *connID, *platform)
	if err != nil {
		log.Fatalf("Invalid connection arguments: %v", err)
	}

	collector, err := newFileCollector(*inputPath)
	if err != nil {
		log.Fatalf("Failed to open input: %v", err)
	}

	svcCfg := discovery.Config{MaxConcurrency: cfg.Discovery.MaxConcurrency}
	if rpm := cfg.Discovery.CollectRatePerMinute; rpm > 0 {
		svcCfg.CollectRate = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1)
	}

	svc := discovery.NewService(
		collector,
		repository.NewAutomationRepository(pool),
		scopes.NewEvaluator(repository.NewScopeLibraryRepository(pool), scopes.Config{
			ExcessiveScopeThreshold: cfg.Detection.ExcessiveScopeThreshold,
		}),
		aiplatform.NewClassifier(),
		behavior.NewDetector(behavior.Config{
			MinEvents:           cfg.Detection.BehaviorMinEvents,
			SimilarityThreshold: cfg.Detection.BehaviorSimilarity,
		}),
		risksvc.NewAggregator(),
		registry,
		logger,
		svcCfg,
	)

	result, err := svc.Run(ctx, conn)
	if err != nil {
		logger.ErrorContext(ctx, "discovery run finished with errors", "error", err)
		os.Exit(1)
	}
	logger.InfoContext(ctx, "discovery run finished",
		"discovered", result.Discovered,
		"assessed", result.Assessed,
		"elapsed", result.Elapsed)
}

// exportTraining writes a labeled training batch from resolved feedback to
// stdout as JSON. An empty org exports across all organizations.
func exportTraining(ctx context.Context, cfg *config.Config, pool *database.ConnectionPool, registry *metrics.Registry, logger *slog.Logger, orgIDStr string, limit int) error {
	var orgID *uuid.UUID
	if orgIDStr != "" {
		parsed, err := uuid.Parse(orgIDStr)
		if err != nil {
			return err
		}
		orgID = &parsed
	}

	svc := feedbacksvc.NewService(
		repository.NewFeedbackRepository(pool),
		repository.NewAutomationRepository(pool),
		aiplatform.NewClassifier(),
		registry,
		logger,
		cfg.Feedback.Retention,
	)

	samples, err := svc.ExportTrainingBatch(ctx, orgID, limit)
	if err != nil {
		return err
	}
	return json.NewEncoder(os.Stdout).Encode(samples)
}

func parseConnection(orgID, connID, platform string) (discovery.Connection, error) {
	org, err := uuid.Parse(orgID)
	if err != nil {
		return discovery.Connection{}, err
	}
	conn, err := uuid.Parse(connID)
	if err != nil {
		return discovery.Connection{}, err
	}
	p := automation.Platform(platform)
	if err := automation.ValidatePlatform(p); err != nil {
		return discovery.Connection{}, err
	}
	return discovery.Connection{ID: conn, OrganizationID: org, Platform: p}, nil
}

// fileCollector reads discovered apps from a JSON export, the shape platform
// collectors produce. It stands in for live platform API collectors in batch
// and replay use.
type fileCollector struct {
	apps []discovery.DiscoveredApp
}

func newFileCollector(path string) (*fileCollector, error) {
	if path == "" {
		return &fileCollector{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var apps []discovery.DiscoveredApp
	if err := json.Unmarshal(data, &apps); err != nil {
		return nil, err
	}
	return &fileCollector{apps: apps}, nil
}

func (c *fileCollector) Collect(_ context.Context, _ discovery.Connection) ([]discovery.DiscoveredApp, error) {
	return c.apps, nil
}
