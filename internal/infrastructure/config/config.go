package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
	LogLevel    string `koanf:"log_level"`

	Database  DatabaseConfig  `koanf:"database"`
	Discovery DiscoveryConfig `koanf:"discovery"`
	Detection DetectionConfig `koanf:"detection"`
	Feedback  FeedbackConfig  `koanf:"feedback"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

type DiscoveryConfig struct {
	MaxConcurrency int `koanf:"max_concurrency"`
	// CollectRatePerMinute paces platform API calls; 0 disables pacing.
	CollectRatePerMinute int `koanf:"collect_rate_per_minute"`
}

type DetectionConfig struct {
	// ExcessiveScopeThreshold is the scope count above which a breadth
	// penalty applies to the permission score.
	ExcessiveScopeThreshold int     `koanf:"excessive_scope_threshold"`
	BehaviorMinEvents       int     `koanf:"behavior_min_events"`
	BehaviorSimilarity      float64 `koanf:"behavior_similarity"`
}

type FeedbackConfig struct {
	// Retention is how long a resolved item must age before archival.
	Retention time.Duration `koanf:"retention"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	Enabled      bool   `koanf:"enabled"`
}

func Load() (*Config, error) {
	k := koanf.New(".")

	defaults := &Config{
		Version:     "dev",
		Environment: "development",
		LogLevel:    "info",
		Database: DatabaseConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
		},
		Discovery: DiscoveryConfig{
			MaxConcurrency:       8,
			CollectRatePerMinute: 60,
		},
		Detection: DetectionConfig{
			ExcessiveScopeThreshold: 10,
			BehaviorMinEvents:       3,
			BehaviorSimilarity:      0.70,
		},
		Feedback: FeedbackConfig{
			Retention: 90 * 24 * time.Hour,
		},
	}

	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	if err := k.Load(file.Provider("configs/config.yaml"), yaml.Parser()); err != nil {
		// Config file is optional
	}

	// Only the first underscore separates section from key, so nested keys
	// like SHADOW_DETECTION_EXCESSIVE_SCOPE_THRESHOLD stay addressable.
	if err := k.Load(env.Provider("SHADOW_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "SHADOW_")), "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
