// Package config loads and validates application configuration from YAML
// files with environment-variable overrides. It provides typed structs
// for every subsystem (Server, Indexer, Search, Logging, Metrics).
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rhea-dev/fsindex/internal/index"
)

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Indexer IndexerConfig `yaml:"indexer"`
	Search  SearchConfig  `yaml:"search"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig holds the `serve` subcommand's HTTP settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// IndexerConfig controls the index writer's segment size, default
// directory, and per-file extraction resilience.
type IndexerConfig struct {
	DataDir        string `yaml:"dataDir"`
	SegmentMaxDocs int    `yaml:"segmentMaxDocs"`
	// ExtractRetryAttempts bounds how many times a single file's
	// extraction is retried after a transient failure.
	ExtractRetryAttempts int `yaml:"extractRetryAttempts"`
	// ExtractTimeout bounds how long one file's extract-and-retry loop
	// may run before it is abandoned as a failure.
	ExtractTimeout time.Duration `yaml:"extractTimeout"`
}

// SearchConfig controls query execution defaults.
type SearchConfig struct {
	DefaultCount int `yaml:"defaultCount"`
	MaxCount     int `yaml:"maxCount"`
}

// LoggingConfig controls structured logging level and output format.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig holds the metrics setting. Enabled is loaded but not read:
// the `serve` subcommand always exposes /metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads a YAML config file (if provided) and applies
// environment-variable overrides. It returns a Config populated with
// sensible defaults for any missing values.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults. DataDir is left
// empty here and is not read by cmd/fsindex, which takes the index
// directory from its --output/--index flags (default $HOME/.indexer).
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8765,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Indexer: IndexerConfig{
			SegmentMaxDocs:       index.DefaultMaxDocs,
			ExtractRetryAttempts: 3,
			ExtractTimeout:       30 * time.Second,
		},
		Search: SearchConfig{
			DefaultCount: 20,
			MaxCount:     1000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// applyEnvOverrides reads FSINDEX_* environment variables and overrides
// the corresponding config fields.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FSINDEX_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FSINDEX_INDEXER_DATA_DIR"); v != "" {
		cfg.Indexer.DataDir = v
	}
	if v := os.Getenv("FSINDEX_INDEXER_SEGMENT_MAX_DOCS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indexer.SegmentMaxDocs = n
		}
	}
	if v := os.Getenv("FSINDEX_INDEXER_EXTRACT_RETRY_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Indexer.ExtractRetryAttempts = n
		}
	}
	if v := os.Getenv("FSINDEX_INDEXER_EXTRACT_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Indexer.ExtractTimeout = d
		}
	}
	if v := os.Getenv("FSINDEX_SEARCH_DEFAULT_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Search.DefaultCount = n
		}
	}
	if v := os.Getenv("FSINDEX_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("FSINDEX_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}
