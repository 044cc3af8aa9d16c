// Package config provides configuration types and defaults for coordsys.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/zjrosen/coordsys/internal/flags"
	"github.com/zjrosen/coordsys/internal/log"
	"github.com/zjrosen/coordsys/internal/paths"
	"github.com/zjrosen/coordsys/internal/tracing"
)

// Config holds all configuration options for coordsys.
type Config struct {
	// DBPath is the SQLite database holding coordinate systems.
	// Default: ~/.config/coordsys/coordsys.db
	DBPath string `mapstructure:"db_path"`

	// SeedFile is imported into an empty database on first open (optional).
	SeedFile string `mapstructure:"seed_file"`

	// LogLevel is the minimum level written to the debug log.
	// Options: "debug", "info", "warn", "error"
	LogLevel string `mapstructure:"log_level"`

	Cache   CacheConfig     `mapstructure:"cache"`
	Tracing TracingConfig   `mapstructure:"tracing"`
	Flags   map[string]bool `mapstructure:"flags"`
}

// CacheConfig holds the application read-through cache settings.
type CacheConfig struct {
	// Enabled allows caching of resolved mapping paths. The path-cache feature
	// flag must also be on.
	Enabled bool `mapstructure:"enabled"`

	// TTLSeconds is how long a cached path query lives.
	// Default: 600
	TTLSeconds int `mapstructure:"ttl_seconds"`
}

// TracingConfig holds tracing configuration.
type TracingConfig struct {
	// Enabled controls whether tracing is active.
	// Default: false
	Enabled bool `mapstructure:"enabled"`

	// Exporter selects the trace export backend.
	// Options: "none", "file", "stdout", "otlp"
	// Default: "file"
	Exporter string `mapstructure:"exporter"`

	// FilePath is the output file for "file" exporter.
	// Default: ~/.config/coordsys/traces/traces.jsonl
	FilePath string `mapstructure:"file_path"`

	// OTLPEndpoint is the collector endpoint for "otlp" exporter.
	// Default: "localhost:4317"
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`

	// SampleRate controls trace sampling (0.0 to 1.0).
	// Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate"`
}

// ConfigDir returns ~/.config/coordsys, or an empty string if the home
// directory is unavailable.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "coordsys")
}

// DefaultDBPath returns the default database location.
func DefaultDBPath() string {
	dir := ConfigDir()
	if dir == "" {
		return paths.DBFileName
	}
	return filepath.Join(dir, paths.DBFileName)
}

// DefaultTracesFilePath returns the default path for trace file export.
// Returns an empty string if the home dir is unavailable.
func DefaultTracesFilePath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "traces", "traces.jsonl")
}

// Validate checks the whole configuration.
func Validate(cfg Config) error {
	if cfg.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if err := ValidateCache(cfg.Cache); err != nil {
		return err
	}
	if err := ValidateTracing(cfg.Tracing); err != nil {
		return err
	}
	return ValidateFlags(cfg.Flags)
}

// ValidateCache checks cache configuration for errors.
func ValidateCache(cache CacheConfig) error {
	if cache.TTLSeconds < 0 {
		return fmt.Errorf("cache.ttl_seconds must not be negative, got %d", cache.TTLSeconds)
	}
	return nil
}

// ValidateTracing checks tracing configuration for errors.
// Returns nil if the configuration is valid (empty values use defaults).
func ValidateTracing(tc TracingConfig) error {
	if tc.SampleRate < 0.0 || tc.SampleRate > 1.0 {
		return fmt.Errorf("tracing.sample_rate must be between 0.0 and 1.0, got %v", tc.SampleRate)
	}

	if tc.Exporter != "" && !slices.Contains(tracing.Exporters(), tc.Exporter) {
		return fmt.Errorf("tracing.exporter must be one of %s, got %q",
			strings.Join(tracing.Exporters(), ", "), tc.Exporter)
	}

	// Path requirements only matter when tracing is on
	if tc.Enabled {
		if tc.Exporter == tracing.ExporterFile && tc.FilePath == "" {
			return fmt.Errorf("tracing.file_path is required when exporter is \"file\"")
		}
		if tc.Exporter == tracing.ExporterOTLP && tc.OTLPEndpoint == "" {
			return fmt.Errorf("tracing.otlp_endpoint is required when exporter is \"otlp\"")
		}
	}

	return nil
}

// ValidateFlags rejects flag names coordsys does not know about, which are
// usually typos in the config file.
func ValidateFlags(values map[string]bool) error {
	for name := range values {
		if _, ok := flags.Lookup(name); !ok {
			return fmt.Errorf("flags: unknown flag %q", name)
		}
	}
	return nil
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		DBPath:   DefaultDBPath(),
		LogLevel: "debug",
		Cache: CacheConfig{
			Enabled:    true,
			TTLSeconds: 600,
		},
		Tracing: TracingConfig{
			Enabled:      false,
			Exporter:     tracing.ExporterFile,
			FilePath:     DefaultTracesFilePath(),
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
		Flags: flags.Defaults(),
	}
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# coordsys configuration

# SQLite database holding coordinate systems (default: ~/.config/coordsys/coordsys.db)
# db_path: /path/to/coordsys.db

# YAML seed imported into an empty database on first open
# seed_file: /path/to/seed.yaml

# Minimum debug log level: debug, info, warn, error
log_level: debug

# Read-through cache of resolved mapping paths
cache:
  enabled: true
  ttl_seconds: 600

# Tracing of registry loads, stores and path resolution
tracing:
  enabled: false
  exporter: file          # none, file, stdout, otlp
  # file_path: ~/.config/coordsys/traces/traces.jsonl
  # otlp_endpoint: localhost:4317
  sample_rate: 1.0

# Feature flags
flags:
  path-cache: true        # serve repeated path queries from the cache
  strict-defaults: false  # fail lookups that fall back to a non-default version
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
