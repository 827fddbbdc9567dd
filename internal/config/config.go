// Package config provides configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jobrunner/georef/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Projection ProjectionConfig `mapstructure:"projection"`
	Datums     DatumsConfig     `mapstructure:"datums"`
	Frame      FrameConfig      `mapstructure:"frame"`
	Batch      BatchConfig      `mapstructure:"batch"`
	Watch      WatchConfig      `mapstructure:"watch"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ProjectionConfig selects the Transverse Mercator backend.
type ProjectionConfig struct {
	Backend           string `mapstructure:"backend"` // kruger, utm, spatialite
	SpatiaLiteLibrary string `mapstructure:"spatialite_library"`
}

// DatumsConfig holds the regional datum tables.
type DatumsConfig struct {
	Builtin       string `mapstructure:"builtin"` // spain, none
	OverridesFile string `mapstructure:"overrides_file"`
}

// FrameConfig holds the project frame settings.
type FrameConfig struct {
	Convention string       `mapstructure:"convention"` // approx, meters
	Origin     OriginConfig `mapstructure:"origin"`
}

// OriginConfig holds the project origin. Nothing is assumed when disabled.
type OriginConfig struct {
	Enabled   bool    `mapstructure:"enabled"`
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
	Rotation  float64 `mapstructure:"rotation"` // degrees
}

// BatchConfig holds batch conversion settings.
type BatchConfig struct {
	Workers   int    `mapstructure:"workers"`
	Separator string `mapstructure:"separator"` // output CSV separator
}

// WatchConfig holds inbox watcher settings.
type WatchConfig struct {
	Inbox      string        `mapstructure:"inbox"`
	Outbox     string        `mapstructure:"outbox"`
	Extensions []string      `mapstructure:"extensions"`
	Debounce   time.Duration `mapstructure:"debounce"`
	GeoJSON    bool          `mapstructure:"geojson"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Textfile string `mapstructure:"textfile"` // node exporter textfile path
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, text
}

// Defaults sets the default configuration values.
func Defaults() {
	// Projection defaults
	viper.SetDefault("projection.backend", "kruger")
	viper.SetDefault("projection.spatialite_library", "")

	// Datum defaults
	viper.SetDefault("datums.builtin", "spain")
	viper.SetDefault("datums.overrides_file", "")

	// Frame defaults
	viper.SetDefault("frame.convention", "approx")
	viper.SetDefault("frame.origin.enabled", false)
	viper.SetDefault("frame.origin.latitude", 0.0)
	viper.SetDefault("frame.origin.longitude", 0.0)
	viper.SetDefault("frame.origin.rotation", 0.0)

	// Batch defaults
	viper.SetDefault("batch.workers", 4)
	viper.SetDefault("batch.separator", ",")

	// Watch defaults
	viper.SetDefault("watch.inbox", "./inbox")
	viper.SetDefault("watch.outbox", "./outbox")
	viper.SetDefault("watch.extensions", []string{".csv", ".txt"})
	viper.SetDefault("watch.debounce", 500*time.Millisecond)
	viper.SetDefault("watch.geojson", true)

	// Metrics defaults
	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.textfile", "")

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
}

// Load loads configuration from environment and config file.
func Load(configPath string) (*Config, error) {
	Defaults()

	// Environment variable binding
	viper.SetEnvPrefix("GEOREF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Config file
	if configPath != "" {
		viper.SetConfigFile(configPath)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/georef")
	}

	// Try to read config file (not required)
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Projection.Backend {
	case "kruger", "utm", "spatialite":
	default:
		return &domain.ConfigError{Field: "projection.backend", Message: fmt.Sprintf("unknown backend %q", c.Projection.Backend)}
	}

	switch c.Frame.Convention {
	case "approx", "meters":
	default:
		return &domain.ConfigError{Field: "frame.convention", Message: fmt.Sprintf("unknown convention %q", c.Frame.Convention)}
	}

	if c.Frame.Origin.Enabled {
		if !domain.IsValidGeo(c.Frame.Origin.Latitude, c.Frame.Origin.Longitude) {
			return &domain.ConfigError{
				Field:   "frame.origin",
				Message: fmt.Sprintf("origin (%v, %v) out of range", c.Frame.Origin.Latitude, c.Frame.Origin.Longitude),
			}
		}
	}

	if c.Batch.Workers < 1 {
		return &domain.ConfigError{Field: "batch.workers", Message: "at least one worker is required"}
	}
	if _, err := c.Batch.SeparatorRune(); err != nil {
		return err
	}

	if c.Watch.Debounce < 0 {
		return &domain.ConfigError{Field: "watch.debounce", Message: "debounce must not be negative"}
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "text":
	default:
		return &domain.ConfigError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", c.Logging.Format)}
	}

	return nil
}

// ProjectOrigin returns the configured project origin, nil when disabled.
func (c *FrameConfig) ProjectOrigin() (*domain.ProjectOrigin, error) {
	if !c.Origin.Enabled {
		return nil, nil
	}
	return domain.NewProjectOrigin(c.Origin.Latitude, c.Origin.Longitude, c.Origin.Rotation)
}

// SeparatorRune returns the output separator. "tab" and "\t" select a tab.
func (c *BatchConfig) SeparatorRune() (rune, error) {
	switch c.Separator {
	case ",", "":
		return ',', nil
	case ";":
		return ';', nil
	case "tab", "\\t", "\t":
		return '\t', nil
	}
	return 0, &domain.ConfigError{Field: "batch.separator", Message: fmt.Sprintf("unsupported separator %q", c.Separator)}
}
