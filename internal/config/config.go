// Package config loads the CLI's YAML configuration file.
package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration. Flags override file values.
type Config struct {
	// Endpoint selects the backend: sqlite:<path>, sqlite::memory:,
	// a bare path, or a postgres:// URL. Endpoints with a trailing
	// colon, such as sqlite::memory:, must be quoted to stay a single
	// YAML scalar.
	Endpoint string `yaml:"endpoint"`

	// LogLevel is one of debug, info, warn, error. Default info.
	LogLevel string `yaml:"log_level"`
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("config %s: endpoint is required", path)
	}
	if _, err := cfg.SlogLevel(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &cfg, nil
}

// SlogLevel maps the configured level name to a slog.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	switch c.LogLevel {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
}
