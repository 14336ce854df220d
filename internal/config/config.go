// Package config provides configuration management for the pcg runtime.
//
// Config file locations (priority order):
//  1. $PCG_CONFIG
//  2. ./pcg.yaml
//  3. $XDG_CONFIG_HOME/pcg/config.yaml
//  4. ~/.config/pcg/config.yaml
//  5. /etc/pcg/config.yaml
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"pcg/internal/codec"

	"gopkg.in/yaml.v3"
)

const (
	DefaultMaxCycles = 1000
	DefaultDebounce  = 250 * time.Millisecond
)

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		// No config found - return defaults
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return &cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Codec:   CodecConfig{Format: "cgif"},
		Process: ProcessConfig{MaxCycles: DefaultMaxCycles},
		Watch:   WatchConfig{Debounce: Duration(DefaultDebounce)},
	}
}

// applyDefaults fills in missing values with defaults
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Codec.Format == "" {
		c.Codec.Format = "cgif"
	}
	if c.Process.MaxCycles <= 0 {
		c.Process.MaxCycles = DefaultMaxCycles
	}
	if c.Watch.Debounce <= 0 {
		c.Watch.Debounce = Duration(DefaultDebounce)
	}
}

// Validate rejects settings no component can honour
func (c *Config) Validate() error {
	if _, err := codec.ByFormat(c.Codec.Format); err != nil {
		return fmt.Errorf("codec.format: %w", err)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format: unknown format %q (known: json, console)", c.Logging.Format)
	}
	return nil
}

// ProcessTimeout returns the per-run timeout, zero meaning none
func (c *Config) ProcessTimeout() time.Duration {
	if c.Process.Timeout == nil {
		return 0
	}
	return c.Process.Timeout.Duration()
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	canon := c.Canon.Path
	if canon == "" {
		canon = "in-memory"
	}
	summary := fmt.Sprintf("Logging: %s/%s, Codec: %s\n", c.Logging.Level, c.Logging.Format, c.Codec.Format)
	summary += fmt.Sprintf("Canon: %s, Max cycles: %d, Debounce: %s", canon, c.Process.MaxCycles, c.Watch.Debounce.Duration())
	if c.Trace {
		summary += ", tracing"
	}
	return summary
}
