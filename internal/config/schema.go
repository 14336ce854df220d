package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version int           `yaml:"version"`
	Logging LoggingConfig `yaml:"logging"`
	Codec   CodecConfig   `yaml:"codec"`
	Canon   CanonConfig   `yaml:"canon"`
	Process ProcessConfig `yaml:"process"`
	Watch   WatchConfig   `yaml:"watch"`
	Trace   bool          `yaml:"trace"` // log every sub-actor and rule firing
}

// LoggingConfig selects the zap logger flavour
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// CodecConfig holds graph rendering settings
type CodecConfig struct {
	Format           string `yaml:"format"` // cgif, yaml, json
	SuppressComments bool   `yaml:"suppress_comments"`
}

// CanonConfig holds canon persistence settings. An empty path disables it.
type CanonConfig struct {
	Path string `yaml:"path"`
}

// ProcessConfig bounds process activations
type ProcessConfig struct {
	MaxCycles int       `yaml:"max_cycles"`
	Timeout   *Duration `yaml:"timeout,omitempty"`
}

// WatchConfig tunes knowledge file reloads
type WatchConfig struct {
	Debounce Duration `yaml:"debounce"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
