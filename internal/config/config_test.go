package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Codec.Format != "cgif" {
		t.Errorf("Codec.Format = %s, want cgif", cfg.Codec.Format)
	}
	if cfg.Process.MaxCycles != DefaultMaxCycles {
		t.Errorf("Process.MaxCycles = %d, want %d", cfg.Process.MaxCycles, DefaultMaxCycles)
	}
	if cfg.Canon.Path != "" {
		t.Error("Canon.Path should be empty so persistence is opt-in")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{Process: ProcessConfig{MaxCycles: -3}}
	cfg.applyDefaults()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("Logging = %+v, want info/console", cfg.Logging)
	}
	if cfg.Process.MaxCycles != DefaultMaxCycles {
		t.Errorf("Process.MaxCycles = %d, want %d", cfg.Process.MaxCycles, DefaultMaxCycles)
	}
	if cfg.Watch.Debounce.Duration() != DefaultDebounce {
		t.Errorf("Watch.Debounce = %s, want %s", cfg.Watch.Debounce.Duration(), DefaultDebounce)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"yaml codec", func(c *Config) { c.Codec.Format = "yaml" }, ""},
		{"json logging", func(c *Config) { c.Logging.Format = "JSON" }, ""},
		{"unknown codec", func(c *Config) { c.Codec.Format = "rdf" }, "codec.format"},
		{"unknown logging", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(cfg)
		err := cfg.Validate()
		switch {
		case tt.wantErr == "" && err != nil:
			t.Errorf("%s: Validate() error: %v", tt.name, err)
		case tt.wantErr != "" && (err == nil || !strings.Contains(err.Error(), tt.wantErr)):
			t.Errorf("%s: Validate() = %v, want error mentioning %q", tt.name, err, tt.wantErr)
		}
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Codec.Format = "yaml"
	cfg.Canon.Path = filepath.Join(tmpDir, "canon.db")
	cfg.Process.MaxCycles = 50
	timeout := Duration(3 * time.Second)
	cfg.Process.Timeout = &timeout
	cfg.Trace = true

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}
	if loaded.Codec.Format != "yaml" {
		t.Errorf("Codec.Format = %s, want yaml", loaded.Codec.Format)
	}
	if loaded.Canon.Path != cfg.Canon.Path {
		t.Errorf("Canon.Path = %s, want %s", loaded.Canon.Path, cfg.Canon.Path)
	}
	if loaded.Process.MaxCycles != 50 {
		t.Errorf("Process.MaxCycles = %d, want 50", loaded.Process.MaxCycles)
	}
	if loaded.ProcessTimeout() != 3*time.Second {
		t.Errorf("ProcessTimeout() = %s, want 3s", loaded.ProcessTimeout())
	}
	if !loaded.Trace {
		t.Error("Trace should survive a round trip")
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("codec:\n  format: rdf\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, _, err := LoadFromPath(configPath); err == nil {
		t.Error("LoadFromPath() should reject an unknown codec")
	}

	if err := os.WriteFile(configPath, []byte("watch:\n  debounce: soon\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadFromPath(configPath); err == nil {
		t.Error("LoadFromPath() should reject a malformed duration")
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)

	cfg := DefaultConfig()
	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	oldWd, _ := os.Getwd()
	os.Chdir(tmpDir)
	defer os.Chdir(oldWd)

	found := FindConfigPath()
	if found == "" {
		t.Error("FindConfigPath() should find config in working directory")
	}

	t.Setenv(EnvConfigPath, "/nonexistent/path.yaml")
	found = FindConfigPath()
	if found == "" {
		t.Error("FindConfigPath() should fall back when env path doesn't exist")
	}

	explicit := filepath.Join(tmpDir, "explicit.yaml")
	if err := cfg.Save(explicit); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	t.Setenv(EnvConfigPath, explicit)
	if found = FindConfigPath(); found != explicit {
		t.Errorf("FindConfigPath() = %s, want %s", found, explicit)
	}
}

func TestSearchPathsOrder(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/x.yaml")
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	t.Setenv("HOME", "/home/u")

	want := []string{
		"/tmp/x.yaml",
		ConfigFileName,
		"/xdg/pcg/config.yaml",
		"/home/u/.config/pcg/config.yaml",
		"/etc/pcg/config.yaml",
	}
	got := SearchPaths()
	if len(got) != len(want) {
		t.Fatalf("SearchPaths() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SearchPaths()[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}
