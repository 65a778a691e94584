package config

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `
decimal_places = 10
data_dir = "/var/lib/apecrunch"
log_level = "debug"
save_every = 5
`

// TestLoad verifies that Load reads settings from the file CONFIG_PATH names.
func TestLoad(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.toml")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	if _, err := tmp.WriteString(sampleConfig); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmp.Close()

	t.Setenv("CONFIG_PATH", tmp.Name())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DecimalPlaces != 10 {
		t.Errorf("decimal_places = %d, want 10", cfg.DecimalPlaces)
	}
	if cfg.DataDir != "/var/lib/apecrunch" {
		t.Errorf("data_dir = %q", cfg.DataDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("log_level = %q, want debug", cfg.LogLevel)
	}
	if cfg.SaveEvery != 5 {
		t.Errorf("save_every = %d, want 5", cfg.SaveEvery)
	}
	if got := cfg.HistoryPath(); got != filepath.Join("/var/lib/apecrunch", "history.dat") {
		t.Errorf("history path = %q", got)
	}
}

// TestLoadDefaults verifies that a missing config file is not an error and
// yields the documented defaults.
func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "apecrunch.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DecimalPlaces != 6 {
		t.Errorf("default decimal_places = %d, want 6", cfg.DecimalPlaces)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("default log_level = %q, want info", cfg.LogLevel)
	}
	if cfg.SaveEvery != 0 {
		t.Errorf("default save_every = %d, want 0", cfg.SaveEvery)
	}
	if cfg.DataDir == "" {
		t.Error("default data_dir is empty")
	}
}

// TestLoadPartial verifies that unset keys keep their defaults.
func TestLoadPartial(t *testing.T) {
	tmp, err := os.CreateTemp(t.TempDir(), "cfg-*.toml")
	if err != nil {
		t.Fatalf("temp file: %v", err)
	}
	if _, err := tmp.WriteString("decimal_places = 3\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	tmp.Close()

	t.Setenv("CONFIG_PATH", tmp.Name())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.DecimalPlaces != 3 {
		t.Errorf("decimal_places = %d, want 3", cfg.DecimalPlaces)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log_level = %q, want the default", cfg.LogLevel)
	}
}
