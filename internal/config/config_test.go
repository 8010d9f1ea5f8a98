package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadAppliesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
build:
  parsed_dir: /data/parsed
  max_packets: 500
  seed: 7
sinks:
  clickhouse:
    enabled: true
    host: ch.internal
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Build.ParsedDir != "/data/parsed" || cfg.Build.MaxPackets != 500 || cfg.Build.Seed != 7 {
		t.Errorf("Overridden fields not applied: %+v", cfg.Build)
	}
	// Untouched fields keep the defaults.
	if cfg.Build.MinPackets != 10 || cfg.Build.Ratios.Train != 0.70 || cfg.Build.NumWorkers != 4 {
		t.Errorf("Default fields were lost: %+v", cfg.Build)
	}
	if !cfg.Sinks.ClickHouse.Enabled || cfg.Sinks.ClickHouse.Host != "ch.internal" {
		t.Errorf("Sink overrides not applied: %+v", cfg.Sinks.ClickHouse)
	}
	if cfg.Sinks.ClickHouse.Port != 9000 {
		t.Errorf("Expected default ClickHouse port 9000, got %d", cfg.Sinks.ClickHouse.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("Expected an error for a missing config file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "build: [not a mapping")
	if _, err := Load(path); err == nil {
		t.Fatalf("Expected an error for malformed YAML")
	}
}

func TestValidateRejectsBadRatios(t *testing.T) {
	cfg := Default()
	cfg.Build.Ratios = Ratios{Train: 0.8, Val: 0.3, Test: 0.1}
	if err := cfg.Validate(); err == nil {
		t.Errorf("Expected rejection when train+val exceeds 1")
	}

	cfg = Default()
	cfg.Build.Ratios.Val = -0.1
	if err := cfg.Validate(); err == nil {
		t.Errorf("Expected rejection of a negative ratio")
	}
}

func TestValidateRejectsBadCounts(t *testing.T) {
	cfg := Default()
	cfg.Build.MaxPackets = -1
	if err := cfg.Validate(); err == nil {
		t.Errorf("Expected rejection of negative max_packets")
	}

	cfg = Default()
	cfg.Build.NumWorkers = 0
	if err := cfg.Validate(); err == nil {
		t.Errorf("Expected rejection of zero workers")
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default configuration failed validation: %v", err)
	}
}
