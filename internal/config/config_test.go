package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Model.Name != "gpt-4o-mini" {
		t.Errorf("Model.Name = %q, want gpt-4o-mini", cfg.Model.Name)
	}
	if cfg.Render.Timeout.Duration != 90*time.Second {
		t.Errorf("Render.Timeout = %v, want 90s", cfg.Render.Timeout.Duration)
	}
	if len(cfg.Heuristics.Selectors) == 0 {
		t.Error("default heuristics should carry selectors")
	}
}

func TestLoadConfigMissingFileFallsBack(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nonexistent.toml"))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Output.Path != "listings.json" {
		t.Errorf("Output.Path = %q, want the default", cfg.Output.Path)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[model]
name = "gpt-4o"
timeout = "30s"

[output]
path = "out/venues.json"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Model.Name != "gpt-4o" {
		t.Errorf("Model.Name = %q, want gpt-4o", cfg.Model.Name)
	}
	if cfg.Model.Timeout.Duration != 30*time.Second {
		t.Errorf("Model.Timeout = %v, want 30s", cfg.Model.Timeout.Duration)
	}
	if cfg.Output.Path != "out/venues.json" {
		t.Errorf("Output.Path = %q, want the file value", cfg.Output.Path)
	}
	// Untouched sections keep their defaults
	if cfg.Output.CounterFile != "data/listing_counter.txt" {
		t.Errorf("Output.CounterFile = %q, want the default", cfg.Output.CounterFile)
	}
}
