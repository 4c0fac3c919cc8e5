package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("defaults alone should validate: %v", err)
	}
	if cfg.Source != SourceCoinGecko {
		t.Fatalf("default source should be coingecko, got %q", cfg.Source)
	}
	if cfg.Database.Path != "data/crypto_data.db" {
		t.Fatalf("unexpected default database path: %q", cfg.Database.Path)
	}
	if cfg.Scheduler.Interval != 5*time.Minute {
		t.Fatalf("unexpected default interval: %v", cfg.Scheduler.Interval)
	}
	if cfg.Synthetic.Count != 10 || cfg.Synthetic.Seed != 42 {
		t.Fatalf("unexpected synthetic defaults: %+v", cfg.Synthetic)
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	contents := []byte("source: synthetic\nsynthetic:\n  count: 25\nscheduler:\n  interval: 1m\n")
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Source != SourceSynthetic || cfg.Synthetic.Count != 25 {
		t.Fatalf("file values should win: %+v", cfg)
	}
	if cfg.Scheduler.Interval != time.Minute {
		t.Fatalf("duration strings should decode: %v", cfg.Scheduler.Interval)
	}
}

func TestValidateRejectsUnknownSource(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load defaults: %v", err)
	}

	cfg.Source = "carrier-pigeon"
	if err := cfg.Validate(); err == nil {
		t.Fatal("an unknown source must be a configuration error")
	}

	cfg.Source = SourceSynthetic
	cfg.Database.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("an empty database path must be a configuration error")
	}
}
