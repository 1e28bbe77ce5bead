// ABOUTME: Tests for TOML config loading, saving and defaults
// ABOUTME: Validates missing-file fallback and roundtrip persistence

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Missing file should not error, got: %v", err)
	}

	if cfg != DefaultConfig() {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestDefaultWeightsSumToOne(t *testing.T) {
	cfg := DefaultConfig()

	sum := cfg.ScoreWeight + cfg.CompatibilityWeight + cfg.QuantityWeight + cfg.TimeWeight
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("Default weights sum to %.4f, want 1.0", sum)
	}
}

func TestSaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := DefaultConfig()
	cfg.MutationRate = 0.25
	cfg.PopulationSize = 120
	cfg.AdaptiveWeights = true

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if loaded != cfg {
		t.Errorf("Roundtrip mismatch:\n got  %+v\n want %+v", loaded, cfg)
	}
}

func TestLoadConfigPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("mutation_rate = 0.3\n"), 0o644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.MutationRate != 0.3 {
		t.Errorf("Overridden value not applied: %.2f", cfg.MutationRate)
	}

	if cfg.CrossoverRate != DefaultConfig().CrossoverRate {
		t.Errorf("Unset value should keep default, got %.2f", cfg.CrossoverRate)
	}
}

func TestSharedConfig(t *testing.T) {
	sc := NewSharedConfig(DefaultConfig())

	cfg := sc.Get()
	cfg.TopK = 5
	sc.Update(cfg)

	if got := sc.Get().TopK; got != 5 {
		t.Errorf("SharedConfig update not visible: %d", got)
	}
}
