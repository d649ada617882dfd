package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefault(t *testing.T) {
	config := Default()

	if config.Comfort.LowUpper != 24 || config.Comfort.MediumUpper != 30 {
		t.Errorf("expected label bins 24/30, got %g/%g", config.Comfort.LowUpper, config.Comfort.MediumUpper)
	}
	if config.Comfort.TooColdBelow != 22 || config.Comfort.TooHotAbove != 25 {
		t.Errorf("expected feedback thresholds 22/25, got %g/%g", config.Comfort.TooColdBelow, config.Comfort.TooHotAbove)
	}
	if config.Preference.InitialTemperature != 24.0 {
		t.Errorf("expected InitialTemperature 24.0, got %g", config.Preference.InitialTemperature)
	}
	if config.Preference.LearningRate != 0.1 {
		t.Errorf("expected LearningRate 0.1, got %g", config.Preference.LearningRate)
	}
	if config.Policy.High.EnergyCost != 3 || config.Policy.High.TemperatureDelta != -0.5 {
		t.Errorf("unexpected High policy %+v", config.Policy.High)
	}
	if config.Generator.Minutes != 1440 {
		t.Errorf("expected 1440 minutes, got %d", config.Generator.Minutes)
	}
	if config.Storage.Backend != "file" {
		t.Errorf("expected Storage.Backend 'file', got '%s'", config.Storage.Backend)
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected Logging.Level 'info', got '%s'", config.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
comfort:
  low_upper: 23
  too_hot_above: 26
policy:
  low:
    energy_cost: 1.5
    temperature_delta: -0.2
preference:
  learning_rate: 0.25
storage:
  backend: sqlite
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Comfort.LowUpper != 23 {
		t.Errorf("expected LowUpper 23, got %g", config.Comfort.LowUpper)
	}
	if config.Comfort.TooHotAbove != 26 {
		t.Errorf("expected TooHotAbove 26, got %g", config.Comfort.TooHotAbove)
	}
	// Unset keys keep defaults
	if config.Comfort.MediumUpper != 30 {
		t.Errorf("expected MediumUpper default 30, got %g", config.Comfort.MediumUpper)
	}
	if config.Policy.Low.EnergyCost != 1.5 || config.Policy.Low.TemperatureDelta != -0.2 {
		t.Errorf("unexpected Low policy %+v", config.Policy.Low)
	}
	if config.Policy.High.EnergyCost != 3 {
		t.Errorf("expected High cost default 3, got %g", config.Policy.High.EnergyCost)
	}
	if config.Preference.LearningRate != 0.25 {
		t.Errorf("expected LearningRate 0.25, got %g", config.Preference.LearningRate)
	}
	if config.Storage.Backend != "sqlite" {
		t.Errorf("expected backend sqlite, got %s", config.Storage.Backend)
	}
}

func TestLoadFromFile_Malformed(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("comfort: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromFile(configPath); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_MissingDefaultFileUsesDefaults(t *testing.T) {
	root := t.TempDir()
	config, err := Load(root, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if config.Comfort.LowUpper != 24 {
		t.Errorf("expected defaults, got LowUpper %g", config.Comfort.LowUpper)
	}
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	root := t.TempDir()
	if _, err := Load(root, filepath.Join(root, "nope.yaml")); err == nil {
		t.Error("expected error for missing explicit config path")
	}
}

func TestLoad_RejectsInvalidFile(t *testing.T) {
	root := t.TempDir()
	path := DefaultPath(root)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("comfort:\n  low_upper: 35\n"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(root, "")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "label bins") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	root := t.TempDir()
	path := DefaultPath(root)

	config := Default()
	config.Preference.LearningRate = 0.3
	config.Generator.Seed = 42
	if err := config.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(root, "")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.Preference.LearningRate != 0.3 {
		t.Errorf("expected LearningRate 0.3, got %g", loaded.Preference.LearningRate)
	}
	if loaded.Generator.Seed != 42 {
		t.Errorf("expected Seed 42, got %d", loaded.Generator.Seed)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("ACSIM_LOG_LEVEL", "debug")
	t.Setenv("ACSIM_STORAGE_BACKEND", "sqlite")
	t.Setenv("ACSIM_LEARNING_RATE", "0.2")
	t.Setenv("ACSIM_INITIAL_PREFERENCE", "23")
	t.Setenv("ACSIM_SEED", "7")
	t.Setenv("ACSIM_BASELINE_ENERGY", "2000")

	config := Default()
	applyEnvOverrides(config)

	if config.Logging.Level != "debug" {
		t.Errorf("expected level debug, got %s", config.Logging.Level)
	}
	if config.Storage.Backend != "sqlite" {
		t.Errorf("expected backend sqlite, got %s", config.Storage.Backend)
	}
	if config.Preference.LearningRate != 0.2 {
		t.Errorf("expected rate 0.2, got %g", config.Preference.LearningRate)
	}
	if config.Preference.InitialTemperature != 23 {
		t.Errorf("expected initial 23, got %g", config.Preference.InitialTemperature)
	}
	if config.Generator.Seed != 7 {
		t.Errorf("expected seed 7, got %d", config.Generator.Seed)
	}
	if config.Analysis.BaselineEnergy != 2000 {
		t.Errorf("expected baseline 2000, got %g", config.Analysis.BaselineEnergy)
	}
}

func TestEnvOverrides_IgnoresGarbage(t *testing.T) {
	t.Setenv("ACSIM_LEARNING_RATE", "fast")
	config := Default()
	applyEnvOverrides(config)
	if config.Preference.LearningRate != 0.1 {
		t.Errorf("expected default rate to survive, got %g", config.Preference.LearningRate)
	}
}

func TestValidate_Valid(t *testing.T) {
	config := Default()
	if err := config.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *AcsimConfig)
	}{
		{"bins out of order", func(c *AcsimConfig) { c.Comfort.MediumUpper = 20 }},
		{"ceiling below medium", func(c *AcsimConfig) { c.Comfort.LabelCeiling = 29 }},
		{"feedback inverted", func(c *AcsimConfig) { c.Comfort.TooColdBelow = 26 }},
		{"zone inverted", func(c *AcsimConfig) { c.Comfort.ZoneLow = 24 }},
		{"heating delta", func(c *AcsimConfig) { c.Policy.Low.TemperatureDelta = 0.1 }},
		{"negative cost", func(c *AcsimConfig) { c.Policy.Medium.EnergyCost = -2 }},
		{"zero rate", func(c *AcsimConfig) { c.Preference.LearningRate = 0 }},
		{"rate of one", func(c *AcsimConfig) { c.Preference.LearningRate = 1 }},
		{"negative history", func(c *AcsimConfig) { c.Preference.HistoryLimit = -1 }},
		{"negative depth", func(c *AcsimConfig) { c.Classifier.MaxDepth = -1 }},
		{"tiny split", func(c *AcsimConfig) { c.Classifier.MinSamplesSplit = 1 }},
		{"no minutes", func(c *AcsimConfig) { c.Generator.Minutes = 0 }},
		{"no occupancy", func(c *AcsimConfig) { c.Generator.MaxOccupancy = 0 }},
		{"zero baseline", func(c *AcsimConfig) { c.Analysis.BaselineEnergy = 0 }},
		{"clamp inverted", func(c *AcsimConfig) { c.Analysis.ClampMin = 30 }},
		{"nudge too large", func(c *AcsimConfig) { c.Analysis.NudgeRate = 1.5 }},
		{"no hours", func(c *AcsimConfig) { c.Analysis.MaxHours = 0 }},
		{"bad backend", func(c *AcsimConfig) { c.Storage.Backend = "postgres" }},
		{"bad level", func(c *AcsimConfig) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
