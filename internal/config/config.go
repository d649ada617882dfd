// Package config provides unified configuration loading for acsim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/nvandessel/acsim/internal/constants"
	"github.com/nvandessel/acsim/internal/models"
	"gopkg.in/yaml.v3"
)

// AcsimConfig contains all acsim configuration settings.
type AcsimConfig struct {
	// Comfort is the single comfort band shared by labelling, feedback and analysis.
	Comfort ComfortConfig `json:"comfort" yaml:"comfort"`

	// Policy maps each setting to its energy cost and temperature delta.
	Policy models.CoolingPolicy `json:"policy" yaml:"policy"`

	Preference PreferenceConfig `json:"preference" yaml:"preference"`
	Classifier ClassifierConfig `json:"classifier" yaml:"classifier"`
	Generator  GeneratorConfig  `json:"generator" yaml:"generator"`
	Analysis   AnalysisConfig   `json:"analysis" yaml:"analysis"`
	Storage    StorageConfig    `json:"storage" yaml:"storage"`
	Logging    LoggingConfig    `json:"logging" yaml:"logging"`
}

// ComfortConfig holds every temperature threshold in one place.
//
// Label bins are (LabelFloor, LowUpper] -> Low, (LowUpper, MediumUpper] -> Medium
// and (MediumUpper, LabelCeiling] -> High.
type ComfortConfig struct {
	LabelFloor   float64 `json:"label_floor" yaml:"label_floor"`
	LowUpper     float64 `json:"low_upper" yaml:"low_upper"`
	MediumUpper  float64 `json:"medium_upper" yaml:"medium_upper"`
	LabelCeiling float64 `json:"label_ceiling" yaml:"label_ceiling"`

	// TooColdBelow and TooHotAbove drive simulated occupant feedback.
	TooColdBelow float64 `json:"too_cold_below" yaml:"too_cold_below"`
	TooHotAbove  float64 `json:"too_hot_above" yaml:"too_hot_above"`

	// ZoneLow and ZoneHigh bound the comfort zone used in analysis (inclusive).
	ZoneLow  float64 `json:"zone_low" yaml:"zone_low"`
	ZoneHigh float64 `json:"zone_high" yaml:"zone_high"`
}

// PreferenceConfig configures the preference tracker.
type PreferenceConfig struct {
	InitialTemperature float64 `json:"initial_temperature" yaml:"initial_temperature"`
	LearningRate       float64 `json:"learning_rate" yaml:"learning_rate"`

	// HistoryLimit keeps only the most recent updates. 0 keeps everything.
	HistoryLimit int `json:"history_limit" yaml:"history_limit"`
}

// ClassifierConfig configures decision tree training.
type ClassifierConfig struct {
	// MaxDepth limits tree depth. 0 grows until leaves are pure.
	MaxDepth        int `json:"max_depth" yaml:"max_depth"`
	MinSamplesSplit int `json:"min_samples_split" yaml:"min_samples_split"`
}

// GeneratorConfig describes the synthetic reading stream.
type GeneratorConfig struct {
	Minutes         int     `json:"minutes" yaml:"minutes"`
	BaseTemperature float64 `json:"base_temperature" yaml:"base_temperature"`
	Amplitude       float64 `json:"amplitude" yaml:"amplitude"`
	NoiseStdDev     float64 `json:"noise_stddev" yaml:"noise_stddev"`
	MaxOccupancy    int     `json:"max_occupancy" yaml:"max_occupancy"`
	AirQualityMin   float64 `json:"air_quality_min" yaml:"air_quality_min"`
	AirQualitySpan  float64 `json:"air_quality_span" yaml:"air_quality_span"`

	// Seed makes generation reproducible. 0 seeds from the clock.
	Seed uint64 `json:"seed" yaml:"seed"`
}

// AnalysisConfig configures trajectory summaries.
type AnalysisConfig struct {
	BaselineEnergy float64 `json:"baseline_energy" yaml:"baseline_energy"`

	// ScaleMinutes is the horizon total energy is scaled to.
	ScaleMinutes int `json:"scale_minutes" yaml:"scale_minutes"`

	// Dashboard transform: adjusted temperatures are nudged toward the
	// preferred temperature at NudgeRate and clamped to [ClampMin, ClampMax].
	ClampMin  float64 `json:"clamp_min" yaml:"clamp_min"`
	ClampMax  float64 `json:"clamp_max" yaml:"clamp_max"`
	NudgeRate float64 `json:"nudge_rate" yaml:"nudge_rate"`
	MaxHours  int     `json:"max_hours" yaml:"max_hours"`
}

// StorageConfig selects the run archive backend.
type StorageConfig struct {
	// Backend is "file" (JSONL, default) or "sqlite".
	Backend string `json:"backend" yaml:"backend"`
}

// LoggingConfig configures acsim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables decision logging to .acsim/decisions.jsonl.
	Level string `json:"level" yaml:"level"`
}

// Default returns an AcsimConfig with sensible defaults.
func Default() *AcsimConfig {
	return &AcsimConfig{
		Comfort: ComfortConfig{
			LabelFloor:   constants.DefaultLabelFloor,
			LowUpper:     constants.DefaultLowUpper,
			MediumUpper:  constants.DefaultMediumUpper,
			LabelCeiling: constants.DefaultLabelCeiling,
			TooColdBelow: constants.DefaultTooColdBelow,
			TooHotAbove:  constants.DefaultTooHotAbove,
			ZoneLow:      constants.DefaultComfortZoneLow,
			ZoneHigh:     constants.DefaultComfortZoneHigh,
		},
		Policy: DefaultPolicy(),
		Preference: PreferenceConfig{
			InitialTemperature: constants.DefaultInitialPreference,
			LearningRate:       constants.DefaultLearningRate,
		},
		Classifier: ClassifierConfig{
			MaxDepth:        constants.DefaultTreeMaxDepth,
			MinSamplesSplit: constants.DefaultTreeMinSamplesSplit,
		},
		Generator: GeneratorConfig{
			Minutes:         constants.MinutesPerDay,
			BaseTemperature: constants.DefaultBaseTemperature,
			Amplitude:       constants.DefaultTempAmplitude,
			NoiseStdDev:     constants.DefaultTempNoiseStdDev,
			MaxOccupancy:    constants.DefaultMaxOccupancy,
			AirQualityMin:   constants.DefaultAirQualityMin,
			AirQualitySpan:  constants.DefaultAirQualitySpan,
		},
		Analysis: AnalysisConfig{
			BaselineEnergy: constants.DefaultBaselineEnergy,
			ScaleMinutes:   constants.MinutesPerDay,
			ClampMin:       constants.DashboardClampMin,
			ClampMax:       constants.DashboardClampMax,
			NudgeRate:      constants.DashboardNudgeRate,
			MaxHours:       constants.DashboardMaxHours,
		},
		Storage: StorageConfig{
			Backend: "file",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPolicy returns the stock cooling policy.
func DefaultPolicy() models.CoolingPolicy {
	return models.CoolingPolicy{
		Low:    models.CoolingAction{EnergyCost: constants.LowEnergyCost, TemperatureDelta: constants.LowDelta},
		Medium: models.CoolingAction{EnergyCost: constants.MediumEnergyCost, TemperatureDelta: constants.MediumDelta},
		High:   models.CoolingAction{EnergyCost: constants.HighEnergyCost, TemperatureDelta: constants.HighDelta},
	}
}

// DataDir returns the acsim data directory for the given project root.
func DataDir(root string) string {
	return filepath.Join(root, constants.DataDirName)
}

// DefaultPath returns the config file location for the given project root.
func DefaultPath(root string) string {
	return filepath.Join(DataDir(root), constants.ConfigFileName)
}

// Load loads configuration for a project root.
// Order: defaults -> path (or <root>/.acsim/config.yaml when path is empty) -> environment variables.
// A missing default file is not an error; a missing explicit path is.
func Load(root, path string) (*AcsimConfig, error) {
	config := Default()

	configPath := path
	if configPath == "" {
		configPath = DefaultPath(root)
		if _, err := os.Stat(configPath); err != nil {
			configPath = ""
		}
	}

	if configPath != "" {
		fileConfig, err := LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
// Keys absent from the file keep their defaults.
func LoadFromFile(path string) (*AcsimConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Save writes the configuration as YAML, creating the parent directory.
func (c *AcsimConfig) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Validate checks that the configuration is valid.
func (c *AcsimConfig) Validate() error {
	b := c.Comfort
	if !(b.LabelFloor < b.LowUpper && b.LowUpper < b.MediumUpper && b.MediumUpper < b.LabelCeiling) {
		return fmt.Errorf("comfort label bins must be increasing: label_floor=%g low_upper=%g medium_upper=%g label_ceiling=%g",
			b.LabelFloor, b.LowUpper, b.MediumUpper, b.LabelCeiling)
	}
	if b.TooColdBelow > b.TooHotAbove {
		return fmt.Errorf("comfort.too_cold_below (%g) must not exceed comfort.too_hot_above (%g)", b.TooColdBelow, b.TooHotAbove)
	}
	if b.ZoneLow >= b.ZoneHigh {
		return fmt.Errorf("comfort.zone_low (%g) must be below comfort.zone_high (%g)", b.ZoneLow, b.ZoneHigh)
	}

	if err := c.Policy.Validate(); err != nil {
		return err
	}

	if c.Preference.LearningRate <= 0 || c.Preference.LearningRate >= 1 {
		return fmt.Errorf("preference.learning_rate must be in (0, 1), got %g", c.Preference.LearningRate)
	}
	if c.Preference.HistoryLimit < 0 {
		return fmt.Errorf("preference.history_limit must be non-negative, got %d", c.Preference.HistoryLimit)
	}

	if c.Classifier.MaxDepth < 0 {
		return fmt.Errorf("classifier.max_depth must be non-negative, got %d", c.Classifier.MaxDepth)
	}
	if c.Classifier.MinSamplesSplit < 2 {
		return fmt.Errorf("classifier.min_samples_split must be at least 2, got %d", c.Classifier.MinSamplesSplit)
	}

	if c.Generator.Minutes <= 0 {
		return fmt.Errorf("generator.minutes must be positive, got %d", c.Generator.Minutes)
	}
	if c.Generator.MaxOccupancy <= 0 {
		return fmt.Errorf("generator.max_occupancy must be positive, got %d", c.Generator.MaxOccupancy)
	}
	if c.Generator.NoiseStdDev < 0 {
		return fmt.Errorf("generator.noise_stddev must be non-negative, got %g", c.Generator.NoiseStdDev)
	}

	if c.Analysis.BaselineEnergy <= 0 {
		return fmt.Errorf("analysis.baseline_energy must be positive, got %g", c.Analysis.BaselineEnergy)
	}
	if c.Analysis.ScaleMinutes <= 0 {
		return fmt.Errorf("analysis.scale_minutes must be positive, got %d", c.Analysis.ScaleMinutes)
	}
	if c.Analysis.ClampMin >= c.Analysis.ClampMax {
		return fmt.Errorf("analysis.clamp_min (%g) must be below analysis.clamp_max (%g)", c.Analysis.ClampMin, c.Analysis.ClampMax)
	}
	if c.Analysis.NudgeRate < 0 || c.Analysis.NudgeRate > 1 {
		return fmt.Errorf("analysis.nudge_rate must be in [0, 1], got %g", c.Analysis.NudgeRate)
	}
	if c.Analysis.MaxHours < 1 {
		return fmt.Errorf("analysis.max_hours must be at least 1, got %d", c.Analysis.MaxHours)
	}

	validBackends := map[string]bool{"file": true, "sqlite": true}
	if !validBackends[c.Storage.Backend] {
		return fmt.Errorf("invalid storage backend: %s (valid: file, sqlite)", c.Storage.Backend)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *AcsimConfig) {
	if v := os.Getenv("ACSIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("ACSIM_STORAGE_BACKEND"); v != "" {
		config.Storage.Backend = v
	}

	if v := os.Getenv("ACSIM_LEARNING_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Preference.LearningRate = f
		}
	}

	if v := os.Getenv("ACSIM_INITIAL_PREFERENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Preference.InitialTemperature = f
		}
	}

	if v := os.Getenv("ACSIM_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			config.Generator.Seed = n
		}
	}

	if v := os.Getenv("ACSIM_BASELINE_ENERGY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Analysis.BaselineEnergy = f
		}
	}
}
