package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/nvandessel/acsim/internal/config"
	"github.com/nvandessel/acsim/internal/models"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage acsim configuration",
		Long: `View and modify acsim configuration settings.

Configuration is stored in <root>/.acsim/config.yaml (or the --config path).
Environment variables (ACSIM_*) override the file when commands run, but
'config set' only edits the file.

Examples:
  acsim config list                            # Show all settings
  acsim config get preference.learning_rate    # Get a specific setting
  acsim config set storage.backend sqlite      # Set a setting
  acsim config set comfort.too_hot_above 26`,
	}

	cmd.AddCommand(
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
	)

	return cmd
}

// configFile returns the config path for the command and the configuration
// stored there, or defaults when the file does not exist yet.
func configFile(cmd *cobra.Command) (string, *config.AcsimConfig, error) {
	root, _ := cmd.Flags().GetString("root")
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		path = config.DefaultPath(root)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, config.Default(), nil
	}
	cfg, err := config.LoadFromFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load config: %w", err)
	}
	return path, cfg, nil
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			path, cfg, err := configFile(cmd)
			if err != nil {
				return err
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), cfg)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Configuration (%s):\n\n", path)
			for _, key := range configKeyNames() {
				fmt.Fprintf(w, "  %-34s %v\n", key+":", configKeys[key].get(cfg))
			}
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]

			_, cfg, err := configFile(cmd)
			if err != nil {
				return err
			}

			value, found := getConfigValue(cfg, key)
			if !found {
				return fmt.Errorf("unknown configuration key: %s", key)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"key":   key,
					"value": value,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			key := args[0]
			value := args[1]

			path, cfg, err := configFile(cmd)
			if err != nil {
				return err
			}

			if err := setConfigValue(cfg, key, value); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid value for %s: %w", key, err)
			}

			if err := cfg.Save(path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"status": "updated",
					"key":    key,
					"value":  value,
				})
			}
			printSuccess(cmd.OutOrStdout(), "Set %s = %s", key, value)
			return nil
		},
	}
}

// configKey reads and writes one dotted configuration key.
type configKey struct {
	get func(*config.AcsimConfig) any
	set func(*config.AcsimConfig, string) error
}

func floatKey(field func(*config.AcsimConfig) *float64) configKey {
	return configKey{
		get: func(c *config.AcsimConfig) any { return *field(c) },
		set: func(c *config.AcsimConfig, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("invalid number: %s", v)
			}
			*field(c) = f
			return nil
		},
	}
}

func intKey(field func(*config.AcsimConfig) *int) configKey {
	return configKey{
		get: func(c *config.AcsimConfig) any { return *field(c) },
		set: func(c *config.AcsimConfig, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid integer: %s", v)
			}
			*field(c) = n
			return nil
		},
	}
}

func stringKey(field func(*config.AcsimConfig) *string) configKey {
	return configKey{
		get: func(c *config.AcsimConfig) any { return *field(c) },
		set: func(c *config.AcsimConfig, v string) error {
			*field(c) = v
			return nil
		},
	}
}

func policyKeys(name string, action func(*config.AcsimConfig) *models.CoolingAction) map[string]configKey {
	return map[string]configKey{
		"policy." + name + ".energy_cost":       floatKey(func(c *config.AcsimConfig) *float64 { return &action(c).EnergyCost }),
		"policy." + name + ".temperature_delta": floatKey(func(c *config.AcsimConfig) *float64 { return &action(c).TemperatureDelta }),
	}
}

var configKeys = func() map[string]configKey {
	keys := map[string]configKey{
		"comfort.label_floor":    floatKey(func(c *config.AcsimConfig) *float64 { return &c.Comfort.LabelFloor }),
		"comfort.low_upper":      floatKey(func(c *config.AcsimConfig) *float64 { return &c.Comfort.LowUpper }),
		"comfort.medium_upper":   floatKey(func(c *config.AcsimConfig) *float64 { return &c.Comfort.MediumUpper }),
		"comfort.label_ceiling":  floatKey(func(c *config.AcsimConfig) *float64 { return &c.Comfort.LabelCeiling }),
		"comfort.too_cold_below": floatKey(func(c *config.AcsimConfig) *float64 { return &c.Comfort.TooColdBelow }),
		"comfort.too_hot_above":  floatKey(func(c *config.AcsimConfig) *float64 { return &c.Comfort.TooHotAbove }),
		"comfort.zone_low":       floatKey(func(c *config.AcsimConfig) *float64 { return &c.Comfort.ZoneLow }),
		"comfort.zone_high":      floatKey(func(c *config.AcsimConfig) *float64 { return &c.Comfort.ZoneHigh }),

		"preference.initial_temperature": floatKey(func(c *config.AcsimConfig) *float64 { return &c.Preference.InitialTemperature }),
		"preference.learning_rate":       floatKey(func(c *config.AcsimConfig) *float64 { return &c.Preference.LearningRate }),
		"preference.history_limit":       intKey(func(c *config.AcsimConfig) *int { return &c.Preference.HistoryLimit }),

		"classifier.max_depth":         intKey(func(c *config.AcsimConfig) *int { return &c.Classifier.MaxDepth }),
		"classifier.min_samples_split": intKey(func(c *config.AcsimConfig) *int { return &c.Classifier.MinSamplesSplit }),

		"generator.minutes":          intKey(func(c *config.AcsimConfig) *int { return &c.Generator.Minutes }),
		"generator.base_temperature": floatKey(func(c *config.AcsimConfig) *float64 { return &c.Generator.BaseTemperature }),
		"generator.amplitude":        floatKey(func(c *config.AcsimConfig) *float64 { return &c.Generator.Amplitude }),
		"generator.noise_stddev":     floatKey(func(c *config.AcsimConfig) *float64 { return &c.Generator.NoiseStdDev }),
		"generator.max_occupancy":    intKey(func(c *config.AcsimConfig) *int { return &c.Generator.MaxOccupancy }),
		"generator.air_quality_min":  floatKey(func(c *config.AcsimConfig) *float64 { return &c.Generator.AirQualityMin }),
		"generator.air_quality_span": floatKey(func(c *config.AcsimConfig) *float64 { return &c.Generator.AirQualitySpan }),
		"generator.seed": {
			get: func(c *config.AcsimConfig) any { return c.Generator.Seed },
			set: func(c *config.AcsimConfig, v string) error {
				n, err := strconv.ParseUint(v, 10, 64)
				if err != nil {
					return fmt.Errorf("invalid seed: %s", v)
				}
				c.Generator.Seed = n
				return nil
			},
		},

		"analysis.baseline_energy": floatKey(func(c *config.AcsimConfig) *float64 { return &c.Analysis.BaselineEnergy }),
		"analysis.scale_minutes":   intKey(func(c *config.AcsimConfig) *int { return &c.Analysis.ScaleMinutes }),
		"analysis.clamp_min":       floatKey(func(c *config.AcsimConfig) *float64 { return &c.Analysis.ClampMin }),
		"analysis.clamp_max":       floatKey(func(c *config.AcsimConfig) *float64 { return &c.Analysis.ClampMax }),
		"analysis.nudge_rate":      floatKey(func(c *config.AcsimConfig) *float64 { return &c.Analysis.NudgeRate }),
		"analysis.max_hours":       intKey(func(c *config.AcsimConfig) *int { return &c.Analysis.MaxHours }),

		"storage.backend": stringKey(func(c *config.AcsimConfig) *string { return &c.Storage.Backend }),
		"logging.level":   stringKey(func(c *config.AcsimConfig) *string { return &c.Logging.Level }),
	}
	for name, action := range map[string]func(*config.AcsimConfig) *models.CoolingAction{
		"low":    func(c *config.AcsimConfig) *models.CoolingAction { return &c.Policy.Low },
		"medium": func(c *config.AcsimConfig) *models.CoolingAction { return &c.Policy.Medium },
		"high":   func(c *config.AcsimConfig) *models.CoolingAction { return &c.Policy.High },
	} {
		for k, v := range policyKeys(name, action) {
			keys[k] = v
		}
	}
	return keys
}()

func configKeyNames() []string {
	names := make([]string, 0, len(configKeys))
	for k := range configKeys {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// getConfigValue retrieves a configuration value by dot-notation key.
func getConfigValue(cfg *config.AcsimConfig, key string) (any, bool) {
	k, ok := configKeys[key]
	if !ok {
		return nil, false
	}
	return k.get(cfg), true
}

// setConfigValue sets a configuration value by dot-notation key.
func setConfigValue(cfg *config.AcsimConfig, key, value string) error {
	k, ok := configKeys[key]
	if !ok {
		return fmt.Errorf("unknown configuration key: %s", key)
	}
	return k.set(cfg, value)
}
