package main

import (
	"errors"
	"fmt"

	"github.com/nvandessel/acsim/internal/classifier"
	"github.com/nvandessel/acsim/internal/constants"
	"github.com/spf13/cobra"
)

func newPredictCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Classify one reading with the saved model",
		Long: `Predict the cooling setting for a single reading using the model saved
by 'acsim train', and show the policy action it leads to.

Examples:
  acsim predict --temp 31 --occupancy 4 --air 900
  acsim predict --temp 23 --occupancy 0 --air 450 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			temp, _ := cmd.Flags().GetFloat64("temp")
			occupancy, _ := cmd.Flags().GetInt("occupancy")
			air, _ := cmd.Flags().GetFloat64("air")

			if occupancy < 0 {
				return fmt.Errorf("--occupancy must be non-negative, got %d", occupancy)
			}

			tree, err := classifier.Load(e.dataPath(constants.ModelFileName))
			if err != nil {
				if errors.Is(err, classifier.ErrModelNotTrained) {
					return fmt.Errorf("no trained model; run 'acsim train' first: %w", err)
				}
				return fmt.Errorf("failed to load model: %w", err)
			}

			setting, err := tree.Predict(temp, occupancy, air)
			if err != nil {
				return err
			}
			action, err := e.cfg.Policy.Action(setting)
			if err != nil {
				return err
			}

			if e.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"setting":           setting,
					"energy_cost":       action.EnergyCost,
					"temperature_delta": action.TemperatureDelta,
					"adjusted_temp":     temp + action.TemperatureDelta,
				})
			}

			w := cmd.OutOrStdout()
			printInfo(w, "Setting: %s", renderSetting(setting))
			printField(w, "energy cost", "%g per minute", action.EnergyCost)
			printField(w, "temperature", "%.2f°C -> %.2f°C", temp, temp+action.TemperatureDelta)
			return nil
		},
	}

	cmd.Flags().Float64("temp", 0, "Indoor temperature in °C (required)")
	cmd.Flags().Int("occupancy", 0, "Number of people present")
	cmd.Flags().Float64("air", 0, "CO2 concentration in ppm")
	cmd.MarkFlagRequired("temp")
	return cmd
}
