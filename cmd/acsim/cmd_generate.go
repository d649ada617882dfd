package main

import (
	"fmt"

	"github.com/nvandessel/acsim/internal/constants"
	"github.com/nvandessel/acsim/internal/datagen"
	"github.com/nvandessel/acsim/internal/dataio"
	"github.com/spf13/cobra"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic sensor readings",
		Long: `Generate a day of synthetic per-minute readings: a sinusoidal
temperature with Gaussian noise, uniform occupancy and uniform CO2.

The readings are written as CSV with the columns
"Time (min)", "Temperature (°C)", "Occupancy" and "Air Quality (ppm)".

Examples:
  acsim generate                          # 1440 readings to .acsim/raw_data.csv
  acsim generate --seed 42                # Reproducible stream
  acsim generate --minutes 120 --out sample.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}

			gen := e.cfg.Generator
			if cmd.Flags().Changed("minutes") {
				gen.Minutes, _ = cmd.Flags().GetInt("minutes")
			}
			if cmd.Flags().Changed("seed") {
				gen.Seed, _ = cmd.Flags().GetUint64("seed")
			}
			if gen.Minutes <= 0 {
				return fmt.Errorf("--minutes must be positive, got %d", gen.Minutes)
			}

			out, _ := cmd.Flags().GetString("out")
			path := e.resolve(out, constants.ReadingsFileName)

			readings := datagen.Generate(gen)
			if err := dataio.SaveReadings(path, readings); err != nil {
				return fmt.Errorf("failed to write readings: %w", err)
			}
			e.logger.Debug("generated readings", "count", len(readings), "seed", gen.Seed, "path", path)

			if e.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"readings": len(readings),
					"path":     path,
					"seed":     gen.Seed,
				})
			}
			printSuccess(cmd.OutOrStdout(), "Generated %d readings", len(readings))
			printMuted(cmd.OutOrStdout(), "  %s", path)
			return nil
		},
	}

	cmd.Flags().Int("minutes", constants.MinutesPerDay, "Number of readings to generate")
	cmd.Flags().Uint64("seed", 0, "Random seed (0 seeds from the clock)")
	cmd.Flags().StringP("out", "o", "", "Output CSV (default .acsim/raw_data.csv)")
	return cmd
}
