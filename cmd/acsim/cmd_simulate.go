package main

import (
	"errors"
	"fmt"

	"github.com/nvandessel/acsim/internal/analysis"
	"github.com/nvandessel/acsim/internal/classifier"
	"github.com/nvandessel/acsim/internal/constants"
	"github.com/nvandessel/acsim/internal/dataio"
	"github.com/nvandessel/acsim/internal/logging"
	"github.com/nvandessel/acsim/internal/models"
	"github.com/nvandessel/acsim/internal/simulation"
	"github.com/nvandessel/acsim/internal/store"
	"github.com/spf13/cobra"
)

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the controller over a readings file",
		Long: `Train the classifier on the readings file, then replay the readings one
minute at a time: predict a setting, apply the cooling policy and record
the adjusted temperature.

Every record's "Energy Usage" is the run's average energy per minute.
The trajectory is written as CSV (and optionally as an Arrow IPC file) and
the run is archived so it can be browsed with 'acsim runs'.

Examples:
  acsim simulate
  acsim simulate --use-model              # Use .acsim/model.acm instead of retraining
  acsim simulate --arrow results.arrow    # Also export to Arrow
  acsim simulate --log-level trace        # Log every minute`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			data, _ := cmd.Flags().GetString("data")
			out, _ := cmd.Flags().GetString("out")
			arrowOut, _ := cmd.Flags().GetString("arrow")
			useModel, _ := cmd.Flags().GetBool("use-model")
			noArchive, _ := cmd.Flags().GetBool("no-archive")

			readingsPath := e.resolve(data, constants.ReadingsFileName)

			var tree *classifier.Tree
			var readings []models.Reading
			if useModel {
				tree, err = classifier.Load(e.dataPath(constants.ModelFileName))
				if err != nil {
					if errors.Is(err, classifier.ErrModelNotTrained) {
						return fmt.Errorf("no trained model; run 'acsim train' or drop --use-model: %w", err)
					}
					return fmt.Errorf("failed to load model: %w", err)
				}
				if readings, err = dataio.LoadReadings(readingsPath); err != nil {
					return fmt.Errorf("failed to load readings: %w", err)
				}
			} else {
				if tree, readings, err = trainFromFile(e, readingsPath); err != nil {
					return err
				}
			}

			decisions := e.decisions()
			defer decisions.Close()

			result, err := simulation.Run(readings, tree, e.cfg.Policy, simulation.Options{
				Decisions: decisions,
				Observer: func(d simulation.Decision) {
					e.logger.Log(cmd.Context(), logging.LevelTrace, "minute",
						"time", d.Reading.Time,
						"temperature", d.Reading.Temperature,
						"setting", d.Setting,
						"cumulative", d.Cumulative,
					)
				},
			})
			if err != nil {
				return fmt.Errorf("simulation failed: %w", err)
			}

			resultsPath := e.resolve(out, constants.ResultsFileName)
			if err := dataio.SaveTrajectory(resultsPath, result.Records); err != nil {
				return fmt.Errorf("failed to write results: %w", err)
			}
			var arrowPath string
			if arrowOut != "" {
				arrowPath = e.resolve(arrowOut, "")
				if err := dataio.WriteTrajectoryArrow(arrowPath, result.Records); err != nil {
					return fmt.Errorf("failed to write arrow file: %w", err)
				}
			}

			summary, err := analysis.Summarize(result.Records, e.cfg)
			if err != nil {
				return err
			}

			var runID string
			if !noArchive {
				runID, err = archiveRun(cmd, e, readingsPath, result, summary)
				if err != nil {
					return err
				}
			}

			e.logger.Info("simulation complete",
				"readings", len(result.Records),
				"cumulative_energy", result.CumulativeEnergy,
				"run", runID,
			)

			if e.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"run_id":            runID,
					"readings":          len(result.Records),
					"cumulative_energy": result.CumulativeEnergy,
					"average_energy":    result.AverageEnergy(),
					"results":           resultsPath,
					"arrow":             arrowPath,
					"summary":           summary,
				})
			}

			w := cmd.OutOrStdout()
			printSuccess(w, "Total energy consumption: %g", result.CumulativeEnergy)
			printField(w, "readings", "%d", len(result.Records))
			printField(w, "average per minute", "%.3f", result.AverageEnergy())
			printField(w, "dominant setting", "%s (%.1f%%)", renderSetting(summary.Dominant().Setting), summary.Dominant().Percent)
			printField(w, "comfort zone", "%.1f%%", summary.ComfortPercent)
			printMuted(w, "  results: %s", resultsPath)
			if arrowPath != "" {
				printMuted(w, "  arrow:   %s", arrowPath)
			}
			if runID != "" {
				printMuted(w, "  run:     %s", runID)
			}
			return nil
		},
	}

	cmd.Flags().String("data", "", "Readings CSV (default .acsim/raw_data.csv)")
	cmd.Flags().StringP("out", "o", "", "Results CSV (default .acsim/simulation_results.csv)")
	cmd.Flags().String("arrow", "", "Also write the trajectory as an Arrow IPC file")
	cmd.Flags().Bool("use-model", false, "Use the saved model instead of training on the readings")
	cmd.Flags().Bool("no-archive", false, "Do not add the run to the archive")
	return cmd
}

// archiveRun stores a finished simulation in the configured run archive.
func archiveRun(cmd *cobra.Command, e *env, source string, result *simulation.Result, summary *analysis.Summary) (string, error) {
	st, err := openRunStore(e)
	if err != nil {
		return "", err
	}
	defer st.Close()

	id, err := st.SaveRun(cmd.Context(), &store.Run{
		Source:           source,
		CumulativeEnergy: result.CumulativeEnergy,
		AverageEnergy:    result.AverageEnergy(),
		Summary:          summary,
		Records:          result.Records,
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive run: %w", err)
	}
	return id, nil
}
