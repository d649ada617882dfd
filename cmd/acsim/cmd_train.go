package main

import (
	"fmt"

	"github.com/nvandessel/acsim/internal/classifier"
	"github.com/nvandessel/acsim/internal/constants"
	"github.com/nvandessel/acsim/internal/datagen"
	"github.com/nvandessel/acsim/internal/dataio"
	"github.com/nvandessel/acsim/internal/models"
	"github.com/spf13/cobra"
)

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train the setting classifier from a readings file",
		Long: `Train the decision tree that maps (temperature, occupancy, air quality)
to a cooling setting and save it to .acsim/model.acm, replacing any
previous model.

Each reading is labelled by binning its temperature with the comfort band
from config (Low up to 24°C, Medium up to 30°C, High up to 40°C by default).
Readings outside the band get no label and are not used.

Examples:
  acsim train
  acsim train --data sample.csv
  acsim train --rules                    # Also print the learned rules`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			data, _ := cmd.Flags().GetString("data")
			showRules, _ := cmd.Flags().GetBool("rules")

			readingsPath := e.resolve(data, constants.ReadingsFileName)
			tree, readings, err := trainFromFile(e, readingsPath)
			if err != nil {
				return err
			}

			accuracy, err := tree.Accuracy(datagen.TrainingExamples(readings))
			if err != nil {
				return err
			}

			modelPath := e.dataPath(constants.ModelFileName)
			if err := classifier.Save(modelPath, tree); err != nil {
				return fmt.Errorf("failed to save model: %w", err)
			}

			if e.jsonOut {
				out := map[string]any{
					"model":    modelPath,
					"readings": len(readings),
					"samples":  tree.Samples,
					"nodes":    tree.NodeCount(),
					"depth":    tree.Depth(),
					"accuracy": accuracy,
				}
				if showRules {
					out["rules"] = tree.Rules()
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}

			w := cmd.OutOrStdout()
			printSuccess(w, "Trained decision tree on %d of %d readings", tree.Samples, len(readings))
			printField(w, "nodes", "%d", tree.NodeCount())
			printField(w, "depth", "%d", tree.Depth())
			printField(w, "training accuracy", "%.1f%%", accuracy*100)
			printMuted(w, "  saved to %s", modelPath)
			if showRules {
				fmt.Fprintln(w)
				for _, rule := range tree.Rules() {
					fmt.Fprintln(w, rule)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("data", "", "Readings CSV (default .acsim/raw_data.csv)")
	cmd.Flags().Bool("rules", false, "Print the learned tree as indented rules")
	return cmd
}

// trainFromFile loads readings from path and fits a tree on them.
func trainFromFile(e *env, path string) (*classifier.Tree, []models.Reading, error) {
	readings, err := dataio.LoadReadings(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load readings: %w", err)
	}

	tree, err := classifier.Train(
		datagen.TrainingExamples(readings),
		e.cfg.Comfort,
		classifier.OptionsFromConfig(e.cfg.Classifier),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to train classifier: %w", err)
	}
	e.logger.Debug("trained classifier", "samples", tree.Samples, "nodes", tree.NodeCount(), "depth", tree.Depth())
	return tree, readings, nil
}
