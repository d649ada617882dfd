package main

import (
	"fmt"

	"github.com/nvandessel/acsim/internal/constants"
	"github.com/nvandessel/acsim/internal/dataio"
	"github.com/nvandessel/acsim/internal/models"
	"github.com/nvandessel/acsim/internal/preference"
	"github.com/spf13/cobra"
)

func newRecommendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Learn a preferred temperature from simulated feedback",
		Long: `Feed temperatures to the preference tracker. For each one the occupant
reports "too hot" (above 25°C), "too cold" (below 22°C) or "just right",
and the preferred temperature is corrected at the configured learning rate.

Temperatures come from repeated --temp flags or, when none are given, from
the readings file.

Examples:
  acsim recommend --temp 30 --temp 23 --temp 20
  acsim recommend --data sample.csv --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			temps, _ := cmd.Flags().GetFloat64Slice("temp")
			data, _ := cmd.Flags().GetString("data")

			if len(temps) == 0 {
				readings, err := dataio.LoadReadings(e.resolve(data, constants.ReadingsFileName))
				if err != nil {
					return fmt.Errorf("no --temp given and failed to load readings: %w", err)
				}
				for _, r := range readings {
					temps = append(temps, r.Temperature)
				}
			}

			decisions := e.decisions()
			defer decisions.Close()

			tracker := preference.New(e.cfg.Preference, e.cfg.Comfort, decisions)
			for _, temp := range temps {
				tracker.Recommend(temp)
			}
			history := tracker.History()

			if e.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"steps":     history,
					"preferred": tracker.Preferred(),
				})
			}

			w := cmd.OutOrStdout()
			for i, h := range history {
				fmt.Fprintf(w, "%4d  %6.2f°C  %-10s  preferred %.3f°C\n", i, h.ObservedTemp, h.Feedback, h.Preferred)
			}
			if dropped := len(temps) - len(history); dropped > 0 {
				printWarning(w, "history limit kept the last %d of %d steps", len(history), len(temps))
			}
			counts := feedbackCounts(history)
			printMuted(w, "  too hot %d, too cold %d, just right %d",
				counts[models.FeedbackTooHot], counts[models.FeedbackTooCold], counts[models.FeedbackJustRight])
			printSuccess(w, "Preferred temperature: %.3f°C", tracker.Preferred())
			return nil
		},
	}

	cmd.Flags().Float64Slice("temp", nil, "Observed temperature in °C (repeatable)")
	cmd.Flags().String("data", "", "Readings CSV used when no --temp is given (default .acsim/raw_data.csv)")
	return cmd
}

// feedbackCounts tallies history entries by feedback label.
func feedbackCounts(history []models.PreferenceUpdate) map[models.FeedbackLabel]int {
	counts := make(map[models.FeedbackLabel]int, 3)
	for _, h := range history {
		counts[h.Feedback]++
	}
	return counts
}
