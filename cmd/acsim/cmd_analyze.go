package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nvandessel/acsim/internal/analysis"
	"github.com/nvandessel/acsim/internal/constants"
	"github.com/nvandessel/acsim/internal/dataio"
	"github.com/nvandessel/acsim/internal/models"
	"github.com/nvandessel/acsim/internal/visualization"
	"github.com/spf13/cobra"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Summarize a simulation results file",
		Long: `Summarize a trajectory: total energy scaled to a day, savings against
the baseline, time spent in the comfort zone and how often each setting
was chosen.

--preferred and --hours apply the dashboard transform first: the trajectory
is resized to hours*60 minutes and every adjusted temperature is nudged
toward the preferred one, then clamped.

Examples:
  acsim analyze
  acsim analyze --results run.arrow
  acsim analyze --preferred 23 --hours 12
  acsim analyze --html report.html --open`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			resultsFlag, _ := cmd.Flags().GetString("results")
			htmlOut, _ := cmd.Flags().GetString("html")
			open, _ := cmd.Flags().GetBool("open")

			resultsPath := e.resolve(resultsFlag, constants.ResultsFileName)
			records, err := dataio.LoadTrajectory(resultsPath)
			if err != nil {
				return fmt.Errorf("failed to load results: %w", err)
			}

			dashboard := cmd.Flags().Changed("preferred") || cmd.Flags().Changed("hours")
			if dashboard {
				preferred, _ := cmd.Flags().GetFloat64("preferred")
				hours, _ := cmd.Flags().GetInt("hours")
				if !cmd.Flags().Changed("preferred") {
					preferred = e.cfg.Preference.InitialTemperature
				}
				records, err = analysis.Dashboard(records, preferred, hours, e.cfg)
				if err != nil {
					return err
				}
			}

			summary, err := analysis.Summarize(records, e.cfg)
			if err != nil {
				return err
			}

			var reportPath string
			if htmlOut != "" || open {
				reportPath = e.resolve(htmlOut, constants.ReportFileName)
				if err := writeReport(reportPath, summary, records); err != nil {
					return err
				}
			}

			if e.jsonOut {
				if err := writeJSON(cmd.OutOrStdout(), map[string]any{
					"results":   resultsPath,
					"dashboard": dashboard,
					"records":   len(records),
					"report":    reportPath,
					"summary":   summary,
				}); err != nil {
					return err
				}
			} else {
				printSummary(cmd.OutOrStdout(), summary)
				if reportPath != "" {
					printMuted(cmd.OutOrStdout(), "  report: %s", reportPath)
				}
			}

			if open && reportPath != "" {
				if err := visualization.OpenFile(reportPath); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser: %v\nOpen %s manually.\n", err, reportPath)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("results", "", "Results file, CSV or .arrow (default .acsim/simulation_results.csv)")
	cmd.Flags().String("html", "", "Write an HTML report to this path")
	cmd.Flags().Bool("open", false, "Open the HTML report in a browser (default path .acsim/report.html)")
	cmd.Flags().Float64("preferred", 0, "Preferred temperature for the dashboard transform (default from config)")
	cmd.Flags().Int("hours", constants.MinutesPerDay/60, "Duration in hours for the dashboard transform")
	return cmd
}

// writeReport renders the HTML report into path.
func writeReport(path string, summary *analysis.Summary, records []models.TrajectoryRecord) error {
	var buf bytes.Buffer
	if err := visualization.RenderHTML(&buf, summary, records); err != nil {
		return fmt.Errorf("render HTML: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write HTML file: %w", err)
	}
	return nil
}

// printSummary writes a human-readable summary.
func printSummary(w io.Writer, s *analysis.Summary) {
	printInfo(w, "Trajectory of %d minutes", s.Minutes)
	printField(w, "total energy", "%.1f", s.TotalEnergy)
	printField(w, "baseline", "%.1f", s.BaselineEnergy)
	if s.SavingsPercent >= 0 {
		printField(w, "savings", "%.1f%%", s.SavingsPercent)
	} else {
		printField(w, "savings", "%.1f%% (above baseline)", s.SavingsPercent)
	}
	printField(w, "comfort zone", "%.1f%% within [%g, %g]°C", s.ComfortPercent, s.ComfortZoneLow, s.ComfortZoneHigh)
	printField(w, "adjusted temp", "mean %.2f, min %.2f, max %.2f", s.MeanAdjustedTemp, s.MinAdjustedTemp, s.MaxAdjustedTemp)
	printField(w, "mean cooling", "%.3f°C", s.MeanCooling)
	for _, share := range s.Settings {
		printField(w, "setting "+string(share.Setting), "%d (%.1f%%)", share.Count, share.Percent)
	}
	if len(s.Notes) > 0 {
		fmt.Fprintln(w)
		for _, note := range s.Notes {
			printMuted(w, "  - %s", note)
		}
	}
}
