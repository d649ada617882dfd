package main

import (
	"fmt"
	"time"

	"github.com/nvandessel/acsim/internal/config"
	"github.com/nvandessel/acsim/internal/store"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Browse archived simulation runs",
		Long: `Every 'acsim simulate' adds a run to the archive in .acsim/ (runs.jsonl,
or runs.db with storage.backend: sqlite).

Examples:
  acsim runs list
  acsim runs show 01J8Z3Q4X5Y6Z7A8B9C0D1E2F3`,
	}

	cmd.AddCommand(newRunsListCmd(), newRunsShowCmd())
	return cmd
}

func openRunStore(e *env) (store.RunStore, error) {
	st, err := store.Open(config.DataDir(e.root), e.cfg.Storage.Backend)
	if err != nil {
		return nil, fmt.Errorf("failed to open run archive: %w", err)
	}
	return st, nil
}

func newRunsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List archived runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")

			st, err := openRunStore(e)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.ListRuns(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}
			if limit > 0 && len(runs) > limit {
				runs = runs[:limit]
			}

			if e.jsonOut {
				if runs == nil {
					runs = []store.Run{}
				}
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"runs":  runs,
					"count": len(runs),
				})
			}

			w := cmd.OutOrStdout()
			if len(runs) == 0 {
				printMuted(w, "No runs archived yet. Run 'acsim simulate' first.")
				return nil
			}
			for _, r := range runs {
				comfort := "-"
				if r.Summary != nil {
					comfort = fmt.Sprintf("%.1f%%", r.Summary.ComfortPercent)
				}
				fmt.Fprintf(w, "%s  %s  %5d readings  energy %-10g comfort %s\n",
					r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Readings, r.CumulativeEnergy, comfort)
			}
			printMuted(w, "%d run(s)", len(runs))
			return nil
		},
	}

	cmd.Flags().Int("limit", 0, "Show at most this many runs (0 for all)")
	return cmd
}

func newRunsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			withRecords, _ := cmd.Flags().GetBool("records")

			st, err := openRunStore(e)
			if err != nil {
				return err
			}
			defer st.Close()

			run, err := st.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !withRecords {
				run.Records = nil
			}

			if e.jsonOut {
				return writeJSON(cmd.OutOrStdout(), run)
			}

			w := cmd.OutOrStdout()
			printInfo(w, "Run %s", run.ID)
			printField(w, "created", "%s", run.CreatedAt.Local().Format(time.DateTime))
			printField(w, "source", "%s", run.Source)
			printField(w, "readings", "%d", run.Readings)
			printField(w, "cumulative energy", "%g", run.CumulativeEnergy)
			printField(w, "average energy", "%.3f", run.AverageEnergy)
			if run.Summary != nil {
				fmt.Fprintln(w)
				printSummary(w, run.Summary)
			}
			for _, r := range run.Records {
				fmt.Fprintf(w, "%5d  %6.2f -> %6.2f  %s\n", r.Time, r.OriginalTemp, r.AdjustedTemp, renderSetting(r.Setting))
			}
			return nil
		},
	}

	cmd.Flags().Bool("records", false, "Include the per-minute trajectory")
	return cmd
}
