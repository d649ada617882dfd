package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nvandessel/acsim/internal/config"
	"github.com/nvandessel/acsim/internal/logging"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, "%v", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "acsim",
		Short: "Air-conditioning controller simulator",
		Long: `acsim simulates an air-conditioning controller over a stream of
per-minute sensor readings.

A decision tree picks a cooling setting (Low, Medium, High) for every
reading, the cooling policy turns that setting into an energy cost and a
temperature change, and the resulting trajectory can be analyzed, rendered
as an HTML report and archived.

Examples:
  acsim init
  acsim generate --seed 42
  acsim simulate --arrow results.arrow
  acsim analyze --html report.html --open`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("root", ".", "Project root directory")
	rootCmd.PersistentFlags().String("config", "", "Config file (default <root>/.acsim/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug or trace (overrides config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newGenerateCmd(),
		newTrainCmd(),
		newPredictCmd(),
		newSimulateCmd(),
		newRecommendCmd(),
		newAnalyzeCmd(),
		newRunsCmd(),
		newConfigCmd(),
		newMCPServerCmd(),
	)

	return rootCmd
}

// env is the per-invocation state shared by the stage commands.
type env struct {
	root    string
	cfg     *config.AcsimConfig
	logger  *slog.Logger
	jsonOut bool
}

// loadEnv resolves --root, loads configuration and applies --log-level.
func loadEnv(cmd *cobra.Command) (*env, error) {
	root, _ := cmd.Flags().GetString("root")
	configPath, _ := cmd.Flags().GetString("config")
	level, _ := cmd.Flags().GetString("log-level")
	jsonOut, _ := cmd.Flags().GetBool("json")

	cfg, err := config.Load(root, configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if level != "" {
		cfg.Logging.Level = level
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	return &env{
		root:    root,
		cfg:     cfg,
		logger:  logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
		jsonOut: jsonOut,
	}, nil
}

// dataPath returns name inside the data directory.
func (e *env) dataPath(name string) string {
	return filepath.Join(config.DataDir(e.root), name)
}

// resolve returns path relative to the project root, or the data-directory
// default when path is empty.
func (e *env) resolve(path, def string) string {
	if path == "" {
		return e.dataPath(def)
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.root, path)
}

// decisions opens the decision trace for this invocation. Nil at info level.
func (e *env) decisions() *logging.DecisionLogger {
	return logging.NewDecisionLogger(config.DataDir(e.root), e.cfg.Logging.Level)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
