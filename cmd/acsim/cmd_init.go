package main

import (
	"fmt"
	"os"

	"github.com/nvandessel/acsim/internal/config"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the .acsim data directory",
		Long: `Create the .acsim/ directory under the project root and write a
config.yaml holding the default settings. An existing config file is left
untouched unless --force is given.

Examples:
  acsim init
  acsim init --root ./building-a
  acsim init --force               # Reset config.yaml to defaults`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, _ := cmd.Flags().GetString("root")
			force, _ := cmd.Flags().GetBool("force")
			jsonOut, _ := cmd.Flags().GetBool("json")

			dataDir := config.DataDir(root)
			if err := os.MkdirAll(dataDir, 0755); err != nil {
				return fmt.Errorf("failed to create .acsim directory: %w", err)
			}

			configPath := config.DefaultPath(root)
			created := false
			if _, err := os.Stat(configPath); os.IsNotExist(err) || force {
				if err := config.Default().Save(configPath); err != nil {
					return fmt.Errorf("failed to write config: %w", err)
				}
				created = true
			}

			if jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{
					"status":         "initialized",
					"path":           dataDir,
					"config":         configPath,
					"config_written": created,
				})
			}

			printSuccess(cmd.OutOrStdout(), "Initialized .acsim/ in %s", root)
			if created {
				printMuted(cmd.OutOrStdout(), "  wrote %s", configPath)
			} else {
				printMuted(cmd.OutOrStdout(), "  kept existing %s", configPath)
			}
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "Overwrite an existing config.yaml with defaults")
	return cmd
}
