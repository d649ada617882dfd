package main

import (
	"fmt"

	"github.com/nvandessel/acsim/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Run the MCP server over stdio",
		Long: `Run a Model Context Protocol server on stdin/stdout so an agent can
call acsim_predict, acsim_recommend, acsim_analyze and acsim_runs.

Logs go to stderr; stdout carries the protocol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd)
			if err != nil {
				return err
			}
			configPath, _ := cmd.Flags().GetString("config")

			srv, err := mcp.NewServer(&mcp.Config{
				Name:       "acsim",
				Version:    version,
				Root:       e.root,
				ConfigPath: configPath,
				Logger:     e.logger,
			})
			if err != nil {
				return fmt.Errorf("failed to start MCP server: %w", err)
			}

			e.logger.Info("mcp server listening on stdio", "root", e.root)
			return srv.Run(cmd.Context())
		},
	}
}
