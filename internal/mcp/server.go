// Package mcp provides an MCP (Model Context Protocol) server for acsim.
//
// The server speaks over stdio only. It exposes the trained setting
// classifier, the preference tracker, trajectory analysis and the run
// archive as tools.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/acsim/internal/config"
	"github.com/nvandessel/acsim/internal/logging"
)

// Server wraps the MCP SDK server and provides acsim-specific tools.
type Server struct {
	server *sdk.Server
	cfg    *config.AcsimConfig
	root   string
	logger *slog.Logger
	audit  *AuditLogger
}

// Config holds server configuration.
type Config struct {
	Name    string // Server name (e.g., "acsim")
	Version string // Server version
	Root    string // Project root directory

	// ConfigPath overrides <root>/.acsim/config.yaml when set.
	ConfigPath string

	// Logger receives operational messages. Nil discards them.
	Logger *slog.Logger
}

// NewServer creates a new MCP server with acsim tools.
func NewServer(cfg *Config) (*Server, error) {
	acsimCfg, err := config.Load(cfg.Root, cfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	dataDir := config.DataDir(cfg.Root)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	mcpServer := sdk.NewServer(&sdk.Implementation{
		Name:    cfg.Name,
		Version: cfg.Version,
	}, &sdk.ServerOptions{
		InitializedHandler: func(ctx context.Context, req *sdk.InitializedRequest) {
			logger.Debug("mcp client initialized")
		},
	})

	s := &Server{
		server: mcpServer,
		cfg:    acsimCfg,
		root:   cfg.Root,
		logger: logger,
		audit:  NewAuditLogger(dataDir),
	}

	s.registerTools()
	return s, nil
}

// Run starts the MCP server over stdio transport.
// This blocks until the client disconnects or the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)

	go func() {
		select {
		case <-sigChan:
			s.logger.Info("received signal, shutting down mcp server")
			cancel()
		case <-ctx.Done():
		}
	}()

	err := s.server.Run(ctx, &sdk.StdioTransport{})
	s.Close()
	return err
}

// Close releases the audit log.
func (s *Server) Close() error {
	return s.audit.Close()
}

// resolvePath makes path absolute against the project root. An empty path
// yields def inside the data directory.
func (s *Server) resolvePath(path, def string) string {
	if path == "" {
		return filepath.Join(config.DataDir(s.root), def)
	}
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.root, path)
}
