package main

import (
	"fmt"

	"github.com/nvandessel/mnemosyne/internal/logging"
	"github.com/nvandessel/mnemosyne/internal/mcp"
	"github.com/spf13/cobra"
)

func newMCPServerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp-server",
		Short: "Run as an MCP server over stdio",
		Long: `Expose the puzzle run and the assessment engine to MCP clients.

Tools: puzzle_new_run, puzzle_state, puzzle_answer, puzzle_hint,
puzzle_seeds, assess_analyze, assess_history.
Resource: mnemosyne://puzzle/state

Example client configuration:
  {"mcpServers": {"mnemosyne": {"command": "mnemosyne", "args": ["mcp-server"]}}}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dataDir, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			// stdout carries the protocol; logs go to stderr only
			logger := logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
			trace := logging.NewTraceLogger(dataDir, cfg.Logging.Level)
			defer trace.Close()

			server, err := mcp.NewServer(cmd.Context(), &mcp.Config{
				Name:    "mnemosyne",
				Version: version,
				DataDir: dataDir,
				Backend: cfg.Storage.Backend,
				Logger:  logger,
				Trace:   trace,
			})
			if err != nil {
				return fmt.Errorf("failed to start MCP server: %w", err)
			}

			logger.Info("mcp server starting", "data_dir", dataDir, "backend", cfg.Storage.Backend)
			return server.Run(cmd.Context())
		},
	}
}
