package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nvandessel/mnemosyne/internal/config"
	"github.com/nvandessel/mnemosyne/internal/logging"
	"github.com/nvandessel/mnemosyne/internal/store"
	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mnemosyne",
		Short: "Mnemosyne - seeded memory puzzles and self-assessment",
		Long: `mnemosyne runs a deterministic twelve-round memory puzzle protocol and a
self-assessment engine that scores your goals, habits and metrics.

Both engines persist to a local store in ~/.mnemosyne and are available
from the command line, an interactive terminal UI and an MCP server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON (for agent consumption)")
	rootCmd.PersistentFlags().String("config", "", "Config file (default: ~/.mnemosyne/config.yaml)")
	rootCmd.PersistentFlags().String("data-dir", "", "Data directory (default: ~/.mnemosyne)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newPuzzleCmd(),
		newPlayCmd(),
		newAssessCmd(),
		newConfigCmd(),
		newBackupCmd(),
		newMCPServerCmd(),
	)
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{"version": version})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "mnemosyne version %s\n", version)
			}
		},
	}
}

// configPath returns the --config flag or the default config location.
func configPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("config"); p != "" {
		return p, nil
	}
	return config.DefaultPath()
}

// loadConfig loads and validates the configuration and resolves the data
// directory. --data-dir wins over the config file and the environment.
func loadConfig(cmd *cobra.Command) (*config.MnemosyneConfig, string, error) {
	path, err := configPath(cmd)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadPath(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", fmt.Errorf("invalid config: %w", err)
	}

	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg.Storage.Dir = dir
	}
	dataDir, err := store.ResolveDataDir(cfg.Storage.Dir)
	if err != nil {
		return nil, "", err
	}
	return cfg, dataDir, nil
}

// appEnv is what most commands need: config, an open store and loggers.
type appEnv struct {
	cfg     *config.MnemosyneConfig
	dataDir string
	store   store.BlobStore
	logger  *slog.Logger
	trace   *logging.TraceLogger
	out     io.Writer
	jsonOut bool
}

func openEnv(cmd *cobra.Command) (*appEnv, error) {
	cfg, dataDir, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err := store.EnsureDataDir(dataDir); err != nil {
		return nil, err
	}

	bs, err := store.Open(cfg.Storage.Backend, dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	return &appEnv{
		cfg:     cfg,
		dataDir: dataDir,
		store:   bs,
		logger:  logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr()),
		trace:   logging.NewTraceLogger(dataDir, cfg.Logging.Level),
		out:     cmd.OutOrStdout(),
		jsonOut: jsonOut,
	}, nil
}

func (e *appEnv) Close() {
	e.trace.Close()
	if err := e.store.Close(); err != nil {
		e.logger.Warn("closing store", "error", err)
	}
}

// printJSON writes v as one JSON document.
func printJSON(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}

func (e *appEnv) printJSON(v any) error {
	return printJSON(e.out, v)
}
