// Package mcp exposes the puzzle run and the assessment engine as an MCP
// (Model Context Protocol) server over stdio.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/nvandessel/mnemosyne/internal/assess"
	"github.com/nvandessel/mnemosyne/internal/game"
	"github.com/nvandessel/mnemosyne/internal/logging"
	"github.com/nvandessel/mnemosyne/internal/ratelimit"
	"github.com/nvandessel/mnemosyne/internal/store"
)

// Server wraps the SDK server with a session and an assessment engine
// sharing one blob store.
type Server struct {
	server       *sdk.Server
	store        store.BlobStore
	session      *game.Session
	engine       *assess.Engine
	toolLimiters ratelimit.ToolLimiters
	audit        *AuditLogger
	logger       *slog.Logger
}

// Config holds server configuration.
type Config struct {
	Name    string
	Version string
	DataDir string
	Backend string
	Logger  *slog.Logger
	Trace   *logging.TraceLogger
}

// NewServer opens the store and registers the tools and resources. A
// saved run is resumed so puzzle tools continue where the player left off.
func NewServer(ctx context.Context, cfg *Config) (*Server, error) {
	if err := store.EnsureDataDir(cfg.DataDir); err != nil {
		return nil, err
	}
	bs, err := store.Open(cfg.Backend, cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	session := game.NewSession(bs, game.WithLogger(logger), game.WithTrace(cfg.Trace))
	if _, _, err := session.Resume(ctx); err != nil {
		bs.Close()
		return nil, fmt.Errorf("failed to resume run: %w", err)
	}

	s := &Server{
		server: sdk.NewServer(&sdk.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		store:        bs,
		session:      session,
		engine:       assess.NewEngine(bs, assess.WithLogger(logger), assess.WithTrace(cfg.Trace)),
		toolLimiters: ratelimit.NewToolLimiters(),
		audit:        NewAuditLogger(cfg.DataDir),
		logger:       logger,
	}

	s.registerTools()
	s.registerResources()
	return s, nil
}

// Run serves over stdio until the client disconnects, ctx is cancelled or
// an interrupt arrives.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	notifySignals(sigChan)
	go func() {
		select {
		case <-sigChan:
			cancel()
		case <-ctx.Done():
		}
	}()

	err := s.server.Run(ctx, &sdk.StdioTransport{})
	s.Close()
	return err
}

// Close releases the store and the audit log.
func (s *Server) Close() error {
	s.audit.Close()
	return s.store.Close()
}
