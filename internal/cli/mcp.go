package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/aretw0/barista/pkg/adapters/mcp"
	"github.com/aretw0/barista/pkg/observability"
)

// MCPOptions configures the MCP server.
type MCPOptions struct {
	ConfigPath string
	Debug      bool
	// Transport is "stdio" (default) or "sse".
	Transport string
	Port      int
}

// ServeMCP exposes ordering sessions to agents over MCP.
func ServeMCP(opts MCPOptions) error {
	cfg, err := loadConfig(opts.ConfigPath, opts.Debug)
	if err != nil {
		return err
	}
	logger := createLogger(cfg.Log)

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	engine, err := createEngine(sigCtx, cfg, logger, observability.LoggingHooks(logger))
	if err != nil {
		return fmt.Errorf("error initializing barista: %w", err)
	}
	defer engine.Close()

	mgr, closeStore, err := newManager(sigCtx, cfg, engine, logger)
	if err != nil {
		return err
	}
	defer closeStore()
	go mgr.RunSweeper(sigCtx, cfg.Session.SweepInterval)

	srv := mcp.NewServer(mgr, mcp.WithLogger(logger))

	switch opts.Transport {
	case "", "stdio":
		// Ensure logs don't corrupt JSON-RPC on Stdout
		log.SetOutput(os.Stderr)
		logger.Info("Starting Barista MCP Server (Stdio)...")
		return srv.ServeStdio()
	case "sse":
		addr := fmt.Sprintf(":%d", opts.Port)
		baseURL := fmt.Sprintf("http://localhost:%d", opts.Port)
		logger.Info("Starting Barista MCP Server (SSE)", "port", opts.Port)
		if err := srv.ServeSSE(sigCtx, addr, baseURL); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("MCP server execution failed: %w", err)
		}
		logger.Info("MCP Server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport %q (supported: stdio, sse)", opts.Transport)
	}
}
