// Package main provides the HTTP and MCP server entry point.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bull/foundry-sharepoint/internal/api"
	"github.com/bull/foundry-sharepoint/internal/app"
	"github.com/bull/foundry-sharepoint/internal/config"
	mcpserver "github.com/bull/foundry-sharepoint/internal/mcp"
)

func main() {
	// Create context that cancels on SIGTERM/SIGINT
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	boot, err := config.LoadBootstrap()
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := app.NewLogger(boot, os.Stderr)
	slog.SetDefault(logger)

	a, err := app.New(ctx, boot, logger)
	if err != nil {
		logger.Error("Startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	server := mcpserver.NewServer(&mcpserver.Config{
		Provisioner: a.DeployProvisioner(),
		Documents:   a.Documents,
		Targets:     a.Targets,
		Logger:      logger.With("component", "mcp"),
	})

	mux := http.NewServeMux()
	api.Register(mux, &api.Config{
		Provisioner: a.DeployProvisioner(),
		Documents:   a.Documents,
		Targets:     a.Targets,
		Health:      a.HealthChecks(),
		Metrics:     a.MetricsHandler(),
		Logger:      logger.With("component", "api"),
	})
	mux.Handle("/mcp", mcpserver.NewHTTPHandler(server, &mcpserver.HTTPHandlerOptions{Stateless: true}))

	addr := "0.0.0.0:" + boot.Port
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if boot.ServerMode {
		// HTTP mode: API and MCP for remote clients
		logger.Info("Starting HTTP server", "addr", addr, "backend", boot.SearchBackend)
		serve(ctx, httpServer, logger)
		return
	}

	// Stdio mode: MCP over stdin/stdout, HTTP API in the background
	go serve(ctx, httpServer, logger)
	logger.Info("Starting MCP server (stdio mode)")
	if err := server.Run(ctx); err != nil {
		logger.Error("MCP server error", "error", err)
		os.Exit(1)
	}
}

// serve runs srv until ctx is canceled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, logger *slog.Logger) {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server error", "error", err)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP shutdown error", "error", err)
		}
	}
}
