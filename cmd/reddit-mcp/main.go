// Command reddit-mcp serves the read-only Reddit tools to agents, over MCP
// stdio by default or as JSON over HTTP when an address is given.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"

	redditmcp "github.com/jamesprial/go-reddit-mcp"
	"github.com/jamesprial/go-reddit-mcp/internal/config"
	"github.com/jamesprial/go-reddit-mcp/internal/logging"
	"github.com/jamesprial/go-reddit-mcp/pkg/tools"
)

var version = "dev"

func main() {
	httpAddr := flag.String("http", "", "serve tools as JSON over HTTP on this address instead of MCP stdio")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	if err := run(*httpAddr); err != nil {
		fmt.Fprintf(os.Stderr, "reddit-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(httpAddr string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if httpAddr != "" {
		cfg.HTTPAddr = httpAddr
	}

	// stdout carries the MCP stream, so logs always go to stderr.
	logger, err := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	client, err := redditmcp.NewClient(cfg.ClientConfig(logger))
	if err != nil {
		return fmt.Errorf("create reddit client: %w", err)
	}
	logger.Info("starting reddit-mcp",
		"version", version,
		"auth_mode", client.Mode().String(),
		logging.Secret("client_id", cfg.Credentials.ClientID),
		logging.Secret("client_secret", cfg.Credentials.ClientSecret),
		logging.Secret("refresh_token", cfg.Credentials.RefreshToken),
		logging.Secret("access_token", cfg.Credentials.AccessToken),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A failed first connect is retried by the next tool call.
	if err := client.Connect(ctx); err != nil {
		logger.Warn("initial reddit connect failed", "error", err)
	}

	ts := tools.New(client, tools.WithLogger(logger))
	if cfg.HTTPAddr != "" {
		return serveHTTP(ctx, cfg.HTTPAddr, ts, logger)
	}
	return serveStdio(ctx, ts, logger)
}

func serveStdio(ctx context.Context, ts *tools.Toolset, logger *slog.Logger) error {
	stdio := server.NewStdioServer(tools.NewMCPServer(ts, version))
	stdio.SetErrorLogger(slog.NewLogLogger(logger.Handler(), slog.LevelError))

	logger.Info("serving MCP over stdio")
	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func serveHTTP(ctx context.Context, addr string, ts *tools.Toolset, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           tools.NewHTTPHandler(ts, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving tools over HTTP", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
