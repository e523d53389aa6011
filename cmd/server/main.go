// Wikwok - Content Discovery Feed Service
// Copyright 2026 Wikwok contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/wikwok/wikwok

// Command server runs the Wikwok HTTP API: a deduplicated, paginated
// content feed backed by Wikipedia, plus search, trending, and page
// proxy endpoints. Services run under a suture supervisor tree so a
// crashed HTTP listener is restarted rather than taking the process down.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/wikwok/wikwok/internal/api"
	"github.com/wikwok/wikwok/internal/config"
	"github.com/wikwok/wikwok/internal/feed"
	"github.com/wikwok/wikwok/internal/logging"
	"github.com/wikwok/wikwok/internal/supervisor"
	"github.com/wikwok/wikwok/internal/supervisor/services"
	"github.com/wikwok/wikwok/internal/wiki"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		// Use default logger for config errors (config not yet available)
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize zerolog with configuration
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("version", version).Msg("Starting Wikwok with supervisor tree")
	logging.Info().
		Str("default_lang", cfg.Feed.DefaultLang).
		Int("max_page_size", cfg.Feed.MaxPageSize).
		Float64("upstream_rate_per_sec", cfg.Wiki.RatePerSecond).
		Msg("Configuration loaded")

	// Wikipedia client wrapped in a circuit breaker so a failing upstream
	// sheds load instead of cascading into every feed request.
	upstream := wiki.NewCircuitBreakerClient(cfg.Wiki)

	fetcher := feed.NewFetcher(upstream, cfg.Feed, cfg.Wiki.FetchTimeout)
	acquirer := feed.NewAcquirer(fetcher, cfg.Feed)

	handler := api.NewHandler(cfg, upstream, acquirer, upstream.State, version)
	router := api.NewRouter(handler, cfg.Security)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridge zerolog to slog for sutureslog compatibility
	slogLogger := logging.NewSlogLogger()

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(slogLogger, treeCfg)

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// Setup signal handling
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
		os.Exit(1)
	}

	logging.Info().Msg("Shutdown complete")
}
