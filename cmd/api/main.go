package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shadowbook/platform/internal/app"
	"github.com/shadowbook/platform/internal/guard"
	"github.com/shadowbook/platform/internal/infra"
	"github.com/shadowbook/platform/internal/normalizer"
	"github.com/shadowbook/platform/internal/provider"
	"github.com/shadowbook/platform/internal/risk"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	// Connect to Postgres
	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	// Migrations
	if err := infra.RunMigrations(cfg.DSN(), logger); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	// Team name normalizer
	names, err := normalizer.Load(cfg.TeamMappingPath, float64(cfg.FuzzyMatchThreshold))
	if err != nil {
		return fmt.Errorf("load team mapping: %w", err)
	}

	// Sharp odds feed: the real connector when a key is configured, the
	// deterministic stub otherwise.
	var feed provider.OddsFeed
	if cfg.OddsAPIKey != "" {
		upstream := provider.NewTheOddsAPIFeed(cfg.OddsAPIKey, names,
			time.Duration(cfg.RequestTimeoutSeconds)*time.Second, logger)
		feed = provider.NewGuardedFeed(upstream, guard.NewCircuitBreaker(3, time.Minute), logger)
	} else {
		logger.Warn("ODDS_API_KEY not set, serving stub odds")
		feed = provider.NewStubFeed(names)
	}

	r, err := app.NewRouter(ctx, app.RouterDeps{
		Pool:       pool,
		Logger:     logger,
		Feed:       feed,
		ScanFeeds:  []provider.OddsFeed{feed, provider.NewSilentFeed("WildScraper")},
		CacheTTL:   time.Duration(cfg.CacheTTLSeconds) * time.Second,
		ArbCapital: cfg.ArbCapital,
		Risk: risk.Config{
			MaxGlobalLiability: cfg.MaxGlobalLiability,
			MinHouseEdge:       cfg.MinHouseEdge,
			HedgeRounding:      cfg.HedgeRounding,
		},
	})
	if err != nil {
		return fmt.Errorf("assemble router: %w", err)
	}

	// Start server
	addr := fmt.Sprintf(":%d", cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	errCh := make(chan error, 1)
	go func() {
		logger.Info("api server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	}

	// Shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info("server stopped gracefully")
	return nil
}
