// Command scanner runs one cross-bookmaker arb sweep and prints the
// opportunities as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shadowbook/platform/internal/guard"
	"github.com/shadowbook/platform/internal/infra"
	"github.com/shadowbook/platform/internal/normalizer"
	"github.com/shadowbook/platform/internal/provider"
	"github.com/shadowbook/platform/internal/service"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("scan failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	names, err := normalizer.Load(cfg.TeamMappingPath, float64(cfg.FuzzyMatchThreshold))
	if err != nil {
		return fmt.Errorf("load team mapping: %w", err)
	}

	var sharp provider.OddsFeed
	if cfg.OddsAPIKey != "" {
		upstream := provider.NewTheOddsAPIFeed(cfg.OddsAPIKey, names,
			time.Duration(cfg.RequestTimeoutSeconds)*time.Second, logger)
		sharp = provider.NewGuardedFeed(upstream, guard.NewCircuitBreaker(3, time.Minute), logger)
	} else {
		logger.Warn("ODDS_API_KEY not set, scanning stub odds")
		sharp = provider.NewStubFeed(names)
	}

	scanner := service.NewScannerService(
		[]provider.OddsFeed{sharp, provider.NewSilentFeed("WildScraper")},
		cfg.ArbCapital, logger)

	opportunities, err := scanner.Scan(ctx)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(opportunities)
}
