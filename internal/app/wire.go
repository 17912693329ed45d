// Package app assembles the router from its collaborators, shared by
// the api binary and the integration suite.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shadowbook/platform/internal/guard"
	"github.com/shadowbook/platform/internal/handler"
	"github.com/shadowbook/platform/internal/ledger"
	"github.com/shadowbook/platform/internal/market"
	"github.com/shadowbook/platform/internal/provider"
	"github.com/shadowbook/platform/internal/repository"
	"github.com/shadowbook/platform/internal/risk"
	"github.com/shadowbook/platform/internal/service"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool   *pgxpool.Pool
	Logger *slog.Logger

	// Sharp feed plus any extra scanner sources.
	Feed       provider.OddsFeed
	ScanFeeds  []provider.OddsFeed
	CacheTTL   time.Duration
	ArbCapital float64

	Risk risk.Config
}

// NewRouter hydrates the ledger and assembles the chi.Router with all
// routes and middleware.
func NewRouter(ctx context.Context, deps RouterDeps) (chi.Router, error) {
	pool := deps.Pool
	logger := deps.Logger

	// Repositories
	pnlRepo := repository.NewLedgerRepository()
	orderRepo := repository.NewOrderBookRepository()

	// Ledger over its durable tables
	book, err := ledger.New(ctx, pool, pnlRepo, orderRepo, logger)
	if err != nil {
		return nil, fmt.Errorf("hydrate ledger: %w", err)
	}

	cache := market.NewCache(deps.Feed, deps.CacheTTL, logger)
	engine := risk.NewEngine(book, deps.Risk)

	// Services
	brokerSvc := service.NewBrokerService(book, cache, engine, logger)

	scanFeeds := deps.ScanFeeds
	if len(scanFeeds) == 0 {
		scanFeeds = []provider.OddsFeed{deps.Feed}
	}
	scannerSvc := service.NewScannerService(scanFeeds, deps.ArbCapital, logger)

	// Handlers
	brokerHandler := handler.NewBrokerHandler(brokerSvc)
	scannerHandler := handler.NewScannerHandler(scannerSvc)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS)
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool, cache))

	// Writes are rate limited per caller; reads are not.
	limiter := guard.NewRateLimiter(120, time.Minute)
	r.Route("/tickets", func(r chi.Router) {
		r.Use(handler.RateLimit(limiter))
		r.Post("/evaluate", brokerHandler.Evaluate)
		r.Post("/commit", brokerHandler.Commit)
	})

	r.Get("/exposures", brokerHandler.Exposures)
	r.Get("/orderbook", brokerHandler.OrderBook)
	r.Get("/arb/scan", scannerHandler.Scan)

	// Operator tooling
	r.Route("/admin", func(r chi.Router) {
		r.Post("/wipe", brokerHandler.Wipe)
	})

	return r, nil
}
