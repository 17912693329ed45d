package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/shadowbook/platform/internal/arb"
	"github.com/shadowbook/platform/internal/domain"
	"github.com/shadowbook/platform/internal/provider"
)

// ScannerService fans out across every configured bookmaker feed and
// runs the two-way arb calculator over the merged quotes. One dark or
// failing source contributes nothing instead of aborting the scan.
type ScannerService struct {
	feeds   []provider.OddsFeed
	capital float64
	logger  *slog.Logger
}

// NewScannerService creates the scanner. capital ≤ 0 means
// arb.DefaultCapital.
func NewScannerService(feeds []provider.OddsFeed, capital float64, logger *slog.Logger) *ScannerService {
	if capital <= 0 {
		capital = arb.DefaultCapital
	}
	return &ScannerService{feeds: feeds, capital: capital, logger: logger}
}

// Scan fetches all feeds concurrently and returns opportunities sorted
// by margin descending.
func (s *ScannerService) Scan(ctx context.Context) ([]domain.ArbOpportunity, error) {
	results := make([][]domain.MarketQuote, len(s.feeds))

	g, gctx := errgroup.WithContext(ctx)
	for i, feed := range s.feeds {
		i, feed := i, feed
		g.Go(func() error {
			quotes, err := feed.FetchOdds(gctx)
			if err != nil {
				// Isolated failure: log and contribute nothing.
				s.logger.Warn("feed failed during scan", "feed", feed.Name(), "error", err)
				return nil
			}
			results[i] = quotes
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var merged []domain.MarketQuote
	for _, quotes := range results {
		merged = append(merged, quotes...)
	}

	opportunities := arb.Scan(merged, s.capital)
	s.logger.Info("arb scan complete",
		"feeds", len(s.feeds),
		"quotes", len(merged),
		"opportunities", len(opportunities),
	)
	return opportunities, nil
}
