package provider

import (
	"context"
	"time"

	"github.com/shadowbook/platform/internal/domain"
	"github.com/shadowbook/platform/internal/normalizer"
)

// StubFeed returns deterministic fixtures so the engine runs without an
// API key. Latency is simulated to exercise the cache's coalescing.
type StubFeed struct {
	mapper  *normalizer.Normalizer
	latency time.Duration
}

// NewStubFeed creates the deterministic fixture feed.
func NewStubFeed(mapper *normalizer.Normalizer) *StubFeed {
	return &StubFeed{mapper: mapper, latency: 500 * time.Millisecond}
}

// Name matches the HTTP provider so downstream attribution is uniform.
func (f *StubFeed) Name() string { return "Pinnacle" }

// FetchOdds returns two fixed three-way markets.
func (f *StubFeed) FetchOdds(ctx context.Context) ([]domain.MarketQuote, error) {
	if f.latency > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.latency):
		}
	}

	home1 := f.mapper.Standardize("Man Utd")
	away1 := f.mapper.Standardize("Spurs")
	return []domain.MarketQuote{
		{
			Bookmaker: f.Name(),
			MatchID:   domain.MatchFingerprint(home1, away1),
			HomeTeam:  home1,
			AwayTeam:  away1,
			HomeOdds:  2.10,
			AwayOdds:  3.20,
			DrawOdds:  3.50,
		},
		{
			Bookmaker: f.Name(),
			MatchID:   domain.MatchFingerprint("Real Madrid", "Barcelona"),
			HomeTeam:  "Real Madrid",
			AwayTeam:  "Barcelona",
			HomeOdds:  1.80,
			AwayOdds:  4.20,
			DrawOdds:  3.80,
		},
	}, nil
}

// SilentFeed is a placeholder bookmaker contributing no quotes; it
// keeps the scanner's fan-out honest when a source is dark.
type SilentFeed struct {
	name string
}

// NewSilentFeed creates an empty feed with the given bookmaker name.
func NewSilentFeed(name string) *SilentFeed {
	return &SilentFeed{name: name}
}

func (f *SilentFeed) Name() string { return f.name }

func (f *SilentFeed) FetchOdds(ctx context.Context) ([]domain.MarketQuote, error) {
	return nil, nil
}
