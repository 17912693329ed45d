package provider

import (
	"context"
	"log/slog"

	"github.com/shadowbook/platform/internal/domain"
	"github.com/shadowbook/platform/internal/guard"
)

// GuardedFeed wraps a feed with a circuit breaker. A source that keeps
// coming back dry or failing is cut off for the breaker's reset window
// instead of eating its retry budget on every refresh.
type GuardedFeed struct {
	inner   OddsFeed
	breaker *guard.CircuitBreaker
	logger  *slog.Logger
}

// NewGuardedFeed wraps the feed with the given breaker.
func NewGuardedFeed(inner OddsFeed, breaker *guard.CircuitBreaker, logger *slog.Logger) *GuardedFeed {
	return &GuardedFeed{inner: inner, breaker: breaker, logger: logger}
}

func (f *GuardedFeed) Name() string { return f.inner.Name() }

// FetchOdds delegates to the wrapped feed unless its circuit is open.
// An error or an empty result counts as a failure.
func (f *GuardedFeed) FetchOdds(ctx context.Context) ([]domain.MarketQuote, error) {
	key := f.inner.Name()
	if result := f.breaker.Check(ctx, key); !result.Allowed {
		f.logger.Warn("feed circuit open, skipping fetch", "feed", key, "reason", result.Reason)
		return nil, nil
	}

	quotes, err := f.inner.FetchOdds(ctx)
	if err != nil || len(quotes) == 0 {
		f.breaker.RecordFailure(key)
		return quotes, err
	}

	f.breaker.RecordSuccess(key)
	return quotes, nil
}
