package provider

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowbook/platform/internal/domain"
	"github.com/shadowbook/platform/internal/guard"
)

type flakyFeed struct {
	calls atomic.Int32
	err   error
	dry   bool
}

func (f *flakyFeed) Name() string { return "FlakyBook" }

func (f *flakyFeed) FetchOdds(ctx context.Context) ([]domain.MarketQuote, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	if f.dry {
		return nil, nil
	}
	return []domain.MarketQuote{{
		Bookmaker: f.Name(),
		MatchID:   "A vs B",
		HomeOdds:  2.0, AwayOdds: 2.0,
	}}, nil
}

func TestGuardedFeedOpensAfterRepeatedFailures(t *testing.T) {
	inner := &flakyFeed{err: errors.New("upstream down")}
	guarded := NewGuardedFeed(inner, guard.NewCircuitBreaker(2, time.Hour), testLogger)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := guarded.FetchOdds(ctx)
		require.Error(t, err)
	}

	// Circuit is now open: the upstream must not be touched again.
	before := inner.calls.Load()
	quotes, err := guarded.FetchOdds(ctx)
	require.NoError(t, err)
	assert.Empty(t, quotes)
	assert.Equal(t, before, inner.calls.Load())
}

func TestGuardedFeedDryResultCountsAsFailure(t *testing.T) {
	inner := &flakyFeed{dry: true}
	guarded := NewGuardedFeed(inner, guard.NewCircuitBreaker(1, time.Hour), testLogger)
	ctx := context.Background()

	_, err := guarded.FetchOdds(ctx)
	require.NoError(t, err)

	before := inner.calls.Load()
	_, _ = guarded.FetchOdds(ctx)
	assert.Equal(t, before, inner.calls.Load(), "dry feed must trip the breaker")
}

func TestGuardedFeedRecoversThroughHalfOpen(t *testing.T) {
	inner := &flakyFeed{err: errors.New("upstream down")}
	// Zero reset timeout: the circuit is probe-able immediately.
	guarded := NewGuardedFeed(inner, guard.NewCircuitBreaker(1, 0), testLogger)
	ctx := context.Background()

	_, err := guarded.FetchOdds(ctx)
	require.Error(t, err)

	inner.err = nil
	quotes, err := guarded.FetchOdds(ctx)
	require.NoError(t, err)
	assert.Len(t, quotes, 1)

	quotes, err = guarded.FetchOdds(ctx)
	require.NoError(t, err)
	assert.Len(t, quotes, 1, "breaker must close again after a good probe")
}

func TestGuardedFeedPassesThroughHealthyFeed(t *testing.T) {
	inner := &flakyFeed{}
	guarded := NewGuardedFeed(inner, guard.NewCircuitBreaker(3, time.Minute), testLogger)

	quotes, err := guarded.FetchOdds(context.Background())
	require.NoError(t, err)
	assert.Len(t, quotes, 1)
	assert.Equal(t, "FlakyBook", guarded.Name())
}
