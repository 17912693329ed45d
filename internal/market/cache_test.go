package market

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowbook/platform/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type countingFeed struct {
	calls  atomic.Int64
	quotes []domain.MarketQuote
	err    error
	delay  time.Duration
}

func (f *countingFeed) Name() string { return "counting" }

func (f *countingFeed) FetchOdds(ctx context.Context) ([]domain.MarketQuote, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.quotes, f.err
}

func quote(matchID string) domain.MarketQuote {
	return domain.MarketQuote{Bookmaker: "Pinnacle", MatchID: matchID, HomeOdds: 2.0, AwayOdds: 3.0, DrawOdds: 3.4}
}

func TestGetLiveMarketRefreshesWhenEmpty(t *testing.T) {
	feed := &countingFeed{quotes: []domain.MarketQuote{quote("A vs B")}}
	cache := NewCache(feed, time.Minute, testLogger)

	snap := cache.GetLiveMarket(context.Background(), false)
	require.Contains(t, snap, "A vs B")
	assert.Equal(t, int64(1), feed.calls.Load())
}

func TestGetLiveMarketFreshHitSkipsFeed(t *testing.T) {
	feed := &countingFeed{quotes: []domain.MarketQuote{quote("A vs B")}}
	cache := NewCache(feed, time.Minute, testLogger)
	cache.GetLiveMarket(context.Background(), false)

	// A storm of readers within TTL must not touch the feed.
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			snap := cache.GetLiveMarket(context.Background(), false)
			assert.Contains(t, snap, "A vs B")
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), feed.calls.Load())
}

func TestGetLiveMarketForceBypassesTTL(t *testing.T) {
	feed := &countingFeed{quotes: []domain.MarketQuote{quote("A vs B")}}
	cache := NewCache(feed, time.Minute, testLogger)
	cache.GetLiveMarket(context.Background(), false)
	cache.GetLiveMarket(context.Background(), true)
	assert.Equal(t, int64(2), feed.calls.Load())
}

func TestGetLiveMarketExpiryTriggersRefresh(t *testing.T) {
	feed := &countingFeed{quotes: []domain.MarketQuote{quote("A vs B")}}
	cache := NewCache(feed, time.Minute, testLogger)

	clock := time.Now()
	cache.now = func() time.Time { return clock }
	cache.GetLiveMarket(context.Background(), false)

	clock = clock.Add(61 * time.Second)
	cache.GetLiveMarket(context.Background(), false)
	assert.Equal(t, int64(2), feed.calls.Load())
}

func TestGetLiveMarketKeepsStaleSnapshotOnFailure(t *testing.T) {
	feed := &countingFeed{quotes: []domain.MarketQuote{quote("A vs B")}}
	cache := NewCache(feed, time.Minute, testLogger)

	clock := time.Now()
	cache.now = func() time.Time { return clock }
	cache.GetLiveMarket(context.Background(), false)

	feed.err = errors.New("upstream down")
	feed.quotes = nil
	clock = clock.Add(2 * time.Minute)

	snap := cache.GetLiveMarket(context.Background(), false)
	assert.Contains(t, snap, "A vs B", "failed refresh must serve the prior snapshot")
}

func TestGetLiveMarketSingleFlight(t *testing.T) {
	feed := &countingFeed{quotes: []domain.MarketQuote{quote("A vs B")}, delay: 50 * time.Millisecond}
	cache := NewCache(feed, time.Minute, testLogger)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cache.GetLiveMarket(context.Background(), false)
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(1), feed.calls.Load(), "cold-start storm must coalesce into one feed call")
}

func TestAgeTracksLastAcquisition(t *testing.T) {
	feed := &countingFeed{quotes: []domain.MarketQuote{quote("A vs B")}}
	cache := NewCache(feed, time.Minute, testLogger)

	assert.Zero(t, cache.Age(), "no snapshot yet")

	clock := time.Now()
	cache.now = func() time.Time { return clock }
	cache.GetLiveMarket(context.Background(), false)

	clock = clock.Add(45 * time.Second)
	assert.Equal(t, 45*time.Second, cache.Age())

	// A failed refresh serves stale and the age keeps growing.
	feed.err = errors.New("upstream down")
	clock = clock.Add(30 * time.Second)
	cache.GetLiveMarket(context.Background(), false)
	assert.Equal(t, 75*time.Second, cache.Age())
}

func TestSnapshotIsACopy(t *testing.T) {
	feed := &countingFeed{quotes: []domain.MarketQuote{quote("A vs B")}}
	cache := NewCache(feed, time.Minute, testLogger)

	snap := cache.GetLiveMarket(context.Background(), false)
	delete(snap, "A vs B")

	again := cache.GetLiveMarket(context.Background(), false)
	assert.Contains(t, again, "A vs B")
}
