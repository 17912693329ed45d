// Package market holds the short-TTL snapshot cache over the odds feed.
package market

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/shadowbook/platform/internal/domain"
	"github.com/shadowbook/platform/internal/provider"
)

// DefaultTTL is how long a snapshot stays fresh.
const DefaultTTL = 60 * time.Second

// Cache serves the most recent market snapshot, refreshing it through
// the feed at most once at a time. A failed or empty refresh leaves the
// prior snapshot in place, so callers may see stale prices rather than
// none at all.
type Cache struct {
	feed   provider.OddsFeed
	ttl    time.Duration
	logger *slog.Logger

	group singleflight.Group

	mu        sync.RWMutex
	snapshot  domain.MarketSnapshot
	fetchedAt time.Time

	now func() time.Time
}

// NewCache creates a cache over the given feed. A ttl of 0 means
// DefaultTTL.
func NewCache(feed provider.OddsFeed, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		feed:     feed,
		ttl:      ttl,
		logger:   logger,
		snapshot: domain.MarketSnapshot{},
		now:      time.Now,
	}
}

// GetLiveMarket returns the current snapshot, refreshing first when
// forced, empty, or past TTL. Concurrent callers share a single
// in-flight feed call.
func (c *Cache) GetLiveMarket(ctx context.Context, force bool) domain.MarketSnapshot {
	if !force && c.fresh() {
		return c.current()
	}

	c.group.Do("refresh", func() (interface{}, error) {
		// A caller queued behind a finished flight must not refetch.
		if !force && c.fresh() {
			return nil, nil
		}
		c.refresh(ctx)
		return nil, nil
	})

	return c.current()
}

// Age reports how long ago the snapshot was acquired.
func (c *Cache) Age() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.fetchedAt.IsZero() {
		return 0
	}
	return c.now().Sub(c.fetchedAt)
}

func (c *Cache) fresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshot) > 0 && c.now().Sub(c.fetchedAt) <= c.ttl
}

func (c *Cache) current() domain.MarketSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(domain.MarketSnapshot, len(c.snapshot))
	for id, quote := range c.snapshot {
		out[id] = quote
	}
	return out
}

func (c *Cache) refresh(ctx context.Context) {
	quotes, err := c.feed.FetchOdds(ctx)
	if err != nil {
		c.logger.Warn("market refresh failed, serving prior snapshot", "feed", c.feed.Name(), "error", err)
		return
	}
	if len(quotes) == 0 {
		c.logger.Warn("market refresh returned no quotes, serving prior snapshot", "feed", c.feed.Name())
		return
	}

	next := make(domain.MarketSnapshot, len(quotes))
	for _, quote := range quotes {
		next[quote.MatchID] = quote
	}

	c.mu.Lock()
	c.snapshot = next
	c.fetchedAt = c.now()
	c.mu.Unlock()

	c.logger.Info("market snapshot refreshed", "feed", c.feed.Name(), "matches", len(next))
}
