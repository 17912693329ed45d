package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowbook/platform/internal/domain"
	"github.com/shadowbook/platform/internal/normalizer"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const oddsAPIFixture = `[
  {
    "id": "abc123",
    "sport_key": "soccer_epl",
    "home_team": "Manchester United",
    "away_team": "Tottenham Hotspur",
    "bookmakers": [
      {
        "key": "pinnacle",
        "title": "Pinnacle",
        "markets": [
          {
            "key": "h2h",
            "outcomes": [
              {"name": "Manchester United", "price": 2.10},
              {"name": "Tottenham Hotspur", "price": 3.20},
              {"name": "Draw", "price": 3.50},
              {"name": "Anytime Scorer", "price": 9.99}
            ]
          }
        ]
      },
      {"key": "bet365", "title": "Bet365", "markets": [{"key": "h2h", "outcomes": [{"name": "Manchester United", "price": 99.0}]}]}
    ]
  },
  {
    "id": "def456",
    "sport_key": "soccer_epl",
    "home_team": "Missing Away Odds FC",
    "away_team": "Nowhere United",
    "bookmakers": [
      {
        "key": "pinnacle",
        "markets": [
          {"key": "h2h", "outcomes": [{"name": "Missing Away Odds FC", "price": 1.50}]}
        ]
      }
    ]
  }
]`

func newTestFeed(t *testing.T, handler http.HandlerFunc) *TheOddsAPIFeed {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	feed := NewTheOddsAPIFeed("test-key", normalizer.New(nil, 0), 5*time.Second, testLogger)
	feed.baseURL = srv.URL
	return feed
}

func TestTheOddsAPIFeedParsesSharpMarket(t *testing.T) {
	feed := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apiKey"))
		assert.Equal(t, "h2h", r.URL.Query().Get("markets"))
		assert.Equal(t, "pinnacle", r.URL.Query().Get("bookmakers"))
		w.Write([]byte(oddsAPIFixture))
	})

	quotes, err := feed.FetchOdds(context.Background())
	require.NoError(t, err)
	require.Len(t, quotes, 1, "event without both sides priced must be dropped")

	q := quotes[0]
	assert.Equal(t, "Pinnacle", q.Bookmaker)
	assert.Equal(t, "Manchester United vs Tottenham Hotspur", q.MatchID)
	assert.Equal(t, 2.10, q.HomeOdds)
	assert.Equal(t, 3.20, q.AwayOdds)
	assert.Equal(t, 3.50, q.DrawOdds)
}

func TestTheOddsAPIFeedEmptyKeySkipsNetwork(t *testing.T) {
	feed := NewTheOddsAPIFeed("", normalizer.New(nil, 0), time.Second, testLogger)
	quotes, err := feed.FetchOdds(context.Background())
	require.NoError(t, err)
	assert.Empty(t, quotes)
}

func TestTheOddsAPIFeedTerminalFailureIsEmptyNotError(t *testing.T) {
	var calls int
	feed := newTestFeed(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	})
	// Collapse the backoff so the test doesn't sleep for real.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	quotes, err := feed.FetchOdds(ctx)
	require.NoError(t, err)
	assert.Empty(t, quotes)
	assert.GreaterOrEqual(t, calls, 1)
}

func TestStubFeedDeterministicFixtures(t *testing.T) {
	mapping := map[string]string{
		"Man Utd": "Manchester United",
		"Spurs":   "Tottenham Hotspur",
	}
	feed := NewStubFeed(normalizer.New(mapping, 0))
	feed.latency = 0

	quotes, err := feed.FetchOdds(context.Background())
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "Manchester United vs Tottenham Hotspur", quotes[0].MatchID)
	assert.Equal(t, domain.MarketQuote{
		Bookmaker: "Pinnacle",
		MatchID:   "Real Madrid vs Barcelona",
		HomeTeam:  "Real Madrid",
		AwayTeam:  "Barcelona",
		HomeOdds:  1.80,
		AwayOdds:  4.20,
		DrawOdds:  3.80,
	}, quotes[1])
}

func TestStubFeedHonorsCancellation(t *testing.T) {
	feed := NewStubFeed(normalizer.New(nil, 0))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := feed.FetchOdds(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
