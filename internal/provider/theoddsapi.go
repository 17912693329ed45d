package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/shadowbook/platform/internal/domain"
	"github.com/shadowbook/platform/internal/normalizer"
)

// ── Odds API wire types ──

type oddsEvent struct {
	ID         string          `json:"id"`
	SportKey   string          `json:"sport_key"`
	HomeTeam   string          `json:"home_team"`
	AwayTeam   string          `json:"away_team"`
	Bookmakers []oddsBookmaker `json:"bookmakers"`
}

type oddsBookmaker struct {
	Key     string       `json:"key"`
	Title   string       `json:"title"`
	Markets []oddsMarket `json:"markets"`
}

type oddsMarket struct {
	Key      string        `json:"key"`
	Outcomes []oddsOutcome `json:"outcomes"`
}

type oddsOutcome struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ── TheOddsAPIFeed ──

const (
	oddsAPIBaseURL = "https://api.the-odds-api.com"
	sharpBookmaker = "pinnacle"
	soccerUpcoming = "soccer_upcoming"
	retryBase      = 2 * time.Second
	retryCap       = 10 * time.Second
	retryAttempts  = 3
)

// TheOddsAPIFeed reads the sharp reference market (Pinnacle h2h) from
// The Odds API. Terminal fetch failure yields an empty result and a
// warning log, never an error: a dry feed manifests downstream as
// missing-benchmark rejections.
type TheOddsAPIFeed struct {
	baseURL string
	apiKey  string
	mapper  *normalizer.Normalizer
	client  *http.Client
	logger  *slog.Logger
}

// NewTheOddsAPIFeed creates the HTTP provider. timeout bounds each
// individual request.
func NewTheOddsAPIFeed(apiKey string, mapper *normalizer.Normalizer, timeout time.Duration, logger *slog.Logger) *TheOddsAPIFeed {
	return &TheOddsAPIFeed{
		baseURL: oddsAPIBaseURL,
		apiKey:  apiKey,
		mapper:  mapper,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Name reports the sharp book this feed anchors on.
func (f *TheOddsAPIFeed) Name() string { return "Pinnacle" }

// FetchOdds pulls upcoming soccer h2h quotes for the sharp bookmaker.
func (f *TheOddsAPIFeed) FetchOdds(ctx context.Context) ([]domain.MarketQuote, error) {
	if f.apiKey == "" {
		return nil, nil
	}

	path := fmt.Sprintf("/v4/sports/%s/odds?regions=eu&markets=h2h&bookmakers=%s", soccerUpcoming, sharpBookmaker)
	body, err := f.getWithRetry(ctx, path)
	if err != nil {
		f.logger.Warn("odds api fetch failed after retries", "error", err)
		return nil, nil
	}

	var events []oddsEvent
	if err := json.Unmarshal(body, &events); err != nil {
		f.logger.Warn("odds api decode failed", "error", err)
		return nil, nil
	}

	quotes := make([]domain.MarketQuote, 0, len(events))
	for _, event := range events {
		if quote, ok := f.quoteFromEvent(event); ok {
			quotes = append(quotes, quote)
		}
	}

	f.logger.Info("odds api fetch complete", "events", len(events), "quotes", len(quotes))
	return quotes, nil
}

// quoteFromEvent extracts the sharp h2h prices from one event. Matches
// missing either home or away odds are dropped; unknown outcomes are
// ignored.
func (f *TheOddsAPIFeed) quoteFromEvent(event oddsEvent) (domain.MarketQuote, bool) {
	homeRaw, awayRaw := event.HomeTeam, event.AwayTeam
	if homeRaw == "" || awayRaw == "" {
		return domain.MarketQuote{}, false
	}

	var homeOdds, awayOdds, drawOdds float64
	for _, bk := range event.Bookmakers {
		if bk.Key != sharpBookmaker {
			continue
		}
		for _, mkt := range bk.Markets {
			if mkt.Key != "h2h" {
				continue
			}
			for _, outcome := range mkt.Outcomes {
				switch {
				case strings.EqualFold(outcome.Name, homeRaw):
					homeOdds = outcome.Price
				case strings.EqualFold(outcome.Name, awayRaw):
					awayOdds = outcome.Price
				case strings.EqualFold(outcome.Name, "draw"):
					drawOdds = outcome.Price
				}
			}
		}
	}

	if homeOdds <= 1.0 || awayOdds <= 1.0 {
		return domain.MarketQuote{}, false
	}
	if drawOdds <= 1.0 {
		drawOdds = 0
	}

	home := f.mapper.Standardize(homeRaw)
	away := f.mapper.Standardize(awayRaw)
	return domain.MarketQuote{
		Bookmaker: f.Name(),
		MatchID:   domain.MatchFingerprint(home, away),
		HomeTeam:  home,
		AwayTeam:  away,
		HomeOdds:  homeOdds,
		AwayOdds:  awayOdds,
		DrawOdds:  drawOdds,
	}, true
}

// getWithRetry performs a GET with exponential backoff (base 2s, cap
// 10s, 3 attempts).
func (f *TheOddsAPIFeed) getWithRetry(ctx context.Context, path string) ([]byte, error) {
	var body []byte
	op := func() error {
		var err error
		body, err = f.get(ctx, path)
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = retryBase
	policy.MaxInterval = retryCap

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, retryAttempts-1), ctx))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (f *TheOddsAPIFeed) get(ctx context.Context, path string) ([]byte, error) {
	url := f.baseURL + path
	if strings.Contains(path, "?") {
		url += "&apiKey=" + f.apiKey
	} else {
		url += "?apiKey=" + f.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	remaining := resp.Header.Get("x-requests-remaining")
	f.logger.Debug("odds api request", "path", path, "status", resp.StatusCode, "remaining", remaining)

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("odds api returned %d: %s", resp.StatusCode, string(body[:min(200, len(body))]))
	}
	return body, nil
}
