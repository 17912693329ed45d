// Package provider implements the odds-feed contract: each bookmaker
// variant produces MarketQuotes for upcoming fixtures. The risk engine
// and the arb scanner depend only on the OddsFeed capability.
package provider

import (
	"context"

	"github.com/shadowbook/platform/internal/domain"
)

// OddsFeed produces a list of market quotes per fixture. FetchOdds may
// return an empty slice; transient transport failures are handled
// inside the implementation and surface as an empty result.
type OddsFeed interface {
	Name() string
	FetchOdds(ctx context.Context) ([]domain.MarketQuote, error)
}
