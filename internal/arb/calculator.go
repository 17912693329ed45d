// Package arb finds two-way cross-bookmaker arbitrage: back home at
// the best home price, away at the best away price, and lock the
// margin when the combined implied probability dips under 1.
package arb

import (
	"sort"

	"github.com/shadowbook/platform/internal/domain"
)

// DefaultCapital is the stake pool allocated per opportunity.
const DefaultCapital = 1000.0

// CalculateTwoWay scans one match's quotes for a two-way arb. The two
// best prices must come from different bookmakers — a single book never
// arbs against itself. Stakes split the capital so both outcomes pay
// the same amount; the total invested is exactly capital.
func CalculateTwoWay(quotes []domain.MarketQuote, capital float64) (domain.ArbOpportunity, bool) {
	if len(quotes) < 2 {
		return domain.ArbOpportunity{}, false
	}
	if capital <= 0 {
		capital = DefaultCapital
	}

	bestHome, bestAway := quotes[0], quotes[0]
	for _, q := range quotes[1:] {
		if q.HomeOdds > bestHome.HomeOdds {
			bestHome = q
		}
		if q.AwayOdds > bestAway.AwayOdds {
			bestAway = q
		}
	}
	if bestHome.Bookmaker == bestAway.Bookmaker {
		return domain.ArbOpportunity{}, false
	}

	impliedSum := 1/bestHome.HomeOdds + 1/bestAway.AwayOdds
	if impliedSum >= 1.0 {
		return domain.ArbOpportunity{}, false
	}

	payout := capital / impliedSum
	return domain.ArbOpportunity{
		MatchID:           bestHome.MatchID,
		ProfitMargin:      1.0 - impliedSum,
		BestHomeOdds:      bestHome.HomeOdds,
		BestHomeBookmaker: bestHome.Bookmaker,
		BestAwayOdds:      bestAway.AwayOdds,
		BestAwayBookmaker: bestAway.Bookmaker,
		StakeHome:         payout / bestHome.HomeOdds,
		StakeAway:         payout / bestAway.AwayOdds,
		TotalInvestment:   capital,
	}, true
}

// Scan groups quotes by match fingerprint and collects every two-way
// opportunity, sorted by margin descending.
func Scan(quotes []domain.MarketQuote, capital float64) []domain.ArbOpportunity {
	byMatch := make(map[string][]domain.MarketQuote)
	for _, q := range quotes {
		byMatch[q.MatchID] = append(byMatch[q.MatchID], q)
	}

	var out []domain.ArbOpportunity
	for _, group := range byMatch {
		if opp, ok := CalculateTwoWay(group, capital); ok {
			out = append(out, opp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ProfitMargin > out[j].ProfitMargin
	})
	return out
}
