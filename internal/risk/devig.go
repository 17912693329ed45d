// Package risk implements the devig math and the routing decision
// state machine.
package risk

import "github.com/shadowbook/platform/internal/domain"

// Overround is the sum of raw implied probabilities across the quoted
// outcomes. A proper market exceeds 1.0; the excess is the bookmaker's
// margin.
func Overround(q domain.MarketQuote) float64 {
	m := 1/q.HomeOdds + 1/q.AwayOdds
	if q.DrawOdds > 0 {
		m += 1 / q.DrawOdds
	}
	return m
}

// TrueProbability recovers the fair probability of a selection by
// proportional margin removal: the raw implied probability divided by
// the overround.
func TrueProbability(q domain.MarketQuote, sel domain.Selection) float64 {
	odds := q.Odds(sel)
	if odds <= 0 {
		return 0
	}
	return (1 / odds) / Overround(q)
}
