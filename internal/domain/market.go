package domain

import "fmt"

// Selection identifies one outcome of a three-way market.
type Selection string

const (
	SelectionHome Selection = "home"
	SelectionDraw Selection = "draw"
	SelectionAway Selection = "away"
)

// Valid reports whether s is one of home/draw/away.
func (s Selection) Valid() bool {
	switch s {
	case SelectionHome, SelectionDraw, SelectionAway:
		return true
	}
	return false
}

// MarketQuote is a single bookmaker's three-way price for a fixture.
// DrawOdds is 0 for two-way markets.
type MarketQuote struct {
	Bookmaker string  `json:"bookmaker"`
	MatchID   string  `json:"match_id"`
	HomeTeam  string  `json:"home_team"`
	AwayTeam  string  `json:"away_team"`
	HomeOdds  float64 `json:"home_odds"`
	AwayOdds  float64 `json:"away_odds"`
	DrawOdds  float64 `json:"draw_odds,omitempty"`
}

// Odds returns the quoted price for the given selection.
// A two-way market returns 0 for draw.
func (q MarketQuote) Odds(sel Selection) float64 {
	switch sel {
	case SelectionHome:
		return q.HomeOdds
	case SelectionAway:
		return q.AwayOdds
	case SelectionDraw:
		return q.DrawOdds
	}
	return 0
}

// MatchFingerprint derives the canonical match identity from the two
// canonical team names, home side first. This is the single convention
// used by the broker core and the arb scanner alike; quotes sharing a
// fingerprint refer to the same fixture.
func MatchFingerprint(homeTeam, awayTeam string) string {
	return fmt.Sprintf("%s vs %s", homeTeam, awayTeam)
}

// MarketSnapshot is a point-in-time view of the sharp market, keyed by
// match fingerprint.
type MarketSnapshot map[string]MarketQuote

// PnLVector is the house profit/loss per outcome of one match. Negative
// at an outcome means the house pays out net if that outcome lands;
// positive means the house nets stake inflow.
type PnLVector struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// Apply returns the vector after booking a wager of the given stake and
// liability on sel: the selected outcome absorbs the liability, every
// other outcome collects the stake.
func (v PnLVector) Apply(sel Selection, stake, liability float64) PnLVector {
	book := func(o Selection, cur float64) float64 {
		if o == sel {
			return cur - liability
		}
		return cur + stake
	}
	return PnLVector{
		Home: book(SelectionHome, v.Home),
		Draw: book(SelectionDraw, v.Draw),
		Away: book(SelectionAway, v.Away),
	}
}

// WorstCase returns the minimum over the three outcomes — the lower
// bound on house profit for the match.
func (v PnLVector) WorstCase() float64 {
	w := v.Home
	if v.Draw < w {
		w = v.Draw
	}
	if v.Away < w {
		w = v.Away
	}
	return w
}
