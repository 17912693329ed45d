package domain

import "time"

// Action is the routing verdict for a ticket.
type Action string

const (
	ActionReject       Action = "REJECT"
	ActionBBook        Action = "ACCEPT_B_BOOK"
	ActionABookHedge   Action = "ACCEPT_A_BOOK_HEDGE"
	ActionPartialHedge Action = "ACCEPT_PARTIAL_HEDGE"
)

// Accepted reports whether the action books any exposure or hedge.
func (a Action) Accepted() bool {
	return a != ActionReject
}

// RiskDecision is the engine's verdict for one ticket. Numeric fields
// are zero unless the action gives them meaning; Reason is for humans,
// machine consumers key off Action.
type RiskDecision struct {
	TicketID        string  `json:"ticket_id"`
	Action          Action  `json:"action"`
	Reason          string  `json:"reason"`
	HouseEV         float64 `json:"house_ev"`
	TrueProbability float64 `json:"true_probability"`

	HedgeStake float64 `json:"hedge_stake"`
	HedgeOdds  float64 `json:"hedge_odds"`
	BBookStake float64 `json:"b_book_stake"`

	RetainedStake     float64 `json:"retained_stake"`
	RetainedLiability float64 `json:"retained_liability"`

	DangerMatchID   string    `json:"danger_match_id"`
	DangerSelection Selection `json:"danger_selection"`
}

// OrderBookEntry is the immutable audit row written once per committed
// (non-reject) ticket.
type OrderBookEntry struct {
	TicketID          string     `json:"ticket_id"`
	TicketType        TicketType `json:"ticket_type"`
	Stake             float64    `json:"stake"`
	Action            Action     `json:"action"`
	RetainedLiability float64    `json:"retained_liability"`
	HedgeStake        float64    `json:"hedge_stake"`
	DangerMatchID     string     `json:"danger_match_id"`
	DangerSelection   Selection  `json:"danger_selection"`
	Timestamp         time.Time  `json:"timestamp"`
}

// NewOrderBookEntry builds the audit row for a committed ticket.
func NewOrderBookEntry(ticket CustomerTicket, decision RiskDecision) OrderBookEntry {
	return OrderBookEntry{
		TicketID:          ticket.TicketID,
		TicketType:        ticket.TicketType,
		Stake:             ticket.Stake,
		Action:            decision.Action,
		RetainedLiability: decision.RetainedLiability,
		HedgeStake:        decision.HedgeStake,
		DangerMatchID:     decision.DangerMatchID,
		DangerSelection:   decision.DangerSelection,
	}
}

// ArbOpportunity is a two-way cross-bookmaker arbitrage found by the
// scanner: back home at one book, away at another, locked profit.
type ArbOpportunity struct {
	MatchID           string  `json:"match_id"`
	ProfitMargin      float64 `json:"profit_margin"`
	BestHomeOdds      float64 `json:"best_home_odds"`
	BestHomeBookmaker string  `json:"best_home_bookie"`
	BestAwayOdds      float64 `json:"best_away_odds"`
	BestAwayBookmaker string  `json:"best_away_bookie"`
	StakeHome         float64 `json:"stake_home"`
	StakeAway         float64 `json:"stake_away"`
	TotalInvestment   float64 `json:"total_investment"`
}
