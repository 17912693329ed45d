package domain

// TicketType distinguishes singles from two-leg parlays.
type TicketType string

const (
	TicketSingle  TicketType = "single"
	TicketParlay2 TicketType = "parlay_2"
)

// Stake bounds accepted at the boundary, in monetary units.
const (
	MinStake = 1000.0
	MaxStake = 50000.0
)

// TicketLeg is one selection of a customer ticket at the price the
// customer was offered.
type TicketLeg struct {
	MatchID      string    `json:"match_id"`
	Selection    Selection `json:"selection"`
	CustomerOdds float64   `json:"customer_odds"`
}

// CustomerTicket is an incoming wager: one leg (single) or two legs
// (parlay_2), stake within [MinStake, MaxStake].
type CustomerTicket struct {
	TicketID   string      `json:"ticket_id"`
	TicketType TicketType  `json:"ticket_type"`
	Stake      float64     `json:"stake"`
	Legs       []TicketLeg `json:"legs"`
}

// TotalOdds is the product of the customer odds across legs.
func (t CustomerTicket) TotalOdds() float64 {
	odds := 1.0
	for _, leg := range t.Legs {
		odds *= leg.CustomerOdds
	}
	return odds
}

// PotentialPayout is stake × total odds.
func (t CustomerTicket) PotentialPayout() float64 {
	return t.Stake * t.TotalOdds()
}

// Liability is the net payout the house owes if the customer wins.
func (t CustomerTicket) Liability() float64 {
	return t.PotentialPayout() - t.Stake
}
