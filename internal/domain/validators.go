package domain

import "fmt"

// ValidateTicket checks a customer ticket at the boundary. The engine
// proper assumes well-formed input.
func ValidateTicket(t CustomerTicket) error {
	if t.TicketID == "" {
		return ErrValidation("ticket_id is required")
	}
	switch t.TicketType {
	case TicketSingle:
		if len(t.Legs) != 1 {
			return ErrValidation(fmt.Sprintf("single ticket must have exactly 1 leg, got %d", len(t.Legs)))
		}
	case TicketParlay2:
		if len(t.Legs) != 2 {
			return ErrValidation(fmt.Sprintf("parlay_2 ticket must have exactly 2 legs, got %d", len(t.Legs)))
		}
	default:
		return ErrValidation(fmt.Sprintf("unknown ticket_type %q", t.TicketType))
	}
	if t.Stake < MinStake || t.Stake > MaxStake {
		return ErrValidation(fmt.Sprintf("stake %.2f outside [%.0f, %.0f]", t.Stake, MinStake, MaxStake))
	}
	for i, leg := range t.Legs {
		if leg.MatchID == "" {
			return ErrValidation(fmt.Sprintf("leg %d: match_id is required", i))
		}
		if !leg.Selection.Valid() {
			return ErrValidation(fmt.Sprintf("leg %d: unknown selection %q", i, leg.Selection))
		}
		if leg.CustomerOdds <= 1.0 {
			return ErrValidation(fmt.Sprintf("leg %d: customer_odds must exceed 1.0, got %.3f", i, leg.CustomerOdds))
		}
	}
	return nil
}
