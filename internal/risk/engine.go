package risk

import (
	"fmt"
	"math"

	"github.com/shadowbook/platform/internal/domain"
)

// Engine defaults; all three are configurable.
const (
	DefaultMaxGlobalLiability = 30000.0
	// DefaultMinHouseEdge tolerates mildly customer-favorable tickets
	// for volume; only clearly poisonous flow is turned away.
	DefaultMinHouseEdge  = -0.05
	DefaultHedgeRounding = 50.0
)

// ExposureSimulator is the ledger capability the engine needs: a pure
// projection of one booked wager onto a match's PnL vector.
type ExposureSimulator interface {
	SimulateBet(matchID string, sel domain.Selection, stake, liability float64) domain.PnLVector
}

// Engine turns a customer ticket plus a sharp-market snapshot into
// exactly one routing decision. It never mutates the ledger; committing
// a decision is the orchestrator's call.
type Engine struct {
	ledger             ExposureSimulator
	maxGlobalLiability float64
	minHouseEdge       float64
	hedgeRounding      float64
}

// Config carries the engine's tunables. Zero values fall back to the
// defaults above.
type Config struct {
	MaxGlobalLiability float64
	MinHouseEdge       float64
	HedgeRounding      float64
}

// NewEngine creates a risk engine over the given exposure simulator.
func NewEngine(ledger ExposureSimulator, cfg Config) *Engine {
	if cfg.MaxGlobalLiability <= 0 {
		cfg.MaxGlobalLiability = DefaultMaxGlobalLiability
	}
	if cfg.MinHouseEdge == 0 {
		cfg.MinHouseEdge = DefaultMinHouseEdge
	}
	if cfg.HedgeRounding <= 0 {
		cfg.HedgeRounding = DefaultHedgeRounding
	}
	return &Engine{
		ledger:             ledger,
		maxGlobalLiability: cfg.MaxGlobalLiability,
		minHouseEdge:       cfg.MinHouseEdge,
		hedgeRounding:      cfg.HedgeRounding,
	}
}

// legView is one ticket leg resolved against the snapshot.
type legView struct {
	leg       domain.TicketLeg
	sharpOdds float64
	trueProb  float64
}

// Evaluate runs the decision tree:
//
//	S0 poison rejection (house EV below the configured floor)
//	S1 danger-leg identification (highest true probability)
//	S2 worst-case projection of the full ticket onto the danger match
//	S3 safe absorb (B-book) when the projection respects the cap
//	S4 hedge sizing for the excess, rounded up to the lot
//	S5 route by residual stake (partial hedge vs full lay-off)
//
// Parlay exposure is attributed entirely to the danger leg's match; a
// non-danger leg large enough to breach the cap on its own match is not
// caught by this projection.
func (e *Engine) Evaluate(ticket domain.CustomerTicket, snapshot domain.MarketSnapshot) domain.RiskDecision {
	legs := make([]legView, 0, len(ticket.Legs))
	for _, leg := range ticket.Legs {
		quote, ok := snapshot[leg.MatchID]
		if !ok {
			return e.reject(ticket, 0, 0, fmt.Sprintf("missing external benchmark: %s", leg.MatchID))
		}
		sharpOdds := quote.Odds(leg.Selection)
		if sharpOdds <= 1.0 {
			return e.reject(ticket, 0, 0, fmt.Sprintf("market closed: %s %s", leg.MatchID, leg.Selection))
		}
		legs = append(legs, legView{
			leg:       leg,
			sharpOdds: sharpOdds,
			trueProb:  TrueProbability(quote, leg.Selection),
		})
	}

	combinedTrueProb := 1.0
	for _, lv := range legs {
		combinedTrueProb *= lv.trueProb
	}
	houseEV := 1.0 - combinedTrueProb*ticket.TotalOdds()

	// S0: poison rejection.
	if houseEV < e.minHouseEdge {
		return e.reject(ticket, houseEV, combinedTrueProb, fmt.Sprintf(
			"house EV %.4f below floor %.4f: customer holds the edge at these odds", houseEV, e.minHouseEdge))
	}

	// S1: the danger leg is the outcome most likely to land — the tail
	// the house must hedge against.
	danger := legs[0]
	for _, lv := range legs[1:] {
		if lv.trueProb > danger.trueProb {
			danger = lv
		}
	}

	// S2: project the full ticket onto the danger match.
	stake := ticket.Stake
	liability := ticket.Liability()
	sim := e.ledger.SimulateBet(danger.leg.MatchID, danger.leg.Selection, stake, liability)
	worst := sim.WorstCase()

	decision := domain.RiskDecision{
		TicketID:        ticket.TicketID,
		HouseEV:         houseEV,
		TrueProbability: combinedTrueProb,
		DangerMatchID:   danger.leg.MatchID,
		DangerSelection: danger.leg.Selection,
	}

	// S3: safe absorb.
	if worst >= -e.maxGlobalLiability {
		decision.Action = domain.ActionBBook
		decision.Reason = fmt.Sprintf(
			"absorbed: worst-case %.0f within liability line %.0f, house edge %.2f%%",
			worst, e.maxGlobalLiability, houseEV*100)
		decision.BBookStake = stake
		decision.RetainedStake = stake
		decision.RetainedLiability = liability
		return decision
	}

	// S4: size the hedge to neutralize the excess, rounded up to the
	// lot so lay stakes don't pattern-match as automated.
	excess := -worst - e.maxGlobalLiability
	rawHedge := excess / (danger.sharpOdds - 1.0)
	hedgeStake := math.Ceil(rawHedge/e.hedgeRounding) * e.hedgeRounding
	retainedStake := stake - hedgeStake
	retainedLiability := liability - hedgeStake*(danger.sharpOdds-1.0)

	decision.HedgeStake = hedgeStake
	decision.HedgeOdds = danger.sharpOdds
	decision.RetainedStake = retainedStake
	decision.RetainedLiability = retainedLiability

	// S5: route by residual.
	if retainedStake > 0 {
		decision.Action = domain.ActionPartialHedge
		decision.BBookStake = retainedStake
		decision.Reason = fmt.Sprintf(
			"worst-case %.0f breaches line %.0f: laying %.0f @ %.2f, retaining %.0f",
			worst, e.maxGlobalLiability, hedgeStake, danger.sharpOdds, retainedStake)
		return decision
	}

	decision.Action = domain.ActionABookHedge
	decision.BBookStake = 0
	decision.Reason = fmt.Sprintf(
		"worst-case %.0f breaches line %.0f: fully laid off %.0f @ %.2f, house keeps the spread",
		worst, e.maxGlobalLiability, hedgeStake, danger.sharpOdds)
	return decision
}

func (e *Engine) reject(ticket domain.CustomerTicket, ev, prob float64, reason string) domain.RiskDecision {
	return domain.RiskDecision{
		TicketID:        ticket.TicketID,
		Action:          domain.ActionReject,
		Reason:          reason,
		HouseEV:         ev,
		TrueProbability: prob,
	}
}
