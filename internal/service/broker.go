// Package service wires the engine's collaborators into the two
// operator surfaces: the broker (evaluate/commit) and the arb scanner.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shadowbook/platform/internal/domain"
	"github.com/shadowbook/platform/internal/guard"
	"github.com/shadowbook/platform/internal/ledger"
	"github.com/shadowbook/platform/internal/market"
	"github.com/shadowbook/platform/internal/risk"
)

// BrokerService owns the singleton ledger, cache and risk engine, and
// sequences fetch → evaluate → (optional) commit. Evaluation and commit
// are deliberately separate steps: the caller may evaluate a batch and
// commit only a subset.
type BrokerService struct {
	ledger  *ledger.Ledger
	cache   *market.Cache
	engine  *risk.Engine
	commits *guard.IdempotencyGuard
	logger  *slog.Logger
}

// NewBrokerService creates the broker over its collaborators.
func NewBrokerService(l *ledger.Ledger, cache *market.Cache, engine *risk.Engine, logger *slog.Logger) *BrokerService {
	return &BrokerService{
		ledger:  l,
		cache:   cache,
		engine:  engine,
		commits: guard.NewIdempotencyGuard(),
		logger:  logger,
	}
}

// Evaluate produces one decision per ticket, in input order, against a
// single market snapshot. Tickets are validated at this boundary; the
// engine assumes well-formed input.
func (s *BrokerService) Evaluate(ctx context.Context, tickets []domain.CustomerTicket) ([]domain.RiskDecision, error) {
	for i, ticket := range tickets {
		if err := domain.ValidateTicket(ticket); err != nil {
			return nil, fmt.Errorf("ticket %d (%s): %w", i, ticket.TicketID, err)
		}
	}

	snapshot := s.cache.GetLiveMarket(ctx, false)

	// Input order within one worker: an earlier commit changes the
	// worst-case projection a later ticket must see, so interleaved
	// evaluation is kept strictly sequential.
	decisions := make([]domain.RiskDecision, 0, len(tickets))
	for _, ticket := range tickets {
		decision := s.engine.Evaluate(ticket, snapshot)
		s.logger.Info("ticket evaluated",
			"ticket_id", ticket.TicketID,
			"action", decision.Action,
			"house_ev", decision.HouseEV,
			"reason", decision.Reason,
		)
		decisions = append(decisions, decision)
	}
	return decisions, nil
}

// CommitDecision books an accepted decision: the danger match absorbs
// the retained stake/liability and the audit row is appended, both in
// one durable transaction. Committing a REJECT is a no-op.
func (s *BrokerService) CommitDecision(ctx context.Context, ticket domain.CustomerTicket, decision domain.RiskDecision) error {
	if !decision.Action.Accepted() {
		return nil
	}
	if decision.TicketID != ticket.TicketID {
		return domain.ErrValidation(fmt.Sprintf(
			"decision %s does not belong to ticket %s", decision.TicketID, ticket.TicketID))
	}

	// Replays fail fast; the order book's primary key backstops this
	// across restarts.
	if result := s.commits.Check(ctx, ticket.TicketID); !result.Allowed {
		return domain.ErrConflict(fmt.Sprintf("ticket %s already committed", ticket.TicketID))
	}

	entry := domain.NewOrderBookEntry(ticket, decision)
	_, err := s.ledger.CommitBet(ctx,
		decision.DangerMatchID,
		decision.DangerSelection,
		decision.RetainedStake,
		decision.RetainedLiability,
		&entry,
	)
	if err != nil {
		s.commits.Remove(ticket.TicketID)
		return fmt.Errorf("commit ticket %s: %w", ticket.TicketID, err)
	}
	return nil
}

// OrderBook returns the most recent committed audit rows.
func (s *BrokerService) OrderBook(ctx context.Context, limit int) ([]domain.OrderBookEntry, error) {
	return s.ledger.OrderBook(ctx, limit)
}

// Exposures returns the current PnL matrix snapshot.
func (s *BrokerService) Exposures() map[string]domain.PnLVector {
	return s.ledger.GetAllExposures()
}

// Wipe clears the ledger, the order book and the commit dedup set.
func (s *BrokerService) Wipe(ctx context.Context) error {
	if err := s.ledger.Wipe(ctx); err != nil {
		return err
	}
	s.commits.Reset()
	return nil
}
