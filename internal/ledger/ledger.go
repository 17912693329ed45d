// Package ledger maintains the global PnL matrix: the house exposure
// per match across the three outcomes, held in memory and written
// through to ledger_pnl on every commit.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"

	"github.com/shadowbook/platform/internal/domain"
	"github.com/shadowbook/platform/internal/repository"
)

// DB is the slice of pgxpool.Pool the ledger needs: plain queries plus
// transactions.
type DB interface {
	repository.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Ledger is the single writer over the PnL matrix. SimulateBet is pure;
// CommitBet persists first and mutates memory only once the durable
// write is confirmed, so memory always equals the last persisted row.
type Ledger struct {
	db     DB
	pnl    repository.LedgerRepository
	orders repository.OrderBookRepository
	logger *slog.Logger

	mu    sync.Mutex
	state map[string]domain.PnLVector
}

// New creates a Ledger and hydrates the matrix from ledger_pnl.
func New(ctx context.Context, db DB, pnl repository.LedgerRepository, orders repository.OrderBookRepository, logger *slog.Logger) (*Ledger, error) {
	state, err := pnl.LoadAll(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	booked, err := orders.Count(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("count order book: %w", err)
	}
	logger.Info("ledger hydrated", "matches", len(state), "booked_tickets", booked)
	return &Ledger{
		db:     db,
		pnl:    pnl,
		orders: orders,
		logger: logger,
		state:  state,
	}, nil
}

// SimulateBet projects one wager onto a match's vector without side
// effects: the selected outcome absorbs the liability, the others
// collect the stake. Missing matches read as the zero vector.
func (l *Ledger) SimulateBet(matchID string, sel domain.Selection, stake, liability float64) domain.PnLVector {
	l.mu.Lock()
	current := l.state[matchID]
	l.mu.Unlock()
	return current.Apply(sel, stake, liability)
}

// CommitBet irreversibly books a wager: the new vector is computed via
// the same projection as SimulateBet, upserted to ledger_pnl and — when
// entry is non-nil — the audit row is appended, all in one transaction.
// On any durable failure memory is left untouched and the error is
// returned for the caller to retry or abandon.
func (l *Ledger) CommitBet(ctx context.Context, matchID string, sel domain.Selection, stake, liability float64, entry *domain.OrderBookEntry) (domain.PnLVector, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := l.state[matchID].Apply(sel, stake, liability)

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return domain.PnLVector{}, fmt.Errorf("begin commit tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := l.pnl.Upsert(ctx, tx, matchID, next); err != nil {
		return domain.PnLVector{}, err
	}
	if entry != nil {
		if err := l.orders.Insert(ctx, tx, *entry); err != nil {
			return domain.PnLVector{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.PnLVector{}, fmt.Errorf("commit tx: %w", err)
	}

	l.state[matchID] = next
	l.logger.Info("exposure committed",
		"match_id", matchID,
		"selection", sel,
		"stake", stake,
		"liability", liability,
		"worst_case", next.WorstCase(),
	)
	return next, nil
}

// OrderBook returns the most recent audit rows, newest first. limit ≤ 0
// means repository.DefaultOrderBookLimit.
func (l *Ledger) OrderBook(ctx context.Context, limit int) ([]domain.OrderBookEntry, error) {
	return l.orders.ListRecent(ctx, l.db, limit)
}

// GetAllExposures returns a snapshot of the matrix.
func (l *Ledger) GetAllExposures() map[string]domain.PnLVector {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make(map[string]domain.PnLVector, len(l.state))
	for id, v := range l.state {
		out[id] = v
	}
	return out
}

// Exposure returns one match's vector; missing matches are zero.
func (l *Ledger) Exposure(matchID string) domain.PnLVector {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state[matchID]
}

// Wipe truncates both durable tables and clears the matrix.
func (l *Ledger) Wipe(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin wipe tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := l.pnl.Truncate(ctx, tx); err != nil {
		return err
	}
	if err := l.orders.Truncate(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit wipe tx: %w", err)
	}

	l.state = make(map[string]domain.PnLVector)
	l.logger.Warn("ledger wiped")
	return nil
}
