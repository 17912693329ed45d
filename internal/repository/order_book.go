package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shadowbook/platform/internal/domain"
)

// DefaultOrderBookLimit caps order-book reads.
const DefaultOrderBookLimit = 100

type orderBookRepo struct{}

// NewOrderBookRepository returns a pgx-backed OrderBookRepository.
func NewOrderBookRepository() OrderBookRepository {
	return &orderBookRepo{}
}

func (r *orderBookRepo) Insert(ctx context.Context, db DBTX, entry domain.OrderBookEntry) error {
	_, err := db.Exec(ctx, `
		INSERT INTO order_book
		  (ticket_id, ticket_type, stake, action, retained_liability,
		   hedge_stake, danger_match_id, danger_selection)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		entry.TicketID,
		string(entry.TicketType),
		entry.Stake,
		string(entry.Action),
		entry.RetainedLiability,
		entry.HedgeStake,
		entry.DangerMatchID,
		string(entry.DangerSelection),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrConflict(fmt.Sprintf("ticket %s already committed", entry.TicketID))
		}
		return fmt.Errorf("insert order_book %s: %w", entry.TicketID, err)
	}
	return nil
}

func (r *orderBookRepo) ListRecent(ctx context.Context, db DBTX, limit int) ([]domain.OrderBookEntry, error) {
	if limit <= 0 || limit > DefaultOrderBookLimit {
		limit = DefaultOrderBookLimit
	}
	rows, err := db.Query(ctx, `
		SELECT ticket_id, ticket_type, stake, action, retained_liability,
		       hedge_stake, danger_match_id, danger_selection, timestamp
		FROM order_book
		ORDER BY timestamp DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query order_book: %w", err)
	}
	defer rows.Close()

	var out []domain.OrderBookEntry
	for rows.Next() {
		var e domain.OrderBookEntry
		if err := rows.Scan(&e.TicketID, &e.TicketType, &e.Stake, &e.Action,
			&e.RetainedLiability, &e.HedgeStake, &e.DangerMatchID,
			&e.DangerSelection, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scan order_book row: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order_book: %w", err)
	}
	return out, nil
}

func (r *orderBookRepo) Count(ctx context.Context, db DBTX) (int, error) {
	var n int
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM order_book`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count order_book: %w", err)
	}
	return n, nil
}

func (r *orderBookRepo) Truncate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, `DELETE FROM order_book`); err != nil {
		return fmt.Errorf("truncate order_book: %w", err)
	}
	return nil
}
