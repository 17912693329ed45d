// Package repository provides pgx-backed access to the two durable
// tables: ledger_pnl (current per-match PnL vector) and order_book
// (append-only audit of committed tickets).
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/shadowbook/platform/internal/domain"
)

// DBTX abstracts pgx.Tx and pgxpool.Pool so repositories work with both.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

// LedgerRepository provides access to ledger_pnl.
type LedgerRepository interface {
	// LoadAll returns every persisted PnL vector keyed by match_id.
	LoadAll(ctx context.Context, db DBTX) (map[string]domain.PnLVector, error)

	// Upsert writes the current vector for a match (insert or replace).
	Upsert(ctx context.Context, db DBTX, matchID string, vector domain.PnLVector) error

	// Truncate removes all rows.
	Truncate(ctx context.Context, db DBTX) error
}

// OrderBookRepository provides access to order_book.
type OrderBookRepository interface {
	// Insert appends one audit row. ticket_id is the primary key; a
	// duplicate commit surfaces as a conflict error.
	Insert(ctx context.Context, db DBTX, entry domain.OrderBookEntry) error

	// ListRecent returns the most recent rows, timestamp descending.
	ListRecent(ctx context.Context, db DBTX, limit int) ([]domain.OrderBookEntry, error)

	// Count returns the number of audit rows.
	Count(ctx context.Context, db DBTX) (int, error)

	// Truncate removes all rows.
	Truncate(ctx context.Context, db DBTX) error
}
