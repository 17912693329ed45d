package repository

import (
	"context"
	"fmt"

	"github.com/shadowbook/platform/internal/domain"
)

type ledgerPnlRepo struct{}

// NewLedgerRepository returns a pgx-backed LedgerRepository.
func NewLedgerRepository() LedgerRepository {
	return &ledgerPnlRepo{}
}

func (r *ledgerPnlRepo) LoadAll(ctx context.Context, db DBTX) (map[string]domain.PnLVector, error) {
	rows, err := db.Query(ctx, `SELECT match_id, home, draw, away FROM ledger_pnl`)
	if err != nil {
		return nil, fmt.Errorf("query ledger_pnl: %w", err)
	}
	defer rows.Close()

	out := make(map[string]domain.PnLVector)
	for rows.Next() {
		var matchID string
		var v domain.PnLVector
		if err := rows.Scan(&matchID, &v.Home, &v.Draw, &v.Away); err != nil {
			return nil, fmt.Errorf("scan ledger_pnl row: %w", err)
		}
		out[matchID] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger_pnl: %w", err)
	}
	return out, nil
}

func (r *ledgerPnlRepo) Upsert(ctx context.Context, db DBTX, matchID string, vector domain.PnLVector) error {
	_, err := db.Exec(ctx, `
		INSERT INTO ledger_pnl (match_id, home, draw, away)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (match_id) DO UPDATE SET
			home = EXCLUDED.home,
			draw = EXCLUDED.draw,
			away = EXCLUDED.away`,
		matchID, vector.Home, vector.Draw, vector.Away)
	if err != nil {
		return fmt.Errorf("upsert ledger_pnl %s: %w", matchID, err)
	}
	return nil
}

func (r *ledgerPnlRepo) Truncate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, `DELETE FROM ledger_pnl`); err != nil {
		return fmt.Errorf("truncate ledger_pnl: %w", err)
	}
	return nil
}
