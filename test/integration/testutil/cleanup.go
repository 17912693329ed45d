//go:build integration

package testutil

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CleanAll truncates both risk tables.
func (env *TestEnv) CleanAll() {
	cleanTables(env.Pool)
}

func cleanTables(pool *pgxpool.Pool) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, table := range []string{"order_book", "ledger_pnl"} {
		_, _ = pool.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE")
	}
}
