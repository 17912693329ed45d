package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shadowbook/platform/internal/domain"
	"github.com/shadowbook/platform/internal/ledger"
	"github.com/shadowbook/platform/internal/market"
	"github.com/shadowbook/platform/internal/repository"
	"github.com/shadowbook/platform/internal/risk"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// ── in-memory plumbing ──

type memTx struct {
	pgx.Tx
}

func (t *memTx) Commit(ctx context.Context) error   { return nil }
func (t *memTx) Rollback(ctx context.Context) error { return nil }

type memDB struct{}

func (d *memDB) Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (d *memDB) Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error) {
	return nil, nil
}

func (d *memDB) QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row {
	return nil
}

func (d *memDB) Begin(ctx context.Context) (pgx.Tx, error) { return &memTx{}, nil }

type memPnlRepo struct {
	rows map[string]domain.PnLVector
}

func (r *memPnlRepo) LoadAll(ctx context.Context, db repository.DBTX) (map[string]domain.PnLVector, error) {
	out := make(map[string]domain.PnLVector, len(r.rows))
	for k, v := range r.rows {
		out[k] = v
	}
	return out, nil
}

func (r *memPnlRepo) Upsert(ctx context.Context, db repository.DBTX, matchID string, v domain.PnLVector) error {
	r.rows[matchID] = v
	return nil
}

func (r *memPnlRepo) Truncate(ctx context.Context, db repository.DBTX) error {
	r.rows = map[string]domain.PnLVector{}
	return nil
}

type memOrderRepo struct {
	entries []domain.OrderBookEntry
}

func (r *memOrderRepo) Insert(ctx context.Context, db repository.DBTX, e domain.OrderBookEntry) error {
	for _, have := range r.entries {
		if have.TicketID == e.TicketID {
			return errors.New("duplicate ticket_id")
		}
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *memOrderRepo) ListRecent(ctx context.Context, db repository.DBTX, limit int) ([]domain.OrderBookEntry, error) {
	return r.entries, nil
}

func (r *memOrderRepo) Count(ctx context.Context, db repository.DBTX) (int, error) {
	return len(r.entries), nil
}

func (r *memOrderRepo) Truncate(ctx context.Context, db repository.DBTX) error {
	r.entries = nil
	return nil
}

type fixtureFeed struct{}

func (fixtureFeed) Name() string { return "Pinnacle" }

func (fixtureFeed) FetchOdds(ctx context.Context) ([]domain.MarketQuote, error) {
	return []domain.MarketQuote{
		{
			Bookmaker: "Pinnacle",
			MatchID:   "Manchester United vs Tottenham Hotspur",
			HomeTeam:  "Manchester United",
			AwayTeam:  "Tottenham Hotspur",
			HomeOdds:  2.10, DrawOdds: 3.50, AwayOdds: 3.20,
		},
	}, nil
}

func newTestBroker(t *testing.T) (*BrokerService, *memOrderRepo) {
	t.Helper()
	pnl := &memPnlRepo{rows: map[string]domain.PnLVector{}}
	orders := &memOrderRepo{}
	l, err := ledger.New(context.Background(), &memDB{}, pnl, orders, testLogger)
	require.NoError(t, err)

	cache := market.NewCache(fixtureFeed{}, market.DefaultTTL, testLogger)
	engine := risk.NewEngine(l, risk.Config{})
	return NewBrokerService(l, cache, engine, testLogger), orders
}

func singleTicket(id string, stake float64) domain.CustomerTicket {
	return domain.CustomerTicket{
		TicketID:   id,
		TicketType: domain.TicketSingle,
		Stake:      stake,
		Legs: []domain.TicketLeg{{
			MatchID:      "Manchester United vs Tottenham Hotspur",
			Selection:    domain.SelectionHome,
			CustomerOdds: 2.00,
		}},
	}
}

// ── tests ──

func TestEvaluateReturnsDecisionsInInputOrder(t *testing.T) {
	broker, _ := newTestBroker(t)

	decisions, err := broker.Evaluate(context.Background(), []domain.CustomerTicket{
		singleTicket("t1", 15000),
		singleTicket("t2", 50000),
	})
	require.NoError(t, err)
	require.Len(t, decisions, 2)
	assert.Equal(t, "t1", decisions[0].TicketID)
	assert.Equal(t, domain.ActionBBook, decisions[0].Action)
	assert.Equal(t, "t2", decisions[1].TicketID)
	assert.Equal(t, domain.ActionPartialHedge, decisions[1].Action)
}

func TestEvaluateRejectsMalformedTicketAtBoundary(t *testing.T) {
	broker, _ := newTestBroker(t)
	bad := singleTicket("t1", 500) // below stake floor

	_, err := broker.Evaluate(context.Background(), []domain.CustomerTicket{bad})
	require.Error(t, err)
	var appErr *domain.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
}

func TestCommitDecisionMovesTheWaterLevel(t *testing.T) {
	broker, orders := newTestBroker(t)
	ctx := context.Background()
	ticket := singleTicket("t1", 15000)

	decisions, err := broker.Evaluate(ctx, []domain.CustomerTicket{ticket})
	require.NoError(t, err)
	require.NoError(t, broker.CommitDecision(ctx, ticket, decisions[0]))

	exposures := broker.Exposures()
	assert.Equal(t, domain.PnLVector{Home: -15000, Draw: 15000, Away: 15000},
		exposures["Manchester United vs Tottenham Hotspur"])
	assert.Len(t, orders.entries, 1)

	// A later evaluation must see the committed water level: another
	// 30000 on home now projects past the 30000 line.
	next := singleTicket("t2", 30000)
	decisions, err = broker.Evaluate(ctx, []domain.CustomerTicket{next})
	require.NoError(t, err)
	assert.Equal(t, domain.ActionPartialHedge, decisions[0].Action)
}

func TestCommitDecisionRejectIsNoOp(t *testing.T) {
	broker, orders := newTestBroker(t)
	ticket := singleTicket("t1", 15000)

	err := broker.CommitDecision(context.Background(), ticket, domain.RiskDecision{
		TicketID: "t1",
		Action:   domain.ActionReject,
	})
	require.NoError(t, err)
	assert.Empty(t, orders.entries)
	assert.Empty(t, broker.Exposures())
}

func TestCommitDecisionTicketMismatch(t *testing.T) {
	broker, _ := newTestBroker(t)
	ticket := singleTicket("t1", 15000)

	err := broker.CommitDecision(context.Background(), ticket, domain.RiskDecision{
		TicketID: "other",
		Action:   domain.ActionBBook,
	})
	assert.Error(t, err)
}

func TestCommitDecisionDoubleCommitSurfaces(t *testing.T) {
	broker, orders := newTestBroker(t)
	ctx := context.Background()
	ticket := singleTicket("t1", 15000)

	decisions, err := broker.Evaluate(ctx, []domain.CustomerTicket{ticket})
	require.NoError(t, err)
	require.NoError(t, broker.CommitDecision(ctx, ticket, decisions[0]))

	err = broker.CommitDecision(ctx, ticket, decisions[0])
	require.Error(t, err, "order book primary key must make double commits loud")
	assert.Len(t, orders.entries, 1)
}

func TestWipeResetsEverything(t *testing.T) {
	broker, orders := newTestBroker(t)
	ctx := context.Background()
	ticket := singleTicket("t1", 15000)

	decisions, err := broker.Evaluate(ctx, []domain.CustomerTicket{ticket})
	require.NoError(t, err)
	require.NoError(t, broker.CommitDecision(ctx, ticket, decisions[0]))

	require.NoError(t, broker.Wipe(ctx))
	assert.Empty(t, broker.Exposures())
	assert.Empty(t, orders.entries)
}
