package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"coin-dashboard/internal/domain"
	"coin-dashboard/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const tradeColumns = `id, mint, signature, side, amount, price, trader, executed_at, profit_loss`

// Insert adds a new trade. Returns ErrDuplicateKey if trade id exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.Trade) error {
	if t == nil || t.ID == "" || t.Mint == "" || !t.Side.Valid() {
		return storage.ErrInvalidInput
	}

	query := `INSERT INTO trades (` + tradeColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := s.pool.Exec(ctx, query,
		t.ID, t.Mint, t.Signature, string(t.Side), t.Amount, t.Price, t.Trader, t.Timestamp, t.ProfitLoss,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert trade: %w", err)
	}
	return nil
}

// GetByMint retrieves the latest trades of a coin, ordered by timestamp DESC.
func (s *TradeStore) GetByMint(ctx context.Context, mint string, limit int) ([]*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + `
		FROM trades
		WHERE mint = $1
		ORDER BY executed_at DESC, id ASC
		LIMIT $2`

	return s.query(ctx, "get trades by mint", query, mint, limitArg(limit))
}

// GetRecent retrieves the latest trades across all coins, ordered by timestamp DESC.
func (s *TradeStore) GetRecent(ctx context.Context, limit int) ([]*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + `
		FROM trades
		ORDER BY executed_at DESC, id ASC
		LIMIT $1`

	return s.query(ctx, "get recent trades", query, limitArg(limit))
}

// GetByTimeRange retrieves trades of a coin within [start, end] (inclusive), ordered by timestamp ASC.
func (s *TradeStore) GetByTimeRange(ctx context.Context, mint string, start, end int64) ([]*domain.Trade, error) {
	query := `SELECT ` + tradeColumns + `
		FROM trades
		WHERE mint = $1 AND executed_at >= $2 AND executed_at <= $3
		ORDER BY executed_at ASC, id ASC`

	return s.query(ctx, "get trades by time range", query, mint, start, end)
}

// Summary returns the count and realized PnL over all trades.
func (s *TradeStore) Summary(ctx context.Context) (domain.TradeSummary, error) {
	var sum domain.TradeSummary
	err := s.pool.QueryRow(ctx, `SELECT count(*), COALESCE(sum(profit_loss), 0) FROM trades`).
		Scan(&sum.Count, &sum.TotalProfitLoss)
	if err != nil {
		return domain.TradeSummary{}, fmt.Errorf("summarize trades: %w", err)
	}
	return sum, nil
}

// DeleteBefore removes trades with timestamp < cutoff.
func (s *TradeStore) DeleteBefore(ctx context.Context, cutoff int64) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM trades WHERE executed_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old trades: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *TradeStore) query(ctx context.Context, op, query string, args ...any) ([]*domain.Trade, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var trades []*domain.Trade
	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		trades = append(trades, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}
	return trades, nil
}

// limitArg maps "no limit" to NULL, which LIMIT treats as unbounded.
func limitArg(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}

// scanTrade scans a single row into Trade.
func scanTrade(row pgx.Row) (*domain.Trade, error) {
	var t domain.Trade
	var side string

	err := row.Scan(
		&t.ID, &t.Mint, &t.Signature, &side,
		&t.Amount, &t.Price, &t.Trader, &t.Timestamp, &t.ProfitLoss,
	)
	if err != nil {
		return nil, err
	}

	t.Side = domain.TradeSide(side)
	return &t, nil
}
