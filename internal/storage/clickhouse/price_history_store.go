package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"

	"coin-dashboard/internal/domain"
	"coin-dashboard/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore using ClickHouse.
type PriceHistoryStore struct {
	conn *Conn
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(conn *Conn) *PriceHistoryStore {
	return &PriceHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// InsertBulk adds multiple points. Fails entire batch on duplicate (mint, timestamp_ms).
func (s *PriceHistoryStore) InsertBulk(ctx context.Context, points []*domain.HistoricalPricePoint) error {
	if len(points) == 0 {
		return nil
	}

	type key struct {
		mint        string
		timestampMs int64
	}
	seen := make(map[key]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.Mint == "" || p.TimestampMs < 0 {
			return storage.ErrInvalidInput
		}
		k := key{p.Mint, p.TimestampMs}
		if _, exists := seen[k]; exists {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	// MergeTree does not enforce uniqueness, so existing rows are checked explicitly.
	for _, p := range points {
		exists, err := s.exists(ctx, p.Mint, p.TimestampMs)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO price_history (mint, timestamp_ms, price)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		if err := batch.Append(p.Mint, uint64(p.TimestampMs), p.Price); err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByTimeRange retrieves points for a coin within [start, end] (inclusive), ordered by timestamp ASC.
func (s *PriceHistoryStore) GetByTimeRange(ctx context.Context, mint string, start, end int64) ([]*domain.HistoricalPricePoint, error) {
	if start < 0 {
		start = 0
	}
	if end < start {
		return nil, nil
	}

	query := `
		SELECT mint, timestamp_ms, price
		FROM price_history FINAL
		WHERE mint = ? AND timestamp_ms >= ? AND timestamp_ms <= ?
		ORDER BY timestamp_ms ASC
	`

	rows, err := s.conn.Query(ctx, query, mint, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}
	defer rows.Close()

	return scanPriceHistory(rows)
}

// DeleteBefore removes points with timestamp < cutoff. The mutation is
// synchronous so callers observe the purge on return.
func (s *PriceHistoryStore) DeleteBefore(ctx context.Context, cutoff int64) error {
	if cutoff <= 0 {
		return nil
	}

	ctx = clickhouse.Context(ctx, clickhouse.WithSettings(clickhouse.Settings{
		"mutations_sync": 1,
	}))

	if err := s.conn.Exec(ctx, `ALTER TABLE price_history DELETE WHERE timestamp_ms < ?`, uint64(cutoff)); err != nil {
		return fmt.Errorf("delete old price history: %w", err)
	}
	return nil
}

func (s *PriceHistoryStore) exists(ctx context.Context, mint string, timestampMs int64) (bool, error) {
	query := `SELECT count(*) FROM price_history WHERE mint = ? AND timestamp_ms = ?`

	var count uint64
	if err := s.conn.QueryRow(ctx, query, mint, uint64(timestampMs)).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanPriceHistory scans multiple rows.
func scanPriceHistory(rows chRows) ([]*domain.HistoricalPricePoint, error) {
	var points []*domain.HistoricalPricePoint

	for rows.Next() {
		var p domain.HistoricalPricePoint
		var timestampMs uint64

		if err := rows.Scan(&p.Mint, &timestampMs, &p.Price); err != nil {
			return nil, fmt.Errorf("scan price history row: %w", err)
		}

		p.TimestampMs = int64(timestampMs)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price history rows: %w", err)
	}

	return points, nil
}
