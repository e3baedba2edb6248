package storage

import (
	"context"

	"coin-dashboard/internal/domain"
)

// CoinStore provides access to coins storage.
type CoinStore interface {
	// Insert adds a new coin. Returns ErrDuplicateKey if mint exists.
	Insert(ctx context.Context, c *domain.Coin) error

	// UpdateMarket applies market field changes to a coin. Returns ErrNotFound if not exists.
	UpdateMarket(ctx context.Context, mint string, u domain.MarketUpdate) error

	// SetStatus changes the lifecycle status of a coin. Returns ErrNotFound if not exists.
	SetStatus(ctx context.Context, mint string, status domain.CoinStatus) error

	// GetByMint retrieves a coin by mint address. Returns ErrNotFound if not exists.
	GetByMint(ctx context.Context, mint string) (*domain.Coin, error)

	// GetActive retrieves all active coins, ordered by market cap DESC, then mint ASC.
	GetActive(ctx context.Context) ([]*domain.Coin, error)

	// Count returns the total number of coins regardless of status.
	Count(ctx context.Context) (int, error)
}

// TradeStore provides access to trades storage.
type TradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if trade id exists.
	Insert(ctx context.Context, t *domain.Trade) error

	// GetByMint retrieves the latest trades of a coin, ordered by timestamp DESC.
	// limit <= 0 means no limit.
	GetByMint(ctx context.Context, mint string, limit int) ([]*domain.Trade, error)

	// GetRecent retrieves the latest trades across all coins, ordered by timestamp DESC.
	GetRecent(ctx context.Context, limit int) ([]*domain.Trade, error)

	// GetByTimeRange retrieves trades of a coin within [start, end] (inclusive), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, mint string, start, end int64) ([]*domain.Trade, error)

	// Summary returns the count and realized PnL over all trades.
	Summary(ctx context.Context) (domain.TradeSummary, error)

	// DeleteBefore removes trades with timestamp < cutoff. Returns number removed.
	DeleteBefore(ctx context.Context, cutoff int64) (int64, error)
}

// PriceHistoryStore provides access to price_history storage.
type PriceHistoryStore interface {
	// InsertBulk adds multiple points. Fails entire batch on duplicate (mint, timestamp_ms).
	InsertBulk(ctx context.Context, points []*domain.HistoricalPricePoint) error

	// GetByTimeRange retrieves points for a coin within [start, end] (inclusive), ordered by timestamp ASC.
	GetByTimeRange(ctx context.Context, mint string, start, end int64) ([]*domain.HistoricalPricePoint, error)

	// DeleteBefore removes points with timestamp < cutoff.
	DeleteBefore(ctx context.Context, cutoff int64) error
}

// SocialMetricsStore provides access to the latest social metrics snapshots.
type SocialMetricsStore interface {
	// Put stores the snapshot for m.Mint, replacing any previous one.
	Put(ctx context.Context, m *domain.SocialMetrics) error

	// Get retrieves the latest snapshot for a coin. Returns ErrNotFound if absent.
	Get(ctx context.Context, mint string) (*domain.SocialMetrics, error)
}
