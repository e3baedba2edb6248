package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"coin-dashboard/internal/domain"
	"coin-dashboard/internal/storage"
)

// CoinStore implements storage.CoinStore using PostgreSQL.
type CoinStore struct {
	pool *Pool
}

// NewCoinStore creates a new CoinStore.
func NewCoinStore(pool *Pool) *CoinStore {
	return &CoinStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CoinStore = (*CoinStore)(nil)

const coinColumns = `
	mint, symbol, name, description, image_url, website, twitter, telegram,
	price, change_24h, volume_24h, market_cap, total_supply,
	status, created_at, updated_at`

// Insert adds a new coin. Returns ErrDuplicateKey if mint exists.
func (s *CoinStore) Insert(ctx context.Context, c *domain.Coin) error {
	if c == nil || c.Mint == "" {
		return storage.ErrInvalidInput
	}

	status := c.Status
	if status == "" {
		status = domain.CoinStatusActive
	}

	query := `INSERT INTO coins (` + coinColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := s.pool.Exec(ctx, query,
		c.Mint, c.Symbol, c.Name, c.Description, c.ImageURL, c.Website, c.Twitter, c.Telegram,
		c.Price, c.Change24h, c.Volume24h, c.MarketCap, c.TotalSupply,
		string(status), c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert coin: %w", err)
	}
	return nil
}

// UpdateMarket applies market field changes. Returns ErrNotFound if not exists.
func (s *CoinStore) UpdateMarket(ctx context.Context, mint string, u domain.MarketUpdate) error {
	query := `
		UPDATE coins SET
			price        = COALESCE($2::double precision, price),
			change_24h   = COALESCE($3::double precision, change_24h),
			volume_24h   = COALESCE($4::double precision, volume_24h),
			market_cap   = COALESCE($5::double precision, market_cap),
			total_supply = COALESCE($6::double precision, total_supply),
			updated_at   = GREATEST($7, updated_at)
		WHERE mint = $1
	`

	tag, err := s.pool.Exec(ctx, query,
		mint, u.Price, u.Change24h, u.Volume24h, u.MarketCap, u.TotalSupply, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update coin market: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// SetStatus changes the lifecycle status of a coin. Returns ErrNotFound if not exists.
func (s *CoinStore) SetStatus(ctx context.Context, mint string, status domain.CoinStatus) error {
	tag, err := s.pool.Exec(ctx, `UPDATE coins SET status = $2 WHERE mint = $1`, mint, string(status))
	if err != nil {
		return fmt.Errorf("set coin status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// GetByMint retrieves a coin by mint address. Returns ErrNotFound if not exists.
func (s *CoinStore) GetByMint(ctx context.Context, mint string) (*domain.Coin, error) {
	query := `SELECT ` + coinColumns + ` FROM coins WHERE mint = $1`

	c, err := scanCoin(s.pool.QueryRow(ctx, query, mint))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get coin by mint: %w", err)
	}
	return c, nil
}

// GetActive retrieves all active coins, ordered by market cap DESC, then mint ASC.
func (s *CoinStore) GetActive(ctx context.Context) ([]*domain.Coin, error) {
	query := `SELECT ` + coinColumns + `
		FROM coins
		WHERE status = 'active'
		ORDER BY market_cap DESC, mint ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query active coins: %w", err)
	}
	defer rows.Close()

	var coins []*domain.Coin
	for rows.Next() {
		c, err := scanCoin(rows)
		if err != nil {
			return nil, fmt.Errorf("scan coin row: %w", err)
		}
		coins = append(coins, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate coin rows: %w", err)
	}
	return coins, nil
}

// Count returns the total number of coins.
func (s *CoinStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM coins`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count coins: %w", err)
	}
	return n, nil
}

// scanCoin scans a single row into Coin.
func scanCoin(row pgx.Row) (*domain.Coin, error) {
	var c domain.Coin
	var status string

	err := row.Scan(
		&c.Mint, &c.Symbol, &c.Name,
		&c.Description, &c.ImageURL, &c.Website, &c.Twitter, &c.Telegram,
		&c.Price, &c.Change24h, &c.Volume24h, &c.MarketCap, &c.TotalSupply,
		&status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.Status = domain.CoinStatus(status)
	return &c, nil
}
