package domain

// CoinStatus is the lifecycle state of a coin.
type CoinStatus string

// Coin statuses.
const (
	CoinStatusActive   CoinStatus = "active"
	CoinStatusInactive CoinStatus = "inactive"
)

// Coin represents a launched token and its current market data.
// Corresponds to coins table in PostgreSQL.
type Coin struct {
	Mint        string  // mint address (PK)
	Symbol      string  // ticker symbol
	Name        string  // display name
	Description *string // free text (nullable)
	ImageURL    *string // image link (nullable)
	Website     *string // website link (nullable)
	Twitter     *string // twitter link (nullable)
	Telegram    *string // telegram link (nullable)

	Price       float64 // current price in SOL
	Change24h   float64 // 24h price change in percent (signed)
	Volume24h   float64 // 24h traded volume in SOL
	MarketCap   float64 // market cap in SOL
	TotalSupply float64 // total token supply

	Status    CoinStatus
	CreatedAt int64 // launch timestamp (ms)
	UpdatedAt int64 // last market update (ms)
}

// IsActive reports whether the coin is listed on the dashboard.
func (c *Coin) IsActive() bool {
	return c.Status == CoinStatusActive
}

// MarketUpdate carries the market fields mutated by the pricing subsystem.
// Nil fields are left unchanged.
type MarketUpdate struct {
	Price       *float64
	Change24h   *float64
	Volume24h   *float64
	MarketCap   *float64
	TotalSupply *float64
	UpdatedAt   int64
}

// Apply copies the non-nil fields of u onto c.
func (u MarketUpdate) Apply(c *Coin) {
	if u.Price != nil {
		c.Price = *u.Price
	}
	if u.Change24h != nil {
		c.Change24h = *u.Change24h
	}
	if u.Volume24h != nil {
		c.Volume24h = *u.Volume24h
	}
	if u.MarketCap != nil {
		c.MarketCap = *u.MarketCap
	}
	if u.TotalSupply != nil {
		c.TotalSupply = *u.TotalSupply
	}
	if u.UpdatedAt > 0 {
		c.UpdatedAt = u.UpdatedAt
	}
}

// StringOrEmpty dereferences a nullable string, returning "" when absent.
func StringOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
