package domain

// TradeSide is the direction of a trade.
type TradeSide string

// Trade sides. A trade is exactly one of them.
const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// Valid reports whether s is BUY or SELL.
func (s TradeSide) Valid() bool {
	return s == TradeSideBuy || s == TradeSideSell
}

// Trade represents one executed buy or sell of a coin.
// Corresponds to trades table in PostgreSQL. Immutable once recorded.
type Trade struct {
	ID         string    // deterministic hash (see idhash.ComputeTradeID)
	Mint       string    // FK to coins
	Signature  string    // transaction signature
	Side       TradeSide // BUY | SELL
	Amount     float64   // token amount (> 0)
	Price      float64   // execution price in SOL
	Trader     string    // trader wallet address
	Timestamp  int64     // execution time (ms)
	ProfitLoss float64   // realized PnL in SOL (signed, 0 when unknown)
}
