package domain

// HistoricalPricePoint is one sample of a coin's price series.
// Corresponds to price_history table in ClickHouse.
type HistoricalPricePoint struct {
	Mint        string  // coin mint address
	TimestampMs int64   // Unix timestamp in milliseconds
	Price       float64 // price at this point
}
