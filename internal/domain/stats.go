package domain

// SystemStats is an aggregate snapshot computed per request. Not persisted.
type SystemStats struct {
	TotalCoins      int
	ActiveCoins     int
	TotalVolume24h  float64
	TotalTrades     int64
	TotalProfitLoss float64 // signed
	GeneratedAt     int64   // ms
}

// TradeSummary aggregates over all recorded trades.
type TradeSummary struct {
	Count           int64
	TotalProfitLoss float64
}
