package view

import "coin-dashboard/internal/format"

// CoinView is a coin with its display strings precomputed.
type CoinView struct {
	Mint        string `json:"mint"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
	Website     string `json:"website"`
	Twitter     string `json:"twitter"`
	Telegram    string `json:"telegram"`
	Status      string `json:"status"`

	Price         float64     `json:"price"`
	Change24h     float64     `json:"change_24h"`
	Volume24h     float64     `json:"volume_24h"`
	MarketCap     float64     `json:"market_cap"`
	TotalSupply   float64     `json:"total_supply"`
	PriceText     string      `json:"price_text"`
	ChangeText    string      `json:"change_text"`
	ChangeTone    format.Tone `json:"change_tone"`
	VolumeText    string      `json:"volume_text"`
	MarketCapText string      `json:"market_cap_text"`
	SupplyText    string      `json:"total_supply_text"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// TradeView is a trade row ready for display.
type TradeView struct {
	ID          string  `json:"id"`
	Mint        string  `json:"mint"`
	Symbol      string  `json:"symbol,omitempty"`
	Signature   string  `json:"signature"`
	Side        string  `json:"side"`
	Amount      float64 `json:"amount"`
	Price       float64 `json:"price"`
	PriceText   string  `json:"price_text"`
	TotalText   string  `json:"total_text"`
	Trader      string  `json:"trader"`
	TraderShort string  `json:"trader_short"`
	ProfitLoss  float64 `json:"profit_loss"`
	TimestampMs int64   `json:"timestamp_ms"`
	Timestamp   string  `json:"timestamp"`
	Clock       string  `json:"clock"`
}

// SocialView is a social metrics snapshot. Present is false when no snapshot
// exists, in which case every value is zero.
type SocialView struct {
	Present        bool    `json:"present"`
	HolderCount    int64   `json:"holder_count"`
	MentionCount   int64   `json:"mention_count"`
	SocialScore    float64 `json:"social_score"`
	ScoreText      string  `json:"score_text"`
	ScoreBar       float64 `json:"score_bar"`
	Sentiment      float64 `json:"sentiment"`
	SentimentLabel string  `json:"sentiment_label"`
}

// PricePoint is one point of the price chart.
type PricePoint struct {
	TimestampMs int64   `json:"timestamp_ms"`
	Timestamp   string  `json:"timestamp"`
	Price       float64 `json:"price"`
}

// StatsView is the system-wide summary.
type StatsView struct {
	TotalCoins      int     `json:"total_coins"`
	ActiveCoins     int     `json:"active_coins"`
	TotalVolume24h  float64 `json:"total_volume_24h"`
	VolumeText      string  `json:"total_volume_24h_text"`
	TotalTrades     int64   `json:"total_trades"`
	TotalProfitLoss float64 `json:"total_profit_loss"`
	ProfitLossText  string  `json:"total_profit_loss_text"`
	GeneratedAt     string  `json:"generated_at"`
}

// EmptyState describes what to render in place of an empty list.
type EmptyState struct {
	Title       string `json:"title"`
	Message     string `json:"message"`
	ActionLabel string `json:"action_label,omitempty"`
	ActionURL   string `json:"action_url,omitempty"`
}

// CoinDetail is the coin detail page payload.
type CoinDetail struct {
	Coin        CoinView     `json:"coin"`
	Social      SocialView   `json:"social_metrics"`
	Trades      []TradeView  `json:"trades"`
	History     []PricePoint `json:"historical_data"`
	GeneratedAt string       `json:"generated_at"`
}

// Dashboard is the dashboard page payload. EmptyCoins and EmptyTrades are set
// exactly when the matching list is empty.
type Dashboard struct {
	Stats        StatsView   `json:"system_stats"`
	Coins        []CoinView  `json:"coins"`
	RecentTrades []TradeView `json:"recent_trades"`
	EmptyCoins   *EmptyState `json:"empty_coins,omitempty"`
	EmptyTrades  *EmptyState `json:"empty_trades,omitempty"`
	GeneratedAt  string      `json:"generated_at"`
}
