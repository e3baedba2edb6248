package api

import "coin-dashboard/internal/view"

// TradesResponse is the body of GET /api/trades/{coinId}. Trades is only
// meaningful when Success is true.
type TradesResponse struct {
	Success   bool             `json:"success"`
	Trades    []view.TradeView `json:"trades"`
	Timestamp string           `json:"timestamp"`
	Error     string           `json:"error,omitempty"`
}

// CoinsResponse is the body of GET /api/coins.
type CoinsResponse struct {
	Success   bool            `json:"success"`
	Timestamp string          `json:"timestamp"`
	Coins     []view.CoinView `json:"coins"`
	Error     string          `json:"error,omitempty"`
}

// DashboardResponse is the body of GET /.
type DashboardResponse struct {
	Success   bool            `json:"success"`
	Timestamp string          `json:"timestamp"`
	Dashboard *view.Dashboard `json:"dashboard,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// CoinDetailResponse is the body of GET /coin/{mint}.
type CoinDetailResponse struct {
	Success   bool             `json:"success"`
	Timestamp string           `json:"timestamp"`
	Detail    *view.CoinDetail `json:"coin_detail,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// ErrorResponse is returned for failures on any endpoint.
type ErrorResponse struct {
	Success   bool   `json:"success"`
	Timestamp string `json:"timestamp"`
	Error     string `json:"error"`
}

// ComponentHealth is the result of one health check.
type ComponentHealth struct {
	Name    string `json:"name"`
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

// SystemHealthResponse is the body of GET /api/system_health.
type SystemHealthResponse struct {
	Success    bool              `json:"success"`
	Status     string            `json:"status"`
	Timestamp  string            `json:"timestamp"`
	Components []ComponentHealth `json:"components"`
}

// Health status values.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)
