// Package api serves the dashboard views over HTTP and provides a client for them.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"coin-dashboard/internal/view"
)

// Views is the read surface the handlers render.
type Views interface {
	CoinDetail(ctx context.Context, mint string) (*view.CoinDetail, error)
	Dashboard(ctx context.Context) (*view.Dashboard, error)
	Trades(ctx context.Context, mint string) ([]view.TradeView, error)
	Coins(ctx context.Context) ([]view.CoinView, error)
}

// HealthCheck is one named dependency check for /api/system_health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Options configures a Handler.
type Options struct {
	Views         Views
	HealthChecks  []HealthCheck
	HealthTimeout time.Duration
	Status        func() any // body of /status; nil serves {"status":"running"}
	Logger        *log.Logger
}

// Handler implements the HTTP endpoints.
type Handler struct {
	views         Views
	healthChecks  []HealthCheck
	healthTimeout time.Duration
	status        func() any
	logger        *log.Logger
	now           func() time.Time
}

// NewHandler creates a Handler.
func NewHandler(opts Options) *Handler {
	h := &Handler{
		views:         opts.Views,
		healthChecks:  opts.HealthChecks,
		healthTimeout: opts.HealthTimeout,
		status:        opts.Status,
		logger:        opts.Logger,
		now:           time.Now,
	}
	if h.logger == nil {
		h.logger = log.Default()
	}
	if h.healthTimeout <= 0 {
		h.healthTimeout = 5 * time.Second
	}
	if h.status == nil {
		h.status = func() any { return map[string]string{"status": "running"} }
	}
	return h
}

func (h *Handler) timestamp() string {
	return h.now().UTC().Format(time.RFC3339)
}

// writeJSON encodes body with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Printf("Warning: encode response: %v", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, code int, msg string) {
	h.writeJSON(w, code, ErrorResponse{Success: false, Timestamp: h.timestamp(), Error: msg})
}

// writeViewError maps view errors to 404 or 500.
func (h *Handler) writeViewError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, view.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, view.ErrNotFound.Error())
		return
	}
	h.logger.Printf("Error: %s %s: %v", r.Method, r.URL.Path, err)
	h.writeError(w, http.StatusInternalServerError, "internal error")
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := h.views.Dashboard(r.Context())
	if err != nil {
		h.writeViewError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, DashboardResponse{Success: true, Timestamp: h.timestamp(), Dashboard: d})
}

func (h *Handler) handleCoinDetail(w http.ResponseWriter, r *http.Request) {
	d, err := h.views.CoinDetail(r.Context(), mux.Vars(r)["mint"])
	if err != nil {
		h.writeViewError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, CoinDetailResponse{Success: true, Timestamp: h.timestamp(), Detail: d})
}

func (h *Handler) handleCoins(w http.ResponseWriter, r *http.Request) {
	coins, err := h.views.Coins(r.Context())
	if err != nil {
		h.writeViewError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, CoinsResponse{Success: true, Timestamp: h.timestamp(), Coins: coins})
}

func (h *Handler) handleTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := h.views.Trades(r.Context(), mux.Vars(r)["coinId"])
	if err != nil {
		h.writeViewError(w, r, err)
		return
	}
	if trades == nil {
		trades = []view.TradeView{}
	}
	h.writeJSON(w, http.StatusOK, TradesResponse{Success: true, Trades: trades, Timestamp: h.timestamp()})
}

func (h *Handler) handleSystemHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.healthTimeout)
	defer cancel()

	resp := SystemHealthResponse{
		Success:    true,
		Status:     StatusHealthy,
		Timestamp:  h.timestamp(),
		Components: make([]ComponentHealth, 0, len(h.healthChecks)),
	}
	for _, hc := range h.healthChecks {
		c := ComponentHealth{Name: hc.Name, Healthy: true}
		if err := hc.Check(ctx); err != nil {
			c.Healthy = false
			c.Error = err.Error()
			resp.Status = StatusDegraded
		}
		resp.Components = append(resp.Components, c)
	}

	code := http.StatusOK
	if resp.Status != StatusHealthy {
		code = http.StatusServiceUnavailable
	}
	h.writeJSON(w, code, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.status())
}
