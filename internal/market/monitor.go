// Package market keeps derived coin market data fresh.
//
// The monitor periodically recomputes 24h change and 24h volume for every
// active coin, fills missing token supplies from the Solana RPC, retires
// coins that stopped trading, purges data past the retention window and
// checks RPC health.
package market

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"coin-dashboard/internal/domain"
	"coin-dashboard/internal/observability"
	"coin-dashboard/internal/solana"
	"coin-dashboard/internal/storage"
)

// ErrAlreadyRunning is returned by RunOnce while a previous run is in flight.
var ErrAlreadyRunning = errors.New("monitor run already in progress")

// Config configures the market monitor.
type Config struct {
	// Interval between runs.
	Interval time.Duration
	// Window is the lookback for change and volume.
	Window time.Duration
	// Retention is how long trades and price history are kept.
	Retention time.Duration
	// InactiveAfter retires coins with no trades in Window once they are older than this.
	// Zero disables retirement.
	InactiveAfter time.Duration
	// Concurrency bounds parallel coin refreshes.
	Concurrency int
}

// DefaultConfig returns the default monitor configuration.
func DefaultConfig() Config {
	return Config{
		Interval:      60 * time.Second,
		Window:        24 * time.Hour,
		Retention:     7 * 24 * time.Hour,
		InactiveAfter: 72 * time.Hour,
		Concurrency:   4,
	}
}

// Options contains dependencies for Monitor.
type Options struct {
	Coins  storage.CoinStore
	Trades storage.TradeStore
	Prices storage.PriceHistoryStore
	// RPC is optional; without it supplies are not filled and health is not checked.
	RPC    solana.RPCClient
	Config Config
	Logger *log.Logger
}

// RunResult summarizes one monitor run.
type RunResult struct {
	ActiveCoins    int
	CoinsRefreshed int
	CoinErrors     int
	CoinsRetired   int
	TradesPurged   int64
	RPCHealthy     bool
	Slot           int64 // chain slot seen by a healthy node, 0 otherwise
	Duration       time.Duration
}

// Status is a snapshot of monitor state.
type Status struct {
	Running    bool      `json:"running"`
	Runs       int       `json:"runs"`
	LastRun    time.Time `json:"last_run,omitempty"`
	LastError  string    `json:"last_error,omitempty"`
	LastResult RunResult `json:"last_result"`
}

// Monitor recomputes derived market data on a schedule.
type Monitor struct {
	coins  storage.CoinStore
	trades storage.TradeStore
	prices storage.PriceHistoryStore
	rpc    solana.RPCClient
	cfg    Config
	logger *log.Logger
	now    func() time.Time

	mu         sync.Mutex
	running    bool
	runs       int
	lastRun    time.Time
	lastErr    error
	lastResult RunResult
}

// NewMonitor creates a new Monitor.
func NewMonitor(opts Options) *Monitor {
	cfg := opts.Config
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Window <= 0 {
		cfg.Window = def.Window
	}
	if cfg.Retention <= 0 {
		cfg.Retention = def.Retention
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Monitor{
		coins:  opts.Coins,
		trades: opts.Trades,
		prices: opts.Prices,
		rpc:    opts.RPC,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the time source.
func (m *Monitor) SetClock(now func() time.Time) {
	m.now = now
}

// Run executes the monitor immediately and then every Interval until ctx is done.
func (m *Monitor) Run(ctx context.Context) error {
	m.logger.Printf("Starting market monitor (interval: %v)...", m.cfg.Interval)

	m.tick(ctx)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

func (m *Monitor) tick(ctx context.Context) {
	res, err := m.RunOnce(ctx)
	switch {
	case errors.Is(err, ErrAlreadyRunning):
		m.logger.Println("Monitor already running, skipping...")
	case err != nil:
		m.logger.Printf("Monitor error: %v", err)
	default:
		m.logger.Printf("Monitor completed in %v: %d/%d coins refreshed, %d errors, %d retired, %d trades purged",
			res.Duration, res.CoinsRefreshed, res.ActiveCoins, res.CoinErrors, res.CoinsRetired, res.TradesPurged)
	}
}

// RunOnce performs a single monitor pass. Per-coin failures are counted in
// the result; only failing to list coins or to purge aborts the run.
func (m *Monitor) RunOnce(ctx context.Context) (RunResult, error) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return RunResult{}, ErrAlreadyRunning
	}
	m.running = true
	m.mu.Unlock()

	start := time.Now()
	res, err := m.run(ctx)
	res.Duration = time.Since(start)

	m.mu.Lock()
	m.running = false
	m.lastRun = m.now()
	m.runs++
	m.lastErr = err
	m.lastResult = res
	m.mu.Unlock()

	status := "success"
	if err != nil {
		status = "error"
	} else {
		observability.RecordMonitorSuccess(float64(m.now().Unix()))
	}
	observability.RecordMonitorRun(status, res.Duration.Seconds(), res.ActiveCoins)

	return res, err
}

func (m *Monitor) run(ctx context.Context) (RunResult, error) {
	var res RunResult
	now := m.now()

	res.RPCHealthy = m.checkHealth(ctx)
	if res.RPCHealthy {
		slot, err := m.rpc.GetSlot(ctx)
		if err != nil {
			m.logger.Printf("get slot: %v", err)
		} else {
			res.Slot = slot
		}
	}

	active, err := m.coins.GetActive(ctx)
	if err != nil {
		return res, fmt.Errorf("get active coins: %w", err)
	}
	res.ActiveCoins = len(active)

	var refreshed, failed, retired atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(m.cfg.Concurrency)
	for _, c := range active {
		g.Go(func() error {
			ok, err := m.refreshCoin(ctx, c, now)
			switch {
			case err != nil:
				failed.Add(1)
				m.logger.Printf("refresh %s: %v", c.Mint, err)
			case ok:
				refreshed.Add(1)
			default:
				retired.Add(1)
			}
			return nil
		})
	}
	g.Wait()

	res.CoinsRefreshed = int(refreshed.Load())
	res.CoinErrors = int(failed.Load())
	res.CoinsRetired = int(retired.Load())
	res.ActiveCoins -= res.CoinsRetired

	purged, err := m.purge(ctx, now)
	res.TradesPurged = purged
	if err != nil {
		return res, err
	}
	return res, nil
}

// refreshCoin recomputes a coin's derived fields. Returns false when the coin
// was retired instead.
func (m *Monitor) refreshCoin(ctx context.Context, c *domain.Coin, now time.Time) (bool, error) {
	from := now.Add(-m.cfg.Window).UnixMilli()
	to := now.UnixMilli()

	trades, err := m.trades.GetByTimeRange(ctx, c.Mint, from, to)
	if err != nil {
		return false, fmt.Errorf("get trades: %w", err)
	}

	if len(trades) == 0 && m.cfg.InactiveAfter > 0 && now.Sub(time.UnixMilli(c.CreatedAt)) > m.cfg.InactiveAfter {
		if err := m.coins.SetStatus(ctx, c.Mint, domain.CoinStatusInactive); err != nil {
			return false, fmt.Errorf("retire coin: %w", err)
		}
		return false, nil
	}

	points, err := m.prices.GetByTimeRange(ctx, c.Mint, from, to)
	if err != nil {
		return false, fmt.Errorf("get price history: %w", err)
	}

	change := Change(points)
	volume := Volume(trades)
	update := domain.MarketUpdate{
		Change24h: &change,
		Volume24h: &volume,
		UpdatedAt: to,
	}

	if c.TotalSupply == 0 && m.rpc != nil {
		supply, err := m.rpc.GetTokenSupply(ctx, c.Mint)
		if err != nil {
			m.logger.Printf("token supply for %s: %v", c.Mint, err)
		} else if supply.UIAmount > 0 {
			total := supply.UIAmount
			update.TotalSupply = &total
		}
	}

	if err := m.coins.UpdateMarket(ctx, c.Mint, update); err != nil {
		return false, fmt.Errorf("update market: %w", err)
	}
	observability.RecordCoinRefreshed()
	return true, nil
}

// purge removes trades and price history older than the retention window.
func (m *Monitor) purge(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-m.cfg.Retention).UnixMilli()

	n, err := m.trades.DeleteBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge trades: %w", err)
	}
	observability.RecordRowsPurged("trades", n)

	if err := m.prices.DeleteBefore(ctx, cutoff); err != nil {
		return n, fmt.Errorf("purge price history: %w", err)
	}
	return n, nil
}

func (m *Monitor) checkHealth(ctx context.Context) bool {
	if m.rpc == nil {
		return false
	}
	if err := m.rpc.GetHealth(ctx); err != nil {
		m.logger.Printf("RPC health check failed: %v", err)
		observability.SetRPCHealthy(false)
		return false
	}
	observability.SetRPCHealthy(true)
	return true
}

// Status returns a snapshot of the monitor state.
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Status{
		Running:    m.running,
		Runs:       m.runs,
		LastRun:    m.lastRun,
		LastResult: m.lastResult,
	}
	if m.lastErr != nil {
		s.LastError = m.lastErr.Error()
	}
	return s
}

// CheckRPC reports RPC health for the health endpoint.
func (m *Monitor) CheckRPC(ctx context.Context) error {
	if m.rpc == nil {
		return errors.New("rpc not configured")
	}
	return m.rpc.GetHealth(ctx)
}
