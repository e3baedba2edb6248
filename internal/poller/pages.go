package poller

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"coin-dashboard/internal/api"
)

// TradesFetcher fetches the trades of one coin.
type TradesFetcher interface {
	FetchTrades(ctx context.Context, mint string) (*api.TradesResponse, error)
}

// DashboardFetcher fetches coin lists and full dashboard payloads.
type DashboardFetcher interface {
	FetchCoins(ctx context.Context) (*api.CoinsResponse, error)
	FetchDashboard(ctx context.Context) (*api.DashboardResponse, error)
}

// CoinPageConfig configures a CoinPage.
type CoinPageConfig struct {
	Interval  time.Duration
	TableSize int
	OnUpdate  func(added int) // called after a merge that added rows
}

// DefaultCoinPageConfig returns the coin page refresh settings.
func DefaultCoinPageConfig() CoinPageConfig {
	return CoinPageConfig{
		Interval:  15 * time.Second,
		TableSize: 50,
	}
}

// CoinPage refreshes the trade table of a single coin.
type CoinPage struct {
	mint    string
	fetcher TradesFetcher
	table   *TradeTable
	task    *Task
	seq     atomic.Uint64
	cfg     CoinPageConfig
	logger  *log.Logger
}

// NewCoinPage creates a coin page poller for mint.
func NewCoinPage(fetcher TradesFetcher, mint string, cfg CoinPageConfig, logger *log.Logger) *CoinPage {
	if logger == nil {
		logger = log.Default()
	}
	p := &CoinPage{
		mint:    mint,
		fetcher: fetcher,
		table:   NewTradeTable(cfg.TableSize),
		cfg:     cfg,
		logger:  logger,
	}
	p.task = NewTask("coin_trades", cfg.Interval, false, p.refresh, logger)
	return p
}

// Run polls until ctx is cancelled.
func (p *CoinPage) Run(ctx context.Context) {
	p.task.Run(ctx)
}

// Table returns the page trade table.
func (p *CoinPage) Table() *TradeTable {
	return p.table
}

// Stats returns the refresh task counters.
func (p *CoinPage) Stats() TaskStats {
	return p.task.Stats()
}

// Refresh performs one fetch and merge outside the schedule.
func (p *CoinPage) Refresh(ctx context.Context) error {
	return p.refresh(ctx)
}

func (p *CoinPage) refresh(ctx context.Context) error {
	seq := p.seq.Add(1)

	resp, err := p.fetcher.FetchTrades(ctx, p.mint)
	if err != nil {
		return fmt.Errorf("fetch trades for %s: %w", p.mint, err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	added, applied := p.table.Merge(seq, resp.Trades)
	if !applied {
		p.logger.Printf("coin_trades: discarded stale result #%d", seq)
		return nil
	}
	if added > 0 {
		p.logger.Printf("coin_trades: %d new trades for %s", added, p.mint)
		if p.cfg.OnUpdate != nil {
			p.cfg.OnUpdate(added)
		}
	}
	return nil
}

// DashboardPageConfig configures a DashboardPage.
type DashboardPageConfig struct {
	CoinsInterval  time.Duration // incremental coin list refresh
	ReloadInterval time.Duration // full page reload
	OnUpdate       func(kind string)
}

// DefaultDashboardPageConfig returns the dashboard refresh settings.
func DefaultDashboardPageConfig() DashboardPageConfig {
	return DashboardPageConfig{
		CoinsInterval:  10 * time.Second,
		ReloadInterval: 30 * time.Second,
	}
}

// Update kinds passed to DashboardPageConfig.OnUpdate.
const (
	UpdateCoins  = "coins"
	UpdateReload = "reload"
)

// DashboardPage refreshes the coin list on a fast timer and reloads the whole
// page on a slow one. Both timers write the same CoinBoard.
type DashboardPage struct {
	fetcher DashboardFetcher
	board   *CoinBoard
	coins   *Task
	reload  *Task
	cfg     DashboardPageConfig
	logger  *log.Logger

	coinsSeq  atomic.Uint64
	reloadSeq atomic.Uint64
}

// NewDashboardPage creates a dashboard page poller.
func NewDashboardPage(fetcher DashboardFetcher, cfg DashboardPageConfig, logger *log.Logger) *DashboardPage {
	if logger == nil {
		logger = log.Default()
	}
	p := &DashboardPage{
		fetcher: fetcher,
		board:   NewCoinBoard(),
		cfg:     cfg,
		logger:  logger,
	}
	p.coins = NewTask("dashboard_coins", cfg.CoinsInterval, false, p.refreshCoins, logger)
	p.reload = NewTask("dashboard_reload", cfg.ReloadInterval, true, p.fullReload, logger)
	return p
}

// Run polls until ctx is cancelled.
func (p *DashboardPage) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for _, t := range []*Task{p.reload, p.coins} {
		wg.Add(1)
		go func(t *Task) {
			defer wg.Done()
			t.Run(ctx)
		}(t)
	}
	wg.Wait()
}

// Board returns the page state.
func (p *DashboardPage) Board() *CoinBoard {
	return p.board
}

// Stats returns the counters of the coin and reload tasks.
func (p *DashboardPage) Stats() (coins, reload TaskStats) {
	return p.coins.Stats(), p.reload.Stats()
}

func (p *DashboardPage) refreshCoins(ctx context.Context) error {
	seq := p.coinsSeq.Add(1)

	resp, err := p.fetcher.FetchCoins(ctx)
	if err != nil {
		return fmt.Errorf("fetch coins: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	asOf, err := time.Parse(time.RFC3339, resp.Timestamp)
	if err != nil {
		return fmt.Errorf("parse coins timestamp %q: %w", resp.Timestamp, err)
	}

	if !p.board.ReplaceCoins(seq, asOf, resp.Coins) {
		p.logger.Printf("dashboard_coins: discarded stale result #%d", seq)
		return nil
	}
	if p.cfg.OnUpdate != nil {
		p.cfg.OnUpdate(UpdateCoins)
	}
	return nil
}

func (p *DashboardPage) fullReload(ctx context.Context) error {
	seq := p.reloadSeq.Add(1)

	resp, err := p.fetcher.FetchDashboard(ctx)
	if err != nil {
		return fmt.Errorf("reload dashboard: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	asOf, err := time.Parse(time.RFC3339, resp.Timestamp)
	if err != nil {
		return fmt.Errorf("parse dashboard timestamp %q: %w", resp.Timestamp, err)
	}

	if !p.board.Reload(seq, asOf, resp.Dashboard) {
		p.logger.Printf("dashboard_reload: discarded stale result #%d", seq)
		return nil
	}
	if p.cfg.OnUpdate != nil {
		p.cfg.OnUpdate(UpdateReload)
	}
	return nil
}
