// Package view assembles the coin detail and dashboard payloads from the stores.
package view

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"coin-dashboard/internal/domain"
	"coin-dashboard/internal/idhash"
	"coin-dashboard/internal/observability"
	"coin-dashboard/internal/storage"
)

// ErrNotFound is returned when the requested coin does not exist or the
// identifier is not a valid mint address.
var ErrNotFound = errors.New("coin not found")

// Config holds view service configuration.
type Config struct {
	TradePageSize     int            // trades on the coin detail page
	APITradeLimit     int            // trades returned by the trades API
	RecentTradesLimit int            // system-wide trades on the dashboard
	HistoryWindow     time.Duration  // price chart window
	Location          *time.Location // zone for HH:MM trade clocks
}

// DefaultConfig returns default view configuration.
func DefaultConfig() Config {
	return Config{
		TradePageSize:     50,
		APITradeLimit:     100,
		RecentTradesLimit: 10,
		HistoryWindow:     24 * time.Hour,
		Location:          time.UTC,
	}
}

// Stores groups the read dependencies of the view service.
type Stores struct {
	Coins  storage.CoinStore
	Trades storage.TradeStore
	Prices storage.PriceHistoryStore
	Social storage.SocialMetricsStore
}

// Service builds render-ready payloads. It never writes to the stores.
type Service struct {
	stores Stores
	cfg    Config
	logger *log.Logger
	now    func() time.Time
}

// NewService creates a view service.
func NewService(stores Stores, cfg Config, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{
		stores: stores,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// CoinDetail builds the coin detail payload for mint.
func (s *Service) CoinDetail(ctx context.Context, mint string) (*CoinDetail, error) {
	start := time.Now()
	defer func() { observability.RecordViewBuild("coin_detail", time.Since(start).Seconds()) }()

	if !idhash.ValidMint(mint) {
		return nil, ErrNotFound
	}

	now := s.now()
	var (
		coin    *domain.Coin
		social  domain.Optional[domain.SocialMetrics]
		trades  []*domain.Trade
		history []*domain.HistoricalPricePoint
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := s.stores.Coins.GetByMint(gctx, mint)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("get coin: %w", err)
		}
		coin = c
		return nil
	})
	g.Go(func() error {
		opt, err := s.socialMetrics(gctx, mint)
		if err != nil {
			return err
		}
		social = opt
		return nil
	})
	g.Go(func() error {
		t, err := s.stores.Trades.GetByMint(gctx, mint, s.cfg.TradePageSize)
		if err != nil {
			return fmt.Errorf("get trades: %w", err)
		}
		trades = t
		return nil
	})
	g.Go(func() error {
		end := now.UnixMilli()
		from := now.Add(-s.cfg.HistoryWindow).UnixMilli()
		h, err := s.stores.Prices.GetByTimeRange(gctx, mint, from, end)
		if err != nil {
			return fmt.Errorf("get price history: %w", err)
		}
		history = h
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	detail := &CoinDetail{
		Coin:        newCoinView(coin),
		Social:      newSocialView(social),
		Trades:      make([]TradeView, 0, len(trades)),
		History:     make([]PricePoint, 0, len(history)),
		GeneratedAt: now.UTC().Format(time.RFC3339),
	}
	for _, t := range trades {
		detail.Trades = append(detail.Trades, newTradeView(t, coin.Symbol, s.cfg.Location))
	}
	for _, p := range history {
		detail.History = append(detail.History, newPricePoint(p))
	}
	return detail, nil
}

// socialMetrics reads the snapshot; an absent snapshot is not an error.
func (s *Service) socialMetrics(ctx context.Context, mint string) (domain.Optional[domain.SocialMetrics], error) {
	if s.stores.Social == nil {
		return domain.None[domain.SocialMetrics](), nil
	}
	m, err := s.stores.Social.Get(ctx, mint)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return domain.None[domain.SocialMetrics](), nil
		}
		return domain.None[domain.SocialMetrics](), fmt.Errorf("get social metrics: %w", err)
	}
	return domain.Some(*m), nil
}

// Dashboard builds the dashboard payload.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	start := time.Now()
	defer func() { observability.RecordViewBuild("dashboard", time.Since(start).Seconds()) }()

	now := s.now()
	var (
		total   int
		active  []*domain.Coin
		recent  []*domain.Trade
		summary domain.TradeSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.stores.Coins.Count(gctx)
		if err != nil {
			return fmt.Errorf("count coins: %w", err)
		}
		total = n
		return nil
	})
	g.Go(func() error {
		c, err := s.stores.Coins.GetActive(gctx)
		if err != nil {
			return fmt.Errorf("get active coins: %w", err)
		}
		active = c
		return nil
	})
	g.Go(func() error {
		t, err := s.stores.Trades.GetRecent(gctx, s.cfg.RecentTradesLimit)
		if err != nil {
			return fmt.Errorf("get recent trades: %w", err)
		}
		recent = t
		return nil
	})
	g.Go(func() error {
		sum, err := s.stores.Trades.Summary(gctx)
		if err != nil {
			return fmt.Errorf("summarize trades: %w", err)
		}
		summary = sum
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := domain.SystemStats{
		TotalCoins:      total,
		ActiveCoins:     len(active),
		TotalTrades:     summary.Count,
		TotalProfitLoss: summary.TotalProfitLoss,
		GeneratedAt:     now.UnixMilli(),
	}
	for _, c := range active {
		stats.TotalVolume24h += c.Volume24h
	}

	symbols := make(map[string]string, len(active))
	for _, c := range active {
		symbols[c.Mint] = c.Symbol
	}

	d := &Dashboard{
		Stats:        newStatsView(stats),
		Coins:        make([]CoinView, 0, len(active)),
		RecentTrades: make([]TradeView, 0, len(recent)),
		GeneratedAt:  now.UTC().Format(time.RFC3339),
	}
	for _, c := range active {
		d.Coins = append(d.Coins, newCoinView(c))
	}
	for _, t := range recent {
		d.RecentTrades = append(d.RecentTrades, newTradeView(t, s.symbolFor(ctx, symbols, t.Mint), s.cfg.Location))
	}

	if len(d.Coins) == 0 {
		empty := EmptyCoins
		d.EmptyCoins = &empty
	}
	if len(d.RecentTrades) == 0 {
		empty := EmptyTrades
		d.EmptyTrades = &empty
	}
	return d, nil
}

// symbolFor resolves a coin symbol, falling back to the store for coins that
// are no longer active. Unknown coins resolve to "".
func (s *Service) symbolFor(ctx context.Context, symbols map[string]string, mint string) string {
	if sym, ok := symbols[mint]; ok {
		return sym
	}
	c, err := s.stores.Coins.GetByMint(ctx, mint)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Printf("Warning: symbol lookup for %s failed: %v", mint, err)
		}
		symbols[mint] = ""
		return ""
	}
	symbols[mint] = c.Symbol
	return c.Symbol
}

// Trades returns the latest trades of a coin for the trades API.
func (s *Service) Trades(ctx context.Context, mint string) ([]TradeView, error) {
	if !idhash.ValidMint(mint) {
		return nil, ErrNotFound
	}

	coin, err := s.stores.Coins.GetByMint(ctx, mint)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get coin: %w", err)
	}

	trades, err := s.stores.Trades.GetByMint(ctx, mint, s.cfg.APITradeLimit)
	if err != nil {
		return nil, fmt.Errorf("get trades: %w", err)
	}

	out := make([]TradeView, 0, len(trades))
	for _, t := range trades {
		out = append(out, newTradeView(t, coin.Symbol, s.cfg.Location))
	}
	return out, nil
}

// Coins returns all active coins for the coins API.
func (s *Service) Coins(ctx context.Context) ([]CoinView, error) {
	active, err := s.stores.Coins.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("get active coins: %w", err)
	}

	out := make([]CoinView, 0, len(active))
	for _, c := range active {
		out = append(out, newCoinView(c))
	}
	return out, nil
}
