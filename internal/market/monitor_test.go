package market

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-dashboard/internal/domain"
	"coin-dashboard/internal/solana"
	"coin-dashboard/internal/storage/memory"
)

const (
	mintA = "GAKDkX3myHqofbqHQ4wV7HkzwLgAv8quFHpAPvGeunNG"
	mintB = "GSBz2NUew8BoBXYTMWyuJ9Je2z1MyajrTrRZwd3HmVz2"
	mintC = "2g7qfRJ9Y1Re5fAjZ6Uv5LJLZSfBbSeUeFF25R8RHKLF"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeRPC is a scripted solana.RPCClient.
type fakeRPC struct {
	mu        sync.Mutex
	healthErr error
	supplies  map[string]float64
	calls     map[string]int
	block     chan struct{}
}

func newFakeRPC() *fakeRPC {
	return &fakeRPC{supplies: map[string]float64{}, calls: map[string]int{}}
}

func (f *fakeRPC) GetHealth(ctx context.Context) error {
	f.mu.Lock()
	f.calls["getHealth"]++
	block := f.block
	err := f.healthErr
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (f *fakeRPC) GetSlot(context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["getSlot"]++
	return 271828, nil
}

func (f *fakeRPC) GetTokenSupply(_ context.Context, mint string) (*solana.TokenSupply, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls["getTokenSupply"]++
	s, ok := f.supplies[mint]
	if !ok {
		return nil, errors.New("account not found")
	}
	return &solana.TokenSupply{UIAmount: s, Decimals: 6}, nil
}

type fixture struct {
	mon    *Monitor
	rpc    *fakeRPC
	coins  *memory.CoinStore
	trades *memory.TradeStore
	prices *memory.PriceHistoryStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		rpc:    newFakeRPC(),
		coins:  memory.NewCoinStore(),
		trades: memory.NewTradeStore(),
		prices: memory.NewPriceHistoryStore(),
	}
	f.mon = NewMonitor(Options{
		Coins:  f.coins,
		Trades: f.trades,
		Prices: f.prices,
		RPC:    f.rpc,
		Config: DefaultConfig(),
		Logger: log.New(io.Discard, "", 0),
	})
	f.mon.SetClock(func() time.Time { return testNow })
	return f
}

func ms(d time.Duration) int64 {
	return testNow.Add(-d).UnixMilli()
}

func (f *fixture) addCoin(t *testing.T, mint string, created time.Duration, supply float64) {
	t.Helper()
	require.NoError(t, f.coins.Insert(context.Background(), &domain.Coin{
		Mint:        mint,
		Symbol:      mint[:3],
		Status:      domain.CoinStatusActive,
		TotalSupply: supply,
		CreatedAt:   ms(created),
	}))
}

func (f *fixture) addTrade(t *testing.T, id, mint string, ago time.Duration, amount, price float64) {
	t.Helper()
	require.NoError(t, f.trades.Insert(context.Background(), &domain.Trade{
		ID: id, Mint: mint, Signature: id, Side: domain.TradeSideBuy,
		Amount: amount, Price: price, Timestamp: ms(ago),
	}))
}

func (f *fixture) addPrice(t *testing.T, mint string, ago time.Duration, price float64) {
	t.Helper()
	require.NoError(t, f.prices.InsertBulk(context.Background(), []*domain.HistoricalPricePoint{
		{Mint: mint, TimestampMs: ms(ago), Price: price},
	}))
}

func TestMonitor_RunOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.rpc.supplies[mintA] = 1e9

	f.addCoin(t, mintA, time.Hour, 0)
	f.addCoin(t, mintB, time.Hour, 5e8)

	f.addTrade(t, "t1", mintA, 2*time.Hour, 100, 0.5)
	f.addTrade(t, "t2", mintA, time.Hour, 10, 2)
	f.addTrade(t, "old", mintA, 30*time.Hour, 1000, 1) // outside window, inside retention
	f.addTrade(t, "t3", mintB, time.Minute, 1, 1)

	f.addPrice(t, mintA, 20*time.Hour, 2)
	f.addPrice(t, mintA, 10*time.Hour, 2.5)
	f.addPrice(t, mintA, time.Hour, 3)

	res, err := f.mon.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ActiveCoins)
	assert.Equal(t, 2, res.CoinsRefreshed)
	assert.Zero(t, res.CoinErrors)
	assert.True(t, res.RPCHealthy)
	assert.Equal(t, int64(271828), res.Slot)

	a, err := f.coins.GetByMint(ctx, mintA)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, a.Change24h, 1e-9)
	assert.InDelta(t, 70.0, a.Volume24h, 1e-9)
	assert.Equal(t, 1e9, a.TotalSupply)
	assert.Equal(t, testNow.UnixMilli(), a.UpdatedAt)

	b, err := f.coins.GetByMint(ctx, mintB)
	require.NoError(t, err)
	assert.Zero(t, b.Change24h)
	assert.InDelta(t, 1.0, b.Volume24h, 1e-9)
	assert.Equal(t, 5e8, b.TotalSupply)

	// Supply is only fetched for coins missing it.
	assert.Equal(t, 1, f.rpc.calls["getTokenSupply"])
}

func TestMonitor_SupplyErrorDoesNotFailCoin(t *testing.T) {
	f := newFixture(t)
	f.addCoin(t, mintA, time.Hour, 0)

	res, err := f.mon.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.CoinsRefreshed)

	a, err := f.coins.GetByMint(context.Background(), mintA)
	require.NoError(t, err)
	assert.Zero(t, a.TotalSupply)
}

func TestMonitor_RetiresIdleCoins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addCoin(t, mintA, 100*time.Hour, 1)
	f.addCoin(t, mintB, time.Hour, 1) // young, no trades yet
	f.addCoin(t, mintC, 100*time.Hour, 1)
	f.addTrade(t, "t1", mintC, time.Hour, 1, 1)

	res, err := f.mon.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, res.CoinsRetired)
	assert.Equal(t, 2, res.ActiveCoins)

	a, err := f.coins.GetByMint(ctx, mintA)
	require.NoError(t, err)
	assert.Equal(t, domain.CoinStatusInactive, a.Status)

	active, err := f.coins.GetActive(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestMonitor_PurgesPastRetention(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.addCoin(t, mintA, 10*24*time.Hour, 1)
	f.addTrade(t, "ancient", mintA, 8*24*time.Hour, 1, 1)
	f.addTrade(t, "recent", mintA, time.Hour, 1, 1)
	f.addPrice(t, mintA, 8*24*time.Hour, 1)
	f.addPrice(t, mintA, time.Hour, 1)

	res, err := f.mon.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.TradesPurged)

	trades, err := f.trades.GetByMint(ctx, mintA, 0)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "recent", trades[0].ID)

	points, err := f.prices.GetByTimeRange(ctx, mintA, 0, testNow.UnixMilli())
	require.NoError(t, err)
	assert.Len(t, points, 1)
}

func TestMonitor_UnhealthyRPC(t *testing.T) {
	f := newFixture(t)
	f.rpc.healthErr = errors.New("node is behind")

	res, err := f.mon.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, res.RPCHealthy)
	assert.Zero(t, res.Slot)
	assert.Zero(t, f.rpc.calls["getSlot"], "slot is only read from a healthy node")
	assert.Error(t, f.mon.CheckRPC(context.Background()))
}

func TestMonitor_WithoutRPC(t *testing.T) {
	f := newFixture(t)
	mon := NewMonitor(Options{Coins: f.coins, Trades: f.trades, Prices: f.prices})
	mon.SetClock(func() time.Time { return testNow })
	f.addCoin(t, mintA, time.Hour, 0)

	res, err := mon.RunOnce(context.Background())
	require.NoError(t, err)
	assert.False(t, res.RPCHealthy)
	assert.Equal(t, 1, res.CoinsRefreshed)
	assert.Error(t, mon.CheckRPC(context.Background()))
}

func TestMonitor_SkipsOverlappingRun(t *testing.T) {
	f := newFixture(t)
	f.rpc.block = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.mon.RunOnce(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool { return f.mon.Status().Running }, time.Second, 5*time.Millisecond)

	_, err := f.mon.RunOnce(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRunning)

	close(f.rpc.block)
	require.NoError(t, <-done)

	st := f.mon.Status()
	assert.False(t, st.Running)
	assert.Equal(t, 1, st.Runs)
	assert.Equal(t, testNow, st.LastRun)
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	errCh := make(chan error, 1)
	go func() { errCh <- f.mon.Run(ctx) }()

	require.Eventually(t, func() bool { return f.mon.Status().Runs == 1 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestChange(t *testing.T) {
	pt := func(p float64) *domain.HistoricalPricePoint { return &domain.HistoricalPricePoint{Price: p} }

	assert.Zero(t, Change(nil))
	assert.Zero(t, Change([]*domain.HistoricalPricePoint{pt(1)}))
	assert.Zero(t, Change([]*domain.HistoricalPricePoint{pt(0), pt(1)}))
	assert.InDelta(t, -25.0, Change([]*domain.HistoricalPricePoint{pt(4), pt(9), pt(3)}), 1e-9)
}

func TestVolume(t *testing.T) {
	trades := []*domain.Trade{
		{Amount: 0.1, Price: 0.2},
		{Amount: 3, Price: 0.1},
		{Amount: 0, Price: 5},
	}
	assert.InDelta(t, 0.32, Volume(trades), 1e-12)
	assert.Zero(t, Volume(nil))
}
