package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-dashboard/internal/domain"
	"coin-dashboard/internal/storage"
)

func testTrade(id, mint string, ts int64, pnl float64) *domain.Trade {
	return &domain.Trade{
		ID:         id,
		Mint:       mint,
		Signature:  "sig-" + id,
		Side:       domain.TradeSideBuy,
		Amount:     1000,
		Price:      0.0001,
		Trader:     "2ENqSJEGRD4XG5rvcAoG9EJMpo1EAVL8wrXHQ14niLHQ",
		Timestamp:  ts,
		ProfitLoss: pnl,
	}
}

func seedTrades(t *testing.T, ctx context.Context, pool *Pool) *TradeStore {
	t.Helper()

	coins := NewCoinStore(pool)
	require.NoError(t, coins.Insert(ctx, testCoin(testMintA, "AAA", 10)))
	require.NoError(t, coins.Insert(ctx, testCoin(testMintB, "BBB", 20)))

	store := NewTradeStore(pool)
	for _, tr := range []*domain.Trade{
		testTrade("t1", testMintA, 1000, 0.5),
		testTrade("t2", testMintA, 3000, -0.2),
		testTrade("t3", testMintA, 2000, 0),
		testTrade("t4", testMintB, 4000, 1.0),
	} {
		require.NoError(t, store.Insert(ctx, tr))
	}
	return store
}

func tradeIDs(trades []*domain.Trade) []string {
	ids := make([]string, 0, len(trades))
	for _, tr := range trades {
		ids = append(ids, tr.ID)
	}
	return ids
}

func TestTradeStore_GetByMint(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := seedTrades(t, ctx, pool)

	trades, err := store.GetByMint(ctx, testMintA, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2", "t3", "t1"}, tradeIDs(trades))

	limited, err := store.GetByMint(ctx, testMintA, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"t2", "t3"}, tradeIDs(limited))

	none, err := store.GetByMint(ctx, testMintC, 10)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTradeStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := seedTrades(t, ctx, pool)

	err := store.Insert(ctx, testTrade("t1", testMintA, 1000, 0))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	err = store.Insert(ctx, &domain.Trade{ID: "bad", Mint: testMintA, Side: "HOLD"})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)
}

func TestTradeStore_GetRecentAndRange(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := seedTrades(t, ctx, pool)

	recent, err := store.GetRecent(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"t4", "t2", "t3"}, tradeIDs(recent))

	ranged, err := store.GetByTimeRange(ctx, testMintA, 1000, 2000)
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t3"}, tradeIDs(ranged))
}

func TestTradeStore_SummaryAndDeleteBefore(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := seedTrades(t, ctx, pool)

	sum, err := store.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), sum.Count)
	assert.InDelta(t, 1.3, sum.TotalProfitLoss, 1e-9)

	deleted, err := store.DeleteBefore(ctx, 2500)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	sum, err = store.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sum.Count)
}

func TestTradeStore_SummaryEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	sum, err := NewTradeStore(pool).Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.TradeSummary{}, sum)
}
