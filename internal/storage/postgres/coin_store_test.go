package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coin-dashboard/internal/domain"
	"coin-dashboard/internal/storage"
)

func TestCoinStore_InsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCoinStore(pool)
	ctx := context.Background()

	coin := testCoin(testMintA, "AAA", 5000)
	coin.Description = ptr("first coin")
	coin.Twitter = ptr("https://x.com/aaa")

	require.NoError(t, store.Insert(ctx, coin))

	got, err := store.GetByMint(ctx, testMintA)
	require.NoError(t, err)
	assert.Equal(t, coin, got)
	assert.Nil(t, got.Website)
	assert.Equal(t, "first coin", domain.StringOrEmpty(got.Description))
}

func TestCoinStore_InsertDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCoinStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testCoin(testMintA, "AAA", 1)))
	err := store.Insert(ctx, testCoin(testMintA, "AAA", 1))
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)
}

func TestCoinStore_GetByMintNotFound(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := NewCoinStore(pool).GetByMint(context.Background(), testMintB)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCoinStore_UpdateMarket(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCoinStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testCoin(testMintA, "AAA", 100)))

	err := store.UpdateMarket(ctx, testMintA, domain.MarketUpdate{
		Price:     ptr(0.5),
		Change24h: ptr(-3.25),
		UpdatedAt: 1700000060000,
	})
	require.NoError(t, err)

	got, err := store.GetByMint(ctx, testMintA)
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.Price)
	assert.Equal(t, -3.25, got.Change24h)
	assert.Equal(t, float64(100), got.MarketCap, "unset fields keep their value")
	assert.Equal(t, int64(1700000060000), got.UpdatedAt)

	err = store.UpdateMarket(ctx, testMintB, domain.MarketUpdate{Price: ptr(1.0)})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCoinStore_GetActiveOrdering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewCoinStore(pool)
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, testCoin(testMintA, "AAA", 10)))
	require.NoError(t, store.Insert(ctx, testCoin(testMintB, "BBB", 300)))
	require.NoError(t, store.Insert(ctx, testCoin(testMintC, "CCC", 20)))
	require.NoError(t, store.SetStatus(ctx, testMintC, domain.CoinStatusInactive))

	active, err := store.GetActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, testMintB, active[0].Mint)
	assert.Equal(t, testMintA, active[1].Mint)

	n, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestCoinStore_GetActiveEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	active, err := NewCoinStore(pool).GetActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, active)
}
