package memory

import (
	"context"
	"errors"
	"testing"

	"coin-dashboard/internal/domain"
	"coin-dashboard/internal/storage"
)

func TestPriceHistoryStore_InsertAndGetByTimeRange(t *testing.T) {
	store := NewPriceHistoryStore()
	ctx := context.Background()

	points := []*domain.HistoricalPricePoint{
		{Mint: "m1", TimestampMs: 3000, Price: 3},
		{Mint: "m1", TimestampMs: 1000, Price: 1},
		{Mint: "m1", TimestampMs: 2000, Price: 2},
		{Mint: "m2", TimestampMs: 2000, Price: 9},
	}

	if err := store.InsertBulk(ctx, points); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	result, err := store.GetByTimeRange(ctx, "m1", 1500, 3000)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("Expected 2 points, got %d", len(result))
	}
	if result[0].TimestampMs != 2000 || result[1].TimestampMs != 3000 {
		t.Errorf("points not ordered ASC: %d, %d", result[0].TimestampMs, result[1].TimestampMs)
	}
}

func TestPriceHistoryStore_DuplicateFailsBatch(t *testing.T) {
	store := NewPriceHistoryStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.HistoricalPricePoint{{Mint: "m1", TimestampMs: 1000, Price: 1}}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	err := store.InsertBulk(ctx, []*domain.HistoricalPricePoint{
		{Mint: "m1", TimestampMs: 2000, Price: 2},
		{Mint: "m1", TimestampMs: 1000, Price: 1},
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}

	// Whole batch rejected
	result, _ := store.GetByTimeRange(ctx, "m1", 0, 10000)
	if len(result) != 1 {
		t.Errorf("Expected 1 point after failed batch, got %d", len(result))
	}

	err = store.InsertBulk(ctx, []*domain.HistoricalPricePoint{
		{Mint: "m1", TimestampMs: 5000, Price: 2},
		{Mint: "m1", TimestampMs: 5000, Price: 3},
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey for intra-batch duplicate, got %v", err)
	}
}

func TestPriceHistoryStore_DeleteBefore(t *testing.T) {
	store := NewPriceHistoryStore()
	ctx := context.Background()

	_ = store.InsertBulk(ctx, []*domain.HistoricalPricePoint{
		{Mint: "m1", TimestampMs: 1000, Price: 1},
		{Mint: "m1", TimestampMs: 3000, Price: 3},
	})

	if err := store.DeleteBefore(ctx, 2000); err != nil {
		t.Fatalf("DeleteBefore failed: %v", err)
	}

	result, _ := store.GetByTimeRange(ctx, "m1", 0, 10000)
	if len(result) != 1 || result[0].TimestampMs != 3000 {
		t.Errorf("unexpected points after delete: %d", len(result))
	}
}
