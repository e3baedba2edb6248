package memory

import (
	"context"
	"errors"
	"testing"

	"coin-dashboard/internal/domain"
	"coin-dashboard/internal/storage"
)

func newTrade(id, mint string, ts int64) *domain.Trade {
	return &domain.Trade{
		ID:        id,
		Mint:      mint,
		Signature: "sig-" + id,
		Side:      domain.TradeSideBuy,
		Amount:    10,
		Price:     0.5,
		Trader:    "trader",
		Timestamp: ts,
	}
}

func TestTradeStore_InsertAndGetByMint(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	for _, tr := range []*domain.Trade{
		newTrade("t1", "m1", 1000),
		newTrade("t2", "m1", 3000),
		newTrade("t3", "m1", 2000),
		newTrade("t4", "m2", 4000),
	} {
		if err := store.Insert(ctx, tr); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	trades, err := store.GetByMint(ctx, "m1", 0)
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}

	want := []string{"t2", "t3", "t1"}
	if len(trades) != len(want) {
		t.Fatalf("Expected %d trades, got %d", len(want), len(trades))
	}
	for i, id := range want {
		if trades[i].ID != id {
			t.Errorf("trades[%d] = %s, want %s", i, trades[i].ID, id)
		}
	}

	limited, _ := store.GetByMint(ctx, "m1", 2)
	if len(limited) != 2 || limited[0].ID != "t2" {
		t.Errorf("limit not applied: %d trades", len(limited))
	}
}

func TestTradeStore_Duplicate(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	if err := store.Insert(ctx, newTrade("t1", "m1", 1000)); err != nil {
		t.Fatalf("First insert failed: %v", err)
	}

	err := store.Insert(ctx, newTrade("t1", "m1", 2000))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Expected ErrDuplicateKey, got %v", err)
	}
}

func TestTradeStore_InvalidSide(t *testing.T) {
	store := NewTradeStore()
	tr := newTrade("t1", "m1", 1000)
	tr.Side = "HOLD"

	if err := store.Insert(context.Background(), tr); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestTradeStore_GetRecentAndSummary(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	a := newTrade("a", "m1", 1000)
	a.ProfitLoss = 1.5
	b := newTrade("b", "m2", 3000)
	b.ProfitLoss = -0.5
	c := newTrade("c", "m3", 2000)

	for _, tr := range []*domain.Trade{a, b, c} {
		if err := store.Insert(ctx, tr); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	recent, err := store.GetRecent(ctx, 2)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(recent) != 2 || recent[0].ID != "b" || recent[1].ID != "c" {
		t.Errorf("unexpected recent trades: %v, %v", recent[0].ID, recent[1].ID)
	}

	sum, err := store.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if sum.Count != 3 {
		t.Errorf("Count = %d, want 3", sum.Count)
	}
	if sum.TotalProfitLoss != 1.0 {
		t.Errorf("TotalProfitLoss = %f, want 1.0", sum.TotalProfitLoss)
	}
}

func TestTradeStore_GetByTimeRange(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	for _, tr := range []*domain.Trade{
		newTrade("t1", "m1", 1000),
		newTrade("t2", "m1", 2000),
		newTrade("t3", "m1", 3000),
		newTrade("t4", "m2", 2000),
	} {
		if err := store.Insert(ctx, tr); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	trades, _ := store.GetByTimeRange(ctx, "m1", 2000, 3000)
	if len(trades) != 2 || trades[0].ID != "t2" || trades[1].ID != "t3" {
		t.Errorf("unexpected range result: %d trades", len(trades))
	}
}

func TestTradeStore_DeleteBefore(t *testing.T) {
	store := NewTradeStore()
	ctx := context.Background()

	for _, tr := range []*domain.Trade{
		newTrade("old", "m1", 1000),
		newTrade("new", "m1", 5000),
	} {
		if err := store.Insert(ctx, tr); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	removed, err := store.DeleteBefore(ctx, 2000)
	if err != nil {
		t.Fatalf("DeleteBefore failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	trades, _ := store.GetByMint(ctx, "m1", 0)
	if len(trades) != 1 || trades[0].ID != "new" {
		t.Errorf("expected only new trade to remain")
	}
}
