package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

func testPool(address string, createdAt time.Time) *domain.Pool {
	return &domain.Pool{
		PoolAddress:  address,
		BaseMint:     "base" + address,
		QuoteMint:    "So11111111111111111111111111111111111111112",
		PairName:     "TEST/SOL",
		PairSymbol:   "TEST",
		LiquidityUSD: 50_000,
		CurrentPrice: 0.0012,
		Volume24h:    120_000,
		Dex:          "Raydium",
		CreatedAt:    createdAt,
	}
}

func TestPoolStore_UpsertAndGet(t *testing.T) {
	store := NewPoolStore()
	ctx := context.Background()

	p := testPool("pool1", time.Now().UTC())
	if err := store.UpsertBulk(ctx, []*domain.Pool{p}); err != nil {
		t.Fatalf("UpsertBulk failed: %v", err)
	}

	got, err := store.Get(ctx, "pool1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.CurrentPrice != 0.0012 {
		t.Errorf("CurrentPrice mismatch: got %g", got.CurrentPrice)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestPoolStore_UpsertPreservesTracked(t *testing.T) {
	store := NewPoolStore()
	ctx := context.Background()

	p := testPool("pool1", time.Now().UTC())
	if err := store.UpsertBulk(ctx, []*domain.Pool{p}); err != nil {
		t.Fatalf("UpsertBulk failed: %v", err)
	}
	if err := store.SetTracked(ctx, "pool1", true); err != nil {
		t.Fatalf("SetTracked failed: %v", err)
	}

	// Refresh from the feed: price changes, tracked flag stays.
	refreshed := testPool("pool1", time.Now().UTC())
	refreshed.CurrentPrice = 0.002
	if err := store.UpsertBulk(ctx, []*domain.Pool{refreshed}); err != nil {
		t.Fatalf("Second UpsertBulk failed: %v", err)
	}

	got, err := store.Get(ctx, "pool1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !got.Tracked {
		t.Error("Tracked flag lost on refresh")
	}
	if got.CurrentPrice != 0.002 {
		t.Errorf("Price not refreshed: got %g", got.CurrentPrice)
	}
}

func TestPoolStore_ListNewestFirst(t *testing.T) {
	store := NewPoolStore()
	ctx := context.Background()

	base := time.Now().UTC()
	pools := []*domain.Pool{
		testPool("old", base.Add(-time.Hour)),
		testPool("new", base),
	}
	if err := store.UpsertBulk(ctx, pools); err != nil {
		t.Fatalf("UpsertBulk failed: %v", err)
	}

	got, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 pools, got %d", len(got))
	}
	if got[0].PoolAddress != "new" {
		t.Errorf("Expected newest pool first, got %s", got[0].PoolAddress)
	}
}

func TestPoolStore_SetTrackedMissing(t *testing.T) {
	store := NewPoolStore()
	ctx := context.Background()

	if err := store.SetTracked(ctx, "missing", true); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
