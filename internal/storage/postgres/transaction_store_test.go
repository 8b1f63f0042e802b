package postgres_test

import (
	"context"
	pg "solana-sniper/internal/storage/postgres"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

func TestTransactionStore_InsertGetUpdate(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pg.NewTransactionStore(pool)
	ctx := context.Background()

	tx := domain.NewSwapTransaction(
		"9WzDXwBbmkg8ZTbNMqUxvQRAyrZzDsGYdLVL9zYtAWWM",
		"JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4",
		"EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		domain.DexJupiter, 1.5, 5000, "AQABBase64Data")

	require.NoError(t, store.Insert(ctx, tx))
	require.ErrorIs(t, store.Insert(ctx, tx), storage.ErrDuplicateKey)

	got, err := store.Get(ctx, tx.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TxStatusPending, got.Status)
	require.Equal(t, domain.TxTypeSwap, got.Type)
	require.Equal(t, uint64(5000), got.FeeLamports)

	// Relay rejection: status degraded, message preserved verbatim.
	relayErr := `{"code":-32602,"message":"bundle exceeds tip floor"}`
	require.NoError(t, store.UpdateStatus(ctx, tx.ID, domain.TxStatusFailed, "", relayErr))

	got, err = store.Get(ctx, tx.ID)
	require.NoError(t, err)
	require.Equal(t, domain.TxStatusFailed, got.Status)
	require.Equal(t, relayErr, got.Error)

	// Confirmation sets the on-chain hash; empty hash keeps the old one.
	require.NoError(t, store.UpdateStatus(ctx, tx.ID, domain.TxStatusConfirmed, "5sig", ""))
	got, err = store.Get(ctx, tx.ID)
	require.NoError(t, err)
	require.Equal(t, "5sig", got.Hash)

	require.NoError(t, store.UpdateStatus(ctx, tx.ID, domain.TxStatusConfirmed, "", ""))
	got, err = store.Get(ctx, tx.ID)
	require.NoError(t, err)
	require.Equal(t, "5sig", got.Hash)

	require.ErrorIs(t,
		store.UpdateStatus(ctx, "missing", domain.TxStatusFailed, "", ""),
		storage.ErrNotFound)
}

func TestTransactionStore_ListNewestFirst(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := pg.NewTransactionStore(pool)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Millisecond)
	for i := 0; i < 3; i++ {
		tx := domain.NewSwapTransaction("s", "r", "m", domain.DexRaydium, float64(i), 5000, "raw")
		tx.Timestamp = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Insert(ctx, tx))
	}

	txs, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	require.Equal(t, 2.0, txs[0].Amount)
	require.Equal(t, 1.0, txs[1].Amount)
}
