package storage

import (
	"context"
	"time"

	"solana-sniper/internal/domain"
)

// ConfigStore provides access to snipe_configs storage. Writes are
// last-writer-wins at the granularity of a single record.
type ConfigStore interface {
	// ListActive retrieves all active configs ordered by id ASC.
	ListActive(ctx context.Context) ([]*domain.SnipeConfig, error)

	// Get retrieves a config by id. Returns ErrNotFound if not exists.
	Get(ctx context.Context, id int64) (*domain.SnipeConfig, error)

	// Upsert inserts a new config (ID == 0) or replaces an existing one.
	// Sets ID and timestamps on the passed config.
	Upsert(ctx context.Context, cfg *domain.SnipeConfig) error

	// Deactivate flips the active flag off. Returns ErrNotFound if not exists.
	Deactivate(ctx context.Context, id int64) error

	// Delete removes a config permanently. Returns ErrNotFound if not exists.
	Delete(ctx context.Context, id int64) error
}

// TransactionStore provides access to the append-only transactions
// audit trail. Records are never deleted; only status transitions.
type TransactionStore interface {
	// Insert adds a new record. Returns ErrDuplicateKey if the id exists.
	Insert(ctx context.Context, tx *domain.Transaction) error

	// UpdateStatus records the asynchronous confirmation outcome.
	// Returns ErrNotFound if the id does not exist.
	UpdateStatus(ctx context.Context, id string, status domain.TxStatus, hash, errText string) error

	// Get retrieves a record by id. Returns ErrNotFound if not exists.
	Get(ctx context.Context, id string) (*domain.Transaction, error)

	// List retrieves records ordered by timestamp DESC, newest first.
	List(ctx context.Context, limit int) ([]*domain.Transaction, error)
}

// PoolStore caches pools observed on the market-data feed.
type PoolStore interface {
	// UpsertBulk inserts or refreshes a batch of pools.
	UpsertBulk(ctx context.Context, pools []*domain.Pool) error

	// Get retrieves a pool by address. Returns ErrNotFound if not exists.
	Get(ctx context.Context, address string) (*domain.Pool, error)

	// List retrieves all cached pools ordered by creation time DESC.
	List(ctx context.Context) ([]*domain.Pool, error)

	// SetTracked marks a pool tracked/untracked. Returns ErrNotFound if
	// not exists.
	SetTracked(ctx context.Context, address string, tracked bool) error
}

// PriceHistoryStore appends observed price snapshots for offline
// analysis. Best-effort: the monitor never blocks on it.
type PriceHistoryStore interface {
	// InsertBulk appends a batch of snapshots.
	InsertBulk(ctx context.Context, snaps []*domain.PriceSnapshot) error

	// GetByTokenRange retrieves snapshots for a token within
	// [start, end] (inclusive), ordered by observation time ASC.
	GetByTokenRange(ctx context.Context, token string, start, end time.Time) ([]*domain.PriceSnapshot, error)
}
