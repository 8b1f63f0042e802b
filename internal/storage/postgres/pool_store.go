package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

// PoolStore implements storage.PoolStore using PostgreSQL. It is a
// cache of the market-data feed: the feed remains authoritative, so
// UpsertBulk always overwrites.
type PoolStore struct {
	pool *Pool
}

// NewPoolStore creates a new PoolStore.
func NewPoolStore(pool *Pool) *PoolStore {
	return &PoolStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PoolStore = (*PoolStore)(nil)

// UpsertBulk inserts or refreshes a batch of pools. The tracked flag is
// preserved on conflict: it is user state, not feed state.
func (s *PoolStore) UpsertBulk(ctx context.Context, pools []*domain.Pool) error {
	if len(pools) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO pools (
			pool_address, base_mint, quote_mint, pair_name, pair_symbol,
			liquidity_usd, current_price, volume_24h, dex, created_at,
			last_updated, tracked
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (pool_address) DO UPDATE
		SET liquidity_usd = EXCLUDED.liquidity_usd,
		    current_price = EXCLUDED.current_price,
		    volume_24h = EXCLUDED.volume_24h,
		    last_updated = EXCLUDED.last_updated
	`

	now := time.Now().UTC()
	for _, p := range pools {
		_, err := tx.Exec(ctx, query,
			p.PoolAddress,
			p.BaseMint,
			p.QuoteMint,
			p.PairName,
			p.PairSymbol,
			p.LiquidityUSD,
			p.CurrentPrice,
			p.Volume24h,
			p.Dex,
			p.CreatedAt,
			now,
			p.Tracked,
		)
		if err != nil {
			return fmt.Errorf("upsert pool %s: %w", p.PoolAddress, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// Get retrieves a pool by address. Returns ErrNotFound if not exists.
func (s *PoolStore) Get(ctx context.Context, address string) (*domain.Pool, error) {
	query := selectPools + ` WHERE pool_address = $1`

	p, err := scanPool(s.pool.QueryRow(ctx, query, address))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get pool %s: %w", address, err)
	}
	return p, nil
}

// List retrieves all cached pools ordered by creation time DESC.
func (s *PoolStore) List(ctx context.Context) ([]*domain.Pool, error) {
	query := selectPools + ` ORDER BY created_at DESC, pool_address ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pools: %w", err)
	}
	defer rows.Close()

	var pools []*domain.Pool
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pool row: %w", err)
		}
		pools = append(pools, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pool rows: %w", err)
	}

	return pools, nil
}

// SetTracked marks a pool tracked/untracked.
func (s *PoolStore) SetTracked(ctx context.Context, address string, tracked bool) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE pools SET tracked = $2, last_updated = $3 WHERE pool_address = $1`,
		address, tracked, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set pool %s tracked: %w", address, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

const selectPools = `
	SELECT pool_address, base_mint, quote_mint, pair_name, pair_symbol,
	       liquidity_usd, current_price, volume_24h, dex, created_at,
	       last_updated, tracked
	FROM pools`

// scanPool scans a single row into a Pool.
func scanPool(row pgx.Row) (*domain.Pool, error) {
	var p domain.Pool

	err := row.Scan(
		&p.PoolAddress,
		&p.BaseMint,
		&p.QuoteMint,
		&p.PairName,
		&p.PairSymbol,
		&p.LiquidityUSD,
		&p.CurrentPrice,
		&p.Volume24h,
		&p.Dex,
		&p.CreatedAt,
		&p.LastUpdated,
		&p.Tracked,
	)
	if err != nil {
		return nil, err
	}

	return &p, nil
}
