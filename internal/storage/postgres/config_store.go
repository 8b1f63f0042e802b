package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

// ConfigStore implements storage.ConfigStore using PostgreSQL.
type ConfigStore struct {
	pool *Pool
}

// NewConfigStore creates a new ConfigStore.
func NewConfigStore(pool *Pool) *ConfigStore {
	return &ConfigStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ConfigStore = (*ConfigStore)(nil)

// ListActive retrieves all active configs ordered by id ASC.
func (s *ConfigStore) ListActive(ctx context.Context) ([]*domain.SnipeConfig, error) {
	query := `
		SELECT id, token_address, buy_price, stop_loss_pct, take_profit_pct,
		       dex_type, amount, slippage_pct, active, created_at, updated_at
		FROM snipe_configs
		WHERE active
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active configs: %w", err)
	}
	defer rows.Close()

	return scanConfigs(rows)
}

// Get retrieves a config by id. Returns ErrNotFound if not exists.
func (s *ConfigStore) Get(ctx context.Context, id int64) (*domain.SnipeConfig, error) {
	query := `
		SELECT id, token_address, buy_price, stop_loss_pct, take_profit_pct,
		       dex_type, amount, slippage_pct, active, created_at, updated_at
		FROM snipe_configs
		WHERE id = $1
	`

	cfg, err := scanConfig(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get config %d: %w", id, err)
	}
	return cfg, nil
}

// Upsert inserts a new config (ID == 0) or replaces an existing one.
// Validates invariants before touching the database.
func (s *ConfigStore) Upsert(ctx context.Context, cfg *domain.SnipeConfig) error {
	if cfg == nil {
		return storage.ErrInvalidInput
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	cfg.UpdatedAt = now

	if cfg.ID == 0 {
		cfg.CreatedAt = now
		query := `
			INSERT INTO snipe_configs (
				token_address, buy_price, stop_loss_pct, take_profit_pct,
				dex_type, amount, slippage_pct, active, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING id
		`
		err := s.pool.QueryRow(ctx, query,
			cfg.TokenAddress,
			cfg.BuyPrice,
			cfg.StopLossPct,
			cfg.TakeProfitPct,
			string(cfg.Dex),
			cfg.Amount,
			cfg.SlippagePct,
			cfg.Active,
			cfg.CreatedAt,
			cfg.UpdatedAt,
		).Scan(&cfg.ID)
		if err != nil {
			return fmt.Errorf("insert config: %w", err)
		}
		return nil
	}

	query := `
		UPDATE snipe_configs
		SET token_address = $2, buy_price = $3, stop_loss_pct = $4,
		    take_profit_pct = $5, dex_type = $6, amount = $7,
		    slippage_pct = $8, active = $9, updated_at = $10
		WHERE id = $1
	`
	tag, err := s.pool.Exec(ctx, query,
		cfg.ID,
		cfg.TokenAddress,
		cfg.BuyPrice,
		cfg.StopLossPct,
		cfg.TakeProfitPct,
		string(cfg.Dex),
		cfg.Amount,
		cfg.SlippagePct,
		cfg.Active,
		cfg.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update config %d: %w", cfg.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Deactivate flips the active flag off. Returns ErrNotFound if not exists.
func (s *ConfigStore) Deactivate(ctx context.Context, id int64) error {
	query := `UPDATE snipe_configs SET active = FALSE, updated_at = $2 WHERE id = $1`

	tag, err := s.pool.Exec(ctx, query, id, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("deactivate config %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Delete removes a config permanently. Returns ErrNotFound if not exists.
func (s *ConfigStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM snipe_configs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete config %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scanConfig scans a single row into a SnipeConfig.
func scanConfig(row pgx.Row) (*domain.SnipeConfig, error) {
	var cfg domain.SnipeConfig
	var dexType string

	err := row.Scan(
		&cfg.ID,
		&cfg.TokenAddress,
		&cfg.BuyPrice,
		&cfg.StopLossPct,
		&cfg.TakeProfitPct,
		&dexType,
		&cfg.Amount,
		&cfg.SlippagePct,
		&cfg.Active,
		&cfg.CreatedAt,
		&cfg.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	cfg.Dex = domain.DexType(dexType)
	return &cfg, nil
}

// scanConfigs scans multiple rows into a slice of SnipeConfig.
func scanConfigs(rows pgx.Rows) ([]*domain.SnipeConfig, error) {
	var configs []*domain.SnipeConfig

	for rows.Next() {
		cfg, err := scanConfig(rows)
		if err != nil {
			return nil, fmt.Errorf("scan config row: %w", err)
		}
		configs = append(configs, cfg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate config rows: %w", err)
	}

	return configs, nil
}
