package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

// PriceHistoryStore implements storage.PriceHistoryStore using
// ClickHouse. Snapshots are an append-only observation log; MergeTree
// does not enforce uniqueness and none is needed here.
type PriceHistoryStore struct {
	conn *Conn
}

// NewPriceHistoryStore creates a new PriceHistoryStore.
func NewPriceHistoryStore(conn *Conn) *PriceHistoryStore {
	return &PriceHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// InsertBulk appends a batch of snapshots.
func (s *PriceHistoryStore) InsertBulk(ctx context.Context, snaps []*domain.PriceSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO price_history (
			token_address, price, volume_24h, liquidity, observed_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, snap := range snaps {
		err = batch.Append(
			snap.TokenAddress, snap.Price, snap.Volume24h,
			snap.Liquidity, snap.ObservedAt,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByTokenRange retrieves snapshots for a token within [start, end]
// (inclusive), ordered by observation time ASC.
func (s *PriceHistoryStore) GetByTokenRange(ctx context.Context, token string, start, end time.Time) ([]*domain.PriceSnapshot, error) {
	query := `
		SELECT token_address, price, volume_24h, liquidity, observed_at
		FROM price_history
		WHERE token_address = ? AND observed_at >= ? AND observed_at <= ?
		ORDER BY observed_at ASC
	`

	rows, err := s.conn.Query(ctx, query, token, start, end)
	if err != nil {
		return nil, fmt.Errorf("query price history: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// scanSnapshots scans multiple rows into a slice of PriceSnapshot.
func scanSnapshots(rows driver.Rows) ([]*domain.PriceSnapshot, error) {
	var snaps []*domain.PriceSnapshot

	for rows.Next() {
		var snap domain.PriceSnapshot

		err := rows.Scan(
			&snap.TokenAddress,
			&snap.Price,
			&snap.Volume24h,
			&snap.Liquidity,
			&snap.ObservedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan price history row: %w", err)
		}

		snaps = append(snaps, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price history rows: %w", err)
	}

	return snaps, nil
}
