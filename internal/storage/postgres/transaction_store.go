package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

// TransactionStore implements storage.TransactionStore using PostgreSQL.
// The transactions table is append-only: rows are inserted once and only
// their status columns change afterwards.
type TransactionStore struct {
	pool *Pool
}

// NewTransactionStore creates a new TransactionStore.
func NewTransactionStore(pool *Pool) *TransactionStore {
	return &TransactionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if the id exists.
func (s *TransactionStore) Insert(ctx context.Context, tx *domain.Transaction) error {
	if tx == nil || tx.ID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO transactions (
			tx_id, tx_hash, tx_type, status, sender, receiver, token_mint,
			dex_type, amount, fee_lamports, raw_data, ts, error_text
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := s.pool.Exec(ctx, query,
		tx.ID,
		tx.Hash,
		string(tx.Type),
		string(tx.Status),
		tx.Sender,
		tx.Receiver,
		tx.TokenMint,
		string(tx.Dex),
		tx.Amount,
		int64(tx.FeeLamports),
		tx.RawData,
		tx.Timestamp,
		tx.Error,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// UpdateStatus records the asynchronous confirmation outcome.
func (s *TransactionStore) UpdateStatus(ctx context.Context, id string, status domain.TxStatus, hash, errText string) error {
	query := `
		UPDATE transactions
		SET status = $2, tx_hash = COALESCE(NULLIF($3, ''), tx_hash), error_text = $4
		WHERE tx_id = $1
	`

	tag, err := s.pool.Exec(ctx, query, id, string(status), hash, errText)
	if err != nil {
		return fmt.Errorf("update transaction %s status: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// Get retrieves a record by id. Returns ErrNotFound if not exists.
func (s *TransactionStore) Get(ctx context.Context, id string) (*domain.Transaction, error) {
	query := `
		SELECT tx_id, tx_hash, tx_type, status, sender, receiver, token_mint,
		       dex_type, amount, fee_lamports, raw_data, ts, error_text
		FROM transactions
		WHERE tx_id = $1
	`

	tx, err := scanTransaction(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get transaction %s: %w", id, err)
	}
	return tx, nil
}

// List retrieves records ordered by timestamp DESC, newest first.
func (s *TransactionStore) List(ctx context.Context, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT tx_id, tx_hash, tx_type, status, sender, receiver, token_mint,
		       dex_type, amount, fee_lamports, raw_data, ts, error_text
		FROM transactions
		ORDER BY ts DESC, tx_id DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []*domain.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction row: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}

	return txs, nil
}

// scanTransaction scans a single row into a Transaction.
func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var tx domain.Transaction
	var txType, status, dexType string
	var feeLamports int64

	err := row.Scan(
		&tx.ID,
		&tx.Hash,
		&txType,
		&status,
		&tx.Sender,
		&tx.Receiver,
		&tx.TokenMint,
		&dexType,
		&tx.Amount,
		&feeLamports,
		&tx.RawData,
		&tx.Timestamp,
		&tx.Error,
	)
	if err != nil {
		return nil, err
	}

	tx.Type = domain.TxType(txType)
	tx.Status = domain.TxStatus(status)
	tx.Dex = domain.DexType(dexType)
	tx.FeeLamports = uint64(feeLamports)
	return &tx, nil
}
