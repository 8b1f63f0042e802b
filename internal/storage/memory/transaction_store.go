package memory

import (
	"context"
	"sort"
	"sync"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

// TransactionStore is an in-memory implementation of
// storage.TransactionStore.
type TransactionStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Transaction
}

// NewTransactionStore creates a new in-memory transaction store.
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		data: make(map[string]*domain.Transaction),
	}
}

// Compile-time interface check.
var _ storage.TransactionStore = (*TransactionStore)(nil)

// Insert adds a new record. Returns ErrDuplicateKey if the id exists.
func (s *TransactionStore) Insert(_ context.Context, tx *domain.Transaction) error {
	if tx == nil || tx.ID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[tx.ID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *tx
	s.data[tx.ID] = &copy
	return nil
}

// UpdateStatus records the asynchronous confirmation outcome.
func (s *TransactionStore) UpdateStatus(_ context.Context, id string, status domain.TxStatus, hash, errText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.data[id]
	if !ok {
		return storage.ErrNotFound
	}

	tx.Status = status
	if hash != "" {
		tx.Hash = hash
	}
	tx.Error = errText
	return nil
}

// Get retrieves a record by id. Returns ErrNotFound if not exists.
func (s *TransactionStore) Get(_ context.Context, id string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	copy := *tx
	return &copy, nil
}

// List retrieves records ordered by timestamp DESC, newest first.
func (s *TransactionStore) List(_ context.Context, limit int) ([]*domain.Transaction, error) {
	if limit <= 0 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var txs []*domain.Transaction
	for _, tx := range s.data {
		copy := *tx
		txs = append(txs, &copy)
	}

	sort.Slice(txs, func(i, j int) bool {
		if !txs[i].Timestamp.Equal(txs[j].Timestamp) {
			return txs[i].Timestamp.After(txs[j].Timestamp)
		}
		return txs[i].ID > txs[j].ID
	})

	if len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}
