package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

// PoolStore is an in-memory implementation of storage.PoolStore.
type PoolStore struct {
	mu   sync.RWMutex
	data map[string]*domain.Pool
}

// NewPoolStore creates a new in-memory pool store.
func NewPoolStore() *PoolStore {
	return &PoolStore{
		data: make(map[string]*domain.Pool),
	}
}

// Compile-time interface check.
var _ storage.PoolStore = (*PoolStore)(nil)

// UpsertBulk inserts or refreshes a batch of pools. The tracked flag of
// an existing pool is preserved.
func (s *PoolStore) UpsertBulk(_ context.Context, pools []*domain.Pool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, p := range pools {
		if p == nil || p.PoolAddress == "" {
			return storage.ErrInvalidInput
		}

		copy := *p
		copy.LastUpdated = now
		if existing, ok := s.data[p.PoolAddress]; ok {
			copy.Tracked = existing.Tracked
			copy.CreatedAt = existing.CreatedAt
		}
		s.data[p.PoolAddress] = &copy
	}
	return nil
}

// Get retrieves a pool by address. Returns ErrNotFound if not exists.
func (s *PoolStore) Get(_ context.Context, address string) (*domain.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[address]
	if !ok {
		return nil, storage.ErrNotFound
	}

	copy := *p
	return &copy, nil
}

// List retrieves all cached pools ordered by creation time DESC.
func (s *PoolStore) List(_ context.Context) ([]*domain.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var pools []*domain.Pool
	for _, p := range s.data {
		copy := *p
		pools = append(pools, &copy)
	}

	sort.Slice(pools, func(i, j int) bool {
		if !pools[i].CreatedAt.Equal(pools[j].CreatedAt) {
			return pools[i].CreatedAt.After(pools[j].CreatedAt)
		}
		return pools[i].PoolAddress < pools[j].PoolAddress
	})
	return pools, nil
}

// SetTracked marks a pool tracked/untracked.
func (s *PoolStore) SetTracked(_ context.Context, address string, tracked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.data[address]
	if !ok {
		return storage.ErrNotFound
	}

	p.Tracked = tracked
	p.LastUpdated = time.Now().UTC()
	return nil
}
