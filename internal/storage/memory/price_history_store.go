package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

// PriceHistoryStore is an in-memory implementation of
// storage.PriceHistoryStore.
type PriceHistoryStore struct {
	mu   sync.RWMutex
	data map[string][]*domain.PriceSnapshot // keyed by token address
}

// NewPriceHistoryStore creates a new in-memory price history store.
func NewPriceHistoryStore() *PriceHistoryStore {
	return &PriceHistoryStore{
		data: make(map[string][]*domain.PriceSnapshot),
	}
}

// Compile-time interface check.
var _ storage.PriceHistoryStore = (*PriceHistoryStore)(nil)

// InsertBulk appends a batch of snapshots.
func (s *PriceHistoryStore) InsertBulk(_ context.Context, snaps []*domain.PriceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, snap := range snaps {
		if snap == nil || snap.TokenAddress == "" {
			return storage.ErrInvalidInput
		}
		copy := *snap
		s.data[snap.TokenAddress] = append(s.data[snap.TokenAddress], &copy)
	}
	return nil
}

// GetByTokenRange retrieves snapshots for a token within [start, end]
// (inclusive), ordered by observation time ASC.
func (s *PriceHistoryStore) GetByTokenRange(_ context.Context, token string, start, end time.Time) ([]*domain.PriceSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.PriceSnapshot
	for _, snap := range s.data[token] {
		if snap.ObservedAt.Before(start) || snap.ObservedAt.After(end) {
			continue
		}
		copy := *snap
		result = append(result, &copy)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ObservedAt.Before(result[j].ObservedAt)
	})
	return result, nil
}
