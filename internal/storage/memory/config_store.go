package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/storage"
)

// ConfigStore is an in-memory implementation of storage.ConfigStore.
type ConfigStore struct {
	mu     sync.RWMutex
	data   map[int64]*domain.SnipeConfig
	nextID int64
}

// NewConfigStore creates a new in-memory config store.
func NewConfigStore() *ConfigStore {
	return &ConfigStore{
		data:   make(map[int64]*domain.SnipeConfig),
		nextID: 1,
	}
}

// Compile-time interface check.
var _ storage.ConfigStore = (*ConfigStore)(nil)

// ListActive retrieves all active configs ordered by id ASC.
func (s *ConfigStore) ListActive(_ context.Context) ([]*domain.SnipeConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var configs []*domain.SnipeConfig
	for _, cfg := range s.data {
		if cfg.Active {
			copy := *cfg
			configs = append(configs, &copy)
		}
	}

	sort.Slice(configs, func(i, j int) bool {
		return configs[i].ID < configs[j].ID
	})
	return configs, nil
}

// Get retrieves a config by id. Returns ErrNotFound if not exists.
func (s *ConfigStore) Get(_ context.Context, id int64) (*domain.SnipeConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.data[id]
	if !ok {
		return nil, storage.ErrNotFound
	}

	copy := *cfg
	return &copy, nil
}

// Upsert inserts a new config (ID == 0) or replaces an existing one.
// Last writer wins at the granularity of a whole record.
func (s *ConfigStore) Upsert(_ context.Context, cfg *domain.SnipeConfig) error {
	if cfg == nil {
		return storage.ErrInvalidInput
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	cfg.UpdatedAt = now

	if cfg.ID == 0 {
		cfg.ID = s.nextID
		s.nextID++
		cfg.CreatedAt = now
	} else if _, ok := s.data[cfg.ID]; !ok {
		return storage.ErrNotFound
	}

	copy := *cfg
	s.data[cfg.ID] = &copy
	return nil
}

// Deactivate flips the active flag off. Returns ErrNotFound if not exists.
func (s *ConfigStore) Deactivate(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, ok := s.data[id]
	if !ok {
		return storage.ErrNotFound
	}

	cfg.Active = false
	cfg.UpdatedAt = time.Now().UTC()
	return nil
}

// Delete removes a config permanently. Returns ErrNotFound if not exists.
func (s *ConfigStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; !ok {
		return storage.ErrNotFound
	}

	delete(s.data, id)
	return nil
}
