package pricing

import (
	"context"
	"fmt"
	"sync"
	"time"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/observability"
)

// Fetcher returns the current price snapshot for a token.
type Fetcher interface {
	CurrentPrice(ctx context.Context, tokenAddress string) (*domain.PriceSnapshot, error)
}

// Source wraps a Fetcher with a per-token cache. When the upstream
// fetch fails it serves the last known snapshot for the token, so a
// transient upstream failure does not look like a missing price.
type Source struct {
	fetcher Fetcher

	mu    sync.RWMutex
	cache map[string]*domain.PriceSnapshot
}

// NewSource creates a caching price source around fetcher.
func NewSource(fetcher Fetcher) *Source {
	return &Source{
		fetcher: fetcher,
		cache:   make(map[string]*domain.PriceSnapshot),
	}
}

// CurrentPrice returns the latest price for the token. On upstream
// failure it falls back to the cached snapshot when one exists; the
// returned stale flag is true in that case. With no cached value the
// upstream error is returned as is.
func (s *Source) CurrentPrice(ctx context.Context, tokenAddress string) (snapshot *domain.PriceSnapshot, stale bool, err error) {
	start := time.Now()
	fresh, err := s.fetcher.CurrentPrice(ctx, tokenAddress)
	observability.RecordPriceFetch(err == nil, time.Since(start))
	if err == nil {
		s.store(fresh)
		return fresh, false, nil
	}

	s.mu.RLock()
	cached, ok := s.cache[tokenAddress]
	s.mu.RUnlock()
	if !ok {
		return nil, false, fmt.Errorf("fetch price for %s: %w", tokenAddress, err)
	}

	observability.RecordStalePrice()
	snap := *cached
	return &snap, true, nil
}

// Cached returns the cached snapshot for a token without hitting the
// upstream, or nil when the token has never been fetched.
func (s *Source) Cached(tokenAddress string) *domain.PriceSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cached, ok := s.cache[tokenAddress]
	if !ok {
		return nil
	}
	snap := *cached
	return &snap
}

// Observe inserts a snapshot into the cache directly. Used by the
// streaming subscriber so pushed updates share the same fallback pool.
func (s *Source) Observe(snapshot *domain.PriceSnapshot) {
	if snapshot == nil {
		return
	}
	s.store(snapshot)
}

// store keeps per-token ObservedAt monotonic: an update carrying an
// older timestamp than the cached one is dropped.
func (s *Source) store(snapshot *domain.PriceSnapshot) {
	snap := *snapshot
	if snap.ObservedAt.IsZero() {
		snap.ObservedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.cache[snap.TokenAddress]; ok && snap.ObservedAt.Before(prev.ObservedAt) {
		return
	}
	s.cache[snap.TokenAddress] = &snap
}
