package dex

import (
	"errors"
	"fmt"

	"solana-sniper/internal/domain"
)

// Registry errors
var (
	ErrUnknownDex    = errors.New("unknown dex")
	ErrDuplicateDex  = errors.New("dex already registered")
	ErrNoSwapperYet  = errors.New("dex has no swap adapter")
	ErrEmptyRegistry = errors.New("registry has no adapters")
)

// Registry holds the configured swap adapter for each exchange.
// The adapter set is fixed at construction; lookups are read-only
// and safe for concurrent use.
type Registry struct {
	swappers map[domain.DexType]Swapper
}

// NewRegistry builds a registry from the given adapters.
// Each exchange may appear at most once.
func NewRegistry(swappers ...Swapper) (*Registry, error) {
	if len(swappers) == 0 {
		return nil, ErrEmptyRegistry
	}

	m := make(map[domain.DexType]Swapper, len(swappers))
	for _, s := range swappers {
		if _, ok := m[s.DexType()]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateDex, s.DexType())
		}
		m[s.DexType()] = s
	}
	return &Registry{swappers: m}, nil
}

// ForDex returns the adapter registered for the exchange.
func (r *Registry) ForDex(dex domain.DexType) (Swapper, error) {
	s, ok := r.swappers[dex]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSwapperYet, dex)
	}
	return s, nil
}

// Dexes lists the exchanges with a registered adapter.
func (r *Registry) Dexes() []domain.DexType {
	out := make([]domain.DexType, 0, len(r.swappers))
	for d := range r.swappers {
		out = append(out, d)
	}
	return out
}
