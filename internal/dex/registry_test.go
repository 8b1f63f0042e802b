package dex

import (
	"context"
	"errors"
	"testing"

	"solana-sniper/internal/domain"
)

// stubSwapper satisfies Swapper for registry tests.
type stubSwapper struct {
	dex domain.DexType
}

func (s *stubSwapper) DexType() domain.DexType            { return s.dex }
func (s *stubSwapper) Validate(*domain.SwapRequest) error { return nil }

func (s *stubSwapper) Swap(context.Context, *domain.SwapRequest) <-chan domain.SwapOutcome {
	ch := make(chan domain.SwapOutcome)
	close(ch)
	return ch
}

func TestRegistryLookup(t *testing.T) {
	r, err := NewRegistry(&stubSwapper{dex: domain.DexRaydium}, &stubSwapper{dex: domain.DexJupiter})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	s, err := r.ForDex(domain.DexJupiter)
	if err != nil {
		t.Fatalf("ForDex: %v", err)
	}
	if s.DexType() != domain.DexJupiter {
		t.Errorf("DexType = %v, want JUPITER", s.DexType())
	}

	if _, err := r.ForDex(domain.DexOrca); !errors.Is(err, ErrNoSwapperYet) {
		t.Errorf("ForDex(ORCA) = %v, want ErrNoSwapperYet", err)
	}

	if got := len(r.Dexes()); got != 2 {
		t.Errorf("len(Dexes) = %d, want 2", got)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(&stubSwapper{dex: domain.DexRaydium}, &stubSwapper{dex: domain.DexRaydium})
	if !errors.Is(err, ErrDuplicateDex) {
		t.Fatalf("err = %v, want ErrDuplicateDex", err)
	}
}

func TestRegistryRejectsEmpty(t *testing.T) {
	_, err := NewRegistry()
	if !errors.Is(err, ErrEmptyRegistry) {
		t.Fatalf("err = %v, want ErrEmptyRegistry", err)
	}
}
