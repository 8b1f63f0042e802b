package relay

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/observability"
)

// Protector defaults.
const (
	DefaultFeeMultiplier = 1.5
	DefaultMinDelay      = 100 * time.Millisecond
	DefaultMaxDelay      = 500 * time.Millisecond
)

// Submission is the outcome of a protected submission.
type Submission struct {
	BundleID    string
	FeeLamports uint64
	Status      domain.TxStatus
}

// Protector wraps a Relay with two MEV countermeasures: a random
// submission delay that breaks timing correlation, and a priority fee
// bump that improves inclusion odds against frontrunners.
type Protector struct {
	relay     Relay
	logger    *log.Logger
	blockhash func(context.Context) (string, error)

	minDelay time.Duration
	maxDelay time.Duration

	mu         sync.RWMutex
	multiplier float64
	rng        *rand.Rand
}

// ProtectorOption configures Protector.
type ProtectorOption func(*Protector)

// WithDelayRange overrides the random delay bounds. Used by tests to
// make submissions fast.
func WithDelayRange(min, max time.Duration) ProtectorOption {
	return func(p *Protector) {
		p.minDelay = min
		p.maxDelay = max
	}
}

// WithBlockhashFunc sets a provider for the recent blockhash passed to
// the relay as an inclusion hint. Best-effort: a provider failure is
// logged and the bundle goes out without the hint.
func WithBlockhashFunc(fn func(context.Context) (string, error)) ProtectorOption {
	return func(p *Protector) {
		p.blockhash = fn
	}
}

// WithSeed fixes the random source for deterministic tests.
func WithSeed(seed int64) ProtectorOption {
	return func(p *Protector) {
		p.rng = rand.New(rand.NewSource(seed))
	}
}

// NewProtector creates a Protector over the given relay.
func NewProtector(relay Relay, logger *log.Logger, opts ...ProtectorOption) *Protector {
	p := &Protector{
		relay:      relay,
		logger:     logger,
		minDelay:   DefaultMinDelay,
		maxDelay:   DefaultMaxDelay,
		multiplier: DefaultFeeMultiplier,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Multiplier returns the current fee multiplier.
func (p *Protector) Multiplier() float64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.multiplier
}

// SetMultiplier updates the fee multiplier. Values below 1.0 are
// rejected and leave the current multiplier unchanged.
func (p *Protector) SetMultiplier(m float64) error {
	if m < 1.0 {
		return fmt.Errorf("%w: fee multiplier %.2f must be at least 1.0", domain.ErrValidation, m)
	}

	p.mu.Lock()
	p.multiplier = m
	p.mu.Unlock()
	return nil
}

// AdjustFee applies the multiplier to a base priority fee.
func (p *Protector) AdjustFee(feeLamports uint64) uint64 {
	p.mu.RLock()
	m := p.multiplier
	p.mu.RUnlock()
	return uint64(float64(feeLamports) * m)
}

// Submit delays for a random interval, bumps the priority fee, and
// submits the transaction as a single transaction bundle. A relay
// rejection comes back with the relay's error text intact.
func (p *Protector) Submit(ctx context.Context, encodedTx string, feeLamports uint64) (*Submission, error) {
	if encodedTx == "" {
		return nil, fmt.Errorf("%w: encoded transaction is required", domain.ErrValidation)
	}

	adjusted := p.AdjustFee(feeLamports)

	delay := p.randomDelay()
	p.logger.Printf("[relay] delaying submission %v, fee %d -> %d lamports", delay, feeLamports, adjusted)

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("submission canceled: %w", ctx.Err())
	case <-timer.C:
	}

	hint := ""
	if p.blockhash != nil {
		h, err := p.blockhash(ctx)
		if err != nil {
			p.logger.Printf("[relay] blockhash hint unavailable: %v", err)
		} else {
			hint = h
		}
	}

	bundleID, err := p.relay.SubmitBundle(ctx, []string{encodedTx}, hint)
	if err != nil {
		observability.RecordBundle("rejected", delay)
		return &Submission{
			FeeLamports: adjusted,
			Status:      domain.TxStatusFailed,
		}, err
	}

	observability.RecordBundle("accepted", delay)
	return &Submission{
		BundleID:    bundleID,
		FeeLamports: adjusted,
		Status:      domain.TxStatusConfirmed,
	}, nil
}

// randomDelay picks a uniform delay in [minDelay, maxDelay].
func (p *Protector) randomDelay() time.Duration {
	if p.maxDelay <= p.minDelay {
		return p.minDelay
	}

	p.mu.Lock()
	n := p.rng.Int63n(int64(p.maxDelay - p.minDelay + 1))
	p.mu.Unlock()
	return p.minDelay + time.Duration(n)
}
