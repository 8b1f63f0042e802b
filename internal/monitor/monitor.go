// Package monitor runs the periodic price check cycle: it walks the
// active snipe configs, evaluates each against the current price, and
// alerts when a stop-loss or take-profit threshold is crossed.
package monitor

import (
	"context"
	"fmt"
	"log"
	"time"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/notify"
	"solana-sniper/internal/observability"
	"solana-sniper/internal/storage"
	"solana-sniper/internal/trigger"
)

// DefaultInterval is how often the monitor re-checks prices.
const DefaultInterval = 15 * time.Minute

// PriceSource supplies the current price for a token. The stale flag
// is true when the value came from a cache after a failed live fetch.
type PriceSource interface {
	CurrentPrice(ctx context.Context, tokenAddress string) (snapshot *domain.PriceSnapshot, stale bool, err error)
}

// Monitor checks active configs against live prices on a fixed interval.
// It only alerts and deactivates; it never places orders itself.
type Monitor struct {
	configs  storage.ConfigStore
	prices   PriceSource
	history  storage.PriceHistoryStore // optional
	notifier notify.Notifier
	logger   *log.Logger
	interval time.Duration
}

// Option configures Monitor.
type Option func(*Monitor)

// WithInterval overrides the check interval.
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		m.interval = d
	}
}

// WithPriceHistory enables best-effort archiving of observed prices.
func WithPriceHistory(store storage.PriceHistoryStore) Option {
	return func(m *Monitor) {
		m.history = store
	}
}

// New creates a Monitor.
func New(configs storage.ConfigStore, prices PriceSource, notifier notify.Notifier, logger *log.Logger, opts ...Option) *Monitor {
	m := &Monitor{
		configs:  configs,
		prices:   prices,
		notifier: notifier,
		logger:   logger,
		interval: DefaultInterval,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run executes a cycle immediately, then on every interval tick until
// the context is canceled.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.Cycle(ctx); err != nil {
		m.logger.Printf("[monitor] cycle failed: %v", err)
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := m.Cycle(ctx); err != nil {
				m.logger.Printf("[monitor] cycle failed: %v", err)
			}
		}
	}
}

// Cycle runs one full pass over the active configs. A failure on one
// token never aborts the pass; only a failure to list the configs
// ends the cycle early.
func (m *Monitor) Cycle(ctx context.Context) error {
	start := time.Now()

	configs, err := m.configs.ListActive(ctx)
	if err != nil {
		observability.RecordCycle(false, 0, time.Since(start))
		return fmt.Errorf("list active configs: %w", err)
	}

	var snapshots []*domain.PriceSnapshot
	for _, cfg := range configs {
		observability.RecordEvaluation()

		snap, stale, err := m.prices.CurrentPrice(ctx, cfg.TokenAddress)
		if err != nil {
			m.logger.Printf("[monitor] no price for %s (config %d): %v", cfg.TokenAddress, cfg.ID, err)
			continue
		}
		if !stale {
			snapshots = append(snapshots, snap)
		}

		result := trigger.Evaluate(cfg, snap.Price)
		if result == domain.TriggerNone {
			continue
		}

		m.logger.Printf("[monitor] %s fired for %s at %.8f (config %d, stale=%v)",
			result, cfg.TokenAddress, snap.Price, cfg.ID, stale)
		observability.RecordTrigger(result.String())

		event := notify.Event{
			TokenAddress: cfg.TokenAddress,
			Trigger:      result,
			Price:        snap.Price,
			Stale:        stale,
		}
		if err := m.notifier.Notify(ctx, event); err != nil {
			m.logger.Printf("[monitor] notify failed for config %d: %v", cfg.ID, err)
		}

		if err := m.configs.Deactivate(ctx, cfg.ID); err != nil {
			m.logger.Printf("[monitor] deactivate config %d failed: %v", cfg.ID, err)
		}
	}

	if m.history != nil && len(snapshots) > 0 {
		if err := m.history.InsertBulk(ctx, snapshots); err != nil {
			m.logger.Printf("[monitor] archive %d price snapshots failed: %v", len(snapshots), err)
		}
	}

	observability.RecordCycle(true, len(configs), time.Since(start))
	return nil
}
