package solana

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"solana-sniper/internal/observability"
)

// DefaultHealthInterval is how often the manager re-probes endpoints.
const DefaultHealthInterval = 30 * time.Second

// Manager fronts several RPC endpoints and routes calls to the first
// healthy one. When the current endpoint fails a health probe the
// manager fails over to the next in order.
type Manager struct {
	clients []RPCClient
	logger  *log.Logger

	mu      sync.RWMutex
	current int
}

var _ RPCClient = (*Manager)(nil)

// NewManager creates a Manager over the given endpoints, preferred
// first.
func NewManager(logger *log.Logger, endpoints []string, opts ...ClientOption) (*Manager, error) {
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("at least one RPC endpoint is required")
	}

	clients := make([]RPCClient, 0, len(endpoints))
	for _, e := range endpoints {
		clients = append(clients, NewHTTPClient(e, opts...))
	}
	return &Manager{clients: clients, logger: logger}, nil
}

// active returns the currently selected client and its index.
func (m *Manager) active() (RPCClient, int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clients[m.current], m.current
}

// failover advances to the next endpoint if idx is still current.
func (m *Manager) failover(idx int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != idx {
		return // someone already failed over
	}
	m.current = (m.current + 1) % len(m.clients)
	m.logger.Printf("[solana] failing over to endpoint %d of %d", m.current+1, len(m.clients))
}

// do runs fn against the active client, failing over once on error.
func (m *Manager) do(ctx context.Context, fn func(RPCClient) error) error {
	client, idx := m.active()
	err := fn(client)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}

	m.failover(idx)
	client, _ = m.active()
	return fn(client)
}

// GetLatestBlockhash routes to the active endpoint.
func (m *Manager) GetLatestBlockhash(ctx context.Context) (string, error) {
	var hash string
	err := m.do(ctx, func(c RPCClient) error {
		var err error
		hash, err = c.GetLatestBlockhash(ctx)
		return err
	})
	return hash, err
}

// GetBalance routes to the active endpoint.
func (m *Manager) GetBalance(ctx context.Context, pubkey string) (uint64, error) {
	var balance uint64
	err := m.do(ctx, func(c RPCClient) error {
		var err error
		balance, err = c.GetBalance(ctx, pubkey)
		return err
	})
	return balance, err
}

// GetHealth probes the active endpoint only; the caller decides what
// an unhealthy answer means.
func (m *Manager) GetHealth(ctx context.Context) error {
	client, _ := m.active()
	return client.GetHealth(ctx)
}

// RunHealthLoop periodically probes the active endpoint and fails
// over when the probe fails. Blocks until the context is canceled.
func (m *Manager) RunHealthLoop(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultHealthInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			client, idx := m.active()
			probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			err := client.GetHealth(probeCtx)
			cancel()
			observability.RecordRPCHealth(err == nil)
			if err != nil {
				m.logger.Printf("[solana] health probe failed: %v", err)
				m.failover(idx)
			}
		}
	}
}
