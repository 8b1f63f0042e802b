// Package api exposes the daemon's HTTP control surface: snipe config
// CRUD, manual swaps, pool and transaction lookups, and health.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"solana-sniper/internal/dex"
	"solana-sniper/internal/domain"
	"solana-sniper/internal/monitor"
	"solana-sniper/internal/relay"
	"solana-sniper/internal/solana"
	"solana-sniper/internal/storage"
	"solana-sniper/internal/wallet"
	"solana-sniper/internal/watch"
)

// PoolFetcher lists recently created pools from the market-data feed.
type PoolFetcher interface {
	NewPools(ctx context.Context, limit int) ([]*domain.Pool, error)
}

// Options configures the HTTP server instance.
type Options struct {
	Configs      storage.ConfigStore
	Transactions storage.TransactionStore
	Pools        storage.PoolStore
	// PoolFeed refreshes the pool store on listing when set.
	PoolFeed  PoolFetcher
	Swappers  *dex.Registry
	Protector *relay.Protector
	Prices    monitor.PriceSource
	RPC       solana.RPCClient
	// WalletAddress is the operator wallet swaps are built for.
	WalletAddress string
	// Wallet publishes the operator wallet connection state. The
	// balance is refreshed on every wallet lookup.
	Wallet *watch.Value[wallet.State]
	Logger *log.Logger
}

// Server wires Echo with the application dependencies.
type Server struct {
	opts Options
	app  *echo.Echo
}

// New creates a new Server instance.
func New(opts Options) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		opts: opts,
		app:  e,
	}
	s.registerRoutes()
	return s
}

// Start launches the HTTP server and blocks until it stops.
func (s *Server) Start(ctx context.Context, addr string) error {
	go func() {
		<-ctx.Done()
		_ = s.Shutdown(context.Background())
	}()

	err := s.app.Start(addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app == nil {
		return nil
	}
	return s.app.Shutdown(ctx)
}
