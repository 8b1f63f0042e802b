// Package main provides the sniper daemon. It runs the periodic price
// monitor, the HTTP control API, and the Prometheus metrics endpoint
// as one process.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"solana-sniper/internal/api"
	"solana-sniper/internal/config"
	"solana-sniper/internal/dex"
	"solana-sniper/internal/dex/jupiter"
	"solana-sniper/internal/dex/raydium"
	"solana-sniper/internal/monitor"
	"solana-sniper/internal/notify"
	"solana-sniper/internal/observability"
	"solana-sniper/internal/pricing"
	"solana-sniper/internal/relay"
	"solana-sniper/internal/solana"
	"solana-sniper/internal/storage"
	chstore "solana-sniper/internal/storage/clickhouse"
	"solana-sniper/internal/storage/memory"
	"solana-sniper/internal/storage/migrations"
	pgstore "solana-sniper/internal/storage/postgres"
	"solana-sniper/internal/wallet"
	"solana-sniper/internal/watch"
)

// stores holds the storage implementations the daemon wires together.
type stores struct {
	configs      storage.ConfigStore
	transactions storage.TransactionStore
	pools        storage.PoolStore
	history      storage.PriceHistoryStore // nil without ClickHouse
}

func main() {
	loadEnvFile()

	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	flag.Parse()

	logger := log.New(os.Stdout, "[sniperd] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Load configuration: %v", err)
	}
	if !*useMemory && cfg.PostgresDSN == "" {
		logger.Fatal("SNIPER_POSTGRES_DSN is required (use --use-memory for in-memory storage)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, cleanup, err := createStores(ctx, cfg, *useMemory)
	if err != nil {
		logger.Fatalf("Create stores: %v", err)
	}
	defer cleanup()

	// Chain access with endpoint failover.
	rpc, err := solana.NewManager(logger, cfg.RPCEndpoints)
	if err != nil {
		logger.Fatalf("Create RPC manager: %v", err)
	}
	go rpc.RunHealthLoop(ctx, solana.DefaultHealthInterval)

	// Market data: HTTP fetcher behind a caching source, optionally fed
	// by the streaming subscriber.
	birdeye := pricing.NewClient(cfg.BirdeyeAPIKey, pricing.WithBaseURL(cfg.BirdeyeURL))
	source := pricing.NewSource(birdeye)

	if cfg.BirdeyeWSURL != "" {
		stream, err := pricing.NewStream(ctx, cfg.BirdeyeWSURL, cfg.BirdeyeAPIKey, source, logger, nil)
		if err != nil {
			logger.Printf("Price stream unavailable, polling only: %v", err)
		} else {
			defer stream.Close()
			go subscribeActiveTokens(ctx, st.configs, stream, logger)
		}
	}

	// Swap adapters and the protected submission path.
	registry, err := dex.NewRegistry(jupiter.NewSwapper(), raydium.NewSwapper())
	if err != nil {
		logger.Fatalf("Create dex registry: %v", err)
	}

	jito := relay.NewJitoClient(relay.WithEndpoint(cfg.JitoURL))
	protector := relay.NewProtector(jito, logger, relay.WithBlockhashFunc(rpc.GetLatestBlockhash))
	if err := protector.SetMultiplier(cfg.FeeMultiplier); err != nil {
		logger.Fatalf("Set fee multiplier: %v", err)
	}

	walletState := buildWalletState(ctx, cfg.WalletAddress, logger)

	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		logger.Fatalf("Create notifier: %v", err)
	}

	monitorOpts := []monitor.Option{monitor.WithInterval(cfg.MonitorInterval)}
	if st.history != nil {
		monitorOpts = append(monitorOpts, monitor.WithPriceHistory(st.history))
	}
	mon := monitor.New(st.configs, source, notifier, logger, monitorOpts...)

	server := api.New(api.Options{
		Configs:       st.configs,
		Transactions:  st.transactions,
		Pools:         st.pools,
		PoolFeed:      birdeye,
		Swappers:      registry,
		Protector:     protector,
		Prices:        source,
		RPC:           rpc,
		WalletAddress: cfg.WalletAddress,
		Wallet:        walletState,
		Logger:        logger,
	})

	done := make(chan error, 1)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	go startMetricsServer(cfg.MetricsAddr, logger)

	errCh := make(chan error, 2)
	go func() {
		if err := mon.Run(ctx); err != nil && err != context.Canceled {
			errCh <- fmt.Errorf("monitor: %w", err)
		}
	}()
	go func() {
		logger.Printf("HTTP API listening on %s", cfg.ListenAddr)
		if err := server.Start(ctx, cfg.ListenAddr); err != nil {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		err = ctx.Err()
	case err = <-errCh:
		cancel()
	}
	done <- err

	if err != nil && err != context.Canceled {
		logger.Fatalf("Daemon error: %v", err)
	}
	logger.Println("Shutdown complete")
}

// createStores creates the storage implementations.
func createStores(ctx context.Context, cfg config.Config, useMemory bool) (*stores, func(), error) {
	if useMemory {
		st := &stores{
			configs:      memory.NewConfigStore(),
			transactions: memory.NewTransactionStore(),
			pools:        memory.NewPoolStore(),
			history:      memory.NewPriceHistoryStore(),
		}
		return st, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	st := &stores{
		configs:      pgstore.NewConfigStore(pool),
		transactions: pgstore.NewTransactionStore(pool),
		pools:        pgstore.NewPoolStore(pool),
	}
	cleanup := func() { pool.Close() }

	if cfg.ClickhouseDSN == "" {
		return st, cleanup, nil
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}
	st.history = chstore.NewPriceHistoryStore(chConn)

	cleanup = func() {
		chConn.Close()
		pool.Close()
	}
	return st, cleanup, nil
}

// buildWalletState publishes the operator wallet connection state and
// logs every update. The API refreshes the balance on wallet lookups.
func buildWalletState(ctx context.Context, address string, logger *log.Logger) *watch.Value[wallet.State] {
	state := watch.New(wallet.Disconnected)
	if address != "" {
		if !wallet.ValidAddress(address) {
			logger.Fatalf("SNIPER_WALLET_ADDRESS %q is not a valid Solana address", address)
		}
		state.Set(wallet.State{Connected: true, Address: address})
	}

	updates, cancel := state.Subscribe()
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case st := <-updates:
				logger.Printf("Wallet state: connected=%v address=%s balance=%.4f SOL",
					st.Connected, st.Address, st.Balance)
			}
		}
	}()
	return state
}

// buildNotifier assembles the alert channels. Logging is always on;
// Telegram joins when configured.
func buildNotifier(cfg config.Config, logger *log.Logger) (notify.Notifier, error) {
	logNotifier := notify.NewLogNotifier(logger)
	if cfg.TelegramToken == "" {
		return logNotifier, nil
	}

	tg, err := notify.NewTelegramNotifier(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		return nil, fmt.Errorf("create telegram notifier: %w", err)
	}
	return notify.Multi{logNotifier, tg}, nil
}

// subscribeActiveTokens keeps the price stream subscribed to every
// token with an active config. Re-synced once a minute.
func subscribeActiveTokens(ctx context.Context, configs storage.ConfigStore, stream *pricing.Stream, logger *log.Logger) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	subscribed := make(map[string]bool)
	sync := func() {
		active, err := configs.ListActive(ctx)
		if err != nil {
			logger.Printf("List active configs for stream: %v", err)
			return
		}

		want := make(map[string]bool, len(active))
		for _, cfg := range active {
			want[cfg.TokenAddress] = true
			if !subscribed[cfg.TokenAddress] {
				if err := stream.Subscribe(cfg.TokenAddress); err != nil {
					logger.Printf("Subscribe %s: %v", cfg.TokenAddress, err)
					continue
				}
				subscribed[cfg.TokenAddress] = true
			}
		}
		for addr := range subscribed {
			if !want[addr] {
				if err := stream.Unsubscribe(addr); err != nil {
					logger.Printf("Unsubscribe %s: %v", addr, err)
				}
				delete(subscribed, addr)
			}
		}
	}

	sync()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sync()
		}
	}
}

// startMetricsServer serves health and Prometheus metrics.
func startMetricsServer(addr string, logger *log.Logger) {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", observability.Handler())

	logger.Printf("Metrics server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil && err != http.ErrServerClosed {
		logger.Printf("Metrics server error: %v", err)
	}
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
