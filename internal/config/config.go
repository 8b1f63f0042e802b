// Package config loads daemon configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds daemon configuration.
type Config struct {
	// Storage
	PostgresDSN   string `env:"SNIPER_POSTGRES_DSN"`
	ClickhouseDSN string `env:"SNIPER_CLICKHOUSE_DSN"`

	// Market data
	BirdeyeAPIKey string `env:"SNIPER_BIRDEYE_API_KEY"`
	BirdeyeURL    string `env:"SNIPER_BIRDEYE_URL" envDefault:"https://public-api.birdeye.so"`
	BirdeyeWSURL  string `env:"SNIPER_BIRDEYE_WS_URL"`

	// Chain access, comma separated with the preferred endpoint first
	RPCEndpoints []string `env:"SNIPER_RPC_ENDPOINTS" envDefault:"https://api.mainnet-beta.solana.com"`

	// Relay
	JitoURL       string  `env:"SNIPER_JITO_URL" envDefault:"https://mainnet.block-engine.jito.wtf/api/v1/bundles"`
	FeeMultiplier float64 `env:"SNIPER_FEE_MULTIPLIER" envDefault:"1.5"`

	// Wallet
	WalletAddress string `env:"SNIPER_WALLET_ADDRESS"`

	// Monitor
	MonitorInterval time.Duration `env:"SNIPER_MONITOR_INTERVAL" envDefault:"15m"`

	// Notifications
	TelegramToken  string `env:"SNIPER_TELEGRAM_TOKEN"`
	TelegramChatID int64  `env:"SNIPER_TELEGRAM_CHAT_ID"`

	// HTTP API
	ListenAddr  string `env:"SNIPER_LISTEN_ADDR" envDefault:":8080"`
	MetricsAddr string `env:"SNIPER_METRICS_ADDR" envDefault:":9090"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.FeeMultiplier < 1.0 {
		return cfg, fmt.Errorf("SNIPER_FEE_MULTIPLIER %.2f must be at least 1.0", cfg.FeeMultiplier)
	}
	if cfg.MonitorInterval <= 0 {
		return cfg, fmt.Errorf("SNIPER_MONITOR_INTERVAL must be positive")
	}
	if cfg.TelegramToken != "" && cfg.TelegramChatID == 0 {
		return cfg, fmt.Errorf("SNIPER_TELEGRAM_CHAT_ID is required when SNIPER_TELEGRAM_TOKEN is set")
	}
	return cfg, nil
}
