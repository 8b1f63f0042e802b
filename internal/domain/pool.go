package domain

import "time"

// Pool describes a liquidity pool observed on a DEX aggregator feed.
// Corresponds to the pools table in PostgreSQL.
type Pool struct {
	PoolAddress  string // pool account address, primary key
	BaseMint     string
	QuoteMint    string
	PairName     string // e.g. "BONK/SOL"
	PairSymbol   string
	LiquidityUSD float64
	CurrentPrice float64
	Volume24h    float64
	Dex          string // source DEX label as reported by the feed
	CreatedAt    time.Time
	LastUpdated  time.Time
	Tracked      bool
}

// IsNew reports whether the pool was created within the threshold.
func (p *Pool) IsNew(threshold time.Duration, now time.Time) bool {
	return now.Sub(p.CreatedAt) < threshold
}

// PriceSnapshot is point-in-time market data for a token. Snapshots are
// ephemeral: held in memory, re-fetched each monitor cycle, and always
// treated as possibly stale.
type PriceSnapshot struct {
	TokenAddress string
	Price        float64
	Volume24h    float64
	Liquidity    float64
	ObservedAt   time.Time
}
