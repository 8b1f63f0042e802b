package domain

import (
	"fmt"
	"time"
)

// DexType identifies a supported exchange. The set is closed: adding a
// DEX means adding a constant here and an adapter in internal/dex.
type DexType string

// Supported exchanges.
const (
	DexRaydium DexType = "RAYDIUM"
	DexJupiter DexType = "JUPITER"
	DexOrca    DexType = "ORCA"
)

// ParseDexType converts a stored string into a DexType.
func ParseDexType(s string) (DexType, error) {
	switch DexType(s) {
	case DexRaydium, DexJupiter, DexOrca:
		return DexType(s), nil
	default:
		return "", fmt.Errorf("%w: unknown dex type %q", ErrValidation, s)
	}
}

// Slippage bounds for stored configs, in percent.
const (
	MinConfigSlippagePct = 0.1
	MaxConfigSlippagePct = 100.0
)

// SnipeConfig is a user's standing exit order against one token:
// notify (and optionally sell) when price crosses the stop-loss or
// take-profit threshold relative to the reference buy price.
type SnipeConfig struct {
	ID            int64    // BIGSERIAL primary key, 0 until stored
	TokenAddress  string   // token mint address
	BuyPrice      float64  // reference entry price
	StopLossPct   float64  // percent below buy price, > 0
	TakeProfitPct *float64 // percent above buy price, > 0 if set
	Dex           DexType  // exchange used for execution
	Amount        float64  // position size in input token units
	SlippagePct   float64  // tolerated slippage, percent
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Validate checks the config invariants. Economic sanity (e.g. inverted
// stop-loss vs take-profit) is deliberately not checked here.
func (c *SnipeConfig) Validate() error {
	if c.TokenAddress == "" {
		return fmt.Errorf("%w: token address is required", ErrValidation)
	}
	if c.BuyPrice <= 0 {
		return fmt.Errorf("%w: buy price must be positive, got %g", ErrValidation, c.BuyPrice)
	}
	if c.StopLossPct <= 0 {
		return fmt.Errorf("%w: stop-loss percent must be positive, got %g", ErrValidation, c.StopLossPct)
	}
	if c.TakeProfitPct != nil && *c.TakeProfitPct <= 0 {
		return fmt.Errorf("%w: take-profit percent must be positive, got %g", ErrValidation, *c.TakeProfitPct)
	}
	if c.SlippagePct < MinConfigSlippagePct || c.SlippagePct > MaxConfigSlippagePct {
		return fmt.Errorf("%w: slippage %g%% outside [%g, %g]", ErrValidation,
			c.SlippagePct, MinConfigSlippagePct, MaxConfigSlippagePct)
	}
	if _, err := ParseDexType(string(c.Dex)); err != nil {
		return err
	}
	return nil
}

// StopLossPrice computes the price at or below which the stop-loss fires.
func (c *SnipeConfig) StopLossPrice() float64 {
	return c.BuyPrice * (1 - c.StopLossPct/100)
}

// TakeProfitPrice computes the price at or above which the take-profit
// fires. Returns (0, false) when no take-profit is configured.
func (c *SnipeConfig) TakeProfitPrice() (float64, bool) {
	if c.TakeProfitPct == nil {
		return 0, false
	}
	return c.BuyPrice * (1 + *c.TakeProfitPct/100), true
}
