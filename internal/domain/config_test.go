package domain

import (
	"errors"
	"testing"
)

func validConfig() *SnipeConfig {
	tp := 20.0
	return &SnipeConfig{
		TokenAddress:  "So11111111111111111111111111111111111111112",
		BuyPrice:      100,
		StopLossPct:   10,
		TakeProfitPct: &tp,
		Dex:           DexRaydium,
		Amount:        1.5,
		SlippagePct:   1.0,
		Active:        true,
	}
}

func TestSnipeConfigValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*SnipeConfig)
	}{
		{"empty token address", func(c *SnipeConfig) { c.TokenAddress = "" }},
		{"zero buy price", func(c *SnipeConfig) { c.BuyPrice = 0 }},
		{"zero stop-loss", func(c *SnipeConfig) { c.StopLossPct = 0 }},
		{"negative stop-loss", func(c *SnipeConfig) { c.StopLossPct = -5 }},
		{"zero take-profit", func(c *SnipeConfig) { z := 0.0; c.TakeProfitPct = &z }},
		{"slippage below range", func(c *SnipeConfig) { c.SlippagePct = 0.05 }},
		{"slippage above range", func(c *SnipeConfig) { c.SlippagePct = 100.5 }},
		{"unknown dex", func(c *SnipeConfig) { c.Dex = "UNISWAP" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestSnipeConfigThresholds(t *testing.T) {
	cfg := validConfig()

	if got := cfg.StopLossPrice(); got != 90 {
		t.Errorf("stop-loss price: expected 90, got %g", got)
	}

	tp, ok := cfg.TakeProfitPrice()
	if !ok {
		t.Fatal("expected take-profit price to be configured")
	}
	if tp != 120 {
		t.Errorf("take-profit price: expected 120, got %g", tp)
	}

	cfg.TakeProfitPct = nil
	if _, ok := cfg.TakeProfitPrice(); ok {
		t.Error("expected no take-profit price when percent unset")
	}
}

func TestParseDexType(t *testing.T) {
	for _, s := range []string{"RAYDIUM", "JUPITER", "ORCA"} {
		if _, err := ParseDexType(s); err != nil {
			t.Errorf("ParseDexType(%q): %v", s, err)
		}
	}
	if _, err := ParseDexType("raydium"); err == nil {
		t.Error("expected lowercase dex type to be rejected")
	}
}
