// Package trigger decides whether a snipe config fires against a price.
package trigger

import "solana-sniper/internal/domain"

// Evaluate maps a config and the current price to a trigger result.
// Pure and deterministic: no I/O, no clock, no hidden state.
//
// Rules:
//   - STOP_LOSS when price <= buyPrice*(1 - stopLossPct/100), inclusive.
//   - else TAKE_PROFIT when a take-profit is configured and
//     price >= buyPrice*(1 + takeProfitPct/100), inclusive.
//   - else NONE.
//
// The stop-loss check runs first, so it wins when an inverted config
// satisfies both thresholds at once. Economic sanity of the thresholds
// is the config constructor's problem, not ours.
func Evaluate(cfg *domain.SnipeConfig, currentPrice float64) domain.TriggerResult {
	if currentPrice <= cfg.StopLossPrice() {
		return domain.TriggerStopLoss
	}
	if tp, ok := cfg.TakeProfitPrice(); ok && currentPrice >= tp {
		return domain.TriggerTakeProfit
	}
	return domain.TriggerNone
}
