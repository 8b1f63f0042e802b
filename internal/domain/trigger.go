package domain

// TriggerResult is the outcome of evaluating a SnipeConfig against a
// current price. Recomputed every monitor cycle, never persisted.
type TriggerResult int

const (
	TriggerNone TriggerResult = iota
	TriggerStopLoss
	TriggerTakeProfit
)

// String returns the canonical name of the trigger result.
func (t TriggerResult) String() string {
	switch t {
	case TriggerStopLoss:
		return "STOP_LOSS"
	case TriggerTakeProfit:
		return "TAKE_PROFIT"
	default:
		return "NONE"
	}
}
