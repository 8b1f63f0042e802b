// Package notify delivers trigger and trade alerts to operators.
package notify

import (
	"context"
	"fmt"
	"log"

	"solana-sniper/internal/domain"
)

// Event is a single alert for the operator.
type Event struct {
	// TokenAddress is the mint the alert is about.
	TokenAddress string
	// Trigger is the threshold that fired, or TriggerNone for
	// informational events.
	Trigger domain.TriggerResult
	// Price is the observed price that produced the alert.
	Price float64
	// Stale is true when the price came from the cache instead of a
	// live fetch.
	Stale bool
	// Message carries free-form detail.
	Message string
}

// String renders the event for log and message delivery.
func (e Event) String() string {
	base := e.Message
	if e.Trigger != domain.TriggerNone {
		base = fmt.Sprintf("%s triggered for %s at price %.8f", e.Trigger, e.TokenAddress, e.Price)
		if e.Stale {
			base += " (cached price)"
		}
		if e.Message != "" {
			base += ": " + e.Message
		}
	}
	return base
}

// Notifier delivers events. Implementations must tolerate delivery
// failure; alerting is best effort and never blocks trading decisions.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// LogNotifier writes events to a standard logger. It is the fallback
// when no external channel is configured.
type LogNotifier struct {
	logger *log.Logger
}

var _ Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a log backed notifier.
func NewLogNotifier(logger *log.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Notify writes the event to the logger.
func (n *LogNotifier) Notify(_ context.Context, event Event) error {
	n.logger.Printf("[alert] %s", event)
	return nil
}

// Multi fans an event out to several notifiers. Delivery errors are
// collected, not short-circuited, so one dead channel cannot silence
// the others.
type Multi []Notifier

var _ Notifier = (Multi)(nil)

// Notify delivers the event to every notifier.
func (m Multi) Notify(ctx context.Context, event Event) error {
	var firstErr error
	for _, n := range m {
		if err := n.Notify(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
