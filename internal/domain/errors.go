package domain

import "errors"

// Error kinds shared across the swap/notification pipeline. Components
// wrap these with fmt.Errorf("...: %w", ...) so callers can classify
// failures with errors.Is without depending on concrete clients.
var (
	// ErrValidation marks bad input shape or range, rejected before any
	// network call.
	ErrValidation = errors.New("validation error")

	// ErrNetwork marks transport or HTTP-level failure talking to an
	// external service.
	ErrNetwork = errors.New("network error")

	// ErrExchange marks a well-formed HTTP response signaling an
	// application-level rejection by the exchange.
	ErrExchange = errors.New("exchange error")

	// ErrRelayRejected marks a bundle the block-builder relay refused.
	ErrRelayRejected = errors.New("relay rejected bundle")

	// ErrNotFound marks a missing config, pool or record.
	ErrNotFound = errors.New("not found")
)
