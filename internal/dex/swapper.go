// Package dex defines the swap adapter contract shared by all
// supported exchanges and a registry to look adapters up by venue.
package dex

import (
	"context"
	"fmt"
	"strings"

	"solana-sniper/internal/domain"
)

// MaxRetries is the per-request retry budget adapters advertise to the
// HTTP transport layer. Adapters never retry themselves.
const MaxRetries = 3

// Swapper executes token swaps on a single exchange.
//
// Swap returns a channel that emits a pending outcome first, then
// exactly one terminal outcome (success or failure), then closes.
// Validation failures surface on the channel as the terminal outcome
// without any network activity.
type Swapper interface {
	// DexType identifies the exchange this adapter targets.
	DexType() domain.DexType

	// Validate checks the request without performing any I/O.
	Validate(req *domain.SwapRequest) error

	// Swap executes the swap and streams progress on the returned channel.
	Swap(ctx context.Context, req *domain.SwapRequest) <-chan domain.SwapOutcome
}

// ValidateSwapParams enforces the request constraints common to all
// exchanges. Adapter-specific checks layer on top of this.
func ValidateSwapParams(req *domain.SwapRequest) error {
	if req == nil {
		return fmt.Errorf("%w: swap request is required", domain.ErrValidation)
	}
	if req.Amount == 0 {
		return fmt.Errorf("%w: amount must be greater than zero", domain.ErrValidation)
	}
	if req.SlippagePct < domain.MinSwapSlippagePct || req.SlippagePct > domain.MaxSwapSlippagePct {
		return fmt.Errorf("%w: slippage %.2f%% outside allowed range [%.1f, %.1f]",
			domain.ErrValidation, req.SlippagePct, domain.MinSwapSlippagePct, domain.MaxSwapSlippagePct)
	}
	if strings.TrimSpace(req.InputMint) == "" {
		return fmt.Errorf("%w: input mint is required", domain.ErrValidation)
	}
	if strings.TrimSpace(req.OutputMint) == "" {
		return fmt.Errorf("%w: output mint is required", domain.ErrValidation)
	}
	return nil
}

// Deliver runs a swap body and forwards its stream contract: one
// pending outcome, one terminal outcome, channel closed. Shared by
// adapters so the contract lives in one place.
func Deliver(ctx context.Context, req *domain.SwapRequest, validate func(*domain.SwapRequest) error, execute func(context.Context, *domain.SwapRequest) domain.SwapOutcome) <-chan domain.SwapOutcome {
	out := make(chan domain.SwapOutcome, 2)

	if err := validate(req); err != nil {
		out <- domain.Failure(err)
		close(out)
		return out
	}

	out <- domain.Pending()

	go func() {
		defer close(out)

		select {
		case <-ctx.Done():
			out <- domain.Failure(fmt.Errorf("swap canceled: %w", ctx.Err()))
			return
		default:
		}

		out <- execute(ctx, req)
	}()

	return out
}
