package domain

// Swap adapter slippage bounds, in percent. Tighter than the stored
// config range: a swap above 50% slippage is never worth executing.
const (
	MinSwapSlippagePct = 0.1
	MaxSwapSlippagePct = 50.0
)

// DefaultSlippagePct is used when a request does not specify slippage.
const DefaultSlippagePct = 1.0

// SwapRequest is a single swap intent. Amount is in the smallest
// denomination of the input token (lamports for SOL).
type SwapRequest struct {
	InputMint     string
	OutputMint    string
	Amount        uint64
	SlippagePct   float64
	WalletAddress string
}

// SwapOutcomeKind tags a SwapOutcome variant.
type SwapOutcomeKind int

const (
	SwapPending SwapOutcomeKind = iota
	SwapSuccess
	SwapFailure
)

// SwapOutcome is one element of the outcome stream produced by a swap
// attempt: a Pending marker followed by exactly one Success or Failure.
type SwapOutcome struct {
	Kind SwapOutcomeKind

	// Success fields
	EncodedTx   string // base64 signed-ready transaction
	FeeLamports uint64 // prioritization fee estimate

	// Failure fields
	Err error
}

// Terminal reports whether the outcome ends the stream.
func (o SwapOutcome) Terminal() bool {
	return o.Kind != SwapPending
}

// Pending returns the stream's leading marker.
func Pending() SwapOutcome {
	return SwapOutcome{Kind: SwapPending}
}

// Success returns a terminal success outcome.
func Success(encodedTx string, feeLamports uint64) SwapOutcome {
	return SwapOutcome{Kind: SwapSuccess, EncodedTx: encodedTx, FeeLamports: feeLamports}
}

// Failure returns a terminal failure outcome.
func Failure(err error) SwapOutcome {
	return SwapOutcome{Kind: SwapFailure, Err: err}
}

// QuoteResult is the normalized response of a DEX quote endpoint.
type QuoteResult struct {
	InputMint      string
	OutputMint     string
	InAmount       uint64
	OutAmount      uint64
	PriceImpactPct float64
	SlippageBps    int
	Raw            []byte // verbatim provider payload, passed to the tx builder
}
