// Package jupiter implements the swap adapter for the Jupiter
// aggregator using its v6 quote and swap endpoints.
package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"solana-sniper/internal/dex"
	"solana-sniper/internal/domain"
	"solana-sniper/internal/wallet"
)

// DefaultBaseURL is the public Jupiter v6 API.
const DefaultBaseURL = "https://quote-api.jup.ag"

// DefaultTimeout bounds a single quote or swap call.
const DefaultTimeout = 20 * time.Second

// Swapper executes swaps through Jupiter.
type Swapper struct {
	baseURL string
	client  *http.Client
}

var _ dex.Swapper = (*Swapper)(nil)

// Option configures the Swapper.
type Option func(*Swapper)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(u string) Option {
	return func(s *Swapper) {
		s.baseURL = u
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) Option {
	return func(s *Swapper) {
		s.client = client
	}
}

// NewSwapper creates a Jupiter swap adapter.
func NewSwapper(opts ...Option) *Swapper {
	s := &Swapper{
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DexType identifies this adapter.
func (s *Swapper) DexType() domain.DexType {
	return domain.DexJupiter
}

// Validate checks the request. On top of the shared constraints the
// wallet address must be a well-formed base58 public key, since
// Jupiter builds the transaction against it.
func (s *Swapper) Validate(req *domain.SwapRequest) error {
	if err := dex.ValidateSwapParams(req); err != nil {
		return err
	}
	if !wallet.ValidAddress(req.WalletAddress) {
		return fmt.Errorf("%w: wallet address %q is not a valid base58 public key", domain.ErrValidation, req.WalletAddress)
	}
	return nil
}

// Swap fetches a quote and builds the swap transaction.
func (s *Swapper) Swap(ctx context.Context, req *domain.SwapRequest) <-chan domain.SwapOutcome {
	return dex.Deliver(ctx, req, s.Validate, s.execute)
}

func (s *Swapper) execute(ctx context.Context, req *domain.SwapRequest) domain.SwapOutcome {
	quote, err := s.quote(ctx, req)
	if err != nil {
		return domain.Failure(err)
	}

	tx, fee, err := s.buildSwap(ctx, req, quote)
	if err != nil {
		return domain.Failure(err)
	}

	return domain.Success(tx, fee)
}

// quoteResponse is the raw /v6/quote payload. The full quote is kept
// for the swap call, which echoes it back verbatim.
type quoteResponse struct {
	OutAmount string `json:"outAmount"`
	raw       json.RawMessage
}

// quote fetches a route quote for the request.
func (s *Swapper) quote(ctx context.Context, req *domain.SwapRequest) (*quoteResponse, error) {
	// Jupiter expresses slippage in basis points.
	slippageBps := int(req.SlippagePct * 100)

	q := url.Values{
		"inputMint":   {req.InputMint},
		"outputMint":  {req.OutputMint},
		"amount":      {strconv.FormatUint(req.Amount, 10)},
		"slippageBps": {strconv.Itoa(slippageBps)},
	}

	body, err := s.do(ctx, http.MethodGet, "/v6/quote?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch quote: %w", err)
	}

	var quote quoteResponse
	if err := json.Unmarshal(body, &quote); err != nil {
		return nil, fmt.Errorf("%w: decode quote: %v", domain.ErrExchange, err)
	}
	if quote.OutAmount == "" {
		return nil, fmt.Errorf("%w: quote has no route for %s -> %s", domain.ErrExchange, req.InputMint, req.OutputMint)
	}
	quote.raw = body
	return &quote, nil
}

// swapResponse is the raw /v6/swap payload.
type swapResponse struct {
	SwapTransaction           string `json:"swapTransaction"`
	PrioritizationFeeLamports uint64 `json:"prioritizationFeeLamports"`
}

// buildSwap exchanges a quote for a base64 encoded transaction.
func (s *Swapper) buildSwap(ctx context.Context, req *domain.SwapRequest, quote *quoteResponse) (string, uint64, error) {
	payload, err := json.Marshal(map[string]any{
		"quoteResponse":             json.RawMessage(quote.raw),
		"userPublicKey":             req.WalletAddress,
		"wrapAndUnwrapSol":          true,
		"dynamicComputeUnitLimit":   true,
		"prioritizationFeeLamports": "auto",
	})
	if err != nil {
		return "", 0, fmt.Errorf("encode swap request: %w", err)
	}

	body, err := s.do(ctx, http.MethodPost, "/v6/swap", payload)
	if err != nil {
		return "", 0, fmt.Errorf("build swap transaction: %w", err)
	}

	var resp swapResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", 0, fmt.Errorf("%w: decode swap response: %v", domain.ErrExchange, err)
	}
	if resp.SwapTransaction == "" {
		return "", 0, fmt.Errorf("%w: swap response has no transaction", domain.ErrExchange)
	}
	return resp.SwapTransaction, resp.PrioritizationFeeLamports, nil
}

func (s *Swapper) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d: %s", domain.ErrExchange, resp.StatusCode, body)
	}
	return body, nil
}
