// Package raydium implements the swap adapter for Raydium's
// transaction API.
package raydium

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"solana-sniper/internal/dex"
	"solana-sniper/internal/domain"
)

// DefaultBaseURL is the public Raydium transaction API.
const DefaultBaseURL = "https://transaction-v1.raydium.io"

// DefaultTimeout bounds a single swap call.
const DefaultTimeout = 20 * time.Second

// Swapper executes swaps through Raydium.
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

// NewSwapper creates a Raydium swap adapter.
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
	return domain.DexRaydium
}

// Validate checks the request. Raydium only needs a non-blank wallet
// on top of the shared constraints.
func (s *Swapper) Validate(req *domain.SwapRequest) error {
	if err := dex.ValidateSwapParams(req); err != nil {
		return err
	}
	if strings.TrimSpace(req.WalletAddress) == "" {
		return fmt.Errorf("%w: wallet address is required", domain.ErrValidation)
	}
	return nil
}

// Swap builds a swap transaction in a single API call.
func (s *Swapper) Swap(ctx context.Context, req *domain.SwapRequest) <-chan domain.SwapOutcome {
	return dex.Deliver(ctx, req, s.Validate, s.execute)
}

// swapRequestBody is the transaction API request payload.
type swapRequestBody struct {
	InputMint    string `json:"inputMint"`
	OutputMint   string `json:"outputMint"`
	Amount       string `json:"amount"`
	SlippageBps  int    `json:"slippageBps"`
	Wallet       string `json:"wallet"`
	TxVersion    string `json:"txVersion"`
	WrapSol      bool   `json:"wrapSol"`
	UnwrapSol    bool   `json:"unwrapSol"`
	ComputePrice string `json:"computeUnitPriceMicroLamports"`
}

// swapResponse is the raw transaction API payload.
type swapResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Data    []struct {
		Transaction string `json:"transaction"`
	} `json:"data"`
	PriorityFee uint64 `json:"priorityFee"`
}

func (s *Swapper) execute(ctx context.Context, req *domain.SwapRequest) domain.SwapOutcome {
	payload, err := json.Marshal(swapRequestBody{
		InputMint:    req.InputMint,
		OutputMint:   req.OutputMint,
		Amount:       strconv.FormatUint(req.Amount, 10),
		SlippageBps:  int(req.SlippagePct * 100),
		Wallet:       req.WalletAddress,
		TxVersion:    "V0",
		WrapSol:      true,
		UnwrapSol:    true,
		ComputePrice: "auto",
	})
	if err != nil {
		return domain.Failure(fmt.Errorf("encode swap request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/transaction/swap-base-in", bytes.NewReader(payload))
	if err != nil {
		return domain.Failure(fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := s.client.Do(httpReq)
	if err != nil {
		return domain.Failure(fmt.Errorf("%w: %v", domain.ErrNetwork, err))
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return domain.Failure(fmt.Errorf("%w: read response: %v", domain.ErrNetwork, err))
	}
	if httpResp.StatusCode != http.StatusOK {
		return domain.Failure(fmt.Errorf("%w: HTTP %d: %s", domain.ErrExchange, httpResp.StatusCode, body))
	}

	var resp swapResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Failure(fmt.Errorf("%w: decode swap response: %v", domain.ErrExchange, err))
	}
	if !resp.Success {
		return domain.Failure(fmt.Errorf("%w: %s", domain.ErrExchange, resp.Msg))
	}
	if len(resp.Data) == 0 || resp.Data[0].Transaction == "" {
		return domain.Failure(fmt.Errorf("%w: swap response has no transaction", domain.ErrExchange))
	}

	return domain.Success(resp.Data[0].Transaction, resp.PriorityFee)
}
