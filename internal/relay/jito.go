// Package relay submits swap transactions through an MEV protected
// bundle relay instead of the public mempool.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"solana-sniper/internal/domain"
)

// DefaultJitoURL is the mainnet Jito block engine endpoint.
const DefaultJitoURL = "https://mainnet.block-engine.jito.wtf/api/v1/bundles"

// DefaultJitoTimeout bounds a single bundle submission.
const DefaultJitoTimeout = 30 * time.Second

// BundleStatus reports the relay's view of a submitted bundle.
type BundleStatus struct {
	BundleID string
	Landed   bool
	Slot     uint64
}

// Relay submits signed transactions for protected inclusion.
type Relay interface {
	// SubmitBundle sends base64 encoded signed transactions as one
	// atomic bundle and returns the relay assigned bundle ID. An empty
	// recentBlockhash omits the inclusion hint.
	SubmitBundle(ctx context.Context, encodedTxs []string, recentBlockhash string) (string, error)

	// BundleStatuses fetches the landing status for bundle IDs.
	BundleStatuses(ctx context.Context, bundleIDs []string) ([]BundleStatus, error)
}

// JitoClient implements Relay against the Jito block engine JSON-RPC API.
type JitoClient struct {
	endpoint  string
	client    *http.Client
	requestID atomic.Uint64
}

var _ Relay = (*JitoClient)(nil)

// JitoOption configures JitoClient.
type JitoOption func(*JitoClient)

// WithEndpoint overrides the block engine endpoint. Used by tests.
func WithEndpoint(u string) JitoOption {
	return func(c *JitoClient) {
		c.endpoint = u
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) JitoOption {
	return func(c *JitoClient) {
		c.client = client
	}
}

// NewJitoClient creates a Jito block engine client.
func NewJitoClient(opts ...JitoOption) *JitoClient {
	c := &JitoClient{
		endpoint: DefaultJitoURL,
		client:   &http.Client{Timeout: DefaultJitoTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      uint64 `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf(`{"code":%d,"message":%q}`, e.Code, e.Message)
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id"`
	Result  json.RawMessage `json:"result"`
	Error   *rpcError       `json:"error"`
}

// SubmitBundle sends the transactions via sendBundle.
func (c *JitoClient) SubmitBundle(ctx context.Context, encodedTxs []string, recentBlockhash string) (string, error) {
	if len(encodedTxs) == 0 {
		return "", fmt.Errorf("%w: bundle needs at least one transaction", domain.ErrValidation)
	}

	opts := map[string]any{"encoding": "base64"}
	if recentBlockhash != "" {
		opts["recentBlockhash"] = recentBlockhash
	}
	params := []any{encodedTxs, opts}
	result, err := c.call(ctx, "sendBundle", params)
	if err != nil {
		return "", err
	}

	var bundleID string
	if err := json.Unmarshal(result, &bundleID); err != nil {
		return "", fmt.Errorf("decode bundle id: %w", err)
	}
	return bundleID, nil
}

// BundleStatuses fetches landing status via getBundleStatuses.
func (c *JitoClient) BundleStatuses(ctx context.Context, bundleIDs []string) ([]BundleStatus, error) {
	result, err := c.call(ctx, "getBundleStatuses", []any{bundleIDs})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Value []struct {
			BundleID           string `json:"bundle_id"`
			Slot               uint64 `json:"slot"`
			ConfirmationStatus string `json:"confirmation_status"`
		} `json:"value"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return nil, fmt.Errorf("decode bundle statuses: %w", err)
	}

	statuses := make([]BundleStatus, 0, len(parsed.Value))
	for _, v := range parsed.Value {
		statuses = append(statuses, BundleStatus{
			BundleID: v.BundleID,
			Landed:   v.ConfirmationStatus == "confirmed" || v.ConfirmationStatus == "finalized",
			Slot:     v.Slot,
		})
	}
	return statuses, nil
}

// call performs a JSON-RPC request against the block engine.
// A relay level error is returned verbatim wrapped in ErrRelayRejected
// so callers can surface the exact relay message.
func (c *JitoClient) call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	req := rpcRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  method,
		Params:  params,
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode %s request: %w", method, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrNetwork, method, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %v", domain.ErrNetwork, method, err)
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned HTTP %d: %s", domain.ErrNetwork, method, httpResp.StatusCode, body)
	}

	var resp rpcResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrRelayRejected, resp.Error.Error())
	}
	return resp.Result, nil
}
