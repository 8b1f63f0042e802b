// Package pricing fetches token market data from a Birdeye-compatible
// HTTP API and maintains a best-effort in-memory price cache.
package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"solana-sniper/internal/domain"
)

// Default configuration values.
const (
	DefaultBaseURL   = "https://public-api.birdeye.so"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = rate.Limit(10) // requests per second
	DefaultRateBurst = 5
)

// Client talks to the Birdeye public API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// ClientOption configures Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API base URL. Used by tests.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithRateLimit sets the outbound request rate limit.
func WithRateLimit(l rate.Limit, burst int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(l, burst)
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.client = client
	}
}

// NewClient creates a new Birdeye API client.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: DefaultTimeout},
		limiter: rate.NewLimiter(DefaultRateLimit, DefaultRateBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// priceResponse is the raw /public/price payload.
type priceResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Value          float64 `json:"value"`
		Volume24h      float64 `json:"v24hUSD"`
		Liquidity      float64 `json:"liquidity"`
		UpdateUnixTime int64   `json:"updateUnixTime"`
	} `json:"data"`
}

// CurrentPrice fetches the current price snapshot for a token.
func (c *Client) CurrentPrice(ctx context.Context, tokenAddress string) (*domain.PriceSnapshot, error) {
	if tokenAddress == "" {
		return nil, fmt.Errorf("%w: token address is required", domain.ErrValidation)
	}

	q := url.Values{"address": {tokenAddress}}
	var resp priceResponse
	if err := c.get(ctx, "/public/price", q, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: price lookup for %s unsuccessful", domain.ErrExchange, tokenAddress)
	}

	observed := time.Now().UTC()
	if resp.Data.UpdateUnixTime > 0 {
		observed = time.Unix(resp.Data.UpdateUnixTime, 0).UTC()
	}

	return &domain.PriceSnapshot{
		TokenAddress: tokenAddress,
		Price:        resp.Data.Value,
		Volume24h:    resp.Data.Volume24h,
		Liquidity:    resp.Data.Liquidity,
		ObservedAt:   observed,
	}, nil
}

// poolListResponse is the raw /public/tokenlist payload.
type poolListResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Items []struct {
			Address         string  `json:"address"`
			Mint            string  `json:"mint"`
			Name            string  `json:"name"`
			Symbol          string  `json:"symbol"`
			Liquidity       float64 `json:"liquidity"`
			Price           float64 `json:"price"`
			Volume24h       float64 `json:"v24hUSD"`
			CreatedUnixTime int64   `json:"createdUnixTime"`
			Source          string  `json:"source"`
		} `json:"items"`
	} `json:"data"`
}

// NewPools fetches recently created pools, newest first.
func (c *Client) NewPools(ctx context.Context, limit int) ([]*domain.Pool, error) {
	if limit <= 0 {
		limit = 50
	}

	q := url.Values{
		"sortBy": {"created"},
		"limit":  {strconv.Itoa(limit)},
	}
	var resp poolListResponse
	if err := c.get(ctx, "/public/tokenlist", q, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("%w: pool listing unsuccessful", domain.ErrExchange)
	}

	pools := make([]*domain.Pool, 0, len(resp.Data.Items))
	for _, item := range resp.Data.Items {
		pools = append(pools, &domain.Pool{
			PoolAddress:  item.Address,
			BaseMint:     item.Mint,
			QuoteMint:    "So11111111111111111111111111111111111111112",
			PairName:     item.Name,
			PairSymbol:   item.Symbol,
			LiquidityUSD: item.Liquidity,
			CurrentPrice: item.Price,
			Volume24h:    item.Volume24h,
			Dex:          item.Source,
			CreatedAt:    time.Unix(item.CreatedUnixTime, 0).UTC(),
		})
	}
	return pools, nil
}

// get performs a rate-limited GET and decodes the JSON response.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait for rate limiter: %w", err)
	}

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("X-API-KEY", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrNetwork, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response body: %v", domain.ErrNetwork, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned HTTP %d: %s", domain.ErrNetwork, path, resp.StatusCode, truncate(body, 200))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s response: %v", domain.ErrExchange, path, err)
	}
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
