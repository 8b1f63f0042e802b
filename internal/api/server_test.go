package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"solana-sniper/internal/dex"
	"solana-sniper/internal/domain"
	"solana-sniper/internal/observability"
	"solana-sniper/internal/relay"
	"solana-sniper/internal/storage/memory"
	"solana-sniper/internal/wallet"
	"solana-sniper/internal/watch"
)

// stubSwapper returns a fixed outcome stream.
type stubSwapper struct {
	dexType domain.DexType
	outcome domain.SwapOutcome
}

func (s *stubSwapper) DexType() domain.DexType { return s.dexType }

func (s *stubSwapper) Validate(req *domain.SwapRequest) error {
	return dex.ValidateSwapParams(req)
}

func (s *stubSwapper) Swap(ctx context.Context, req *domain.SwapRequest) <-chan domain.SwapOutcome {
	return dex.Deliver(ctx, req, s.Validate, func(context.Context, *domain.SwapRequest) domain.SwapOutcome {
		return s.outcome
	})
}

// stubRelay always accepts bundles.
type stubRelay struct{}

func (stubRelay) SubmitBundle(context.Context, []string, string) (string, error) {
	return "bundle-1", nil
}

func (stubRelay) BundleStatuses(context.Context, []string) ([]relay.BundleStatus, error) {
	return nil, nil
}

// fakePrices serves one fixed price.
type fakePrices struct{}

func (fakePrices) CurrentPrice(_ context.Context, token string) (*domain.PriceSnapshot, bool, error) {
	return &domain.PriceSnapshot{
		TokenAddress: token,
		Price:        1.25,
		ObservedAt:   time.Now().UTC(),
	}, false, nil
}

func testServer(t *testing.T) (*Server, *memory.ConfigStore, *memory.TransactionStore) {
	t.Helper()

	configs := memory.NewConfigStore()
	txs := memory.NewTransactionStore()
	registry, err := dex.NewRegistry(&stubSwapper{
		dexType: domain.DexJupiter,
		outcome: domain.Success("base64tx", 5000),
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	logger := log.New(io.Discard, "", 0)
	protector := relay.NewProtector(stubRelay{}, logger,
		relay.WithDelayRange(time.Millisecond, time.Millisecond))

	s := New(Options{
		Configs:       configs,
		Transactions:  txs,
		Pools:         memory.NewPoolStore(),
		Swappers:      registry,
		Protector:     protector,
		Prices:        fakePrices{},
		WalletAddress: "4Nd1mYQtrRZTcqmGqWzXZ7koTv9W8dnKKuuYGkBMA3Wz",
		Logger:        logger,
	})
	return s, configs, txs
}

func doRequest(s *Server, method, path, body string) *httptest.ResponseRecorder {
	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reqBody)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.app.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s, _, _ := testServer(t)

	rec := doRequest(s, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestConfigLifecycle(t *testing.T) {
	s, configs, _ := testServer(t)

	body := `{"token_address":"So11111111111111111111111111111111111111112","buy_price":100,"stop_loss_pct":10,"take_profit_pct":20,"dex":"JUPITER","amount":1,"slippage_pct":1.0}`
	rec := doRequest(s, http.MethodPost, "/configs", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body)
	}

	var created domain.SnipeConfig
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode created config: %v", err)
	}
	if created.ID == 0 {
		t.Error("created config has no id")
	}

	active, err := configs.ListActive(context.Background())
	if err != nil || len(active) != 1 {
		t.Fatalf("ListActive = %v, %v", active, err)
	}

	rec = doRequest(s, http.MethodPost, "/configs/1/deactivate", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("deactivate status = %d", rec.Code)
	}

	active, _ = configs.ListActive(context.Background())
	if len(active) != 0 {
		t.Errorf("config still active after deactivate")
	}
}

func TestCreateConfigRejectsBadDex(t *testing.T) {
	s, _, _ := testServer(t)

	body := `{"token_address":"Mint1","buy_price":100,"stop_loss_pct":10,"dex":"UNISWAP","amount":1,"slippage_pct":1.0}`
	rec := doRequest(s, http.MethodPost, "/configs", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateConfigRejectsBadTokenAddress(t *testing.T) {
	s, _, _ := testServer(t)

	body := `{"token_address":"Mint1","buy_price":100,"stop_loss_pct":10,"dex":"JUPITER","amount":1,"slippage_pct":1.0}`
	rec := doRequest(s, http.MethodPost, "/configs", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateConfigRejectsInvalidSlippage(t *testing.T) {
	s, _, _ := testServer(t)

	body := `{"token_address":"So11111111111111111111111111111111111111112","buy_price":100,"stop_loss_pct":10,"dex":"JUPITER","amount":1,"slippage_pct":500}`
	rec := doRequest(s, http.MethodPost, "/configs", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGetConfigNotFound(t *testing.T) {
	s, _, _ := testServer(t)

	rec := doRequest(s, http.MethodGet, "/configs/99", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSwapRecordsTransaction(t *testing.T) {
	s, _, txs := testServer(t)

	swapped := testutil.ToFloat64(observability.DefaultMetrics.SwapsTotal.WithLabelValues("JUPITER", "success"))

	body := `{"dex":"JUPITER","input_mint":"So11111111111111111111111111111111111111112","output_mint":"Mint1","amount":1000000,"slippage_pct":1.0}`
	rec := doRequest(s, http.MethodPost, "/swap", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["bundle_id"] != "bundle-1" {
		t.Errorf("bundle_id = %v", resp["bundle_id"])
	}
	if resp["status"] != string(domain.TxStatusConfirmed) {
		t.Errorf("status = %v, want CONFIRMED", resp["status"])
	}
	// fee bumped 5000 * 1.5
	if resp["fee_lamports"].(float64) != 7500 {
		t.Errorf("fee_lamports = %v, want 7500", resp["fee_lamports"])
	}

	records, err := txs.List(context.Background(), 10)
	if err != nil || len(records) != 1 {
		t.Fatalf("List = %v, %v", records, err)
	}
	if records[0].Status != domain.TxStatusConfirmed {
		t.Errorf("recorded status = %v, want CONFIRMED", records[0].Status)
	}

	after := testutil.ToFloat64(observability.DefaultMetrics.SwapsTotal.WithLabelValues("JUPITER", "success"))
	if after != swapped+1 {
		t.Errorf("swap counter = %v, want %v", after, swapped+1)
	}
}

func TestSwapValidationFailure(t *testing.T) {
	s, _, txs := testServer(t)

	body := `{"dex":"JUPITER","input_mint":"So11111111111111111111111111111111111111112","output_mint":"Mint1","amount":0,"slippage_pct":1.0}`
	rec := doRequest(s, http.MethodPost, "/swap", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body)
	}

	records, _ := txs.List(context.Background(), 10)
	if len(records) != 0 {
		t.Errorf("rejected swap produced %d transaction records", len(records))
	}
}

func TestSwapUnknownDex(t *testing.T) {
	s, _, _ := testServer(t)

	body := `{"dex":"ORCA","input_mint":"a","output_mint":"b","amount":1,"slippage_pct":1.0}`
	rec := doRequest(s, http.MethodPost, "/swap", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRelayMultiplierEndpoints(t *testing.T) {
	s, _, _ := testServer(t)

	rec := doRequest(s, http.MethodPost, "/relay/multiplier", `{"multiplier":2.5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set status = %d: %s", rec.Code, rec.Body)
	}

	rec = doRequest(s, http.MethodGet, "/relay/multiplier", "")
	var resp map[string]float64
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["multiplier"] != 2.5 {
		t.Errorf("multiplier = %v, want 2.5", resp["multiplier"])
	}

	rec = doRequest(s, http.MethodPost, "/relay/multiplier", `{"multiplier":0.5}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("set below 1.0 status = %d, want 400", rec.Code)
	}
}

func TestPriceEndpoint(t *testing.T) {
	s, _, _ := testServer(t)

	rec := doRequest(s, http.MethodGet, "/price/Mint1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["price"].(float64) != 1.25 {
		t.Errorf("price = %v, want 1.25", resp["price"])
	}
}

func TestWalletEndpoint(t *testing.T) {
	s, _, _ := testServer(t)

	rec := doRequest(s, http.MethodGet, "/wallet", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["connected"] != true {
		t.Errorf("connected = %v, want true", resp["connected"])
	}
}

// fakePoolFeed returns canned pool listings.
type fakePoolFeed struct {
	pools []*domain.Pool
	err   error
}

func (f *fakePoolFeed) NewPools(context.Context, int) ([]*domain.Pool, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pools, nil
}

// fakeRPC serves a fixed balance.
type fakeRPC struct {
	balance uint64
}

func (f *fakeRPC) GetLatestBlockhash(context.Context) (string, error) { return "hash", nil }
func (f *fakeRPC) GetBalance(context.Context, string) (uint64, error) { return f.balance, nil }
func (f *fakeRPC) GetHealth(context.Context) error                    { return nil }

func poolServer(t *testing.T, feed PoolFetcher) (*Server, *memory.PoolStore) {
	t.Helper()

	pools := memory.NewPoolStore()
	s := New(Options{
		Configs:      memory.NewConfigStore(),
		Transactions: memory.NewTransactionStore(),
		Pools:        pools,
		PoolFeed:     feed,
		Logger:       log.New(io.Discard, "", 0),
	})
	return s, pools
}

func TestListPoolsRefreshesFromFeed(t *testing.T) {
	feed := &fakePoolFeed{pools: []*domain.Pool{{
		PoolAddress: "Pool1",
		BaseMint:    "Mint1",
		QuoteMint:   "So11111111111111111111111111111111111111112",
		PairName:    "BONK/SOL",
		CreatedAt:   time.Now().UTC(),
	}}}
	s, pools := poolServer(t, feed)

	rec := doRequest(s, http.MethodGet, "/pools", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var listed []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("listed %d pools, want 1", len(listed))
	}

	cached, err := pools.Get(context.Background(), "Pool1")
	if err != nil || cached.PairName != "BONK/SOL" {
		t.Errorf("Get(Pool1) = %v, %v, want cached pool", cached, err)
	}
}

func TestListPoolsServesCacheWhenFeedDown(t *testing.T) {
	s, pools := poolServer(t, &fakePoolFeed{err: errors.New("feed down")})

	seed := []*domain.Pool{{PoolAddress: "Pool1", PairName: "WIF/SOL", CreatedAt: time.Now().UTC()}}
	if err := pools.UpsertBulk(context.Background(), seed); err != nil {
		t.Fatalf("UpsertBulk: %v", err)
	}

	rec := doRequest(s, http.MethodGet, "/pools", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}

	var listed []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listed) != 1 {
		t.Errorf("listed %d pools, want cached 1", len(listed))
	}
}

func TestWalletEndpointPublishesState(t *testing.T) {
	const addr = "4Nd1mYQtrRZTcqmGqWzXZ7koTv9W8dnKKuuYGkBMA3Wz"
	state := watch.New(wallet.State{Connected: true, Address: addr})

	s := New(Options{
		Configs:      memory.NewConfigStore(),
		Transactions: memory.NewTransactionStore(),
		Pools:        memory.NewPoolStore(),
		RPC:          &fakeRPC{balance: 2_500_000_000},
		Wallet:       state,
		Logger:       log.New(io.Discard, "", 0),
	})

	rec := doRequest(s, http.MethodGet, "/wallet", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["address"] != addr {
		t.Errorf("address = %v, want %s", resp["address"], addr)
	}
	if resp["balance_sol"].(float64) != 2.5 {
		t.Errorf("balance_sol = %v, want 2.5", resp["balance_sol"])
	}

	if got := state.Load().Balance; got != 2.5 {
		t.Errorf("published balance = %v, want 2.5", got)
	}
}
