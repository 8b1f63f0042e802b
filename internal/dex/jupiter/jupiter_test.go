package jupiter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"solana-sniper/internal/domain"
)

func validRequest() *domain.SwapRequest {
	return &domain.SwapRequest{
		InputMint:     "So11111111111111111111111111111111111111112",
		OutputMint:    "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		Amount:        1_000_000,
		SlippagePct:   1.0,
		WalletAddress: "4Nd1mYQtrRZTcqmGqWzXZ7koTv9W8dnKKuuYGkBMA3Wz",
	}
}

func drain(ch <-chan domain.SwapOutcome) []domain.SwapOutcome {
	var out []domain.SwapOutcome
	for o := range ch {
		out = append(out, o)
	}
	return out
}

func TestSwapQuoteThenBuild(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v6/quote":
			if got := r.URL.Query().Get("slippageBps"); got != "100" {
				t.Errorf("slippageBps = %q, want 100", got)
			}
			w.Write([]byte(`{"inputMint":"So11111111111111111111111111111111111111112","outAmount":"123456","routePlan":[]}`))
		case "/v6/swap":
			w.Write([]byte(`{"swapTransaction":"AgEDBHNvbWV0eA==","prioritizationFeeLamports":7500}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	s := NewSwapper(WithBaseURL(srv.URL))

	got := drain(s.Swap(context.Background(), validRequest()))

	if len(got) != 2 {
		t.Fatalf("got %d outcomes, want 2: %+v", len(got), got)
	}
	if got[0].Kind != domain.SwapPending {
		t.Errorf("first outcome = %v, want pending", got[0].Kind)
	}
	if got[1].Kind != domain.SwapSuccess {
		t.Fatalf("terminal outcome = %+v, want success", got[1])
	}
	if got[1].EncodedTx != "AgEDBHNvbWV0eA==" {
		t.Errorf("EncodedTx = %q", got[1].EncodedTx)
	}
	if got[1].FeeLamports != 7500 {
		t.Errorf("FeeLamports = %d, want 7500", got[1].FeeLamports)
	}
}

func TestSwapInvalidWalletNoNetworkCall(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	s := NewSwapper(WithBaseURL(srv.URL))

	req := validRequest()
	req.WalletAddress = "not-a-base58-address-0OIl"

	got := drain(s.Swap(context.Background(), req))

	if calls.Load() != 0 {
		t.Errorf("server saw %d calls, want 0", calls.Load())
	}
	if len(got) != 1 {
		t.Fatalf("got %d outcomes, want 1", len(got))
	}
	if got[0].Kind != domain.SwapFailure || !errors.Is(got[0].Err, domain.ErrValidation) {
		t.Errorf("outcome = %+v, want validation failure", got[0])
	}
}

func TestSwapNoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"Could not find any route"}`))
	}))
	defer srv.Close()

	s := NewSwapper(WithBaseURL(srv.URL))

	got := drain(s.Swap(context.Background(), validRequest()))

	terminal := got[len(got)-1]
	if terminal.Kind != domain.SwapFailure || !errors.Is(terminal.Err, domain.ErrExchange) {
		t.Errorf("terminal outcome = %+v, want exchange failure", terminal)
	}
}

func TestSwapUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewSwapper(WithBaseURL(srv.URL))

	got := drain(s.Swap(context.Background(), validRequest()))

	terminal := got[len(got)-1]
	if terminal.Kind != domain.SwapFailure {
		t.Fatalf("terminal outcome = %+v, want failure", terminal)
	}
	if !errors.Is(terminal.Err, domain.ErrExchange) {
		t.Errorf("err = %v, want ErrExchange", terminal.Err)
	}
}

func TestValidateWalletAddresses(t *testing.T) {
	s := NewSwapper()

	tests := []struct {
		wallet string
		wantOK bool
	}{
		{"4Nd1mYQtrRZTcqmGqWzXZ7koTv9W8dnKKuuYGkBMA3Wz", true},
		{"So11111111111111111111111111111111111111112", true},
		{"", false},
		{"short", false},
		{"0OIl1111111111111111111111111111111111111111", false}, // non-base58 chars
		{"zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", false}, // decodes to 33 bytes
	}

	for _, tt := range tests {
		req := validRequest()
		req.WalletAddress = tt.wallet

		err := s.Validate(req)
		if tt.wantOK && err != nil {
			t.Errorf("Validate(wallet=%q) = %v, want nil", tt.wallet, err)
		}
		if !tt.wantOK && err == nil {
			t.Errorf("Validate(wallet=%q) = nil, want error", tt.wallet)
		}
	}
}
