package pricing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"solana-sniper/internal/domain"
)

func TestCurrentPrice(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-API-KEY")
		w.Write([]byte(`{"success":true,"data":{"value":1.23,"v24hUSD":100000,"liquidity":50000,"updateUnixTime":1700000000}}`))
	}))
	defer srv.Close()

	c := NewClient("test-key", WithBaseURL(srv.URL))

	snap, err := c.CurrentPrice(context.Background(), "TokenMint111")
	if err != nil {
		t.Fatalf("CurrentPrice: %v", err)
	}
	if gotPath != "/public/price" {
		t.Errorf("path = %q, want /public/price", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("X-API-KEY = %q, want test-key", gotKey)
	}
	if snap.Price != 1.23 {
		t.Errorf("Price = %v, want 1.23", snap.Price)
	}
	if snap.TokenAddress != "TokenMint111" {
		t.Errorf("TokenAddress = %q", snap.TokenAddress)
	}
	if snap.ObservedAt.Unix() != 1700000000 {
		t.Errorf("ObservedAt = %v, want unix 1700000000", snap.ObservedAt)
	}
}

func TestCurrentPriceEmptyAddress(t *testing.T) {
	c := NewClient("")
	_, err := c.CurrentPrice(context.Background(), "")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestCurrentPriceUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))

	_, err := c.CurrentPrice(context.Background(), "TokenMint111")
	if !errors.Is(err, domain.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
}

func TestCurrentPriceUnsuccessful(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":false}`))
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))

	_, err := c.CurrentPrice(context.Background(), "TokenMint111")
	if !errors.Is(err, domain.ErrExchange) {
		t.Fatalf("err = %v, want ErrExchange", err)
	}
}

func TestNewPools(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("sortBy"); got != "created" {
			t.Errorf("sortBy = %q, want created", got)
		}
		w.Write([]byte(`{"success":true,"data":{"items":[
			{"address":"Pool1","mint":"Mint1","name":"FOO/SOL","symbol":"FOO","liquidity":1000,"price":0.5,"v24hUSD":200,"createdUnixTime":1700000000,"source":"raydium"},
			{"address":"Pool2","mint":"Mint2","name":"BAR/SOL","symbol":"BAR","liquidity":2000,"price":1.5,"v24hUSD":400,"createdUnixTime":1700000100,"source":"orca"}
		]}}`))
	}))
	defer srv.Close()

	c := NewClient("", WithBaseURL(srv.URL))

	pools, err := c.NewPools(context.Background(), 10)
	if err != nil {
		t.Fatalf("NewPools: %v", err)
	}
	if len(pools) != 2 {
		t.Fatalf("got %d pools, want 2", len(pools))
	}
	if pools[0].PoolAddress != "Pool1" || pools[0].Dex != "raydium" {
		t.Errorf("pools[0] = %+v", pools[0])
	}
	if pools[1].LiquidityUSD != 2000 {
		t.Errorf("pools[1].LiquidityUSD = %v, want 2000", pools[1].LiquidityUSD)
	}
}
