package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"solana-sniper/internal/domain"
	"solana-sniper/internal/observability"
	"solana-sniper/internal/storage"
	"solana-sniper/internal/wallet"
)

func (s *Server) registerRoutes() {
	if s.app == nil {
		return
	}
	e := s.app

	e.GET("/health", s.handleHealth)

	e.GET("/configs", s.handleListConfigs)
	e.GET("/configs/:id", s.handleGetConfig)
	e.POST("/configs", s.handleUpsertConfig)
	e.POST("/configs/:id/deactivate", s.handleDeactivateConfig)
	e.DELETE("/configs/:id", s.handleDeleteConfig)

	e.POST("/swap", s.handleSwap)

	e.GET("/transactions", s.handleListTransactions)
	e.GET("/transactions/:id", s.handleGetTransaction)

	e.GET("/pools", s.handleListPools)
	e.POST("/pools/:address/track", s.handleTrackPool)

	e.GET("/wallet", s.handleWallet)
	e.GET("/price/:token", s.handlePrice)

	e.GET("/relay/multiplier", s.handleGetMultiplier)
	e.POST("/relay/multiplier", s.handleSetMultiplier)
}

// httpError maps domain and storage errors onto HTTP status codes.
func httpError(err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, domain.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not_found")
	case errors.Is(err, domain.ErrValidation), errors.Is(err, storage.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrRelayRejected):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	case errors.Is(err, domain.ErrNetwork), errors.Is(err, domain.ErrExchange):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal_error")
	}
}

func (s *Server) handleHealth(c echo.Context) error {
	resp := map[string]any{"ok": true}
	if s.opts.RPC != nil {
		if err := s.opts.RPC.GetHealth(c.Request().Context()); err != nil {
			resp["rpc"] = "unhealthy"
		} else {
			resp["rpc"] = "ok"
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListConfigs(c echo.Context) error {
	configs, err := s.opts.Configs.ListActive(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, configs)
}

func (s *Server) handleGetConfig(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be an integer")
	}
	cfg, err := s.opts.Configs.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cfg)
}

// configPayload is the create/update request body.
type configPayload struct {
	ID            int64    `json:"id"`
	TokenAddress  string   `json:"token_address"`
	BuyPrice      float64  `json:"buy_price"`
	StopLossPct   float64  `json:"stop_loss_pct"`
	TakeProfitPct *float64 `json:"take_profit_pct"`
	Dex           string   `json:"dex"`
	Amount        float64  `json:"amount"`
	SlippagePct   float64  `json:"slippage_pct"`
}

func (s *Server) handleUpsertConfig(c echo.Context) error {
	var payload configPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	dexType, err := domain.ParseDexType(payload.Dex)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !wallet.ValidAddress(payload.TokenAddress) {
		return echo.NewHTTPError(http.StatusBadRequest, "token_address is not a valid Solana address")
	}

	cfg := &domain.SnipeConfig{
		ID:            payload.ID,
		TokenAddress:  payload.TokenAddress,
		BuyPrice:      payload.BuyPrice,
		StopLossPct:   payload.StopLossPct,
		TakeProfitPct: payload.TakeProfitPct,
		Dex:           dexType,
		Amount:        payload.Amount,
		SlippagePct:   payload.SlippagePct,
		Active:        true,
	}

	if err := s.opts.Configs.Upsert(c.Request().Context(), cfg); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, cfg)
}

func (s *Server) handleDeactivateConfig(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be an integer")
	}
	if err := s.opts.Configs.Deactivate(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleDeleteConfig(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id must be an integer")
	}
	if err := s.opts.Configs.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// swapPayload is the manual swap request body.
type swapPayload struct {
	Dex         string  `json:"dex"`
	InputMint   string  `json:"input_mint"`
	OutputMint  string  `json:"output_mint"`
	Amount      uint64  `json:"amount"`
	SlippagePct float64 `json:"slippage_pct"`
	// Wallet overrides the daemon wallet when set.
	Wallet string `json:"wallet"`
}

func (s *Server) handleSwap(c echo.Context) error {
	var payload swapPayload
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	dexType, err := domain.ParseDexType(payload.Dex)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	swapper, err := s.opts.Swappers.ForDex(dexType)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	walletAddr := payload.Wallet
	if walletAddr == "" {
		walletAddr = s.opts.WalletAddress
	}
	slippage := payload.SlippagePct
	if slippage == 0 {
		slippage = domain.DefaultSlippagePct
	}

	req := &domain.SwapRequest{
		InputMint:     payload.InputMint,
		OutputMint:    payload.OutputMint,
		Amount:        payload.Amount,
		SlippagePct:   slippage,
		WalletAddress: walletAddr,
	}

	ctx := c.Request().Context()
	start := time.Now()

	var terminal domain.SwapOutcome
	for outcome := range swapper.Swap(ctx, req) {
		if outcome.Terminal() {
			terminal = outcome
		}
	}

	if terminal.Kind == domain.SwapFailure {
		observability.RecordSwap(string(dexType), "failure", time.Since(start))
		return httpError(terminal.Err)
	}
	observability.RecordSwap(string(dexType), "success", time.Since(start))
	observability.RecordSwapFee(terminal.FeeLamports)

	record := domain.NewSwapTransaction(walletAddr, walletAddr, payload.OutputMint,
		dexType, float64(payload.Amount), terminal.FeeLamports, terminal.EncodedTx)
	if err := s.opts.Transactions.Insert(ctx, record); err != nil {
		s.opts.Logger.Printf("[api] record swap transaction: %v", err)
	}

	resp := map[string]any{
		"transaction_id": record.ID,
		"fee_lamports":   terminal.FeeLamports,
	}

	if s.opts.Protector != nil {
		sub, err := s.opts.Protector.Submit(ctx, terminal.EncodedTx, terminal.FeeLamports)
		status := domain.TxStatusFailed
		errText := ""
		if err != nil {
			errText = err.Error()
		} else {
			status = sub.Status
		}
		if sub != nil {
			resp["bundle_id"] = sub.BundleID
			resp["fee_lamports"] = sub.FeeLamports
		}
		resp["status"] = status

		if uerr := s.opts.Transactions.UpdateStatus(ctx, record.ID, status, "", errText); uerr != nil {
			s.opts.Logger.Printf("[api] update swap transaction %s: %v", record.ID, uerr)
		}
		if err != nil {
			return httpError(err)
		}
	} else {
		resp["status"] = domain.TxStatusPending
		resp["encoded_tx"] = terminal.EncodedTx
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListTransactions(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		limit = n
	}

	txs, err := s.opts.Transactions.List(c.Request().Context(), limit)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, txs)
}

func (s *Server) handleGetTransaction(c echo.Context) error {
	tx, err := s.opts.Transactions.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, tx)
}

// poolRefreshLimit caps how many new pools one listing pulls from the feed.
const poolRefreshLimit = 50

func (s *Server) handleListPools(c echo.Context) error {
	ctx := c.Request().Context()

	// Refresh the cache from the feed first; a feed failure falls back
	// to whatever is already cached.
	if s.opts.PoolFeed != nil {
		fresh, err := s.opts.PoolFeed.NewPools(ctx, poolRefreshLimit)
		if err != nil {
			s.opts.Logger.Printf("[api] refresh pools from feed: %v", err)
		} else if len(fresh) > 0 {
			if err := s.opts.Pools.UpsertBulk(ctx, fresh); err != nil {
				s.opts.Logger.Printf("[api] cache %d pools: %v", len(fresh), err)
			}
		}
	}

	pools, err := s.opts.Pools.List(ctx)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, pools)
}

func (s *Server) handleTrackPool(c echo.Context) error {
	var payload struct {
		Tracked bool `json:"tracked"`
	}
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := s.opts.Pools.SetTracked(c.Request().Context(), c.Param("address"), payload.Tracked); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleWallet(c echo.Context) error {
	state := wallet.Disconnected
	switch {
	case s.opts.Wallet != nil:
		state = s.opts.Wallet.Load()
	case s.opts.WalletAddress != "":
		state = wallet.State{Connected: true, Address: s.opts.WalletAddress}
	}
	if !state.Connected {
		return c.JSON(http.StatusOK, map[string]any{"connected": false})
	}

	resp := map[string]any{
		"connected":   true,
		"address":     state.Address,
		"balance_sol": state.Balance,
	}
	if s.opts.RPC != nil {
		balance, err := s.opts.RPC.GetBalance(c.Request().Context(), state.Address)
		if err != nil {
			s.opts.Logger.Printf("[api] wallet balance: %v", err)
		} else {
			state.Balance = float64(balance) / wallet.LamportsPerSOL
			resp["balance_lamports"] = balance
			resp["balance_sol"] = state.Balance
			if s.opts.Wallet != nil {
				s.opts.Wallet.Set(state)
			}
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handlePrice(c echo.Context) error {
	snap, stale, err := s.opts.Prices.CurrentPrice(c.Request().Context(), c.Param("token"))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"token_address": snap.TokenAddress,
		"price":         snap.Price,
		"observed_at":   snap.ObservedAt,
		"stale":         stale,
	})
}

func (s *Server) handleGetMultiplier(c echo.Context) error {
	if s.opts.Protector == nil {
		return echo.NewHTTPError(http.StatusNotFound, "relay disabled")
	}
	return c.JSON(http.StatusOK, map[string]any{"multiplier": s.opts.Protector.Multiplier()})
}

func (s *Server) handleSetMultiplier(c echo.Context) error {
	if s.opts.Protector == nil {
		return echo.NewHTTPError(http.StatusNotFound, "relay disabled")
	}
	var payload struct {
		Multiplier float64 `json:"multiplier"`
	}
	if err := c.Bind(&payload); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if err := s.opts.Protector.SetMultiplier(payload.Multiplier); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, map[string]any{"multiplier": s.opts.Protector.Multiplier()})
}
