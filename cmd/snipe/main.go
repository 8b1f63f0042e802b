// Package main provides a one-shot swap CLI. It builds a swap on the
// chosen exchange and optionally submits it through the MEV protected
// relay, printing the outcome as it progresses.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"solana-sniper/internal/dex"
	"solana-sniper/internal/dex/jupiter"
	"solana-sniper/internal/dex/raydium"
	"solana-sniper/internal/domain"
	"solana-sniper/internal/relay"
	"solana-sniper/internal/solana"
)

func main() {
	dexName := flag.String("dex", "JUPITER", "Exchange to swap on (RAYDIUM, JUPITER)")
	inputMint := flag.String("input-mint", "So11111111111111111111111111111111111111112", "Input token mint")
	outputMint := flag.String("output-mint", "", "Output token mint")
	amount := flag.Uint64("amount", 0, "Input amount in base units")
	slippage := flag.Float64("slippage", domain.DefaultSlippagePct, "Slippage tolerance in percent")
	wallet := flag.String("wallet", os.Getenv("SNIPER_WALLET_ADDRESS"), "Wallet public key")
	submit := flag.Bool("submit", false, "Submit the built transaction through the relay")
	jitoURL := flag.String("jito-url", relay.DefaultJitoURL, "Jito block engine endpoint")
	rpcURL := flag.String("rpc-url", "", "Solana RPC endpoint for the bundle blockhash hint (optional)")
	feeMultiplier := flag.Float64("fee-multiplier", relay.DefaultFeeMultiplier, "Priority fee multiplier for relay submission")
	timeout := flag.Duration("timeout", 2*time.Minute, "Overall operation timeout")

	flag.Parse()

	logger := log.New(os.Stderr, "[snipe] ", log.LstdFlags)

	if *outputMint == "" {
		logger.Fatal("--output-mint is required")
	}
	if *amount == 0 {
		logger.Fatal("--amount is required")
	}
	if *wallet == "" {
		logger.Fatal("--wallet or SNIPER_WALLET_ADDRESS is required")
	}

	dexType, err := domain.ParseDexType(*dexName)
	if err != nil {
		logger.Fatalf("Parse dex: %v", err)
	}

	registry, err := dex.NewRegistry(jupiter.NewSwapper(), raydium.NewSwapper())
	if err != nil {
		logger.Fatalf("Create dex registry: %v", err)
	}
	swapper, err := registry.ForDex(dexType)
	if err != nil {
		logger.Fatalf("Select dex: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Println("Interrupted, canceling...")
		cancel()
	}()

	req := &domain.SwapRequest{
		InputMint:     *inputMint,
		OutputMint:    *outputMint,
		Amount:        *amount,
		SlippagePct:   *slippage,
		WalletAddress: *wallet,
	}

	var terminal domain.SwapOutcome
	for outcome := range swapper.Swap(ctx, req) {
		switch outcome.Kind {
		case domain.SwapPending:
			logger.Printf("Swap pending on %s...", dexType)
		default:
			terminal = outcome
		}
	}

	if terminal.Kind != domain.SwapSuccess {
		logger.Fatalf("Swap failed: %v", terminal.Err)
	}
	logger.Printf("Swap built: fee %d lamports, tx %d bytes base64",
		terminal.FeeLamports, len(terminal.EncodedTx))

	if !*submit {
		os.Stdout.WriteString(terminal.EncodedTx + "\n")
		return
	}

	jito := relay.NewJitoClient(relay.WithEndpoint(*jitoURL))
	protectorOpts := []relay.ProtectorOption{}
	if *rpcURL != "" {
		rpc := solana.NewHTTPClient(*rpcURL)
		protectorOpts = append(protectorOpts, relay.WithBlockhashFunc(rpc.GetLatestBlockhash))
	}
	protector := relay.NewProtector(jito, logger, protectorOpts...)
	if err := protector.SetMultiplier(*feeMultiplier); err != nil {
		logger.Fatalf("Set fee multiplier: %v", err)
	}

	sub, err := protector.Submit(ctx, terminal.EncodedTx, terminal.FeeLamports)
	if err != nil {
		logger.Fatalf("Relay submission failed: %v", err)
	}
	logger.Printf("Bundle %s submitted, status %s, fee %d lamports",
		sub.BundleID, sub.Status, sub.FeeLamports)
}
