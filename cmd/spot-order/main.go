package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/hypespot/hypespot/params"
	"github.com/hypespot/hypespot/pkg/crypto"
	"github.com/hypespot/hypespot/pkg/hl"
	"github.com/hypespot/hypespot/pkg/util"
)

func main() {
	var (
		configPath = flag.String("config", "hypespot.yaml", "config file path")
		asset      = flag.Int("asset", 10000, "spot asset id (dry-run only)")
		base       = flag.String("base", "HYPE", "base token symbol")
		quote      = flag.String("quote", "USDC", "quote token symbol")
		isBuy      = flag.Bool("buy", true, "buy side")
		price      = flag.Float64("price", 0, "limit price (0 means market order)")
		size       = flag.Float64("size", 0, "order size in base units")
		amount     = flag.Float64("amount", 0, "quote amount for market orders")
		mid        = flag.Float64("mid", 0, "mid price for slippage pricing")
		slippage   = flag.Float64("slippage", 0, "slippage tolerance, 0 uses the configured default")
		submit     = flag.Bool("submit", false, "submit to the venue instead of printing the signed bundle")
	)
	flag.Parse()

	cfg, err := params.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg = params.LoadFromEnv(cfg, "")

	// Step 1: load or generate the signing key
	var signer *crypto.Signer
	if key := os.Getenv("HYPESPOT_PRIVATE_KEY"); key != "" {
		signer, err = crypto.FromPrivateKeyHex(key)
		if err != nil {
			log.Fatalf("key: %v", err)
		}
		fmt.Printf("Address: %s\n\n", signer.Address().Hex())
	} else {
		fmt.Println("HYPESPOT_PRIVATE_KEY not set, generating a throwaway keypair...")
		signer, err = crypto.GenerateKey()
		if err != nil {
			log.Fatalf("keygen: %v", err)
		}
		fmt.Printf("Address: %s\n", signer.Address().Hex())
		fmt.Printf("Private Key: %s (KEEP SECRET!)\n\n", signer.PrivateKeyHex())
	}

	if *submit {
		submitOrder(cfg, signer, *base, *quote, *isBuy, *price, *size, *amount, *mid, *slippage)
		return
	}
	dryRun(cfg, signer, *asset, *isBuy, *price, *size)
}

// dryRun builds, signs, and verifies an order bundle locally without
// touching the network.
func dryRun(cfg params.Config, signer *crypto.Signer, asset int, isBuy bool, price, size float64) {
	orderType := hl.Market()
	if price > 0 {
		orderType = hl.Limit(hl.TifGtc)
	}

	wire, err := hl.OrderRequestToWire(hl.OrderRequest{
		IsBuy:     isBuy,
		Sz:        size,
		LimitPx:   price,
		OrderType: orderType,
	}, asset)
	if err != nil {
		log.Fatalf("wire: %v", err)
	}

	action := hl.OrdersToAction([]hl.OrderWire{wire}, nil)
	nonce := uint64(time.Now().UnixMilli())

	sig, err := crypto.SignL1Action(signer, action, nil, nonce, cfg.Venue.Mainnet)
	if err != nil {
		log.Fatalf("sign: %v", err)
	}

	bundle := hl.ExchangeRequest{
		Action:    action,
		Nonce:     nonce,
		Signature: sig,
	}
	out, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		log.Fatalf("marshal: %v", err)
	}

	fmt.Println("Signed exchange request:")
	fmt.Println(string(out))
	fmt.Println()

	// Verify by recovering the signer from the phantom agent digest.
	connectionID, err := crypto.ActionHash(action, nil, nonce)
	if err != nil {
		log.Fatalf("hash: %v", err)
	}
	source := crypto.SourceTestnet
	if cfg.Venue.Mainnet {
		source = crypto.SourceMainnet
	}
	typed := crypto.AgentTypedData(source, connectionID)
	digest, err := crypto.TypedDataHash(typed)
	if err != nil {
		log.Fatalf("digest: %v", err)
	}

	raw := make([]byte, 65)
	copy(raw[:32], hexutil.MustDecode(sig.R))
	copy(raw[32:64], hexutil.MustDecode(sig.S))
	raw[64] = sig.V
	recovered, err := crypto.RecoverAddress(digest, raw)
	if err != nil {
		log.Fatalf("recover: %v", err)
	}

	if recovered != signer.Address() {
		fmt.Println("✗ Signature INVALID")
		os.Exit(1)
	}
	fmt.Println("✓ Signature VALID")
	fmt.Printf("  Signer: %s\n", recovered.Hex())
	fmt.Println()
	fmt.Println("To submit, rerun with -submit (requires network access):")
	fmt.Printf("  POST %s/exchange\n", cfg.Venue.APIURL)
}

func submitOrder(cfg params.Config, signer *crypto.Signer, base, quote string, isBuy bool, price, size, amount, mid, slippage float64) {
	logger, err := util.NewLogger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	client := hl.NewClient(cfg.Venue.APIURL, logger)
	exchange := hl.NewExchange(client, signer, cfg, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var statuses []hl.OrderStatus
	if price > 0 {
		statuses, err = exchange.SubmitOrder(ctx, base, quote, hl.OrderRequest{
			IsBuy:     isBuy,
			Sz:        size,
			LimitPx:   price,
			OrderType: hl.Limit(hl.TifGtc),
		})
	} else {
		statuses, err = exchange.MarketOrderFromQuote(ctx, base, quote, isBuy, amount, mid, slippage)
	}
	if err != nil {
		log.Fatalf("submit: %v", err)
	}

	for i, st := range statuses {
		switch {
		case st.Filled != nil:
			fmt.Printf("order %d filled: oid=%d size=%s avg=%s\n", i, st.Filled.Oid, st.Filled.TotalSz, st.Filled.AvgPx)
		case st.Resting != nil:
			fmt.Printf("order %d resting: oid=%d\n", i, st.Resting.Oid)
		case st.Error != "":
			fmt.Printf("order %d rejected: %s\n", i, st.Error)
		}
	}
}
