package hl

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/signer/core/apitypes"
	"go.uber.org/zap"

	"github.com/hypespot/hypespot/params"
	"github.com/hypespot/hypespot/pkg/crypto"
	"github.com/hypespot/hypespot/pkg/util"
)

// Exchange drives the full order pipeline: pair resolution, pricing,
// wire construction, signing, and submission. Construct once and share;
// all mutable state is behind the nonce counter and the meta cache.
type Exchange struct {
	client *Client
	signer crypto.TypedDataSigner
	cfg    params.Config
	log    *zap.Logger
	clock  util.Clock

	prevNonce atomic.Int64

	metaMu sync.Mutex
	meta   *SpotMeta
}

func NewExchange(client *Client, signer crypto.TypedDataSigner, cfg params.Config, log *zap.Logger) *Exchange {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exchange{
		client: client,
		signer: signer,
		cfg:    cfg,
		log:    log,
		clock:  util.RealClock{},
	}
}

// nextNonce returns a strictly increasing millisecond timestamp. When
// the wall clock has not advanced past the previous nonce (burst
// submissions, clock skew) the counter steps forward by one instead.
func (e *Exchange) nextNonce() uint64 {
	for {
		prev := e.prevNonce.Load()
		curr := e.clock.Now().UnixMilli()
		if curr <= prev {
			curr = prev + 1
		}
		if e.prevNonce.CompareAndSwap(prev, curr) {
			return uint64(curr)
		}
	}
}

// Meta returns spot metadata, fetching it on first use. Metadata
// changes only on venue listings, so one fetch per process is enough;
// call RefreshMeta to force a reload.
func (e *Exchange) Meta(ctx context.Context) (*SpotMeta, error) {
	e.metaMu.Lock()
	defer e.metaMu.Unlock()
	if e.meta != nil {
		return e.meta, nil
	}
	meta, err := e.client.SpotMeta(ctx)
	if err != nil {
		return nil, err
	}
	e.meta = meta
	return meta, nil
}

func (e *Exchange) RefreshMeta(ctx context.Context) (*SpotMeta, error) {
	meta, err := e.client.SpotMeta(ctx)
	if err != nil {
		return nil, err
	}
	e.metaMu.Lock()
	e.meta = meta
	e.metaMu.Unlock()
	return meta, nil
}

// ResolveAssetID maps a token pair to its tradable spot asset id.
func (e *Exchange) ResolveAssetID(ctx context.Context, baseToken, quoteToken string) (int, error) {
	meta, err := e.Meta(ctx)
	if err != nil {
		return 0, err
	}
	pairIndex := meta.ResolvePair(baseToken, quoteToken)
	if pairIndex == PairNotFound {
		return 0, fmt.Errorf("trading pair %s not found", PairName(baseToken, quoteToken))
	}
	return SpotAssetID(pairIndex), nil
}

// builderInfo returns the configured builder fee attachment, or nil
// when no builder address is configured.
func (e *Exchange) builderInfo() *BuilderInfo {
	if e.cfg.Builder.Address == "" {
		return nil
	}
	return &BuilderInfo{
		Builder: strings.ToLower(e.cfg.Builder.Address),
		Fee:     e.cfg.Builder.FeeTenthsBps,
	}
}

// SubmitOrder signs and submits a single order on the given spot pair.
// Per-order venue rejections come back as OrderStatus values with the
// Error field set; the returned error covers pipeline failures only.
func (e *Exchange) SubmitOrder(ctx context.Context, baseToken, quoteToken string, req OrderRequest) ([]OrderStatus, error) {
	if e.signer == nil {
		return nil, ErrSigningRequired
	}

	assetID, err := e.ResolveAssetID(ctx, baseToken, quoteToken)
	if err != nil {
		return nil, err
	}

	wire, err := OrderRequestToWire(req, assetID)
	if err != nil {
		return nil, err
	}
	return e.submitWire(ctx, baseToken, quoteToken, wire)
}

// submitWire signs and submits an already-built order wire.
func (e *Exchange) submitWire(ctx context.Context, baseToken, quoteToken string, wire OrderWire) ([]OrderStatus, error) {
	action := OrdersToAction([]OrderWire{wire}, e.builderInfo())
	nonce := e.nextNonce()

	sig, err := crypto.SignL1Action(e.signer, action, nil, nonce, e.cfg.Venue.Mainnet)
	if err != nil {
		return nil, fmt.Errorf("failed to sign order: %w", err)
	}

	e.log.Info("submitting order",
		zap.String("pair", PairName(baseToken, quoteToken)),
		zap.Int("asset", wire.Asset),
		zap.Bool("is_buy", wire.IsBuy),
		zap.String("price", wire.LimitPx),
		zap.String("size", wire.Size),
		zap.Uint64("nonce", nonce))

	resp, err := e.client.Exchange(ctx, ExchangeRequest{
		Action:    action,
		Nonce:     nonce,
		Signature: sig,
	})
	if err != nil {
		return nil, err
	}
	return resp.Response.Data.Statuses, nil
}

// MarketOrderFromQuote builds a market order from a quote-denominated
// amount: buys spend the amount, sells treat it as base size. The
// price embeds the slippage tolerance so the IOC-style market wire
// cannot fill beyond it. slippage 0 selects the configured default;
// negatives are rejected.
func (e *Exchange) MarketOrderFromQuote(ctx context.Context, baseToken, quoteToken string, isBuy bool, amount, mid, slippage float64) ([]OrderStatus, error) {
	if e.signer == nil {
		return nil, ErrSigningRequired
	}
	if amount <= 0 {
		return nil, ErrAmountRequired
	}
	if mid <= 0 {
		return nil, ErrInvalidMidPrice
	}
	if slippage == 0 {
		slippage = e.cfg.Trading.DefaultSlippage
	}
	if slippage < 0 || slippage > 1 {
		return nil, ErrSlippageRange
	}

	meta, err := e.Meta(ctx)
	if err != nil {
		return nil, err
	}
	base, ok := meta.TokenBySymbol(baseToken)
	if !ok {
		return nil, fmt.Errorf("trading pair %s not found", PairName(baseToken, quoteToken))
	}

	size := amount
	if isBuy {
		size = amount / mid
	}
	if size < e.cfg.Trading.MinOrderSize {
		return nil, fmt.Errorf("%w: %g below minimum %g %s",
			ErrSizeTooSmall, size, e.cfg.Trading.MinOrderSize, strings.ToUpper(baseToken))
	}

	size = SizeToPrecision(size, base.SzDecimals)
	if size <= 0 {
		return nil, fmt.Errorf("%w: rounds to zero at %d decimals", ErrSizeTooSmall, base.SzDecimals)
	}

	price, err := SlippagePrice(mid, isBuy, slippage, true)
	if err != nil {
		return nil, err
	}
	// The pricer emits fixed tick decimals; the wire wants the
	// normalized form without trailing zeros.
	px, err := strconv.ParseFloat(price, 64)
	if err != nil {
		return nil, fmt.Errorf("slippage price: %w", err)
	}
	priceWire, err := FloatToWire(px)
	if err != nil {
		return nil, err
	}
	sizeWire, err := FloatToWire(size)
	if err != nil {
		return nil, err
	}

	assetID, err := e.ResolveAssetID(ctx, baseToken, quoteToken)
	if err != nil {
		return nil, err
	}

	return e.submitWire(ctx, baseToken, quoteToken, OrderWire{
		Asset:     assetID,
		IsBuy:     isBuy,
		LimitPx:   priceWire,
		Size:      sizeWire,
		OrderType: Market(),
	})
}

// ApproveBuilderFee signs and submits approval for the configured
// builder at the configured max fee rate.
func (e *Exchange) ApproveBuilderFee(ctx context.Context) error {
	if e.signer == nil {
		return ErrSigningRequired
	}
	if e.cfg.Builder.Address == "" {
		return fmt.Errorf("no builder address configured")
	}

	nonce := e.nextNonce()
	action := NewApproveBuilderFeeAction(
		e.cfg.Builder.Address, e.cfg.Builder.FeeTenthsBps,
		nonce, e.cfg.Trading.SignatureChainID, e.cfg.Venue.Mainnet)

	return e.submitUserSigned(ctx, action.PrimaryType(), action.TypedDataFields(), action.TypedDataMessage(), action, nonce)
}

// ApproveAgent registers an agent key authorized to sign L1 actions on
// the user's behalf.
func (e *Exchange) ApproveAgent(ctx context.Context, agentAddress, agentName string) error {
	if e.signer == nil {
		return ErrSigningRequired
	}

	nonce := e.nextNonce()
	action := NewApproveAgentAction(
		agentAddress, agentName,
		nonce, e.cfg.Trading.SignatureChainID, e.cfg.Venue.Mainnet)

	return e.submitUserSigned(ctx, action.PrimaryType(), action.TypedDataFields(), action.TypedDataMessage(), action, nonce)
}

// BuilderFeeApproved reports the user's current approved max builder
// fee in tenths of a basis point.
func (e *Exchange) BuilderFeeApproved(ctx context.Context) (int, error) {
	if e.signer == nil {
		return 0, ErrSigningRequired
	}
	return e.client.BuilderFee(ctx, strings.ToLower(e.signer.Address().Hex()))
}

func (e *Exchange) submitUserSigned(ctx context.Context, primaryType string, fields []apitypes.Type, message apitypes.TypedDataMessage, action any, nonce uint64) error {
	data := crypto.UserSignedTypedData(primaryType, fields, message, e.cfg.Trading.SignatureChainID)
	sig, err := crypto.SignUserAction(e.signer, data)
	if err != nil {
		return fmt.Errorf("failed to sign %s: %w", primaryType, err)
	}

	e.log.Info("submitting user-signed action",
		zap.String("type", primaryType),
		zap.Uint64("nonce", nonce))

	_, err = e.client.Exchange(ctx, ExchangeRequest{
		Action:    action,
		Nonce:     nonce,
		Signature: sig,
	})
	return err
}
