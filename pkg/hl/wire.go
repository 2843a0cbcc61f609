// Package hl implements the client side of a Hyperliquid-style spot
// venue: order wire construction, slippage pricing, spot metadata
// resolution, action signing, and submission over the REST API.
//
// Field order in the wire structs below is the canonical key order for
// both JSON and msgpack. The venue re-encodes the submitted action and
// compares digests, so the order is part of the protocol, not a style
// choice.
package hl

import (
	"fmt"
)

// Tif is the time-in-force policy for limit orders.
type Tif string

const (
	TifGtc Tif = "Gtc" // good till cancel
	TifIoc Tif = "Ioc" // immediate or cancel
	TifAlo Tif = "Alo" // add liquidity only
)

func (t Tif) valid() bool {
	switch t {
	case TifGtc, TifIoc, TifAlo:
		return true
	}
	return false
}

type LimitOrderType struct {
	Tif Tif `json:"tif" msgpack:"tif"`
}

type MarketOrderType struct{}

// OrderType is a two-variant sum: exactly one of Limit or Market must
// be set. Anything else is rejected before signing.
type OrderType struct {
	Limit  *LimitOrderType  `json:"limit,omitempty" msgpack:"limit,omitempty"`
	Market *MarketOrderType `json:"market,omitempty" msgpack:"market,omitempty"`
}

func Limit(tif Tif) OrderType {
	return OrderType{Limit: &LimitOrderType{Tif: tif}}
}

func Market() OrderType {
	return OrderType{Market: &MarketOrderType{}}
}

func (t OrderType) validate() error {
	switch {
	case t.Limit != nil && t.Market != nil:
		return ErrInvalidOrderType
	case t.Limit != nil:
		if !t.Limit.Tif.valid() {
			return fmt.Errorf("%w: unknown tif %q", ErrInvalidOrderType, t.Limit.Tif)
		}
		return nil
	case t.Market != nil:
		return nil
	default:
		return ErrInvalidOrderType
	}
}

// OrderRequest is a human-entered trade intent. Immutable once handed
// to the wire builder; constructed fresh per submission attempt.
type OrderRequest struct {
	Coin       string
	IsBuy      bool
	Sz         float64
	LimitPx    float64
	ReduceOnly bool
	OrderType  OrderType
}

// OrderWire is the exact shape the venue's action encoder expects:
// single-letter field names, prices and sizes as decimal strings.
type OrderWire struct {
	Asset      int       `json:"a" msgpack:"a"`
	IsBuy      bool      `json:"b" msgpack:"b"`
	LimitPx    string    `json:"p" msgpack:"p"`
	Size       string    `json:"s" msgpack:"s"`
	ReduceOnly bool      `json:"r" msgpack:"r"`
	OrderType  OrderType `json:"t" msgpack:"t"`
}

// OrderRequestToWire maps an OrderRequest onto its wire form. The
// asset id is supplied by the caller (see ResolvePair); price and size
// become strings to eliminate float ambiguity on the wire.
func OrderRequestToWire(req OrderRequest, assetID int) (OrderWire, error) {
	if err := req.OrderType.validate(); err != nil {
		return OrderWire{}, err
	}

	px, err := FloatToWire(req.LimitPx)
	if err != nil {
		return OrderWire{}, fmt.Errorf("limit price: %w", err)
	}
	sz, err := FloatToWire(req.Sz)
	if err != nil {
		return OrderWire{}, fmt.Errorf("size: %w", err)
	}

	return OrderWire{
		Asset:      assetID,
		IsBuy:      req.IsBuy,
		LimitPx:    px,
		Size:       sz,
		ReduceOnly: req.ReduceOnly,
		OrderType:  req.OrderType,
	}, nil
}

// BuilderInfo attaches a fee benefiting a designated builder address.
// The fee is in tenths of a basis point: f=10 means 1 bp. The address
// must be lowercase on the wire.
type BuilderInfo struct {
	Builder string `json:"b" msgpack:"b"`
	Fee     int    `json:"f" msgpack:"f"`
}

// Grouping of orders inside one action.
const GroupingNA = "na"

// OrderAction is the signed unit submitted to /exchange.
type OrderAction struct {
	Type     string       `json:"type" msgpack:"type"`
	Orders   []OrderWire  `json:"orders" msgpack:"orders"`
	Grouping string       `json:"grouping" msgpack:"grouping"`
	Builder  *BuilderInfo `json:"builder,omitempty" msgpack:"builder,omitempty"`
}

func OrdersToAction(orders []OrderWire, builder *BuilderInfo) OrderAction {
	return OrderAction{
		Type:     "order",
		Orders:   orders,
		Grouping: GroupingNA,
		Builder:  builder,
	}
}
