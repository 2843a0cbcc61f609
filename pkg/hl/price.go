package hl

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// DefaultSlippage is applied to market orders submitted without an
// explicit tolerance (1%).
const DefaultSlippage = 0.01

// FloatToWire renders a price or size as the decimal string the venue
// expects: at most 8 decimal places, no trailing zeros, no scientific
// notation. A value that would lose precision at 8 places is rejected
// rather than silently rounded, since the signed bytes must match what
// the user intended.
func FloatToWire(x float64) (string, error) {
	d := decimal.NewFromFloat(x)
	rounded := d.Round(8)
	if d.Sub(rounded).Abs().GreaterThanOrEqual(decimal.New(1, -12)) {
		return "", fmt.Errorf("%w: %v", ErrWirePrecision, x)
	}
	s := rounded.String()
	if s == "-0" {
		s = "0"
	}
	return s, nil
}

// SlippagePrice computes the limit price for a market order: adjust
// the mid by the slippage tolerance in the taker's direction, round to
// 5 significant figures, then fix the decimal places the venue's tick
// rules allow (8 for spot, 6 for perps). Both rounding stages are
// required, in this order; the venue rejects excess precision.
func SlippagePrice(mid float64, isBuy bool, slippage float64, isSpot bool) (string, error) {
	if mid <= 0 {
		return "", ErrInvalidMidPrice
	}
	if slippage < 0 || slippage > 1 {
		return "", ErrSlippageRange
	}

	adjusted := mid * (1 - slippage)
	if isBuy {
		adjusted = mid * (1 + slippage)
	}

	rounded := roundToSigFigs(adjusted, 5)

	decimals := 6
	if isSpot {
		decimals = 8
	}
	return strconv.FormatFloat(rounded, 'f', decimals, 64), nil
}

func roundToSigFigs(x float64, figs int) float64 {
	if x == 0 {
		return 0
	}
	magnitude := math.Ceil(math.Log10(math.Abs(x)))
	scale := math.Pow(10, float64(figs)-magnitude)
	return math.Round(x*scale) / scale
}

// SizeToPrecision truncates a size down to the token's szDecimals.
// Floor, not round: rounding up could exceed the user's balance.
func SizeToPrecision(sz float64, szDecimals int) float64 {
	f, _ := decimal.NewFromFloat(sz).RoundDown(int32(szDecimals)).Float64()
	return f
}
