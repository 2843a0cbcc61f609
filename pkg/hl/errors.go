package hl

import "errors"

// Validation errors are raised before any network or signing call and
// are always recoverable by correcting user input.
var (
	ErrSigningRequired  = errors.New("signing required: connect a wallet before submitting")
	ErrInvalidOrderType = errors.New("order type must be exactly one of limit or market")
	ErrInvalidMidPrice  = errors.New("mid price must be greater than 0")
	ErrSlippageRange    = errors.New("slippage must be between 0 and 100%")
	ErrAmountRequired   = errors.New("amount must be greater than 0")
	ErrSizeTooSmall     = errors.New("order size below minimum tradable size")
	ErrWirePrecision    = errors.New("value cannot be represented on the wire without rounding")
)
