package quote

import "errors"

var (
	// ErrNoQuote means the input amount cannot be quoted (empty, zero,
	// negative or not a number). Callers clear the quote without reporting
	// an error.
	ErrNoQuote = errors.New("no quote for amount")
	// ErrInvalidSlippage is returned for slippage outside [0, 100).
	ErrInvalidSlippage = errors.New("invalid slippage tolerance")
	// ErrSameToken is returned when both sides of a quote are the same token.
	ErrSameToken = errors.New("input and output tokens are the same")
	// ErrQuoteFailed wraps chain read failures.
	ErrQuoteFailed = errors.New("failed to get quote")
	// ErrPoolMissing marks a pair that has not been created yet.
	ErrPoolMissing = errors.New("pool does not exist")
)
