package handler

import "github.com/gofiber/fiber/v3"

// ErrInvalidQueryParameters indicates that the request query string could not
// be parsed into the expected structure.
var ErrInvalidQueryParameters = fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")

// ErrInvalidBody indicates that the request body is not the expected JSON.
var ErrInvalidBody = fiber.NewError(fiber.StatusBadRequest, "invalid request body")

// ErrTokenRequired is returned when a token symbol parameter is missing.
var ErrTokenRequired = fiber.NewError(fiber.StatusBadRequest, "both tokens are required")

// ErrSameTokenBadRequest maps a same-token validation failure to a 400 error.
var ErrSameTokenBadRequest = fiber.NewError(fiber.StatusBadRequest, "tokens cannot be the same")

// ErrMissingAmounts is returned when a liquidity request lacks an amount.
var ErrMissingAmounts = fiber.NewError(fiber.StatusBadRequest, "Please enter both token amounts")

// ErrTransactionPending is returned while another transaction is in flight.
var ErrTransactionPending = fiber.NewError(fiber.StatusConflict, "a transaction is already pending")

// ErrPoolMissing is returned for a swap against a pair that does not exist.
var ErrPoolMissing = fiber.NewError(fiber.StatusConflict, "liquidity pool does not exist, create it first")

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = fiber.NewError(fiber.StatusNotFound, "session not found")

// ErrTooManySessions is returned when the session cap is reached.
var ErrTooManySessions = fiber.NewError(fiber.StatusTooManyRequests, "too many open sessions")

// ErrSessionClosed is returned for a session that is being released.
var ErrSessionClosed = fiber.NewError(fiber.StatusGone, "session is closed")

// ErrSigningDisabled is returned for write endpoints when no key is configured.
var ErrSigningDisabled = fiber.NewError(fiber.StatusServiceUnavailable, "transaction signing is not configured")

// ErrQuoteFailedUpstream signals a failed chain read.
var ErrQuoteFailedUpstream = fiber.NewError(fiber.StatusBadGateway, "failed to get quote")

// ErrInternal signals a generic server-side error.
var ErrInternal = fiber.NewError(fiber.StatusInternalServerError, "internal error")

// NewInvalidAmount wraps an amount parsing error into a 400 Bad Request with
// a descriptive message.
func NewInvalidAmount(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid amount: "+err.Error())
}

// NewAddressRequired returns a 400 Bad Request for a missing address field.
func NewAddressRequired(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, field+" address is required")
}

// NewInvalidAddress returns a 400 Bad Request for an invalid address format.
func NewInvalidAddress(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid "+field+" address")
}
