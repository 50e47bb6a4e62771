// Package handler defines HTTP request handlers and related utilities.
package handler

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/dimmy-bit/MONOSWAP/internal/chain"
	"github.com/dimmy-bit/MONOSWAP/internal/quote"
	"github.com/dimmy-bit/MONOSWAP/internal/service"
	"github.com/dimmy-bit/MONOSWAP/internal/session"
	"github.com/dimmy-bit/MONOSWAP/internal/token"
	"github.com/dimmy-bit/MONOSWAP/internal/units"
	"github.com/dimmy-bit/MONOSWAP/internal/view"
)

// BaseHandler provides common dependencies for HTTP handlers.
type BaseHandler struct {
	logger *slog.Logger
}

// handleServiceError maps a service or chain error to an HTTP error.
func (h *BaseHandler) handleServiceError(err error) error {
	var fe *fiber.Error
	var balanceErr *service.InsufficientBalanceError
	switch {
	case errors.As(err, &fe):
		return fe
	case errors.Is(err, token.ErrUnknownToken):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, quote.ErrNoQuote),
		errors.Is(err, units.ErrEmptyAmount),
		errors.Is(err, units.ErrInvalidAmount),
		errors.Is(err, units.ErrNonPositiveAmount),
		errors.Is(err, session.ErrNothingToSend):
		return NewInvalidAmount(err)
	case errors.Is(err, quote.ErrInvalidSlippage):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, quote.ErrSameToken), errors.Is(err, chain.ErrSameToken):
		return ErrSameTokenBadRequest
	case errors.Is(err, service.ErrMissingAmounts):
		return ErrMissingAmounts
	case errors.As(err, &balanceErr):
		return fiber.NewError(fiber.StatusBadRequest, balanceErr.Error())
	case errors.Is(err, service.ErrTransactionPending):
		return ErrTransactionPending
	case errors.Is(err, quote.ErrPoolMissing):
		return ErrPoolMissing
	case errors.Is(err, session.ErrNotFound):
		return ErrSessionNotFound
	case errors.Is(err, session.ErrClosed):
		return ErrSessionClosed
	case errors.Is(err, session.ErrTooMany):
		return ErrTooManySessions
	case errors.Is(err, session.ErrUnknownKind),
		errors.Is(err, session.ErrUnknownAction),
		errors.Is(err, view.ErrUnknownEvent):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, chain.ErrNoSigner):
		return ErrSigningDisabled
	case errors.Is(err, quote.ErrQuoteFailed):
		h.logger.Warn("chain read failed", "err", err)
		return ErrQuoteFailedUpstream
	}

	if msg := chain.KindOf(err).Message(); msg != "" {
		return fiber.NewError(fiber.StatusBadGateway, msg)
	}
	h.logger.Error("request failed", "err", err)
	return ErrInternal
}
