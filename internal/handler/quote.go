package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/dimmy-bit/MONOSWAP/internal/quote"
	"github.com/dimmy-bit/MONOSWAP/internal/service"
	"github.com/dimmy-bit/MONOSWAP/internal/token"
)

// readTimeout bounds the chain reads of a single request.
const readTimeout = 10 * time.Second

const defaultSlippage = "0.5"

type QuoteHandler struct {
	BaseHandler
	registry *token.Registry
	service  *service.QuoteService
}

func NewQuoteHandler(logger *slog.Logger, registry *token.Registry, svc *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		registry: registry,
		service:  svc,
	}
}

type QuoteRequest struct {
	In       string `query:"in" json:"in"`
	Out      string `query:"out" json:"out"`
	Amount   string `query:"amount" json:"amount"`
	Slippage string `query:"slippage" json:"slippage"`
}

func (h *QuoteHandler) Handle() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req QuoteRequest
		if err := c.Bind().Query(&req); err != nil {
			h.logger.Debug("failed to bind query parameters", "err", err)
			return ErrInvalidQueryParameters
		}
		if req.Slippage == "" {
			req.Slippage = defaultSlippage
		}

		in, out, err := lookupPair(h.registry, req.In, req.Out)
		if err != nil {
			return h.handleServiceError(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
		defer cancel()

		q, err := h.service.Quote(ctx, quote.Request{In: in, Out: out, Amount: req.Amount, Slippage: req.Slippage})
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.JSON(q)
	}
}
