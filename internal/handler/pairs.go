package handler

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/dimmy-bit/MONOSWAP/internal/service"
	"github.com/dimmy-bit/MONOSWAP/internal/token"
)

type PairHandler struct {
	BaseHandler
	registry *token.Registry
	quotes   *service.QuoteService
	swaps    *service.SwapService
}

func NewPairHandler(logger *slog.Logger, registry *token.Registry, quotes *service.QuoteService, swaps *service.SwapService) *PairHandler {
	return &PairHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		registry: registry,
		quotes:   quotes,
		swaps:    swaps,
	}
}

type PairRequest struct {
	A string `query:"a" json:"a"`
	B string `query:"b" json:"b"`
}

// Get reports whether the a/b pair exists and its reserves.
func (h *PairHandler) Get() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req PairRequest
		if err := c.Bind().Query(&req); err != nil {
			return ErrInvalidQueryParameters
		}
		a, b, err := lookupPair(h.registry, req.A, req.B)
		if err != nil {
			return h.handleServiceError(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
		defer cancel()

		info, err := h.quotes.Pool(ctx, a, b)
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.JSON(info)
	}
}

// Create deploys the a/b pair and waits for it to be mined.
func (h *PairHandler) Create() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req PairRequest
		if err := c.Bind().JSON(&req); err != nil {
			return ErrInvalidBody
		}
		a, b, err := lookupPair(h.registry, req.A, req.B)
		if err != nil {
			return h.handleServiceError(err)
		}

		state, err := h.swaps.CreatePool(context.Background(), a, b, nil)
		return h.respondTx(c, state, err)
	}
}

type AmountOutRequest struct {
	In     string `query:"in"`
	Out    string `query:"out"`
	Amount string `query:"amount"`
}

// AmountOut asks the router what amount of out the given input buys.
func (h *PairHandler) AmountOut() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req AmountOutRequest
		if err := c.Bind().Query(&req); err != nil {
			return ErrInvalidQueryParameters
		}
		in, out, err := lookupPair(h.registry, req.In, req.Out)
		if err != nil {
			return h.handleServiceError(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
		defer cancel()

		amount, err := h.swaps.EstimateOut(ctx, in, out, req.Amount)
		if err != nil {
			return h.handleServiceError(err)
		}
		return c.JSON(fiber.Map{"amountOut": amount})
	}
}
