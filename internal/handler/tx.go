package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/dimmy-bit/MONOSWAP/internal/service"
	"github.com/dimmy-bit/MONOSWAP/internal/token"
)

type TxHandler struct {
	BaseHandler
	registry  *token.Registry
	tracker   *service.Tracker
	swaps     *service.SwapService
	liquidity *service.LiquidityService
}

func NewTxHandler(logger *slog.Logger, registry *token.Registry, tracker *service.Tracker, swaps *service.SwapService, liquidity *service.LiquidityService) *TxHandler {
	return &TxHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		registry:  registry,
		tracker:   tracker,
		swaps:     swaps,
		liquidity: liquidity,
	}
}

type SwapRequest struct {
	In       string `json:"in"`
	Out      string `json:"out"`
	Amount   string `json:"amount"`
	Slippage string `json:"slippage"`
}

type LiquidityRequest struct {
	A          string `json:"a"`
	B          string `json:"b"`
	AmountA    string `json:"amountA"`
	AmountB    string `json:"amountB"`
	Slippage   string `json:"slippage"`
	BalanceA   string `json:"balanceA"`
	BalanceB   string `json:"balanceB"`
	CreatePool bool   `json:"createPool"`
}

// Swap runs a swap to completion.
func (h *TxHandler) Swap() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req SwapRequest
		if err := c.Bind().JSON(&req); err != nil {
			return ErrInvalidBody
		}
		if req.Slippage == "" {
			req.Slippage = defaultSlippage
		}
		in, out, err := lookupPair(h.registry, req.In, req.Out)
		if err != nil {
			return h.handleServiceError(err)
		}

		state, err := h.swaps.Swap(context.Background(), service.SwapRequest{
			In:       in,
			Out:      out,
			Amount:   req.Amount,
			Slippage: req.Slippage,
		}, nil)
		return h.respondTx(c, state, err)
	}
}

// AddLiquidity runs the add-liquidity workflow to completion.
func (h *TxHandler) AddLiquidity() fiber.Handler {
	return func(c fiber.Ctx) error {
		var req LiquidityRequest
		if err := c.Bind().JSON(&req); err != nil {
			return ErrInvalidBody
		}
		if req.Slippage == "" {
			req.Slippage = defaultSlippage
		}
		a, b, err := lookupPair(h.registry, req.A, req.B)
		if err != nil {
			return h.handleServiceError(err)
		}

		lr := service.LiquidityRequest{
			A:        a,
			B:        b,
			AmountA:  req.AmountA,
			AmountB:  req.AmountB,
			Slippage: req.Slippage,
			BalanceA: req.BalanceA,
			BalanceB: req.BalanceB,
		}
		var state service.TxState
		if req.CreatePool {
			state, err = h.liquidity.CreatePoolAndAdd(context.Background(), lr, nil)
		} else {
			state, err = h.liquidity.AddLiquidity(context.Background(), lr, nil)
		}
		return h.respondTx(c, state, err)
	}
}

// Status returns the last transaction status.
func (h *TxHandler) Status() fiber.Handler {
	return func(c fiber.Ctx) error {
		state, ok := h.tracker.Current()
		if !ok {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.JSON(state)
	}
}

// Dismiss clears a finished transaction status.
func (h *TxHandler) Dismiss() fiber.Handler {
	return func(c fiber.Ctx) error {
		h.tracker.Dismiss()
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// respondTx writes the final state of a workflow. Failures that happened
// before the workflow started have no state and become plain errors.
func (h *BaseHandler) respondTx(c fiber.Ctx, state service.TxState, err error) error {
	if err == nil {
		return c.JSON(state)
	}
	mapped := h.handleServiceError(err)
	if state.Status == "" {
		return mapped
	}
	code := fiber.StatusBadGateway
	var fe *fiber.Error
	if errors.As(mapped, &fe) {
		code = fe.Code
	}
	return c.Status(code).JSON(state)
}
