package handler

import (
	"context"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"

	"github.com/dimmy-bit/MONOSWAP/internal/service"
	"github.com/dimmy-bit/MONOSWAP/internal/token"
	"github.com/dimmy-bit/MONOSWAP/internal/units"
)

type BalanceHandler struct {
	BaseHandler
	registry *token.Registry
	reader   service.ChainReader
}

func NewBalanceHandler(logger *slog.Logger, registry *token.Registry, reader service.ChainReader) *BalanceHandler {
	return &BalanceHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		registry: registry,
		reader:   reader,
	}
}

// Handle returns the owner's balance of every registered token.
func (h *BalanceHandler) Handle() fiber.Handler {
	return func(c fiber.Ctx) error {
		owner, err := parseAddress("owner", c.Query("owner"))
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), readTimeout)
		defer cancel()

		out := make(map[string]string)
		for _, t := range h.registry.All() {
			raw, err := h.reader.Balance(ctx, t, owner)
			if err != nil {
				h.logger.Warn("balance read failed", "token", t.Symbol, "owner", owner.Hex(), "err", err)
				return fiber.NewError(fiber.StatusBadGateway, "failed to read balances")
			}
			out[t.Symbol] = units.Display(units.FromBase(raw, t.Decimals), t.Decimals)
		}
		return c.JSON(out)
	}
}

func parseAddress(field, s string) (common.Address, error) {
	if s == "" {
		return common.Address{}, NewAddressRequired(field)
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, NewInvalidAddress(field)
	}
	return common.HexToAddress(s), nil
}
