package handler

import (
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/dimmy-bit/MONOSWAP/internal/token"
)

type TokensHandler struct {
	BaseHandler
	registry *token.Registry
}

func NewTokensHandler(logger *slog.Logger, registry *token.Registry) *TokensHandler {
	return &TokensHandler{
		BaseHandler: BaseHandler{
			logger: logger,
		},
		registry: registry,
	}
}

func (h *TokensHandler) Handle() fiber.Handler {
	return func(c fiber.Ctx) error {
		return c.JSON(h.registry.All())
	}
}

// lookupPair resolves two required symbols.
func lookupPair(registry *token.Registry, a, b string) (token.Token, token.Token, error) {
	if a == "" || b == "" {
		return token.Token{}, token.Token{}, ErrTokenRequired
	}
	ta, err := registry.Lookup(a)
	if err != nil {
		return token.Token{}, token.Token{}, err
	}
	tb, err := registry.Lookup(b)
	if err != nil {
		return token.Token{}, token.Token{}, err
	}
	return ta, tb, nil
}
