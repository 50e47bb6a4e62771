package handler

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers groups every handler the API serves.
type Handlers struct {
	Tokens   *TokensHandler
	Quote    *QuoteHandler
	Balances *BalanceHandler
	Pairs    *PairHandler
	Tx       *TxHandler
	Sessions *SessionHandler
}

// Register mounts the API routes on app. gatherer backs /metrics.
func Register(app *fiber.App, h Handlers, gatherer prometheus.Gatherer) {
	app.Get("/tokens", h.Tokens.Handle())
	app.Get("/quote", h.Quote.Handle())
	app.Get("/balances", h.Balances.Handle())

	app.Get("/pairs", h.Pairs.Get())
	app.Post("/pairs", h.Pairs.Create())
	app.Get("/pairs/amount-out", h.Pairs.AmountOut())

	app.Post("/swap", h.Tx.Swap())
	app.Post("/liquidity", h.Tx.AddLiquidity())
	app.Get("/tx", h.Tx.Status())
	app.Delete("/tx", h.Tx.Dismiss())

	app.Post("/sessions/:kind", h.Sessions.Open())
	app.Get("/sessions/:id", h.Sessions.Get())
	app.Post("/sessions/:id/events", h.Sessions.Dispatch())
	app.Post("/sessions/:id/submit", h.Sessions.Submit())
	app.Delete("/sessions/:id", h.Sessions.Close())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}
