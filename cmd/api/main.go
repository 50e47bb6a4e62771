package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dimmy-bit/MONOSWAP/internal/chain"
	"github.com/dimmy-bit/MONOSWAP/internal/config"
	"github.com/dimmy-bit/MONOSWAP/internal/eth"
	"github.com/dimmy-bit/MONOSWAP/internal/handler"
	"github.com/dimmy-bit/MONOSWAP/internal/logging"
	"github.com/dimmy-bit/MONOSWAP/internal/metrics"
	"github.com/dimmy-bit/MONOSWAP/internal/quote"
	"github.com/dimmy-bit/MONOSWAP/internal/service"
	"github.com/dimmy-bit/MONOSWAP/internal/session"
	"github.com/dimmy-bit/MONOSWAP/internal/token"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}

	logger := logging.NewLogger(cfg.LogLevel)
	if cfg.LogFile != "" {
		var closer io.Closer
		logger, closer = logging.NewFileLogger(cfg.LogLevel, cfg.LogFile)
		defer closer.Close()
	}
	slog.SetDefault(logger)

	registry := token.DefaultRegistry()
	if cfg.TokensFile != "" {
		if registry, err = token.LoadRegistry(cfg.TokensFile); err != nil {
			return fmt.Errorf("failed to load token registry: %w", err)
		}
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m, err := metrics.New(promRegistry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ethereumClient, err := eth.Dial(ctx, cfg.RPCEndpoint, cfg.ChainID)
	if err != nil {
		return fmt.Errorf("failed to connect to Ethereum node: %w", err)
	}
	defer ethereumClient.Close()

	reader := chain.NewReader(logger, ethereumClient, registry, cfg.Factory)
	submitter := chain.NewSubmitter(logger, ethereumClient, reader, chain.SubmitterConfig{
		ChainID:    cfg.ChainID,
		Router:     cfg.Router,
		Factory:    cfg.Factory,
		PrivateKey: cfg.PrivateKey,
	})
	if cfg.CanSign() {
		logger.Info("transaction signing enabled", "from", submitter.From().Hex())
	} else {
		logger.Warn("PRIVATE_KEY not set; write endpoints will refuse to send")
	}

	estimator := quote.NewEstimator(cfg.FeeBps, quote.RatioTable{NativeStable: cfg.NativeStableRate})
	tracker := service.NewTracker()
	quoteService := service.NewQuoteService(logger, m, registry, reader, estimator)
	swapService := service.NewSwapService(logger, m, tracker, submitter, cfg.TxTimeout)
	liquidityService := service.NewLiquidityService(logger, m, tracker, reader, submitter, cfg.TxTimeout)

	sessions := session.NewStore(session.Deps{
		Logger:       logger,
		Metrics:      m,
		Registry:     registry,
		Quotes:       quoteService,
		Swaps:        swapService,
		Liquidity:    liquidityService,
		Balances:     reader,
		PollInterval: cfg.PollInterval,
		SessionTTL:   cfg.SessionTTL,
		MaxSessions:  cfg.MaxSessions,
	})
	defer sessions.CloseAll()

	app := fiber.New()
	handler.Register(app, handler.Handlers{
		Tokens:   handler.NewTokensHandler(logger, registry),
		Quote:    handler.NewQuoteHandler(logger, registry, quoteService),
		Balances: handler.NewBalanceHandler(logger, registry, reader),
		Pairs:    handler.NewPairHandler(logger, registry, quoteService, swapService),
		Tx:       handler.NewTxHandler(logger, registry, tracker, swapService, liquidityService),
		Sessions: handler.NewSessionHandler(logger, sessions),
	}, promRegistry)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Listen(cfg.Addr)
	}()
	logger.Info("server starting", "addr", cfg.Addr, "chain_id", cfg.ChainID.String(), "tokens", len(registry.All()))

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			_ = app.Shutdown()
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	if err := app.ShutdownWithTimeout(3 * time.Second); err != nil {
		logger.Warn("shutdown incomplete", "err", err)
	}
	return nil
}
