package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dimmy-bit/MONOSWAP/internal/chain"
	"github.com/dimmy-bit/MONOSWAP/internal/metrics"
	"github.com/dimmy-bit/MONOSWAP/internal/quote"
	"github.com/dimmy-bit/MONOSWAP/internal/token"
	"github.com/dimmy-bit/MONOSWAP/internal/units"
)

// QuoteService prices swaps and liquidity pairs from on-chain reserves.
type QuoteService struct {
	BaseService

	registry  *token.Registry
	reader    ChainReader
	estimator *quote.Estimator
}

// NewQuoteService constructs a QuoteService.
func NewQuoteService(logger *slog.Logger, m *metrics.Metrics, registry *token.Registry, reader ChainReader, estimator *quote.Estimator) *QuoteService {
	return &QuoteService{
		BaseService: BaseService{logger: logger, metrics: m},
		registry:    registry,
		reader:      reader,
		estimator:   estimator,
	}
}

// PoolInfo describes the on-chain pair for two tokens.
type PoolInfo struct {
	Address  common.Address `json:"address"`
	Exists   bool           `json:"exists"`
	ReserveA string         `json:"reserveA"`
	ReserveB string         `json:"reserveB"`
}

// Quote estimates the output of req. Unquotable amounts return
// quote.ErrNoQuote before anything is read from the chain; read failures
// wrap quote.ErrQuoteFailed.
func (s *QuoteService) Quote(ctx context.Context, req quote.Request) (quote.Quote, error) {
	if _, err := units.ParsePositive(req.Amount); err != nil {
		return quote.Quote{}, fmt.Errorf("%w: %v", quote.ErrNoQuote, err)
	}
	if req.In.Symbol == req.Out.Symbol {
		return quote.Quote{}, quote.ErrSameToken
	}

	pool, err := s.pool(ctx, req.In, req.Out)
	if err != nil {
		s.metrics.ObserveQuote("chain", "error")
		s.logger.Warn("quote failed", "in", req.In.Symbol, "out", req.Out.Symbol, "error", err)
		return quote.Quote{}, fmt.Errorf("%w: %w", quote.ErrQuoteFailed, err)
	}

	q, err := s.estimator.Estimate(req, pool)
	if err != nil {
		s.metrics.ObserveQuote("estimator", "invalid")
		return quote.Quote{}, err
	}
	s.metrics.ObserveQuote(string(q.Source), "ok")
	s.logger.Debug("quote computed",
		"in", req.In.Symbol,
		"out", req.Out.Symbol,
		"amount", req.Amount,
		"estimated", q.EstimatedOutput,
		"source", q.Source,
	)
	return q, nil
}

// Pool reads the a/b pair. A missing pair is reported with Exists false and
// zero reserves, not as an error.
func (s *QuoteService) Pool(ctx context.Context, a, b token.Token) (PoolInfo, error) {
	if a.Symbol == b.Symbol {
		return PoolInfo{}, quote.ErrSameToken
	}
	reserves, err := s.reader.GetReserves(ctx, a, b)
	if errors.Is(err, chain.ErrPairNotFound) {
		return PoolInfo{ReserveA: "0", ReserveB: "0"}, nil
	}
	if err != nil {
		return PoolInfo{}, fmt.Errorf("%w: %w", quote.ErrQuoteFailed, err)
	}
	ra, rb := reserves.Oriented(s.registry.PairAddress(a))
	return PoolInfo{
		Address:  reserves.Pair,
		Exists:   true,
		ReserveA: units.FromBase(ra, a.Decimals).String(),
		ReserveB: units.FromBase(rb, b.Decimals).String(),
	}, nil
}

func (s *QuoteService) pool(ctx context.Context, in, out token.Token) (quote.Pool, error) {
	reserves, err := s.reader.GetReserves(ctx, in, out)
	if errors.Is(err, chain.ErrPairNotFound) {
		return quote.Pool{}, nil
	}
	if err != nil {
		return quote.Pool{}, err
	}
	reserveIn, reserveOut := reserves.Oriented(s.registry.PairAddress(in))
	return quote.Pool{Exists: true, ReserveIn: reserveIn, ReserveOut: reserveOut}, nil
}
