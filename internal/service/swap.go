package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/dimmy-bit/MONOSWAP/internal/chain"
	"github.com/dimmy-bit/MONOSWAP/internal/metrics"
	"github.com/dimmy-bit/MONOSWAP/internal/token"
	"github.com/dimmy-bit/MONOSWAP/internal/units"
)

const (
	msgSwapping        = "Swapping tokens..."
	msgSwapDone        = "Swap completed successfully!"
	msgPoolReady       = "Liquidity pool created successfully! You can now add liquidity."
	failSwap           = "Failed to execute swap"
	failCreatePoolSwap = "Failed to create liquidity pool. Please try again."
)

// SwapRequest is an exact-input swap.
type SwapRequest struct {
	In       token.Token
	Out      token.Token
	Amount   string
	Slippage string
}

// SwapService runs the swap and manual pool-creation workflows.
type SwapService struct {
	BaseService

	tracker   *Tracker
	submitter TxSubmitter
	txTimeout time.Duration
}

// NewSwapService constructs a SwapService.
func NewSwapService(logger *slog.Logger, m *metrics.Metrics, tracker *Tracker, submitter TxSubmitter, txTimeout time.Duration) *SwapService {
	return &SwapService{
		BaseService: BaseService{logger: logger, metrics: m},
		tracker:     tracker,
		submitter:   submitter,
		txTimeout:   txTimeout,
	}
}

// Swap submits req and waits for it to be mined.
func (s *SwapService) Swap(ctx context.Context, req SwapRequest, report Reporter) (TxState, error) {
	if _, err := units.ParsePositive(req.Amount); err != nil {
		return TxState{}, err
	}
	if req.In.Symbol == req.Out.Symbol {
		return TxState{}, chain.ErrSameToken
	}
	r, err := s.tracker.start(report)
	if err != nil {
		return TxState{}, err
	}
	defer r.done()

	r.pending(msgSwapping, "")
	hash, err := s.swap(ctx, r, req)
	s.metrics.ObserveTransaction("swap", outcome(err))
	if err != nil {
		s.logger.Error("swap failed", "in", req.In.Symbol, "out", req.Out.Symbol, "amount", req.Amount, "error", err)
		return r.fail(err, failSwap), err
	}
	s.logger.Info("swap completed", "in", req.In.Symbol, "out", req.Out.Symbol, "amount", req.Amount, "tx", hash)
	return r.success(msgSwapDone, hash), nil
}

func (s *SwapService) swap(ctx context.Context, r *run, req SwapRequest) (string, error) {
	tx, err := s.submitter.Swap(ctx, req.In, req.Out, req.Amount, req.Slippage)
	if err != nil {
		return "", err
	}
	hash := tx.Hash().Hex()
	r.pending(msgWaitingConfirm, hash)
	return hash, waitTx(ctx, tx, s.txTimeout)
}

// CreatePool creates the in/out pair so liquidity can be added to it.
func (s *SwapService) CreatePool(ctx context.Context, a, b token.Token, report Reporter) (TxState, error) {
	if a.Symbol == b.Symbol {
		return TxState{}, chain.ErrSameToken
	}
	r, err := s.tracker.start(report)
	if err != nil {
		return TxState{}, err
	}
	defer r.done()

	r.pending(msgCreatingPool, "")
	tx, err := s.submitter.CreatePair(ctx, a, b)
	if err == nil {
		r.pending(msgCreatingPool, tx.Hash().Hex())
		err = waitTx(ctx, tx, s.txTimeout)
	}
	s.metrics.ObserveTransaction("create_pair", outcome(err))
	if err != nil {
		s.logger.Error("create pool failed", "a", a.Symbol, "b", b.Symbol, "error", err)
		return r.emit(TxState{Status: TxError, Message: failCreatePoolSwap, Kind: outcome(err)}), err
	}
	s.logger.Info("pool created", "a", a.Symbol, "b", b.Symbol, "tx", tx.Hash().Hex())
	return r.success(msgPoolReady, tx.Hash().Hex()), nil
}

// EstimateOut asks the router for the output of amountIn along in→out.
func (s *SwapService) EstimateOut(ctx context.Context, in, out token.Token, amountIn string) (string, error) {
	return s.submitter.GetAmountOut(ctx, amountIn, in, out)
}
