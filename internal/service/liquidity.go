package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/dimmy-bit/MONOSWAP/internal/chain"
	"github.com/dimmy-bit/MONOSWAP/internal/metrics"
	"github.com/dimmy-bit/MONOSWAP/internal/token"
	"github.com/dimmy-bit/MONOSWAP/internal/units"
)

// LiquidityGasLimit is the fixed gas limit of add-liquidity transactions.
const LiquidityGasLimit uint64 = 500_000

const (
	msgCheckingBalances = "Checking balances and approvals..."
	msgCreatingPool     = "Creating liquidity pool..."
	msgPoolCreated      = "Pool created, adding initial liquidity..."
	msgAddingExisting   = "Adding liquidity to existing pool..."
	msgWaitingConfirm   = "Waiting for transaction confirmation..."
	msgLiquidityAdded   = "Successfully added liquidity!"
	msgPoolCreatedOnly  = "Liquidity pool created successfully!"

	failAddLiquidity = "Failed to add liquidity"
	failCreatePool   = "Failed to create pool"
)

// LiquidityRequest is a deposit of both sides of a pair. Balances are the
// caller's last known wallet balances; empty ones are read from the chain.
type LiquidityRequest struct {
	A        token.Token
	B        token.Token
	AmountA  string
	AmountB  string
	Slippage string
	BalanceA string
	BalanceB string
}

// LiquidityService runs the add-liquidity workflow.
type LiquidityService struct {
	BaseService

	tracker   *Tracker
	reader    ChainReader
	submitter TxSubmitter
	txTimeout time.Duration
}

// NewLiquidityService constructs a LiquidityService. txTimeout bounds each
// confirmation wait; zero means no bound beyond the caller's ctx.
func NewLiquidityService(logger *slog.Logger, m *metrics.Metrics, tracker *Tracker, reader ChainReader, submitter TxSubmitter, txTimeout time.Duration) *LiquidityService {
	return &LiquidityService{
		BaseService: BaseService{logger: logger, metrics: m},
		tracker:     tracker,
		reader:      reader,
		submitter:   submitter,
		txTimeout:   txTimeout,
	}
}

// AddLiquidity checks balances, creates the pair if it does not exist yet
// and deposits both amounts. Every status change is passed to report. The
// returned state is the final one.
func (s *LiquidityService) AddLiquidity(ctx context.Context, req LiquidityRequest, report Reporter) (TxState, error) {
	if err := s.validate(req); err != nil {
		return TxState{}, err
	}
	r, err := s.tracker.start(report)
	if err != nil {
		return TxState{}, err
	}
	defer r.done()

	hash, err := s.add(ctx, r, req)
	s.metrics.ObserveTransaction("add_liquidity", outcome(err))
	if err != nil {
		s.logger.Error("add liquidity failed", "a", req.A.Symbol, "b", req.B.Symbol, "error", err)
		return r.fail(err, failAddLiquidity), err
	}
	s.logger.Info("liquidity added", "a", req.A.Symbol, "b", req.B.Symbol, "tx", hash)
	return r.success(msgLiquidityAdded, hash), nil
}

// CreatePoolAndAdd creates the pair unconditionally and then runs the
// add-liquidity workflow.
func (s *LiquidityService) CreatePoolAndAdd(ctx context.Context, req LiquidityRequest, report Reporter) (TxState, error) {
	if err := s.validate(req); err != nil {
		return TxState{}, err
	}
	r, err := s.tracker.start(report)
	if err != nil {
		return TxState{}, err
	}
	defer r.done()

	r.pending(msgCreatingPool, "")
	hash, err := s.createPair(ctx, req.A, req.B)
	s.metrics.ObserveTransaction("create_pair", outcome(err))
	if err != nil {
		s.logger.Error("create pool failed", "a", req.A.Symbol, "b", req.B.Symbol, "error", err)
		return r.fail(err, failCreatePool), err
	}
	r.success(msgPoolCreatedOnly, hash)

	hash, err = s.add(ctx, r, req)
	s.metrics.ObserveTransaction("add_liquidity", outcome(err))
	if err != nil {
		s.logger.Error("add liquidity failed", "a", req.A.Symbol, "b", req.B.Symbol, "error", err)
		return r.fail(err, failAddLiquidity), err
	}
	return r.success(msgLiquidityAdded, hash), nil
}

func (s *LiquidityService) validate(req LiquidityRequest) error {
	if req.AmountA == "" || req.AmountB == "" {
		return ErrMissingAmounts
	}
	if req.A.Symbol == req.B.Symbol {
		return chain.ErrSameToken
	}
	return nil
}

func (s *LiquidityService) add(ctx context.Context, r *run, req LiquidityRequest) (string, error) {
	r.pending(msgCheckingBalances, "")
	if err := s.checkBalance(ctx, req.A, req.AmountA, req.BalanceA); err != nil {
		return "", err
	}
	if err := s.checkBalance(ctx, req.B, req.AmountB, req.BalanceB); err != nil {
		return "", err
	}

	pair, err := s.reader.GetPair(ctx, req.A, req.B)
	if err != nil {
		return "", err
	}
	if pair == (common.Address{}) {
		r.pending(msgCreatingPool, "")
		if _, err := s.createPair(ctx, req.A, req.B); err != nil {
			return "", err
		}
		r.pending(msgPoolCreated, "")
	} else {
		r.pending(msgAddingExisting, "")
	}

	tx, err := s.submitter.AddLiquidity(ctx, req.A, req.B, req.AmountA, req.AmountB, req.Slippage, chain.Options{GasLimit: LiquidityGasLimit})
	if err != nil {
		return "", err
	}
	hash := tx.Hash().Hex()
	r.pending(msgWaitingConfirm, hash)
	if err := s.wait(ctx, tx); err != nil {
		return hash, err
	}
	return hash, nil
}

func (s *LiquidityService) createPair(ctx context.Context, a, b token.Token) (string, error) {
	tx, err := s.submitter.CreatePair(ctx, a, b)
	if err != nil {
		return "", err
	}
	if err := s.wait(ctx, tx); err != nil {
		return "", err
	}
	return tx.Hash().Hex(), nil
}

func (s *LiquidityService) wait(ctx context.Context, tx chain.TxHandle) error {
	return waitTx(ctx, tx, s.txTimeout)
}

// checkBalance compares amount with balance. An empty balance is read for
// the signing account.
func (s *LiquidityService) checkBalance(ctx context.Context, t token.Token, amount, balance string) error {
	want, err := units.ParsePositive(amount)
	if err != nil {
		return fmt.Errorf("%s amount: %w", t.Symbol, err)
	}

	var have decimal.Decimal
	if balance != "" {
		have, err = units.Parse(balance)
		if err != nil {
			return fmt.Errorf("%s balance: %w", t.Symbol, err)
		}
	} else {
		raw, err := s.reader.Balance(ctx, t, s.submitter.From())
		if err != nil {
			return err
		}
		have = units.FromBase(raw, t.Decimals)
	}

	if want.GreaterThan(have) {
		return &InsufficientBalanceError{Symbol: t.Symbol}
	}
	return nil
}

func waitTx(ctx context.Context, tx chain.TxHandle, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return tx.Wait(ctx)
}
