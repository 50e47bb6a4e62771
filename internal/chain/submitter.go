package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"

	"github.com/dimmy-bit/MONOSWAP/internal/quote"
	"github.com/dimmy-bit/MONOSWAP/internal/token"
	"github.com/dimmy-bit/MONOSWAP/internal/units"
)

const (
	// DefaultDeadline is how long router calls stay valid after signing.
	DefaultDeadline = 20 * time.Minute
	// gas estimates are padded by gasAdjustNum/gasAdjustDen
	gasAdjustNum = 12
	gasAdjustDen = 10
)

// Backend is the subset of ethclient.Client the Submitter needs.
type Backend interface {
	Caller
	ReceiptFetcher
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *types.Transaction) error
}

// Options overrides per-transaction defaults.
type Options struct {
	// GasLimit skips gas estimation when non-zero.
	GasLimit uint64
}

// SubmitterConfig holds the addresses and key a Submitter signs with.
type SubmitterConfig struct {
	ChainID    *big.Int
	Router     common.Address
	Factory    common.Address
	PrivateKey *ecdsa.PrivateKey
	Deadline   time.Duration
	// ReceiptPollInterval defaults to DefaultReceiptPollInterval.
	ReceiptPollInterval time.Duration
}

// Submitter builds, signs and sends factory and router transactions.
type Submitter struct {
	logger  *slog.Logger
	backend Backend
	reader  *Reader
	cfg     SubmitterConfig
	from    common.Address
	now     func() time.Time
}

// NewSubmitter returns a Submitter. A nil PrivateKey yields a Submitter that
// can quote through the router but refuses to send.
func NewSubmitter(logger *slog.Logger, backend Backend, reader *Reader, cfg SubmitterConfig) *Submitter {
	if cfg.Deadline <= 0 {
		cfg.Deadline = DefaultDeadline
	}
	if cfg.ReceiptPollInterval <= 0 {
		cfg.ReceiptPollInterval = DefaultReceiptPollInterval
	}
	s := &Submitter{
		logger:  logger,
		backend: backend,
		reader:  reader,
		cfg:     cfg,
		now:     time.Now,
	}
	if cfg.PrivateKey != nil {
		s.from = crypto.PubkeyToAddress(cfg.PrivateKey.PublicKey)
	}
	return s
}

// From is the address transactions are sent from.
func (s *Submitter) From() common.Address {
	return s.from
}

// CreatePair asks the factory to deploy the a/b pair.
func (s *Submitter) CreatePair(ctx context.Context, a, b token.Token) (TxHandle, error) {
	const op = "createPair"
	if a.Symbol == b.Symbol {
		return nil, &Error{Kind: KindUnknown, Op: op, Err: ErrSameToken}
	}
	registry := s.reader.Registry()
	data, err := FactoryABI.Pack(op, registry.PairAddress(a), registry.PairAddress(b))
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", op, err)
	}
	return s.send(ctx, op, s.cfg.Factory, nil, data, Options{})
}

// AddLiquidity deposits amountA of a and amountB of b through the router.
// Both minimums are reduced by slippage percent. A native side uses
// addLiquidityETH.
func (s *Submitter) AddLiquidity(ctx context.Context, a, b token.Token, amountA, amountB, slippage string, opts Options) (TxHandle, error) {
	const op = "addLiquidity"
	if a.Symbol == b.Symbol {
		return nil, &Error{Kind: KindUnknown, Op: op, Err: ErrSameToken}
	}
	if a.IsNative() && b.Class == token.ClassWrapped || b.IsNative() && a.Class == token.ClassWrapped {
		return nil, &Error{Kind: KindUnknown, Op: op, Err: ErrWrapNotSupported}
	}
	desiredA, desiredB, slip, err := parseLiquidityAmounts(amountA, amountB, slippage, a, b)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Op: op, Err: err}
	}
	minA := applySlippage(desiredA, slip)
	minB := applySlippage(desiredB, slip)
	deadline := s.deadline()

	// normalise so the native side, if any, is always a
	if b.IsNative() {
		a, b = b, a
		desiredA, desiredB = desiredB, desiredA
		minA, minB = minB, minA
	}

	if a.IsNative() {
		if err := s.ensureAllowance(ctx, b, desiredB); err != nil {
			return nil, err
		}
		data, err := RouterABI.Pack("addLiquidityETH", b.Address, desiredB, minB, minA, s.from, deadline)
		if err != nil {
			return nil, fmt.Errorf("pack addLiquidityETH: %w", err)
		}
		return s.send(ctx, op, s.cfg.Router, desiredA, data, opts)
	}

	if err := s.ensureAllowance(ctx, a, desiredA); err != nil {
		return nil, err
	}
	if err := s.ensureAllowance(ctx, b, desiredB); err != nil {
		return nil, err
	}
	data, err := RouterABI.Pack("addLiquidity", a.Address, b.Address, desiredA, desiredB, minA, minB, s.from, deadline)
	if err != nil {
		return nil, fmt.Errorf("pack addLiquidity: %w", err)
	}
	return s.send(ctx, op, s.cfg.Router, nil, data, opts)
}

// Swap sells amountIn of in for out. The minimum accepted output is the
// router's current getAmountsOut reduced by slippage percent.
func (s *Submitter) Swap(ctx context.Context, in, out token.Token, amountIn, slippage string) (TxHandle, error) {
	const op = "swap"
	path, err := s.path(in, out)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Op: op, Err: err}
	}
	amount, err := units.ParsePositive(amountIn)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Op: op, Err: err}
	}
	slip, err := quote.ParseSlippage(slippage)
	if err != nil {
		return nil, &Error{Kind: KindUnknown, Op: op, Err: err}
	}
	baseIn := units.ToBase(amount, in.Decimals)

	expected, err := s.amountsOut(ctx, baseIn, path)
	if err != nil {
		return nil, classify(op, err)
	}
	minOut := applySlippage(expected, slip)
	deadline := s.deadline()

	var (
		data  []byte
		value *big.Int
	)
	switch {
	case in.IsNative():
		data, err = RouterABI.Pack("swapExactETHForTokens", minOut, path, s.from, deadline)
		value = baseIn
	case out.IsNative():
		if err := s.ensureAllowance(ctx, in, baseIn); err != nil {
			return nil, err
		}
		data, err = RouterABI.Pack("swapExactTokensForETH", baseIn, minOut, path, s.from, deadline)
	default:
		if err := s.ensureAllowance(ctx, in, baseIn); err != nil {
			return nil, err
		}
		data, err = RouterABI.Pack("swapExactTokensForTokens", baseIn, minOut, path, s.from, deadline)
	}
	if err != nil {
		return nil, fmt.Errorf("pack swap: %w", err)
	}
	s.logger.Debug("swap prepared", "in", in.Symbol, "out", out.Symbol, "amount_in", baseIn.String(), "min_out", minOut.String())
	return s.send(ctx, op, s.cfg.Router, value, data, Options{})
}

// GetAmountOut asks the router what amountIn of in buys of out, as a display
// decimal string.
func (s *Submitter) GetAmountOut(ctx context.Context, amountIn string, in, out token.Token) (string, error) {
	path, err := s.path(in, out)
	if err != nil {
		return "", err
	}
	amount, err := units.ParsePositive(amountIn)
	if err != nil {
		return "", err
	}
	result, err := s.amountsOut(ctx, units.ToBase(amount, in.Decimals), path)
	if err != nil {
		return "", err
	}
	return units.Display(units.FromBase(result, out.Decimals), out.Decimals), nil
}

func (s *Submitter) path(in, out token.Token) ([]common.Address, error) {
	if in.Symbol == out.Symbol {
		return nil, ErrSameToken
	}
	registry := s.reader.Registry()
	from, to := registry.PairAddress(in), registry.PairAddress(out)
	if from == to {
		return nil, ErrWrapNotSupported
	}
	return []common.Address{from, to}, nil
}

func (s *Submitter) amountsOut(ctx context.Context, amountIn *big.Int, path []common.Address) (*big.Int, error) {
	values, err := s.reader.call(ctx, s.cfg.Router, RouterABI, "getAmountsOut", amountIn, path)
	if err != nil {
		return nil, err
	}
	amounts, ok := values[0].([]*big.Int)
	if !ok || len(amounts) != len(path) {
		return nil, fmt.Errorf("%w: getAmountsOut returned %v", ErrUnexpectedOutput, values[0])
	}
	return amounts[len(amounts)-1], nil
}

// ensureAllowance approves the router for amount of t and waits for the
// approval to be mined when the current allowance is short.
func (s *Submitter) ensureAllowance(ctx context.Context, t token.Token, amount *big.Int) error {
	const op = "approve"
	if t.IsNative() {
		return nil
	}
	allowance, err := s.reader.Allowance(ctx, t.Address, s.from, s.cfg.Router)
	if err != nil {
		return classify(op, err)
	}
	if allowance.Cmp(amount) >= 0 {
		return nil
	}
	data, err := ERC20ABI.Pack(op, s.cfg.Router, amount)
	if err != nil {
		return fmt.Errorf("pack approve: %w", err)
	}
	s.logger.Info("approving router", "token", t.Symbol, "amount", amount.String())
	tx, err := s.send(ctx, op, t.Address, nil, data, Options{})
	if err != nil {
		return err
	}
	return tx.Wait(ctx)
}

func (s *Submitter) send(ctx context.Context, op string, to common.Address, value *big.Int, data []byte, opts Options) (TxHandle, error) {
	if s.cfg.PrivateKey == nil {
		return nil, &Error{Kind: KindRejected, Op: op, Err: ErrNoSigner}
	}
	if value == nil {
		value = new(big.Int)
	}

	nonce, err := s.backend.PendingNonceAt(ctx, s.from)
	if err != nil {
		return nil, classify(op, fmt.Errorf("pending nonce: %w", err))
	}
	gasPrice, err := s.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, classify(op, fmt.Errorf("gas price: %w", err))
	}

	gas := opts.GasLimit
	if gas == 0 {
		estimate, err := s.backend.EstimateGas(ctx, ethereum.CallMsg{
			From:     s.from,
			To:       &to,
			GasPrice: gasPrice,
			Value:    value,
			Data:     data,
		})
		if err != nil {
			return nil, classify(op, fmt.Errorf("estimate gas: %w", err))
		}
		gas = estimate * gasAdjustNum / gasAdjustDen
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &to,
		Value:    value,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.cfg.ChainID), s.cfg.PrivateKey)
	if err != nil {
		return nil, &Error{Kind: KindRejected, Op: op, Err: err}
	}
	if err := s.backend.SendTransaction(ctx, signed); err != nil {
		return nil, classify(op, fmt.Errorf("send transaction: %w", err))
	}

	s.logger.Info("transaction sent", "op", op, "hash", signed.Hash().Hex(), "nonce", nonce, "gas", gas)
	return &pendingTx{
		op:       op,
		hash:     signed.Hash(),
		receipts: s.backend,
		interval: s.cfg.ReceiptPollInterval,
	}, nil
}

func (s *Submitter) deadline() *big.Int {
	return big.NewInt(s.now().Add(s.cfg.Deadline).Unix())
}

func parseLiquidityAmounts(amountA, amountB, slippage string, a, b token.Token) (*big.Int, *big.Int, decimal.Decimal, error) {
	da, err := units.ParsePositive(amountA)
	if err != nil {
		return nil, nil, decimal.Zero, fmt.Errorf("%s amount: %w", a.Symbol, err)
	}
	db, err := units.ParsePositive(amountB)
	if err != nil {
		return nil, nil, decimal.Zero, fmt.Errorf("%s amount: %w", b.Symbol, err)
	}
	slip, err := quote.ParseSlippage(slippage)
	if err != nil {
		return nil, nil, decimal.Zero, err
	}
	return units.ToBase(da, a.Decimals), units.ToBase(db, b.Decimals), slip, nil
}

// applySlippage returns amount * (1 - pct/100), rounded down.
func applySlippage(amount *big.Int, pct decimal.Decimal) *big.Int {
	return quote.MinimumReceived(decimal.NewFromBigInt(amount, 0), pct).BigInt()
}
