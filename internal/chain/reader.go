// Package chain reads exchange contract state and submits signed
// transactions to the router and factory.
package chain

import (
	"context"
	"fmt"
	"log/slog"
	"math/big"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"github.com/dimmy-bit/MONOSWAP/internal/token"
)

// Caller is the read-only subset of ethclient.Client the Reader uses.
type Caller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

// Reserves is a pair's getReserves result in contract order.
type Reserves struct {
	Pair     common.Address
	Token0   common.Address
	Reserve0 *big.Int
	Reserve1 *big.Int
}

// Empty reports whether the pool has never been seeded.
func (r Reserves) Empty() bool {
	return r.Reserve0.Sign() == 0 && r.Reserve1.Sign() == 0
}

// Oriented returns the reserves as (in, out) for a swap selling tokenIn.
func (r Reserves) Oriented(tokenIn common.Address) (reserveIn, reserveOut *big.Int) {
	if tokenIn == r.Token0 {
		return r.Reserve0, r.Reserve1
	}
	return r.Reserve1, r.Reserve0
}

// Reader performs eth_call reads against the factory, pairs and tokens.
type Reader struct {
	logger   *slog.Logger
	caller   Caller
	registry *token.Registry
	factory  common.Address
}

// NewReader constructs a Reader for the factory at factory.
func NewReader(logger *slog.Logger, caller Caller, registry *token.Registry, factory common.Address) *Reader {
	return &Reader{
		logger:   logger,
		caller:   caller,
		registry: registry,
		factory:  factory,
	}
}

// Registry returns the token registry the Reader resolves symbols with.
func (r *Reader) Registry() *token.Registry {
	return r.registry
}

func (r *Reader) call(ctx context.Context, to common.Address, contract abi.ABI, method string, args ...any) ([]any, error) {
	data, err := contract.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	out, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_call %s on %s: %w", method, to.Hex(), err)
	}
	values, err := contract.Unpack(method, out)
	if err != nil {
		return nil, fmt.Errorf("unpack %s from %s: %w", method, to.Hex(), err)
	}
	return values, nil
}

// GetPair returns the pair address for a and b, or the zero address when
// the factory has no such pair.
func (r *Reader) GetPair(ctx context.Context, a, b token.Token) (common.Address, error) {
	values, err := r.call(ctx, r.factory, FactoryABI, "getPair", r.registry.PairAddress(a), r.registry.PairAddress(b))
	if err != nil {
		return common.Address{}, err
	}
	pair, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("%w: getPair returned %T", ErrUnexpectedOutput, values[0])
	}
	r.logger.Debug("pair resolved", "a", a.Symbol, "b", b.Symbol, "pair", pair.Hex())
	return pair, nil
}

// GetReserves reads the reserves of the a/b pair. It returns ErrPairNotFound
// when the pair has not been created.
func (r *Reader) GetReserves(ctx context.Context, a, b token.Token) (Reserves, error) {
	pair, err := r.GetPair(ctx, a, b)
	if err != nil {
		return Reserves{}, err
	}
	if pair == (common.Address{}) {
		return Reserves{}, fmt.Errorf("%w: %s/%s", ErrPairNotFound, a.Symbol, b.Symbol)
	}

	values, err := r.call(ctx, pair, PairABI, "getReserves")
	if err != nil {
		return Reserves{}, err
	}
	reserve0, ok0 := values[0].(*big.Int)
	reserve1, ok1 := values[1].(*big.Int)
	if !ok0 || !ok1 {
		return Reserves{}, fmt.Errorf("%w: getReserves returned %T, %T", ErrUnexpectedOutput, values[0], values[1])
	}

	values, err = r.call(ctx, pair, PairABI, "token0")
	if err != nil {
		return Reserves{}, err
	}
	token0, ok := values[0].(common.Address)
	if !ok {
		return Reserves{}, fmt.Errorf("%w: token0 returned %T", ErrUnexpectedOutput, values[0])
	}

	return Reserves{Pair: pair, Token0: token0, Reserve0: reserve0, Reserve1: reserve1}, nil
}

// BalanceOf returns owner's balance of the ERC20 at tokenAddr.
func (r *Reader) BalanceOf(ctx context.Context, tokenAddr, owner common.Address) (*big.Int, error) {
	values, err := r.call(ctx, tokenAddr, ERC20ABI, "balanceOf", owner)
	if err != nil {
		return nil, err
	}
	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: balanceOf returned %T", ErrUnexpectedOutput, values[0])
	}
	return balance, nil
}

// NativeBalance returns owner's native token balance at the latest block.
func (r *Reader) NativeBalance(ctx context.Context, owner common.Address) (*big.Int, error) {
	balance, err := r.caller.BalanceAt(ctx, owner, nil)
	if err != nil {
		return nil, fmt.Errorf("eth_getBalance %s: %w", owner.Hex(), err)
	}
	return balance, nil
}

// Balance returns owner's balance of t in base units.
func (r *Reader) Balance(ctx context.Context, t token.Token, owner common.Address) (*big.Int, error) {
	if t.IsNative() {
		return r.NativeBalance(ctx, owner)
	}
	return r.BalanceOf(ctx, t.Address, owner)
}

// Allowance returns how much spender may move of owner's tokenAddr.
func (r *Reader) Allowance(ctx context.Context, tokenAddr, owner, spender common.Address) (*big.Int, error) {
	values, err := r.call(ctx, tokenAddr, ERC20ABI, "allowance", owner, spender)
	if err != nil {
		return nil, err
	}
	allowance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: allowance returned %T", ErrUnexpectedOutput, values[0])
	}
	return allowance, nil
}
