// Package service sequences chain reads and transaction submissions into the
// quote, swap and liquidity workflows.
package service

import (
	"context"
	"log/slog"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dimmy-bit/MONOSWAP/internal/chain"
	"github.com/dimmy-bit/MONOSWAP/internal/metrics"
	"github.com/dimmy-bit/MONOSWAP/internal/token"
)

// BaseService provides common dependencies for service types.
type BaseService struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// ChainReader is the read side of the exchange contracts.
type ChainReader interface {
	GetPair(ctx context.Context, a, b token.Token) (common.Address, error)
	GetReserves(ctx context.Context, a, b token.Token) (chain.Reserves, error)
	Balance(ctx context.Context, t token.Token, owner common.Address) (*big.Int, error)
}

// TxSubmitter is the write side of the exchange contracts.
type TxSubmitter interface {
	From() common.Address
	CreatePair(ctx context.Context, a, b token.Token) (chain.TxHandle, error)
	AddLiquidity(ctx context.Context, a, b token.Token, amountA, amountB, slippage string, opts chain.Options) (chain.TxHandle, error)
	Swap(ctx context.Context, in, out token.Token, amountIn, slippage string) (chain.TxHandle, error)
	GetAmountOut(ctx context.Context, amountIn string, in, out token.Token) (string, error)
}
