// Package quote estimates counter-amounts, slippage floors and fees for the
// swap and liquidity screens.
package quote

import (
	"fmt"
	"math/big"

	"github.com/dimmy-bit/MONOSWAP/internal/token"
	"github.com/dimmy-bit/MONOSWAP/internal/units"
	"github.com/dimmy-bit/MONOSWAP/pkg/uniswapv2"
	"github.com/shopspring/decimal"
)

// Source tells where an estimate came from.
type Source string

const (
	SourcePool         Source = "pool"
	SourceInitialRatio Source = "initial-ratio"
)

var hundred = decimal.NewFromInt(100)

// Request is the user input a quote is computed from.
type Request struct {
	In       token.Token
	Out      token.Token
	Amount   string
	Slippage string
}

// Pool is the on-chain state of the pair, oriented to the request direction.
type Pool struct {
	Exists     bool
	ReserveIn  *big.Int
	ReserveOut *big.Int
}

// Seeded reports whether the pool exists and holds liquidity on both sides.
func (p Pool) Seeded() bool {
	return p.Exists &&
		p.ReserveIn != nil && p.ReserveIn.Sign() > 0 &&
		p.ReserveOut != nil && p.ReserveOut.Sign() > 0
}

// Quote is valid only for the Request and Pool it was computed from.
// PoolExists is false when the pair has not been created yet.
type Quote struct {
	AmountIn        string `json:"amountIn"`
	EstimatedOutput string `json:"estimatedOutput"`
	MinimumReceived string `json:"minimumReceived"`
	Fee             string `json:"fee"`
	PriceImpact     string `json:"priceImpact"`
	Source          Source `json:"source"`
	PoolExists      bool   `json:"poolExists"`
}

// Estimator holds the fee and fallback pricing configuration. The zero value
// is not usable; use NewEstimator.
type Estimator struct {
	feeBps uint16
	ratios RatioTable
}

// NewEstimator returns an Estimator charging feeBps for display purposes and
// pricing unseeded pairs with ratios.
func NewEstimator(feeBps uint16, ratios RatioTable) *Estimator {
	return &Estimator{feeBps: feeBps, ratios: ratios}
}

// FeeBps is the display fee rate in basis points.
func (e *Estimator) FeeBps() uint16 { return e.feeBps }

// Estimate computes a quote. Unquotable amounts, including those smaller
// than one base unit of the input token, return ErrNoQuote.
func (e *Estimator) Estimate(req Request, pool Pool) (Quote, error) {
	amount, err := units.ParsePositive(req.Amount)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %v", ErrNoQuote, err)
	}
	slippage, err := ParseSlippage(req.Slippage)
	if err != nil {
		return Quote{}, err
	}
	if req.In.Symbol == req.Out.Symbol {
		return Quote{}, ErrSameToken
	}
	in := units.ToBase(amount, req.In.Decimals)
	if in.Sign() == 0 {
		return Quote{}, fmt.Errorf("%w: %s is below one base unit of %s", ErrNoQuote, req.Amount, req.In.Symbol)
	}

	q := Quote{
		AmountIn:    units.Display(amount, req.In.Decimals),
		PriceImpact: "0",
		PoolExists:  pool.Exists,
	}

	var out decimal.Decimal
	if pool.Seeded() {
		var dst big.Int
		uniswapv2.Quote(&dst, in, pool.ReserveIn, pool.ReserveOut)
		out = units.FromBase(&dst, req.Out.Decimals)

		impact := uniswapv2.PriceImpactBps(in, pool.ReserveIn, pool.ReserveOut, e.feeBps)
		q.PriceImpact = decimal.NewFromBigInt(impact, -2).String()
		q.Source = SourcePool
	} else {
		out = e.ratios.Convert(amount, req.In.Class, req.Out.Class)
		q.Source = SourceInitialRatio
	}

	places := units.DisplayPlaces(req.Out.Decimals)
	out = out.Truncate(places)
	q.EstimatedOutput = out.String()
	q.MinimumReceived = MinimumReceived(out, slippage).Truncate(places).String()
	q.Fee = units.Display(e.Fee(amount), req.In.Decimals)
	return q, nil
}

// Fee is the display fee charged on amount.
func (e *Estimator) Fee(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(decimal.NewFromInt(int64(e.feeBps))).Div(decimal.NewFromInt(10_000))
}

// MinimumReceived reduces out by a slippage percentage.
func MinimumReceived(out, slippagePct decimal.Decimal) decimal.Decimal {
	return out.Mul(decimal.NewFromInt(1).Sub(slippagePct.Div(hundred)))
}

// ParseSlippage parses a percentage such as "0.5" and checks it is in
// [0, 100).
func ParseSlippage(s string) (decimal.Decimal, error) {
	d, err := units.Parse(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrInvalidSlippage, err)
	}
	if d.IsNegative() || d.GreaterThanOrEqual(hundred) {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrInvalidSlippage, d)
	}
	return d, nil
}
