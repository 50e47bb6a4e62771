package uniswapv2

import "math/big"

// DefaultFeeBps is the pair fee of stock Uniswap V2 deployments (0.3%).
const DefaultFeeBps = 30

var bpsDen = big.NewInt(10_000)

// GetAmountOut mirrors UniswapV2Library.getAmountOut for a pair charging
// feeBps on the input side. dst, t1 and t2 are caller-owned temporaries and
// dst is returned.
func GetAmountOut(dst, t1, t2 *big.Int, amountIn, reserveIn, reserveOut *big.Int, feeBps uint16) *big.Int {
	// t2 = 10000 - fee
	t2.SetUint64(uint64(10_000 - uint64(feeBps)))
	// t1 = amountIn * (10000 - fee)
	t1.Mul(amountIn, t2)
	// t2 = reserveIn * 10000 + t1  (denominator)
	t2.Mul(reserveIn, bpsDen)
	t2.Add(t2, t1)
	if t2.Sign() == 0 {
		return dst.SetUint64(0)
	}
	// dst = t1 * reserveOut (numerator)
	dst.Mul(t1, reserveOut)
	return dst.Div(dst, t2)
}

// Quote mirrors UniswapV2Library.quote: the amount of the other token that
// keeps the pool ratio, amountA * reserveB / reserveA, rounded down.
func Quote(dst *big.Int, amountA, reserveA, reserveB *big.Int) *big.Int {
	if reserveA.Sign() == 0 {
		return dst.SetUint64(0)
	}
	dst.Mul(amountA, reserveB)
	return dst.Div(dst, reserveA)
}

// PriceImpactBps returns how far the fee-aware output of a swap falls short
// of the spot-ratio output, in basis points. Zero reserves yield zero.
func PriceImpactBps(amountIn, reserveIn, reserveOut *big.Int, feeBps uint16) *big.Int {
	var spot, out, t1, t2 big.Int
	Quote(&spot, amountIn, reserveIn, reserveOut)
	if spot.Sign() == 0 {
		return new(big.Int)
	}
	GetAmountOut(&out, &t1, &t2, amountIn, reserveIn, reserveOut, feeBps)

	// impact = (spot - out) * 10000 / spot
	out.Sub(&spot, &out)
	out.Mul(&out, bpsDen)
	return out.Div(&out, &spot)
}
