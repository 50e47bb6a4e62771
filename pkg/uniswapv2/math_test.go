package uniswapv2

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAmountOut(t *testing.T) {
	// Example: reserves 1000000 : 1000000, amountIn 1000
	rIn := big.NewInt(1_000_000)
	rOut := big.NewInt(1_000_000)
	amountIn := big.NewInt(1_000)

	// dst/t1/t2 are re-used temporaries
	var dst, t1, t2 big.Int
	out := GetAmountOut(&dst, &t1, &t2, amountIn, rIn, rOut, DefaultFeeBps)

	// compute expected with the router's 997/1000 form
	amountInWithFee := new(big.Int).Mul(amountIn, big.NewInt(997))
	numerator := new(big.Int).Mul(amountInWithFee, rOut)
	denominator := new(big.Int).Mul(rIn, big.NewInt(1000))
	denominator.Add(denominator, amountInWithFee)
	expected := new(big.Int).Div(numerator, denominator)

	if out.Cmp(expected) != 0 {
		t.Fatalf("unexpected: got %s want %s", out, expected)
	}
	if out.Sign() <= 0 {
		t.Fatalf("amountOut should be positive")
	}
}

func TestGetAmountOut_ZeroReserves(t *testing.T) {
	var dst, t1, t2 big.Int
	out := GetAmountOut(&dst, &t1, &t2, big.NewInt(0), big.NewInt(0), big.NewInt(10), DefaultFeeBps)
	assert.Equal(t, 0, out.Sign())
}

func TestQuote(t *testing.T) {
	testCases := []struct {
		name     string
		amountA  int64
		reserveA int64
		reserveB int64
		expected int64
	}{
		{name: "balanced", amountA: 100, reserveA: 1_000, reserveB: 1_000, expected: 100},
		{name: "two to one", amountA: 100, reserveA: 1_000, reserveB: 2_000, expected: 200},
		{name: "rounds down", amountA: 1, reserveA: 3, reserveB: 2, expected: 0},
		{name: "empty reserve", amountA: 1, reserveA: 0, reserveB: 2, expected: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var dst big.Int
			got := Quote(&dst, big.NewInt(tc.amountA), big.NewInt(tc.reserveA), big.NewInt(tc.reserveB))
			assert.Equal(t, tc.expected, got.Int64())
		})
	}
}

func TestQuote_Monotonic(t *testing.T) {
	base := func(in, r0, r1 int64) *big.Int {
		var dst big.Int
		return Quote(&dst, big.NewInt(in), big.NewInt(r0), big.NewInt(r1))
	}

	require.True(t, base(2_000, 1_000_000, 5_000_000).Cmp(base(1_000, 1_000_000, 5_000_000)) > 0, "increasing in amountIn")
	require.True(t, base(1_000, 1_000_000, 6_000_000).Cmp(base(1_000, 1_000_000, 5_000_000)) > 0, "increasing in reserveOut")
	require.True(t, base(1_000, 2_000_000, 5_000_000).Cmp(base(1_000, 1_000_000, 5_000_000)) < 0, "decreasing in reserveIn")
}

func TestPriceImpactBps(t *testing.T) {
	// a tiny trade only pays the pool fee
	reserve := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	small := PriceImpactBps(big.NewInt(1_000_000_000), reserve, reserve, DefaultFeeBps)
	assert.Equal(t, int64(30), small.Int64())

	// a trade of 10% of the pool moves the price noticeably further
	large := PriceImpactBps(big.NewInt(100_000), big.NewInt(1_000_000), big.NewInt(1_000_000), DefaultFeeBps)
	assert.Greater(t, large.Int64(), int64(900))

	assert.Equal(t, 0, PriceImpactBps(big.NewInt(1), big.NewInt(0), big.NewInt(0), DefaultFeeBps).Sign())
}
