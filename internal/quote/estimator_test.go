package quote

import (
	"math/big"
	"testing"

	"github.com/dimmy-bit/MONOSWAP/internal/token"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBigIntFromString(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("failed to set string for big.Int")
	}
	return n
}

func mustToken(t *testing.T, symbol string) token.Token {
	t.Helper()
	tok, err := token.DefaultRegistry().Lookup(symbol)
	require.NoError(t, err)
	return tok
}

func newTestEstimator() *Estimator {
	return NewEstimator(30, DefaultRatioTable())
}

func TestEstimate_InitialRatio(t *testing.T) {
	e := newTestEstimator()

	testCases := []struct {
		name     string
		in, out  string
		amount   string
		pool     Pool
		expected string
	}{
		{name: "native to stable without pool", in: "MON", out: "USDC", amount: "2", expected: "10000"},
		{name: "native to stable with empty pool", in: "MON", out: "USDT", amount: "2", pool: Pool{Exists: true, ReserveIn: big.NewInt(0), ReserveOut: big.NewInt(0)}, expected: "10000"},
		{name: "stable to native", in: "USDC", out: "MON", amount: "2500", expected: "0.5"},
		{name: "stable to native truncates", in: "USDT", out: "MON", amount: "1", expected: "0.0002"},
		{name: "stable to stable", in: "USDC", out: "USDT", amount: "100", expected: "100"},
		{name: "other pairs default to one to one", in: "WMON", out: "MON", amount: "3.25", expected: "3.25"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := e.Estimate(Request{In: mustToken(t, tc.in), Out: mustToken(t, tc.out), Amount: tc.amount, Slippage: "0.5"}, tc.pool)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, q.EstimatedOutput)
			assert.Equal(t, SourceInitialRatio, q.Source)
			assert.Equal(t, "0", q.PriceImpact)
		})
	}
}

func TestEstimate_Pool(t *testing.T) {
	e := newTestEstimator()

	// 100 MON : 500,000 USDC
	pool := Pool{
		Exists:     true,
		ReserveIn:  newBigIntFromString("100000000000000000000"),
		ReserveOut: big.NewInt(500_000_000_000),
	}

	q, err := e.Estimate(Request{In: mustToken(t, "MON"), Out: mustToken(t, "USDC"), Amount: "1.5", Slippage: "1"}, pool)
	require.NoError(t, err)
	assert.Equal(t, SourcePool, q.Source)
	assert.Equal(t, "7500", q.EstimatedOutput)
	assert.Equal(t, "7425", q.MinimumReceived)
	assert.Equal(t, "0.0045", q.Fee)
	assert.NotEqual(t, "0", q.PriceImpact)

	// reverse direction truncates to six places for an 18 decimal token
	reverse := Pool{Exists: true, ReserveIn: pool.ReserveOut, ReserveOut: pool.ReserveIn}
	q, err = e.Estimate(Request{In: mustToken(t, "USDC"), Out: mustToken(t, "MON"), Amount: "1", Slippage: "0.5"}, reverse)
	require.NoError(t, err)
	assert.Equal(t, "0.0002", q.EstimatedOutput)
}

func TestEstimate_PoolMatchesRatio(t *testing.T) {
	e := newTestEstimator()
	usdc, usdt := mustToken(t, "USDC"), mustToken(t, "USDT")

	for _, reserves := range [][2]int64{{1_000_000, 3_000_000}, {7_777_777, 1_234_567}, {10, 10}} {
		pool := Pool{Exists: true, ReserveIn: big.NewInt(reserves[0]), ReserveOut: big.NewInt(reserves[1])}
		q, err := e.Estimate(Request{In: usdc, Out: usdt, Amount: "12.345678", Slippage: "0.5"}, pool)
		require.NoError(t, err)

		in := big.NewInt(12_345_678)
		expected := new(big.Int).Mul(in, pool.ReserveOut)
		expected.Div(expected, pool.ReserveIn)
		assert.True(t, decimal.NewFromBigInt(expected, -6).Equal(decimal.RequireFromString(q.EstimatedOutput)), "reserves %v", reserves)
	}
}

func TestEstimate_MinimumReceived(t *testing.T) {
	e := newTestEstimator()
	usdc, usdt := mustToken(t, "USDC"), mustToken(t, "USDT")

	expected := map[string]string{
		"0.5": "99.5",
		"1":   "99",
		"2":   "98",
		"3":   "97",
	}
	for slippage, want := range expected {
		q, err := e.Estimate(Request{In: usdc, Out: usdt, Amount: "100", Slippage: slippage}, Pool{})
		require.NoError(t, err)
		assert.Equal(t, "100", q.EstimatedOutput)
		assert.Equal(t, want, q.MinimumReceived, "slippage %s", slippage)
	}
}

func TestEstimate_FeeIndependentOfPool(t *testing.T) {
	e := newTestEstimator()
	mon, usdc := mustToken(t, "MON"), mustToken(t, "USDC")
	req := Request{In: mon, Out: usdc, Amount: "2", Slippage: "0.5"}

	withoutPool, err := e.Estimate(req, Pool{})
	require.NoError(t, err)
	withPool, err := e.Estimate(req, Pool{Exists: true, ReserveIn: big.NewInt(1e18), ReserveOut: big.NewInt(1e6)})
	require.NoError(t, err)

	assert.Equal(t, "0.006", withoutPool.Fee)
	assert.Equal(t, withoutPool.Fee, withPool.Fee)
}

func TestEstimate_NoQuote(t *testing.T) {
	e := newTestEstimator()
	mon, usdc := mustToken(t, "MON"), mustToken(t, "USDC")

	for _, amount := range []string{"", "0", "-1", "abc", "0.0", "1e20000000", "1e-20000000"} {
		_, err := e.Estimate(Request{In: mon, Out: usdc, Amount: amount, Slippage: "0.5"}, Pool{})
		assert.ErrorIs(t, err, ErrNoQuote, "amount %q", amount)
	}

	// below one base unit of a six decimal token
	_, err := e.Estimate(Request{In: usdc, Out: mon, Amount: "0.0000001", Slippage: "0.5"}, Pool{})
	assert.ErrorIs(t, err, ErrNoQuote)
	_, err = e.Estimate(Request{In: usdc, Out: mon, Amount: "0.0000001", Slippage: "0.5"}, Pool{Exists: true, ReserveIn: big.NewInt(1e6), ReserveOut: big.NewInt(1e18)})
	assert.ErrorIs(t, err, ErrNoQuote)

	q, err := e.Estimate(Request{In: usdc, Out: mon, Amount: "0.000001", Slippage: "0.5"}, Pool{})
	require.NoError(t, err)
	assert.Equal(t, "0", q.EstimatedOutput)
}

func TestEstimate_InvalidInput(t *testing.T) {
	e := newTestEstimator()
	mon, usdc := mustToken(t, "MON"), mustToken(t, "USDC")

	_, err := e.Estimate(Request{In: mon, Out: usdc, Amount: "1", Slippage: "100"}, Pool{})
	assert.ErrorIs(t, err, ErrInvalidSlippage)

	_, err = e.Estimate(Request{In: mon, Out: usdc, Amount: "1", Slippage: "-1"}, Pool{})
	assert.ErrorIs(t, err, ErrInvalidSlippage)

	_, err = e.Estimate(Request{In: mon, Out: mon, Amount: "1", Slippage: "0.5"}, Pool{})
	assert.ErrorIs(t, err, ErrSameToken)
}

func TestRatioTable_CustomRate(t *testing.T) {
	r := RatioTable{NativeStable: decimal.NewFromInt(4000)}
	out := r.Convert(decimal.NewFromInt(2), token.ClassNative, token.ClassStable)
	assert.True(t, out.Equal(decimal.NewFromInt(8000)))

	// a non-positive rate falls back to the default
	out = RatioTable{}.Convert(decimal.NewFromInt(1), token.ClassNative, token.ClassStable)
	assert.True(t, out.Equal(DefaultNativeStableRate))
}
