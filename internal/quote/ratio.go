package quote

import (
	"github.com/dimmy-bit/MONOSWAP/internal/token"
	"github.com/shopspring/decimal"
)

// DefaultNativeStableRate prices one native token in stable units when a pair
// has no liquidity yet.
var DefaultNativeStableRate = decimal.NewFromInt(5000)

// RatioTable prices pairs that have no pool or an empty one. It is a
// placeholder for seeding a pool, not a price oracle.
type RatioTable struct {
	NativeStable decimal.Decimal
}

// DefaultRatioTable returns the table with DefaultNativeStableRate.
func DefaultRatioTable() RatioTable {
	return RatioTable{NativeStable: DefaultNativeStableRate}
}

// Convert returns the amount of out equivalent to amount of in.
func (r RatioTable) Convert(amount decimal.Decimal, in, out token.Class) decimal.Decimal {
	rate := r.NativeStable
	if !rate.IsPositive() {
		rate = DefaultNativeStableRate
	}
	switch {
	case in == token.ClassNative && out == token.ClassStable:
		return amount.Mul(rate)
	case in == token.ClassStable && out == token.ClassNative:
		return amount.Div(rate)
	default:
		return amount
	}
}
