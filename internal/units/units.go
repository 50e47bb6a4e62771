// Package units converts between user-facing decimal amounts and the integer
// base units used on-chain.
package units

import (
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxDisplayPlaces caps the fractional digits shown for any amount.
	MaxDisplayPlaces = 6
	// maxCoefficientBits bounds the significant digits of an amount to what
	// a uint256 holds.
	maxCoefficientBits = 256
	// maxExponent bounds the decimal exponent of an amount in both
	// directions.
	maxExponent = 2*MaxDisplayPlaces + 78
)

var (
	ErrEmptyAmount       = errors.New("amount is empty")
	ErrInvalidAmount     = errors.New("amount is not a number")
	ErrNonPositiveAmount = errors.New("amount must be greater than zero")
)

// Parse reads a decimal amount as typed by a user. Amounts whose exponent
// or significant digits are out of range are rejected as ErrInvalidAmount.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrEmptyAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.Coefficient().BitLen() > maxCoefficientBits {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParsePositive is Parse restricted to amounts strictly above zero.
func ParsePositive(s string) (decimal.Decimal, error) {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrNonPositiveAmount
	}
	return d, nil
}

// ToBase scales d by 10^decimals, dropping any precision the token cannot
// represent.
func ToBase(d decimal.Decimal, decimals uint8) *big.Int {
	return d.Shift(int32(decimals)).BigInt()
}

// FromBase turns a base-unit integer back into a decimal token amount.
func FromBase(v *big.Int, decimals uint8) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -int32(decimals))
}

// DisplayPlaces is the number of fractional digits shown for a token.
func DisplayPlaces(decimals uint8) int32 {
	if int32(decimals) < MaxDisplayPlaces {
		return int32(decimals)
	}
	return MaxDisplayPlaces
}

// Display truncates d to the token's display precision.
func Display(d decimal.Decimal, decimals uint8) string {
	return d.Truncate(DisplayPlaces(decimals)).String()
}
