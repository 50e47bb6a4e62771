// Package view holds the immutable state of the swap and liquidity screens
// and the pure reducers that advance it.
package view

import (
	"maps"
	"strings"

	"github.com/dimmy-bit/MONOSWAP/internal/quote"
	"github.com/dimmy-bit/MONOSWAP/internal/service"
	"github.com/dimmy-bit/MONOSWAP/internal/units"
)

// DefaultSlippage is the initial slippage tolerance in percent.
const DefaultSlippage = "0.5"

// SlippageOptions are the presets offered by the screens.
var SlippageOptions = []string{"0.5", "1", "2", "3"}

// Field is one token input.
type Field struct {
	Symbol string `json:"symbol"`
	Amount string `json:"amount"`
}

// QuoteKey identifies the inputs a quote was computed from.
type QuoteKey struct {
	In       string `json:"in"`
	Out      string `json:"out"`
	Amount   string `json:"amount"`
	Slippage string `json:"slippage"`
}

// Quotable reports whether the key's amount can be priced at all.
func (k QuoteKey) Quotable() bool {
	_, err := units.ParsePositive(k.Amount)
	return err == nil
}

// form is the part shared by both screens.
type form struct {
	Slippage string            `json:"slippage"`
	Quote    *quote.Quote      `json:"quote,omitempty"`
	Error    string            `json:"error,omitempty"`
	Balances map[string]string `json:"balances"`
	Tx       *service.TxState  `json:"tx,omitempty"`
	Busy     bool              `json:"busy"`
	// Settled is the key the displayed amounts and quote are consistent
	// with.
	Settled QuoteKey `json:"-"`
}

// Balance is the display balance of symbol, "0" when unknown.
func (f form) Balance(symbol string) string {
	if b, ok := f.Balances[strings.ToUpper(symbol)]; ok {
		return b
	}
	return "0"
}

func (f form) withBalances(update map[string]string) form {
	merged := make(map[string]string, len(f.Balances)+len(update))
	maps.Copy(merged, f.Balances)
	for k, v := range update {
		merged[strings.ToUpper(k)] = v
	}
	f.Balances = merged
	return f
}

// SwapState is the swap screen.
type SwapState struct {
	form
	In  Field `json:"in"`
	Out Field `json:"out"`
}

// NewSwapState returns the initial swap screen for the in/out pair.
func NewSwapState(in, out string) SwapState {
	s := SwapState{
		form: form{Slippage: DefaultSlippage, Balances: map[string]string{}},
		In:   Field{Symbol: in},
		Out:  Field{Symbol: out},
	}
	s.Settled = s.QuoteKey()
	return s
}

// QuoteKey is the key of the quote the current inputs call for.
func (s SwapState) QuoteKey() QuoteKey {
	return QuoteKey{In: s.In.Symbol, Out: s.Out.Symbol, Amount: s.In.Amount, Slippage: s.Slippage}
}

// NeedsQuote reports whether a quote for QuoteKey is outstanding.
func (s SwapState) NeedsQuote() bool {
	return s.QuoteKey() != s.Settled
}

// LiquidityState is the add-liquidity screen. The B amount follows the A
// amount at the pool or initial ratio.
type LiquidityState struct {
	form
	A Field `json:"a"`
	B Field `json:"b"`
}

// NewLiquidityState returns the initial liquidity screen for the a/b pair.
func NewLiquidityState(a, b string) LiquidityState {
	s := LiquidityState{
		form: form{Slippage: DefaultSlippage, Balances: map[string]string{}},
		A:    Field{Symbol: a},
		B:    Field{Symbol: b},
	}
	s.Settled = s.QuoteKey()
	return s
}

// QuoteKey is the key of the quote the current inputs call for.
func (s LiquidityState) QuoteKey() QuoteKey {
	return QuoteKey{In: s.A.Symbol, Out: s.B.Symbol, Amount: s.A.Amount, Slippage: s.Slippage}
}

// NeedsQuote reports whether a quote for QuoteKey is outstanding.
func (s LiquidityState) NeedsQuote() bool {
	return s.QuoteKey() != s.Settled
}

// PoolExists reports whether the last quote found an existing pair.
func (s LiquidityState) PoolExists() bool {
	return s.Quote != nil && s.Quote.PoolExists
}
