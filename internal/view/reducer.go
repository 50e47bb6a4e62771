package view

import (
	"strings"

	"github.com/dimmy-bit/MONOSWAP/internal/service"
)

// ReduceSwap returns the swap screen after ev. s is not modified.
func ReduceSwap(s SwapState, ev Event) SwapState {
	switch ev := ev.(type) {
	case AmountChanged:
		if s.Busy || ev.Side != SideIn {
			return s
		}
		s.In.Amount = strings.TrimSpace(ev.Amount)
		return s.invalidate()

	case TokenSelected:
		if s.Busy {
			return s
		}
		symbol := strings.ToUpper(ev.Symbol)
		switch {
		case ev.Side == SideIn && symbol != s.Out.Symbol:
			s.In.Symbol = symbol
		case ev.Side == SideOut && symbol != s.In.Symbol:
			s.Out.Symbol = symbol
		default:
			return s
		}
		return s.invalidate()

	case SlippageChanged:
		if s.Busy {
			return s
		}
		s.Slippage = ev.Slippage
		return s.invalidate()

	case TokensSwitched:
		if s.Busy {
			return s
		}
		populated := s.In.Amount != "" && s.Out.Amount != ""
		s.In, s.Out = s.Out, s.In
		if !populated {
			return s.invalidate()
		}
		s.Quote = nil
		s.Error = ""
		s.Settled = s.QuoteKey()
		return s

	case QuoteResolved:
		if ev.Key != s.QuoteKey() {
			return s
		}
		q := ev.Quote
		s.Quote = &q
		s.Out.Amount = q.EstimatedOutput
		s.Error = ""
		s.Settled = ev.Key
		return s

	case QuoteFailed:
		if ev.Key != s.QuoteKey() {
			return s
		}
		s.Quote = nil
		s.Out.Amount = ""
		s.Error = ev.Message
		s.Settled = ev.Key
		return s

	case TxSucceeded:
		s.form = s.form.finish(ev.State, true)
		s.In.Amount, s.Out.Amount = "", ""
		s.Quote = nil
		s.Settled = s.QuoteKey()
		return s
	}

	s.form = s.form.reduce(ev)
	return s
}

func (s SwapState) invalidate() SwapState {
	s.Quote = nil
	s.Error = ""
	if key := s.QuoteKey(); !key.Quotable() {
		s.Out.Amount = ""
		s.Settled = key
	}
	return s
}

// ReduceLiquidity returns the liquidity screen after ev. s is not modified.
func ReduceLiquidity(s LiquidityState, ev Event) LiquidityState {
	switch ev := ev.(type) {
	case AmountChanged:
		if s.Busy {
			return s
		}
		amount := strings.TrimSpace(ev.Amount)
		if ev.Side == SideB {
			s.B.Amount = amount
			return s
		}
		s.A.Amount = amount
		return s.invalidate()

	case TokenSelected:
		if s.Busy {
			return s
		}
		symbol := strings.ToUpper(ev.Symbol)
		switch {
		case ev.Side == SideA && symbol != s.B.Symbol:
			s.A.Symbol = symbol
		case ev.Side == SideB && symbol != s.A.Symbol:
			s.B.Symbol = symbol
		default:
			return s
		}
		return s.invalidate()

	case SlippageChanged:
		if s.Busy {
			return s
		}
		s.Slippage = ev.Slippage
		return s.invalidate()

	case TokensSwitched:
		return s

	case QuoteResolved:
		if ev.Key != s.QuoteKey() {
			return s
		}
		q := ev.Quote
		s.Quote = &q
		s.B.Amount = q.EstimatedOutput
		s.Error = ""
		s.Settled = ev.Key
		return s

	case QuoteFailed:
		if ev.Key != s.QuoteKey() {
			return s
		}
		s.Quote = nil
		s.B.Amount = ""
		s.Error = ev.Message
		s.Settled = ev.Key
		return s

	case TxSucceeded:
		s.form = s.form.finish(ev.State, true)
		s.A.Amount, s.B.Amount = "", ""
		s.Quote = nil
		s.Settled = s.QuoteKey()
		return s
	}

	s.form = s.form.reduce(ev)
	return s
}

func (s LiquidityState) invalidate() LiquidityState {
	s.Quote = nil
	s.Error = ""
	if key := s.QuoteKey(); !key.Quotable() {
		s.B.Amount = ""
		s.Settled = key
	}
	return s
}

// reduce handles the events both screens treat alike.
func (f form) reduce(ev Event) form {
	switch ev := ev.(type) {
	case BalancesUpdated:
		return f.withBalances(ev.Balances)
	case TxStarted:
		if f.Busy {
			return f
		}
		f.Busy = true
		f.Error = ""
		f.Tx = nil
	case TxProgress:
		if !f.Busy {
			return f
		}
		st := ev.State
		f.Tx = &st
	case TxFailed:
		f = f.finish(ev.State, false)
		f.Error = ev.State.Message
	case TxDismissed:
		if !f.Busy {
			f.Tx = nil
		}
	}
	return f
}

func (f form) finish(st service.TxState, ok bool) form {
	f.Busy = false
	f.Tx = &st
	if ok {
		f.Error = ""
	}
	return f
}
