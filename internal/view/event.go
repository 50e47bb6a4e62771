package view

import (
	"errors"
	"fmt"

	"github.com/dimmy-bit/MONOSWAP/internal/quote"
	"github.com/dimmy-bit/MONOSWAP/internal/service"
)

// Side selects one of the two token fields of a screen.
type Side int

const (
	SideIn Side = iota
	SideOut
)

// The liquidity screen calls its fields A and B.
const (
	SideA = SideIn
	SideB = SideOut
)

var ErrUnknownEvent = errors.New("unknown event")

// Event is an input to a reducer.
type Event interface {
	event()
}

// AmountChanged is typed input into an amount field.
type AmountChanged struct {
	Side   Side
	Amount string
}

// TokenSelected picks a token for a field.
type TokenSelected struct {
	Side   Side
	Symbol string
}

// SlippageChanged sets the slippage tolerance percentage.
type SlippageChanged struct {
	Slippage string
}

// TokensSwitched exchanges the input and output fields.
type TokensSwitched struct{}

// QuoteResolved delivers a quote computed for Key.
type QuoteResolved struct {
	Key   QuoteKey
	Quote quote.Quote
}

// QuoteFailed reports that the quote for Key could not be computed.
type QuoteFailed struct {
	Key     QuoteKey
	Message string
}

// BalancesUpdated carries display balances by token symbol.
type BalancesUpdated struct {
	Balances map[string]string
}

// TxStarted marks the start of a submission.
type TxStarted struct{}

// TxProgress is an intermediate status of the pending submission.
type TxProgress struct {
	State service.TxState
}

// TxSucceeded ends the pending submission successfully.
type TxSucceeded struct {
	State service.TxState
}

// TxFailed ends the pending submission with an error.
type TxFailed struct {
	State service.TxState
}

// TxDismissed closes the status banner.
type TxDismissed struct{}

func (AmountChanged) event()   {}
func (TokenSelected) event()   {}
func (SlippageChanged) event() {}
func (TokensSwitched) event()  {}
func (QuoteResolved) event()   {}
func (QuoteFailed) event()     {}
func (BalancesUpdated) event() {}
func (TxStarted) event()       {}
func (TxProgress) event()      {}
func (TxSucceeded) event()     {}
func (TxFailed) event()        {}
func (TxDismissed) event()     {}

// ParseSide accepts "in", "out", "a" and "b".
func ParseSide(s string) (Side, error) {
	switch s {
	case "in", "a", "A":
		return SideIn, nil
	case "out", "b", "B":
		return SideOut, nil
	}
	return 0, fmt.Errorf("%w: side %q", ErrUnknownEvent, s)
}

// UserEvent builds one of the events a user can trigger directly.
// Kind is one of amount, token, slippage, switch or dismiss.
func UserEvent(kind, side, value string) (Event, error) {
	switch kind {
	case "amount", "token":
		s, err := ParseSide(side)
		if err != nil {
			return nil, err
		}
		if kind == "amount" {
			return AmountChanged{Side: s, Amount: value}, nil
		}
		return TokenSelected{Side: s, Symbol: value}, nil
	case "slippage":
		return SlippageChanged{Slippage: value}, nil
	case "switch":
		return TokensSwitched{}, nil
	case "dismiss":
		return TxDismissed{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, kind)
}
