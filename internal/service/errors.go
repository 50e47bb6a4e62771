package service

import (
	"errors"
	"fmt"

	"github.com/dimmy-bit/MONOSWAP/internal/chain"
)

var (
	ErrTransactionPending = errors.New("a transaction is already pending")
	ErrMissingAmounts     = errors.New("please enter both token amounts")
	ErrWalletNotConnected = errors.New("please connect your wallet first")
)

// InsufficientBalanceError is a local balance check failure.
type InsufficientBalanceError struct {
	Symbol string
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("Insufficient %s balance", e.Symbol)
}

// userMessage turns err into the text shown in a failed transaction banner.
// fallback is used for unclassified chain errors.
func userMessage(err error, fallback string) string {
	var balanceErr *InsufficientBalanceError
	if errors.As(err, &balanceErr) {
		return balanceErr.Error()
	}
	if msg := chain.KindOf(err).Message(); msg != "" {
		return msg
	}
	return fallback
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	var balanceErr *InsufficientBalanceError
	if errors.As(err, &balanceErr) {
		return chain.KindInsufficientBalance.String()
	}
	return chain.KindOf(err).String()
}
