package chain

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rpc"
)

var (
	ErrPairNotFound     = errors.New("pair does not exist")
	ErrNoSigner         = errors.New("no signing key configured")
	ErrWrapNotSupported = errors.New("wrapping and unwrapping the native token is not supported")
	ErrSameToken        = errors.New("tokens are the same")
	ErrUnexpectedOutput = errors.New("unexpected contract output")
)

// ErrorKind is the closed set of failures a submission can end in.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindRejected
	KindInsufficientGas
	KindSlippageExceeded
	KindInsufficientBalance
	KindReverted
	KindTimeout
	KindPoolMissing
)

func (k ErrorKind) String() string {
	switch k {
	case KindRejected:
		return "rejected"
	case KindInsufficientGas:
		return "insufficient_gas"
	case KindSlippageExceeded:
		return "slippage_exceeded"
	case KindInsufficientBalance:
		return "insufficient_balance"
	case KindReverted:
		return "reverted"
	case KindTimeout:
		return "timeout"
	case KindPoolMissing:
		return "pool_missing"
	default:
		return "unknown"
	}
}

// Message is the user-facing text for k. KindUnknown has none; callers pick
// an operation-specific fallback.
func (k ErrorKind) Message() string {
	switch k {
	case KindRejected:
		return "Transaction rejected by user"
	case KindInsufficientGas:
		return "Insufficient MON for gas fees"
	case KindSlippageExceeded:
		return "The ratio of tokens is incorrect. Please adjust the amounts."
	case KindInsufficientBalance:
		return "Insufficient token balance"
	case KindReverted:
		return "Transaction reverted"
	case KindTimeout:
		return "Timed out waiting for transaction confirmation"
	case KindPoolMissing:
		return "Liquidity pool does not exist"
	default:
		return ""
	}
}

// Error is a classified chain failure.
type Error struct {
	Kind ErrorKind
	Op   string
	// Reason is the decoded revert reason, when the node returned one.
	Reason string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of a classified error, or KindUnknown.
func KindOf(err error) ErrorKind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindUnknown
}

// revertKinds maps router and pair revert reasons, without their contract
// prefix, to a kind.
var revertKinds = map[string]ErrorKind{
	"INSUFFICIENT_A_AMOUNT":         KindSlippageExceeded,
	"INSUFFICIENT_B_AMOUNT":         KindSlippageExceeded,
	"INSUFFICIENT_OUTPUT_AMOUNT":    KindSlippageExceeded,
	"EXCESSIVE_INPUT_AMOUNT":        KindSlippageExceeded,
	"K":                             KindSlippageExceeded,
	"TRANSFER_FROM_FAILED":          KindInsufficientBalance,
	"TRANSFER_FAILED":               KindInsufficientBalance,
	"ETH_TRANSFER_FAILED":           KindInsufficientBalance,
	"INSUFFICIENT_LIQUIDITY":        KindPoolMissing,
	"INSUFFICIENT_LIQUIDITY_MINTED": KindReverted,
	"EXPIRED":                       KindReverted,
	"PAIR_EXISTS":                   KindReverted,
	"IDENTICAL_ADDRESSES":           KindReverted,
	"ZERO_ADDRESS":                  KindReverted,
	"INVALID_PATH":                  KindReverted,
}

// insufficientFunds is the prefix of the txpool error for an account that
// cannot pay for gas plus value.
const insufficientFunds = "insufficient funds"

func revertKind(reason string) ErrorKind {
	short := reason
	if i := strings.LastIndex(reason, ": "); i >= 0 {
		short = reason[i+2:]
	}
	if k, ok := revertKinds[short]; ok {
		return k
	}
	return KindReverted
}

// revertReason extracts the Error(string) payload of a JSON-RPC revert.
func revertReason(err error) (string, bool) {
	var de rpc.DataError
	if !errors.As(err, &de) {
		return "", false
	}
	hexData, ok := de.ErrorData().(string)
	if !ok {
		return "", false
	}
	data, decErr := hexutil.Decode(hexData)
	if decErr != nil {
		return "", false
	}
	reason, unpackErr := abi.UnpackRevert(data)
	if unpackErr != nil {
		return "", false
	}
	return reason, true
}

// classify wraps err from op into an *Error. Already classified errors are
// returned unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *Error
	if errors.As(err, &ce) {
		return err
	}
	if reason, ok := revertReason(err); ok {
		return &Error{Kind: revertKind(reason), Op: op, Reason: reason, Err: err}
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &Error{Kind: KindTimeout, Op: op, Err: err}
	case errors.Is(err, ErrPairNotFound):
		return &Error{Kind: KindPoolMissing, Op: op, Err: err}
	case strings.Contains(err.Error(), insufficientFunds):
		return &Error{Kind: KindInsufficientGas, Op: op, Err: err}
	}
	return &Error{Kind: KindUnknown, Op: op, Err: err}
}
