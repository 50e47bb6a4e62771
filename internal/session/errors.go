package session

import "errors"

var (
	ErrNotFound      = errors.New("session not found")
	ErrClosed        = errors.New("session is closed")
	ErrUnknownKind   = errors.New("unknown session kind")
	ErrUnknownAction = errors.New("unknown submit action")
	ErrNothingToSend = errors.New("please enter an amount")
	ErrTooMany       = errors.New("too many open sessions")
)
