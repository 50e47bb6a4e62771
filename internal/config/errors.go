package config

import "errors"

// ErrMissingRPCEndpoint indicates that the required RPC_URL variable is
// not set in the environment.
var ErrMissingRPCEndpoint = errors.New("missing RPC_URL environment variable")

// ErrInvalidValue wraps a variable that is set but cannot be parsed.
var ErrInvalidValue = errors.New("invalid environment variable")
