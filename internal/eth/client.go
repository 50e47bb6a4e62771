// Package eth dials the JSON-RPC node.
package eth

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
)

const dialTimeout = 15 * time.Second

// ErrWrongChain is returned when the node serves a different chain than the
// one configured.
var ErrWrongChain = errors.New("node is on a different chain")

// ChainIDer is the part of ethclient.Client VerifyChain uses.
type ChainIDer interface {
	ChainID(ctx context.Context) (*big.Int, error)
}

// Dial connects to url and checks that the node serves chainID. A nil
// chainID skips the check.
func Dial(ctx context.Context, url string, chainID *big.Int) (*ethclient.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	client, err := ethclient.DialContext(ctx, url)
	if err != nil {
		return nil, err
	}
	if chainID == nil {
		return client, nil
	}
	if err := VerifyChain(ctx, client, chainID); err != nil {
		client.Close()
		return nil, err
	}
	return client, nil
}

// VerifyChain compares the node's chain id with want.
func VerifyChain(ctx context.Context, c ChainIDer, want *big.Int) error {
	got, err := c.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("read chain id: %w", err)
	}
	if got.Cmp(want) != 0 {
		return fmt.Errorf("%w: got %s, want %s", ErrWrongChain, got, want)
	}
	return nil
}
