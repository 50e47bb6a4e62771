package chain

import (
	"context"
	"errors"
	"time"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// DefaultReceiptPollInterval is how often Wait asks the node for a receipt.
const DefaultReceiptPollInterval = time.Second

// TxHandle is a submitted transaction.
type TxHandle interface {
	Hash() common.Hash
	// Wait blocks until the transaction is mined. A reverted transaction
	// or an expired ctx yields a classified *Error.
	Wait(ctx context.Context) error
}

// ReceiptFetcher is the subset of ethclient.Client Wait needs.
type ReceiptFetcher interface {
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

type pendingTx struct {
	op       string
	hash     common.Hash
	receipts ReceiptFetcher
	interval time.Duration
}

func (p *pendingTx) Hash() common.Hash {
	return p.hash
}

func (p *pendingTx) Wait(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		receipt, err := p.receipts.TransactionReceipt(ctx, p.hash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusFailed {
				return &Error{Kind: KindReverted, Op: p.op, Err: errors.New("transaction " + p.hash.Hex() + " reverted")}
			}
			return nil
		case !errors.Is(err, ethereum.NotFound):
			return classify(p.op, err)
		}

		select {
		case <-ctx.Done():
			return classify(p.op, ctx.Err())
		case <-ticker.C:
		}
	}
}
