package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/dimmy-bit/MONOSWAP/internal/chain"
	"github.com/dimmy-bit/MONOSWAP/internal/token"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustToken(t interface{ Fatalf(string, ...any) }, symbol string) token.Token {
	tok, err := token.DefaultRegistry().Lookup(symbol)
	if err != nil {
		t.Fatalf("lookup %s: %v", symbol, err)
	}
	return tok
}

type fakeReader struct {
	mu       sync.Mutex
	pair     common.Address
	reserves chain.Reserves
	balances map[string]*big.Int
	err      error
	reads    int
}

func (f *fakeReader) GetPair(_ context.Context, _, _ token.Token) (common.Address, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	return f.pair, f.err
}

func (f *fakeReader) GetReserves(_ context.Context, _, _ token.Token) (chain.Reserves, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return chain.Reserves{}, f.err
	}
	if f.pair == (common.Address{}) {
		return chain.Reserves{}, chain.ErrPairNotFound
	}
	return f.reserves, nil
}

func (f *fakeReader) Balance(_ context.Context, t token.Token, _ common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reads++
	if f.err != nil {
		return nil, f.err
	}
	if b, ok := f.balances[t.Symbol]; ok {
		return b, nil
	}
	return new(big.Int), nil
}

type fakeTx struct {
	hash common.Hash
	err  error
}

func (f *fakeTx) Hash() common.Hash { return f.hash }
func (f *fakeTx) Wait(context.Context) error { return f.err }

type fakeSubmitter struct {
	mu          sync.Mutex
	calls       []string
	createErr   error
	createWait  error
	addErr      error
	addWait     error
	swapErr     error
	swapWait    error
	gasLimit    uint64
	amountOut   string
	block       chan struct{}
	nextHashNum int64
}

func (f *fakeSubmitter) record(call string) common.Hash {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	f.nextHashNum++
	return common.BigToHash(big.NewInt(f.nextHashNum))
}

func (f *fakeSubmitter) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeSubmitter) From() common.Address {
	return common.HexToAddress("0x00000000000000000000000000000000000000aa")
}

func (f *fakeSubmitter) CreatePair(_ context.Context, _, _ token.Token) (chain.TxHandle, error) {
	h := f.record("createPair")
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &fakeTx{hash: h, err: f.createWait}, nil
}

func (f *fakeSubmitter) AddLiquidity(_ context.Context, _, _ token.Token, _, _, _ string, opts chain.Options) (chain.TxHandle, error) {
	h := f.record("addLiquidity")
	f.mu.Lock()
	f.gasLimit = opts.GasLimit
	f.mu.Unlock()
	if f.addErr != nil {
		return nil, f.addErr
	}
	return &fakeTx{hash: h, err: f.addWait}, nil
}

func (f *fakeSubmitter) Swap(ctx context.Context, _, _ token.Token, _, _ string) (chain.TxHandle, error) {
	h := f.record("swap")
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.swapErr != nil {
		return nil, f.swapErr
	}
	return &fakeTx{hash: h, err: f.swapWait}, nil
}

func (f *fakeSubmitter) GetAmountOut(_ context.Context, _ string, _, _ token.Token) (string, error) {
	f.record("getAmountOut")
	if f.amountOut == "" {
		return "", errors.New("no route")
	}
	return f.amountOut, nil
}

// recorder collects reported states.
type recorder struct {
	mu     sync.Mutex
	states []TxState
}

func (r *recorder) report(s TxState) {
	r.mu.Lock()
	r.states = append(r.states, s)
	r.mu.Unlock()
}

func (r *recorder) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.states))
	for i, s := range r.states {
		out[i] = s.Message
	}
	return out
}
