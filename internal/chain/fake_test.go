package chain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

var (
	testFactory = common.HexToAddress("0x00000000000000000000000000000000000fac70")
	testRouter  = common.HexToAddress("0x000000000000000000000000000000000000a0a7")
	testPair    = common.HexToAddress("0x0000000000000000000000000000000000000abc")
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type handlerFunc func(args []any) ([]any, error)

// fakeContract answers eth_call by decoding the selector against its ABI.
type fakeContract struct {
	abi      abi.ABI
	handlers map[string]handlerFunc
}

func (c *fakeContract) call(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, errors.New("short calldata")
	}
	method, err := c.abi.MethodById(data[:4])
	if err != nil {
		return nil, err
	}
	h, ok := c.handlers[method.Name]
	if !ok {
		return nil, fmt.Errorf("no handler for %s", method.Name)
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, err
	}
	out, err := h(args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(out...)
}

// revertError mimics a node's execution-reverted error with Error(string)
// revert data.
type revertError struct {
	reason string
}

func (e *revertError) Error() string  { return "execution reverted: " + e.reason }
func (e *revertError) ErrorCode() int { return 3 }
func (e *revertError) ErrorData() interface{} {
	stringType, _ := abi.NewType("string", "", nil)
	payload, _ := abi.Arguments{{Type: stringType}}.Pack(e.reason)
	selector := []byte{0x08, 0xc3, 0x79, 0xa0}
	return hexutil.Encode(append(selector, payload...))
}

// chainState is the fake world shared by the RPC service and the Go
// backend fake.
type chainState struct {
	mu        sync.Mutex
	contracts map[common.Address]*fakeContract
	balances  map[common.Address]*big.Int
}

func newChainState() *chainState {
	return &chainState{
		contracts: make(map[common.Address]*fakeContract),
		balances:  make(map[common.Address]*big.Int),
	}
}

func (s *chainState) deploy(addr common.Address, contractABI abi.ABI, handlers map[string]handlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts[addr] = &fakeContract{abi: contractABI, handlers: handlers}
}

func (s *chainState) call(to *common.Address, data []byte) ([]byte, error) {
	if to == nil {
		return nil, errors.New("missing to")
	}
	s.mu.Lock()
	c, ok := s.contracts[*to]
	s.mu.Unlock()
	if !ok {
		// calls to accounts without code return no data
		return nil, nil
	}
	return c.call(data)
}

// seedPair deploys a factory that knows a single pair and the pair itself.
func (s *chainState) seedPair(tokenA, tokenB, token0 common.Address, reserve0, reserve1 *big.Int) {
	s.deploy(testFactory, FactoryABI, map[string]handlerFunc{
		"getPair": func(args []any) ([]any, error) {
			a, b := args[0].(common.Address), args[1].(common.Address)
			if (a == tokenA && b == tokenB) || (a == tokenB && b == tokenA) {
				return []any{testPair}, nil
			}
			return []any{common.Address{}}, nil
		},
	})
	s.deploy(testPair, PairABI, map[string]handlerFunc{
		"getReserves": func([]any) ([]any, error) {
			return []any{reserve0, reserve1, uint32(0)}, nil
		},
		"token0": func([]any) ([]any, error) {
			return []any{token0}, nil
		},
	})
}

type callArgs struct {
	From  *common.Address `json:"from"`
	To    *common.Address `json:"to"`
	Input hexutil.Bytes   `json:"input"`
	Data  hexutil.Bytes   `json:"data"`
}

// fakeEthAPI is registered under the "eth" namespace of an in-process RPC
// server.
type fakeEthAPI struct {
	state *chainState
}

func (f *fakeEthAPI) Call(ctx context.Context, args callArgs, _ gethrpc.BlockNumberOrHash) (hexutil.Bytes, error) {
	data := args.Input
	if len(data) == 0 {
		data = args.Data
	}
	out, err := f.state.call(args.To, data)
	if err != nil {
		return nil, err
	}
	return hexutil.Bytes(out), nil
}

func (f *fakeEthAPI) GetBalance(ctx context.Context, addr common.Address, _ gethrpc.BlockNumberOrHash) (*hexutil.Big, error) {
	f.state.mu.Lock()
	defer f.state.mu.Unlock()
	if b, ok := f.state.balances[addr]; ok {
		return (*hexutil.Big)(b), nil
	}
	return (*hexutil.Big)(new(big.Int)), nil
}

func newInprocEthClient(t *testing.T, state *chainState) *ethclient.Client {
	t.Helper()
	srv := gethrpc.NewServer()
	// Register under the standard "eth" namespace so methods map to eth_*
	if err := srv.RegisterName("eth", &fakeEthAPI{state: state}); err != nil {
		t.Fatalf("register rpc service: %v", err)
	}
	c := gethrpc.DialInProc(srv)
	t.Cleanup(func() {
		c.Close()
		srv.Stop()
	})
	return ethclient.NewClient(c)
}

// fakeBackend implements Backend in-process for submitter tests.
type fakeBackend struct {
	state *chainState

	mu          sync.Mutex
	nonce       uint64
	sent        []*types.Transaction
	estimateErr error
	sendErr     error
	// revertOnMine marks transactions to these addresses as failed.
	revertOnMine map[common.Address]bool
	receipts     map[common.Hash]*types.Receipt
}

func newFakeBackend(state *chainState) *fakeBackend {
	return &fakeBackend{
		state:        state,
		revertOnMine: make(map[common.Address]bool),
		receipts:     make(map[common.Hash]*types.Receipt),
	}
}

func (b *fakeBackend) CallContract(ctx context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	return b.state.call(call.To, call.Data)
}

func (b *fakeBackend) BalanceAt(ctx context.Context, account common.Address, _ *big.Int) (*big.Int, error) {
	b.state.mu.Lock()
	defer b.state.mu.Unlock()
	if v, ok := b.state.balances[account]; ok {
		return v, nil
	}
	return new(big.Int), nil
}

func (b *fakeBackend) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.nonce, nil
}

func (b *fakeBackend) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return big.NewInt(50_000_000_000), nil
}

func (b *fakeBackend) EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error) {
	if b.estimateErr != nil {
		return 0, b.estimateErr
	}
	return 100_000, nil
}

func (b *fakeBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if b.sendErr != nil {
		return b.sendErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, tx)
	b.nonce++
	status := types.ReceiptStatusSuccessful
	if tx.To() != nil && b.revertOnMine[*tx.To()] {
		status = types.ReceiptStatusFailed
	}
	b.receipts[tx.Hash()] = &types.Receipt{Status: status, TxHash: tx.Hash()}
	return nil
}

func (b *fakeBackend) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if r, ok := b.receipts[hash]; ok {
		return r, nil
	}
	return nil, ethereum.NotFound
}

func (b *fakeBackend) sentTxs() []*types.Transaction {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*types.Transaction(nil), b.sent...)
}

// decodeCall returns the method name and arguments of tx's calldata.
func decodeCall(t *testing.T, contractABI abi.ABI, tx *types.Transaction) (string, []any) {
	t.Helper()
	method, err := contractABI.MethodById(tx.Data()[:4])
	if err != nil {
		t.Fatalf("decode selector: %v", err)
	}
	args, err := method.Inputs.Unpack(tx.Data()[4:])
	if err != nil {
		t.Fatalf("unpack %s: %v", method.Name, err)
	}
	return method.Name, args
}
