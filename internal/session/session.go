// Package session keeps per-client swap and liquidity screens alive on the
// server: it serializes their events, recomputes quotes when inputs change
// and refreshes balances while a wallet is attached.
package session

import (
	"context"
	"errors"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/dimmy-bit/MONOSWAP/internal/poller"
	"github.com/dimmy-bit/MONOSWAP/internal/quote"
	"github.com/dimmy-bit/MONOSWAP/internal/service"
	"github.com/dimmy-bit/MONOSWAP/internal/token"
	"github.com/dimmy-bit/MONOSWAP/internal/units"
	"github.com/dimmy-bit/MONOSWAP/internal/view"
)

// Kind is the screen a session drives.
type Kind string

const (
	KindSwap      Kind = "swap"
	KindLiquidity Kind = "liquidity"
)

// Submit actions.
const (
	ActionSwap       = "swap"
	ActionAdd        = "add"
	ActionCreatePool = "create-pool"
)

// Quoter prices a request.
type Quoter interface {
	Quote(ctx context.Context, req quote.Request) (quote.Quote, error)
}

// Swapper runs swap workflows.
type Swapper interface {
	Swap(ctx context.Context, req service.SwapRequest, report service.Reporter) (service.TxState, error)
	CreatePool(ctx context.Context, a, b token.Token, report service.Reporter) (service.TxState, error)
}

// LiquidityAdder runs add-liquidity workflows.
type LiquidityAdder interface {
	AddLiquidity(ctx context.Context, req service.LiquidityRequest, report service.Reporter) (service.TxState, error)
	CreatePoolAndAdd(ctx context.Context, req service.LiquidityRequest, report service.Reporter) (service.TxState, error)
}

// BalanceReader reads wallet balances.
type BalanceReader interface {
	Balance(ctx context.Context, t token.Token, owner common.Address) (*big.Int, error)
}

// Snapshot is the externally visible state of a session.
type Snapshot struct {
	ID    uuid.UUID      `json:"id"`
	Kind  Kind           `json:"kind"`
	Owner common.Address `json:"owner"`
	State any            `json:"state"`
}

// pollKey is everything the balance poller depends on.
type pollKey struct {
	owner common.Address
	a, b  string
}

// Session is one open screen.
type Session struct {
	id     uuid.UUID
	kind   Kind
	deps   *Deps
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	closed   bool
	lastSeen time.Time
	owner    common.Address
	swap     view.SwapState
	liq      view.LiquidityState
	inflight view.QuoteKey

	pollMu  sync.Mutex
	polling pollKey
	poller  *poller.Poller[map[string]string]
}

func newSession(deps *Deps, kind Kind, owner common.Address, a, b token.Token) *Session {
	id := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:     id,
		kind:   kind,
		deps:   deps,
		logger: deps.Logger.With("session", id.String(), "kind", string(kind)),
		ctx:      ctx,
		cancel:   cancel,
		lastSeen: time.Now(),
		owner:    owner,
		poller:   poller.New[map[string]string](deps.Logger, deps.Metrics, deps.PollInterval),
	}
	if kind == KindSwap {
		s.swap = view.NewSwapState(a.Symbol, b.Symbol)
	} else {
		s.liq = view.NewLiquidityState(a.Symbol, b.Symbol)
	}
	return s
}

// ID is the session identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// Kind is the screen the session drives.
func (s *Session) Kind() Kind { return s.kind }

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	return s.snapshotLocked()
}

// idle reports whether s went unused for at least ttl before now. A session
// with a transaction in flight is never idle.
func (s *Session) idle(now time.Time, ttl time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.busyLocked() {
		return false
	}
	return now.Sub(s.lastSeen) >= ttl
}

func (s *Session) busyLocked() bool {
	if s.kind == KindSwap {
		return s.swap.Busy
	}
	return s.liq.Busy
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{ID: s.id, Kind: s.kind, Owner: s.owner}
	if s.kind == KindSwap {
		snap.State = s.swap
	} else {
		snap.State = s.liq
	}
	return snap
}

// Dispatch applies a user event and starts any work it calls for.
func (s *Session) Dispatch(ev view.Event) (Snapshot, error) {
	if sel, ok := ev.(view.TokenSelected); ok {
		if _, err := s.deps.Registry.Lookup(sel.Symbol); err != nil {
			return Snapshot{}, err
		}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	s.lastSeen = time.Now()
	s.applyLocked(ev)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.syncPoller()
	return snap, nil
}

// SetOwner attaches a wallet. The zero address detaches it and stops
// balance polling.
func (s *Session) SetOwner(owner common.Address) (Snapshot, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Snapshot{}, ErrClosed
	}
	s.lastSeen = time.Now()
	s.owner = owner
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.syncPoller()
	return snap, nil
}

// applyLocked reduces ev and launches a quote if the new inputs need one.
func (s *Session) applyLocked(ev view.Event) {
	var (
		key  view.QuoteKey
		need bool
	)
	if s.kind == KindSwap {
		s.swap = view.ReduceSwap(s.swap, ev)
		key, need = s.swap.QuoteKey(), s.swap.NeedsQuote()
	} else {
		s.liq = view.ReduceLiquidity(s.liq, ev)
		key, need = s.liq.QuoteKey(), s.liq.NeedsQuote()
	}
	if !need {
		s.inflight = view.QuoteKey{}
		return
	}
	if key == s.inflight {
		return
	}
	s.inflight = key
	s.wg.Add(1)
	go s.fetchQuote(key)
}

func (s *Session) fetchQuote(key view.QuoteKey) {
	defer s.wg.Done()

	ev := s.quote(key)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	if s.inflight == key {
		s.inflight = view.QuoteKey{}
	}
	s.applyLocked(ev)
}

func (s *Session) quote(key view.QuoteKey) view.Event {
	in, err := s.deps.Registry.Lookup(key.In)
	if err != nil {
		return view.QuoteFailed{Key: key, Message: err.Error()}
	}
	out, err := s.deps.Registry.Lookup(key.Out)
	if err != nil {
		return view.QuoteFailed{Key: key, Message: err.Error()}
	}

	q, err := s.deps.Quotes.Quote(s.ctx, quote.Request{In: in, Out: out, Amount: key.Amount, Slippage: key.Slippage})
	switch {
	case err == nil:
		return view.QuoteResolved{Key: key, Quote: q}
	case errors.Is(err, quote.ErrNoQuote):
		return view.QuoteFailed{Key: key}
	case errors.Is(err, quote.ErrQuoteFailed):
		s.logger.Warn("quote failed", "error", err)
		return view.QuoteFailed{Key: key, Message: quote.ErrQuoteFailed.Error()}
	default:
		return view.QuoteFailed{Key: key, Message: err.Error()}
	}
}

func (s *Session) currentPollKey() pollKey {
	if s.owner == (common.Address{}) {
		return pollKey{}
	}
	if s.kind == KindSwap {
		return pollKey{owner: s.owner, a: s.swap.In.Symbol, b: s.swap.Out.Symbol}
	}
	return pollKey{owner: s.owner, a: s.liq.A.Symbol, b: s.liq.B.Symbol}
}

// syncPoller restarts balance polling when its dependencies changed.
func (s *Session) syncPoller() {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()

	s.mu.Lock()
	key := s.currentPollKey()
	closed := s.closed
	s.mu.Unlock()

	if closed || key == s.polling {
		return
	}
	s.poller.Release()
	s.polling = key
	if key == (pollKey{}) {
		return
	}
	s.logger.Debug("balance polling started", "owner", key.owner.Hex(), "a", key.a, "b", key.b)
	s.poller.Acquire(s.ctx, s.fetchBalances(key), s.applyBalances(key))
}

func (s *Session) fetchBalances(key pollKey) func(context.Context) (map[string]string, error) {
	return func(ctx context.Context) (map[string]string, error) {
		out := make(map[string]string, 2)
		for _, symbol := range []string{key.a, key.b} {
			t, err := s.deps.Registry.Lookup(symbol)
			if err != nil {
				return nil, err
			}
			raw, err := s.deps.Balances.Balance(ctx, t, key.owner)
			if err != nil {
				return nil, err
			}
			out[t.Symbol] = units.Display(units.FromBase(raw, t.Decimals), t.Decimals)
		}
		return out, nil
	}
}

func (s *Session) applyBalances(key pollKey) func(map[string]string) {
	return func(balances map[string]string) {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.closed || s.currentPollKey() != key {
			return
		}
		s.applyLocked(view.BalancesUpdated{Balances: balances})
	}
}

// Submit starts the transaction workflow named by action in the background.
// It fails with service.ErrTransactionPending while one is running.
func (s *Session) Submit(action string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Snapshot{}, ErrClosed
	}
	s.lastSeen = time.Now()

	run, err := s.prepareLocked(action)
	if err != nil {
		return Snapshot{}, err
	}
	s.applyLocked(view.TxStarted{})

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		state, err := run(s.ctx, s.report)
		s.finish(state, err)
	}()
	return s.snapshotLocked(), nil
}

type workflow func(ctx context.Context, report service.Reporter) (service.TxState, error)

func (s *Session) prepareLocked(action string) (workflow, error) {
	if s.busyLocked() {
		return nil, service.ErrTransactionPending
	}
	if s.kind == KindSwap {
		return s.prepareSwap(action)
	}
	return s.prepareLiquidity(action)
}

func (s *Session) prepareSwap(action string) (workflow, error) {
	st := s.swap
	in, err := s.deps.Registry.Lookup(st.In.Symbol)
	if err != nil {
		return nil, err
	}
	out, err := s.deps.Registry.Lookup(st.Out.Symbol)
	if err != nil {
		return nil, err
	}

	switch action {
	case ActionSwap, "":
		if st.In.Amount == "" {
			return nil, ErrNothingToSend
		}
		if st.Quote != nil && !st.Quote.PoolExists {
			return nil, quote.ErrPoolMissing
		}
		req := service.SwapRequest{In: in, Out: out, Amount: st.In.Amount, Slippage: st.Slippage}
		return func(ctx context.Context, report service.Reporter) (service.TxState, error) {
			return s.deps.Swaps.Swap(ctx, req, report)
		}, nil
	case ActionCreatePool:
		return func(ctx context.Context, report service.Reporter) (service.TxState, error) {
			return s.deps.Swaps.CreatePool(ctx, in, out, report)
		}, nil
	}
	return nil, ErrUnknownAction
}

func (s *Session) prepareLiquidity(action string) (workflow, error) {
	st := s.liq
	a, err := s.deps.Registry.Lookup(st.A.Symbol)
	if err != nil {
		return nil, err
	}
	b, err := s.deps.Registry.Lookup(st.B.Symbol)
	if err != nil {
		return nil, err
	}
	if st.A.Amount == "" || st.B.Amount == "" {
		return nil, service.ErrMissingAmounts
	}

	req := service.LiquidityRequest{
		A:        a,
		B:        b,
		AmountA:  st.A.Amount,
		AmountB:  st.B.Amount,
		Slippage: st.Slippage,
		BalanceA: st.Balances[a.Symbol],
		BalanceB: st.Balances[b.Symbol],
	}
	switch action {
	case ActionAdd, "":
		return func(ctx context.Context, report service.Reporter) (service.TxState, error) {
			return s.deps.Liquidity.AddLiquidity(ctx, req, report)
		}, nil
	case ActionCreatePool:
		return func(ctx context.Context, report service.Reporter) (service.TxState, error) {
			return s.deps.Liquidity.CreatePoolAndAdd(ctx, req, report)
		}, nil
	}
	return nil, ErrUnknownAction
}

func (s *Session) report(st service.TxState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.applyLocked(view.TxProgress{State: st})
}

func (s *Session) finish(st service.TxState, err error) {
	if err != nil && st.Status == "" {
		st = service.TxState{Status: service.TxError, Message: err.Error()}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.lastSeen = time.Now()
	if err != nil {
		s.applyLocked(view.TxFailed{State: st})
	} else {
		s.applyLocked(view.TxSucceeded{State: st})
	}
	s.mu.Unlock()
	s.syncPoller()
}

// Close stops polling and background work. No state changes are applied
// afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.pollMu.Lock()
	s.poller.Release()
	s.polling = pollKey{}
	s.pollMu.Unlock()
	s.wg.Wait()
	s.logger.Debug("session closed")
}
