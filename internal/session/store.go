package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/dimmy-bit/MONOSWAP/internal/metrics"
	"github.com/dimmy-bit/MONOSWAP/internal/quote"
	"github.com/dimmy-bit/MONOSWAP/internal/token"
)

// Default token pair of a new screen.
const (
	DefaultFirst  = "MON"
	DefaultSecond = "USDC"
)

// maxSweepInterval caps how long an expired session can outlive its TTL.
const maxSweepInterval = time.Minute

// Deps are the collaborators shared by every session.
type Deps struct {
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	Registry     *token.Registry
	Quotes       Quoter
	Swaps        Swapper
	Liquidity    LiquidityAdder
	Balances     BalanceReader
	PollInterval time.Duration
	// SessionTTL closes sessions left unused for this long. Zero keeps
	// them until closed explicitly.
	SessionTTL time.Duration
	// MaxSessions caps the open sessions. Zero means no cap.
	MaxSessions int
}

// Store holds the open sessions in memory.
type Store struct {
	deps *Deps

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewStore returns an empty Store. With a SessionTTL it also starts
// expiring idle sessions until CloseAll.
func NewStore(deps Deps) *Store {
	st := &Store{
		deps:     &deps,
		sessions: make(map[uuid.UUID]*Session),
	}
	if deps.SessionTTL > 0 {
		every := min(deps.SessionTTL/2, maxSweepInterval)
		if every <= 0 {
			every = deps.SessionTTL
		}
		var ctx context.Context
		ctx, st.cancel = context.WithCancel(context.Background())
		st.wg.Add(1)
		go st.sweep(ctx, every)
	}
	return st
}

// ParseKind accepts "swap" and "liquidity".
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindSwap, KindLiquidity:
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Open creates a session for kind. Empty symbols select the default pair.
// A non-zero owner starts balance polling right away.
func (st *Store) Open(kind Kind, owner common.Address, first, second string) (*Session, error) {
	if first == "" {
		first = DefaultFirst
	}
	if second == "" {
		second = DefaultSecond
	}
	a, err := st.deps.Registry.Lookup(first)
	if err != nil {
		return nil, err
	}
	b, err := st.deps.Registry.Lookup(second)
	if err != nil {
		return nil, err
	}
	if a.Symbol == b.Symbol {
		return nil, fmt.Errorf("%w: %s", quote.ErrSameToken, a.Symbol)
	}

	s := newSession(st.deps, kind, owner, a, b)

	st.mu.Lock()
	if st.deps.MaxSessions > 0 && len(st.sessions) >= st.deps.MaxSessions {
		st.mu.Unlock()
		s.cancel()
		return nil, ErrTooMany
	}
	st.sessions[s.id] = s
	st.mu.Unlock()

	st.deps.Metrics.SessionOpened()
	s.syncPoller()
	s.logger.Info("session opened", "a", a.Symbol, "b", b.Symbol)
	return s, nil
}

// Get looks a session up by id.
func (st *Store) Get(id uuid.UUID) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Close releases a session and forgets it.
func (st *Store) Close(id uuid.UUID) error {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	s.Close()
	st.deps.Metrics.SessionClosed()
	return nil
}

// Len is the number of open sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// CloseAll stops expiry and releases every session.
func (st *Store) CloseAll() {
	if st.cancel != nil {
		st.cancel()
	}
	st.wg.Wait()

	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[uuid.UUID]*Session)
	st.mu.Unlock()

	for _, s := range sessions {
		s.Close()
		st.deps.Metrics.SessionClosed()
	}
}

func (st *Store) sweep(ctx context.Context, every time.Duration) {
	defer st.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			st.expire(now)
		}
	}
}

// expire closes the sessions that have been idle for SessionTTL at now.
func (st *Store) expire(now time.Time) {
	st.mu.Lock()
	var expired []*Session
	for id, s := range st.sessions {
		if s.idle(now, st.deps.SessionTTL) {
			delete(st.sessions, id)
			expired = append(expired, s)
		}
	}
	st.mu.Unlock()

	for _, s := range expired {
		s.Close()
		st.deps.Metrics.SessionClosed()
		s.logger.Info("session expired", "ttl", st.deps.SessionTTL)
	}
}
