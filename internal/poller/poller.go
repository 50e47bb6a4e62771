// Package poller runs a fetch on a fixed interval for as long as a lease is
// held.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dimmy-bit/MONOSWAP/internal/metrics"
)

// DefaultInterval is the balance refresh period.
const DefaultInterval = 10 * time.Second

// Poller calls fetch immediately and then every interval, handing each
// result to apply. At most one lease is active. Once Release returns, apply
// is not called again for that lease.
type Poller[V any] struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	interval time.Duration

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns an idle Poller. A non-positive interval selects
// DefaultInterval.
func New[V any](logger *slog.Logger, m *metrics.Metrics, interval time.Duration) *Poller[V] {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller[V]{
		logger:   logger,
		metrics:  m,
		interval: interval,
	}
}

// Interval is the polling period.
func (p *Poller[V]) Interval() time.Duration {
	return p.interval
}

// Acquire releases any current lease and starts a new one. The lease ends
// on Release or when ctx is cancelled.
func (p *Poller[V]) Acquire(ctx context.Context, fetch func(context.Context) (V, error), apply func(V)) {
	p.Release()

	p.mu.Lock()
	p.gen++
	gen := p.gen
	ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("poller panic recovered", "panic", r)
			}
		}()

		p.poll(ctx, gen, fetch, apply)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.poll(ctx, gen, fetch, apply)
			}
		}
	}()
}

// Release ends the current lease and waits for its goroutine to exit. It
// must not be called from apply.
func (p *Poller[V]) Release() {
	p.mu.Lock()
	p.gen++
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	p.wg.Wait()
}

// Active reports whether a lease is held.
func (p *Poller[V]) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

func (p *Poller[V]) current(gen uint64) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen == gen
}

func (p *Poller[V]) poll(ctx context.Context, gen uint64, fetch func(context.Context) (V, error), apply func(V)) {
	v, err := fetch(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) || ctx.Err() != nil {
			return
		}
		p.metrics.ObservePoll(false)
		p.logger.Warn("poll failed", "error", err)
		return
	}
	p.metrics.ObservePoll(true)

	if ctx.Err() != nil || !p.current(gen) {
		return
	}
	apply(v)
}
