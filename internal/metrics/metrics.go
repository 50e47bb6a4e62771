// Package metrics exposes Prometheus collectors for quotes, transactions and
// balance polling.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "monoswap"

// Metrics groups the service's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	quotes       *prometheus.CounterVec
	transactions *prometheus.CounterVec
	polls        *prometheus.CounterVec
	sessions     prometheus.Gauge
}

// New creates the collectors and registers them with reg. Collectors that
// are already registered are reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	var (
		m   Metrics
		err error
	)
	m.quotes, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "quotes_total",
		Help:      "Quotes computed, by source and result.",
	}, []string{"source", "result"}))
	if err != nil {
		return nil, err
	}
	m.transactions, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_total",
		Help:      "Submitted transactions, by operation and outcome.",
	}, []string{"op", "outcome"}))
	if err != nil {
		return nil, err
	}
	m.polls, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "balance_polls_total",
		Help:      "Balance refreshes, by result.",
	}, []string{"result"}))
	if err != nil {
		return nil, err
	}
	m.sessions, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions_active",
		Help:      "Open view sessions.",
	}))
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveQuote counts one quote attempt.
func (m *Metrics) ObserveQuote(source, result string) {
	if m == nil {
		return
	}
	m.quotes.WithLabelValues(source, result).Inc()
}

// ObserveTransaction counts one transaction outcome, e.g. "success" or an
// error kind.
func (m *Metrics) ObserveTransaction(op, outcome string) {
	if m == nil {
		return
	}
	m.transactions.WithLabelValues(op, outcome).Inc()
}

// ObservePoll counts one balance refresh.
func (m *Metrics) ObservePoll(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "error"
	}
	m.polls.WithLabelValues(result).Inc()
}

// SessionOpened and SessionClosed track the live session count.
func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.sessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.sessions.Dec()
}
