package service

import "sync"

// TxStatus is the lifecycle stage of the tracked transaction.
type TxStatus string

const (
	TxPending TxStatus = "pending"
	TxSuccess TxStatus = "success"
	TxError   TxStatus = "error"
)

// TxState is what a transaction status banner shows.
type TxState struct {
	Status  TxStatus `json:"status"`
	Message string   `json:"message"`
	TxHash  string   `json:"txHash,omitempty"`
	// Kind is the chain error kind of a failed transaction.
	Kind string `json:"kind,omitempty"`
}

// Reporter receives every status change of a workflow.
type Reporter func(TxState)

// Tracker allows one pending workflow at a time per signing account and
// keeps the last reported status.
type Tracker struct {
	mu   sync.Mutex
	busy bool
	last *TxState
}

// NewTracker returns an idle Tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// begin marks the tracker busy or returns ErrTransactionPending.
func (t *Tracker) begin() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.busy {
		return ErrTransactionPending
	}
	t.busy = true
	return nil
}

// end clears the busy flag.
func (t *Tracker) end() {
	t.mu.Lock()
	t.busy = false
	t.mu.Unlock()
}

func (t *Tracker) set(s TxState) {
	t.mu.Lock()
	t.last = &s
	t.mu.Unlock()
}

// Busy reports whether a workflow is in flight.
func (t *Tracker) Busy() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.busy
}

// Current returns the last reported status, if any.
func (t *Tracker) Current() (TxState, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return TxState{}, false
	}
	return *t.last, true
}

// Dismiss forgets the last status once nothing is pending.
func (t *Tracker) Dismiss() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.busy {
		t.last = nil
	}
}

// run is one tracked workflow: it reports through both the tracker and an
// optional caller Reporter.
type run struct {
	tracker *Tracker
	report  Reporter
}

func (t *Tracker) start(report Reporter) (*run, error) {
	if err := t.begin(); err != nil {
		return nil, err
	}
	return &run{tracker: t, report: report}, nil
}

func (r *run) emit(s TxState) TxState {
	r.tracker.set(s)
	if r.report != nil {
		r.report(s)
	}
	return s
}

func (r *run) pending(msg, hash string) {
	r.emit(TxState{Status: TxPending, Message: msg, TxHash: hash})
}

func (r *run) success(msg, hash string) TxState {
	return r.emit(TxState{Status: TxSuccess, Message: msg, TxHash: hash})
}

func (r *run) fail(err error, fallback string) TxState {
	return r.emit(TxState{Status: TxError, Message: userMessage(err, fallback), Kind: outcome(err)})
}

func (r *run) done() {
	r.tracker.end()
}
