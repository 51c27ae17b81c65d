// Package gcsplit attributes counter and time deltas to collector cycles
// versus the surrounding mutator work.
//
// The split depends on a runtime capability: synchronous notification at the
// begin and end of every collection cycle, delivered on the mutator's own
// execution context. Where the capability exists, an installed Hook flushes
// hardware deltas into the collector bucket at each cycle boundary and keeps
// collector time totals. Where it does not, installation reports
// ErrUnavailable and the session must mark the split unknown rather than
// fabricate one.
package gcsplit

import (
	"errors"
	"sync/atomic"

	"gcmeter/internal/clock"
	"gcmeter/internal/counters"
)

// ErrUnavailable means the host runtime exposes no synchronous
// collection-cycle notifications. Not fatal: measurement proceeds without
// phase decomposition.
var ErrUnavailable = errors.New("collector-cycle notifications unavailable on this runtime")

// ErrAlreadyInstalled means a hook is already installed. Nesting is not
// supported: hooks would double-flush the same deltas.
var ErrAlreadyInstalled = errors.New("phase hook already installed")

// Notifier is the collector-notification capability: it delivers paired
// callbacks immediately before and after each collection cycle, on the same
// execution context as the instrumented work. At most one registration is
// active at a time.
type Notifier interface {
	Register(onBegin, onEnd func()) error
	Unregister()
}

// installed enforces the no-nesting rule across notifiers.
var installed atomic.Bool

// Totals is the time and cycle count attributed to the collector over one
// hook's lifetime.
type Totals struct {
	Cycles     int64
	RealTime   int64
	UserTime   int64
	SystemTime int64
}

// Hook is one scoped phase-splitting registration. It is bound to a single
// running counter context and must be removed on every exit path; Remove is
// idempotent.
type Hook struct {
	notifier Notifier
	ctx      *counters.Context

	totals Totals

	// begin* snapshot the boundary captured by onBegin, consumed by the
	// matching onEnd.
	beginReal  int64
	beginUser  int64
	beginUsage clock.Usage

	firstErr error
	removed  bool
}

// Install registers a phase hook with the notifier for the given running
// counter context. On ErrUnavailable no hook is installed and the caller
// proceeds without decomposition. Installing while another hook is live
// returns ErrAlreadyInstalled.
//
// The callbacks run synchronously on the mutator's execution context, so the
// hook needs no locking of its own.
func Install(notifier Notifier, ctx *counters.Context) (*Hook, error) {
	if !installed.CompareAndSwap(false, true) {
		return nil, ErrAlreadyInstalled
	}

	h := &Hook{notifier: notifier, ctx: ctx}
	if err := notifier.Register(h.onBegin, h.onEnd); err != nil {
		installed.Store(false)
		return nil, err
	}
	return h, nil
}

// onBegin runs immediately before a collection cycle: everything accrued so
// far belongs to the mutator.
func (h *Hook) onBegin() {
	if err := h.ctx.FlushMutator(); err != nil && h.firstErr == nil {
		h.firstErr = err
	}
	h.beginReal = clock.Now()
	h.beginUser = clock.UserTime()
	h.beginUsage = clock.Snapshot()
	h.totals.Cycles++
}

// onEnd runs immediately after the cycle: deltas accrued during it belong to
// the collector.
func (h *Hook) onEnd() {
	if err := h.ctx.FlushCollector(); err != nil && h.firstErr == nil {
		h.firstErr = err
	}
	h.totals.RealTime += clock.Now() - h.beginReal
	h.totals.UserTime += clock.UserTime() - h.beginUser
	h.totals.SystemTime += clock.Snapshot().SystemTime - h.beginUsage.SystemTime
}

// Remove unregisters the hook. Idempotent; guaranteed to run on every session
// exit path.
func (h *Hook) Remove() {
	if h.removed {
		return
	}
	h.removed = true
	h.notifier.Unregister()
	installed.Store(false)
}

// Totals returns the collector-attributed totals accrued so far.
func (h *Hook) Totals() Totals { return h.totals }

// Err returns the first counter failure raised inside a callback. Callbacks
// cannot propagate errors at the boundary, so the session checks here after
// the work completes.
func (h *Hook) Err() error { return h.firstErr }
