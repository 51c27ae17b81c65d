package gcsplit

import "errors"

// Runtime returns the host runtime's collector-notification capability.
//
// The Go runtime does not expose synchronous GC begin/end callbacks: a
// finalizer-based observer only learns of a cycle after the fact, on a
// different goroutine, which cannot give the session a synchronous phase
// boundary. Rather than reach into runtime internals, the capability is
// reported unavailable and sessions run with an unknown split.
func Runtime() Notifier { return runtimeNotifier{} }

type runtimeNotifier struct{}

func (runtimeNotifier) Register(onBegin, onEnd func()) error { return ErrUnavailable }

func (runtimeNotifier) Unregister() {}

// Manual is a Notifier driven explicitly by the caller. It serves tests and
// embedders that control collection themselves (e.g. a host scheduling its
// own reclamation passes) and want it attributed to the collector phase.
//
// Cycle fires the begin callback, runs work, then fires the end callback, all
// synchronously on the calling goroutine.
type Manual struct {
	onBegin, onEnd func()
	registered     bool
}

func (m *Manual) Register(onBegin, onEnd func()) error {
	if m.registered {
		return errors.New("manual notifier already has a registration")
	}
	m.onBegin = onBegin
	m.onEnd = onEnd
	m.registered = true
	return nil
}

func (m *Manual) Unregister() {
	m.onBegin = nil
	m.onEnd = nil
	m.registered = false
}

// Registered reports whether a callback pair is currently installed.
func (m *Manual) Registered() bool { return m.registered }

// Cycle simulates one collection cycle around work. Outside a registration it
// just runs work.
func (m *Manual) Cycle(work func()) {
	if m.onBegin != nil {
		m.onBegin()
	}
	if work != nil {
		work()
	}
	if m.onEnd != nil {
		m.onEnd()
	}
}
