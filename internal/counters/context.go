// Package counters owns the hardware counter-set resource and the strict
// lifecycle around it.
//
// A Context binds an ordered event selection to one allocated counter set and
// two accumulation buffers: counts attributed to the mutator and counts
// attributed to the collector. The state machine is Created -> Running ->
// Stopped (-> Running ...) -> Destroyed; transitions outside it are reported,
// never silently ignored. Hardware counters are a thread-exclusive resource,
// so at most one Context may be Running at a time.
package counters

import (
	"errors"
	"fmt"
	"sync/atomic"

	"gcmeter/internal/events"
)

// State is the lifecycle state of a Context.
type State int

const (
	StateCreated State = iota
	StateRunning
	StateStopped
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateDestroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// ErrDestroyed reports use of a Context after Destroy. This is a programming
// error in the caller, surfaced rather than swallowed.
var ErrDestroyed = errors.New("counter context used after destroy")

// running guards the thread-exclusive hardware resource: only one Context may
// be counting at any instant.
var running atomic.Bool

// Context is the live binding of an event selection to a counter set.
type Context struct {
	backend  Backend
	set      EventSet // nil when the selection has no hardware events
	hardware []events.Descriptor
	software []events.Descriptor

	// mutator[i] and collector[i] accumulate counts for hardware[i]. The
	// lengths are fixed at creation and never change.
	mutator   []int64
	collector []int64

	state State
}

// Create resolves the named events and allocates a counter set for the
// hardware ones through the platform backend.
func Create(names []string) (*Context, error) {
	return CreateWithBackend(Default(), names)
}

// CreateWithBackend is Create with an explicit backend, for callers that
// inject a fake.
//
// Name resolution happens before any counter resource is touched: an unknown
// name returns *events.UnknownEventError with no allocation to undo. A
// hardware selection larger than the backend's simultaneous-counter limit
// fails with a *ResourceError naming the first event past the limit.
func CreateWithBackend(backend Backend, names []string) (*Context, error) {
	var hardware, software []events.Descriptor
	for _, name := range names {
		d, err := events.Lookup(name)
		if err != nil {
			return nil, err
		}
		if d.IsHardware() {
			hardware = append(hardware, d)
		} else {
			software = append(software, d)
		}
	}

	if limit := backend.MaxCounters(); len(hardware) > limit {
		return nil, &ResourceError{
			Event:  hardware[limit].Name,
			Reason: fmt.Sprintf("selection exceeds the limit of %d simultaneous hardware counters", limit),
			Cause:  &LibraryError{Op: "create", Code: CodeEventConflict},
		}
	}

	c := &Context{
		backend:   backend,
		hardware:  hardware,
		software:  software,
		mutator:   make([]int64, len(hardware)),
		collector: make([]int64, len(hardware)),
		state:     StateCreated,
	}

	if len(hardware) > 0 {
		set, err := backend.Open(hardware)
		if err != nil {
			return nil, err
		}
		c.set = set
	}
	return c, nil
}

// State returns the current lifecycle state.
func (c *Context) State() State { return c.state }

// HardwareEvents returns the hardware selection in buffer order.
func (c *Context) HardwareEvents() []events.Descriptor { return c.hardware }

// SoftwareEvents returns the software selection in selection order.
func (c *Context) SoftwareEvents() []events.Descriptor { return c.software }

// MutatorCounts returns a copy of the mutator buffer.
func (c *Context) MutatorCounts() []int64 {
	out := make([]int64, len(c.mutator))
	copy(out, c.mutator)
	return out
}

// CollectorCounts returns a copy of the collector buffer.
func (c *Context) CollectorCounts() []int64 {
	out := make([]int64, len(c.collector))
	copy(out, c.collector)
	return out
}

// Start begins hardware accumulation from a zero relative offset. Valid from
// Created or Stopped. Starting while another Context is Running is a
// *ResourceError: counters are thread-exclusive.
func (c *Context) Start() error {
	switch c.state {
	case StateDestroyed:
		return ErrDestroyed
	case StateRunning:
		return &LibraryError{Op: "start", Code: CodeAlreadyRunning}
	}

	if !running.CompareAndSwap(false, true) {
		return &ResourceError{
			Reason: "another counter context is already running",
			Cause:  &LibraryError{Op: "start", Code: CodeEventConflict},
		}
	}

	if c.set != nil {
		if err := c.set.Start(); err != nil {
			running.Store(false)
			return err
		}
	}
	c.state = StateRunning
	return nil
}

// FlushMutator adds the hardware deltas accrued since the last flush into the
// mutator buffer. Valid only while Running; the counters keep counting.
func (c *Context) FlushMutator() error { return c.flush(c.mutator) }

// FlushCollector adds the hardware deltas accrued since the last flush into
// the collector buffer. Valid only while Running.
func (c *Context) FlushCollector() error { return c.flush(c.collector) }

func (c *Context) flush(dst []int64) error {
	if c.state == StateDestroyed {
		return ErrDestroyed
	}
	if c.state != StateRunning {
		return &LibraryError{Op: "read", Code: CodeNotRunning}
	}
	if c.set == nil {
		return nil
	}
	return c.set.Accumulate(dst)
}

// Stop flushes any remaining deltas into the mutator buffer and disables
// counting. Requires Running.
func (c *Context) Stop() error {
	if c.state == StateDestroyed {
		return ErrDestroyed
	}
	if c.state != StateRunning {
		return &LibraryError{Op: "stop", Code: CodeNotRunning}
	}

	if c.set != nil {
		// Residual deltas belong to the mutator: collector work was
		// already flushed at each cycle's end boundary.
		if err := c.set.Accumulate(c.mutator); err != nil {
			return err
		}
		if err := c.set.Stop(); err != nil {
			return err
		}
	}
	c.state = StateStopped
	running.Store(false)
	return nil
}

// Reset zeroes both accumulation buffers and the hardware registers so the
// next run starts independent of the previous one. Valid from Created (before
// the first run) or Stopped (between runs).
func (c *Context) Reset() error {
	switch c.state {
	case StateDestroyed:
		return ErrDestroyed
	case StateRunning:
		return &LibraryError{Op: "reset", Code: CodeAlreadyRunning}
	}

	for i := range c.mutator {
		c.mutator[i] = 0
		c.collector[i] = 0
	}
	if c.set != nil {
		return c.set.Reset()
	}
	return nil
}

// Destroy releases the counter set and retires the Context. Idempotent from
// any state; a Running context is stopped first. After Destroy every other
// operation returns ErrDestroyed.
func (c *Context) Destroy() error {
	if c.state == StateDestroyed {
		return nil
	}

	var firstErr error
	if c.state == StateRunning {
		if c.set != nil {
			if err := c.set.Stop(); err != nil {
				firstErr = err
			}
		}
		running.Store(false)
	}
	if c.set != nil {
		if err := c.set.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		c.set = nil
	}
	c.mutator = nil
	c.collector = nil
	c.state = StateDestroyed
	return firstErr
}
