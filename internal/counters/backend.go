package counters

import "gcmeter/internal/events"

// Backend is the counter-library ABI: it allocates sets of hardware counters
// and hands back a handle for start/stop/read control. Implementations exist
// per platform (perf_event_open on Linux, an unsupported stub elsewhere) plus
// an in-memory fake for tests.
type Backend interface {
	// MaxCounters is the number of hardware events one set can count
	// simultaneously on this platform.
	MaxCounters() int

	// Open allocates a counter set for the given hardware events. The
	// returned set is stopped and zeroed. A per-event failure is reported
	// as a *ResourceError naming the event; other failures as a
	// *LibraryError.
	Open(descriptors []events.Descriptor) (EventSet, error)
}

// EventSet is one allocated hardware counter set. Values are read by delta:
// Accumulate adds the counts accrued since the previous flush into the
// caller's buffer, so consecutive flushes can route deltas into different
// buckets without stopping the counters.
type EventSet interface {
	// Start enables counting. The set counts events on the calling
	// thread only.
	Start() error

	// Stop disables counting. Counts accrued so far stay readable.
	Stop() error

	// Accumulate adds the per-event deltas since the last flush into
	// dst. len(dst) must equal the number of events in the set; index i
	// corresponds to the i'th descriptor passed to Open. The hardware
	// registers are not reset.
	Accumulate(dst []int64) error

	// Reset zeroes the hardware registers and the flush baseline. Valid
	// only while stopped.
	Reset() error

	// Close releases the counter handles. Idempotent.
	Close() error
}

// Default returns the platform counter backend.
func Default() Backend { return defaultBackend() }
