package counters

import "gcmeter/internal/events"

// FakeBackend is an in-memory Backend for tests and for embedders that want
// the full lifecycle without hardware access. Counts only advance when the
// test drives them through FakeSet.Advance, which mirrors how real registers
// only move while enabled.
type FakeBackend struct {
	// Limit overrides the simultaneous-counter limit. Zero means 4.
	Limit int

	// OpenErr, when set, is returned by Open.
	OpenErr error

	lastSet *FakeSet
}

func (b *FakeBackend) MaxCounters() int {
	if b.Limit > 0 {
		return b.Limit
	}
	return 4
}

func (b *FakeBackend) Open(descriptors []events.Descriptor) (EventSet, error) {
	if b.OpenErr != nil {
		return nil, b.OpenErr
	}
	s := &FakeSet{
		counts: make([]uint64, len(descriptors)),
		prev:   make([]uint64, len(descriptors)),
	}
	b.lastSet = s
	return s, nil
}

// Set returns the most recently opened set, for tests that drive counts.
func (b *FakeBackend) Set() *FakeSet { return b.lastSet }

// FakeSet is the counter set handle produced by FakeBackend.
type FakeSet struct {
	counts  []uint64
	prev    []uint64
	running bool
	closed  bool

	// Resets counts Reset calls, for independence assertions.
	Resets int
}

// Advance adds deltas to the raw registers. Ignored while the set is stopped,
// matching hardware behavior.
func (s *FakeSet) Advance(deltas ...int64) {
	if !s.running {
		return
	}
	for i, d := range deltas {
		if i >= len(s.counts) {
			break
		}
		s.counts[i] += uint64(d)
	}
}

// Running reports whether the set is currently counting.
func (s *FakeSet) Running() bool { return s.running }

// Closed reports whether the set has been released.
func (s *FakeSet) Closed() bool { return s.closed }

func (s *FakeSet) Start() error {
	if s.closed {
		return &LibraryError{Op: "start", Code: CodeNoEventSet}
	}
	s.running = true
	return nil
}

func (s *FakeSet) Stop() error {
	if s.closed {
		return &LibraryError{Op: "stop", Code: CodeNoEventSet}
	}
	s.running = false
	return nil
}

func (s *FakeSet) Accumulate(dst []int64) error {
	if s.closed {
		return &LibraryError{Op: "read", Code: CodeNoEventSet}
	}
	if len(dst) != len(s.counts) {
		return &LibraryError{Op: "read", Code: CodeInvalidArgument}
	}
	for i := range s.counts {
		dst[i] += int64(s.counts[i] - s.prev[i])
		s.prev[i] = s.counts[i]
	}
	return nil
}

func (s *FakeSet) Reset() error {
	if s.closed {
		return &LibraryError{Op: "reset", Code: CodeNoEventSet}
	}
	for i := range s.counts {
		s.counts[i] = 0
		s.prev[i] = 0
	}
	s.Resets++
	return nil
}

func (s *FakeSet) Close() error {
	s.running = false
	s.closed = true
	return nil
}
