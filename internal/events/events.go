// Package events provides the catalog of measurable performance events.
//
// The catalog maps symbolic event names (following perf tooling conventions,
// e.g. "cpu-cycles") to immutable descriptors. It is populated once, lazily,
// and is read-only afterwards: no component mutates a descriptor after
// resolution.
package events

import (
	"fmt"
	"sort"
	"sync"
)

// Kind classifies how an event is measured.
type Kind int

const (
	// KindHardware events are counted by dedicated CPU counter registers
	// through the counter backend.
	KindHardware Kind = iota

	// KindSoftware events are derived measurements (elapsed time, GC
	// cycles, OS accounting) computed without counter registers.
	KindSoftware
)

func (k Kind) String() string {
	switch k {
	case KindHardware:
		return "hardware"
	case KindSoftware:
		return "software"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Derived identifies how a software event's value is computed. Hardware
// events are DerivedNone.
type Derived int

const (
	DerivedNone Derived = iota
	DerivedRealTime
	DerivedUserTime
	DerivedSystemTime
	DerivedGCCount
	DerivedMajorFaults
	DerivedCtxSwitches
)

// Canonical software event names.
const (
	RealTime    = "real-time"
	UserTime    = "user-time"
	SystemTime  = "system-time"
	GCCount     = "gc-count"
	MajorFaults = "major-faults"
	CtxSwitches = "ctx-switches"
)

// Descriptor describes one measurable event. Descriptors are immutable value
// types owned by this package; callers receive copies and never hold a
// reference into catalog storage.
type Descriptor struct {
	// Name is the symbolic event name, e.g. "cpu-cycles".
	Name string

	// Kind is hardware (counter register) or software (derived).
	Kind Kind

	// Derived selects the computation for software events.
	Derived Derived

	// Type and Config encode the event for the counter backend. The
	// values follow the Linux perf ABI (PERF_TYPE_* / PERF_COUNT_HW_*),
	// which is stable across kernels. Zero for software events.
	Type   uint32
	Config uint64

	// Available reports whether this event can be measured on the
	// current platform.
	Available bool
}

// IsHardware reports whether the event goes through the counter backend.
func (d Descriptor) IsHardware() bool { return d.Kind == KindHardware }

// IsSoftware reports whether the event is a derived measurement.
func (d Descriptor) IsSoftware() bool { return d.Kind == KindSoftware }

// UnknownEventError is returned when a name does not resolve in the catalog.
// It is a configuration error: no counter resource has been touched.
type UnknownEventError struct {
	Name string
}

func (e *UnknownEventError) Error() string {
	return fmt.Sprintf("unknown event %q", e.Name)
}

// Stable values from the Linux perf ABI.
const (
	perfTypeHardware = 0

	hwCPUCycles       = 0
	hwInstructions    = 1
	hwCacheReferences = 2
	hwCacheMisses     = 3
	hwBranches        = 4
	hwBranchMisses    = 5
	hwBusCycles       = 6
)

var (
	registryOnce sync.Once
	registry     map[string]Descriptor
)

func initRegistry() {
	hw := func(name string, config uint64) Descriptor {
		return Descriptor{
			Name:      name,
			Kind:      KindHardware,
			Type:      perfTypeHardware,
			Config:    config,
			Available: hardwareAvailable,
		}
	}
	sw := func(name string, derived Derived) Descriptor {
		return Descriptor{
			Name:      name,
			Kind:      KindSoftware,
			Derived:   derived,
			Available: true,
		}
	}

	all := []Descriptor{
		hw("cpu-cycles", hwCPUCycles),
		hw("instructions", hwInstructions),
		hw("cache-references", hwCacheReferences),
		hw("cache-misses", hwCacheMisses),
		hw("branches", hwBranches),
		hw("branch-misses", hwBranchMisses),
		hw("bus-cycles", hwBusCycles),
		sw(RealTime, DerivedRealTime),
		sw(UserTime, DerivedUserTime),
		sw(SystemTime, DerivedSystemTime),
		sw(GCCount, DerivedGCCount),
		sw(MajorFaults, DerivedMajorFaults),
		sw(CtxSwitches, DerivedCtxSwitches),
	}

	registry = make(map[string]Descriptor, len(all))
	for _, d := range all {
		registry[d.Name] = d
	}
}

// Lookup resolves a symbolic event name to its descriptor.
//
// An unresolvable name returns an *UnknownEventError; the catalog itself is
// never modified by a lookup.
func Lookup(name string) (Descriptor, error) {
	registryOnce.Do(initRegistry)

	d, ok := registry[name]
	if !ok {
		return Descriptor{}, &UnknownEventError{Name: name}
	}
	return d, nil
}

// Names returns all catalog event names, sorted.
func Names() []string {
	registryOnce.Do(initRegistry)

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns descriptor copies for every catalog entry, sorted by name.
func All() []Descriptor {
	names := Names()
	all := make([]Descriptor, 0, len(names))
	for _, name := range names {
		all = append(all, registry[name])
	}
	return all
}
