//go:build !linux

package counters

import "gcmeter/internal/events"

func defaultBackend() Backend { return unsupportedBackend{} }

// unsupportedBackend stands in where no counter library exists. Software
// events still measure; selecting any hardware event fails at creation.
type unsupportedBackend struct{}

func (unsupportedBackend) MaxCounters() int { return 0 }

func (unsupportedBackend) Open(descriptors []events.Descriptor) (EventSet, error) {
	name := ""
	if len(descriptors) > 0 {
		name = descriptors[0].Name
	}
	return nil, &ResourceError{
		Event:  name,
		Reason: "no hardware counter support on this platform",
		Cause:  &LibraryError{Op: "open", Code: CodeNoCounterSupport},
	}
}
