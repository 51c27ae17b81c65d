// Package clock provides the monotonic and CPU clocks and the OS
// resource-usage snapshots the measurement core reconciles against.
//
// All values are nanoseconds as int64. Real time comes from the runtime's
// monotonic clock; user and system CPU time and the accounting counters come
// from the OS on platforms that expose them.
package clock

import "time"

// base anchors Now so real-time values stay well inside int64 nanoseconds.
var base = time.Now()

// Now returns monotonic real time in nanoseconds. Only differences between
// two calls are meaningful.
func Now() int64 {
	return time.Since(base).Nanoseconds()
}

// UserTime returns the process's accumulated user-CPU time in nanoseconds.
// Returns 0 on platforms without process accounting.
func UserTime() int64 {
	return userTime()
}

// Usage is a point-in-time snapshot of OS resource accounting.
type Usage struct {
	// SystemTime is accumulated system-CPU time in nanoseconds.
	SystemTime int64

	// MajorPageFaults counts faults that required I/O.
	MajorPageFaults int64

	VoluntaryCtxSwitches   int64
	InvoluntaryCtxSwitches int64
}

// Sub returns the delta u − prev, field by field.
func (u Usage) Sub(prev Usage) Usage {
	return Usage{
		SystemTime:             u.SystemTime - prev.SystemTime,
		MajorPageFaults:        u.MajorPageFaults - prev.MajorPageFaults,
		VoluntaryCtxSwitches:   u.VoluntaryCtxSwitches - prev.VoluntaryCtxSwitches,
		InvoluntaryCtxSwitches: u.InvoluntaryCtxSwitches - prev.InvoluntaryCtxSwitches,
	}
}

// Snapshot returns the current resource usage of the process. Zero on
// platforms without process accounting.
func Snapshot() Usage {
	return snapshot()
}
