//go:build linux

package events

// Hardware counters are reachable through perf_event_open on Linux. Whether a
// particular event actually opens still depends on the machine and on
// perf_event_paranoid; that failure surfaces at counter-set creation.
const hardwareAvailable = true
