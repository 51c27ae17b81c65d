// Package workload provides the built-in deterministic work units the CLI
// can measure. Each constructor returns a work function suitable for the
// sampler; none of them retains memory across invocations, so repeated
// samples stay independent.
package workload

import (
	"fmt"
	"time"

	"gcmeter/internal/clock"
)

// sink defeats dead-code elimination of the synthetic work.
var sink byte

// Sleep returns work that sleeps for d.
func Sleep(d time.Duration) func() error {
	return func() error {
		time.Sleep(d)
		return nil
	}
}

// Spin returns work that busy-loops on the CPU for d.
func Spin(d time.Duration) func() error {
	return func() error {
		deadline := clock.Now() + d.Nanoseconds()
		x := byte(0)
		for clock.Now() < deadline {
			for i := 0; i < 1024; i++ {
				x += byte(i)
			}
		}
		sink = x
		return nil
	}
}

// Alloc returns work that allocates count byte slices of the given size,
// touching each one. The slices are dropped immediately, generating collector
// pressure proportional to count*size.
func Alloc(size, count int) func() error {
	return func() error {
		x := byte(0)
		for i := 0; i < count; i++ {
			b := make([]byte, size)
			b[0] = byte(i)
			x += b[len(b)-1] + b[0]
		}
		sink = x
		return nil
	}
}

// New builds a work function by kind name. The kinds mirror the run-config
// schema: "sleep", "spin", "alloc".
func New(kind string, duration time.Duration, allocBytes, allocCount int) (func() error, error) {
	switch kind {
	case "sleep":
		return Sleep(duration), nil
	case "spin":
		return Spin(duration), nil
	case "alloc":
		return Alloc(allocBytes, allocCount), nil
	default:
		return nil, fmt.Errorf("unknown workload kind %q", kind)
	}
}
