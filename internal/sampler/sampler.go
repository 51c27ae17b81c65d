// Package sampler repeats measurement sessions over a fixed workload and
// reduces the raw per-run results into per-event statistics.
//
// One counter context serves the whole batch; it is reset before every run,
// including a discarded warm-up run, so samples are independent, and
// destroyed exactly once when the batch completes or fails.
package sampler

import (
	"fmt"

	"gcmeter/internal/counters"
	"gcmeter/internal/gcsplit"
	"gcmeter/internal/session"
)

// Options controls one sampling batch.
type Options struct {
	// Samples is the number of measurements to aggregate. Must be
	// positive.
	Samples int

	// DiscardFirst runs one extra warm-up session and drops its raw
	// result before aggregation, excluding cold-start bias.
	DiscardFirst bool
}

// ConfigError reports an invalid sampling request. It is raised before any
// counter resource is touched and is never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "sampler configuration: " + e.Reason
}

// Sampler drives repeated measurement sessions.
type Sampler struct {
	backend  counters.Backend
	notifier gcsplit.Notifier
}

// New returns a Sampler on the platform counter backend and the host
// runtime's collector-notification capability.
func New() *Sampler {
	return NewWith(counters.Default(), gcsplit.Runtime())
}

// NewWith returns a Sampler with an explicit backend and notifier, for tests
// and embedders.
func NewWith(backend counters.Backend, notifier gcsplit.Notifier) *Sampler {
	return &Sampler{backend: backend, notifier: notifier}
}

// Sample measures work opts.Samples times over the named events and reduces
// the kept runs into per-event aggregates.
//
// Degenerate options and unresolvable event names fail before any hardware
// resource is allocated. Any session failure aborts the remaining batch; runs
// are never silently skipped.
func (s *Sampler) Sample(names []string, work func() error, opts Options) (*Report, error) {
	if opts.Samples <= 0 {
		return nil, &ConfigError{Reason: fmt.Sprintf("sample count must be positive, got %d", opts.Samples)}
	}
	if len(names) == 0 {
		return nil, &ConfigError{Reason: "no events selected"}
	}
	if work == nil {
		return nil, &ConfigError{Reason: "no work function supplied"}
	}

	ctx, err := counters.CreateWithBackend(s.backend, names)
	if err != nil {
		return nil, err
	}
	defer ctx.Destroy()

	runs := opts.Samples
	if opts.DiscardFirst {
		runs++
	}

	kept := make([][]session.Result, 0, opts.Samples)
	for i := 0; i < runs; i++ {
		if err := ctx.Reset(); err != nil {
			return nil, err
		}
		results, err := session.Run(ctx, s.notifier, work)
		if err != nil {
			return nil, err
		}
		if opts.DiscardFirst && i == 0 {
			continue
		}
		kept = append(kept, results)
	}

	return &Report{
		Events:          names,
		Samples:         opts.Samples,
		DiscardedWarmup: opts.DiscardFirst,
		Aggregates:      aggregate(kept),
		Raw:             kept,
	}, nil
}
