// Package session runs one timed invocation of user work and reconciles
// hardware counter deltas with wall, user, and system time across collector
// phase boundaries.
package session

import (
	"errors"
	"runtime"

	"gcmeter/internal/clock"
	"gcmeter/internal/counters"
	"gcmeter/internal/events"
	"gcmeter/internal/gcsplit"
)

// Unknown marks a mutator/collector field that cannot be decomposed: always
// for gc-count and the OS accounting events, and for the timing events when
// the collector-notification capability is unavailable.
const Unknown int64 = -1

// Result is one event's reconciled measurement for one run. For every
// decomposable event, Total == Mutator + Collector.
type Result struct {
	Event     string `json:"event"`
	Total     int64  `json:"total"`
	Mutator   int64  `json:"mutator"`
	Collector int64  `json:"collector"`
}

// Run executes work once under the given counter context and emits one Result
// per tracked event: the hardware selection first, in buffer order, then the
// software selection.
//
// The context must be Created or Stopped; Run starts it, installs the phase
// hook, invokes work, and guarantees the hook is removed and the context
// stopped on every exit path, including an error or panic from work itself.
// A failure from work propagates unchanged after cleanup; it is never wrapped
// or interpreted.
func Run(ctx *counters.Context, notifier gcsplit.Notifier, work func() error) ([]Result, error) {
	if err := ctx.Start(); err != nil {
		return nil, err
	}
	// Covers panics from work and early error returns. By the time Run
	// returns normally the context is already Stopped and this is a no-op.
	defer func() {
		if ctx.State() == counters.StateRunning {
			_ = ctx.Stop()
		}
	}()

	baseReal := clock.Now()
	baseUser := clock.UserTime()
	baseUsage := clock.Snapshot()
	baseGC := gcCycleCount()

	var hook *gcsplit.Hook
	if h, err := gcsplit.Install(notifier, ctx); err == nil {
		hook = h
		defer hook.Remove()
	} else if !errors.Is(err, gcsplit.ErrUnavailable) {
		return nil, err
	}

	if workErr := work(); workErr != nil {
		// Clean up, then re-raise the caller's fault untouched.
		if hook != nil {
			hook.Remove()
		}
		_ = ctx.Stop()
		return nil, workErr
	}

	elapsedReal := clock.Now() - baseReal
	elapsedUser := clock.UserTime() - baseUser
	if err := ctx.FlushMutator(); err != nil {
		return nil, err
	}
	if err := ctx.Stop(); err != nil {
		return nil, err
	}
	usage := clock.Snapshot().Sub(baseUsage)
	gcCycles := int64(gcCycleCount() - baseGC)

	var totals gcsplit.Totals
	if hook != nil {
		hook.Remove()
		if err := hook.Err(); err != nil {
			return nil, err
		}
		totals = hook.Totals()
		gcCycles = totals.Cycles
	}

	mutator := ctx.MutatorCounts()
	collector := ctx.CollectorCounts()
	results := make([]Result, 0, len(mutator)+len(ctx.SoftwareEvents()))
	for i, d := range ctx.HardwareEvents() {
		results = append(results, Result{
			Event:     d.Name,
			Total:     mutator[i] + collector[i],
			Mutator:   mutator[i],
			Collector: collector[i],
		})
	}

	decomposed := hook != nil
	for _, d := range ctx.SoftwareEvents() {
		switch d.Derived {
		case events.DerivedRealTime:
			results = append(results, timingResult(d.Name, elapsedReal, totals.RealTime, decomposed))
		case events.DerivedUserTime:
			results = append(results, timingResult(d.Name, elapsedUser, totals.UserTime, decomposed))
		case events.DerivedSystemTime:
			results = append(results, timingResult(d.Name, usage.SystemTime, totals.SystemTime, decomposed))
		case events.DerivedGCCount:
			results = append(results, Result{Event: d.Name, Total: gcCycles, Mutator: Unknown, Collector: Unknown})
		case events.DerivedMajorFaults:
			results = append(results, Result{Event: d.Name, Total: usage.MajorPageFaults, Mutator: Unknown, Collector: Unknown})
		case events.DerivedCtxSwitches:
			total := usage.VoluntaryCtxSwitches + usage.InvoluntaryCtxSwitches
			results = append(results, Result{Event: d.Name, Total: total, Mutator: Unknown, Collector: Unknown})
		}
	}
	return results, nil
}

// timingResult splits an elapsed-time total at the recorded cycle boundaries,
// or marks the split unknown when no boundaries could be observed.
func timingResult(name string, total, collectorTime int64, decomposed bool) Result {
	if !decomposed {
		return Result{Event: name, Total: total, Mutator: Unknown, Collector: Unknown}
	}
	return Result{
		Event:     name,
		Total:     total,
		Mutator:   total - collectorTime,
		Collector: collectorTime,
	}
}

// gcCycleCount reports the number of completed collection cycles since
// process start, read from the runtime's memory statistics.
func gcCycleCount() uint32 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.NumGC
}
