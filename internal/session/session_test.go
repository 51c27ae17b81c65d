package session

import (
	"errors"
	"runtime"
	"testing"
	"time"

	"gcmeter/internal/counters"
	"gcmeter/internal/gcsplit"
)

func newContext(t *testing.T, names ...string) (*counters.Context, *counters.FakeBackend) {
	t.Helper()
	backend := &counters.FakeBackend{}
	ctx, err := counters.CreateWithBackend(backend, names)
	if err != nil {
		t.Fatalf("CreateWithBackend error = %v", err)
	}
	t.Cleanup(func() { ctx.Destroy() })
	return ctx, backend
}

func findResult(t *testing.T, results []Result, event string) Result {
	t.Helper()
	for _, r := range results {
		if r.Event == event {
			return r
		}
	}
	t.Fatalf("no result for event %q in %v", event, results)
	return Result{}
}

func TestRun_SplitsHardwareCounts(t *testing.T) {
	ctx, backend := newContext(t, "cpu-cycles", "instructions", "real-time", "gc-count")
	notifier := &gcsplit.Manual{}

	results, err := Run(ctx, notifier, func() error {
		backend.Set().Advance(1000, 4000)
		notifier.Cycle(func() { backend.Set().Advance(100, 200) })
		backend.Set().Advance(500, 1000)
		return nil
	})
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("got %d results, want 4: %v", len(results), results)
	}

	cycles := findResult(t, results, "cpu-cycles")
	if cycles.Mutator != 1500 || cycles.Collector != 100 || cycles.Total != 1600 {
		t.Errorf("cpu-cycles = %+v, want mutator 1500, collector 100, total 1600", cycles)
	}
	instr := findResult(t, results, "instructions")
	if instr.Mutator != 5000 || instr.Collector != 200 || instr.Total != 5200 {
		t.Errorf("instructions = %+v, want mutator 5000, collector 200, total 5200", instr)
	}

	gc := findResult(t, results, "gc-count")
	if gc.Total != 1 {
		t.Errorf("gc-count total = %d, want 1", gc.Total)
	}
	if gc.Mutator != Unknown || gc.Collector != Unknown {
		t.Errorf("gc-count split = %d/%d, want sentinel %d", gc.Mutator, gc.Collector, Unknown)
	}

	// Hardware results precede software results, each in selection order.
	if results[0].Event != "cpu-cycles" || results[1].Event != "instructions" ||
		results[2].Event != "real-time" || results[3].Event != "gc-count" {
		t.Errorf("result order = %v", results)
	}
}

func TestRun_TotalIsMutatorPlusCollector(t *testing.T) {
	ctx, backend := newContext(t, "cpu-cycles", "real-time", "user-time", "system-time")
	notifier := &gcsplit.Manual{}

	results, err := Run(ctx, notifier, func() error {
		backend.Set().Advance(10)
		notifier.Cycle(func() {
			backend.Set().Advance(3)
			time.Sleep(time.Millisecond)
		})
		return nil
	})
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}

	for _, r := range results {
		if r.Mutator == Unknown {
			continue
		}
		if r.Total != r.Mutator+r.Collector {
			t.Errorf("%s: total %d != mutator %d + collector %d", r.Event, r.Total, r.Mutator, r.Collector)
		}
	}

	rt := findResult(t, results, "real-time")
	if rt.Collector < int64(time.Millisecond) {
		t.Errorf("real-time collector share = %d, want >= 1ms (the cycle slept)", rt.Collector)
	}
}

func TestRun_UnavailableCapability(t *testing.T) {
	ctx, _ := newContext(t, "real-time", "user-time", "gc-count")

	results, err := Run(ctx, gcsplit.Runtime(), func() error {
		time.Sleep(2 * time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}

	rt := findResult(t, results, "real-time")
	if rt.Total < int64(time.Millisecond) {
		t.Errorf("real-time total = %d, want >= 1ms", rt.Total)
	}
	// No capability: the split must be marked unknown, never fabricated.
	if rt.Mutator != Unknown || rt.Collector != Unknown {
		t.Errorf("real-time split = %d/%d, want unknown sentinels", rt.Mutator, rt.Collector)
	}

	gc := findResult(t, results, "gc-count")
	if gc.Total < 0 {
		t.Errorf("gc-count total = %d, want >= 0", gc.Total)
	}
}

func TestRun_GCCountFromRuntimeStats(t *testing.T) {
	ctx, _ := newContext(t, "gc-count")

	// Without the decomposition capability the cycle count comes from the
	// runtime's own statistics; forced collections must show up in the delta.
	results, err := Run(ctx, gcsplit.Runtime(), func() error {
		runtime.GC()
		runtime.GC()
		return nil
	})
	if err != nil {
		t.Fatalf("Run error = %v", err)
	}

	gc := findResult(t, results, "gc-count")
	if gc.Total < 2 {
		t.Errorf("gc-count total = %d, want >= 2 after two forced collections", gc.Total)
	}
	if gc.Mutator != Unknown || gc.Collector != Unknown {
		t.Errorf("gc-count split = %d/%d, want unknown sentinels", gc.Mutator, gc.Collector)
	}
}

func TestRun_WorkErrorPropagatesAfterCleanup(t *testing.T) {
	ctx, _ := newContext(t, "cpu-cycles", "real-time")
	notifier := &gcsplit.Manual{}
	workErr := errors.New("user work failed")

	results, err := Run(ctx, notifier, func() error { return workErr })
	if !errors.Is(err, workErr) {
		t.Fatalf("Run error = %v, want the work error unchanged", err)
	}
	if err != workErr {
		t.Errorf("work error was wrapped: %v", err)
	}
	if results != nil {
		t.Errorf("results = %v, want nil on failure", results)
	}

	if notifier.Registered() {
		t.Error("phase hook still installed after work failure")
	}
	if ctx.State() != counters.StateStopped {
		t.Errorf("context state = %v, want stopped", ctx.State())
	}

	// The context must be reusable for the next run.
	if err := ctx.Reset(); err != nil {
		t.Errorf("Reset after failed run: error = %v", err)
	}
}

func TestRun_WorkPanicStillCleansUp(t *testing.T) {
	ctx, _ := newContext(t, "cpu-cycles")
	notifier := &gcsplit.Manual{}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic did not propagate")
			}
		}()
		Run(ctx, notifier, func() error { panic("user work panicked") })
	}()

	if notifier.Registered() {
		t.Error("phase hook still installed after panic")
	}
	if ctx.State() != counters.StateStopped {
		t.Errorf("context state = %v, want stopped", ctx.State())
	}
}

func TestRun_RepeatedRunsAreIndependent(t *testing.T) {
	ctx, backend := newContext(t, "cpu-cycles")
	notifier := &gcsplit.Manual{}
	work := func() error {
		backend.Set().Advance(77)
		return nil
	}

	for run := 0; run < 3; run++ {
		if err := ctx.Reset(); err != nil {
			t.Fatalf("Reset error = %v", err)
		}
		results, err := Run(ctx, notifier, work)
		if err != nil {
			t.Fatalf("run %d error = %v", run, err)
		}
		if got := results[0].Total; got != 77 {
			t.Errorf("run %d cpu-cycles total = %d, want 77 (independent of prior runs)", run, got)
		}
	}
}
