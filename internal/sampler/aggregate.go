package sampler

import (
	"fmt"
	"math"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"

	"gcmeter/internal/session"
)

// Unknown marks an aggregate field whose underlying per-run values carry the
// non-decomposable sentinel.
const Unknown float64 = -1

// Stats holds one statistic across the total/mutator/collector fields of an
// event.
type Stats struct {
	Total     float64 `json:"total"`
	Mutator   float64 `json:"mutator"`
	Collector float64 `json:"collector"`
}

// Aggregate is the reduction of one event's raw triples over all kept runs.
// The standard deviation uses sample normalization (N−1), the convention for
// repeated-measurement statistics.
type Aggregate struct {
	Event  string `json:"event"`
	Min    Stats  `json:"min"`
	Max    Stats  `json:"max"`
	Mean   Stats  `json:"mean"`
	Stddev Stats  `json:"stddev"`
}

// Report is the produced data of one sampling batch: the aggregates plus the
// raw per-run results for consumers that do their own reduction.
type Report struct {
	Events          []string           `json:"events"`
	Samples         int                `json:"samples"`
	DiscardedWarmup bool               `json:"discardedWarmup"`
	Aggregates      []Aggregate        `json:"aggregates"`
	Raw             [][]session.Result `json:"raw,omitempty"`
}

// Aggregate returns the aggregate for the named event.
func (r *Report) Aggregate(event string) (Aggregate, bool) {
	for _, a := range r.Aggregates {
		if a.Event == event {
			return a, true
		}
	}
	return Aggregate{}, false
}

// Distribution builds an HDR histogram of the named event's raw per-run
// totals, for percentile views over large batches. Values are clamped to the
// histogram's 1ns..1h trackable range.
func (r *Report) Distribution(event string) (*hdrhistogram.Histogram, error) {
	found := false
	hist := hdrhistogram.New(1, int64(time.Hour), 3)
	for _, run := range r.Raw {
		for _, res := range run {
			if res.Event != event {
				continue
			}
			found = true
			v := res.Total
			if v < 1 {
				v = 1
			}
			if v > int64(time.Hour) {
				v = int64(time.Hour)
			}
			if err := hist.RecordValue(v); err != nil {
				return nil, fmt.Errorf("recording %s sample: %w", event, err)
			}
		}
	}
	if !found {
		return nil, fmt.Errorf("event %q not present in the raw results", event)
	}
	return hist, nil
}

// aggregate reduces kept runs into one Aggregate per event. Every run emits
// the same events in the same order, so the first run fixes the layout.
func aggregate(runs [][]session.Result) []Aggregate {
	if len(runs) == 0 {
		return nil
	}

	aggs := make([]Aggregate, 0, len(runs[0]))
	for i, first := range runs[0] {
		totals := make([]int64, len(runs))
		mutators := make([]int64, len(runs))
		collectors := make([]int64, len(runs))
		for r, run := range runs {
			totals[r] = run[i].Total
			mutators[r] = run[i].Mutator
			collectors[r] = run[i].Collector
		}

		agg := Aggregate{Event: first.Event}
		agg.Min.Total, agg.Max.Total, agg.Mean.Total, agg.Stddev.Total = reduce(totals)

		if first.Mutator == session.Unknown {
			// Non-decomposable: the sentinel is a marker, not a
			// value, and must not be averaged.
			agg.Min.Mutator, agg.Max.Mutator, agg.Mean.Mutator, agg.Stddev.Mutator = Unknown, Unknown, Unknown, Unknown
			agg.Min.Collector, agg.Max.Collector, agg.Mean.Collector, agg.Stddev.Collector = Unknown, Unknown, Unknown, Unknown
		} else {
			agg.Min.Mutator, agg.Max.Mutator, agg.Mean.Mutator, agg.Stddev.Mutator = reduce(mutators)
			agg.Min.Collector, agg.Max.Collector, agg.Mean.Collector, agg.Stddev.Collector = reduce(collectors)
		}
		aggs = append(aggs, agg)
	}
	return aggs
}

// reduce computes min, max, mean, and sample standard deviation of values.
// len(values) >= 1; a single value has stddev 0.
func reduce(values []int64) (min, max, mean, stddev float64) {
	min = math.Inf(1)
	max = math.Inf(-1)
	var sum float64
	for _, v := range values {
		f := float64(v)
		if f < min {
			min = f
		}
		if f > max {
			max = f
		}
		sum += f
	}
	mean = sum / float64(len(values))

	if len(values) > 1 {
		var sq float64
		for _, v := range values {
			d := float64(v) - mean
			sq += d * d
		}
		stddev = math.Sqrt(sq / float64(len(values)-1))
	}
	return min, max, mean, stddev
}
