package output

import (
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"gcmeter/internal/sampler"
	"gcmeter/internal/session"
)

func sampleReport() *sampler.Report {
	return &sampler.Report{
		Events:          []string{"cpu-cycles", "real-time", "gc-count"},
		Samples:         3,
		DiscardedWarmup: true,
		Aggregates: []sampler.Aggregate{
			{
				Event:  "cpu-cycles",
				Min:    sampler.Stats{Total: 1000, Mutator: 900, Collector: 100},
				Max:    sampler.Stats{Total: 1200, Mutator: 1080, Collector: 120},
				Mean:   sampler.Stats{Total: 1100, Mutator: 990, Collector: 110},
				Stddev: sampler.Stats{Total: 100, Mutator: 90, Collector: 10},
			},
			{
				Event:  "real-time",
				Min:    sampler.Stats{Total: 10_000_000, Mutator: sampler.Unknown, Collector: sampler.Unknown},
				Max:    sampler.Stats{Total: 12_000_000, Mutator: sampler.Unknown, Collector: sampler.Unknown},
				Mean:   sampler.Stats{Total: 11_000_000, Mutator: sampler.Unknown, Collector: sampler.Unknown},
				Stddev: sampler.Stats{Total: 1_000_000, Mutator: sampler.Unknown, Collector: sampler.Unknown},
			},
		},
		Raw: [][]session.Result{
			{{Event: "cpu-cycles", Total: 1000, Mutator: 900, Collector: 100}},
		},
	}
}

func TestFormatText(t *testing.T) {
	text := FormatText(sampleReport(), NoColorScheme())

	for _, want := range []string{
		"3 samples, warm-up discarded",
		"EVENT", "STAT", "TOTAL", "MUTATOR", "COLLECTOR",
		"cpu-cycles", "real-time",
		"min", "mean", "max", "stddev",
		"1,000", // grouped count
		"11ms",  // duration-rendered mean
		"n/a",   // unknown split
	} {
		if !strings.Contains(text, want) {
			t.Errorf("FormatText output missing %q:\n%s", want, text)
		}
	}
}

func TestFormatText_Percentiles(t *testing.T) {
	report := &sampler.Report{
		Events:  []string{"cpu-cycles"},
		Samples: 4,
		Aggregates: []sampler.Aggregate{
			{
				Event: "cpu-cycles",
				Min:   sampler.Stats{Total: 100}, Max: sampler.Stats{Total: 400},
				Mean: sampler.Stats{Total: 250}, Stddev: sampler.Stats{Total: 129.1},
			},
		},
		Raw: [][]session.Result{
			{{Event: "cpu-cycles", Total: 100}},
			{{Event: "cpu-cycles", Total: 200}},
			{{Event: "cpu-cycles", Total: 300}},
			{{Event: "cpu-cycles", Total: 400}},
		},
	}

	text := FormatText(report, NoColorScheme())
	for _, want := range []string{"P50", "P90", "P95", "P99", "200", "400"} {
		if !strings.Contains(text, want) {
			t.Errorf("FormatText output missing %q:\n%s", want, text)
		}
	}

	// A single run has no distribution worth printing.
	report.Samples = 1
	report.Raw = report.Raw[:1]
	if text := FormatText(report, NoColorScheme()); strings.Contains(text, "P50") {
		t.Errorf("single-sample report printed percentiles:\n%s", text)
	}
}

func TestFormatJSON_StableShape(t *testing.T) {
	out, err := FormatJSON(sampleReport())
	if err != nil {
		t.Fatalf("FormatJSON error = %v", err)
	}

	checks := map[string]string{
		"samples":                   "3",
		"discardedWarmup":           "true",
		"aggregates.0.event":        "cpu-cycles",
		"aggregates.0.mean.total":   "1100",
		"aggregates.0.mean.mutator": "990",
		"aggregates.1.event":        "real-time",
		"aggregates.1.mean.mutator": "-1",
		"raw.0.0.event":             "cpu-cycles",
		"raw.0.0.total":             "1000",
	}
	for path, want := range checks {
		if got := gjson.Get(out, path).String(); got != want {
			t.Errorf("JSON path %s = %q, want %q", path, got, want)
		}
	}
}

func TestGroupDigits(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-9876543, "-9,876,543"},
	}
	for _, tt := range tests {
		if got := groupDigits(tt.in); got != tt.want {
			t.Errorf("groupDigits(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
