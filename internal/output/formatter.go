package output

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"gcmeter/internal/events"
	"gcmeter/internal/sampler"
)

// FormatJSON renders the report as indented JSON with a stable shape.
func FormatJSON(report *sampler.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	return string(data) + "\n", nil
}

// FormatText renders the report as an aligned table, one block of
// min/mean/max/stddev rows per event, followed by per-event percentiles over
// the raw run totals. Time-valued events print as durations, counts with
// thousands grouping, and unknown splits as "n/a".
func FormatText(report *sampler.Report, scheme *ColorScheme) string {
	var sb strings.Builder

	samples := "sample"
	if report.Samples != 1 {
		samples += "s"
	}
	header := fmt.Sprintf("%d %s", report.Samples, samples)
	if report.DiscardedWarmup {
		header += ", warm-up discarded"
	}
	sb.WriteString(scheme.Header.Sprint(header))
	sb.WriteString("\n\n")

	w := tabwriter.NewWriter(&sb, 2, 4, 2, ' ', 0)
	fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
		scheme.Header.Sprint("EVENT"),
		scheme.Header.Sprint("STAT"),
		scheme.Header.Sprint("TOTAL"),
		scheme.Header.Sprint("MUTATOR"),
		scheme.Header.Sprint("COLLECTOR"))

	for _, agg := range report.Aggregates {
		rows := []struct {
			stat  string
			stats sampler.Stats
		}{
			{"min", agg.Min},
			{"mean", agg.Mean},
			{"max", agg.Max},
			{"stddev", agg.Stddev},
		}
		for i, row := range rows {
			event := ""
			if i == 0 {
				event = scheme.Event.Sprint(agg.Event)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				event,
				scheme.Stat.Sprint(row.stat),
				formatValue(scheme, agg.Event, row.stats.Total),
				formatValue(scheme, agg.Event, row.stats.Mutator),
				formatValue(scheme, agg.Event, row.stats.Collector))
		}
	}
	w.Flush()
	writePercentiles(&sb, report, scheme)
	return sb.String()
}

// writePercentiles appends a per-event percentile table built from the raw
// per-run totals. Batches of one sample have no distribution to speak of, so
// nothing is printed.
func writePercentiles(sb *strings.Builder, report *sampler.Report, scheme *ColorScheme) {
	if report.Samples < 2 || len(report.Raw) == 0 {
		return
	}

	w := tabwriter.NewWriter(sb, 2, 4, 2, ' ', 0)
	wrote := false
	for _, agg := range report.Aggregates {
		hist, err := report.Distribution(agg.Event)
		if err != nil {
			continue
		}
		if !wrote {
			sb.WriteString("\n")
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				scheme.Header.Sprint("EVENT"),
				scheme.Header.Sprint("P50"),
				scheme.Header.Sprint("P90"),
				scheme.Header.Sprint("P95"),
				scheme.Header.Sprint("P99"))
			wrote = true
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			scheme.Event.Sprint(agg.Event),
			formatValue(scheme, agg.Event, float64(hist.ValueAtQuantile(50))),
			formatValue(scheme, agg.Event, float64(hist.ValueAtQuantile(90))),
			formatValue(scheme, agg.Event, float64(hist.ValueAtQuantile(95))),
			formatValue(scheme, agg.Event, float64(hist.ValueAtQuantile(99))))
	}
	w.Flush()
}

func formatValue(scheme *ColorScheme, event string, v float64) string {
	if v == sampler.Unknown {
		return scheme.Unknown.Sprint("n/a")
	}
	if isTimeValued(event) {
		return scheme.Value.Sprint(time.Duration(int64(v)).String())
	}
	if v == math.Trunc(v) {
		return scheme.Value.Sprint(groupDigits(int64(v)))
	}
	return scheme.Value.Sprintf("%.2f", v)
}

// isTimeValued reports whether the event's values are nanosecond durations.
func isTimeValued(event string) bool {
	d, err := events.Lookup(event)
	if err != nil {
		return false
	}
	switch d.Derived {
	case events.DerivedRealTime, events.DerivedUserTime, events.DerivedSystemTime:
		return true
	}
	return false
}

// groupDigits formats n with comma thousands separators.
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	var sb strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	if neg {
		return "-" + sb.String()
	}
	return sb.String()
}
