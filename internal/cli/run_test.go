package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// execute runs the root command with args and returns its combined output.
// Flag values persist on a cobra command between executions, so every call
// starts by restoring the defaults.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, fs := range []*pflag.FlagSet{runCmd.Flags(), eventsCmd.Flags()} {
		fs.Visit(func(f *pflag.Flag) {
			if err := f.Value.Set(f.DefValue); err != nil {
				t.Fatalf("resetting flag %s: %v", f.Name, err)
			}
			f.Changed = false
		})
	}

	var buf bytes.Buffer
	RootCmd.SetOut(&buf)
	RootCmd.SetErr(&buf)
	RootCmd.SetArgs(args)
	defer RootCmd.SetArgs(nil)

	_, err := RootCmd.ExecuteC()
	return buf.String(), err
}

func TestRun_JSONReport(t *testing.T) {
	out, err := execute(t,
		"run",
		"--events", "real-time,gc-count",
		"--workload", "sleep",
		"--duration", "2ms",
		"--samples", "2",
		"--json",
	)
	require.NoError(t, err)

	assert.Equal(t, int64(2), gjson.Get(out, "samples").Int())
	assert.False(t, gjson.Get(out, "discardedWarmup").Bool())
	assert.Equal(t, "real-time", gjson.Get(out, "aggregates.0.event").String())
	assert.Equal(t, "gc-count", gjson.Get(out, "aggregates.1.event").String())

	// The 2ms sleep must dominate the mean real time.
	assert.GreaterOrEqual(t, gjson.Get(out, "aggregates.0.mean.total").Float(), 2e6)

	// No notification capability on this runtime: splits are unknown.
	assert.Equal(t, float64(-1), gjson.Get(out, "aggregates.0.mean.mutator").Float())
	assert.Equal(t, float64(-1), gjson.Get(out, "aggregates.1.mean.collector").Float())

	// Raw per-run results ride along for consumers doing their own reduction.
	assert.Len(t, gjson.Get(out, "raw").Array(), 2)
}

func TestRun_TextReport(t *testing.T) {
	out, err := execute(t,
		"run",
		"--events", "real-time",
		"--workload", "sleep",
		"--duration", "1ms",
		"--samples", "2",
		"--no-color",
	)
	require.NoError(t, err)

	for _, want := range []string{"2 samples", "EVENT", "real-time", "mean", "stddev", "n/a"} {
		assert.Contains(t, out, want)
	}
}

func TestRun_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
events: [real-time]
samples: 2
discardFirst: true
workload:
  kind: sleep
  duration: 1ms
`), 0o644))

	out, err := execute(t, "run", "--config", path, "--json")
	require.NoError(t, err)

	assert.Equal(t, int64(2), gjson.Get(out, "samples").Int())
	assert.True(t, gjson.Get(out, "discardedWarmup").Bool())
}

func TestRun_OutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	out, err := execute(t,
		"run",
		"--events", "real-time",
		"--workload", "sleep",
		"--duration", "1ms",
		"--samples", "1",
		"--json",
		"--output", path,
	)
	require.NoError(t, err)
	assert.Contains(t, out, "report written to")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(1), gjson.GetBytes(data, "samples").Int())
}

func TestRun_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantSub string
	}{
		{
			"unknown event",
			[]string{"run", "--events", "no-such-event", "--samples", "2"},
			"unknown event",
		},
		{
			"unknown workload",
			[]string{"run", "--workload", "quantum", "--samples", "2"},
			"workload",
		},
		{
			"non-positive samples",
			[]string{"run", "--events", "real-time", "--samples", "-1"},
			"samples",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.True(t,
				strings.Contains(err.Error(), tt.wantSub) || strings.Contains(out, tt.wantSub),
				"error %q / output %q missing %q", err, out, tt.wantSub)
			// Cobra reports the failure on its error stream itself;
			// main only translates the returned error into an exit code.
			assert.Contains(t, out, "Error:")
		})
	}
}

func TestEvents_ListsCatalog(t *testing.T) {
	out, err := execute(t, "events", "--no-color")
	require.NoError(t, err)

	for _, want := range []string{"EVENT", "cpu-cycles", "instructions", "real-time", "gc-count", "hardware", "software"} {
		assert.Contains(t, out, want)
	}
}
