package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gcmeter/internal/config"
	"gcmeter/internal/output"
	"gcmeter/internal/sampler"
	"gcmeter/internal/workload"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Sample a workload over the selected events",
	Long: `Run a sampling batch over a built-in workload and report per-event
min/mean/max/stddev statistics, decomposed into mutator and collector shares
where the runtime makes collection cycles observable.

Config file mode:
  gcmeter run --config run.yaml

Quick CLI mode:
  gcmeter run --events cpu-cycles,real-time,gc-count \
    --workload alloc --samples 10 --discard-first`,
	RunE: runSampling,
}

func init() {
	runCmd.Flags().String("config", "", "run configuration file (YAML or JSON)")
	runCmd.Flags().String("events", "real-time,gc-count", "comma-separated event names")
	runCmd.Flags().Int("samples", config.DefaultSamples, "number of samples to aggregate")
	runCmd.Flags().Bool("discard-first", false, "run and discard one warm-up sample")
	runCmd.Flags().String("workload", "spin", "built-in workload: sleep, spin, alloc")
	runCmd.Flags().Duration("duration", config.DefaultDuration, "duration per run (sleep and spin workloads)")
	runCmd.Flags().Int("alloc-bytes", config.DefaultAllocBytes, "allocation size (alloc workload)")
	runCmd.Flags().Int("alloc-count", config.DefaultAllocCount, "allocations per run (alloc workload)")
	runCmd.Flags().Bool("json", false, "emit the report as JSON")
	runCmd.Flags().String("output", "", "write the report to a file instead of stdout")
	runCmd.Flags().Bool("no-color", false, "disable colored output")
}

func runSampling(cmd *cobra.Command, args []string) error {
	cfg, err := configFromFlags(cmd)
	if err != nil {
		return err
	}

	config.ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	work, err := workload.New(
		cfg.Workload.Kind,
		cfg.Workload.Duration.GetDuration(config.DefaultDuration),
		cfg.Workload.AllocBytes,
		cfg.Workload.AllocCount,
	)
	if err != nil {
		return err
	}

	report, err := sampler.New().Sample(cfg.Events, work, sampler.Options{
		Samples:      cfg.Samples,
		DiscardFirst: cfg.DiscardFirst,
	})
	if err != nil {
		return fmt.Errorf("sampling failed: %w", err)
	}

	return writeReport(cmd, report)
}

func configFromFlags(cmd *cobra.Command) (*config.Config, error) {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		return config.LoadConfig(path)
	}

	eventList, _ := cmd.Flags().GetString("events")
	samples, _ := cmd.Flags().GetInt("samples")
	discardFirst, _ := cmd.Flags().GetBool("discard-first")
	kind, _ := cmd.Flags().GetString("workload")
	duration, _ := cmd.Flags().GetDuration("duration")
	allocBytes, _ := cmd.Flags().GetInt("alloc-bytes")
	allocCount, _ := cmd.Flags().GetInt("alloc-count")

	var names []string
	for _, name := range strings.Split(eventList, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}

	return &config.Config{
		Events:       names,
		Samples:      samples,
		DiscardFirst: discardFirst,
		Workload: config.WorkloadConfig{
			Kind:       kind,
			Duration:   config.Duration(duration),
			AllocBytes: allocBytes,
			AllocCount: allocCount,
		},
	}, nil
}

func writeReport(cmd *cobra.Command, report *sampler.Report) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	outPath, _ := cmd.Flags().GetString("output")

	var rendered string
	if asJSON {
		var err error
		rendered, err = output.FormatJSON(report)
		if err != nil {
			return err
		}
	} else {
		scheme := output.DefaultColorScheme()
		if noColor || outPath != "" || !output.IsTerminal(os.Stdout) {
			scheme = output.NoColorScheme()
		}
		rendered = output.FormatText(report, scheme)
	}

	if outPath != "" {
		if err := os.WriteFile(outPath, []byte(rendered), 0o644); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "report written to %s\n", outPath)
		return nil
	}

	fmt.Fprint(cmd.OutOrStdout(), rendered)
	return nil
}
