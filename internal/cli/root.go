package cli

import (
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "gcmeter",
	Short:   "Measure work with hardware counters, split by GC phase",
	Version: version,
	Long: `gcmeter measures the cost of executing a unit of work using hardware
performance counters and wall/CPU clocks, attributes that cost to mutator
versus collector phases where the runtime makes cycle boundaries observable,
and aggregates repeated samples into robust statistics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(eventsCmd)
}
