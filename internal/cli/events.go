package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gcmeter/internal/events"
	"gcmeter/internal/output"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List the measurable events",
	Long: `List every event in the catalog with its kind and availability.
Hardware events require counter support on the current platform; software
events (timing, gc-count, OS accounting) are always available.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		noColor, _ := cmd.Flags().GetBool("no-color")
		scheme := output.DefaultColorScheme()
		if noColor || !output.IsTerminal(os.Stdout) {
			scheme = output.NoColorScheme()
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			scheme.Header.Sprint("EVENT"),
			scheme.Header.Sprint("KIND"),
			scheme.Header.Sprint("AVAILABLE"))
		for _, d := range events.All() {
			avail := scheme.Success.Sprint("yes")
			if !d.Available {
				avail = scheme.Error.Sprint("no")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", scheme.Event.Sprint(d.Name), d.Kind, avail)
		}
		return w.Flush()
	},
}

func init() {
	eventsCmd.Flags().Bool("no-color", false, "disable colored output")
}
