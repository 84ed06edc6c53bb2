package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/underwrite-cli/internal/schedule"
)

var scheduleHorizon int

var scheduleCmd = &cobra.Command{
	Use:   "schedule <track.yaml>",
	Short: "Compute a stepped growth-rate schedule from a YAML track file",
	Long: `Reads a YAML file of the form:

  name: Custom 1
  steps:
    - { rate: "3.0%", periods: "12" }
    - { rate: "2.5%", periods: "E" }

and prints each step's from/thru period span.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrapf(err, "read track %s", args[0])
		}

		var track schedule.Track
		if err := yaml.Unmarshal(data, &track); err != nil {
			return eris.Wrap(err, "parse track")
		}

		computed := schedule.Compute(track.Steps, scheduleHorizon)

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "STEP\tRATE\tPERIODS\tFROM\tTHRU")
		for i, s := range computed {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
				i+1, s.Rate, s.Periods, schedule.Label(s.From), schedule.Label(s.Thru))
		}
		if err := w.Flush(); err != nil {
			return err
		}

		for _, issue := range schedule.ValidateTrack(track.Steps) {
			fmt.Fprintf(cmd.OutOrStdout(), "warning: step %d: %s\n", issue.StepIndex+1, issue.Message)
		}
		return nil
	},
}

func init() {
	scheduleCmd.Flags().IntVar(&scheduleHorizon, "horizon", schedule.DefaultHorizon, "analysis horizon in periods")
	rootCmd.AddCommand(scheduleCmd)
}
