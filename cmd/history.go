package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/relaycoord/app"
	"github.com/kilianp07/relaycoord/config"
	"github.com/kilianp07/relaycoord/core/device"
	"github.com/kilianp07/relaycoord/core/results"
)

var (
	historyName     string
	historyFault    string
	historySince    time.Duration
	historyFailures bool
)

var historyCmd = &cobra.Command{
	Use:   "history [study-id]",
	Short: "List stored studies or show one study run",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyName, "name", "", "only studies with this name")
	historyCmd.Flags().StringVar(&historyFault, "fault-type", "", "phase or ground")
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "only studies newer than this duration")
	historyCmd.Flags().BoolVar(&historyFailures, "failures", false, "only studies with failures or overduty")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	q := results.Query{Name: historyName, FailuresOnly: historyFailures}
	if historyFault != "" {
		ft, err := device.ParseFaultType(historyFault)
		if err != nil {
			return err
		}
		q.FaultType = ft
	}
	if historySince > 0 {
		q.Start = time.Now().Add(-historySince)
	}
	return withService(func(ctx context.Context, _ *config.Config, svc *app.Service) error {
		var (
			list []results.Study
			err  error
		)
		if len(args) == 1 {
			list, err = svc.Lookup(ctx, args[0])
		} else {
			list, err = svc.History(ctx, q)
		}
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tFAULT\tCREATED\tROWS\tFAILURES\tOVERDUTY")
		for _, s := range list {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n", s.ID, s.Name, s.FaultType,
				s.CreatedAt.Format(time.RFC3339), s.Summary.Rows, s.Summary.Failures, s.Summary.Overduty)
		}
		return tw.Flush()
	})
}
