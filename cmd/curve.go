package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/relaycoord/core/curves"
)

var (
	curveTMS       float64
	curveMultiples []float64
	curveStandard  string
)

var curveCmd = &cobra.Command{
	Use:   "curve [id]",
	Short: "List curves or evaluate one at multiples of pickup",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCurve,
}

func init() {
	curveCmd.Flags().Float64Var(&curveTMS, "tms", 1, "time multiplier setting")
	curveCmd.Flags().Float64SliceVarP(&curveMultiples, "multiple", "m", []float64{1.5, 2, 5, 10, 20}, "multiples of pickup")
	curveCmd.Flags().StringVar(&curveStandard, "standard", "", `filter the list by standard, e.g. "IEC 60255"`)
	rootCmd.AddCommand(curveCmd)
}

func runCurve(cmd *cobra.Command, args []string) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	if len(args) == 0 {
		fmt.Fprintln(tw, "ID\tNAME\tSTANDARD")
		for _, d := range curves.ByStandard(curveStandard) {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", d.ID, d.Name, d.Standard())
		}
		return tw.Flush()
	}

	id, err := curves.Parse(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(tw, "MULTIPLE\t%s TMS=%g\n", id, curveTMS)
	for _, m := range curveMultiples {
		op, err := curves.Evaluate(id, m, curveTMS)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%g\t%s\n", m, op)
	}
	return tw.Flush()
}
