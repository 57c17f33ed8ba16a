package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/kilianp07/relaycoord/app"
	"github.com/kilianp07/relaycoord/config"
	"github.com/kilianp07/relaycoord/core/shortcircuit"
)

var scCase string

var scCmd = &cobra.Command{
	Use:   "sc <file>",
	Short: "Compute IEC 60909 short-circuit duty per bus",
	Args:  cobra.ExactArgs(1),
	RunE:  runShortCircuit,
}

func init() {
	scCmd.Flags().StringVar(&scCase, "case", "", "max or min (defaults to study.case)")
	rootCmd.AddCommand(scCmd)
}

func runShortCircuit(cmd *cobra.Command, args []string) error {
	var c shortcircuit.Case
	if scCase != "" {
		parsed, err := shortcircuit.ParseCase(scCase)
		if err != nil {
			return err
		}
		c = parsed
	}
	return withService(func(ctx context.Context, cfg *config.Config, svc *app.Service) error {
		buses, err := svc.ShortCircuit(ctx, args[0], c)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "BUS\tNAME\tVN_KV\tIK3_KA\tIK1_KA\tIP_KA\tR/X\tSTATUS")
		for _, b := range buses {
			fmt.Fprintf(tw, "%d\t%s\t%g\t%.3f\t%.3f\t%.3f\t%.3f\t%s\n", b.Bus, b.Name, b.VnKV, b.Ik3KA, b.Ik1KA, b.IpKA, b.RX, b.Status)
		}
		return tw.Flush()
	})
}
