package cmd

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/kilianp07/relaycoord/api"
	"github.com/kilianp07/relaycoord/app"
	"github.com/kilianp07/relaycoord/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored studies and metrics over HTTP until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	return withService(func(ctx context.Context, cfg *config.Config, svc *app.Service) error {
		return api.Serve(ctx, cfg.API.Addr, api.NewMux(svc.Store(), cfg.API.Token, prometheus.DefaultGatherer))
	})
}
