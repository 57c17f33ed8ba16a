package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/relaycoord/app"
	"github.com/kilianp07/relaycoord/config"
	"github.com/kilianp07/relaycoord/infra/logger"
	"github.com/kilianp07/relaycoord/infra/metrics"
)

var (
	studyOutput string
	studyStrict bool
	studyServe  bool
)

// errViolations is returned in strict mode when a study is not selective.
var errViolations = errors.New("coordination failures or breaker overduty found")

var studyCmd = &cobra.Command{
	Use:   "study <file>...",
	Short: "Run coordination studies on study files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStudy,
}

func init() {
	studyCmd.Flags().StringVarP(&studyOutput, "output", "o", "", "output directory (overrides study.output_dir)")
	studyCmd.Flags().BoolVar(&studyStrict, "strict", false, "exit with an error on coordination failures or breaker overduty")
	studyCmd.Flags().BoolVar(&studyServe, "serve", false, "keep serving /metrics on metrics.prometheus_addr until interrupted")
	rootCmd.AddCommand(studyCmd)
}

func runStudy(cmd *cobra.Command, args []string) error {
	return withService(func(ctx context.Context, cfg *config.Config, svc *app.Service) error {
		if studyOutput != "" {
			cfg.Study.OutputDir = studyOutput
		}
		if studyServe && cfg.Metrics.PrometheusAddr != "" {
			go func() {
				if err := metrics.StartPromServer(ctx, cfg.Metrics.PrometheusAddr); err != nil {
					logger.New("main").Errorf("prom server: %v", err)
				}
			}()
		}

		out := cmd.OutOrStdout()
		violations := false
		for _, path := range args {
			rep, err := svc.Run(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			fmt.Fprintf(out, "%s  %s\n", rep.StudyID, rep.Name)
			for _, st := range rep.Studies {
				s := st.Summary
				fmt.Fprintf(out, "  %-6s rows=%d selective=%d failures=%d undefined=%d no_trip=%d errors=%d overduty=%d\n",
					st.FaultType, s.Rows, s.Selective, s.Failures, s.Undefined, s.NoTrip, s.Errors, s.Overduty)
				for _, p := range st.Table.Failures() {
					fmt.Fprintf(out, "    failure: %s backs up %s at %gA\n", p.Upstream, p.Downstream, p.CurrentA)
				}
				for _, b := range st.Table.Overduty() {
					fmt.Fprintf(out, "    %s: %s (%.2f kA, rated %.2f kA)\n", b.Status, b.CB, b.FaultKA, b.RatingKA)
				}
			}
			for _, f := range rep.Files {
				fmt.Fprintf(out, "  wrote %s\n", f)
			}
			if rep.Failures() > 0 || rep.Overduty() > 0 {
				violations = true
			}
		}

		if studyServe && cfg.Metrics.PrometheusAddr != "" {
			<-ctx.Done()
		}
		if studyStrict && violations {
			return errViolations
		}
		return nil
	})
}
