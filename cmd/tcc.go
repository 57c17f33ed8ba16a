package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kilianp07/relaycoord/app"
	"github.com/kilianp07/relaycoord/core/device"
	coremqtt "github.com/kilianp07/relaycoord/core/mqtt"
	"github.com/kilianp07/relaycoord/core/results"
	"github.com/kilianp07/relaycoord/pkg/studyfile"
)

var (
	tccFaultType string
	tccOutput    string
)

var tccCmd = &cobra.Command{
	Use:   "tcc <file>",
	Short: "Plot the time-current characteristics of a study file",
	Args:  cobra.ExactArgs(1),
	RunE:  runTCC,
}

func init() {
	tccCmd.Flags().StringVarP(&tccFaultType, "fault-type", "f", string(device.Phase), "phase or ground")
	tccCmd.Flags().StringVarP(&tccOutput, "output", "o", "", "HTML file (defaults to <output_dir>/<name>_<fault>_tcc.html)")
	rootCmd.AddCommand(tccCmd)
}

func runTCC(cmd *cobra.Command, args []string) error {
	ft, err := device.ParseFaultType(tccFaultType)
	if err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(cfg, app.WithStore(results.NopStore{}), app.WithPublisher(coremqtt.NopPublisher{}))
	if err != nil {
		return err
	}
	defer svc.Close()

	st, err := studyfile.Load(args[0], studyfile.Options{FrequencyHz: cfg.Study.FrequencyHz})
	if err != nil {
		return err
	}
	path := tccOutput
	if path == "" {
		path = filepath.Join(cfg.Study.OutputDir, fmt.Sprintf("%s_%s_tcc.html", st.Name, ft))
	}
	if err := svc.PlotTCC(path, st, ft, svc.FaultMarkers(st, ft)); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
	return nil
}
