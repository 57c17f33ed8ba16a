package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/relaycoord/app"
	"github.com/kilianp07/relaycoord/config"
	coremon "github.com/kilianp07/relaycoord/core/monitoring"
	"github.com/kilianp07/relaycoord/infra/logger"
	"github.com/kilianp07/relaycoord/infra/monitoring"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "relaycoord",
	Short:         "Protective relay coordination studies",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (YAML or JSON); defaults and RC_ variables when empty")
}

// Execute runs the CLI.
func Execute() error {
	defer coremon.Flush(2 * time.Second)
	return rootCmd.Execute()
}

// loadConfig reads the configuration and installs the error monitor.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		logger.New("main").Warnf("sentry disabled: %v", err)
	} else {
		coremon.Init(mon)
	}
	return cfg, nil
}

// withService loads the configuration, builds the service and closes it once
// fn returns.
func withService(fn func(ctx context.Context, cfg *config.Config, svc *app.Service) error) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	svc, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			logger.New("main").Errorf("service close: %v", err)
		}
	}()
	return fn(ctx, cfg, svc)
}
