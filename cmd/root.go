package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kilianp07/catering/app"
	"github.com/kilianp07/catering/config"
	"github.com/kilianp07/catering/infra/logger"
)

var (
	cfgPath   string
	serverURL string
	token     string
)

var rootCmd = &cobra.Command{
	Use:   "catering",
	Short: "Airport catering dispatch service",
	RunE:  run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "configuration file (yaml or json); defaults and K_ variables when empty")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "catering service URL used by client commands")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("CATERING_ADMIN_TOKEN"), "admin bearer token used by client commands")
}

// Execute runs the CLI.
func Execute() error { return rootCmd.Execute() }

func run(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
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
	return svc.Run(ctx)
}
