// Package cmd wires the portalwatch CLI.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cividex/portalwatch/internal/app"
	"github.com/cividex/portalwatch/internal/config"
)

var cfgFile string

// appKeyType keys the App in the command context.
type appKeyType struct{}

// newApp is the application factory. It is a variable so tests can
// swap in a stub.
var newApp = func(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.New(ctx, cfg)
}

// appFrom retrieves the App injected by the root PersistentPreRunE.
func appFrom(cmd *cobra.Command) *app.App {
	a, _ := cmd.Context().Value(appKeyType{}).(*app.App)
	return a
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portalwatch",
		Short: "Scheduled scraping of council development application portals.",
		Long: `portalwatch keeps a catalog of council planning portals fresh by
scraping each one on a tiered cadence, gating on portal health, and
recording every run for monitoring and alerting.`,
		SilenceUsage: true,

		// Runs after flags parse and before any subcommand, so every
		// command sees a fully built service graph.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("initialize services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKeyType{}, a))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a := appFrom(cmd); a != nil {
				a.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default uses built-in defaults plus PORTALWATCH_* env)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newScrapeCmd())
	cmd.AddCommand(newLearnCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

// Execute is the CLI entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		zap.NewExample().Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}
