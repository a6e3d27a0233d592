package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cividex/portalwatch/internal/monitor"
)

func newStatusCmd() *cobra.Command {
	var (
		hours  int
		digest bool
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Print run-history dashboards",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()

			if digest {
				d, err := a.Monitor.BuildDigest(ctx)
				if err != nil {
					return fmt.Errorf("build digest: %w", err)
				}
				cmd.Print(d.Render())
				return nil
			}

			window := time.Duration(hours) * time.Hour
			overall, err := a.Monitor.Overall(ctx, window)
			if err != nil {
				return fmt.Errorf("overall stats: %w", err)
			}
			cmd.Printf("runs (%.0fh): %d total, %d success, %d failed, %d skipped (%.1f%% success)\n",
				overall.WindowHours, overall.Total, overall.Success, overall.Failed,
				overall.Skipped, overall.SuccessRate*100)
			cmd.Printf("records: %d new, %d updated\n", overall.RecordsNew, overall.RecordsUpdated)

			tiers, err := a.Monitor.TierRollup(ctx, window)
			if err != nil {
				return fmt.Errorf("tier rollup: %w", err)
			}
			cmd.Println("tiers:")
			for _, t := range tiers {
				cmd.Printf("  tier %d: %d sources, %d runs, %d failed\n", t.Tier, t.Sources, t.Runs, t.Failed)
			}

			health, err := a.Monitor.Health(ctx)
			if err != nil {
				return fmt.Errorf("source health: %w", err)
			}
			unhealthy := 0
			for _, h := range health {
				if h.Level != monitor.LevelHealthy {
					unhealthy++
					cmd.Printf("  %-8s %-24s %d failures\n", h.Level, h.SourceCode, h.Failures)
				}
			}
			if unhealthy == 0 {
				cmd.Println("all sources healthy")
			}

			chronic, err := a.Monitor.ChronicFailures(ctx, window, 0)
			if err != nil {
				return fmt.Errorf("chronic failures: %w", err)
			}
			for _, c := range chronic {
				cmd.Printf("chronic: %s (%d failures) %s\n", c.SourceCode, c.Failures, c.LastError)
			}

			stats := a.Scheduler.Stats()
			cmd.Printf("scheduler: %d queued, %d active, %d calendar entries, %d/%d sources covered\n",
				stats.Queued, stats.Active, stats.Calendar,
				stats.Coverage.CoveredSources, stats.Coverage.TotalSources)
			return nil
		},
	}

	cmd.Flags().IntVar(&hours, "hours", 24, "lookback window in hours")
	cmd.Flags().BoolVar(&digest, "digest", false, "print the daily digest instead of dashboards")

	return cmd
}
