package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cividex/portalwatch/internal/dispatcher"
	"github.com/cividex/portalwatch/internal/ops"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler beat, worker pool and observability server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", a.Config.Ops.Port),
				Handler:           ops.NewServer(a.Scheduler, a.Monitor, a.Logger.Named("ops")).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			var wg sync.WaitGroup

			wg.Add(1)
			go func() {
				defer wg.Done()
				a.Scheduler.RunBeat(ctx)
			}()

			wg.Add(1)
			go func() {
				defer wg.Done()
				dispatcher.New(a.Queue, a.Workers).Run(ctx)
			}()

			errCh := make(chan error, 1)
			go func() {
				a.Logger.Info("ops server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case <-ctx.Done():
			case err := <-errCh:
				stop()
				wg.Wait()
				return fmt.Errorf("ops server: %w", err)
			}

			a.Logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.Logger.Warn("ops server shutdown", zap.Error(err))
			}
			wg.Wait()
			return nil
		},
	}
}
