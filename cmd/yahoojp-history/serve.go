package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ahmethakanbesel/yahoojp-history/internal/config"
	"github.com/ahmethakanbesel/yahoojp-history/internal/download"
	"github.com/ahmethakanbesel/yahoojp-history/internal/job"
	"github.com/ahmethakanbesel/yahoojp-history/internal/platform/sqlite"
	jobrepo "github.com/ahmethakanbesel/yahoojp-history/internal/repository/job"
	"github.com/ahmethakanbesel/yahoojp-history/internal/server"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve history and run-log queries over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, err := sqlite.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			jobSvc := job.NewService(jobrepo.NewRepository(db.DB))
			if err := jobSvc.MarkInterrupted(ctx); err != nil {
				slog.Error("failed to close out interrupted jobs", "error", err)
			}

			client := download.NewClient()
			defer client.CloseIdleConnections()
			historySvc := download.NewService(client, cfg.Batch.PeriodDays, sessionOptions(cfg)...)

			srv := server.New(ctx, cfg.Port, historySvc, jobSvc)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(srv.Start)
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})

			if err := g.Wait(); err != nil {
				return err
			}
			slog.Info("server stopped")
			return nil
		},
	}
}
