package main

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/circulation-engine-go/circulation/health"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/notification"
	"github.com/AntonStoeckl/circulation-engine-go/circulation/sweep"
)

const (
	retryWorkerConcurrency = 4

	logMsgSweepsDisabled = "sweeps disabled, SWEEP_ENABLED is false"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the sweep scheduler, the notification retry worker and the health endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(cmd.Context(), opts)
			if err != nil {
				return err
			}

			return errors.Join(serve(cmd.Context(), a), a.close())
		},
	}
}

// serve runs every long-lived component until ctx is cancelled or one of them fails.
func serve(ctx context.Context, a *app) error {
	group, ctx := errgroup.WithContext(ctx)

	if a.cfg.Sweep.Enabled {
		scheduler, err := sweep.NewScheduler(sweep.Jobs(a.orchestrator, a.cfg.Sweep), sweep.WithLogger(a.logger))
		if err != nil {
			return err
		}

		group.Go(func() error {
			return scheduler.Run(ctx)
		})
	} else {
		a.logger.Warn(logMsgSweepsDisabled)
	}

	if a.publisher != nil {
		group.Go(func() error {
			return runRetryWorker(ctx, a)
		})
	}

	server := health.NewServer(append(a.checks, health.WithLogger(a.logger))...)

	group.Go(func() error {
		return server.ListenAndServe(ctx, a.cfg.Health.Addr)
	})

	return group.Wait()
}

func runRetryWorker(ctx context.Context, a *app) error {
	srv := asynq.NewServer(a.redisOpt(), asynq.Config{Concurrency: retryWorkerConcurrency})

	if err := srv.Start(notification.NewRetryWorker(a.publisher).Handler()); err != nil {
		return err
	}

	<-ctx.Done()
	srv.Shutdown()

	return nil
}
