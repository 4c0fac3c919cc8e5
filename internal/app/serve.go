package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"crypto-price-pipeline/internal/scheduler"
)

// Serve runs the pipeline on the configured cadence until interrupted.
// Each tick is an independent run; a failed run is logged by the scheduler
// and does not stop the loop.
func (a *App) Serve(ctx context.Context, sourceName string) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	src, err := a.newSource(sourceName)
	if err != nil {
		return err
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	sched := scheduler.New(scheduler.Options{
		Interval:        a.Config.Scheduler.Interval,
		AlignToInterval: a.Config.Scheduler.AlignToInterval,
		StartupDelay:    a.Config.Scheduler.StartupDelay,
	}, a.Logger)

	p := a.newPipeline(src, store)

	a.Logger.Info().
		Str("source", src.Name()).
		Dur("interval", a.Config.Scheduler.Interval).
		Msg("starting scheduled ingestion")

	err = sched.Run(ctx, func(ctx context.Context, _ time.Time) error {
		_, runErr := p.Run(ctx)
		return runErr
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("scheduled ingestion terminated with error")
		return err
	}

	a.Logger.Info().Msg("scheduled ingestion stopped")
	return nil
}
