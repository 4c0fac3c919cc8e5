// Package scheduler drives pipeline runs on an aligned interval.
package scheduler

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// RunFunc is invoked once per interval tick.
type RunFunc func(ctx context.Context, tick time.Time) error

// Options tune scheduler behaviour.
type Options struct {
	Interval time.Duration
	// AlignToInterval snaps ticks to interval boundaries (e.g. every five
	// minutes on the clock) instead of firing relative to startup.
	AlignToInterval bool
	StartupDelay    time.Duration
}

// Scheduler invokes a run function at each interval until cancelled. A
// failed run is logged and the loop continues; cadence errors are the
// caller's to observe, not fatal.
type Scheduler struct {
	opts   Options
	logger zerolog.Logger
}

// New constructs a Scheduler.
func New(opts Options, logger zerolog.Logger) *Scheduler {
	if opts.Interval <= 0 {
		panic("scheduler interval must be positive")
	}
	return &Scheduler{opts: opts, logger: logger.With().Str("component", "scheduler").Logger()}
}

// Run blocks until ctx is cancelled, invoking fn on every tick.
func (s *Scheduler) Run(ctx context.Context, fn RunFunc) error {
	if s.opts.StartupDelay > 0 {
		if err := sleepCtx(ctx, s.opts.StartupDelay); err != nil {
			return err
		}
	}

	next := s.nextTick(time.Now().UTC())
	for {
		if err := sleepCtx(ctx, time.Until(next)); err != nil {
			return err
		}

		s.logger.Info().Time("tick", next).Msg("executing scheduled run")
		if err := fn(ctx, next); err != nil {
			s.logger.Error().Err(err).Time("tick", next).Msg("scheduled run failed")
		}

		next = s.nextTick(time.Now().UTC())
	}
}

func (s *Scheduler) nextTick(now time.Time) time.Time {
	if !s.opts.AlignToInterval {
		return now.Add(s.opts.Interval)
	}
	tick := now.Truncate(s.opts.Interval)
	for !tick.After(now) {
		tick = tick.Add(s.opts.Interval)
	}
	return tick
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
