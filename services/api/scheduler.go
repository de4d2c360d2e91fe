package main

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// sweepInterval is short enough to catch midnight in zones with 30 and 45
// minute offsets.
const sweepInterval = 15 * time.Minute

type rolloverSweeper interface {
	RolloverAll(ctx context.Context) (int, error)
}

// startRolloverScheduler runs the rollover sweep on a fixed interval. Users
// with an open session are also rolled over on their next request, so a
// missed run only delays the reset event.
func startRolloverScheduler(ctx context.Context, sweeper rolloverSweeper, interval time.Duration, logger *slog.Logger) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			reset, err := sweeper.RolloverAll(ctx)
			if err != nil {
				logger.Error("Rollover sweep failed", "error", err)
				return
			}
			if reset > 0 {
				logger.Info("Rollover sweep reset users", "count", reset)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithName("rollover-sweep"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, err
	}

	s.Start()
	return s, nil
}
