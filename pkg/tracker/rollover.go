package tracker

import (
	"context"

	"github.com/getsentry/sentry-go"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/domain/nutrition"
	infrasentry "github.com/risithcha/nutritrack/pkg/infrastructure/sentry"
	"github.com/risithcha/nutritrack/pkg/realtime"
	"github.com/risithcha/nutritrack/pkg/types"
)

// ensureToday resets the day when the user's local date has moved on. It
// is idempotent for a given date.
func (t *Tracker) ensureToday(ctx context.Context, s *Session) bool {
	prev := s.day
	next, changed := nutrition.Rollover(s.day, t.today(s))
	if !changed {
		return false
	}
	s.day = next
	t.scheduleDaily(s)

	t.logger.Info("Day rolled over",
		"user_id", s.userID,
		"previous_day", prev.LastResetDate,
		"day", next.LastResetDate,
		"previous_consumed", prev.Nutrition.ConsumedKcal,
	)

	// A brand new account has no previous day worth announcing.
	if prev.LastResetDate == "" {
		return true
	}
	event := types.DayRolledOverEvent{
		UserID:           s.userID,
		Day:              next.LastResetDate,
		PreviousDay:      prev.LastResetDate,
		PreviousConsumed: prev.Nutrition.ConsumedKcal,
		Timestamp:        t.deps.Now(),
	}
	t.publish(ctx, shared.TopicDayRolledOver, shared.EventTypeDayRolledOver, event)
	t.broadcast(s.userID, realtime.MessageDayRolledOver, s.snapshot())
	return true
}

// Rollover applies the midnight reset for one user if it is due. It reports
// whether a reset happened. A session loaded only for the sweep is dropped
// again afterwards unless a request picked it up in the meantime.
func (t *Tracker) Rollover(ctx context.Context, userID string) (bool, error) {
	s, created := t.acquire(userID, false)
	defer t.release(s, created)

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		if err := t.load(ctx, s); err != nil {
			return false, err
		}
	}
	return t.ensureToday(ctx, s), nil
}

// RolloverAll sweeps every user. Per-user failures are logged and the sweep
// continues; the count of users that were reset is returned.
func (t *Tracker) RolloverAll(ctx context.Context) (int, error) {
	ids, err := t.deps.DB.ListUserIDs(ctx)
	if err != nil {
		return 0, err
	}

	var reset, failed int
	for _, id := range ids {
		if ctx.Err() != nil {
			return reset, ctx.Err()
		}
		changed, err := t.Rollover(ctx, id)
		if err != nil {
			t.logger.Error("Rollover failed", "user_id", id, "error", err)
			failed++
			continue
		}
		if changed {
			reset++
		}
	}
	t.logger.Info("Rollover sweep complete", "users", len(ids), "reset", reset, "failed", failed)
	if failed > 0 {
		infrasentry.CaptureMessage("Rollover sweep had failures", sentry.LevelWarning, map[string]interface{}{
			"users":  len(ids),
			"failed": failed,
		}, t.logger)
	}
	return reset, nil
}
