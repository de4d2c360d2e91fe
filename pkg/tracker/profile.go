package tracker

import (
	"context"
	"time"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/domain/meal_plan"
	"github.com/risithcha/nutritrack/pkg/domain/nutrition"
	"github.com/risithcha/nutritrack/pkg/persistence"
	"github.com/risithcha/nutritrack/pkg/realtime"
	"github.com/risithcha/nutritrack/pkg/types"
)

func (t *Tracker) Profile(ctx context.Context, userID string) (types.UserProfile, error) {
	var p types.UserProfile
	err := t.withSession(ctx, userID, func(s *Session) error {
		p = s.profile
		return nil
	})
	return p, err
}

// UpdateProfile replaces the profile and recomputes the target. The profile
// is written straight away; the daily totals follow the debounce.
func (t *Tracker) UpdateProfile(ctx context.Context, userID string, p types.UserProfile) (types.DailyNutrition, error) {
	if err := nutrition.ValidateProfile(p); err != nil {
		return types.DailyNutrition{}, err
	}

	var daily types.DailyNutrition
	err := t.withSession(ctx, userID, func(s *Session) error {
		s.profile = p
		s.day = nutrition.ApplyProfileUpdate(s.day, p)
		daily = s.day.Nutrition

		t.deps.Gateway.Do(ctx, userID, "update:"+string(persistence.KindProfile), func(ctx context.Context) error {
			return t.deps.DB.UpdateUserFields(ctx, userID, map[string]interface{}{shared.FieldProfile: p})
		})
		t.scheduleDaily(s)
		t.broadcast(userID, realtime.MessageDailyUpdated, s.snapshot())

		t.logger.Info("Profile updated", "user_id", userID, "target", daily.TargetKcal)
		return nil
	})
	return daily, err
}

// SetTimezone changes the zone used for the local day. The rollover check
// runs again under the new zone.
func (t *Tracker) SetTimezone(ctx context.Context, userID, tz string) error {
	if _, err := time.LoadLocation(tz); err != nil || tz == "" {
		return &nutrition.ValidationError{Fields: map[string]string{"timezone": "Please select a valid timezone"}}
	}
	return t.withSession(ctx, userID, func(s *Session) error {
		s.timezone = tz
		t.deps.Gateway.Schedule(userID, persistence.KindProfile, map[string]interface{}{shared.FieldTimezone: tz})
		t.ensureToday(ctx, s)
		return nil
	})
}

// RegisterDevice stores an FCM token for push notifications.
func (t *Tracker) RegisterDevice(ctx context.Context, userID, token string) error {
	if token == "" {
		return &nutrition.ValidationError{Fields: map[string]string{"token": "Device token is required"}}
	}
	return t.withSession(ctx, userID, func(s *Session) error {
		for _, existing := range s.fcmTokens {
			if existing == token {
				return nil
			}
		}
		s.fcmTokens = append(s.fcmTokens, token)
		t.deps.Gateway.Append(ctx, userID, shared.FieldFCMTokens, token)
		return nil
	})
}

func (t *Tracker) MealPlan(ctx context.Context, userID string) (types.MealPlan, error) {
	var plan types.MealPlan
	err := t.withSession(ctx, userID, func(s *Session) error {
		plan = s.mealPlan
		return nil
	})
	return plan, err
}

// GenerateMealPlan replaces the meal plan wholesale. generated is false when
// the sample plan was used.
func (t *Tracker) GenerateMealPlan(ctx context.Context, userID string, prefs meal_plan.Preferences) (plan types.MealPlan, generated bool, err error) {
	profile, err := t.Profile(ctx, userID)
	if err != nil {
		return types.MealPlan{}, false, err
	}

	// Inference runs without the session lock held.
	plan, generated = t.deps.Planner.Generate(ctx, profile, prefs)

	err = t.withSession(ctx, userID, func(s *Session) error {
		s.mealPlan = plan
		t.deps.Gateway.Do(ctx, userID, "update:"+string(persistence.KindMealPlan), func(ctx context.Context) error {
			return t.deps.DB.UpdateUserFields(ctx, userID, map[string]interface{}{shared.FieldMealPlan: plan})
		})
		return nil
	})
	return plan, generated, err
}
