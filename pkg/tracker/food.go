package tracker

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/domain/food_analysis"
	"github.com/risithcha/nutritrack/pkg/domain/meal_plan"
	"github.com/risithcha/nutritrack/pkg/domain/nutrition"
	"github.com/risithcha/nutritrack/pkg/realtime"
	"github.com/risithcha/nutritrack/pkg/types"
)

// ScanOutcome is what a scan hands back to the client.
type ScanOutcome struct {
	Record types.FoodRecord     `json:"food"`
	Daily  types.DailyNutrition `json:"dailyNutrition"`
	// Estimated is set when inference failed and the fixed fallback record
	// was logged instead.
	Estimated bool                  `json:"estimated"`
	Path      []food_analysis.State `json:"path"`
}

// ScanFood runs the interpreter, stores the image and logs the result.
// food_analysis.ErrNotFood is returned unchanged; nothing is stored or logged.
func (t *Tracker) ScanFood(ctx context.Context, userID string, image shared.Image) (*ScanOutcome, error) {
	foodID := t.deps.NewID()
	object, ref := t.imageObject(userID, foodID, image.MIMEType)

	res, err := t.deps.Analyzer.Analyze(ctx, ref, image)
	if err != nil {
		return nil, err
	}

	record := res.Record
	if !t.storeImage(ctx, userID, object, image) {
		record.SourceImageRef = ""
	}
	if !res.IsFallback() {
		record.Tips = t.deps.Analyzer.Tips(ctx, record)
	}

	daily, err := t.logFood(ctx, userID, record)
	if err != nil {
		return nil, err
	}
	return &ScanOutcome{Record: record, Daily: daily, Estimated: res.IsFallback(), Path: res.Path}, nil
}

// imageObject names the object a scan's image is stored under. Both values
// are empty when no blob store is configured.
func (t *Tracker) imageObject(userID, foodID, mime string) (object, ref string) {
	if t.deps.Store == nil || t.deps.ImageBucket == "" {
		return "", ""
	}
	object = path.Join("users", userID, "foods", foodID+imageExt(mime))
	return object, fmt.Sprintf("gs://%s/%s", t.deps.ImageBucket, object)
}

// storeImage uploads the raw image. A failed upload is logged and reported
// as false so the record is kept without a reference.
func (t *Tracker) storeImage(ctx context.Context, userID, object string, image shared.Image) bool {
	if object == "" {
		return true
	}
	if err := t.deps.Store.Write(ctx, t.deps.ImageBucket, object, image.Data); err != nil {
		t.logger.Warn("Failed to store food image", "user_id", userID, "error", err)
		return false
	}
	return true
}

func imageExt(mime string) string {
	switch strings.ToLower(mime) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/heic":
		return ".heic"
	}
	return ".jpg"
}

// logFood folds a record into today's totals, appends it to history,
// persists both and emits food.logged.
func (t *Tracker) logFood(ctx context.Context, userID string, record types.FoodRecord) (types.DailyNutrition, error) {
	var event types.FoodLoggedEvent
	err := t.withSession(ctx, userID, func(s *Session) error {
		t.applyFood(ctx, s, record)
		event = types.FoodLoggedEvent{
			UserID:    userID,
			Food:      record,
			Daily:     s.day.Nutrition,
			Timestamp: t.deps.Now(),
		}
		return nil
	})
	if err != nil {
		return types.DailyNutrition{}, err
	}

	t.publish(ctx, shared.TopicFoodLogged, shared.EventTypeFoodLogged, event)
	return event.Daily, nil
}

// applyFood must be called with s.mu held.
func (t *Tracker) applyFood(ctx context.Context, s *Session, record types.FoodRecord) {
	s.day = nutrition.ApplyFoodRecord(s.day, record)
	s.history = append(s.history, record)

	t.deps.Gateway.Append(ctx, s.userID, shared.FieldFoodHistory, record)
	t.scheduleDaily(s)
	t.broadcast(s.userID, realtime.MessageDailyUpdated, s.snapshot())

	t.logger.Info("Food logged",
		"user_id", s.userID,
		"food_id", record.ID,
		"calories", record.Kcal,
		"consumed", s.day.Nutrition.ConsumedKcal,
		"remaining", s.day.Nutrition.RemainingKcal,
	)
}

// AddMealPlanEntry logs a meal plan entry as eaten.
func (t *Tracker) AddMealPlanEntry(ctx context.Context, userID, entryID string) (types.FoodRecord, types.DailyNutrition, error) {
	var (
		entry    types.MealPlanEntry
		category types.MealCategory
	)
	err := t.withSession(ctx, userID, func(s *Session) error {
		var ok bool
		entry, category, ok = s.mealPlan.Find(entryID)
		if !ok {
			return fmt.Errorf("%w: meal plan entry %s", shared.ErrNotFound, entryID)
		}
		return nil
	})
	if err != nil {
		return types.FoodRecord{}, types.DailyNutrition{}, err
	}

	record := meal_plan.ToFoodRecord(entry, category, t.deps.NewID(), t.deps.Now())
	daily, err := t.logFood(ctx, userID, record)
	return record, daily, err
}

// Daily returns today's totals and the foods logged so far.
func (t *Tracker) Daily(ctx context.Context, userID string) (DailySnapshot, error) {
	var snap DailySnapshot
	err := t.withSession(ctx, userID, func(s *Session) error {
		snap = s.snapshot()
		return nil
	})
	return snap, err
}

// History lists every logged food, newest first.
func (t *Tracker) History(ctx context.Context, userID string) ([]types.FoodRecord, error) {
	var out []types.FoodRecord
	err := t.withSession(ctx, userID, func(s *Session) error {
		out = append([]types.FoodRecord{}, s.history...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CapturedAt.After(out[j].CapturedAt)
	})
	return out, nil
}

// DeleteHistoryEntry removes a food from history. Today's totals are left
// as they are.
func (t *Tracker) DeleteHistoryEntry(ctx context.Context, userID, foodID string) error {
	return t.withSession(ctx, userID, func(s *Session) error {
		idx := -1
		for i, f := range s.history {
			if f.ID == foodID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("%w: food %s", shared.ErrNotFound, foodID)
		}
		s.history = append(s.history[:idx:idx], s.history[idx+1:]...)

		t.deps.Gateway.Do(ctx, userID, "delete:"+shared.FieldFoodHistory, func(ctx context.Context) error {
			return t.deps.DB.RemoveFoodHistoryEntry(ctx, userID, foodID)
		})
		return nil
	})
}
