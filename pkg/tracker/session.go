package tracker

import (
	"sync"

	"github.com/risithcha/nutritrack/pkg/domain/nutrition"
	"github.com/risithcha/nutritrack/pkg/types"
)

// Session is the live state of one user. Fields are guarded by mu.
type Session struct {
	mu     sync.Mutex
	userID string
	loaded bool

	// Guarded by Tracker.mu. refs counts callers holding the session; pinned
	// is set once a user request has used it.
	refs   int
	pinned bool

	email      string
	profile    types.UserProfile
	day        types.DailyState
	mealPlan   types.MealPlan
	history    []types.FoodRecord
	water      []types.WaterEntry
	waterGoal  float64
	weight     []types.WeightEntry
	weightGoal float64
	timezone   string
	fcmTokens  []string
}

func (s *Session) restore(doc *types.UserDocument) {
	s.email = doc.Email
	s.profile = types.DefaultProfile()
	if doc.Profile != nil {
		s.profile = *doc.Profile
	}
	s.day = nutrition.Restore(s.profile, doc.DailyNutrition, doc.ScannedFoods, doc.LastResetDate)
	s.mealPlan = doc.MealPlan
	if s.mealPlan.Breakfast == nil && s.mealPlan.Lunch == nil && s.mealPlan.Dinner == nil && s.mealPlan.Snacks == nil {
		s.mealPlan = types.EmptyMealPlan()
	}
	s.history = append([]types.FoodRecord{}, doc.FoodHistory...)
	s.water = append([]types.WaterEntry{}, doc.WaterEntries...)
	s.waterGoal = doc.WaterGoalMl
	s.weight = append([]types.WeightEntry{}, doc.WeightEntries...)
	s.weightGoal = doc.WeightGoal
	s.timezone = doc.Timezone
	s.fcmTokens = append([]string{}, doc.FCMTokens...)
}

// DailySnapshot is a copy of the day safe to hand out of the lock.
type DailySnapshot struct {
	Nutrition     types.DailyNutrition `json:"dailyNutrition"`
	ScannedFoods  []types.FoodRecord   `json:"scannedFoods"`
	LastResetDate string               `json:"lastResetDate"`
}

func (s *Session) snapshot() DailySnapshot {
	return DailySnapshot{
		Nutrition:     s.day.Nutrition,
		ScannedFoods:  append([]types.FoodRecord{}, s.day.ScannedFoods...),
		LastResetDate: s.day.LastResetDate,
	}
}
