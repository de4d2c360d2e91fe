package firestore

import (
	"reflect"
	"testing"
	"time"

	"github.com/risithcha/nutritrack/pkg/types"
)

func TestUserDocumentRoundTrip(t *testing.T) {
	now := time.Date(2024, 4, 2, 9, 15, 0, 0, time.UTC)
	profile := types.DefaultProfile()
	doc := &types.UserDocument{
		UserID:  "user-1",
		Email:   "a@example.com",
		Profile: &profile,
		DailyNutrition: types.DailyNutrition{
			ConsumedKcal: 95, TargetKcal: 2123, RemainingKcal: 2028, ProteinG: 0.5,
		},
		MealPlan: types.MealPlan{
			Breakfast: []types.MealPlanEntry{{ID: "e1", ItemName: "Oats", Kcal: 350}},
			Lunch:     []types.MealPlanEntry{},
			Dinner:    []types.MealPlanEntry{},
			Snacks:    []types.MealPlanEntry{},
		},
		FoodHistory: []types.FoodRecord{{
			ID: "f1", Name: "Apple", Kcal: 95, ConfidencePct: 90, MealType: types.MealTypeSnack,
			HealthScore: 9, CapturedAt: now, Tips: []string{"Eat the skin."},
		}},
		ScannedFoods:  []types.FoodRecord{},
		LastResetDate: "2024-04-02",
		Timezone:      "Europe/London",
		WaterEntries:  []types.WaterEntry{{ID: "w1", AmountMl: 250, Date: now}},
		WaterGoalMl:   2000,
		WeightEntries: []types.WeightEntry{{ID: "k1", Weight: 64.5, Date: now}},
		WeightGoal:    60,
		FCMTokens:     []string{"tok-1"},
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	got := FirestoreToUserDocument(UserDocumentToFirestore(doc))
	if !reflect.DeepEqual(got, doc) {
		t.Errorf("round trip mismatch\n got: %+v\nwant: %+v", got, doc)
	}
}

func TestFirestoreToUserDocument_Sparse(t *testing.T) {
	got := FirestoreToUserDocument(map[string]interface{}{
		"user_id": "user-2",
		"daily_nutrition": map[string]interface{}{
			"consumed": int64(300),
			"target":   int64(2000),
		},
	})

	if got.Profile != nil {
		t.Errorf("expected nil profile, got %+v", got.Profile)
	}
	if got.DailyNutrition.ConsumedKcal != 300 || got.DailyNutrition.TargetKcal != 2000 {
		t.Errorf("int64 numbers not converted: %+v", got.DailyNutrition)
	}
	if got.MealPlan.Breakfast == nil || len(got.MealPlan.Snacks) != 0 {
		t.Errorf("expected empty meal plan categories, got %+v", got.MealPlan)
	}
	if len(got.FoodHistory) != 0 {
		t.Errorf("expected no history, got %d", len(got.FoodHistory))
	}
}

func TestValueToFirestore(t *testing.T) {
	m, ok := ValueToFirestore(types.DailyNutrition{ConsumedKcal: 10}).(map[string]interface{})
	if !ok || m["consumed"] != 10.0 {
		t.Errorf("unexpected nutrition conversion: %#v", m)
	}

	if got := ValueToFirestore("2024-01-01"); got != "2024-01-01" {
		t.Errorf("plain values must pass through, got %#v", got)
	}

	list, ok := ValueToFirestore([]types.FoodRecord{{ID: "f1"}}).([]interface{})
	if !ok || len(list) != 1 {
		t.Errorf("unexpected food list conversion: %#v", list)
	}
}
