package meal_plan

import (
	"time"

	"github.com/risithcha/nutritrack/pkg/types"
)

// SamplePlan is served when the model cannot produce a plan. IDs are fresh
// on every call.
func SamplePlan(newID func() string) types.MealPlan {
	entry := func(item string, kcal, protein, carbs, fat float64) types.MealPlanEntry {
		return types.MealPlanEntry{ID: newID(), ItemName: item, Kcal: kcal, ProteinG: protein, CarbsG: carbs, FatG: fat}
	}
	return types.MealPlan{
		Breakfast: []types.MealPlanEntry{
			entry("Oatmeal with Berries and Nuts", 350, 15, 50, 12),
			entry("Greek Yogurt with Honey", 200, 20, 25, 5),
		},
		Lunch: []types.MealPlanEntry{
			entry("Grilled Chicken Salad", 450, 35, 15, 25),
			entry("Quinoa Bowl with Vegetables", 380, 18, 45, 15),
		},
		Dinner: []types.MealPlanEntry{
			entry("Salmon with Roasted Vegetables", 550, 40, 20, 30),
			entry("Lean Beef Stir-Fry", 480, 35, 25, 22),
		},
		Snacks: []types.MealPlanEntry{
			entry("Greek Yogurt with Nuts", 200, 15, 10, 12),
			entry("Apple with Almond Butter", 180, 8, 25, 10),
		},
	}
}

// ToFoodRecord turns a plan entry into a record for the daily intake. The
// meal type follows the category; "snacks" logs as a snack.
func ToFoodRecord(e types.MealPlanEntry, category types.MealCategory, id string, now time.Time) types.FoodRecord {
	mealType := types.MealType(category)
	if category == types.MealCategorySnacks {
		mealType = types.MealTypeSnack
	}
	return types.FoodRecord{
		ID:            id,
		Name:          e.ItemName,
		Kcal:          e.Kcal,
		ProteinG:      e.ProteinG,
		CarbsG:        e.CarbsG,
		FatG:          e.FatG,
		ConfidencePct: 100,
		MealType:      mealType,
		CapturedAt:    now,
	}
}
