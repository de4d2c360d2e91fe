package firestore

import (
	"time"

	"github.com/risithcha/nutritrack/pkg/types"
)

// Helper to safely get string from map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// Helper to safely get a number from map. Firestore hands back int64 for
// whole numbers written from other clients.
func getFloat(m map[string]interface{}, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func getInt(m map[string]interface{}, key string) int {
	return int(getFloat(m, key))
}

func getBool(m map[string]interface{}, key string) bool {
	if b, ok := m[key].(bool); ok {
		return b
	}
	return false
}

func getTime(m map[string]interface{}, key string) time.Time {
	switch v := m[key].(type) {
	case time.Time:
		return v
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func getMap(m map[string]interface{}, key string) map[string]interface{} {
	if v, ok := m[key].(map[string]interface{}); ok {
		return v
	}
	return nil
}

func getMaps(m map[string]interface{}, key string) []map[string]interface{} {
	raw, ok := m[key].([]interface{})
	if !ok {
		return nil
	}
	out := make([]map[string]interface{}, 0, len(raw))
	for _, item := range raw {
		if im, ok := item.(map[string]interface{}); ok {
			out = append(out, im)
		}
	}
	return out
}

func getStrings(m map[string]interface{}, key string) []string {
	switch v := m[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// --- Profile ---

func ProfileToFirestore(p *types.UserProfile) map[string]interface{} {
	return map[string]interface{}{
		"gender":         string(p.Gender),
		"weight":         p.Weight,
		"height":         p.Height,
		"age":            p.AgeYears,
		"activity_level": string(p.ActivityLevel),
	}
}

func FirestoreToProfile(m map[string]interface{}) *types.UserProfile {
	return &types.UserProfile{
		Gender:        types.Gender(getString(m, "gender")),
		Weight:        getFloat(m, "weight"),
		Height:        getFloat(m, "height"),
		AgeYears:      getInt(m, "age"),
		ActivityLevel: types.ActivityLevel(getString(m, "activity_level")),
	}
}

// --- Daily nutrition ---

func DailyNutritionToFirestore(d *types.DailyNutrition) map[string]interface{} {
	return map[string]interface{}{
		"consumed":  d.ConsumedKcal,
		"target":    d.TargetKcal,
		"remaining": d.RemainingKcal,
		"protein":   d.ProteinG,
		"carbs":     d.CarbsG,
		"fat":       d.FatG,
		"fiber":     d.FiberG,
		"sugar":     d.SugarG,
		"sodium":    d.SodiumMg,
	}
}

func FirestoreToDailyNutrition(m map[string]interface{}) *types.DailyNutrition {
	return &types.DailyNutrition{
		ConsumedKcal:  getFloat(m, "consumed"),
		TargetKcal:    getFloat(m, "target"),
		RemainingKcal: getFloat(m, "remaining"),
		ProteinG:      getFloat(m, "protein"),
		CarbsG:        getFloat(m, "carbs"),
		FatG:          getFloat(m, "fat"),
		FiberG:        getFloat(m, "fiber"),
		SugarG:        getFloat(m, "sugar"),
		SodiumMg:      getFloat(m, "sodium"),
	}
}

// --- Food records ---

func FoodRecordToFirestore(f *types.FoodRecord) map[string]interface{} {
	m := map[string]interface{}{
		"id":           f.ID,
		"name":         f.Name,
		"calories":     f.Kcal,
		"protein":      f.ProteinG,
		"carbs":        f.CarbsG,
		"fat":          f.FatG,
		"fiber":        f.FiberG,
		"sugar":        f.SugarG,
		"sodium":       f.SodiumMg,
		"confidence":   f.ConfidencePct,
		"meal_type":    string(f.MealType),
		"health_score": f.HealthScore,
		"timestamp":    f.CapturedAt,
	}
	if f.ServingSizeDescription != "" {
		m["serving_size"] = f.ServingSizeDescription
	}
	if f.SourceImageRef != "" {
		m["image_ref"] = f.SourceImageRef
	}
	if len(f.Tips) > 0 {
		m["nutrition_tips"] = f.Tips
	}
	if f.IsFallback {
		m["is_fallback"] = true
	}
	return m
}

func FirestoreToFoodRecord(m map[string]interface{}) *types.FoodRecord {
	return &types.FoodRecord{
		ID:                     getString(m, "id"),
		Name:                   getString(m, "name"),
		Kcal:                   getFloat(m, "calories"),
		ProteinG:               getFloat(m, "protein"),
		CarbsG:                 getFloat(m, "carbs"),
		FatG:                   getFloat(m, "fat"),
		FiberG:                 getFloat(m, "fiber"),
		SugarG:                 getFloat(m, "sugar"),
		SodiumMg:               getFloat(m, "sodium"),
		ServingSizeDescription: getString(m, "serving_size"),
		ConfidencePct:          getInt(m, "confidence"),
		MealType:               types.MealType(getString(m, "meal_type")),
		HealthScore:            getInt(m, "health_score"),
		SourceImageRef:         getString(m, "image_ref"),
		CapturedAt:             getTime(m, "timestamp"),
		Tips:                   getStrings(m, "nutrition_tips"),
		IsFallback:             getBool(m, "is_fallback"),
	}
}

func foodRecordsToFirestore(in []types.FoodRecord) []interface{} {
	out := make([]interface{}, 0, len(in))
	for i := range in {
		out = append(out, FoodRecordToFirestore(&in[i]))
	}
	return out
}

func firestoreToFoodRecords(m map[string]interface{}, key string) []types.FoodRecord {
	raw := getMaps(m, key)
	out := make([]types.FoodRecord, 0, len(raw))
	for _, item := range raw {
		out = append(out, *FirestoreToFoodRecord(item))
	}
	return out
}

// --- Meal plan ---

func mealPlanEntryToFirestore(e *types.MealPlanEntry) map[string]interface{} {
	return map[string]interface{}{
		"id":          e.ID,
		"item":        e.ItemName,
		"calories":    e.Kcal,
		"protein":     e.ProteinG,
		"carbs":       e.CarbsG,
		"fat":         e.FatG,
		"description": e.Description,
	}
}

func firestoreToMealPlanEntries(m map[string]interface{}, key string) []types.MealPlanEntry {
	raw := getMaps(m, key)
	out := make([]types.MealPlanEntry, 0, len(raw))
	for _, item := range raw {
		out = append(out, types.MealPlanEntry{
			ID:          getString(item, "id"),
			ItemName:    getString(item, "item"),
			Kcal:        getFloat(item, "calories"),
			ProteinG:    getFloat(item, "protein"),
			CarbsG:      getFloat(item, "carbs"),
			FatG:        getFloat(item, "fat"),
			Description: getString(item, "description"),
		})
	}
	return out
}

func MealPlanToFirestore(p *types.MealPlan) map[string]interface{} {
	m := make(map[string]interface{}, len(types.MealCategories))
	for _, c := range types.MealCategories {
		entries := p.Category(c)
		list := make([]interface{}, 0, len(entries))
		for i := range entries {
			list = append(list, mealPlanEntryToFirestore(&entries[i]))
		}
		m[string(c)] = list
	}
	return m
}

func FirestoreToMealPlan(m map[string]interface{}) *types.MealPlan {
	return &types.MealPlan{
		Breakfast: firestoreToMealPlanEntries(m, string(types.MealCategoryBreakfast)),
		Lunch:     firestoreToMealPlanEntries(m, string(types.MealCategoryLunch)),
		Dinner:    firestoreToMealPlanEntries(m, string(types.MealCategoryDinner)),
		Snacks:    firestoreToMealPlanEntries(m, string(types.MealCategorySnacks)),
	}
}

// --- Water / weight ---

func WaterEntryToFirestore(e *types.WaterEntry) map[string]interface{} {
	return map[string]interface{}{"id": e.ID, "amount": e.AmountMl, "date": e.Date}
}

func WeightEntryToFirestore(e *types.WeightEntry) map[string]interface{} {
	return map[string]interface{}{"id": e.ID, "weight": e.Weight, "date": e.Date}
}

// --- User document ---

func UserDocumentToFirestore(u *types.UserDocument) map[string]interface{} {
	m := map[string]interface{}{
		"user_id":         u.UserID,
		"daily_nutrition": DailyNutritionToFirestore(&u.DailyNutrition),
		"meal_plan":       MealPlanToFirestore(&u.MealPlan),
		"food_history":    foodRecordsToFirestore(u.FoodHistory),
		"scanned_foods":   foodRecordsToFirestore(u.ScannedFoods),
		"last_reset_date": u.LastResetDate,
		"water_goal_ml":   u.WaterGoalMl,
		"weight_goal":     u.WeightGoal,
		"created_at":      u.CreatedAt,
		"updated_at":      u.UpdatedAt,
	}
	if u.Email != "" {
		m["email"] = u.Email
	}
	if u.Profile != nil {
		m["profile"] = ProfileToFirestore(u.Profile)
	}
	if u.Timezone != "" {
		m["timezone"] = u.Timezone
	}

	water := make([]interface{}, 0, len(u.WaterEntries))
	for i := range u.WaterEntries {
		water = append(water, WaterEntryToFirestore(&u.WaterEntries[i]))
	}
	m["water_entries"] = water

	weight := make([]interface{}, 0, len(u.WeightEntries))
	for i := range u.WeightEntries {
		weight = append(weight, WeightEntryToFirestore(&u.WeightEntries[i]))
	}
	m["weight_entries"] = weight

	if len(u.FCMTokens) > 0 {
		m["fcm_tokens"] = u.FCMTokens
	}
	return m
}

func FirestoreToUserDocument(m map[string]interface{}) *types.UserDocument {
	u := &types.UserDocument{
		UserID:        getString(m, "user_id"),
		Email:         getString(m, "email"),
		FoodHistory:   firestoreToFoodRecords(m, "food_history"),
		ScannedFoods:  firestoreToFoodRecords(m, "scanned_foods"),
		LastResetDate: getString(m, "last_reset_date"),
		Timezone:      getString(m, "timezone"),
		WaterGoalMl:   getFloat(m, "water_goal_ml"),
		WeightGoal:    getFloat(m, "weight_goal"),
		FCMTokens:     getStrings(m, "fcm_tokens"),
		CreatedAt:     getTime(m, "created_at"),
		UpdatedAt:     getTime(m, "updated_at"),
		MealPlan:      types.EmptyMealPlan(),
	}

	if p := getMap(m, "profile"); p != nil {
		u.Profile = FirestoreToProfile(p)
	}
	if d := getMap(m, "daily_nutrition"); d != nil {
		u.DailyNutrition = *FirestoreToDailyNutrition(d)
	}
	if mp := getMap(m, "meal_plan"); mp != nil {
		u.MealPlan = *FirestoreToMealPlan(mp)
	}

	for _, w := range getMaps(m, "water_entries") {
		u.WaterEntries = append(u.WaterEntries, types.WaterEntry{
			ID:       getString(w, "id"),
			AmountMl: getFloat(w, "amount"),
			Date:     getTime(w, "date"),
		})
	}
	for _, w := range getMaps(m, "weight_entries") {
		u.WeightEntries = append(u.WeightEntries, types.WeightEntry{
			ID:     getString(w, "id"),
			Weight: getFloat(w, "weight"),
			Date:   getTime(w, "date"),
		})
	}
	return u
}

// ValueToFirestore converts a domain value passed to a partial update into
// its document form. Unknown types pass through unchanged.
func ValueToFirestore(v interface{}) interface{} {
	switch val := v.(type) {
	case types.UserProfile:
		return ProfileToFirestore(&val)
	case *types.UserProfile:
		return ProfileToFirestore(val)
	case types.DailyNutrition:
		return DailyNutritionToFirestore(&val)
	case types.MealPlan:
		return MealPlanToFirestore(&val)
	case types.FoodRecord:
		return FoodRecordToFirestore(&val)
	case []types.FoodRecord:
		return foodRecordsToFirestore(val)
	case types.WaterEntry:
		return WaterEntryToFirestore(&val)
	case types.WeightEntry:
		return WeightEntryToFirestore(&val)
	case types.MealType:
		return string(val)
	}
	return v
}
