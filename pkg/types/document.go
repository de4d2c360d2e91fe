package types

import "time"

// UserDocument is the persisted per-user document (users/{uid}).
// JSON tags double as document field names, see shared.Field* constants.
type UserDocument struct {
	UserID         string         `json:"user_id"`
	Email          string         `json:"email,omitempty"`
	Profile        *UserProfile   `json:"profile,omitempty"`
	DailyNutrition DailyNutrition `json:"daily_nutrition"`
	MealPlan       MealPlan       `json:"meal_plan"`
	FoodHistory    []FoodRecord   `json:"food_history"`
	ScannedFoods   []FoodRecord   `json:"scanned_foods"`
	LastResetDate  string         `json:"last_reset_date"`
	Timezone       string         `json:"timezone,omitempty"`
	WaterEntries   []WaterEntry   `json:"water_entries"`
	WaterGoalMl    float64        `json:"water_goal_ml"`
	WeightEntries  []WeightEntry  `json:"weight_entries"`
	WeightGoal     float64        `json:"weight_goal"`
	FCMTokens      []string       `json:"fcm_tokens,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Session is the result of a successful email/password sign-in.
type Session struct {
	UserID       string `json:"userId"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int    `json:"expiresIn"`
}
