package shared

import "time"

const (
	ProjectID = "nutritrack-project" // Can be overridden by env var

	TopicFoodLogged      = "topic-food-logged"
	TopicDayRolledOver   = "topic-day-rolled-over"
	TopicRolloverTrigger = "topic-rollover-trigger"

	EventTypeFoodLogged    = "com.nutritrack.food.logged"
	EventTypeDayRolledOver = "com.nutritrack.day.rolled_over"
	EventSourceTracker     = "/nutritrack/tracker"

	CollectionUsers = "users"

	// Document field names on users/{uid}
	FieldEmail          = "email"
	FieldProfile        = "profile"
	FieldDailyNutrition = "daily_nutrition"
	FieldMealPlan       = "meal_plan"
	FieldFoodHistory    = "food_history"
	FieldScannedFoods   = "scanned_foods"
	FieldLastResetDate  = "last_reset_date"
	FieldTimezone       = "timezone"
	FieldWaterEntries   = "water_entries"
	FieldWaterGoal      = "water_goal_ml"
	FieldWeightEntries  = "weight_entries"
	FieldWeightGoal     = "weight_goal"
	FieldFCMTokens      = "fcm_tokens"
	FieldCreatedAt      = "created_at"
	FieldUpdatedAt      = "updated_at"

	AuthTimeout             = 30 * time.Second
	DefaultInferenceTimeout = 20 * time.Second
	DefaultDebounceWindow   = time.Second
)
