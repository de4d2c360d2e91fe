package food_analysis

import (
	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/types"
)

// State names a step of the analysis pipeline.
type State string

const (
	StateCapturedImage      State = "captured_image"
	StatePresenceChecked    State = "presence_checked"
	StateNutritionExtracted State = "nutrition_extracted"
	StateMealTypeClassified State = "meal_type_classified"
	StateHealthScored       State = "health_scored"
	StateNormalized         State = "normalized"
	StateRejected           State = "rejected"
	StateFallback           State = "fallback"
)

// Each pipeline state is its own type and can only be built from the state
// before it, so classifying a meal before nutrition was extracted does not
// compile.

type CapturedImage struct {
	ref   string
	image shared.Image
}

func NewCapturedImage(ref string, image shared.Image) CapturedImage {
	return CapturedImage{ref: ref, image: image}
}

// PresenceChecked exists only for images that passed the food check.
type PresenceChecked struct {
	CapturedImage
}

type NutritionExtracted struct {
	PresenceChecked
	payload NutritionPayload
}

func (s PresenceChecked) withNutrition(p NutritionPayload) NutritionExtracted {
	return NutritionExtracted{PresenceChecked: s, payload: p}
}

type MealTypeClassified struct {
	NutritionExtracted
	mealType types.MealType
}

func (s NutritionExtracted) withMealType(m types.MealType) MealTypeClassified {
	return MealTypeClassified{NutritionExtracted: s, mealType: m}
}

type HealthScored struct {
	MealTypeClassified
	healthScore int
}

func (s MealTypeClassified) withHealthScore(score int) HealthScored {
	return HealthScored{MealTypeClassified: s, healthScore: score}
}

// Result is a terminal pipeline outcome: either Normalized or Fallback.
type Result struct {
	Record types.FoodRecord
	State  State
	// Path lists every state visited, in order.
	Path []State
	// Cause is the recovered error for Fallback results.
	Cause error
}

func (r *Result) IsFallback() bool {
	return r.State == StateFallback
}
