package types

import "time"

// MealType is kept as free text: the classifier answer is stored verbatim,
// so values outside the constants below do occur.
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
	MealTypeDessert   MealType = "dessert"

	// MealTypeMeal is only ever set on fallback records.
	MealTypeMeal MealType = "meal"
)

// FoodRecord is one analysed (or estimated) food item. Records are immutable
// once created; the only later mutation is deletion from history.
type FoodRecord struct {
	ID                     string    `json:"id"`
	Name                   string    `json:"name"`
	Kcal                   float64   `json:"calories"`
	ProteinG               float64   `json:"protein"`
	CarbsG                 float64   `json:"carbs"`
	FatG                   float64   `json:"fat"`
	FiberG                 float64   `json:"fiber"`
	SugarG                 float64   `json:"sugar"`
	SodiumMg               float64   `json:"sodium"`
	ServingSizeDescription string    `json:"servingSize,omitempty"`
	ConfidencePct          int       `json:"confidence"`
	MealType               MealType  `json:"mealType"`
	HealthScore            int       `json:"healthScore"`
	SourceImageRef         string    `json:"imageRef,omitempty"`
	CapturedAt             time.Time `json:"timestamp"`
	Tips                   []string  `json:"nutritionTips,omitempty"`
	IsFallback             bool      `json:"isFallback,omitempty"`
}
