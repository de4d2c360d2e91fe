package food_analysis

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/risithcha/nutritrack/pkg/domain/ai_response"
	"github.com/risithcha/nutritrack/pkg/types"
)

const (
	defaultConfidence  = 70
	defaultHealthScore = 5
)

// NutritionPayload is the JSON shape requested by the nutrition prompt.
type NutritionPayload struct {
	Name        string             `json:"name"`
	Calories    ai_response.Number `json:"calories"`
	Protein     ai_response.Number `json:"protein"`
	Carbs       ai_response.Number `json:"carbs"`
	Fat         ai_response.Number `json:"fat"`
	Fiber       ai_response.Number `json:"fiber"`
	Sugar       ai_response.Number `json:"sugar"`
	Sodium      ai_response.Number `json:"sodium"`
	ServingSize string             `json:"servingSize"`
	Confidence  ai_response.Number `json:"confidence"`
}

// ConfidencePct returns the confidence clamped to [0,100], or 70 when the
// model gave none.
func (p NutritionPayload) ConfidencePct() int {
	if !p.Confidence.Set || p.Confidence.Value == 0 {
		return defaultConfidence
	}
	return int(math.Round(math.Max(0, math.Min(100, p.Confidence.Value))))
}

// IsNotFood reports whether a presence-check answer rejects the image.
func IsNotFood(raw string) bool {
	answer := ai_response.Normalize(raw)
	return answer == "not_food" || strings.Contains(answer, "not_food")
}

// ParseNutritionPayload pulls the JSON object out of a free-text answer.
// name must be non-empty and calories present; other numbers default to 0.
func ParseNutritionPayload(raw string) (NutritionPayload, error) {
	span, ok := ai_response.ExtractJSONObject(raw)
	if !ok {
		return NutritionPayload{}, &MalformedResponseError{Reason: "no JSON object in response", Raw: raw}
	}

	var p NutritionPayload
	if err := json.Unmarshal([]byte(span), &p); err != nil {
		return NutritionPayload{}, &MalformedResponseError{Reason: "invalid JSON: " + err.Error(), Raw: raw}
	}

	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return NutritionPayload{}, &MalformedResponseError{Reason: "missing name", Raw: raw}
	}
	if !p.Calories.Set {
		return NutritionPayload{}, &MalformedResponseError{Reason: "missing calories", Raw: raw}
	}
	return p, nil
}

// ParseMealType keeps the classifier answer verbatim after trimming and
// lowercasing; it is not checked against the known meal types.
func ParseMealType(raw string) types.MealType {
	return types.MealType(ai_response.Normalize(raw))
}

// ParseHealthScore reads the leading integer of the answer. Unparseable or
// zero answers score 5; anything else is clamped to 1..10.
func ParseHealthScore(raw string) int {
	n, ok := ai_response.LeadingInt(raw)
	if !ok || n == 0 {
		return defaultHealthScore
	}
	if n < 1 {
		return 1
	}
	if n > 10 {
		return 10
	}
	return n
}
