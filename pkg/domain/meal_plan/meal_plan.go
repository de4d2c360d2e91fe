// Package meal_plan generates a one-day meal plan sized to the user's calorie
// target, and converts plan entries into loggable food records.
package meal_plan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/domain/ai_response"
	"github.com/risithcha/nutritrack/pkg/domain/nutrition"
	"github.com/risithcha/nutritrack/pkg/types"
)

// Preferences are free-form hints passed through to the prompt
// (e.g. "diet": "vegetarian").
type Preferences map[string]string

type Planner struct {
	gen     shared.Generator
	logger  *slog.Logger
	timeout time.Duration
	newID   func() string
}

func NewPlanner(gen shared.Generator, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{
		gen:     gen,
		logger:  logger.With("component", "meal_plan"),
		timeout: shared.DefaultInferenceTimeout,
		newID:   uuid.NewString,
	}
}

type planEntry struct {
	Item        string             `json:"item"`
	Calories    ai_response.Number `json:"calories"`
	Protein     ai_response.Number `json:"protein"`
	Carbs       ai_response.Number `json:"carbs"`
	Fat         ai_response.Number `json:"fat"`
	Description string             `json:"description"`
}

type planPayload struct {
	Breakfast []planEntry `json:"breakfast"`
	Lunch     []planEntry `json:"lunch"`
	Dinner    []planEntry `json:"dinner"`
	Snacks    []planEntry `json:"snacks"`
}

// Generate asks the model for a plan. The boolean is false when the fixed
// sample plan was returned instead.
func (p *Planner) Generate(ctx context.Context, profile types.UserProfile, prefs Preferences) (types.MealPlan, bool) {
	plan, err := p.generate(ctx, profile, prefs)
	if err != nil {
		p.logger.Warn("Meal plan generation failed, using sample plan", "error", err)
		return SamplePlan(p.newID), false
	}
	return plan, true
}

func (p *Planner) generate(ctx context.Context, profile types.UserProfile, prefs Preferences) (types.MealPlan, error) {
	if p.gen == nil {
		return types.MealPlan{}, shared.NewInferenceError(shared.InferenceNotConfigured, nil)
	}

	prompt, err := buildPrompt(profile, prefs)
	if err != nil {
		return types.MealPlan{}, err
	}

	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	answer, err := p.gen.Generate(callCtx, shared.TextPart(prompt))
	if err != nil {
		return types.MealPlan{}, fmt.Errorf("generate meal plan: %w", err)
	}
	return p.parse(answer)
}

func (p *Planner) parse(answer string) (types.MealPlan, error) {
	span, ok := ai_response.ExtractJSONObject(answer)
	if !ok {
		return types.MealPlan{}, shared.NewInferenceError(shared.InferenceMalformed, fmt.Errorf("no JSON object in meal plan response"))
	}

	var payload planPayload
	if err := json.Unmarshal([]byte(span), &payload); err != nil {
		return types.MealPlan{}, shared.NewInferenceError(shared.InferenceMalformed, err)
	}

	plan := types.MealPlan{
		Breakfast: p.entries(payload.Breakfast),
		Lunch:     p.entries(payload.Lunch),
		Dinner:    p.entries(payload.Dinner),
		Snacks:    p.entries(payload.Snacks),
	}
	if len(plan.Breakfast)+len(plan.Lunch)+len(plan.Dinner)+len(plan.Snacks) == 0 {
		return types.MealPlan{}, shared.NewInferenceError(shared.InferenceMalformed, fmt.Errorf("meal plan has no entries"))
	}
	return plan, nil
}

func (p *Planner) entries(in []planEntry) []types.MealPlanEntry {
	out := make([]types.MealPlanEntry, 0, len(in))
	for _, e := range in {
		name := strings.TrimSpace(e.Item)
		if name == "" {
			continue
		}
		out = append(out, types.MealPlanEntry{
			ID:          p.newID(),
			ItemName:    name,
			Kcal:        e.Calories.Or(0),
			ProteinG:    e.Protein.Or(0),
			CarbsG:      e.Carbs.Or(0),
			FatG:        e.Fat.Or(0),
			Description: strings.TrimSpace(e.Description),
		})
	}
	return out
}

func buildPrompt(profile types.UserProfile, prefs Preferences) (string, error) {
	if prefs == nil {
		prefs = Preferences{}
	}
	prefJSON, err := json.Marshal(prefs)
	if err != nil {
		return "", fmt.Errorf("marshal preferences: %w", err)
	}

	return fmt.Sprintf(`Generate a personalized meal plan for a %d-year-old %s with the following characteristics:
- Weight: %g lb
- Height: %g in
- Activity Level: %s
- Daily Calorie Target: %.0f calories

Preferences: %s

Provide the meal plan as JSON with this structure:
{
  "breakfast": [
    {
      "item": "meal name",
      "calories": number,
      "protein": number,
      "carbs": number,
      "fat": number,
      "description": "brief description"
    }
  ],
  "lunch": [...],
  "dinner": [...],
  "snacks": [...]
}

Make sure the total daily calories are close to the target and meals are balanced.`,
		profile.AgeYears,
		strings.ToLower(string(profile.Gender)),
		profile.Weight,
		profile.Height,
		profile.ActivityLevel,
		nutrition.ComputeTarget(profile),
		prefJSON,
	), nil
}
