package tracker

import (
	"context"
	"math"

	shared "github.com/risithcha/nutritrack/pkg"
	"github.com/risithcha/nutritrack/pkg/domain/nutrition"
	"github.com/risithcha/nutritrack/pkg/domain/tracking"
	"github.com/risithcha/nutritrack/pkg/persistence"
	"github.com/risithcha/nutritrack/pkg/types"
)

func requirePositive(field, message string, v float64) error {
	if v <= 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return &nutrition.ValidationError{Fields: map[string]string{field: message}}
	}
	return nil
}

// AddWater logs a water intake entry in millilitres.
func (t *Tracker) AddWater(ctx context.Context, userID string, amountMl float64) (tracking.WaterSummary, error) {
	if err := requirePositive("amount", "Please enter a valid amount", amountMl); err != nil {
		return tracking.WaterSummary{}, err
	}
	var summary tracking.WaterSummary
	err := t.withSession(ctx, userID, func(s *Session) error {
		entry := types.WaterEntry{ID: t.deps.NewID(), AmountMl: amountMl, Date: t.deps.Now()}
		s.water = append(s.water, entry)
		t.deps.Gateway.Append(ctx, userID, shared.FieldWaterEntries, entry)
		summary = t.waterSummary(s)
		return nil
	})
	return summary, err
}

func (t *Tracker) SetWaterGoal(ctx context.Context, userID string, goalMl float64) (tracking.WaterSummary, error) {
	if err := requirePositive("goal", "Please enter a valid goal", goalMl); err != nil {
		return tracking.WaterSummary{}, err
	}
	var summary tracking.WaterSummary
	err := t.withSession(ctx, userID, func(s *Session) error {
		s.waterGoal = goalMl
		t.deps.Gateway.Schedule(userID, persistence.KindTracking, map[string]interface{}{shared.FieldWaterGoal: goalMl})
		summary = t.waterSummary(s)
		return nil
	})
	return summary, err
}

func (t *Tracker) WaterSummary(ctx context.Context, userID string) (tracking.WaterSummary, error) {
	var summary tracking.WaterSummary
	err := t.withSession(ctx, userID, func(s *Session) error {
		summary = t.waterSummary(s)
		return nil
	})
	return summary, err
}

func (t *Tracker) waterSummary(s *Session) tracking.WaterSummary {
	return tracking.SummarizeWater(s.water, s.waterGoal, t.deps.Now(), t.location(s))
}

// AddWeight logs a weigh-in, in whatever unit the user records.
func (t *Tracker) AddWeight(ctx context.Context, userID string, weight float64) (tracking.WeightSummary, error) {
	if err := requirePositive("weight", "Please enter a valid weight", weight); err != nil {
		return tracking.WeightSummary{}, err
	}
	var summary tracking.WeightSummary
	err := t.withSession(ctx, userID, func(s *Session) error {
		entry := types.WeightEntry{ID: t.deps.NewID(), Weight: weight, Date: t.deps.Now()}
		s.weight = append(s.weight, entry)
		t.deps.Gateway.Append(ctx, userID, shared.FieldWeightEntries, entry)
		summary = t.weightSummary(s)
		return nil
	})
	return summary, err
}

func (t *Tracker) SetWeightGoal(ctx context.Context, userID string, goal float64) (tracking.WeightSummary, error) {
	if err := requirePositive("goal", "Please enter a valid goal", goal); err != nil {
		return tracking.WeightSummary{}, err
	}
	var summary tracking.WeightSummary
	err := t.withSession(ctx, userID, func(s *Session) error {
		s.weightGoal = goal
		t.deps.Gateway.Schedule(userID, persistence.KindTracking, map[string]interface{}{shared.FieldWeightGoal: goal})
		summary = t.weightSummary(s)
		return nil
	})
	return summary, err
}

func (t *Tracker) WeightSummary(ctx context.Context, userID string) (tracking.WeightSummary, error) {
	var summary tracking.WeightSummary
	err := t.withSession(ctx, userID, func(s *Session) error {
		summary = t.weightSummary(s)
		return nil
	})
	return summary, err
}

func (t *Tracker) weightSummary(s *Session) tracking.WeightSummary {
	return tracking.SummarizeWeight(s.weight, s.weightGoal, t.deps.Now())
}

// Dashboard is the home screen summary.
type Dashboard struct {
	Daily  DailySnapshot          `json:"daily"`
	Water  tracking.WaterSummary  `json:"water"`
	Weight tracking.WeightSummary `json:"weight"`
}

func (t *Tracker) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	var d Dashboard
	err := t.withSession(ctx, userID, func(s *Session) error {
		d = Dashboard{
			Daily:  s.snapshot(),
			Water:  t.waterSummary(s),
			Weight: t.weightSummary(s),
		}
		return nil
	})
	return d, err
}
