// Package nutrition holds the pure daily-intake state transitions: calorie
// target computation, folding food records into the day, profile updates and
// the local-midnight rollover. Nothing in here performs I/O.
package nutrition

import (
	"math"
	"time"

	"github.com/risithcha/nutritrack/pkg/types"
)

const dayLayout = "2006-01-02"

// ActivityMultipliers maps activity levels to their TDEE multiplier.
var ActivityMultipliers = map[types.ActivityLevel]float64{
	types.ActivitySedentary:  1.2,
	types.ActivityLight:      1.375,
	types.ActivityModerate:   1.55,
	types.ActivityActive:     1.725,
	types.ActivityVeryActive: 1.9,
}

// BMR computes basal metabolic rate with Mifflin-St Jeor. Weight is read in
// pounds and height in inches (4.536 per lb, 15.875 per in).
func BMR(p types.UserProfile) float64 {
	bmr := 4.536*p.Weight + 15.875*p.Height - 5*float64(p.AgeYears)
	if p.Gender == types.GenderMale {
		return bmr + 5
	}
	return bmr - 161
}

// ComputeTarget returns the daily calorie target (TDEE) for a profile,
// rounded half away from zero. Callers validate the profile first.
func ComputeTarget(p types.UserProfile) float64 {
	mult, ok := ActivityMultipliers[p.ActivityLevel]
	if !ok {
		mult = ActivityMultipliers[types.ActivitySedentary]
	}
	return math.Round(BMR(p) * mult)
}

// NewDailyState returns an empty day with the target derived from profile.
func NewDailyState(p types.UserProfile) types.DailyState {
	target := ComputeTarget(p)
	return types.DailyState{
		Nutrition: types.DailyNutrition{
			TargetKcal:    target,
			RemainingKcal: target,
		},
		ScannedFoods: []types.FoodRecord{},
	}
}

// Restore rebuilds a day from stored values. Accumulators are taken from the
// stored record but the target is always recomputed from the profile.
func Restore(p types.UserProfile, stored types.DailyNutrition, scanned []types.FoodRecord, lastResetDate string) types.DailyState {
	s := types.DailyState{
		Nutrition:     stored,
		ScannedFoods:  append([]types.FoodRecord{}, scanned...),
		LastResetDate: lastResetDate,
	}
	return ApplyProfileUpdate(s, p)
}

// ApplyProfileUpdate recomputes the target for a new profile. Consumption and
// macro accumulators are left untouched.
func ApplyProfileUpdate(s types.DailyState, p types.UserProfile) types.DailyState {
	s.Nutrition.TargetKcal = ComputeTarget(p)
	s.Nutrition.RemainingKcal = s.Nutrition.TargetKcal - s.Nutrition.ConsumedKcal
	s.ScannedFoods = append([]types.FoodRecord{}, s.ScannedFoods...)
	return s
}

// ApplyFoodRecord folds one food record into the day. The target never
// changes here.
func ApplyFoodRecord(s types.DailyState, food types.FoodRecord) types.DailyState {
	n := s.Nutrition
	n.ConsumedKcal += food.Kcal
	n.ProteinG += food.ProteinG
	n.CarbsG += food.CarbsG
	n.FatG += food.FatG
	n.FiberG += food.FiberG
	n.SugarG += food.SugarG
	n.SodiumMg += food.SodiumMg
	n.RemainingKcal = n.TargetKcal - n.ConsumedKcal

	scanned := make([]types.FoodRecord, 0, len(s.ScannedFoods)+1)
	scanned = append(scanned, s.ScannedFoods...)
	scanned = append(scanned, food)

	return types.DailyState{
		Nutrition:     n,
		ScannedFoods:  scanned,
		LastResetDate: s.LastResetDate,
	}
}

// Rollover resets the day when today differs from the last reset date.
// The target survives the reset. Calling it again for the same day is a
// no-op; changed reports whether a reset happened.
func Rollover(s types.DailyState, today string) (next types.DailyState, changed bool) {
	if s.LastResetDate == today {
		return s, false
	}
	target := s.Nutrition.TargetKcal
	return types.DailyState{
		Nutrition: types.DailyNutrition{
			TargetKcal:    target,
			RemainingKcal: target,
		},
		ScannedFoods:  []types.FoodRecord{},
		LastResetDate: today,
	}, true
}

// LocalDay formats t as a calendar day in loc. A nil loc means UTC.
func LocalDay(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(dayLayout)
}

// LoadLocation resolves an IANA zone name, falling back to UTC for empty or
// unknown names.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
