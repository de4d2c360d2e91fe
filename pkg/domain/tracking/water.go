// Package tracking summarises water and weight logs.
package tracking

import (
	"math"
	"time"

	"github.com/risithcha/nutritrack/pkg/types"
)

// Window is the trailing period used for weekly figures.
const Window = 7 * 24 * time.Hour

func sameDay(a, b time.Time, loc *time.Location) bool {
	if loc == nil {
		loc = time.UTC
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

func inWindow(t, now time.Time) bool {
	return !t.Before(now.Add(-Window)) && !t.After(now)
}

// TodayTotal sums the entries logged on now's calendar day in loc.
func TodayTotal(entries []types.WaterEntry, now time.Time, loc *time.Location) float64 {
	var total float64
	for _, e := range entries {
		if sameDay(e.Date, now, loc) {
			total += e.AmountMl
		}
	}
	return total
}

// ProgressPercentage is today's intake as a share of goal, capped at 100.
// It is 0 when no goal is set.
func ProgressPercentage(entries []types.WaterEntry, goal float64, now time.Time, loc *time.Location) float64 {
	if goal <= 0 {
		return 0
	}
	return math.Min(TodayTotal(entries, now, loc)/goal*100, 100)
}

// Remaining is how much is left to reach today's goal, never negative.
func Remaining(entries []types.WaterEntry, goal float64, now time.Time, loc *time.Location) float64 {
	if goal <= 0 {
		return 0
	}
	return math.Max(0, goal-TodayTotal(entries, now, loc))
}

// WeeklyAverage divides the total of the trailing window by seven days,
// not by the number of days that have entries.
func WeeklyAverage(entries []types.WaterEntry, now time.Time) float64 {
	var total float64
	for _, e := range entries {
		if inWindow(e.Date, now) {
			total += e.AmountMl
		}
	}
	return total / 7
}

type WaterSummary struct {
	TodayMl       float64 `json:"today"`
	GoalMl        float64 `json:"goal"`
	RemainingMl   float64 `json:"remaining"`
	ProgressPct   float64 `json:"progress"`
	WeeklyAvgMl   float64 `json:"weeklyAverage"`
	EntriesLogged int     `json:"entries"`
}

func SummarizeWater(entries []types.WaterEntry, goal float64, now time.Time, loc *time.Location) WaterSummary {
	return WaterSummary{
		TodayMl:       TodayTotal(entries, now, loc),
		GoalMl:        goal,
		RemainingMl:   Remaining(entries, goal, now, loc),
		ProgressPct:   ProgressPercentage(entries, goal, now, loc),
		WeeklyAvgMl:   WeeklyAverage(entries, now),
		EntriesLogged: len(entries),
	}
}
