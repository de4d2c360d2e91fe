package tracking

import (
	"time"

	"github.com/risithcha/nutritrack/pkg/types"
)

// Entries are kept in logging order; "first" and "latest" refer to that order.

// WeightChange is latest minus first, or nil with fewer than two entries.
func WeightChange(entries []types.WeightEntry) *float64 {
	if len(entries) < 2 {
		return nil
	}
	change := entries[len(entries)-1].Weight - entries[0].Weight
	return &change
}

// WeightWeeklyAverage is the mean of the entries in the trailing window, or
// nil when there are none.
func WeightWeeklyAverage(entries []types.WeightEntry, now time.Time) *float64 {
	var total float64
	var n int
	for _, e := range entries {
		if inWindow(e.Date, now) {
			total += e.Weight
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := total / float64(n)
	return &avg
}

func Latest(entries []types.WeightEntry) *float64 {
	if len(entries) == 0 {
		return nil
	}
	w := entries[len(entries)-1].Weight
	return &w
}

// DistanceToGoal is goal minus latest weight; nil without a goal or entries.
func DistanceToGoal(entries []types.WeightEntry, goal float64) *float64 {
	latest := Latest(entries)
	if latest == nil || goal <= 0 {
		return nil
	}
	d := goal - *latest
	return &d
}

type WeightSummary struct {
	Latest         *float64 `json:"latest"`
	Change         *float64 `json:"change"`
	WeeklyAverage  *float64 `json:"weeklyAverage"`
	Goal           float64  `json:"goal"`
	DistanceToGoal *float64 `json:"distanceToGoal"`
}

func SummarizeWeight(entries []types.WeightEntry, goal float64, now time.Time) WeightSummary {
	return WeightSummary{
		Latest:         Latest(entries),
		Change:         WeightChange(entries),
		WeeklyAverage:  WeightWeeklyAverage(entries, now),
		Goal:           goal,
		DistanceToGoal: DistanceToGoal(entries, goal),
	}
}
