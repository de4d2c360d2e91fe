package tracking

import (
	"math"
	"testing"
	"time"

	"github.com/risithcha/nutritrack/pkg/types"
)

var now = time.Date(2024, 6, 15, 18, 0, 0, 0, time.UTC)

func water(amount float64, ago time.Duration) types.WaterEntry {
	return types.WaterEntry{AmountMl: amount, Date: now.Add(-ago)}
}

func weight(w float64, ago time.Duration) types.WeightEntry {
	return types.WeightEntry{Weight: w, Date: now.Add(-ago)}
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestWaterToday(t *testing.T) {
	entries := []types.WaterEntry{
		water(500, time.Hour),
		water(250, 5*time.Hour),
		water(1000, 24*time.Hour),
	}

	if got := TodayTotal(entries, now, time.UTC); got != 750 {
		t.Errorf("TodayTotal = %v, want 750", got)
	}

	tests := []struct {
		name          string
		goal          float64
		wantProgress  float64
		wantRemaining float64
	}{
		{"no goal", 0, 0, 0},
		{"half way", 1500, 50, 750},
		{"goal exceeded caps at 100", 500, 100, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ProgressPercentage(entries, tt.goal, now, time.UTC); !approx(got, tt.wantProgress) {
				t.Errorf("progress = %v, want %v", got, tt.wantProgress)
			}
			if got := Remaining(entries, tt.goal, now, time.UTC); got != tt.wantRemaining {
				t.Errorf("remaining = %v, want %v", got, tt.wantRemaining)
			}
		})
	}
}

func TestWaterToday_UsesLocalDay(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 18:00 UTC is 03:00 the next day in Tokyo; an entry 5h earlier is the previous local day.
	entries := []types.WaterEntry{water(300, time.Hour), water(400, 5*time.Hour)}

	if got := TodayTotal(entries, now, tokyo); got != 300 {
		t.Errorf("TodayTotal in JST = %v, want 300", got)
	}
}

func TestWaterWeeklyAverage(t *testing.T) {
	if got := WeeklyAverage(nil, now); got != 0 {
		t.Errorf("empty average = %v, want 0", got)
	}

	entries := []types.WaterEntry{
		water(700, time.Hour),
		water(700, 3*24*time.Hour),
		water(9999, 8*24*time.Hour),
	}
	if got := WeeklyAverage(entries, now); got != 200 {
		t.Errorf("average = %v, want 200", got)
	}
}

func TestWeightChange(t *testing.T) {
	if WeightChange(nil) != nil {
		t.Error("expected nil change for no entries")
	}
	if WeightChange([]types.WeightEntry{weight(70, 0)}) != nil {
		t.Error("expected nil change for a single entry")
	}

	entries := []types.WeightEntry{weight(72, 10*24*time.Hour), weight(71, 5*24*time.Hour), weight(70.5, 0)}
	change := WeightChange(entries)
	if change == nil || !approx(*change, -1.5) {
		t.Errorf("change = %v, want -1.5", change)
	}
}

func TestWeightWeeklyAverage(t *testing.T) {
	entries := []types.WeightEntry{weight(80, 10*24*time.Hour)}
	if WeightWeeklyAverage(entries, now) != nil {
		t.Error("expected nil average when nothing falls in the window")
	}

	entries = append(entries, weight(71, 5*24*time.Hour), weight(70, 0))
	avg := WeightWeeklyAverage(entries, now)
	if avg == nil || !approx(*avg, 70.5) {
		t.Errorf("average = %v, want 70.5", avg)
	}
}

func TestSummarizeWeight(t *testing.T) {
	entries := []types.WeightEntry{weight(72, 2*24*time.Hour), weight(70, 0)}
	s := SummarizeWeight(entries, 65, now)

	if s.Latest == nil || *s.Latest != 70 {
		t.Errorf("latest = %v, want 70", s.Latest)
	}
	if s.DistanceToGoal == nil || *s.DistanceToGoal != -5 {
		t.Errorf("distance = %v, want -5", s.DistanceToGoal)
	}

	if SummarizeWeight(entries, 0, now).DistanceToGoal != nil {
		t.Error("expected nil distance without a goal")
	}
}
