package nutrition

import (
	"testing"
	"time"

	"github.com/risithcha/nutritrack/pkg/types"
)

func femaleModerate() types.UserProfile {
	return types.UserProfile{
		Gender:        types.GenderFemale,
		Weight:        143,
		Height:        65,
		AgeYears:      30,
		ActivityLevel: types.ActivityModerate,
	}
}

func TestComputeTarget(t *testing.T) {
	tests := []struct {
		name     string
		profile  types.UserProfile
		expected float64
	}{
		{
			name:     "female moderate",
			profile:  femaleModerate(),
			expected: 2123,
		},
		{
			name: "male sedentary",
			profile: types.UserProfile{
				Gender:        types.GenderMale,
				Weight:        180,
				Height:        70,
				AgeYears:      40,
				ActivityLevel: types.ActivitySedentary,
			},
			expected: 2079,
		},
		{
			name: "other uses the female constant",
			profile: types.UserProfile{
				Gender:        types.GenderOther,
				Weight:        143,
				Height:        65,
				AgeYears:      30,
				ActivityLevel: types.ActivityModerate,
			},
			expected: 2123,
		},
		{
			name: "unknown activity level falls back to sedentary",
			profile: types.UserProfile{
				Gender:        types.GenderFemale,
				Weight:        143,
				Height:        65,
				AgeYears:      30,
				ActivityLevel: "couch",
			},
			expected: 1643, // 1369.523 * 1.2
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeTarget(tt.profile); got != tt.expected {
				t.Errorf("ComputeTarget() = %v, want %v", got, tt.expected)
			}
			// Deterministic
			if again := ComputeTarget(tt.profile); again != ComputeTarget(tt.profile) {
				t.Errorf("ComputeTarget() not deterministic")
			}
		})
	}
}

func TestComputeTarget_MoreActiveIsHigher(t *testing.T) {
	levels := []types.ActivityLevel{
		types.ActivitySedentary,
		types.ActivityLight,
		types.ActivityModerate,
		types.ActivityActive,
		types.ActivityVeryActive,
	}

	for _, g := range []types.Gender{types.GenderMale, types.GenderFemale} {
		p := femaleModerate()
		p.Gender = g
		prev := 0.0
		for i, lvl := range levels {
			p.ActivityLevel = lvl
			got := ComputeTarget(p)
			if i > 0 && got <= prev {
				t.Errorf("%s: target for %s (%v) not above previous tier (%v)", g, lvl, got, prev)
			}
			prev = got
		}
	}
}

func TestApplyFoodRecord_Invariant(t *testing.T) {
	state := NewDailyState(femaleModerate())

	foods := []types.FoodRecord{
		{Name: "Apple", Kcal: 95, ProteinG: 0.5, CarbsG: 25, FatG: 0.3, FiberG: 4.4, SugarG: 19, SodiumMg: 2},
		{Name: "Toast", Kcal: 180, ProteinG: 6, CarbsG: 30, FatG: 3},
		{Name: "Burger", Kcal: 2000, ProteinG: 60, CarbsG: 150, FatG: 120, SodiumMg: 2200},
	}

	sum := 0.0
	for i, f := range foods {
		state = ApplyFoodRecord(state, f)
		sum += f.Kcal

		n := state.Nutrition
		if n.RemainingKcal != n.TargetKcal-n.ConsumedKcal {
			t.Fatalf("after food %d: remaining %v != target %v - consumed %v", i, n.RemainingKcal, n.TargetKcal, n.ConsumedKcal)
		}
		if n.ConsumedKcal != sum {
			t.Fatalf("after food %d: consumed %v, want %v", i, n.ConsumedKcal, sum)
		}
		if n.TargetKcal != 2123 {
			t.Fatalf("target changed on food add: %v", n.TargetKcal)
		}
		if len(state.ScannedFoods) != i+1 {
			t.Fatalf("expected %d scanned foods, got %d", i+1, len(state.ScannedFoods))
		}
	}

	if state.Nutrition.RemainingKcal >= 0 {
		t.Errorf("expected negative remaining after overeating, got %v", state.Nutrition.RemainingKcal)
	}
	if state.Nutrition.FiberG != 4.4 {
		t.Errorf("missing fiber should count as zero, got %v", state.Nutrition.FiberG)
	}
	if state.Nutrition.SodiumMg != 2202 {
		t.Errorf("sodium = %v, want 2202", state.Nutrition.SodiumMg)
	}
}

func TestApplyFoodRecord_DoesNotAliasInput(t *testing.T) {
	base := NewDailyState(femaleModerate())
	base.ScannedFoods = make([]types.FoodRecord, 0, 4)

	a := ApplyFoodRecord(base, types.FoodRecord{Name: "A", Kcal: 1})
	b := ApplyFoodRecord(base, types.FoodRecord{Name: "B", Kcal: 2})

	if a.ScannedFoods[0].Name != "A" || b.ScannedFoods[0].Name != "B" {
		t.Errorf("states share backing storage: a=%v b=%v", a.ScannedFoods, b.ScannedFoods)
	}
	if len(base.ScannedFoods) != 0 {
		t.Errorf("input state mutated")
	}
}

func TestApplyProfileUpdate(t *testing.T) {
	state := NewDailyState(femaleModerate())
	state = ApplyFoodRecord(state, types.FoodRecord{Kcal: 400, ProteinG: 20})

	p := femaleModerate()
	p.ActivityLevel = types.ActivityActive
	state = ApplyProfileUpdate(state, p)

	if state.Nutrition.TargetKcal != 2362 {
		t.Errorf("target = %v, want 2362", state.Nutrition.TargetKcal)
	}
	if state.Nutrition.ConsumedKcal != 400 || state.Nutrition.ProteinG != 20 {
		t.Errorf("profile update touched accumulators: %+v", state.Nutrition)
	}
	if state.Nutrition.RemainingKcal != 1962 {
		t.Errorf("remaining = %v, want 1962", state.Nutrition.RemainingKcal)
	}
}

func TestRollover(t *testing.T) {
	state := NewDailyState(femaleModerate())
	state, changed := Rollover(state, "2026-10-15")
	if !changed {
		t.Fatal("first rollover should reset")
	}
	state = ApplyFoodRecord(state, types.FoodRecord{Kcal: 500, FatG: 10})

	t.Run("same day is a no-op", func(t *testing.T) {
		next, changed := Rollover(state, "2026-10-15")
		if changed {
			t.Error("expected no change on same day")
		}
		if next.Nutrition.ConsumedKcal != 500 {
			t.Errorf("consumed = %v, want 500", next.Nutrition.ConsumedKcal)
		}
	})

	t.Run("new day resets and is idempotent", func(t *testing.T) {
		once, changed := Rollover(state, "2026-10-16")
		if !changed {
			t.Fatal("expected reset on new day")
		}
		twice, changedAgain := Rollover(once, "2026-10-16")
		if changedAgain {
			t.Error("second rollover on the same day should be a no-op")
		}

		for _, s := range []types.DailyState{once, twice} {
			if s.Nutrition.ConsumedKcal != 0 || s.Nutrition.FatG != 0 {
				t.Errorf("accumulators not zeroed: %+v", s.Nutrition)
			}
			if s.Nutrition.TargetKcal != 2123 || s.Nutrition.RemainingKcal != 2123 {
				t.Errorf("target not preserved: %+v", s.Nutrition)
			}
			if len(s.ScannedFoods) != 0 {
				t.Errorf("scanned foods not cleared")
			}
			if s.LastResetDate != "2026-10-16" {
				t.Errorf("last reset date = %q", s.LastResetDate)
			}
		}
	})
}

func TestRestore_RecomputesTarget(t *testing.T) {
	stored := types.DailyNutrition{ConsumedKcal: 300, TargetKcal: 1898, RemainingKcal: 1598, ProteinG: 12}
	state := Restore(femaleModerate(), stored, []types.FoodRecord{{Name: "x", Kcal: 300}}, "2026-10-15")

	if state.Nutrition.TargetKcal != 2123 {
		t.Errorf("target = %v, want 2123", state.Nutrition.TargetKcal)
	}
	if state.Nutrition.RemainingKcal != 1823 {
		t.Errorf("remaining = %v, want 1823", state.Nutrition.RemainingKcal)
	}
	if state.Nutrition.ProteinG != 12 || len(state.ScannedFoods) != 1 || state.LastResetDate != "2026-10-15" {
		t.Errorf("stored values not restored: %+v", state)
	}
}

func TestLocalDay(t *testing.T) {
	// 03:30 UTC is still the previous evening in New York.
	instant := time.Date(2026, 10, 16, 3, 30, 0, 0, time.UTC)

	if got := LocalDay(instant, nil); got != "2026-10-16" {
		t.Errorf("UTC day = %s", got)
	}
	if got := LocalDay(instant, LoadLocation("America/New_York")); got != "2026-10-15" {
		t.Errorf("New York day = %s", got)
	}
	if LoadLocation("Not/AZone") != time.UTC {
		t.Errorf("unknown zone should fall back to UTC")
	}
}
