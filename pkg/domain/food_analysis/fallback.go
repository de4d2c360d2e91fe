package food_analysis

import (
	"time"

	"github.com/risithcha/nutritrack/pkg/types"
)

// FallbackTips are returned when the tips request fails.
var FallbackTips = []string{
	"Consider portion size for balanced nutrition.",
	"Pair with vegetables for a complete meal.",
}

var fallbackRecordTips = []string{
	"This appears to be a balanced food item.",
	"Consider portion size for accurate tracking.",
	"Pair with vegetables for a complete meal.",
}

// FallbackRecord is the fixed estimate used when inference cannot produce
// nutrition data, so a scan always yields a record.
func FallbackRecord(id, ref string, now time.Time) types.FoodRecord {
	return types.FoodRecord{
		ID:             id,
		Name:           "Food Item",
		Kcal:           250,
		ProteinG:       15,
		CarbsG:         30,
		FatG:           8,
		FiberG:         5,
		SugarG:         10,
		SodiumMg:       300,
		ConfidencePct:  85,
		MealType:       types.MealTypeMeal,
		HealthScore:    7,
		SourceImageRef: ref,
		CapturedAt:     now,
		Tips:           append([]string{}, fallbackRecordTips...),
		IsFallback:     true,
	}
}
