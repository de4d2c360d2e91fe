package types

// DailyNutrition holds one calendar day of intake for a user.
type DailyNutrition struct {
	ConsumedKcal  float64 `json:"consumed"`
	TargetKcal    float64 `json:"target"`
	RemainingKcal float64 `json:"remaining"`
	ProteinG      float64 `json:"protein"`
	CarbsG        float64 `json:"carbs"`
	FatG          float64 `json:"fat"`
	FiberG        float64 `json:"fiber"`
	SugarG        float64 `json:"sugar"`
	SodiumMg      float64 `json:"sodium"`
}

// DailyState is everything the aggregator folds over for a single day.
// LastResetDate is a local calendar day in YYYY-MM-DD form, empty before the
// first rollover.
type DailyState struct {
	Nutrition     DailyNutrition `json:"dailyNutrition"`
	ScannedFoods  []FoodRecord   `json:"scannedFoods"`
	LastResetDate string         `json:"lastResetDate"`
}
