package types

type MealCategory string

const (
	MealCategoryBreakfast MealCategory = "breakfast"
	MealCategoryLunch     MealCategory = "lunch"
	MealCategoryDinner    MealCategory = "dinner"
	MealCategorySnacks    MealCategory = "snacks"
)

// MealCategories lists the plan categories in display order.
var MealCategories = []MealCategory{
	MealCategoryBreakfast,
	MealCategoryLunch,
	MealCategoryDinner,
	MealCategorySnacks,
}

type MealPlanEntry struct {
	ID          string  `json:"id"`
	ItemName    string  `json:"item"`
	Kcal        float64 `json:"calories"`
	ProteinG    float64 `json:"protein"`
	CarbsG      float64 `json:"carbs"`
	FatG        float64 `json:"fat"`
	Description string  `json:"description,omitempty"`
}

// MealPlan is always replaced wholesale on regeneration.
type MealPlan struct {
	Breakfast []MealPlanEntry `json:"breakfast"`
	Lunch     []MealPlanEntry `json:"lunch"`
	Dinner    []MealPlanEntry `json:"dinner"`
	Snacks    []MealPlanEntry `json:"snacks"`
}

// Category returns the entries for c, or nil for an unknown category.
func (p MealPlan) Category(c MealCategory) []MealPlanEntry {
	switch c {
	case MealCategoryBreakfast:
		return p.Breakfast
	case MealCategoryLunch:
		return p.Lunch
	case MealCategoryDinner:
		return p.Dinner
	case MealCategorySnacks:
		return p.Snacks
	}
	return nil
}

// Find looks an entry up by ID across every category.
func (p MealPlan) Find(id string) (MealPlanEntry, MealCategory, bool) {
	for _, c := range MealCategories {
		for _, e := range p.Category(c) {
			if e.ID == id {
				return e, c, true
			}
		}
	}
	return MealPlanEntry{}, "", false
}

// EmptyMealPlan returns a plan with every category present but empty.
func EmptyMealPlan() MealPlan {
	return MealPlan{
		Breakfast: []MealPlanEntry{},
		Lunch:     []MealPlanEntry{},
		Dinner:    []MealPlanEntry{},
		Snacks:    []MealPlanEntry{},
	}
}
