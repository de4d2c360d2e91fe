package food_analysis

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/risithcha/nutritrack/pkg/types"
)

const presencePrompt = `Analyze this image and determine if it contains food or drink items. Return only "food" if it contains edible items, or "not_food" if it does not contain food or drink.`

const nutritionPrompt = `Analyze this food image and estimate its nutrition. Include:
- Food name (be specific)
- Estimated calories
- Protein (grams)
- Carbohydrates (grams)
- Fat (grams)
- Fiber (grams)
- Sugar (grams)
- Sodium (mg)
- Serving size estimate
- Confidence level (0-100)

Respond with valid JSON using exactly these field names:
{
  "name": "food name",
  "calories": number,
  "protein": number,
  "carbs": number,
  "fat": number,
  "fiber": number,
  "sugar": number,
  "sodium": number,
  "servingSize": "description",
  "confidence": number
}`

const mealTypePrompt = `Analyze this food image and determine the most likely meal type. Return only one of these options:
- breakfast
- lunch
- dinner
- snack
- dessert`

const healthScorePrompt = `Rate this food's healthiness on a scale of 1-10, where:
1 = Very unhealthy (high in processed ingredients, sugar, unhealthy fats)
10 = Very healthy (whole foods, balanced nutrients, low in processed ingredients)

Return only the number.`

func buildTipsPrompt(r types.FoodRecord) string {
	p := message.NewPrinter(language.English)
	return p.Sprintf(`Based on this food analysis:
- Food: %s
- Calories: %.0f
- Protein: %.1fg
- Carbs: %.1fg
- Fat: %.1fg
- Health Score: %d/10

Provide 2-3 brief nutrition tips or suggestions for this food. Keep each tip under 50 words. Put each tip on its own line.`,
		r.Name, r.Kcal, r.ProteinG, r.CarbsG, r.FatG, r.HealthScore)
}
