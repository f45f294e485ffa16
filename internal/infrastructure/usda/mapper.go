package usda

import "github.com/platewise/backend/internal/domain"

// USDA nutrient IDs for the key macronutrients
const (
	NutrientIDEnergy       = 1008 // Calories (kcal)
	NutrientIDProtein      = 1003 // Protein (g)
	NutrientIDCarbohydrate = 1005 // Carbohydrates (g)
	NutrientIDTotalFat     = 1004 // Total Fat (g)
)

// MapToNutrientFact converts one matched food into a cached nutrient fact.
// Values are per 100g, the USDA standard serving.
func MapToNutrientFact(query string, food *domain.FoodMatch) *domain.NutrientFact {
	fact := &domain.NutrientFact{
		Query:    query,
		FoodName: food.Description,
	}

	for _, nutrient := range food.Nutrients {
		switch nutrient.NutrientID {
		case NutrientIDEnergy:
			fact.Calories = nutrient.Value
		case NutrientIDProtein:
			fact.Protein = nutrient.Value
		case NutrientIDCarbohydrate:
			fact.Carbohydrates = nutrient.Value
		case NutrientIDTotalFat:
			fact.Fat = nutrient.Value
		}
	}

	return fact
}
