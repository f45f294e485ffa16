package domain

import "time"

// MealRecord is the persisted document for one analyzed meal.
type MealRecord struct {
	ID        string             `json:"id"`
	UserID    string             `json:"userId"`
	ImageURL  string             `json:"imageUrl,omitempty"`
	Analysis  NormalizedAnalysis `json:"analysis"`
	RequestID string             `json:"requestId"`
	CreatedAt time.Time          `json:"createdAt"`
}

// NutrientFact is a cached per-ingredient nutrition lookup result,
// normalized to a 100g serving.
type NutrientFact struct {
	Query         string    `json:"query"`
	FoodName      string    `json:"foodName"`
	Calories      float64   `json:"calories"`
	Protein       float64   `json:"protein"`       // grams
	Carbohydrates float64   `json:"carbohydrates"` // grams
	Fat           float64   `json:"fat"`           // grams
	CachedAt      time.Time `json:"cachedAt,omitempty"`
}

// FoodMatch represents a food item returned by the nutrition lookup service.
type FoodMatch struct {
	FdcID       int            `json:"fdcId"`
	Description string         `json:"description"`
	DataType    string         `json:"dataType"`
	Nutrients   []FoodNutrient `json:"foodNutrients"`
}

// FoodNutrient is a single nutrient entry from the lookup service.
type FoodNutrient struct {
	NutrientID   int     `json:"nutrientId"`
	NutrientName string  `json:"nutrientName"`
	UnitName     string  `json:"unitName"`
	Value        float64 `json:"value"`
}

// FoodSearchResult is the response page from the nutrition lookup service.
type FoodSearchResult struct {
	Foods     []FoodMatch `json:"foods"`
	TotalHits int         `json:"totalHits"`
}
