package domain

import (
	"context"
	"time"
)

// ModelProvider defines the interface for the external vision/language model.
type ModelProvider interface {
	// ListModels returns the ids of models currently available to the credential.
	ListModels(ctx context.Context) ([]string, error)
	// AnalyzeImage issues one analysis completion against the given model.
	AnalyzeImage(ctx context.Context, call AnalysisCall) (*RawModelResponse, error)
}

// MealRepository defines the interface for meal-record persistence.
type MealRepository interface {
	Save(ctx context.Context, record *MealRecord) error
	GetByID(ctx context.Context, id string) (*MealRecord, error)
	ListByUser(ctx context.Context, userID string) ([]*MealRecord, error)
}

// ImageStore defines the interface for original-image object storage.
type ImageStore interface {
	// Put stores the image bytes under key and returns a retrievable URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// NutritionClient defines the interface for the external nutrition lookup service.
type NutritionClient interface {
	SearchFoods(ctx context.Context, query string) (*FoodSearchResult, error)
}

// CacheRepository defines the interface for caching nutrition lookups.
type CacheRepository interface {
	Get(ctx context.Context, key string) (*NutrientFact, error)
	Set(ctx context.Context, key string, fact *NutrientFact, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}
