package domain

import "errors"

var (
	// ErrNoImage is returned when no usable image payload could be extracted
	ErrNoImage = errors.New("no image uploaded")

	// ErrAuthFailure is returned when the model provider rejects our credentials
	ErrAuthFailure = errors.New("model provider authentication failed")

	// ErrRateLimited is returned when the model provider rate limit is exceeded
	ErrRateLimited = errors.New("model provider rate limit exceeded")

	// ErrModelUnavailable is returned when neither the preferred model nor any
	// fallback candidate is listed by the provider
	ErrModelUnavailable = errors.New("no vision model available")

	// ErrInvocationTimeout is returned when the analysis call exceeds its deadline
	ErrInvocationTimeout = errors.New("model invocation timed out")

	// ErrTransport is returned for generic provider transport failures
	ErrTransport = errors.New("model provider request failed")

	// ErrMealNotFound is returned when a meal record does not exist
	ErrMealNotFound = errors.New("meal not found")

	// ErrFoodNotFound is returned when the nutrition lookup has no match
	ErrFoodNotFound = errors.New("food not found in nutrition database")

	// ErrNutritionAPIFailure is returned when the nutrition lookup request fails
	ErrNutritionAPIFailure = errors.New("nutrition API request failed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
