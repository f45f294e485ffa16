package usecase

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/platewise/backend/internal/domain"
	"github.com/platewise/backend/internal/infrastructure/usda"
)

// Package-level compiled regex patterns for performance
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// maxEnrichedIngredients caps lookup fan-out per meal.
const maxEnrichedIngredients = 3

// EnrichmentServiceConfig holds configuration for the enrichment service
type EnrichmentServiceConfig struct {
	CacheTTL time.Duration
}

// EnrichmentService merges nutrition-database facts into an analysis after
// the pipeline returns. Best effort: any failure leaves the analysis as-is.
type EnrichmentService struct {
	cache    domain.CacheRepository
	client   domain.NutritionClient
	cacheTTL time.Duration
}

// NewEnrichmentService creates an enrichment service with dependencies
func NewEnrichmentService(
	cache domain.CacheRepository,
	client domain.NutritionClient,
	config EnrichmentServiceConfig,
) *EnrichmentService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 720 * time.Hour // Default 30 days
	}

	return &EnrichmentService{
		cache:    cache,
		client:   client,
		cacheTTL: cacheTTL,
	}
}

// Enrich returns a copy of the analysis with zero-valued canonical nutrients
// filled in from ingredient lookups. Model-reported values are never
// overwritten. The input record is not mutated.
func (s *EnrichmentService) Enrich(ctx context.Context, analysis domain.NormalizedAnalysis) domain.NormalizedAnalysis {
	ingredients := confidentIngredients(analysis.DetailedIngredients)
	if len(ingredients) == 0 {
		return analysis
	}

	var totals domain.NutrientFact
	matched := 0
	for _, ingredient := range ingredients {
		fact, err := s.lookup(ctx, ingredient.Name)
		if err != nil {
			log.Printf("[ENRICH] lookup failed for %q: %v", ingredient.Name, err)
			continue
		}
		totals.Calories += fact.Calories
		totals.Protein += fact.Protein
		totals.Carbohydrates += fact.Carbohydrates
		totals.Fat += fact.Fat
		matched++
	}

	if matched == 0 {
		return analysis
	}

	enriched := analysis
	enriched.Nutrients = mergeNutrients(analysis.Nutrients, totals)
	enriched.ReasoningLogs = append(append([]string{}, analysis.ReasoningLogs...),
		fmt.Sprintf("nutrients enriched from USDA lookups for %d ingredient(s)", matched))
	return enriched
}

// lookup checks the cache first, then searches the nutrition database and
// caches the best match.
func (s *EnrichmentService) lookup(ctx context.Context, ingredient string) (*domain.NutrientFact, error) {
	key := cacheKey(ingredient)

	if fact, err := s.cache.Get(ctx, key); err == nil {
		return fact, nil
	}

	result, err := s.client.SearchFoods(ctx, ingredient)
	if err != nil {
		return nil, err
	}

	best := bestMatch(ingredient, result.Foods)
	if best == nil {
		return nil, domain.ErrFoodNotFound
	}

	fact := usda.MapToNutrientFact(ingredient, best)

	if err := s.cache.Set(ctx, key, fact, s.cacheTTL); err != nil {
		log.Printf("[ENRICH] cache set failed for %q: %v", key, err)
	}

	return fact, nil
}

// confidentIngredients keeps the medium-and-up tier ingredients worth a
// lookup, capped to bound fan-out.
func confidentIngredients(ingredients []domain.Ingredient) []domain.Ingredient {
	out := make([]domain.Ingredient, 0, maxEnrichedIngredients)
	for _, ingredient := range ingredients {
		if ingredient.ConfidenceTier == "low" {
			continue
		}
		out = append(out, ingredient)
		if len(out) == maxEnrichedIngredients {
			break
		}
	}
	return out
}

// mergeNutrients fills zero-valued canonical nutrients from lookup totals,
// appending any canonical nutrient the model omitted entirely.
func mergeNutrients(existing []domain.Nutrient, totals domain.NutrientFact) []domain.Nutrient {
	byTotal := map[string]float64{
		"calories":      totals.Calories,
		"protein":       totals.Protein,
		"carbohydrates": totals.Carbohydrates,
		"fat":           totals.Fat,
	}

	out := make([]domain.Nutrient, len(existing))
	copy(out, existing)

	present := make(map[string]bool, len(out))
	for i := range out {
		key := strings.ToLower(strings.TrimSpace(out[i].Name))
		if alias, ok := nutrientKeyAliases[key]; ok {
			key = alias
		}
		present[key] = true
		if out[i].Value == 0 {
			if total, ok := byTotal[key]; ok && total > 0 {
				out[i].Value = total
			}
		}
	}

	for _, canonical := range canonicalNutrients {
		if present[canonical.key] {
			continue
		}
		total := byTotal[canonical.key]
		if total <= 0 {
			continue
		}
		out = append(out, domain.Nutrient{
			Name:        canonical.name,
			Value:       total,
			Unit:        canonical.unit,
			IsHighlight: true,
		})
	}

	return out
}

// bestMatch scores candidates by token overlap with the ingredient query,
// preferring shorter descriptions on ties.
func bestMatch(query string, foods []domain.FoodMatch) *domain.FoodMatch {
	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	var best *domain.FoodMatch
	bestScore := 0.0
	for i := range foods {
		score := overlapScore(queryTokens, tokenize(foods[i].Description))
		if score == 0 {
			continue
		}
		if best == nil || score > bestScore ||
			(score == bestScore && len(foods[i].Description) < len(best.Description)) {
			best = &foods[i]
			bestScore = score
		}
	}
	return best
}

func overlapScore(queryTokens, descTokens []string) float64 {
	if len(queryTokens) == 0 {
		return 0
	}
	descSet := make(map[string]bool, len(descTokens))
	for _, token := range descTokens {
		descSet[token] = true
	}
	hits := 0
	for _, token := range queryTokens {
		if descSet[token] {
			hits++
		}
	}
	return float64(hits) / float64(len(queryTokens))
}

func tokenize(s string) []string {
	normalized := normalizeForCacheKey(s)
	if normalized == "" {
		return nil
	}
	return strings.Fields(normalized)
}

// cacheKey creates a normalized cache key from an ingredient name.
// Format: "nutrition:{normalized_ingredient}"
func cacheKey(ingredient string) string {
	return fmt.Sprintf("nutrition:%s", normalizeForCacheKey(ingredient))
}

// normalizeForCacheKey normalizes a string for use as cache key component.
// Converts to lowercase, removes special characters, and trims whitespace.
func normalizeForCacheKey(s string) string {
	if s == "" {
		return ""
	}
	result := strings.ToLower(s)
	result = nonAlphanumericRegex.ReplaceAllString(result, "")
	result = multipleSpacesRegex.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}
