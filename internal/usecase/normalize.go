package usecase

import (
	"sort"
	"strconv"
	"strings"

	"github.com/platewise/backend/config"
	"github.com/platewise/backend/internal/domain"
)

// Synthesized default values. The description default doubles as the marker a
// UI can render when nothing better exists.
const (
	defaultDescription = "We couldn't identify this meal. Please try again with a clearer photo."
	defaultFeedback    = "We couldn't fully analyze your meal this time."
	defaultSuggestion  = "Try a clearer, well-lit photo taken from directly above your meal."
)

// Ingredient confidence tier cutoffs. Tiers are always derived, never parsed.
const (
	tierHighCutoff   = 0.8
	tierMediumCutoff = 0.5
)

// canonicalNutrients fixes the output order and units when a keyed nutrient
// object is converted to the canonical array shape.
var canonicalNutrients = []struct {
	key  string
	name string
	unit string
}{
	{"calories", "Calories", "kcal"},
	{"protein", "Protein", "g"},
	{"carbohydrates", "Carbohydrates", "g"},
	{"fat", "Fat", "g"},
}

// nutrientKeyAliases folds analyzer spelling variants onto canonical keys.
var nutrientKeyAliases = map[string]string{
	"carbs":    "carbohydrates",
	"totalfat": "fat",
	"fats":     "fat",
	"kcal":     "calories",
	"energy":   "calories",
}

// NormalizeMeta records which critical/recommended fields the normalizer had
// to invent. The classifier uses it for coverage heuristics.
type NormalizeMeta struct {
	SynthesizedDescription bool
	SynthesizedNutrients   bool
	SynthesizedFeedback    bool
	SynthesizedSuggestions bool
	SynthesizedIngredients bool
}

// Normalizer rewrites any accepted object shape into the canonical
// NormalizedAnalysis record. It is total: any input, including nil, produces
// a structurally complete record, and normalizing an already-normalized
// record returns an equal one.
type Normalizer struct {
	heuristics config.HeuristicsConfig
}

// NewNormalizer creates a normalizer, filling unset heuristic knobs with the
// production defaults.
func NewNormalizer(h config.HeuristicsConfig) *Normalizer {
	if h.DefaultConfidence == 0 {
		h.DefaultConfidence = 0.5
	}
	if h.DefaultGoalScore == 0 {
		h.DefaultGoalScore = 5
	}
	if h.FallbackGoalScore == 0 {
		h.FallbackGoalScore = 3
	}
	return &Normalizer{heuristics: h}
}

// Normalize converts a repaired object plus its field report into the
// canonical record. Pass a zero FieldReport alongside a nil object to get the
// canonical empty-fallback record.
func (n *Normalizer) Normalize(obj map[string]interface{}, report FieldReport) (domain.NormalizedAnalysis, NormalizeMeta) {
	meta := NormalizeMeta{}
	out := domain.NormalizedAnalysis{}

	if obj == nil {
		obj = map[string]interface{}{}
	}

	out.Description, meta.SynthesizedDescription = normalizeDescription(obj["description"])
	out.Nutrients, meta.SynthesizedNutrients = normalizeNutrients(obj["nutrients"])
	out.Feedback, meta.SynthesizedFeedback = normalizeStringList(obj["feedback"], defaultFeedback)
	out.Suggestions, meta.SynthesizedSuggestions = normalizeStringList(obj["suggestions"], defaultSuggestion)
	out.DetailedIngredients, meta.SynthesizedIngredients = n.normalizeIngredients(obj)
	out.Confidence = n.normalizeConfidence(obj["confidence"])
	out.ReasoningLogs = normalizeLogs(obj["reasoningLogs"])

	// Explicit flags pass through; otherwise a synthesized critical field or
	// an upstream fallback marker forces the flag (fallback monotonicity).
	explicitFallback, hasExplicitFallback := obj["fallback"].(bool)
	if hasExplicitFallback {
		out.Fallback = explicitFallback
	} else {
		out.Fallback = report.IsFallbackResult || meta.SynthesizedDescription
	}
	if low, ok := obj["lowConfidence"].(bool); ok {
		out.LowConfidence = low
	}

	out.GoalScore = n.normalizeGoalScore(obj["goalScore"], out.Fallback)

	if meta.SynthesizedDescription {
		out.ReasoningLogs = append(out.ReasoningLogs, "description missing from analyzer output; default used")
	}
	if meta.SynthesizedNutrients {
		out.ReasoningLogs = append(out.ReasoningLogs, "nutrients missing from analyzer output; empty list used")
	}

	return out, meta
}

func normalizeDescription(v interface{}) (string, bool) {
	if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
		return s, false
	}
	return defaultDescription, true
}

// normalizeNutrients accepts the array-of-records shape or a keyed object and
// always returns the canonical ordered slice.
func normalizeNutrients(v interface{}) ([]domain.Nutrient, bool) {
	switch src := v.(type) {
	case []interface{}:
		out := make([]domain.Nutrient, 0, len(src))
		for _, item := range src {
			record, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			name, _ := record["name"].(string)
			if strings.TrimSpace(name) == "" {
				continue
			}
			value := coerceFloat(firstPresent(record, "value", "amount"))
			unit, _ := record["unit"].(string)
			if unit == "" {
				unit = canonicalUnitFor(name)
			}
			highlight, hasHighlight := record["isHighlight"].(bool)
			if !hasHighlight {
				highlight = isCanonicalNutrient(name)
			}
			out = append(out, domain.Nutrient{Name: name, Value: value, Unit: unit, IsHighlight: highlight})
		}
		return out, false

	case map[string]interface{}:
		return keyedNutrientsToSlice(src), false

	default:
		return []domain.Nutrient{}, true
	}
}

// keyedNutrientsToSlice converts {calories: 200, protein: 10, ...} into the
// canonical order: calories, protein, carbohydrates, fat, then extras.
func keyedNutrientsToSlice(src map[string]interface{}) []domain.Nutrient {
	normalized := make(map[string]interface{}, len(src))
	for key, value := range src {
		folded := strings.ToLower(strings.TrimSpace(key))
		if alias, ok := nutrientKeyAliases[folded]; ok {
			folded = alias
		}
		normalized[folded] = value
	}

	out := make([]domain.Nutrient, 0, len(normalized))
	seen := make(map[string]bool, len(normalized))
	for _, canonical := range canonicalNutrients {
		value, ok := normalized[canonical.key]
		if !ok {
			continue
		}
		seen[canonical.key] = true
		out = append(out, domain.Nutrient{
			Name:        canonical.name,
			Value:       coerceFloat(value),
			Unit:        canonical.unit,
			IsHighlight: true,
		})
	}

	extras := make([]string, 0, len(normalized))
	for key := range normalized {
		if !seen[key] {
			extras = append(extras, key)
		}
	}
	sort.Strings(extras)
	for _, key := range extras {
		out = append(out, domain.Nutrient{
			Name:  titleCase(key),
			Value: coerceFloat(normalized[key]),
			Unit:  "g",
		})
	}

	return out
}

// normalizeStringList keeps usable string entries, wraps a bare string, and
// falls back to a single default entry.
func normalizeStringList(v interface{}, fallback string) ([]string, bool) {
	switch src := v.(type) {
	case []interface{}:
		out := make([]string, 0, len(src))
		for _, item := range src {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		if len(out) > 0 {
			return out, false
		}
	case string:
		if strings.TrimSpace(src) != "" {
			return []string{src}, false
		}
	}
	return []string{fallback}, true
}

// normalizeIngredients reads detailedIngredients records, falling back to a
// plain ingredients string list when that is all the analyzer produced.
func (n *Normalizer) normalizeIngredients(obj map[string]interface{}) ([]domain.Ingredient, bool) {
	if list, ok := obj["detailedIngredients"].([]interface{}); ok {
		out := make([]domain.Ingredient, 0, len(list))
		for _, item := range list {
			record, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			name, _ := record["name"].(string)
			if strings.TrimSpace(name) == "" {
				continue
			}
			category, _ := record["category"].(string)
			if category == "" {
				category = "unknown"
			}
			confidence := n.heuristics.DefaultConfidence
			if raw, ok := record["confidence"]; ok {
				confidence = clamp(coerceFloat(raw), 0, 1)
			}
			out = append(out, domain.Ingredient{
				Name:           name,
				Category:       category,
				Confidence:     confidence,
				ConfidenceTier: confidenceTier(confidence),
			})
		}
		if len(out) > 0 {
			return out, false
		}
	}

	if list, ok := obj["ingredients"].([]interface{}); ok {
		out := make([]domain.Ingredient, 0, len(list))
		for _, item := range list {
			name, ok := item.(string)
			if !ok || strings.TrimSpace(name) == "" {
				continue
			}
			out = append(out, domain.Ingredient{
				Name:           name,
				Category:       "unknown",
				Confidence:     n.heuristics.DefaultConfidence,
				ConfidenceTier: confidenceTier(n.heuristics.DefaultConfidence),
			})
		}
		if len(out) > 0 {
			return out, false
		}
	}

	return []domain.Ingredient{}, true
}

func (n *Normalizer) normalizeConfidence(v interface{}) float64 {
	if v == nil {
		return n.heuristics.DefaultConfidence
	}
	value, ok := tryCoerceFloat(v)
	if !ok {
		return n.heuristics.DefaultConfidence
	}
	return clamp(value, 0, 1)
}

func (n *Normalizer) normalizeGoalScore(v interface{}, fallback bool) domain.GoalScore {
	defaultOverall := n.heuristics.DefaultGoalScore
	if fallback {
		defaultOverall = n.heuristics.FallbackGoalScore
	}

	out := domain.GoalScore{Overall: defaultOverall, Specific: map[string]float64{}}

	switch src := v.(type) {
	case map[string]interface{}:
		if raw, ok := src["overall"]; ok {
			if value, ok := tryCoerceFloat(raw); ok {
				out.Overall = clamp(value, 0, 10)
			}
		}
		if specific, ok := src["specific"].(map[string]interface{}); ok {
			for goal, raw := range specific {
				out.Specific[goal] = clamp(coerceFloat(raw), 0, 10)
			}
		}
	default:
		if value, ok := tryCoerceFloat(v); ok {
			out.Overall = clamp(value, 0, 10)
		}
	}

	return out
}

func normalizeLogs(v interface{}) []string {
	out := []string{}
	if list, ok := v.([]interface{}); ok {
		for _, item := range list {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// confidenceTier derives the display tier from a 0-1 confidence.
func confidenceTier(confidence float64) string {
	switch {
	case confidence >= tierHighCutoff:
		return "high"
	case confidence >= tierMediumCutoff:
		return "medium"
	default:
		return "low"
	}
}

// coerceFloat converts numbers and numeric-looking strings; anything else is 0.
func coerceFloat(v interface{}) float64 {
	value, _ := tryCoerceFloat(v)
	return value
}

func tryCoerceFloat(v interface{}) (float64, bool) {
	switch value := v.(type) {
	case float64:
		return value, true
	case float32:
		return float64(value), true
	case int:
		return float64(value), true
	case int64:
		return float64(value), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func firstPresent(record map[string]interface{}, keys ...string) interface{} {
	for _, key := range keys {
		if v, ok := record[key]; ok {
			return v
		}
	}
	return nil
}

func canonicalUnitFor(name string) string {
	folded := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := nutrientKeyAliases[folded]; ok {
		folded = alias
	}
	for _, canonical := range canonicalNutrients {
		if canonical.key == folded {
			return canonical.unit
		}
	}
	return "g"
}

func isCanonicalNutrient(name string) bool {
	folded := strings.ToLower(strings.TrimSpace(name))
	if alias, ok := nutrientKeyAliases[folded]; ok {
		folded = alias
	}
	for _, canonical := range canonicalNutrients {
		if canonical.key == folded {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
