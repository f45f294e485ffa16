package usecase

import "strings"

// Critical fields must exist or be synthesized; recommended fields may be
// defaulted. The names mirror the analyzer output contract.
var (
	criticalFields    = []string{"description", "nutrients"}
	recommendedFields = []string{"feedback", "suggestions", "detailedIngredients", "modelInfo"}
)

// FieldReport is the validator's presence report over a repaired object.
type FieldReport struct {
	HasDescription bool
	HasNutrients   bool
	HasFeedback    bool
	HasSuggestions bool
	HasIngredients bool
	HasModelInfo   bool

	// IsFallbackResult is true when the source already flags itself as a
	// fallback or low-confidence result, or when the reported model
	// identifier indicates an error path.
	IsFallbackResult bool

	MissingCritical    []string
	MissingRecommended []string
}

// Acceptable applies the tolerance rule: critical fields are always
// synthesizable, so a result is accepted when at least one recommended field
// carries real content or the result is already flagged as a fallback.
// An unacceptable result is still normalized; it just renders as a fallback.
func (r FieldReport) Acceptable() bool {
	anyRecommended := r.HasFeedback || r.HasSuggestions || r.HasIngredients || r.HasModelInfo
	return anyRecommended || r.IsFallbackResult
}

// ValidateResult classifies the fields of a repaired object. Total: a nil
// object yields an all-missing report flagged as fallback.
func ValidateResult(obj map[string]interface{}) FieldReport {
	report := FieldReport{}

	if obj == nil {
		report.MissingCritical = append([]string{}, criticalFields...)
		report.MissingRecommended = append([]string{}, recommendedFields...)
		report.IsFallbackResult = true
		return report
	}

	report.HasDescription = hasNonEmptyString(obj, "description")
	report.HasNutrients = hasNutrientContent(obj["nutrients"])
	report.HasFeedback = hasStringListContent(obj["feedback"])
	report.HasSuggestions = hasStringListContent(obj["suggestions"])
	report.HasIngredients = hasListContent(obj["detailedIngredients"]) || hasListContent(obj["ingredients"])
	_, report.HasModelInfo = obj["modelInfo"].(map[string]interface{})

	if !report.HasDescription {
		report.MissingCritical = append(report.MissingCritical, "description")
	}
	if !report.HasNutrients {
		report.MissingCritical = append(report.MissingCritical, "nutrients")
	}
	if !report.HasFeedback {
		report.MissingRecommended = append(report.MissingRecommended, "feedback")
	}
	if !report.HasSuggestions {
		report.MissingRecommended = append(report.MissingRecommended, "suggestions")
	}
	if !report.HasIngredients {
		report.MissingRecommended = append(report.MissingRecommended, "detailedIngredients")
	}
	if !report.HasModelInfo {
		report.MissingRecommended = append(report.MissingRecommended, "modelInfo")
	}

	report.IsFallbackResult = detectFallbackFlags(obj)

	return report
}

// detectFallbackFlags checks for explicit fallback/low-confidence markers and
// for model identifiers that betray an error or fallback path upstream.
func detectFallbackFlags(obj map[string]interface{}) bool {
	if b, ok := obj["fallback"].(bool); ok && b {
		return true
	}
	if b, ok := obj["lowConfidence"].(bool); ok && b {
		return true
	}

	if info, ok := obj["modelInfo"].(map[string]interface{}); ok {
		for _, key := range []string{"name", "model"} {
			if name, ok := info[key].(string); ok {
				lower := strings.ToLower(name)
				if strings.Contains(lower, "error") || strings.Contains(lower, "fallback") {
					return true
				}
			}
		}
	}

	return false
}

func hasNonEmptyString(obj map[string]interface{}, key string) bool {
	s, ok := obj[key].(string)
	return ok && strings.TrimSpace(s) != ""
}

// hasNutrientContent accepts both shapes the analyzer emits: an array of
// nutrient records or a keyed object of name -> value.
func hasNutrientContent(v interface{}) bool {
	switch n := v.(type) {
	case []interface{}:
		return len(n) > 0
	case map[string]interface{}:
		return len(n) > 0
	default:
		return false
	}
}

func hasListContent(v interface{}) bool {
	list, ok := v.([]interface{})
	return ok && len(list) > 0
}

// hasStringListContent requires at least one usable string entry.
func hasStringListContent(v interface{}) bool {
	list, ok := v.([]interface{})
	if !ok {
		if s, ok := v.(string); ok {
			return strings.TrimSpace(s) != ""
		}
		return false
	}
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}
