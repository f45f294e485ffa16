package usecase

import "encoding/json"

// RepairOutcome says how much surgery the model text needed.
type RepairOutcome int

const (
	RepairParsedStrict RepairOutcome = iota
	RepairParsedExtracted
	RepairSynthesized
)

// DefaultRepairScanLimit bounds the best-effort brace scan so pathological
// model output cannot pin a request. 256 KiB.
const DefaultRepairScanLimit = 262144

// repairFallbackDescription is the diagnostic description of the minimal
// object produced when no structure can be recovered at all.
const repairFallbackDescription = "Meal analysis unavailable - the analyzer response could not be read"

// RepairResponse turns raw model text into some structured object, always.
// Phase one is a strict JSON parse; phase two extracts the outermost balanced
// brace region (quote and escape aware, bounded by scanLimit) and retries;
// failing both, a minimal object with a diagnostic description and empty
// collections is returned. Never returns nil.
func RepairResponse(text string, scanLimit int) (map[string]interface{}, RepairOutcome) {
	if scanLimit <= 0 {
		scanLimit = DefaultRepairScanLimit
	}

	if obj, ok := tryParseObject(text); ok {
		return obj, RepairParsedStrict
	}

	if region, ok := extractBraceRegion(text, scanLimit); ok {
		if obj, ok := tryParseObject(region); ok {
			return obj, RepairParsedExtracted
		}
	}

	return map[string]interface{}{
		"description":   repairFallbackDescription,
		"nutrients":     []interface{}{},
		"feedback":      []interface{}{},
		"suggestions":   []interface{}{},
		"reasoningLogs": []interface{}{"analyzer response was not valid JSON and no object region could be recovered"},
	}, RepairSynthesized
}

// tryParseObject parses text as a JSON object; arrays and scalars are
// rejected because the pipeline contract is object-shaped.
func tryParseObject(text string) (map[string]interface{}, bool) {
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(text), &obj); err != nil {
		return nil, false
	}
	if obj == nil {
		return nil, false
	}
	return obj, true
}

// extractBraceRegion locates the outermost balanced {...} region in text,
// skipping braces inside JSON string literals. Scanning stops at scanLimit
// bytes; an unbalanced region yields no result.
func extractBraceRegion(text string, scanLimit int) (string, bool) {
	if len(text) > scanLimit {
		text = text[:scanLimit]
	}

	start := -1
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		ch := text[i]

		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}

		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
	}

	return "", false
}
