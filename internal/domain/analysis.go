package domain

// AnalysisRequest carries one meal-photo analysis request through the pipeline.
// Built once per incoming call and never mutated.
type AnalysisRequest struct {
	ImageDataURL       string   `json:"-"` // canonical data:image/...;base64 payload, empty when absent
	HealthGoals        []string `json:"healthGoals"`
	DietaryPreferences []string `json:"dietaryPreferences"`
	RequestID          string   `json:"requestId"`
}

// HasImage reports whether a usable image payload was extracted.
func (r *AnalysisRequest) HasImage() bool {
	return r != nil && r.ImageDataURL != ""
}

// ModelSelection is the single source of truth for which model the invoker
// may call. Computed once per request by the availability check; never re-derived.
// Invariant: ForceMode && ResolvedModel == "" means the pipeline must
// short-circuit to a fallback result without calling the provider.
type ModelSelection struct {
	PreferredModel    string `json:"preferredModel"`
	ForceMode         bool   `json:"forceMode"`
	ResolvedModel     string `json:"resolvedModel"`
	UsedFallbackModel bool   `json:"usedFallbackModel"`
	UnavailableReason string `json:"unavailableReason,omitempty"`
}

// AnalysisCall is the outbound request shape for the model provider.
type AnalysisCall struct {
	Model        string
	SystemPrompt string
	UserPrompt   string
	ImageDataURL string
}

// RawModelResponse is the provider's answer before any parsing. Consumed
// immediately by the response repairer.
type RawModelResponse struct {
	Text              string
	Model             string
	PromptTokens      int
	CompletionTokens  int
	UsedFallbackModel bool
}

// Nutrient is one entry of the canonical nutrient sequence.
type Nutrient struct {
	Name        string  `json:"name"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	IsHighlight bool    `json:"isHighlight"`
}

// Ingredient is one detected ingredient with its derived confidence tier.
type Ingredient struct {
	Name           string  `json:"name"`
	Category       string  `json:"category"`
	Confidence     float64 `json:"confidence"`     // 0-1
	ConfidenceTier string  `json:"confidenceTier"` // "high" | "medium" | "low"
}

// GoalScore rates the meal against the user's health goals.
type GoalScore struct {
	Overall  float64            `json:"overall"` // 0-10
	Specific map[string]float64 `json:"specific"`
}

// NormalizedAnalysis is the canonical pipeline output. It is always
// structurally complete: every field exists with its stated type, and only
// Fallback/LowConfidence signal reduced trust. Never mutated after
// construction; callers copy before attaching persisted ids.
type NormalizedAnalysis struct {
	Description         string       `json:"description"`
	Nutrients           []Nutrient   `json:"nutrients"`
	Feedback            []string     `json:"feedback"`
	Suggestions         []string     `json:"suggestions"`
	DetailedIngredients []Ingredient `json:"detailedIngredients"`
	GoalScore           GoalScore    `json:"goalScore"`
	Confidence          float64      `json:"confidence"` // 0-1
	Fallback            bool         `json:"fallback"`
	LowConfidence       bool         `json:"lowConfidence"`
	ReasoningLogs       []string     `json:"reasoningLogs"`
}
