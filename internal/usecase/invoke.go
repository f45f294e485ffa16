package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/platewise/backend/internal/domain"
)

// defaultInvokeTimeout bounds the single network call in the pipeline.
const defaultInvokeTimeout = 30 * time.Second

// analysisSystemPrompt pins the analyzer to the object shape the repairer and
// normalizer expect. The pipeline tolerates deviations anyway.
const analysisSystemPrompt = `You are a nutrition analysis assistant. Examine the meal photo and reply with exactly one JSON object with these fields:
"description" (string), "nutrients" (array of {"name","value","unit"}), "feedback" (array of strings), "suggestions" (array of strings), "detailedIngredients" (array of {"name","category","confidence" 0-1}), "goalScore" ({"overall" 0-10, "specific" object of goal name to score}), "confidence" (number 0-1).
Reply with JSON only, no prose.`

// AnalysisInvoker issues the single, timeout-bounded analysis call. This is
// the only blocking, cancellable operation in the pipeline.
type AnalysisInvoker struct {
	provider domain.ModelProvider
	timeout  time.Duration
}

// NewAnalysisInvoker creates an invoker with the given call timeout
// (defaulting to 30s when zero).
func NewAnalysisInvoker(provider domain.ModelProvider, timeout time.Duration) *AnalysisInvoker {
	if timeout <= 0 {
		timeout = defaultInvokeTimeout
	}
	return &AnalysisInvoker{provider: provider, timeout: timeout}
}

// Invoke issues exactly one analysis call against the resolved model. When
// the selection failed to resolve (force mode with an unavailable preferred
// model, or nothing listed), it returns immediately without touching the
// provider. A timeout cancels the in-flight call and is reported as
// ErrInvocationTimeout.
func (i *AnalysisInvoker) Invoke(ctx context.Context, selection domain.ModelSelection, request *domain.AnalysisRequest) (*domain.RawModelResponse, error) {
	if !request.HasImage() {
		return nil, domain.ErrNoImage
	}

	if selection.ResolvedModel == "" {
		reason := selection.UnavailableReason
		if reason == "" {
			reason = "no model resolved"
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrModelUnavailable, reason)
	}

	callCtx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	started := time.Now()
	response, err := i.provider.AnalyzeImage(callCtx, domain.AnalysisCall{
		Model:        selection.ResolvedModel,
		SystemPrompt: analysisSystemPrompt,
		UserPrompt:   buildUserPrompt(request),
		ImageDataURL: request.ImageDataURL,
	})
	if err != nil {
		if callCtx.Err() == context.DeadlineExceeded || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrInvocationTimeout) {
			return nil, fmt.Errorf("%w after %s (model %q)", domain.ErrInvocationTimeout, i.timeout, selection.ResolvedModel)
		}
		return nil, err
	}

	log.Printf("[INVOKE] model=%s tokens=%d/%d elapsed=%s fallbackModel=%v",
		response.Model, response.PromptTokens, response.CompletionTokens,
		time.Since(started).Round(time.Millisecond), selection.UsedFallbackModel)

	response.UsedFallbackModel = selection.UsedFallbackModel
	if response.Model == "" {
		response.Model = selection.ResolvedModel
	}

	return response, nil
}

// buildUserPrompt folds the user's goals and preferences into the analysis
// instruction.
func buildUserPrompt(request *domain.AnalysisRequest) string {
	var b strings.Builder
	b.WriteString("Analyze this meal photo.")

	if len(request.HealthGoals) > 0 {
		b.WriteString(" My health goals, most important first: ")
		b.WriteString(strings.Join(request.HealthGoals, ", "))
		b.WriteString(".")
	}
	if len(request.DietaryPreferences) > 0 {
		b.WriteString(" Dietary preferences: ")
		b.WriteString(strings.Join(request.DietaryPreferences, ", "))
		b.WriteString(".")
	}
	b.WriteString(" Score the meal against each goal in goalScore.specific.")

	return b.String()
}
