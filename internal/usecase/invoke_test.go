package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/backend/internal/domain"
)

func testAnalysisRequest() *domain.AnalysisRequest {
	return &domain.AnalysisRequest{
		ImageDataURL: "data:image/jpeg;base64,Zm9v",
		HealthGoals:  []string{"weight loss", "more protein"},
		RequestID:    "req-1",
	}
}

func TestInvoke_Success(t *testing.T) {
	provider := &stubProvider{
		analyzeFn: func(ctx context.Context, call domain.AnalysisCall) (*domain.RawModelResponse, error) {
			return &domain.RawModelResponse{Text: `{"description":"bowl"}`, Model: call.Model, PromptTokens: 100, CompletionTokens: 50}, nil
		},
	}
	invoker := NewAnalysisInvoker(provider, time.Second)

	selection := domain.ModelSelection{PreferredModel: "gpt-4o", ResolvedModel: "gpt-4o-mini", UsedFallbackModel: true}
	response, err := invoker.Invoke(context.Background(), selection, testAnalysisRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, provider.analyzeCalls)
	assert.Equal(t, "gpt-4o-mini", provider.lastCall.Model)
	assert.Equal(t, "data:image/jpeg;base64,Zm9v", provider.lastCall.ImageDataURL)
	assert.Contains(t, provider.lastCall.UserPrompt, "weight loss, more protein")
	assert.NotEmpty(t, provider.lastCall.SystemPrompt)
	assert.True(t, response.UsedFallbackModel, "fallback marker carried from the selection")
}

func TestInvoke_UnresolvedSelectionSkipsProvider(t *testing.T) {
	provider := &stubProvider{}
	invoker := NewAnalysisInvoker(provider, time.Second)

	selection := domain.ModelSelection{
		PreferredModel:    "gpt-4o",
		ForceMode:         true,
		UnavailableReason: "model \"gpt-4o\" is not available",
	}
	_, err := invoker.Invoke(context.Background(), selection, testAnalysisRequest())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrModelUnavailable))
	assert.Equal(t, 0, provider.analyzeCalls, "no provider call without a resolved model")
	assert.Equal(t, 0, provider.listCalls)
}

func TestInvoke_TimeoutCancelsCall(t *testing.T) {
	provider := &stubProvider{
		analyzeFn: func(ctx context.Context, call domain.AnalysisCall) (*domain.RawModelResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	invoker := NewAnalysisInvoker(provider, 50*time.Millisecond)

	started := time.Now()
	_, err := invoker.Invoke(context.Background(), domain.ModelSelection{ResolvedModel: "gpt-4o"}, testAnalysisRequest())
	elapsed := time.Since(started)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvocationTimeout))
	assert.Contains(t, err.Error(), "gpt-4o")
	assert.Less(t, elapsed, time.Second, "the call returns near the deadline, not later")
}

func TestInvoke_RejectsImagelessRequest(t *testing.T) {
	provider := &stubProvider{}
	invoker := NewAnalysisInvoker(provider, time.Second)

	_, err := invoker.Invoke(context.Background(), domain.ModelSelection{ResolvedModel: "gpt-4o"}, &domain.AnalysisRequest{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNoImage))
	assert.Equal(t, 0, provider.analyzeCalls)
}

func TestInvoke_ProviderErrorPassesThrough(t *testing.T) {
	provider := &stubProvider{
		analyzeFn: func(ctx context.Context, call domain.AnalysisCall) (*domain.RawModelResponse, error) {
			return nil, domain.ErrRateLimited
		},
	}
	invoker := NewAnalysisInvoker(provider, time.Second)

	_, err := invoker.Invoke(context.Background(), domain.ModelSelection{ResolvedModel: "gpt-4o"}, testAnalysisRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
}

func TestInvoke_FillsModelWhenProviderOmitsIt(t *testing.T) {
	provider := &stubProvider{
		analyzeFn: func(ctx context.Context, call domain.AnalysisCall) (*domain.RawModelResponse, error) {
			return &domain.RawModelResponse{Text: "{}"}, nil
		},
	}
	invoker := NewAnalysisInvoker(provider, time.Second)

	response, err := invoker.Invoke(context.Background(), domain.ModelSelection{ResolvedModel: "gpt-4o"}, testAnalysisRequest())
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", response.Model)
}

func TestBuildUserPrompt(t *testing.T) {
	prompt := buildUserPrompt(&domain.AnalysisRequest{
		HealthGoals:        []string{"weight loss"},
		DietaryPreferences: []string{"vegetarian"},
	})
	assert.Contains(t, prompt, "weight loss")
	assert.Contains(t, prompt, "vegetarian")

	bare := buildUserPrompt(&domain.AnalysisRequest{})
	assert.Contains(t, bare, "Analyze this meal photo.")
	assert.NotContains(t, bare, "health goals")
}
