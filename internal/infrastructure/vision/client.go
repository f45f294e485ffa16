package vision

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/platewise/backend/internal/domain"
)

// defaultMaxTokens caps completion length; the analyzer contract fits well
// under this.
const defaultMaxTokens = 1500

// Client talks to an OpenAI-compatible vision model endpoint.
type Client struct {
	client    *openai.Client
	maxTokens int
}

// NewClient creates a vision model client. baseURL overrides the provider
// endpoint when non-empty (for proxies and compatible providers).
func NewClient(apiKey, baseURL string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		client:    openai.NewClientWithConfig(cfg),
		maxTokens: defaultMaxTokens,
	}
}

// ListModels returns the model ids available to the credential.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	list, err := c.client.ListModels(ctx)
	if err != nil {
		return nil, classifyError(err)
	}

	ids := make([]string, 0, len(list.Models))
	for _, model := range list.Models {
		ids = append(ids, model.ID)
	}
	return ids, nil
}

// AnalyzeImage issues one vision chat completion carrying the photo as a
// data-URL image part.
func (c *Client) AnalyzeImage(ctx context.Context, call domain.AnalysisCall) (*domain.RawModelResponse, error) {
	request := openai.ChatCompletionRequest{
		Model:     call.Model,
		MaxTokens: c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: call.SystemPrompt,
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: call.UserPrompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    call.ImageDataURL,
							Detail: openai.ImageURLDetailAuto,
						},
					},
				},
			},
		},
	}

	response, err := c.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, classifyError(err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("%w: completion had no choices", domain.ErrTransport)
	}

	log.Printf("[VISION] completion model=%s promptTokens=%d completionTokens=%d",
		response.Model, response.Usage.PromptTokens, response.Usage.CompletionTokens)

	return &domain.RawModelResponse{
		Text:             response.Choices[0].Message.Content,
		Model:            response.Model,
		PromptTokens:     response.Usage.PromptTokens,
		CompletionTokens: response.Usage.CompletionTokens,
	}, nil
}

// classifyError maps provider failures onto the domain taxonomy so callers
// can tell auth from rate limiting from plain transport trouble.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrInvocationTimeout, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}

	status := 0
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: status %d", domain.ErrAuthFailure, status)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", domain.ErrRateLimited, status)
	}

	return fmt.Errorf("%w: %v", domain.ErrTransport, err)
}
