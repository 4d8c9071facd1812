package answerer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"atlas/pkg/models"
)

const defaultGenerateTimeout = 60 * time.Second

// OpenAIAnswerer calls an OpenAI-compatible chat completion API.
type OpenAIAnswerer struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAI creates an answerer for the given API key and model.
func NewOpenAI(apiKey, model string) *OpenAIAnswerer {
	return &OpenAIAnswerer{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: defaultGenerateTimeout,
	}
}

// Generate renders the prompt template and performs one chat completion,
// bounded by the configured timeout. Temperature is pinned low so answers
// stay grounded in the provided context.
func (a *OpenAIAnswerer) Generate(ctx context.Context, systemPrompt, contextBlock, query string) (*models.Generation, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	userPrompt := fmt.Sprintf("CONTEXTO:\n%s\n\nPREGUNTA:\n%s\n\nRESPUESTA (clara y en pasos si aplica):", contextBlock, query)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: chat completion failed: %w", ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: model returned no choices", ErrUnavailable)
	}

	return &models.Generation{
		Text:  strings.TrimSpace(resp.Choices[0].Message.Content),
		Model: resp.Model,
		Usage: models.TokenUsage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}
