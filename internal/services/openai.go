package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

// Generator is the narrow capability interface to the external generative
// model. Production uses OpenAI; tests substitute a deterministic stub.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// OpenAIGenerator synthesizes listings via the OpenAI chat API
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	callTimeout time.Duration
	totalTokens int
}

// NewOpenAIGenerator creates a generator using OPENAI_API_KEY
func NewOpenAIGenerator() (*OpenAIGenerator, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}

	return &OpenAIGenerator{
		client:      openai.NewClient(apiKey),
		model:       "gpt-4o-mini",
		temperature: 0.0,
		maxTokens:   4000,
		callTimeout: 60 * time.Second,
	}, nil
}

// NewOpenAIGeneratorWithConfig creates a generator with custom model settings
func NewOpenAIGeneratorWithConfig(model string, temperature float32, maxTokens int, callTimeout time.Duration) (*OpenAIGenerator, error) {
	g, err := NewOpenAIGenerator()
	if err != nil {
		return nil, err
	}
	if model != "" {
		g.model = model
	}
	g.temperature = temperature
	if maxTokens > 0 {
		g.maxTokens = maxTokens
	}
	if callTimeout > 0 {
		g.callTimeout = callTimeout
	}
	return g, nil
}

// Generate sends one prompt and returns the raw model text. The per-call
// timeout bounds the request; callers treat any error as zero records for
// the block, never as fatal.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.callTimeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:       g.model,
			Temperature: g.temperature,
			MaxTokens:   g.maxTokens,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response choices from OpenAI")
	}

	g.totalTokens += resp.Usage.TotalTokens
	return resp.Choices[0].Message.Content, nil
}

// Model returns the model name in use
func (g *OpenAIGenerator) Model() string {
	return g.model
}

// TokensUsed returns the cumulative token count across calls
func (g *OpenAIGenerator) TokensUsed() int {
	return g.totalTokens
}

// EstimateCost approximates the dollar cost of a call from token usage.
// Blended gpt-4o-mini rate, same approach the billing dashboard uses for
// rough budgeting.
func EstimateCost(tokensUsed int) float64 {
	return float64(tokensUsed) * 0.0003 / 1000.0
}

// cleanJSONResponse removes markdown code fences from model output
func cleanJSONResponse(response string) string {
	cleaned := strings.TrimSpace(response)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	}
	if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	if strings.HasSuffix(cleaned, "```") {
		cleaned = strings.TrimSuffix(cleaned, "```")
	}

	return strings.TrimSpace(cleaned)
}
