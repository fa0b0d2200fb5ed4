package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kognita-cloud/ragdex/internal/domain"
	"github.com/kognita-cloud/ragdex/internal/metrics"
)

// Generator produces chat completions using the OpenAI-compatible API.
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// GeneratorConfig holds the generation provider settings.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Logger      *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat completion provider.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      cfg.Logger,
	}
}

// Generate implements domain.Generator. Sends the prompt as a single user
// message and returns the completion text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	}

	start := time.Now()

	resp, err := g.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.ProviderRequestsTotal.WithLabelValues("generate", g.model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues("generate", g.model, "api_error").Inc()
		return "", parseAPIError("generation", err, domain.ErrGenerationProviderError)
	}

	if len(resp.Choices) == 0 {
		metrics.ProviderRequestsTotal.WithLabelValues("generate", g.model, "error").Inc()
		metrics.ProviderErrorsTotal.WithLabelValues("generate", g.model, "empty_response").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGenerationProviderError)
	}

	metrics.ProviderRequestsTotal.WithLabelValues("generate", g.model, "success").Inc()
	metrics.ProviderRequestDuration.WithLabelValues("generate", g.model).Observe(duration.Seconds())

	if resp.Usage.TotalTokens > 0 {
		metrics.ProviderTokensTotal.WithLabelValues("generate", g.model, "prompt").Add(float64(resp.Usage.PromptTokens))
		metrics.ProviderTokensTotal.WithLabelValues("generate", g.model, "completion").Add(float64(resp.Usage.CompletionTokens))
		metrics.ProviderTokensTotal.WithLabelValues("generate", g.model, "total").Add(float64(resp.Usage.TotalTokens))
	}

	return resp.Choices[0].Message.Content, nil
}
