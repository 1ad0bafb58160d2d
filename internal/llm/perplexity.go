// Package llm provides the Perplexity implementation of the Provider interface.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/predictcheck/hindsight/internal/config"
	"github.com/predictcheck/hindsight/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

// PerplexityProvider implements Provider using the Perplexity API, which
// speaks the OpenAI chat-completions wire format at a different base URL.
// Perplexity models retrieve current web information themselves, so pipelines
// using this provider skip the separate evidence-gathering step.
type PerplexityProvider struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewPerplexityProvider creates a new Perplexity provider.
func NewPerplexityProvider(cfg *config.LLMConfig) (*PerplexityProvider, error) {
	if cfg.PerplexityKey == "" {
		return nil, models.NewConfigurationError("llm.perplexity_api_key", "Perplexity API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.PerplexityKey)
	clientConfig.BaseURL = cfg.PerplexityURL
	if clientConfig.BaseURL == "" {
		clientConfig.BaseURL = "https://api.perplexity.ai"
	}
	client := openai.NewClientWithConfig(clientConfig)

	model := cfg.Model
	if model == "" {
		model = "sonar-reasoning-pro"
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 90 * time.Second
	}

	return &PerplexityProvider{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

// Name returns the provider name.
func (p *PerplexityProvider) Name() string {
	return "perplexity"
}

// IntegratedSearch returns true: sonar models search the web themselves.
func (p *PerplexityProvider) IntegratedSearch() bool {
	return true
}

// Complete generates a completion for the given prompt.
func (p *PerplexityProvider) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	return p.CompleteWithSystem(ctx, "", prompt, opts)
}

// CompleteWithSystem generates a completion with a system prompt.
func (p *PerplexityProvider) CompleteWithSystem(ctx context.Context, system, user string, opts CompletionOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = p.model
	}

	messages := []openai.ChatCompletionMessage{}
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: user,
	})

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		Messages:  messages,
		MaxTokens: opts.MaxTokens,
	})
	if err != nil {
		return "", &models.UpstreamServiceError{Service: "perplexity", Err: err}
	}

	if len(resp.Choices) == 0 {
		return "", &models.UpstreamServiceError{Service: "perplexity", Err: fmt.Errorf("no choices in response")}
	}

	return resp.Choices[0].Message.Content, nil
}
