// Package llm provides a pluggable interface for LLM providers.
package llm

import (
	"context"
	"fmt"

	"github.com/predictcheck/hindsight/internal/config"
)

// CompletionOptions contains options for completion requests.
type CompletionOptions struct {
	MaxTokens   int
	Temperature float64
	Model       string
}

// DefaultCompletionOptions returns sensible defaults.
func DefaultCompletionOptions() CompletionOptions {
	return CompletionOptions{
		MaxTokens:   1024,
		Temperature: 0.0,
	}
}

// Provider defines the interface for LLM providers.
type Provider interface {
	// Complete generates a completion for the given prompt.
	Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error)

	// CompleteWithSystem generates a completion with a system prompt.
	CompleteWithSystem(ctx context.Context, system, user string, opts CompletionOptions) (string, error)

	// Name returns the provider name.
	Name() string

	// IntegratedSearch reports whether the provider retrieves current web
	// information on its own, making a separate evidence-gathering step
	// unnecessary.
	IntegratedSearch() bool
}

// NewProvider creates a new LLM provider based on configuration.
func NewProvider(cfg *config.LLMConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(cfg)
	case "perplexity":
		return NewPerplexityProvider(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
