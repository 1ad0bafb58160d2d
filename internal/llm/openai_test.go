package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/predictcheck/hindsight/internal/config"
	"github.com/predictcheck/hindsight/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

func chatServer(t *testing.T, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		if len(req.Messages) == 0 {
			t.Error("Expected at least one message")
		}

		resp := openai.ChatCompletionResponse{
			ID:    "chatcmpl-123",
			Model: req.Model,
			Choices: []openai.ChatCompletionChoice{
				{
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: content,
					},
					FinishReason: "stop",
				},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func TestOpenAIProvider_CompleteWithSystem(t *testing.T) {
	server := chatServer(t, "Actual Result: Done.\nRating: TRUE")
	defer server.Close()

	provider, err := NewOpenAIProvider(&config.LLMConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o",
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	got, err := provider.CompleteWithSystem(context.Background(), "system prompt", "user prompt", DefaultCompletionOptions())
	if err != nil {
		t.Fatalf("CompleteWithSystem failed: %v", err)
	}
	if got != "Actual Result: Done.\nRating: TRUE" {
		t.Errorf("Unexpected response: %q", got)
	}
}

func TestOpenAIProvider_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(&config.LLMConfig{APIKey: "test-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	_, err = provider.Complete(context.Background(), "prompt", DefaultCompletionOptions())
	if err == nil {
		t.Fatal("Expected error")
	}

	var upstream *models.UpstreamServiceError
	if !errors.As(err, &upstream) {
		t.Errorf("Expected UpstreamServiceError, got %v", err)
	}
}

func TestNewOpenAIProvider_MissingKey(t *testing.T) {
	_, err := NewOpenAIProvider(&config.LLMConfig{})
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}

	var cfgErr *models.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("Expected ConfigurationError, got %v", err)
	}
}

func TestPerplexityProvider_CompleteWithSystem(t *testing.T) {
	server := chatServer(t, "Actual Result: Not yet.\nRating: NOT YET")
	defer server.Close()

	provider, err := NewPerplexityProvider(&config.LLMConfig{
		PerplexityKey: "pplx-test",
		PerplexityURL: server.URL,
		Model:         "sonar-reasoning-pro",
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if !provider.IntegratedSearch() {
		t.Error("Perplexity provider must report integrated search")
	}

	got, err := provider.CompleteWithSystem(context.Background(), "system", "user", DefaultCompletionOptions())
	if err != nil {
		t.Fatalf("CompleteWithSystem failed: %v", err)
	}
	if got != "Actual Result: Not yet.\nRating: NOT YET" {
		t.Errorf("Unexpected response: %q", got)
	}
}

func TestNewPerplexityProvider_MissingKey(t *testing.T) {
	_, err := NewPerplexityProvider(&config.LLMConfig{})
	if err == nil {
		t.Fatal("Expected error for missing API key")
	}

	var cfgErr *models.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Errorf("Expected ConfigurationError, got %v", err)
	}
}

func TestNewProvider_Factory(t *testing.T) {
	p, err := NewProvider(&config.LLMConfig{Provider: "openai", APIKey: "k"})
	if err != nil {
		t.Fatalf("openai factory failed: %v", err)
	}
	if p.Name() != "openai" || p.IntegratedSearch() {
		t.Errorf("Unexpected provider: %s", p.Name())
	}

	p, err = NewProvider(&config.LLMConfig{Provider: "perplexity", PerplexityKey: "k"})
	if err != nil {
		t.Fatalf("perplexity factory failed: %v", err)
	}
	if p.Name() != "perplexity" || !p.IntegratedSearch() {
		t.Errorf("Unexpected provider: %s", p.Name())
	}

	if _, err := NewProvider(&config.LLMConfig{Provider: "psychic"}); err == nil {
		t.Error("Expected error for unknown provider")
	}
}
