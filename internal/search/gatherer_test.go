package search

import (
	"context"
	"errors"
	"testing"

	"github.com/predictcheck/hindsight/internal/llm"
	"github.com/predictcheck/hindsight/internal/models"
)

type fakeProvider struct {
	respond func(system, user string) (string, error)
}

func (p *fakeProvider) Complete(ctx context.Context, prompt string, opts llm.CompletionOptions) (string, error) {
	return p.CompleteWithSystem(ctx, "", prompt, opts)
}

func (p *fakeProvider) CompleteWithSystem(ctx context.Context, system, user string, opts llm.CompletionOptions) (string, error) {
	return p.respond(system, user)
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) IntegratedSearch() bool { return false }

type fakeClient struct {
	search func(query string, max int) ([]models.Snippet, error)
}

func (c *fakeClient) Search(ctx context.Context, query string, max int) ([]models.Snippet, error) {
	return c.search(query, max)
}

func (c *fakeClient) Name() string { return "fake-search" }

func TestGatherer_UsesOptimizedQuery(t *testing.T) {
	provider := &fakeProvider{respond: func(system, user string) (string, error) {
		return "  did team x win the cup  ", nil
	}}
	client := &fakeClient{search: func(query string, max int) ([]models.Snippet, error) {
		if query != "did team x win the cup" {
			t.Errorf("Expected trimmed optimized query, got %q", query)
		}
		if max != 3 {
			t.Errorf("Expected max 3, got %d", max)
		}
		return []models.Snippet{{Text: "Team X won."}}, nil
	}}

	gatherer := NewGatherer(provider, client, 3)
	snippets, err := gatherer.Gather(context.Background(), models.Claim{Text: "Team X will win the cup."})
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(snippets) != 1 {
		t.Fatalf("Expected 1 snippet, got %d", len(snippets))
	}
}

func TestGatherer_FallsBackToVerbatimClaim(t *testing.T) {
	provider := &fakeProvider{respond: func(system, user string) (string, error) {
		return "", &models.UpstreamServiceError{Service: "fake", Err: errors.New("down")}
	}}
	client := &fakeClient{search: func(query string, max int) ([]models.Snippet, error) {
		if query != "Team X will win the cup." {
			t.Errorf("Expected verbatim claim as query, got %q", query)
		}
		return nil, nil
	}}

	gatherer := NewGatherer(provider, client, 3)
	if _, err := gatherer.Gather(context.Background(), models.Claim{Text: "Team X will win the cup."}); err != nil {
		t.Fatalf("Optimizer failure must not fail gathering: %v", err)
	}
}

func TestGatherer_PropagatesSearchFailure(t *testing.T) {
	provider := &fakeProvider{respond: func(system, user string) (string, error) {
		return "query", nil
	}}
	client := &fakeClient{search: func(query string, max int) ([]models.Snippet, error) {
		return nil, &models.UpstreamServiceError{Service: "fake-search", StatusCode: 500, Body: "err"}
	}}

	gatherer := NewGatherer(provider, client, 3)
	_, err := gatherer.Gather(context.Background(), models.Claim{Text: "anything"})
	if err == nil {
		t.Fatal("Search failure must surface as an error, not an empty list")
	}

	var upstream *models.UpstreamServiceError
	if !errors.As(err, &upstream) {
		t.Errorf("Expected UpstreamServiceError, got %v", err)
	}
}

func TestGatherer_RejectsEmptyClaim(t *testing.T) {
	provider := &fakeProvider{respond: func(system, user string) (string, error) {
		t.Error("No calls expected for empty claim")
		return "", nil
	}}
	client := &fakeClient{search: func(query string, max int) ([]models.Snippet, error) {
		t.Error("No search expected for empty claim")
		return nil, nil
	}}

	gatherer := NewGatherer(provider, client, 3)
	if _, err := gatherer.Gather(context.Background(), models.Claim{}); err == nil {
		t.Fatal("Expected error for empty claim text")
	}
}
