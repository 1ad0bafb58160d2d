package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/predictcheck/hindsight/internal/config"
	"github.com/predictcheck/hindsight/internal/llm"
	"github.com/predictcheck/hindsight/internal/models"
	"github.com/predictcheck/hindsight/internal/search"
)

// stubProvider implements llm.Provider for tests.
type stubProvider struct {
	respond func(system, user string) (string, error)
	calls   atomic.Int64
}

func (p *stubProvider) Complete(ctx context.Context, prompt string, opts llm.CompletionOptions) (string, error) {
	return p.CompleteWithSystem(ctx, "", prompt, opts)
}

func (p *stubProvider) CompleteWithSystem(ctx context.Context, system, user string, opts llm.CompletionOptions) (string, error) {
	p.calls.Add(1)
	return p.respond(system, user)
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) IntegratedSearch() bool { return false }

// stubSearchClient implements search.Client for tests.
type stubSearchClient struct {
	search func(query string, max int) ([]models.Snippet, error)
}

func (c *stubSearchClient) Search(ctx context.Context, query string, max int) ([]models.Snippet, error) {
	return c.search(query, max)
}

func (c *stubSearchClient) Name() string { return "stub-search" }

func testVerifyConfig() *config.VerifyConfig {
	return &config.VerifyConfig{
		Mode:              models.ModeEvidence,
		MaxSnippets:       3,
		Concurrency:       1,
		MaxRetries:        0,
		RequestsPerSecond: 10000,
	}
}

func claimList(texts ...string) []models.Claim {
	claims := make([]models.Claim, len(texts))
	for i, text := range texts {
		claims[i] = models.Claim{Text: text, Index: i}
	}
	return claims
}

func TestBatchVerifier_EmptyEvidenceShortCircuit(t *testing.T) {
	optimizer := &stubProvider{respond: func(system, user string) (string, error) {
		return "optimized query", nil
	}}
	classifierProvider := &stubProvider{respond: func(system, user string) (string, error) {
		t.Error("classifier must not be invoked when no evidence was found")
		return "", nil
	}}
	client := &stubSearchClient{search: func(query string, max int) ([]models.Snippet, error) {
		return nil, nil
	}}

	gatherer := search.NewGatherer(optimizer, client, 3)
	verifier := NewBatchVerifier(NewClassifier(classifierProvider, 0), gatherer, testVerifyConfig())

	report, warnings, err := verifier.VerifyAll(context.Background(), claimList("Team X will win the cup."))
	if err != nil {
		t.Fatalf("VerifyAll failed: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("Expected no warnings, got %v", warnings)
	}

	v, ok := report.Get("Team X will win the cup.")
	if !ok {
		t.Fatal("Claim missing from report")
	}
	if v.Actual != models.ActualNoResults {
		t.Errorf("Expected %q, got %q", models.ActualNoResults, v.Actual)
	}
	if v.Rating != models.RatingUnclear {
		t.Errorf("Expected UNCLEAR, got %q", v.Rating)
	}
}

func TestBatchVerifier_FailureIsolation(t *testing.T) {
	provider := &stubProvider{respond: func(system, user string) (string, error) {
		if strings.Contains(user, "claim two") {
			return "", &models.UpstreamServiceError{Service: "stub", StatusCode: 500, Body: "boom"}
		}
		return "Actual Result: It happened.\nRating: TRUE", nil
	}}

	// Integrated mode: no gatherer, claims go straight to the classifier.
	verifier := NewBatchVerifier(NewClassifier(provider, 0), nil, testVerifyConfig())

	claims := claimList("claim one", "claim two", "claim three")
	report, warnings, err := verifier.VerifyAll(context.Background(), claims)
	if err != nil {
		t.Fatalf("VerifyAll failed: %v", err)
	}

	if report.Len() != 3 {
		t.Fatalf("Expected 3 entries, got %d", report.Len())
	}

	order := report.Claims()
	for i, claim := range claims {
		if order[i] != claim.Text {
			t.Errorf("Position %d: expected %q, got %q", i, claim.Text, order[i])
		}
	}

	v2, _ := report.Get("claim two")
	if v2.Rating != models.RatingUnclear {
		t.Errorf("Failed claim should be UNCLEAR, got %q", v2.Rating)
	}
	if !strings.Contains(v2.Actual, "Verification failed") {
		t.Errorf("Failed claim should describe the failure, got %q", v2.Actual)
	}

	for _, claim := range []string{"claim one", "claim three"} {
		v, _ := report.Get(claim)
		if v.Rating != models.RatingTrue {
			t.Errorf("%s: expected TRUE, got %q", claim, v.Rating)
		}
	}

	if len(warnings) != 1 {
		t.Errorf("Expected 1 warning, got %d", len(warnings))
	}
}

func TestBatchVerifier_DuplicateClaimLastWriteWins(t *testing.T) {
	var calls atomic.Int64
	provider := &stubProvider{respond: func(system, user string) (string, error) {
		n := calls.Add(1)
		return fmt.Sprintf("Actual Result: Response %d.\nRating: TRUE", n), nil
	}}

	verifier := NewBatchVerifier(NewClassifier(provider, 0), nil, testVerifyConfig())

	claims := claimList("repeated claim", "other claim", "repeated claim")
	report, _, err := verifier.VerifyAll(context.Background(), claims)
	if err != nil {
		t.Fatalf("VerifyAll failed: %v", err)
	}

	if report.Len() != 2 {
		t.Fatalf("Expected duplicates to collapse to 2 entries, got %d", report.Len())
	}

	order := report.Claims()
	if order[0] != "repeated claim" || order[1] != "other claim" {
		t.Errorf("Unexpected order: %v", order)
	}

	v, _ := report.Get("repeated claim")
	if v.Actual != "Response 3." {
		t.Errorf("Expected verdict from last occurrence, got %q", v.Actual)
	}
}

func TestBatchVerifier_StrictModeAborts(t *testing.T) {
	provider := &stubProvider{respond: func(system, user string) (string, error) {
		return "", &models.UpstreamServiceError{Service: "stub", Err: errors.New("down")}
	}}

	cfg := testVerifyConfig()
	cfg.Strict = true
	verifier := NewBatchVerifier(NewClassifier(provider, 0), nil, cfg)

	_, _, err := verifier.VerifyAll(context.Background(), claimList("a", "b"))
	if err == nil {
		t.Fatal("Expected strict mode to abort on first failure")
	}

	var upstream *models.UpstreamServiceError
	if !errors.As(err, &upstream) {
		t.Errorf("Expected UpstreamServiceError, got %v", err)
	}
}

func TestBatchVerifier_ConcurrentOrderDeterministic(t *testing.T) {
	provider := &stubProvider{respond: func(system, user string) (string, error) {
		return "Actual Result: Done.\nRating: NOT YET", nil
	}}

	cfg := testVerifyConfig()
	cfg.Concurrency = 4
	verifier := NewBatchVerifier(NewClassifier(provider, 0), nil, cfg)

	texts := []string{"c1", "c2", "c3", "c4", "c5", "c6", "c7", "c8"}
	report, _, err := verifier.VerifyAll(context.Background(), claimList(texts...))
	if err != nil {
		t.Fatalf("VerifyAll failed: %v", err)
	}

	order := report.Claims()
	if len(order) != len(texts) {
		t.Fatalf("Expected %d entries, got %d", len(texts), len(order))
	}
	for i, text := range texts {
		if order[i] != text {
			t.Errorf("Position %d: expected %q, got %q", i, text, order[i])
		}
	}
}

func TestBatchVerifier_EvidenceReachesClassifier(t *testing.T) {
	optimizer := &stubProvider{respond: func(system, user string) (string, error) {
		return "who won the cup", nil
	}}
	client := &stubSearchClient{search: func(query string, max int) ([]models.Snippet, error) {
		if query != "who won the cup" {
			t.Errorf("Expected optimized query, got %q", query)
		}
		return []models.Snippet{{Text: "Team X won the final 2-0."}}, nil
	}}

	var sawEvidence bool
	classifierProvider := &stubProvider{respond: func(system, user string) (string, error) {
		if strings.Contains(user, "Team X won the final 2-0.") {
			sawEvidence = true
		}
		return "Actual Result: Team X won the final 2-0.\nRating: TRUE", nil
	}}

	gatherer := search.NewGatherer(optimizer, client, 3)
	verifier := NewBatchVerifier(NewClassifier(classifierProvider, 0), gatherer, testVerifyConfig())

	report, _, err := verifier.VerifyAll(context.Background(), claimList("Team X will win the cup."))
	if err != nil {
		t.Fatalf("VerifyAll failed: %v", err)
	}

	if !sawEvidence {
		t.Error("Classifier prompt did not contain the gathered snippet")
	}

	v, _ := report.Get("Team X will win the cup.")
	if v.Rating != models.RatingTrue {
		t.Errorf("Expected TRUE, got %q", v.Rating)
	}
}

func TestBatchVerifier_EmptyInput(t *testing.T) {
	provider := &stubProvider{respond: func(system, user string) (string, error) {
		t.Error("No calls expected for empty input")
		return "", nil
	}}
	verifier := NewBatchVerifier(NewClassifier(provider, 0), nil, testVerifyConfig())

	report, warnings, err := verifier.VerifyAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("VerifyAll failed: %v", err)
	}
	if report.Len() != 0 || len(warnings) != 0 {
		t.Errorf("Expected empty report, got %d entries, %d warnings", report.Len(), len(warnings))
	}
}
