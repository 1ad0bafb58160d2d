package narrative

import (
	"context"
	"strings"
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

func TestFormatReportBlock(t *testing.T) {
	report := models.NewReport()
	report.Set("Team X will win the cup.", models.Verdict{Actual: "They won 2-0.", Rating: models.RatingTrue})
	report.Set("Bitcoin will hit $100k.", models.Verdict{Actual: models.ActualNoResults, Rating: models.RatingUnclear})

	got := FormatReportBlock(report)
	want := "Prediction 1: Team X will win the cup.\n" +
		"    Actual Result: They won 2-0.\n" +
		"    Rating: TRUE\n" +
		"\n" +
		"Prediction 2: Bitcoin will hit $100k.\n" +
		"    Actual Result: No relevant search results found.\n" +
		"    Rating: UNCLEAR"

	if got != want {
		t.Errorf("Unexpected report block:\n%s\n\nwant:\n%s", got, want)
	}
}

func TestGenerator_Generate(t *testing.T) {
	report := models.NewReport()
	report.Set("Team X will win the cup.", models.Verdict{Actual: "They won.", Rating: models.RatingTrue})

	provider := &fakeProvider{respond: func(system, user string) (string, error) {
		if !strings.Contains(user, "Prediction 1: Team X will win the cup.") {
			t.Error("Report block missing from prompt")
		}
		if !strings.Contains(user, "2024 Predictions Special") {
			t.Error("Title missing from prompt")
		}
		return "  Intro: Welcome back...\n\nConclusion: One for one!  ", nil
	}}

	got, err := NewGenerator(provider).Generate(context.Background(), "2024 Predictions Special", "", report)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "Intro: Welcome back...\n\nConclusion: One for one!" {
		t.Errorf("Expected trimmed narrative, got %q", got)
	}
}
