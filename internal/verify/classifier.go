// Package verify implements the prediction verification pipeline: claim
// classification, verdict parsing, and batch processing.
package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	retry "github.com/avast/retry-go/v4"
	"github.com/predictcheck/hindsight/internal/llm"
	"github.com/predictcheck/hindsight/internal/models"
)

const classifierSystemEvidence = "You are an AI that verifies predictions using real-time Google search results."

const classifierSystemIntegrated = "You are a helpful AI that verifies predictions using current web knowledge."

// classifierPromptEvidence instructs the model to answer in exactly the
// two-line shape the verdict parser depends on: a summary line prefixed
// "Actual Result:" first, a "Rating:" line last.
const classifierPromptEvidence = `You are verifying whether a prediction has come true using real-time Google search results.

**Prediction:** "%s"

**Search Results:**
%s

**Your Task:**
1. Summarize what actually happened based on the search results. Include details that help confirm or refute the prediction.
2. Use the evidence to classify the prediction as one of the following:

   - TRUE: The event clearly occurred as predicted.
   - FALSE: The event clearly did NOT happen or the outcome was the opposite of predicted.
   - NOT YET: The event is scheduled or expected in the future, and has not happened yet.
   - UNCLEAR: The results are inconclusive, incomplete, or only partially address the prediction.

If the search results mention a future date or say the event is upcoming, classify as NOT YET.

If there is no useful information at all, say "No clear result found" and classify as UNCLEAR.

**Response Format Example:**
Actual Result: "Portugal has not yet played the Euro 2024 final. The tournament ends July 14, 2024."
Rating: NOT YET`

const classifierPromptIntegrated = `I am verifying a prediction. Based on the most current available web information, please classify this prediction.

Prediction: "%s"

Classify the prediction as one of the following:
- TRUE → It happened as predicted.
- FALSE → It did not happen.
- NOT YET → The event is in the future and hasn't occurred yet.
- UNCLEAR → Not enough evidence, or conflicting sources.

Respond with a brief summary of the current status, then the classification like this:

Actual Result: [summary]
Rating: TRUE/FALSE/NOT YET/UNCLEAR`

// Classifier asks an LLM whether a prediction came true. Transient upstream
// failures are retried a bounded number of times with backoff before the
// error is surfaced to the batch verifier.
type Classifier struct {
	provider   llm.Provider
	maxRetries uint
}

// NewClassifier creates a new claim classifier.
func NewClassifier(provider llm.Provider, maxRetries uint) *Classifier {
	return &Classifier{provider: provider, maxRetries: maxRetries}
}

// Classify returns the raw classifier response for one claim. When snippets
// is nil the integrated-retrieval prompt is used and the provider is expected
// to search on its own; otherwise the evidence snippets are embedded in the
// prompt.
func (c *Classifier) Classify(ctx context.Context, claim models.Claim, snippets []models.Snippet) (string, error) {
	var system, prompt string
	if snippets == nil {
		system = classifierSystemIntegrated
		prompt = fmt.Sprintf(classifierPromptIntegrated, claim.Text)
	} else {
		system = classifierSystemEvidence
		prompt = fmt.Sprintf(classifierPromptEvidence, claim.Text, formatSnippets(snippets))
	}

	opts := llm.DefaultCompletionOptions()
	opts.MaxTokens = 300

	response, err := retry.DoWithData(
		func() (string, error) {
			return c.provider.CompleteWithSystem(ctx, system, prompt, opts)
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetries+1),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var upstream *models.UpstreamServiceError
			return errors.As(err, &upstream)
		}),
	)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(response), nil
}

func formatSnippets(snippets []models.Snippet) string {
	var sb strings.Builder
	for i, s := range snippets {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, s.Text)
	}
	return strings.TrimRight(sb.String(), "\n")
}
