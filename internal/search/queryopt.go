// Package search provides claim-to-query optimization.
package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/predictcheck/hindsight/internal/llm"
)

const queryOptimizerSystem = "You are an AI that generates effective Google search queries."

const queryOptimizerPrompt = `You are an expert at transforming predictions into precise Google search queries to verify if the prediction came true.

Your goal is to generate a search query that will return clear, factual information about whether the prediction has already happened and what the result was.

**Prediction:** "%s"

**Instructions:**
- Reformulate the prediction into a fact-checking query.
- Focus on results, outcomes, or confirmations.
- If it's a sports prediction, ask for the final score or who won.
- If it's a political or business event, ask if the event occurred or what the outcome was.
- Use natural phrasing, but make sure it's concise and specific.

**Example Conversions:**
- Prediction: "Portugal is predicted to win Euro 2024"
  → Search Query: "Did Portugal win Euro 2024" OR "Portugal Euro 2024 final result"

- Prediction: "Bitcoin will reach $100,000 in 2024"
  → Search Query: "Bitcoin price March 2024" OR "Has Bitcoin reached $100,000 in 2024"

**Return only the optimized search query. No explanation needed.**`

// QueryOptimizer turns a raw prediction into a retrieval query tuned for
// fact-checking, using a short text-generation call.
type QueryOptimizer struct {
	provider llm.Provider
}

// NewQueryOptimizer creates a new query optimizer.
func NewQueryOptimizer(provider llm.Provider) *QueryOptimizer {
	return &QueryOptimizer{provider: provider}
}

// Optimize returns the optimized query for a claim. On failure the raw claim
// text is returned along with the error so callers can fall back to searching
// the claim verbatim.
func (o *QueryOptimizer) Optimize(ctx context.Context, claim string) (string, error) {
	opts := llm.DefaultCompletionOptions()
	opts.MaxTokens = 50

	prompt := fmt.Sprintf(queryOptimizerPrompt, claim)
	response, err := o.provider.CompleteWithSystem(ctx, queryOptimizerSystem, prompt, opts)
	if err != nil {
		return claim, fmt.Errorf("query optimization failed: %w", err)
	}

	query := strings.TrimSpace(response)
	if query == "" {
		return claim, nil
	}
	return query, nil
}
