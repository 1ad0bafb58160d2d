// Package search provides evidence gathering for the verification pipeline.
package search

import (
	"context"
	"fmt"

	"github.com/predictcheck/hindsight/internal/llm"
	"github.com/predictcheck/hindsight/internal/models"
	"github.com/rs/zerolog/log"
)

// Gatherer produces evidence snippets for one claim: it first optimizes the
// claim into a retrieval query, then runs the search and keeps the top
// results. A failed search is reported as an error so callers can tell
// "no results" apart from "request failed".
type Gatherer struct {
	optimizer   *QueryOptimizer
	client      Client
	maxSnippets int
}

// NewGatherer creates a new evidence gatherer.
func NewGatherer(provider llm.Provider, client Client, maxSnippets int) *Gatherer {
	if maxSnippets < 1 {
		maxSnippets = 3
	}
	return &Gatherer{
		optimizer:   NewQueryOptimizer(provider),
		client:      client,
		maxSnippets: maxSnippets,
	}
}

// Gather returns evidence snippets for the claim, possibly none.
func (g *Gatherer) Gather(ctx context.Context, claim models.Claim) ([]models.Snippet, error) {
	if claim.Text == "" {
		return nil, fmt.Errorf("claim text is empty")
	}

	query, err := g.optimizer.Optimize(ctx, claim.Text)
	if err != nil {
		// Fall back to searching the raw claim text.
		log.Warn().Err(err).Str("claim", claim.Text).Msg("Query optimization failed, searching claim verbatim")
		query = claim.Text
	}

	log.Debug().Str("claim", claim.Text).Str("query", query).Str("source", g.client.Name()).Msg("Gathering evidence")

	snippets, err := g.client.Search(ctx, query, g.maxSnippets)
	if err != nil {
		return nil, err
	}

	log.Debug().Int("snippets", len(snippets)).Msg("Evidence gathered")
	return snippets, nil
}
