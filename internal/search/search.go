// Package search provides evidence retrieval for claim verification.
package search

import (
	"context"

	"github.com/predictcheck/hindsight/internal/models"
)

// Client defines the interface for retrieval providers.
type Client interface {
	// Search returns up to maxResults evidence snippets for the query.
	// An empty result with a nil error means the service answered but found
	// nothing; failures are always surfaced as errors, never as empty lists.
	Search(ctx context.Context, query string, maxResults int) ([]models.Snippet, error)

	// Name returns the source name.
	Name() string
}
