// Package database provides the data access layer.
package database

import (
	"context"

	"github.com/predictcheck/hindsight/internal/models"
)

// Store defines the interface for data persistence.
type Store interface {
	// Pipeline runs
	SaveRun(ctx context.Context, run *models.Run, entries []models.Entry) error
	GetRun(ctx context.Context, id string) (*models.Run, error)
	GetRunEntries(ctx context.Context, runID string) ([]models.Entry, error)
	ListRuns(ctx context.Context, limit, offset int) ([]*models.Run, error)

	// Cached transcripts, keyed by source hash
	SaveTranscript(ctx context.Context, t *models.Transcript) error
	GetTranscript(ctx context.Context, sourceHash string) (*models.Transcript, error)

	// Lifecycle
	Close() error
	Migrate() error
}
