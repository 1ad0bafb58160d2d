// Package database provides the SQLite implementation of the Store interface.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/predictcheck/hindsight/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// Migrate runs database migrations.
func (s *SQLiteStore) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			title TEXT,
			transcript_hash TEXT NOT NULL,
			mode TEXT NOT NULL,
			narrative TEXT,
			total_claims INTEGER NOT NULL,
			true_claims INTEGER NOT NULL,
			false_claims INTEGER NOT NULL,
			not_yet_claims INTEGER NOT NULL,
			unclear_claims INTEGER NOT NULL,
			processing_time_ms INTEGER NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at)`,
		`CREATE TABLE IF NOT EXISTS run_entries (
			run_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			claim TEXT NOT NULL,
			actual TEXT NOT NULL,
			rating TEXT NOT NULL,
			raw_rating TEXT,
			PRIMARY KEY (run_id, position),
			FOREIGN KEY (run_id) REFERENCES runs(id)
		)`,
		`CREATE TABLE IF NOT EXISTS transcripts (
			source_hash TEXT PRIMARY KEY,
			source TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun stores a run and its ordered verdict entries in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run *models.Run, entries []models.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, source, title, transcript_hash, mode, narrative, total_claims,
			true_claims, false_claims, not_yet_claims, unclear_claims, processing_time_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Source, run.Title, run.TranscriptHash, string(run.Mode), run.Narrative,
		run.TotalClaims, run.TrueClaims, run.FalseClaims, run.NotYetClaims, run.UnclearClaims,
		run.ProcessingMs, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	for i, e := range entries {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO run_entries (run_id, position, claim, actual, rating, raw_rating)
			VALUES (?, ?, ?, ?, ?, ?)`,
			run.ID, i, e.Claim, e.Verdict.Actual, string(e.Verdict.Rating), e.Verdict.RawRating)
		if err != nil {
			return fmt.Errorf("failed to save run entry: %w", err)
		}
	}

	return tx.Commit()
}

// GetRun retrieves a run by ID. Returns nil without error when not found.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*models.Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source, title, transcript_hash, mode, narrative, total_claims,
			true_claims, false_claims, not_yet_claims, unclear_claims, processing_time_ms, created_at
		FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// GetRunEntries returns a run's claim/verdict pairs in stored order.
func (s *SQLiteStore) GetRunEntries(ctx context.Context, runID string) ([]models.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT claim, actual, rating, raw_rating
		FROM run_entries WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		var rating string
		if err := rows.Scan(&e.Claim, &e.Verdict.Actual, &rating, &e.Verdict.RawRating); err != nil {
			return nil, fmt.Errorf("failed to scan run entry: %w", err)
		}
		e.Verdict.Rating = models.Rating(rating)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListRuns returns runs ordered newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit, offset int) ([]*models.Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, source, title, transcript_hash, mode, narrative, total_claims,
			true_claims, false_claims, not_yet_claims, unclear_claims, processing_time_ms, created_at
		FROM runs ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// SaveTranscript caches a transcript, replacing any previous entry for the
// same source.
func (s *SQLiteStore) SaveTranscript(ctx context.Context, t *models.Transcript) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO transcripts (source_hash, source, text, created_at)
		VALUES (?, ?, ?, ?)`,
		t.SourceHash, t.Source, t.Text, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save transcript: %w", err)
	}
	return nil
}

// GetTranscript retrieves a cached transcript. Returns nil without error when
// not found.
func (s *SQLiteStore) GetTranscript(ctx context.Context, sourceHash string) (*models.Transcript, error) {
	var t models.Transcript
	err := s.db.QueryRowContext(ctx, `
		SELECT source_hash, source, text, created_at
		FROM transcripts WHERE source_hash = ?`, sourceHash).
		Scan(&t.SourceHash, &t.Source, &t.Text, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transcript: %w", err)
	}
	return &t, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.Run, error) {
	var run models.Run
	var mode string
	err := row.Scan(&run.ID, &run.Source, &run.Title, &run.TranscriptHash, &mode, &run.Narrative,
		&run.TotalClaims, &run.TrueClaims, &run.FalseClaims, &run.NotYetClaims, &run.UnclearClaims,
		&run.ProcessingMs, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	run.Mode = models.VerifyMode(mode)
	return &run, nil
}
