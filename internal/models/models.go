// Package models defines the core data structures used throughout the application.
package models

import (
	"time"
)

// Rating is the classification assigned to a verified prediction.
type Rating string

const (
	// RatingTrue means the event occurred as predicted.
	RatingTrue Rating = "TRUE"
	// RatingFalse means the event did not occur or the opposite happened.
	RatingFalse Rating = "FALSE"
	// RatingNotYet means the event is scheduled or expected in the future.
	RatingNotYet Rating = "NOT YET"
	// RatingUnclear means the evidence is insufficient, conflicting, or the
	// classifier response could not be parsed.
	RatingUnclear Rating = "UNCLEAR"
)

// Sentinel text used when no usable evidence or answer exists.
const (
	ActualNotFound  = "Not found"
	ActualNoResults = "No relevant search results found."
)

// NormalizeRating clamps raw classifier output to the closed rating set.
// Anything outside the four known values maps to UNCLEAR; the second return
// value carries the original text for diagnostics when clamping occurred.
func NormalizeRating(raw string) (Rating, string) {
	switch Rating(raw) {
	case RatingTrue, RatingFalse, RatingNotYet, RatingUnclear:
		return Rating(raw), ""
	}
	return RatingUnclear, raw
}

// Claim represents a single extracted prediction to be fact-checked.
type Claim struct {
	Text  string `json:"text"`
	Index int    `json:"index"` // position in extraction order, 0-based
}

// Snippet is a short piece of evidence text gathered for one claim. Snippets
// live only for the duration of a single verification call.
type Snippet struct {
	Text   string `json:"text"`
	Source string `json:"source,omitempty"`
	Link   string `json:"link,omitempty"`
}

// Verdict is the structured outcome of verifying one claim.
type Verdict struct {
	Actual    string `json:"actual"`
	Rating    Rating `json:"rating"`
	RawRating string `json:"raw_rating,omitempty"` // original text when clamped to UNCLEAR
}

// VerifyMode selects how evidence reaches the classifier.
type VerifyMode string

const (
	// ModeEvidence gathers search snippets first, then classifies against them.
	ModeEvidence VerifyMode = "evidence"
	// ModeIntegrated uses a classifier with built-in retrieval and no
	// separate evidence-gathering step.
	ModeIntegrated VerifyMode = "integrated"
)

// Run represents one persisted pipeline execution.
type Run struct {
	ID             string     `json:"id"`
	Source         string     `json:"source"` // URL or file path
	Title          string     `json:"title,omitempty"`
	TranscriptHash string     `json:"transcript_hash"`
	Mode           VerifyMode `json:"mode"`
	Narrative      string     `json:"narrative,omitempty"`
	TotalClaims    int        `json:"total_claims"`
	TrueClaims     int        `json:"true_claims"`
	FalseClaims    int        `json:"false_claims"`
	NotYetClaims   int        `json:"not_yet_claims"`
	UnclearClaims  int        `json:"unclear_claims"`
	ProcessingMs   int64      `json:"processing_time_ms"`
	CreatedAt      time.Time  `json:"created_at"`
}

// RunResponse bundles a run with its ordered per-claim verdicts.
type RunResponse struct {
	Run      Run       `json:"run"`
	Entries  []Entry   `json:"entries"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Entry is one claim/verdict pair in extraction order.
type Entry struct {
	Claim   string  `json:"claim"`
	Verdict Verdict `json:"verdict"`
}

// Warning represents a non-fatal issue during processing.
type Warning struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// Transcript is a cached speech-to-text result keyed by source.
type Transcript struct {
	SourceHash string    `json:"source_hash"`
	Source     string    `json:"source"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"created_at"`
}

// VerifyRequest is the request body for the transcript verification endpoint.
type VerifyRequest struct {
	Transcript string `json:"transcript"`
	Title      string `json:"title,omitempty"`
	Intro      string `json:"intro,omitempty"`
}
