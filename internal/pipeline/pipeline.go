// Package pipeline wires the full recap flow: download, transcribe, extract,
// verify, narrate, persist.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/predictcheck/hindsight/internal/config"
	"github.com/predictcheck/hindsight/internal/database"
	"github.com/predictcheck/hindsight/internal/download"
	"github.com/predictcheck/hindsight/internal/extract"
	"github.com/predictcheck/hindsight/internal/llm"
	"github.com/predictcheck/hindsight/internal/models"
	"github.com/predictcheck/hindsight/internal/narrative"
	"github.com/predictcheck/hindsight/internal/search"
	"github.com/predictcheck/hindsight/internal/transcribe"
	"github.com/predictcheck/hindsight/internal/verify"
	"github.com/rs/zerolog/log"
)

// Engine runs the prediction recap pipeline.
type Engine struct {
	cfg         *config.Config
	mode        models.VerifyMode
	extractor   *extract.Extractor
	verifier    *verify.BatchVerifier
	generator   *narrative.Generator
	transcriber transcribe.Transcriber
	downloader  download.Downloader
	store       database.Store
}

// NewEngine builds the engine from configuration. All credentials are
// resolved here, so a missing key fails before any claim is processed.
func NewEngine(cfg *config.Config, store database.Store) (*Engine, error) {
	// Extraction, query optimization, and narrative generation always use
	// the OpenAI provider; the verification step may use Perplexity instead.
	base, err := llm.NewOpenAIProvider(&cfg.LLM)
	if err != nil {
		return nil, err
	}

	var classifier *verify.Classifier
	var gatherer *search.Gatherer

	switch cfg.Verify.Mode {
	case models.ModeIntegrated:
		pplx, err := llm.NewPerplexityProvider(&cfg.LLM)
		if err != nil {
			return nil, err
		}
		classifier = verify.NewClassifier(pplx, cfg.Verify.MaxRetries)

	case models.ModeEvidence:
		var client search.Client
		switch cfg.Search.Provider {
		case "serpapi":
			client, err = search.NewSerpAPIClient(&cfg.Search.SerpAPI)
			if err != nil {
				return nil, err
			}
		case "duckduckgo":
			client = search.NewDuckDuckGoClient()
		default:
			return nil, fmt.Errorf("unsupported search provider: %s", cfg.Search.Provider)
		}
		classifier = verify.NewClassifier(base, cfg.Verify.MaxRetries)
		gatherer = search.NewGatherer(base, client, cfg.Verify.MaxSnippets)

	default:
		return nil, fmt.Errorf("unsupported verify mode: %s", cfg.Verify.Mode)
	}

	transcriber, err := transcribe.NewWhisperTranscriber(cfg.LLM.APIKey, &cfg.Transcribe)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:         cfg,
		mode:        cfg.Verify.Mode,
		extractor:   extract.NewExtractor(base),
		verifier:    verify.NewBatchVerifier(classifier, gatherer, &cfg.Verify),
		generator:   narrative.NewGenerator(base),
		transcriber: transcriber,
		downloader:  download.NewYTDLPDownloader(&cfg.Download),
		store:       store,
	}, nil
}

// RecapURL runs the full pipeline for a video URL. Transcripts are cached by
// source, so re-running the same URL skips the download and Whisper calls.
func (e *Engine) RecapURL(ctx context.Context, url, intro string) (*models.RunResponse, error) {
	hash := SourceHash(url)

	if cached, err := e.store.GetTranscript(ctx, hash); err != nil {
		log.Error().Err(err).Msg("Failed to check transcript cache")
	} else if cached != nil {
		log.Info().Str("source", url).Msg("Using cached transcript")
		return e.RecapTranscript(ctx, url, "", intro, cached.Text)
	}

	audioPath, title, err := e.downloader.Download(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("audio download failed: %w", err)
	}

	transcript, err := e.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	if err := e.store.SaveTranscript(ctx, &models.Transcript{
		SourceHash: hash,
		Source:     url,
		Text:       transcript,
		CreatedAt:  time.Now(),
	}); err != nil {
		log.Error().Err(err).Msg("Failed to cache transcript")
	}

	return e.RecapTranscript(ctx, url, title, intro, transcript)
}

// RecapTranscript runs extraction, verification, and narration over an
// existing transcript and persists the resulting run.
func (e *Engine) RecapTranscript(ctx context.Context, source, title, intro, transcript string) (*models.RunResponse, error) {
	start := time.Now()

	log.Info().Str("source", source).Msg("Extracting predictions")
	claims, err := e.extractor.Extract(ctx, transcript, intro)
	if err != nil {
		return nil, err
	}
	log.Info().Int("count", len(claims)).Msg("Predictions extracted")

	log.Info().Str("mode", string(e.mode)).Msg("Verifying predictions")
	report, warnings, err := e.verifier.VerifyAll(ctx, claims)
	if err != nil {
		return nil, err
	}

	var prose string
	if report.Len() > 0 {
		prose, err = e.generator.Generate(ctx, title, intro, report)
		if err != nil {
			// The report is still useful without the recap; degrade with
			// a warning instead of dropping the whole run.
			log.Error().Err(err).Msg("Narrative generation failed")
			warnings = append(warnings, models.Warning{Source: "narrative", Message: err.Error()})
		}
	}

	trueN, falseN, notYet, unclear := report.Counts()
	run := models.Run{
		ID:             uuid.New().String(),
		Source:         source,
		Title:          title,
		TranscriptHash: SourceHash(source),
		Mode:           e.mode,
		Narrative:      prose,
		TotalClaims:    report.Len(),
		TrueClaims:     trueN,
		FalseClaims:    falseN,
		NotYetClaims:   notYet,
		UnclearClaims:  unclear,
		ProcessingMs:   time.Since(start).Milliseconds(),
		CreatedAt:      time.Now(),
	}

	entries := report.Entries()
	if err := e.store.SaveRun(ctx, &run, entries); err != nil {
		log.Error().Err(err).Msg("Failed to persist run")
	}

	log.Info().
		Str("id", run.ID).
		Int("claims", run.TotalClaims).
		Int64("duration_ms", run.ProcessingMs).
		Msg("Recap complete")

	return &models.RunResponse{
		Run:      run,
		Entries:  entries,
		Warnings: warnings,
	}, nil
}

// SourceHash returns the cache key for a source URL or path.
func SourceHash(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}
