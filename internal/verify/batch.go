package verify

import (
	"context"
	"fmt"
	"sync"

	"github.com/predictcheck/hindsight/internal/config"
	"github.com/predictcheck/hindsight/internal/models"
	"github.com/predictcheck/hindsight/internal/search"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// BatchVerifier verifies an ordered list of claims one verdict at a time.
//
// One claim's failure never corrupts the rest of the batch: upstream errors
// are downgraded to an UNCLEAR verdict describing the failure, and every
// submitted claim appears in the final report exactly once. Strict mode
// instead aborts the batch on the first failure.
type BatchVerifier struct {
	classifier  *Classifier
	gatherer    *search.Gatherer // nil in integrated mode
	limiter     *rate.Limiter
	concurrency int
	strict      bool
}

// NewBatchVerifier creates a batch verifier. gatherer may be nil, in which
// case claims go straight to the classifier with the integrated-retrieval
// prompt.
func NewBatchVerifier(classifier *Classifier, gatherer *search.Gatherer, cfg *config.VerifyConfig) *BatchVerifier {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}

	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 2
	}

	return &BatchVerifier{
		classifier:  classifier,
		gatherer:    gatherer,
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		concurrency: concurrency,
		strict:      cfg.Strict,
	}
}

// VerifyAll processes claims in input order and returns the ordered report.
// With concurrency > 1, claims are verified by a bounded worker set and the
// report is still assembled in input order afterwards, so duplicate claim
// text deterministically keeps the verdict of its last occurrence.
func (b *BatchVerifier) VerifyAll(ctx context.Context, claims []models.Claim) (*models.Report, []models.Warning, error) {
	report := models.NewReport()
	if len(claims) == 0 {
		return report, nil, nil
	}

	verdicts := make([]models.Verdict, len(claims))
	warnings := make([]models.Warning, 0)

	if b.concurrency == 1 {
		for i, claim := range claims {
			verdict, warning, err := b.verifyOne(ctx, claim)
			if err != nil {
				return nil, warnings, err
			}
			verdicts[i] = verdict
			if warning != nil {
				warnings = append(warnings, *warning)
			}
		}
	} else {
		var mu sync.Mutex
		var wg sync.WaitGroup
		var firstErr error

		sem := make(chan struct{}, b.concurrency)
		for i := range claims {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				mu.Lock()
				aborted := firstErr != nil
				mu.Unlock()
				if aborted {
					return
				}

				verdict, warning, err := b.verifyOne(ctx, claims[idx])

				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}
					return
				}
				verdicts[idx] = verdict
				if warning != nil {
					warnings = append(warnings, *warning)
				}
			}(i)
		}
		wg.Wait()

		if firstErr != nil {
			return nil, warnings, firstErr
		}
	}

	// Assemble in input order: a repeated claim overwrites its earlier
	// verdict, keeping its original position.
	for i, claim := range claims {
		report.Set(claim.Text, verdicts[i])
	}

	return report, warnings, nil
}

// verifyOne produces the verdict for a single claim. A non-nil error is only
// returned in strict mode; otherwise failures become UNCLEAR verdicts plus a
// warning.
func (b *BatchVerifier) verifyOne(ctx context.Context, claim models.Claim) (models.Verdict, *models.Warning, error) {
	var snippets []models.Snippet

	if b.gatherer != nil {
		if err := b.limiter.Wait(ctx); err != nil {
			return models.Verdict{}, nil, err
		}

		gathered, err := b.gatherer.Gather(ctx, claim)
		if err != nil {
			if b.strict {
				return models.Verdict{}, nil, fmt.Errorf("evidence gathering failed for %q: %w", claim.Text, err)
			}
			log.Error().Err(err).Str("claim", claim.Text).Msg("Evidence gathering failed")
			return models.Verdict{
					Actual: fmt.Sprintf("Evidence gathering failed: %v", err),
					Rating: models.RatingUnclear,
				}, &models.Warning{
					Source:  "search",
					Message: fmt.Sprintf("claim %d: %v", claim.Index+1, err),
				}, nil
		}

		// No results at all: record the sentinel verdict without spending
		// a classifier call.
		if len(gathered) == 0 {
			log.Info().Str("claim", claim.Text).Msg("No search results, skipping classification")
			return models.Verdict{
				Actual: models.ActualNoResults,
				Rating: models.RatingUnclear,
			}, nil, nil
		}
		snippets = gathered
	}

	if err := b.limiter.Wait(ctx); err != nil {
		return models.Verdict{}, nil, err
	}

	response, err := b.classifier.Classify(ctx, claim, snippets)
	if err != nil {
		if b.strict {
			return models.Verdict{}, nil, fmt.Errorf("classification failed for %q: %w", claim.Text, err)
		}
		log.Error().Err(err).Str("claim", claim.Text).Msg("Classification failed")
		return models.Verdict{
				Actual: fmt.Sprintf("Verification failed: %v", err),
				Rating: models.RatingUnclear,
			}, &models.Warning{
				Source:  "classifier",
				Message: fmt.Sprintf("claim %d: %v", claim.Index+1, err),
			}, nil
	}

	return ParseVerdict(response), nil, nil
}
