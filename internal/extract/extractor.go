// Package extract pulls candidate predictions out of a transcript.
package extract

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/predictcheck/hindsight/internal/llm"
	"github.com/predictcheck/hindsight/internal/models"
	"github.com/rs/zerolog/log"
)

const extractorSystem = "You are an AI assistant that analyzes transcripts."

const extractorPrompt = `You are analyzing a conversation transcript.

%s

Your goal is to extract **clear, concrete predictions about future OUTCOMES**,
avoiding scheduled events, facts, or uncertain statements.

**What counts as a PREDICTION?**
- Statements that predict **WHO WILL WIN, WHAT WILL HAPPEN, or WHAT THE OUTCOME WILL BE**
- Statements about **uncertain future results** that could go either way
- Example phrases: "will win," "will lose," "will happen," "is expected to succeed," "is likely to fail," "will reach," "will achieve"

**What to IGNORE (these are NOT predictions):**
- **Scheduled events** (e.g., "Fenerbahce is going to play a game next Tuesday" - this is a fact)
- **Past events** or historical information
- **General opinions** without specific outcomes
- **Vague statements** (e.g., "it's not over," "maybe," "we will see")
- **Aspirational goals** without specific predictions

**Key Distinction:**
- "Fenerbahce is going to play a game next Tuesday" = SCHEDULED EVENT (fact)
- "Fenerbahce will win the game next Tuesday" = PREDICTION (outcome)
- "The meeting is scheduled for 3 PM" = SCHEDULED EVENT (fact)
- "The meeting will be productive" = PREDICTION (outcome)
- "The election is on November 5th" = SCHEDULED EVENT (fact)
- "Candidate X will win the election" = PREDICTION (outcome)

**Transcript:**
%s

**Task:**
- Extract **up to 10 of the most important predictions about OUTCOMES** in a numbered list.
- Focus on predictions about **WHO will win, WHAT will happen, or WHAT the result will be**.
- Ignore scheduled events, facts, or general statements.
- If no predictions are found, respond with: "No clear predictions about outcomes were made in this conversation."

**Response Format Example:**
1. Fenerbahce will win the Champions League game next Tuesday.
2. Inflation will decrease by 2%% next quarter.
3. AI adoption in healthcare will grow significantly in the next five years.`

var numberedItem = regexp.MustCompile(`(?m)^\s*\d+\.\s*(.+)$`)

// Extractor turns a transcript into an ordered list of prediction claims.
type Extractor struct {
	provider llm.Provider
}

// NewExtractor creates a new prediction extractor.
func NewExtractor(provider llm.Provider) *Extractor {
	return &Extractor{provider: provider}
}

// Extract returns the predictions found in the transcript, in the order the
// model listed them. An empty slice with a nil error means the transcript
// contained no clear predictions.
func (e *Extractor) Extract(ctx context.Context, transcript, intro string) ([]models.Claim, error) {
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("transcript is empty")
	}

	opts := llm.DefaultCompletionOptions()
	opts.MaxTokens = 400

	prompt := fmt.Sprintf(extractorPrompt, intro, transcript)
	response, err := e.provider.CompleteWithSystem(ctx, extractorSystem, prompt, opts)
	if err != nil {
		return nil, fmt.Errorf("prediction extraction failed: %w", err)
	}

	claims := ParseNumberedList(response)
	if len(claims) == 0 {
		log.Info().Msg("No clear predictions found in transcript")
	}
	return claims, nil
}

// ParseNumberedList extracts the items of a numbered list from model output.
// Lines not matching "N. text" are ignored, which also filters out the
// "no predictions found" sentence.
func ParseNumberedList(response string) []models.Claim {
	matches := numberedItem.FindAllStringSubmatch(response, -1)
	claims := make([]models.Claim, 0, len(matches))
	for _, m := range matches {
		text := strings.TrimSpace(m[1])
		if text == "" {
			continue
		}
		claims = append(claims, models.Claim{Text: text, Index: len(claims)})
	}
	return claims
}
