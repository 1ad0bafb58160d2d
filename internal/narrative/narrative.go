// Package narrative turns a verification report into a podcast-style recap.
package narrative

import (
	"context"
	"fmt"
	"strings"

	"github.com/predictcheck/hindsight/internal/llm"
	"github.com/predictcheck/hindsight/internal/models"
	"github.com/rs/zerolog/log"
)

const narrativeSystem = "You are a podcast script writer that transforms prediction analysis into engaging narratives."

const narrativePrompt = `You are a podcast host summarizing a YouTube video that contains a number of predictions.
Your goal is to walk the audience through each prediction, what actually happened, and whether it came true,
all in a tone that is fun, conversational, and informative, but always respectful.

**Video Title**: %s
**Intro Context**: %s
**Predictions and Ratings**:
%s

**Format your response like this**:
Intro:
[Brief, engaging intro. Mention the video, speaker (if known), and what the audience is about to hear.]

Prediction 1:
[Explain the prediction, what happened, and whether it came true or not. Keep it natural, as if you're talking to a podcast audience.]

...

Conclusion:
[Wrap it all up. Give a quick summary of how many predictions were right or wrong, and end on a note of curiosity or reflection.]

**Style Guidelines**:
- Use natural language like you're hosting a podcast.
- You may say things like "Let's dive in," or "Here's how that turned out."
- Refer to the speaker by name/title/context if provided in the intro.
- Be brief but vivid. Aim for 60-90 seconds per prediction if read aloud.

Do not include markdown formatting or a numbered list. Just clearly mark the sections: Intro:, Prediction 1:, Prediction 2:, etc., Conclusion:`

// Generator produces the narrated recap from a finished report.
type Generator struct {
	provider llm.Provider
}

// NewGenerator creates a new narrative generator.
func NewGenerator(provider llm.Provider) *Generator {
	return &Generator{provider: provider}
}

// Generate returns the podcast-style recap prose for the report.
func (g *Generator) Generate(ctx context.Context, title, intro string, report *models.Report) (string, error) {
	log.Info().Str("title", title).Int("predictions", report.Len()).Msg("Generating narrative")

	opts := llm.DefaultCompletionOptions()
	opts.MaxTokens = 1000
	opts.Temperature = 0.7

	prompt := fmt.Sprintf(narrativePrompt, title, intro, FormatReportBlock(report))
	response, err := g.provider.CompleteWithSystem(ctx, narrativeSystem, prompt, opts)
	if err != nil {
		return "", fmt.Errorf("narrative generation failed: %w", err)
	}

	return strings.TrimSpace(response), nil
}

// FormatReportBlock renders the report in the fixed per-prediction layout
// used both in the narrative prompt and the CLI text dump.
func FormatReportBlock(report *models.Report) string {
	var sb strings.Builder
	for i, entry := range report.Entries() {
		fmt.Fprintf(&sb, "Prediction %d: %s\n", i+1, entry.Claim)
		fmt.Fprintf(&sb, "    Actual Result: %s\n", entry.Verdict.Actual)
		fmt.Fprintf(&sb, "    Rating: %s\n\n", entry.Verdict.Rating)
	}
	return strings.TrimRight(sb.String(), "\n")
}
