package verify

import (
	"strings"

	"github.com/predictcheck/hindsight/internal/models"
)

// ParseVerdict extracts a Verdict from an unstructured classifier response.
//
// Lines are scanned case-insensitively: the first line whose trimmed form
// starts with "actual result:" supplies the summary, the last line starting
// with "rating:" supplies the rating. The two defaults fire independently, so
// a response missing only its rating line still keeps the summary it carried.
// The parser never fails; completely malformed input degrades to
// {Actual: "Not found", Rating: UNCLEAR}. Ratings outside the closed label
// set are clamped to UNCLEAR with the original text kept for diagnostics.
func ParseVerdict(response string) models.Verdict {
	verdict := models.Verdict{
		Actual: models.ActualNotFound,
		Rating: models.RatingUnclear,
	}

	actualFound := false
	ratingText := ""
	ratingFound := false

	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)

		if !actualFound && strings.HasPrefix(lower, "actual result:") {
			if value := afterColon(trimmed); value != "" {
				verdict.Actual = value
			}
			actualFound = true
			continue
		}

		// Deliberately the last match: some models restate "Rating:" in
		// their reasoning before the final answer line.
		if strings.HasPrefix(lower, "rating:") {
			ratingText = afterColon(trimmed)
			ratingFound = true
		}
	}

	if ratingFound && ratingText != "" {
		rating, raw := models.NormalizeRating(canonicalRating(ratingText))
		verdict.Rating = rating
		if raw != "" {
			verdict.RawRating = ratingText
		}
	}

	return verdict
}

// afterColon returns the trimmed text after the first colon, with any
// matching surrounding quote pair removed.
func afterColon(line string) string {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return ""
	}
	value := strings.TrimSpace(line[idx+1:])
	if len(value) >= 2 && strings.HasPrefix(value, `"`) && strings.HasSuffix(value, `"`) {
		value = value[1 : len(value)-1]
	}
	return value
}

// canonicalRating uppercases the parsed label and drops trailing punctuation
// so "False." and "not yet" still land on their enum values.
func canonicalRating(raw string) string {
	cleaned := strings.ToUpper(strings.TrimSpace(raw))
	cleaned = strings.TrimRight(cleaned, ".!")
	return cleaned
}
