package download

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	specialChars = regexp.MustCompile(`[^\w\s-]`)
	separators   = regexp.MustCompile(`[-\s]+`)
)

// SanitizeFilename strips non-ASCII characters and special symbols from a
// video title so it is safe to use as a file name. Spaces collapse to single
// hyphens.
func SanitizeFilename(name string) string {
	var ascii strings.Builder
	for _, r := range name {
		if r < unicode.MaxASCII {
			ascii.WriteRune(r)
		}
	}

	cleaned := specialChars.ReplaceAllString(ascii.String(), "")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = separators.ReplaceAllString(cleaned, "-")
	return strings.Trim(cleaned, "-")
}
