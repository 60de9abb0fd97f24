package enrichment

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	minAltTextLength = 10
	maxAltTextLength = 150
	minAltTextWords  = 3
)

var boilerplatePrefixes = []string{
	"image of",
	"an image of",
	"picture of",
	"a picture of",
	"photo of",
	"a photo of",
	"photograph of",
	"a photograph of",
	"picture showing",
	"image showing",
	"an image showing",
	"screenshot of",
	"a screenshot of",
	"description unavailable",
	"image description unavailable",
}

// AltTextIssue explains why a generated description was rejected.
type AltTextIssue struct {
	Reason string
}

func (i *AltTextIssue) Error() string {
	return "alt text rejected: " + i.Reason
}

// CheckAltText enforces the quality rule for generated image descriptions:
// 10 to 150 characters, at least 3 words and no boilerplate opening.
func CheckAltText(alt string) (string, error) {
	alt = strings.Trim(strings.Join(strings.Fields(alt), " "), "\"'“”`")
	n := utf8.RuneCountInString(alt)
	switch {
	case n < minAltTextLength:
		return "", &AltTextIssue{Reason: fmt.Sprintf("%d characters is shorter than %d", n, minAltTextLength)}
	case n > maxAltTextLength:
		return "", &AltTextIssue{Reason: fmt.Sprintf("%d characters is longer than %d", n, maxAltTextLength)}
	}
	if words := len(strings.Fields(alt)); words < minAltTextWords {
		return "", &AltTextIssue{Reason: fmt.Sprintf("%d words is fewer than %d", words, minAltTextWords)}
	}

	lower := strings.ToLower(alt)
	for _, p := range boilerplatePrefixes {
		if lower == p || strings.HasPrefix(lower, p+" ") || strings.HasPrefix(lower, p+":") {
			return "", &AltTextIssue{Reason: fmt.Sprintf("starts with boilerplate %q", p)}
		}
	}
	return alt, nil
}
