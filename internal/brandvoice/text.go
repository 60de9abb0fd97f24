package brandvoice

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	wordExpr     = regexp.MustCompile(`[a-z0-9][a-z0-9'\-]*`)
	sentenceExpr = regexp.MustCompile(`[^.!?\n]+[.!?]*`)
	stripPolicy  = bluemonday.StrictPolicy()
)

// text is a pre-tokenised view of a block of copy.
type text struct {
	raw       string
	lower     string
	words     []string
	sentences []string
}

func newText(s string) text {
	plain := html.UnescapeString(stripPolicy.Sanitize(s))
	lines := strings.Split(plain, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			kept = append(kept, line)
		}
	}
	plain = strings.Join(kept, "\n")
	lower := strings.ToLower(plain)

	var sentences []string
	for _, sentence := range sentenceExpr.FindAllString(plain, -1) {
		sentence = strings.TrimSpace(sentence)
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
	}

	return text{
		raw:       plain,
		lower:     lower,
		words:     wordExpr.FindAllString(lower, -1),
		sentences: sentences,
	}
}

func (t text) empty() bool {
	return len(t.words) == 0
}

// countPhrases counts occurrences of each phrase as whole words.
func (t text) countPhrases(phrases []string) (total int, distinct int) {
	padded := " " + strings.Join(t.words, " ") + " "
	for _, phrase := range phrases {
		n := strings.Count(padded, " "+phrase+" ")
		if n > 0 {
			total += n
			distinct++
		}
	}
	return total, distinct
}

func (t text) avgSentenceWords() float64 {
	if len(t.sentences) == 0 {
		return 0
	}
	words := 0
	for _, s := range t.sentences {
		words += len(wordExpr.FindAllString(strings.ToLower(s), -1))
	}
	return float64(words) / float64(len(t.sentences))
}

func (t text) firstWords() []string {
	out := make([]string, 0, len(t.sentences))
	for _, s := range t.sentences {
		if w := wordExpr.FindString(strings.ToLower(s)); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// contentWords drops stop words and very short tokens.
func (t text) contentWords() map[string]struct{} {
	out := map[string]struct{}{}
	for _, w := range t.words {
		if len(w) < 4 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		out[w] = struct{}{}
	}
	return out
}

func join(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(p)
	}
	return b.String()
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

func ratio(n, of int) float64 {
	if of <= 0 {
		return 0
	}
	return clamp(float64(n) / float64(of))
}
