package enrichment

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxMetaDescription = 160
	MinKeywords        = 3
	MaxKeywords        = 7
	maxKeywordLength   = 60
)

var (
	metaPrefixes    = []string{"meta description:", "description:", "summary:"}
	keywordPrefixes = []string{"keywords:", "seo keywords:", "tags:"}
	keywordSplit    = regexp.MustCompile(`[,;\n]+`)
	densityWord     = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}'\-]*`)
)

// CleanMetaDescription strips model chatter and cuts the description to 160 characters at a
// word boundary.
func CleanMetaDescription(raw string) (string, error) {
	s := strings.Join(strings.Fields(raw), " ")
	s = stripPrefix(s, metaPrefixes)
	s = strings.Trim(s, "\"'“”` ")
	if s == "" {
		return "", errors.New("empty meta description")
	}
	return truncateWords(s, MaxMetaDescription), nil
}

// ParseKeywords turns a comma or line separated list into 3 to 7 lower-cased unique keywords.
func ParseKeywords(raw string) ([]string, error) {
	s := stripPrefix(strings.TrimSpace(raw), keywordPrefixes)

	seen := map[string]struct{}{}
	var out []string
	for _, part := range keywordSplit.Split(s, -1) {
		kw := strings.ToLower(strings.Join(strings.Fields(part), " "))
		kw = strings.TrimLeft(kw, "-*•#0123456789.) ")
		kw = strings.Trim(kw, "\"'“”` .")
		if utf8.RuneCountInString(kw) < 2 || utf8.RuneCountInString(kw) > maxKeywordLength {
			continue
		}
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
		if len(out) == MaxKeywords {
			break
		}
	}
	if len(out) < MinKeywords {
		return nil, fmt.Errorf("got %d usable keywords, need at least %d", len(out), MinKeywords)
	}
	return out, nil
}

// KeywordDensity is the percentage of body words taken up by each keyword, to two decimals.
func KeywordDensity(body string, keywords []string) map[string]float64 {
	words := densityWord.FindAllString(strings.ToLower(body), -1)
	out := make(map[string]float64, len(keywords))
	if len(words) == 0 {
		for _, kw := range keywords {
			out[kw] = 0
		}
		return out
	}

	padded := " " + strings.Join(words, " ") + " "
	for _, kw := range keywords {
		phrase := strings.Join(densityWord.FindAllString(strings.ToLower(kw), -1), " ")
		if phrase == "" {
			out[kw] = 0
			continue
		}
		n := strings.Count(padded, " "+phrase+" ")
		out[kw] = math.Round(float64(n)/float64(len(words))*100*100) / 100
	}
	return out
}

func stripPrefix(s string, prefixes []string) string {
	lower := strings.ToLower(s)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			return strings.TrimSpace(s[len(p):])
		}
	}
	return s
}

func truncateWords(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:limit])
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, " ,;:-")
}
