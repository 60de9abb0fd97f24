package llm

import (
	"context"
	"regexp"
	"sort"
	"strings"

	"ContentActivation/internal/domain"
	"ContentActivation/internal/ports"
)

const stubName = "stub"

var (
	stubWord     = regexp.MustCompile(`[a-z][a-z\-]{3,}`)
	stubSentence = regexp.MustCompile(`^[^.!?]+[.!?]`)
	stubFiller   = []string{"marketing", "content", "automation"}
	stubStop     = map[string]struct{}{
		"this": {}, "that": {}, "with": {}, "from": {}, "your": {}, "have": {}, "will": {},
		"they": {}, "their": {}, "about": {}, "there": {}, "which": {}, "what": {}, "when": {},
		"into": {}, "more": {}, "than": {}, "them": {}, "these": {}, "those": {}, "were": {},
		"been": {}, "also": {}, "just": {}, "only": {}, "over": {}, "such": {}, "very": {},
		"each": {}, "most": {}, "some": {}, "like": {}, "make": {}, "does": {}, "here": {},
	}
)

// Stub is a deterministic offline provider. It never fails and its output is always tagged
// as degraded by the chain.
type Stub struct{}

var _ ports.Provider = Stub{}

func (Stub) Name() string              { return stubName }
func (Stub) Model() string             { return "deterministic" }
func (Stub) Tier() domain.ProviderTier { return domain.TierStub }
func (Stub) SupportsVision() bool      { return true }

// GenerateText derives the requested field from the article context only.
func (Stub) GenerateText(_ context.Context, _ string, gctx ports.GenerationContext) (string, error) {
	if gctx.Field == domain.FieldKeywords {
		return strings.Join(stubKeywords(gctx), ", "), nil
	}
	if s := stubSentence.FindString(strings.TrimSpace(gctx.Excerpt)); s != "" {
		return strings.TrimSpace(s), nil
	}
	title := strings.TrimSpace(gctx.Title)
	if title == "" {
		title = "this article"
	}
	return "Learn about " + strings.ToLower(title) + " and discover actionable insights for your marketing strategy.", nil
}

// DescribeImage returns a title-derived description.
func (Stub) DescribeImage(_ context.Context, _ domain.Image, _ string, gctx ports.GenerationContext) (string, error) {
	title := strings.TrimSpace(gctx.Title)
	if title == "" {
		return "Illustration accompanying the article content", nil
	}
	desc := "Illustration for the article " + title
	if r := []rune(desc); len(r) > 150 {
		desc = string(r[:150])
	}
	return desc, nil
}

func stubKeywords(gctx ports.GenerationContext) []string {
	counts := map[string]int{}
	first := map[string]int{}
	pos := 0
	for _, w := range stubWord.FindAllString(strings.ToLower(gctx.Title+" "+gctx.Title+" "+gctx.Excerpt), -1) {
		if _, stop := stubStop[w]; stop {
			continue
		}
		if _, ok := first[w]; !ok {
			first[w] = pos
		}
		counts[w]++
		pos++
	}

	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return first[words[i]] < first[words[j]]
	})
	if len(words) > 5 {
		words = words[:5]
	}
	for _, f := range stubFiller {
		if len(words) >= 3 {
			break
		}
		if _, ok := counts[f]; !ok {
			words = append(words, f)
		}
	}
	return words
}
