package brandvoice

import (
	"ContentActivation/internal/domain"
)

// Content is the combined original and enriched copy that gets scored.
type Content struct {
	Title           string
	Body            string
	Summary         string
	MetaDescription string
	Keywords        []string
	CallToAction    *domain.CallToAction
}

// Context describes who the copy is for.
type Context struct {
	Tags     []string
	Audience string
}

var technicalAudiences = map[string]struct{}{
	"developer":                {},
	"technical-decision-maker": {},
}

func (c Context) technical() bool {
	for _, tag := range c.Tags {
		if _, ok := technicalAudiences[tag]; ok {
			return true
		}
	}
	_, ok := technicalAudiences[c.Audience]
	return ok
}

// Analyzer scores copy on four brand-voice dimensions. It is deterministic and performs no I/O.
type Analyzer struct {
	card *Scorecard
}

// NewAnalyzer validates weights and thresholds and returns a ready analyzer.
func NewAnalyzer(weights Weights, thresholds Thresholds) (*Analyzer, error) {
	card, err := NewScorecard(weights, thresholds)
	if err != nil {
		return nil, err
	}
	return &Analyzer{card: card}, nil
}

// Scorecard exposes the weighting used by the analyzer.
func (a *Analyzer) Scorecard() *Scorecard {
	return a.card
}

// Analyze scores the content.
func (a *Analyzer) Analyze(content Content, ctx Context) domain.BrandVoiceResult {
	meta := content.MetaDescription
	if meta == "" {
		meta = content.Summary
	}
	ctaText := ""
	if content.CallToAction != nil {
		ctaText = content.CallToAction.Text
	}

	title := newText(content.Title)
	body := newText(content.Body)
	metaText := newText(meta)
	all := newText(join(content.Title, content.Body, meta, ctaText))

	evals := map[domain.VoiceCategory]evaluation{
		domain.CategoryProfessionalism:   scoreProfessionalism(all),
		domain.CategoryAccessibility:     scoreAccessibility(all, ctx.technical()),
		domain.CategoryActionOrientation: scoreActionOrientation(all, content.CallToAction),
		domain.CategoryConsistency:       scoreConsistency(title, body, metaText, content.Keywords),
	}

	categories := make([]domain.CategoryResult, 0, len(domain.VoiceCategories))
	for _, cat := range domain.VoiceCategories {
		eval := evals[cat]
		score := clamp(eval.score)
		status := a.card.Classify(cat, score)

		recommendations := []string{}
		if status != domain.VoicePass {
			recommendations = eval.advice()
		}

		categories = append(categories, domain.CategoryResult{
			Category:        cat,
			Score:           score,
			Status:          status,
			Recommendations: recommendations,
			Signals:         eval.signals,
		})
	}

	return a.card.Combine(categories)
}
