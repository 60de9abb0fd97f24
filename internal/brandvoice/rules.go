package brandvoice

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"ContentActivation/internal/domain"
)

const (
	minSentenceWords = 12.0
	maxSentenceWords = 25.0
	maxAdvice        = 2
	secondaryDeficit = 0.15
)

// deficit is how much a single rule cost its category, with the advice that would recover it.
type deficit struct {
	rule   string
	amount float64
	advice string
}

type evaluation struct {
	score    float64
	signals  map[string]float64
	deficits []deficit
}

// advice picks the rule with the largest deficit, plus other large ones.
func (e evaluation) advice() []string {
	ranked := append([]deficit(nil), e.deficits...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].amount > ranked[j].amount })

	out := []string{}
	for i, d := range ranked {
		if d.amount <= 0 || d.advice == "" {
			continue
		}
		if i > 0 && d.amount < secondaryDeficit {
			break
		}
		out = append(out, d.advice)
		if len(out) == maxAdvice {
			break
		}
	}
	return out
}

func matched(t text, phrases []string) []string {
	padded := " " + strings.Join(t.words, " ") + " "
	var out []string
	for _, p := range phrases {
		if strings.Contains(padded, " "+p+" ") {
			out = append(out, p)
		}
	}
	return out
}

func quoteList(items []string, limit int) string {
	if len(items) > limit {
		items = items[:limit]
	}
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = `"` + it + `"`
	}
	return strings.Join(quoted, ", ")
}

func scoreProfessionalism(all text) evaluation {
	_, domainHits := all.countPhrases(domainTerms)
	domainScore := ratio(domainHits, 5)

	avg := all.avgSentenceWords()
	var sentenceScore float64
	switch {
	case avg == 0:
		sentenceScore = 0
	case avg < minSentenceWords:
		sentenceScore = avg / minSentenceWords
	case avg > maxSentenceWords:
		sentenceScore = clamp(1 - (avg-maxSentenceWords)/maxSentenceWords)
	default:
		sentenceScore = 1
	}

	casualTotal, _ := all.countPhrases(casualMarkers)
	casualPenalty := math.Min(0.5, 0.1*float64(casualTotal))

	unexplained := unexplainedTerms(all, jargonTerms)
	jargonPenalty := math.Min(0.3, 0.1*float64(max(0, len(unexplained)-1)))

	sentenceAdvice := "Keep sentences between 12 and 25 words for a measured, professional rhythm."
	if avg > maxSentenceWords {
		sentenceAdvice = fmt.Sprintf("Split long sentences: they average %.0f words, aim for 12 to 25.", avg)
	} else if avg > 0 && avg < minSentenceWords {
		sentenceAdvice = fmt.Sprintf("Combine short fragments: sentences average %.0f words, aim for 12 to 25.", avg)
	}

	return evaluation{
		score: clamp(0.5*domainScore + 0.5*sentenceScore - casualPenalty - jargonPenalty),
		signals: map[string]float64{
			"domain_terms":       float64(domainHits),
			"avg_sentence_words": avg,
			"casual_markers":     float64(casualTotal),
			"unexplained_jargon": float64(len(unexplained)),
		},
		deficits: []deficit{
			{
				rule:   "domain_terminology",
				amount: 0.5 * (1 - domainScore),
				advice: "Ground the copy in domain terminology such as audience, pipeline, conversion or retention.",
			},
			{rule: "sentence_construction", amount: 0.5 * (1 - sentenceScore), advice: sentenceAdvice},
			{
				rule:   "casual_language",
				amount: casualPenalty,
				advice: "Replace casual language (" + quoteList(matched(all, casualMarkers), 3) + ") with neutral phrasing.",
			},
			{
				rule:   "unexplained_jargon",
				amount: jargonPenalty,
				advice: "Explain or replace jargon (" + quoteList(unexplained, 3) + ") with concrete language.",
			},
		},
	}
}

// unexplainedTerms returns terms that appear in a sentence without an explanation marker.
func unexplainedTerms(t text, terms []string) []string {
	seen := map[string]struct{}{}
	var out []string
	for _, sentence := range t.sentences {
		st := newText(sentence)
		lowerSentence := strings.ToLower(sentence)
		explained := hasExplanation(lowerSentence)
		for _, term := range matched(st, terms) {
			if explained {
				continue
			}
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			out = append(out, term)
		}
	}
	return out
}

func hasExplanation(lowerSentence string) bool {
	for _, marker := range explanationMarkers {
		if strings.Contains(lowerSentence, marker) {
			return true
		}
	}
	return false
}

func scoreAccessibility(all text, technicalAudience bool) evaluation {
	var technical, explained int
	for _, sentence := range all.sentences {
		terms := matched(newText(sentence), technicalTerms)
		if len(terms) == 0 {
			continue
		}
		technical += len(terms)
		if hasExplanation(strings.ToLower(sentence)) {
			explained += len(terms)
		}
	}
	clarity := 1.0
	if technical > 0 {
		clarity = float64(explained) / float64(technical)
		if technicalAudience {
			clarity = clamp(clarity + 0.5)
		}
	}

	_, outcomeHits := all.countPhrases(outcomeTerms)
	relevance := ratio(outcomeHits, 4)

	excludingTotal, _ := all.countPhrases(excludingTerms)
	inclusive := clamp(1 - 0.25*float64(excludingTotal))

	return evaluation{
		score: (clarity + relevance + inclusive) / 3,
		signals: map[string]float64{
			"technical_clarity":  clarity,
			"business_relevance": relevance,
			"inclusive_language": inclusive,
		},
		deficits: []deficit{
			{
				rule:   "technical_clarity",
				amount: (1 - clarity) / 3,
				advice: "Explain technical terms (" + quoteList(unexplainedTerms(all, technicalTerms), 3) + ") the first time they appear.",
			},
			{
				rule:   "business_relevance",
				amount: (1 - relevance) / 3,
				advice: "State the business value: name the outcome readers get, such as revenue, efficiency or reduced cost.",
			},
			{
				rule:   "inclusive_language",
				amount: (1 - inclusive) / 3,
				advice: "Replace excluding terms (" + quoteList(matched(all, excludingTerms), 3) + ") with inclusive alternatives.",
			},
		},
	}
}

func scoreActionOrientation(all text, cta *domain.CallToAction) evaluation {
	ctaTotal, _ := all.countPhrases(ctaPhrases)
	ctaScore := ratio(ctaTotal, 2)
	if cta != nil && strings.TrimSpace(cta.Text) != "" {
		ctaScore = 1
	}

	imperatives := 0
	verbs := map[string]struct{}{}
	for _, v := range imperativeVerbs {
		verbs[v] = struct{}{}
	}
	for _, first := range all.firstWords() {
		if _, ok := verbs[first]; ok {
			imperatives++
		}
	}
	imperativeScore := ratio(imperatives, 3)

	_, outcomeHits := all.countPhrases(outcomeTerms)
	outcomeScore := ratio(outcomeHits, 3)

	return evaluation{
		score: clamp(0.4*ctaScore + 0.3*imperativeScore + 0.3*outcomeScore),
		signals: map[string]float64{
			"cta_strength":         ctaScore,
			"imperative_sentences": float64(imperatives),
			"outcome_terms":        float64(outcomeHits),
		},
		deficits: []deficit{
			{
				rule:   "call_to_action",
				amount: 0.4 * (1 - ctaScore),
				advice: "Add an explicit call to action such as \"Book a demo\" or \"Get started\" with a link.",
			},
			{
				rule:   "imperative_verbs",
				amount: 0.3 * (1 - imperativeScore),
				advice: "Open key sentences with an imperative verb (discover, start, build) to prompt the reader.",
			},
			{
				rule:   "outcome_language",
				amount: 0.3 * (1 - outcomeScore),
				advice: "Describe what the reader will achieve: use outcome language such as improve, reduce or accelerate.",
			},
		},
	}
}

type toneProfile struct {
	exclamation  float64
	casual       float64
	secondPerson float64
}

func profileOf(t text) toneProfile {
	if t.empty() {
		return toneProfile{}
	}
	casualTotal, _ := t.countPhrases(casualMarkers)
	secondTotal, _ := t.countPhrases(secondPerson)
	return toneProfile{
		exclamation:  ratio(strings.Count(t.raw, "!"), max(1, len(t.sentences))),
		casual:       clamp(float64(casualTotal) * 20 / float64(len(t.words))),
		secondPerson: clamp(float64(secondTotal) * 10 / float64(len(t.words))),
	}
}

func (p toneProfile) distance(o toneProfile) (float64, string) {
	dims := []struct {
		name string
		diff float64
	}{
		{"exclamation marks", math.Abs(p.exclamation - o.exclamation)},
		{"casual wording", math.Abs(p.casual - o.casual)},
		{"second-person address", math.Abs(p.secondPerson - o.secondPerson)},
	}
	var sum float64
	worst := dims[0]
	for _, d := range dims {
		sum += d.diff
		if d.diff > worst.diff {
			worst = d
		}
	}
	return sum / float64(len(dims)), worst.name
}

func overlap(part, whole text) (float64, []string) {
	words := part.contentWords()
	if len(words) == 0 {
		return 1, nil
	}
	present := whole.contentWords()
	var missing []string
	hits := 0
	for w := range words {
		if _, ok := present[w]; ok {
			hits++
			continue
		}
		missing = append(missing, w)
	}
	sort.Strings(missing)
	return float64(hits) / float64(len(words)), missing
}

func scoreConsistency(title, body, meta text, keywords []string) evaluation {
	if body.empty() {
		return evaluation{
			score:   0,
			signals: map[string]float64{},
			deficits: []deficit{{
				rule:   "missing_body",
				amount: 1,
				advice: "Provide body copy so title and description can be checked against it.",
			}},
		}
	}

	bodyProfile := profileOf(body)
	pairs := []text{title}
	if !meta.empty() {
		pairs = append(pairs, meta)
	}

	var (
		toneSum, topicSum float64
		worstDim          string
		worstTone         float64
		missing           []string
	)
	for _, section := range pairs {
		dist, dim := profileOf(section).distance(bodyProfile)
		toneSum += dist
		if dist > worstTone {
			worstTone, worstDim = dist, dim
		}
		topic, miss := overlap(section, body)
		topicSum += topic
		missing = append(missing, miss...)
	}
	topicSections := len(pairs)
	if len(keywords) > 0 {
		topic, miss := overlap(newText(strings.Join(keywords, ". ")), body)
		topicSum += topic
		missing = append(missing, miss...)
		topicSections++
	}
	tone := clamp(1 - toneSum/float64(len(pairs)))
	topical := topicSum / float64(topicSections)

	toneAdvice := "Keep the tone of title, body and meta description aligned."
	if worstDim != "" {
		toneAdvice = "Align " + worstDim + " between the title, meta description and body."
	}

	return evaluation{
		score: clamp(0.5*topical + 0.5*tone),
		signals: map[string]float64{
			"topical_alignment": topical,
			"tone_alignment":    tone,
		},
		deficits: []deficit{
			{
				rule:   "topical_alignment",
				amount: 0.5 * (1 - topical),
				advice: "Reuse the body's key terms in the title, meta description and keywords; missing from the body: " + quoteList(missing, 3) + ".",
			},
			{rule: "tone_alignment", amount: 0.5 * (1 - tone), advice: toneAdvice},
		},
	}
}
