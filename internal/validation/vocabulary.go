package validation

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const maxSuggestions = 3

// DefaultTags is the controlled campaign-tag taxonomy.
var DefaultTags = []string{
	// content types
	"product-launch",
	"thought-leadership",
	"case-study",
	"webinar",
	"ebook",
	"release-notes",
	"tutorial",
	"whitepaper",
	"demo",
	"blog-post",
	// audience segments
	"developer",
	"marketer",
	"enterprise",
	"startup",
	"technical-decision-maker",
	"content-creator",
	"product-manager",
	"executive",
	// funnel stages
	"awareness",
	"consideration",
	"decision",
	"retention",
	"advocacy",
	// campaign types
	"demand-gen",
	"brand-awareness",
	"product-adoption",
	"customer-success",
	"lead-nurture",
	"competitive-intelligence",
}

// Vocabulary is a read-only set of allowed tags, safe for concurrent use.
type Vocabulary struct {
	tags   map[string]struct{}
	sorted []string
}

// NewVocabulary builds a vocabulary; tags are lower-cased and trimmed.
func NewVocabulary(tags []string) *Vocabulary {
	v := &Vocabulary{tags: make(map[string]struct{}, len(tags))}
	for _, tag := range tags {
		tag = normalizeTag(tag)
		if tag == "" {
			continue
		}
		if _, ok := v.tags[tag]; ok {
			continue
		}
		v.tags[tag] = struct{}{}
		v.sorted = append(v.sorted, tag)
	}
	sort.Strings(v.sorted)
	return v
}

// Contains reports whether tag is allowed.
func (v *Vocabulary) Contains(tag string) bool {
	_, ok := v.tags[normalizeTag(tag)]
	return ok
}

// Tags returns the allowed tags in alphabetical order.
func (v *Vocabulary) Tags() []string {
	return append([]string(nil), v.sorted...)
}

// Len returns the vocabulary size.
func (v *Vocabulary) Len() int {
	return len(v.sorted)
}

type candidate struct {
	tag   string
	score float64
}

// Suggest ranks vocabulary entries by similarity to tag and returns the closest few.
func (v *Vocabulary) Suggest(tag string) []string {
	tag = normalizeTag(tag)
	if tag == "" {
		return nil
	}

	candidates := make([]candidate, 0, len(v.sorted))
	for _, known := range v.sorted {
		score := similarity(tag, known)
		if score <= 0 {
			continue
		}
		candidates = append(candidates, candidate{tag: known, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > maxSuggestions {
		candidates = candidates[:maxSuggestions]
	}
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.tag)
	}
	return out
}

// similarity is the Levenshtein distance normalised into [0,1].
func similarity(a, b string) float64 {
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
