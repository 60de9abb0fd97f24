package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"ContentActivation/internal/domain"
)

// Rules holds the length limits enforced on article fields.
type Rules struct {
	MaxTitleLength   int `yaml:"maxTitleLength"`
	MinBodyLength    int `yaml:"minBodyLength"`
	MaxSummaryLength int `yaml:"maxSummaryLength"`
	MaxCTATextLength int `yaml:"maxCtaTextLength"`
}

// DefaultRules matches the CMS content model.
func DefaultRules() Rules {
	return Rules{
		MaxTitleLength:   70,
		MinBodyLength:    100,
		MaxSummaryLength: 160,
		MaxCTATextLength: 80,
	}
}

// Options tune a single validation pass.
type Options struct {
	// VisionAvailable lets images without alt text pass; the enrichment stage will generate it.
	VisionAvailable bool
}

// Validator enforces the content schema and the controlled vocabulary.
type Validator struct {
	vocab *Vocabulary
	rules Rules
}

// New builds a validator over a vocabulary. Zero-valued maximums fall back to defaults;
// a zero MinBodyLength disables the body minimum.
func New(vocab *Vocabulary, rules Rules) *Validator {
	def := DefaultRules()
	if rules.MaxTitleLength <= 0 {
		rules.MaxTitleLength = def.MaxTitleLength
	}
	if rules.MinBodyLength < 0 {
		rules.MinBodyLength = 0
	}
	if rules.MaxSummaryLength <= 0 {
		rules.MaxSummaryLength = def.MaxSummaryLength
	}
	if rules.MaxCTATextLength <= 0 {
		rules.MaxCTATextLength = def.MaxCTATextLength
	}
	if vocab == nil {
		vocab = NewVocabulary(DefaultTags)
	}
	return &Validator{vocab: vocab, rules: rules}
}

// Vocabulary exposes the controlled vocabulary in use.
func (v *Validator) Vocabulary() *Vocabulary {
	return v.vocab
}

// Validate turns raw content into a typed record or returns a *domain.ValidationError.
func (v *Validator) Validate(raw domain.RawContent, opts Options) (domain.ContentRecord, error) {
	var issues []domain.FieldIssue
	add := func(issue domain.FieldIssue) { issues = append(issues, issue) }

	for _, f := range []struct{ name, value string }{
		{"title", raw.Title},
		{"body", raw.Body},
		{"summary", raw.Summary},
		{"alt_text", raw.AltText},
		{"cta_text", raw.CTAText},
		{"cta_url", raw.CTAURL},
	} {
		if !utf8.ValidString(f.value) {
			add(domain.FieldIssue{Field: f.name, Message: "contains invalid UTF-8 sequences"})
		}
	}

	record := domain.ContentRecord{
		ID:      strings.TrimSpace(raw.ID),
		Title:   strings.TrimSpace(raw.Title),
		Body:    strings.TrimSpace(raw.Body),
		Summary: strings.TrimSpace(raw.Summary),
		AltText: strings.TrimSpace(raw.AltText),
	}

	switch n := utf8.RuneCountInString(record.Title); {
	case n == 0:
		add(domain.FieldIssue{Field: "title", Message: "title is required"})
	case n > v.rules.MaxTitleLength:
		add(domain.FieldIssue{Field: "title", Message: limitMessage("title", "at most", v.rules.MaxTitleLength)})
	}

	switch n := utf8.RuneCountInString(record.Body); {
	case n == 0:
		add(domain.FieldIssue{Field: "body", Message: "body is required"})
	case n < v.rules.MinBodyLength:
		add(domain.FieldIssue{Field: "body", Message: limitMessage("body", "at least", v.rules.MinBodyLength)})
	}

	if utf8.RuneCountInString(record.Summary) > v.rules.MaxSummaryLength {
		add(domain.FieldIssue{Field: "summary", Message: limitMessage("summary", "at most", v.rules.MaxSummaryLength)})
	}

	tags, tagIssues := v.validateTags(raw.Tags)
	record.Tags = tags
	issues = append(issues, tagIssues...)

	images, imageIssues := validateImages(raw)
	record.ImageURLs = images
	record.HasImages = raw.HasImages
	issues = append(issues, imageIssues...)

	if record.HasImages && record.AltText == "" && !opts.VisionAvailable {
		add(domain.FieldIssue{
			Field:   "alt_text",
			Message: "alt text is required when the article contains images and image description generation is unavailable",
		})
	}

	cta, ctaIssues := v.validateCTA(raw.CTAText, raw.CTAURL)
	record.CallToAction = cta
	issues = append(issues, ctaIssues...)

	if len(issues) > 0 {
		return domain.ContentRecord{}, &domain.ValidationError{Issues: issues}
	}
	return record, nil
}

func (v *Validator) validateTags(raw []string) ([]string, []domain.FieldIssue) {
	var (
		tags   []string
		issues []domain.FieldIssue
		seen   = map[string]struct{}{}
	)

	for _, tag := range raw {
		tag = normalizeTag(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}

		if !v.vocab.Contains(tag) {
			issues = append(issues, domain.FieldIssue{
				Field:       "tags",
				Message:     "tag " + tag + " is not in the controlled vocabulary",
				Value:       tag,
				Suggestions: v.vocab.Suggest(tag),
			})
			continue
		}
		tags = append(tags, tag)
	}

	if len(seen) == 0 {
		issues = append(issues, domain.FieldIssue{Field: "tags", Message: "at least one campaign tag is required"})
	}
	return tags, issues
}

func validateImages(raw domain.RawContent) ([]string, []domain.FieldIssue) {
	var (
		urls   []string
		issues []domain.FieldIssue
		seen   = map[string]struct{}{}
	)

	for _, ref := range raw.ImageURLs {
		ref = strings.TrimSpace(ref)
		if ref == "" {
			continue
		}
		if strings.HasPrefix(ref, "//") {
			ref = "https:" + ref
		}
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}

		if !validImageRef(ref) {
			issues = append(issues, domain.FieldIssue{
				Field:   "image_urls",
				Message: "image reference must be an absolute http(s) URL or a data:image URL",
				Value:   ref,
			})
			continue
		}
		urls = append(urls, ref)
	}

	if raw.HasImages && len(seen) == 0 {
		issues = append(issues, domain.FieldIssue{
			Field:   "image_urls",
			Message: "at least one image reference is required when has_images is set",
		})
	}
	return urls, issues
}

func validImageRef(ref string) bool {
	if strings.HasPrefix(ref, "data:image/") {
		return strings.Contains(ref, ",")
	}
	return validHTTPURL(ref)
}

func (v *Validator) validateCTA(text, link string) (*domain.CallToAction, []domain.FieldIssue) {
	text = strings.TrimSpace(text)
	link = strings.TrimSpace(link)
	if text == "" && link == "" {
		return nil, nil
	}

	var issues []domain.FieldIssue
	if text == "" {
		issues = append(issues, domain.FieldIssue{Field: "cta_text", Message: "call-to-action text is required when a URL is set"})
	}
	if utf8.RuneCountInString(text) > v.rules.MaxCTATextLength {
		issues = append(issues, domain.FieldIssue{Field: "cta_text", Message: limitMessage("call-to-action text", "at most", v.rules.MaxCTATextLength)})
	}
	if link == "" {
		issues = append(issues, domain.FieldIssue{Field: "cta_url", Message: "call-to-action URL is required when text is set"})
	} else if !validHTTPURL(link) {
		issues = append(issues, domain.FieldIssue{Field: "cta_url", Message: "call-to-action URL must use http or https", Value: link})
	}

	if len(issues) > 0 {
		return nil, issues
	}
	return &domain.CallToAction{Text: text, URL: link}, nil
}

func validHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

func limitMessage(field, bound string, n int) string {
	return fmt.Sprintf("%s must be %s %d characters", field, bound, n)
}
