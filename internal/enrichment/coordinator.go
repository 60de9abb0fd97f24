package enrichment

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/sync/errgroup"

	"ContentActivation/internal/domain"
	"ContentActivation/internal/ports"
)

const (
	defaultImageConcurrency = 4

	kindFetch   = "fetch"
	kindQuality = "quality"
)

var plainPolicy = bluemonday.StrictPolicy()

var errNoFetcher = errors.New("image fetching is not configured")

// Options tunes the coordinator.
type Options struct {
	ImageConcurrency int
}

// Coordinator produces AI metadata for validated records. Failures are recorded per field and
// never abort enrichment.
type Coordinator struct {
	chain            *Chain
	fetcher          ports.ImageFetcher
	imageConcurrency int
	logger           *slog.Logger
}

// NewCoordinator wires the coordinator. fetcher may be nil, which disables the vision sub-pipeline.
func NewCoordinator(logger *slog.Logger, chain *Chain, fetcher ports.ImageFetcher, opts Options) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	n := opts.ImageConcurrency
	if n <= 0 {
		n = defaultImageConcurrency
	}
	return &Coordinator{
		chain:            chain,
		fetcher:          fetcher,
		imageConcurrency: n,
		logger:           logger.With("component", "enrichment"),
	}
}

// VisionAvailable reports whether missing alt text can be generated.
func (c *Coordinator) VisionAvailable() bool {
	return c.fetcher != nil && c.chain.SupportsVision()
}

type fieldOutcome struct {
	field   string
	url     string
	gen     Generation
	value   string
	list    []string
	err     error
	latency time.Duration
	retried bool
}

// Enrich runs the text and vision sub-pipelines concurrently and assembles one result.
func (c *Coordinator) Enrich(ctx context.Context, record domain.ContentRecord) domain.EnrichmentResult {
	gctx := ports.GenerationContext{
		Title:    record.Title,
		Tags:     record.Tags,
		Audience: record.Audience(),
		Excerpt:  excerpt(plainText(record.Body)),
	}

	var (
		meta, keywords    fieldOutcome
		images            []fieldOutcome
		textTime, visTime time.Duration
		g                 errgroup.Group
	)

	g.Go(func() error {
		start := time.Now()
		var tg errgroup.Group
		tg.Go(func() error {
			meta = c.metaDescription(ctx, gctx)
			return nil
		})
		tg.Go(func() error {
			keywords = c.keywords(ctx, gctx)
			return nil
		})
		_ = tg.Wait()
		textTime = time.Since(start)
		return nil
	})

	if record.NeedsAltText() {
		g.Go(func() error {
			start := time.Now()
			images = c.describeImages(ctx, record.ImageURLs, gctx)
			visTime = time.Since(start)
			return nil
		})
	}
	_ = g.Wait()

	result := domain.EnrichmentResult{
		Provenance:     map[string]domain.Provenance{},
		StageLatencyMS: map[string]int64{domain.StageText: textTime.Milliseconds()},
		Errors:         []domain.StageError{},
	}

	for _, f := range []fieldOutcome{meta, keywords} {
		c.collect(&result, domain.StageText, f)
	}
	if meta.err == nil {
		result.MetaDescription = meta.value
	}
	if keywords.err == nil {
		result.Keywords = keywords.list
		result.KeywordDensity = KeywordDensity(plainText(record.Body), keywords.list)
	}

	if record.NeedsAltText() {
		result.StageLatencyMS[domain.StageVision] = visTime.Milliseconds()
		result.AltTexts = map[string]string{}
		for _, img := range images {
			c.collect(&result, domain.StageVision, img)
			if img.err == nil {
				result.AltTexts[domain.ImageKey(img.url)] = img.value
			}
		}
	}

	for _, f := range append([]fieldOutcome{meta, keywords}, images...) {
		if f.err == nil {
			result.Provider, result.Model = f.gen.Provider, f.gen.Model
			break
		}
	}

	c.logger.Debug("enrichment finished",
		"content_id", record.ID,
		"provider", result.Provider,
		"errors", len(result.Errors),
		"text_ms", textTime.Milliseconds(),
		"vision_ms", visTime.Milliseconds(),
	)
	return result
}

func (c *Coordinator) collect(result *domain.EnrichmentResult, stage string, f fieldOutcome) {
	result.StageLatencyMS[f.field] = f.latency.Milliseconds()
	if f.err == nil {
		result.Provenance[f.field] = domain.Provenance{
			Provider:      f.gen.Provider,
			Model:         f.gen.Model,
			ChainPosition: f.gen.Position,
			Outcome:       f.gen.Outcome(),
			Attempts:      f.gen.Attempts,
			Confidence:    confidence(f.gen, f.retried),
		}
		return
	}

	stageErr := domain.StageError{Stage: stage, Field: f.field, Message: f.err.Error()}
	attempts := 0
	var exhausted *ExhaustedError
	var issue *AltTextIssue
	switch {
	case errors.As(f.err, &exhausted):
		stageErr.Kind = string(exhausted.Kind())
		attempts = exhausted.Attempts
		if n := len(exhausted.Failures); n > 0 {
			var pErr *domain.ProviderError
			if errors.As(exhausted.Failures[n-1], &pErr) {
				stageErr.Provider = pErr.Provider
			}
		}
	case errors.Is(f.err, errNoFetcher):
		stageErr.Kind = string(domain.ProviderUnavailable)
	case errors.As(f.err, &issue):
		stageErr.Kind = kindQuality
		stageErr.Provider = f.gen.Provider
		attempts = f.gen.Attempts
	default:
		stageErr.Kind = kindFetch
	}
	result.Errors = append(result.Errors, stageErr)
	result.Provenance[f.field] = domain.Provenance{
		ChainPosition: -1,
		Outcome:       domain.OutcomeUnavailable,
		Attempts:      attempts,
	}
}

func (c *Coordinator) metaDescription(ctx context.Context, gctx ports.GenerationContext) fieldOutcome {
	start := time.Now()
	gctx.Field = domain.FieldMetaDescription
	gen, err := c.chain.Text(ctx, metaDescriptionPrompt(gctx), gctx, CleanMetaDescription)
	return fieldOutcome{
		field:   domain.FieldMetaDescription,
		gen:     gen,
		value:   gen.Text,
		err:     err,
		latency: time.Since(start),
	}
}

func (c *Coordinator) keywords(ctx context.Context, gctx ports.GenerationContext) fieldOutcome {
	start := time.Now()
	gctx.Field = domain.FieldKeywords
	gen, err := c.chain.Text(ctx, keywordsPrompt(gctx), gctx, func(raw string) (string, error) {
		kws, err := ParseKeywords(raw)
		if err != nil {
			return "", err
		}
		return strings.Join(kws, ", "), nil
	})
	var list []string
	if err == nil {
		list, _ = ParseKeywords(gen.Text)
	}
	return fieldOutcome{
		field:   domain.FieldKeywords,
		gen:     gen,
		value:   gen.Text,
		list:    list,
		err:     err,
		latency: time.Since(start),
	}
}

func (c *Coordinator) describeImages(ctx context.Context, urls []string, gctx ports.GenerationContext) []fieldOutcome {
	out := make([]fieldOutcome, len(urls))
	var g errgroup.Group
	g.SetLimit(c.imageConcurrency)
	for i, url := range urls {
		g.Go(func() error {
			out[i] = c.describeImage(ctx, url, gctx)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

// describeImage fetches one image, asks for alt text and retries once with a stricter prompt when
// the first answer fails the quality rule.
func (c *Coordinator) describeImage(ctx context.Context, url string, gctx ports.GenerationContext) fieldOutcome {
	start := time.Now()
	f := fieldOutcome{field: domain.ImageField(url), url: url}
	gctx.Field = f.field
	if c.fetcher == nil {
		f.err = errNoFetcher
		return f
	}

	img, err := c.fetcher.Fetch(ctx, url)
	if err != nil {
		f.err = err
		f.latency = time.Since(start)
		return f
	}

	gen, err := c.chain.Describe(ctx, img, altTextPrompt(gctx), gctx)
	if err != nil {
		f.err = err
		f.latency = time.Since(start)
		return f
	}
	alt, issue := CheckAltText(gen.Text)
	if issue == nil {
		f.gen, f.value = gen, alt
		f.latency = time.Since(start)
		return f
	}

	c.logger.Debug("alt text rejected, retrying with variant prompt", "image", f.field, "provider", gen.Provider, "reason", issue)
	first := gen
	gen, err = c.chain.Describe(ctx, img, altTextRetryPrompt(gctx, first.Text, issue), gctx)
	f.retried = true
	if err != nil {
		f.gen, f.err = first, err
		f.latency = time.Since(start)
		return f
	}
	gen.Attempts += first.Attempts
	f.gen = gen
	alt, issue = CheckAltText(gen.Text)
	if issue != nil {
		f.err = issue
		f.latency = time.Since(start)
		return f
	}
	f.value = alt
	f.latency = time.Since(start)
	return f
}

func confidence(gen Generation, retried bool) float64 {
	var base float64
	switch gen.Tier {
	case domain.TierPrimary:
		base = 0.9
	case domain.TierLocal:
		base = 0.75
	default:
		base = 0.3
	}
	if retried {
		base -= 0.1
	}
	return base
}

func plainText(s string) string {
	return html.UnescapeString(plainPolicy.Sanitize(s))
}
