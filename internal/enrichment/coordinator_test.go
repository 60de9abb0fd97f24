package enrichment

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentActivation/internal/domain"
	"ContentActivation/internal/ports"
)

func record(images ...string) domain.ContentRecord {
	return domain.ContentRecord{
		ID:        "entry-1",
		Title:     "Marketing Automation for Lead Scoring",
		Body:      "<p>Marketing automation helps teams score leads and improve campaign results.</p>",
		Tags:      []string{"thought-leadership", "marketer"},
		HasImages: len(images) > 0,
		ImageURLs: images,
	}
}

func newCoordinator(t *testing.T, fetcher ports.ImageFetcher, providers ...ports.Provider) *Coordinator {
	t.Helper()
	chain, err := NewChain(quietLogger(), ChainOptions{}, members(providers...)...)
	require.NoError(t, err)
	return NewCoordinator(quietLogger(), chain, fetcher, Options{ImageConcurrency: 2})
}

func TestEnrichTextAndVision(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{
		name: "openai", tier: domain.TierPrimary, vision: true,
		text:  goodText,
		image: constant("Dashboard showing lead scores for each campaign"),
	}
	c := newCoordinator(t, fakeFetcher{}, primary)

	result := c.Enrich(context.Background(), record("https://cdn.example.com/a.png", "https://cdn.example.com/b.png"))

	assert.True(t, result.Complete(), "errors: %v", result.Errors)
	assert.Equal(t, "openai", result.Provider)
	assert.Equal(t, "openai-model", result.Model)
	assert.Equal(t, "Discover how marketing automation improves lead scoring and campaign results.", result.MetaDescription)
	assert.Equal(t, []string{"marketing automation", "lead scoring", "campaign analytics"}, result.Keywords)
	assert.Greater(t, result.KeywordDensity["marketing automation"], 0.0)
	assert.Len(t, result.AltTexts, 2)

	for _, field := range []string{domain.FieldMetaDescription, domain.FieldKeywords, domain.ImageField("https://cdn.example.com/a.png")} {
		prov, ok := result.Provenance[field]
		require.True(t, ok, field)
		assert.Equal(t, domain.OutcomeSuccess, prov.Outcome, field)
		assert.Equal(t, 0, prov.ChainPosition, field)
	}
	assert.Contains(t, result.StageLatencyMS, domain.StageText)
	assert.Contains(t, result.StageLatencyMS, domain.StageVision)
}

func TestEnrichFallbackIsRecordedAsDegraded(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "openai", tier: domain.TierPrimary, text: failing(domain.ProviderAuth)}
	stub := &fakeProvider{name: "stub", tier: domain.TierStub, text: goodText}
	c := newCoordinator(t, nil, primary, stub)

	result := c.Enrich(context.Background(), record())

	require.True(t, result.Complete())
	assert.Equal(t, "stub", result.Provider)
	prov := result.Provenance[domain.FieldMetaDescription]
	assert.Equal(t, domain.OutcomeDegraded, prov.Outcome)
	assert.Equal(t, 1, prov.ChainPosition)
	assert.Equal(t, 2, prov.Attempts)
	assert.Less(t, prov.Confidence, 0.5)
}

func TestEnrichExhaustionIsNotFatal(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{
		name: "openai", tier: domain.TierPrimary, vision: true,
		text:  failing(domain.ProviderUnavailable),
		image: constant("Team reviewing a campaign performance dashboard"),
	}
	local := &fakeProvider{name: "ollama", tier: domain.TierLocal, text: failing(domain.ProviderTimeout)}
	c := newCoordinator(t, fakeFetcher{}, primary, local)

	result := c.Enrich(context.Background(), record("https://cdn.example.com/a.png"))

	assert.False(t, result.Complete())
	assert.Empty(t, result.MetaDescription)
	assert.Empty(t, result.Keywords)
	require.Len(t, result.Errors, 2)
	for _, e := range result.Errors {
		assert.Equal(t, domain.StageText, e.Stage)
		assert.Equal(t, string(domain.ProviderTimeout), e.Kind)
	}
	assert.Equal(t, domain.OutcomeUnavailable, result.Provenance[domain.FieldKeywords].Outcome)
	assert.Equal(t, 2, result.Provenance[domain.FieldKeywords].Attempts)

	assert.Equal(t, "Team reviewing a campaign performance dashboard", result.AltTexts["https://cdn.example.com/a.png"])
	assert.Equal(t, "openai", result.Provider)
}

func TestEnrichBoilerplateAltTextRetriesOnceThenFails(t *testing.T) {
	t.Parallel()

	vision := &fakeProvider{
		name: "openai", tier: domain.TierPrimary, vision: true,
		text:  goodText,
		image: constant("Image of a chart"),
	}
	stub := &fakeProvider{name: "stub", tier: domain.TierStub, vision: true, image: constant("Stub description of the article image")}
	c := newCoordinator(t, fakeFetcher{}, vision, stub)

	url := "https://cdn.example.com/chart.png"
	result := c.Enrich(context.Background(), record(url))

	_, imageCalls := vision.calls()
	assert.Equal(t, 2, imageCalls, "initial prompt plus one variant")
	_, stubCalls := stub.calls()
	assert.Zero(t, stubCalls, "quality rejection is not a provider failure")

	assert.NotContains(t, result.AltTexts, url)
	stageErr, ok := result.ImageError(url)
	require.True(t, ok)
	assert.Equal(t, "quality", stageErr.Kind)
	assert.Equal(t, "openai", stageErr.Provider)
	assert.Contains(t, stageErr.Message, "boilerplate")

	require.Len(t, vision.imagePrompt, 2)
	assert.NotEqual(t, vision.imagePrompt[0], vision.imagePrompt[1])
	assert.Contains(t, vision.imagePrompt[1], "Image of a chart")
}

func TestEnrichRetryWithVariantPromptRecovers(t *testing.T) {
	t.Parallel()

	vision := &fakeProvider{
		name: "openai", tier: domain.TierPrimary, vision: true,
		text: goodText,
		image: func(prompt string) (string, error) {
			if strings.Contains(prompt, "previous alt text was rejected") {
				return "Bar chart comparing quarterly revenue by region", nil
			}
			return "Image of a chart", nil
		},
	}
	c := newCoordinator(t, fakeFetcher{}, vision)

	url := "https://cdn.example.com/chart.png"
	result := c.Enrich(context.Background(), record(url))

	assert.Equal(t, "Bar chart comparing quarterly revenue by region", result.AltTexts[url])
	prov := result.Provenance[domain.ImageField(url)]
	assert.Equal(t, 2, prov.Attempts)
	assert.InDelta(t, 0.8, prov.Confidence, 1e-9)
}

func TestEnrichEveryImageHasAltTextOrError(t *testing.T) {
	t.Parallel()

	urls := []string{
		"https://cdn.example.com/ok.png",
		"https://cdn.example.com/missing.png",
		"https://cdn.example.com/bad.png",
	}
	vision := &fakeProvider{
		name: "openai", tier: domain.TierPrimary, vision: true,
		text:  goodText,
		image: constant("Customer journey map across five funnel stages"),
	}
	fetcher := fakeFetcher{fail: map[string]error{
		urls[1]: errors.New("status 404"),
		urls[2]: errors.New("unsupported image format"),
	}}
	c := newCoordinator(t, fetcher, vision)

	result := c.Enrich(context.Background(), record(urls...))

	for _, url := range urls {
		_, hasAlt := result.AltTexts[url]
		_, hasErr := result.ImageError(url)
		assert.True(t, hasAlt != hasErr, "image %s must have exactly one of alt text or error", url)
	}
	stageErr, ok := result.ImageError(urls[1])
	require.True(t, ok)
	assert.Equal(t, "fetch", stageErr.Kind)
}

func TestEnrichWithoutFetcherRecordsImageErrors(t *testing.T) {
	t.Parallel()

	primary := &fakeProvider{name: "openai", tier: domain.TierPrimary, vision: true, text: goodText, image: constant("unused description here")}
	c := newCoordinator(t, nil, primary)
	require.False(t, c.VisionAvailable())

	urls := []string{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"}
	result := c.Enrich(context.Background(), record(urls...))

	_, imageCalls := primary.calls()
	assert.Zero(t, imageCalls)
	assert.Equal(t, "Discover how marketing automation improves lead scoring and campaign results.", result.MetaDescription)
	for _, url := range urls {
		assert.NotContains(t, result.AltTexts, url)
		stageErr, ok := result.ImageError(url)
		require.True(t, ok, url)
		assert.Equal(t, string(domain.ProviderUnavailable), stageErr.Kind)
		assert.Equal(t, domain.OutcomeUnavailable, result.Provenance[domain.ImageField(url)].Outcome)
	}
}

func TestEnrichKeysDataURLsByDigest(t *testing.T) {
	t.Parallel()

	vision := &fakeProvider{
		name: "openai", tier: domain.TierPrimary, vision: true,
		text:  goodText,
		image: constant("Funnel chart showing conversion by stage"),
	}
	c := newCoordinator(t, fakeFetcher{}, vision)

	ref := "data:image/png;base64," + strings.Repeat("iVBORw0KGgo", 200)
	result := c.Enrich(context.Background(), record(ref))

	key := domain.ImageKey(ref)
	assert.True(t, strings.HasPrefix(key, "sha256:"), key)
	assert.Less(t, len(key), 40)
	assert.Equal(t, "Funnel chart showing conversion by stage", result.AltTexts[key])
	assert.Contains(t, result.Provenance, domain.ImageField(ref))
	for field := range result.Provenance {
		assert.NotContains(t, field, "base64")
	}
	for field := range result.StageLatencyMS {
		assert.NotContains(t, field, "base64")
	}
}

func TestEnrichSkipsVisionWhenAltTextGiven(t *testing.T) {
	t.Parallel()

	vision := &fakeProvider{name: "openai", tier: domain.TierPrimary, vision: true, text: goodText, image: constant("unused description here")}
	c := newCoordinator(t, fakeFetcher{}, vision)

	rec := record("https://cdn.example.com/a.png")
	rec.AltText = "Editor supplied description"
	result := c.Enrich(context.Background(), rec)

	_, imageCalls := vision.calls()
	assert.Zero(t, imageCalls)
	assert.Nil(t, result.AltTexts)
	assert.NotContains(t, result.StageLatencyMS, domain.StageVision)
}

func TestVisionAvailable(t *testing.T) {
	t.Parallel()

	textOnly := &fakeProvider{name: "openai", tier: domain.TierPrimary}
	vision := &fakeProvider{name: "ollama", tier: domain.TierLocal, vision: true}

	assert.False(t, newCoordinator(t, fakeFetcher{}, textOnly).VisionAvailable())
	assert.False(t, newCoordinator(t, nil, vision).VisionAvailable())
	assert.True(t, newCoordinator(t, fakeFetcher{}, textOnly, vision).VisionAvailable())
}
