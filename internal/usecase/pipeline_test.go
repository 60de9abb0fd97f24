package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentActivation/internal/audit"
	"ContentActivation/internal/brandvoice"
	"ContentActivation/internal/domain"
	"ContentActivation/internal/ports"
	"ContentActivation/internal/publishing"
	"ContentActivation/internal/validation"
)

type fakeSource struct {
	entries map[string]domain.RawContent
	err     error
}

func (f *fakeSource) GetArticle(ctx context.Context, id string) (domain.RawContent, error) {
	if f.err != nil {
		return domain.RawContent{}, f.err
	}
	raw, ok := f.entries[id]
	if !ok {
		return domain.RawContent{}, domain.ErrContentNotFound
	}
	return raw, nil
}

type fakeEnricher struct {
	result domain.EnrichmentResult
	vision bool
	calls  int
	ctxErr error
}

func (f *fakeEnricher) Enrich(ctx context.Context, record domain.ContentRecord) domain.EnrichmentResult {
	f.calls++
	f.ctxErr = ctx.Err()
	return f.result
}

func (f *fakeEnricher) VisionAvailable() bool { return f.vision }

// scoreAnalyzer returns the same score in every category.
type scoreAnalyzer struct {
	card  *brandvoice.Scorecard
	score float64
	got   brandvoice.Content
}

func (a *scoreAnalyzer) Analyze(content brandvoice.Content, _ brandvoice.Context) domain.BrandVoiceResult {
	a.got = content
	return a.card.FromScores(map[domain.VoiceCategory]float64{
		domain.CategoryProfessionalism:   a.score,
		domain.CategoryAccessibility:     a.score,
		domain.CategoryActionOrientation: a.score,
		domain.CategoryConsistency:       a.score,
	})
}

type fakePlatform struct {
	err   error
	calls int
	got   domain.CampaignContent
}

func (f *fakePlatform) Name() string { return "fake" }

func (f *fakePlatform) CreateCampaign(ctx context.Context, c domain.CampaignContent) (domain.PlatformResponse, error) {
	f.calls++
	f.got = c
	if f.err != nil {
		return domain.PlatformResponse{}, f.err
	}
	return domain.PlatformResponse{Success: true, CampaignID: "cmp-1"}, nil
}

func (f *fakePlatform) Ping(context.Context) error { return nil }

type memRecorder struct {
	mu       sync.Mutex
	attempts []domain.ActivationAttempt
}

func (m *memRecorder) Record(a domain.ActivationAttempt) audit.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, a)
	return audit.FromAttempt(a)
}

type fakeNotifier struct {
	notices []ports.ReviewNotice
}

func (f *fakeNotifier) NotifyReview(_ context.Context, n ports.ReviewNotice) error {
	f.notices = append(f.notices, n)
	return errors.New("chat unavailable")
}

type harness struct {
	source   *fakeSource
	enricher *fakeEnricher
	analyzer *scoreAnalyzer
	platform *fakePlatform
	recorder *memRecorder
	notifier *fakeNotifier
	pipeline *Pipeline
}

func article() domain.RawContent {
	return domain.RawContent{
		ID:    "entry-1",
		Title: "Grow Pipeline With Customer Analytics",
		Body: "Marketing teams that align campaign strategy with customer analytics see measurable growth " +
			"in pipeline and revenue every quarter.",
		Summary:   "How analytics grows pipeline",
		Tags:      []string{"thought-leadership", "marketer"},
		HasImages: true,
		ImageURLs: []string{"https://cdn.example.com/chart.png"},
		CTAText:   "Book a demo",
		CTAURL:    "https://example.com/demo",
	}
}

func newHarness(t *testing.T, score float64, notifyAdvisory bool) *harness {
	t.Helper()
	card, err := brandvoice.NewScorecard(brandvoice.DefaultWeights(), brandvoice.DefaultThresholds())
	require.NoError(t, err)

	h := &harness{
		source: &fakeSource{entries: map[string]domain.RawContent{"entry-1": article()}},
		enricher: &fakeEnricher{vision: true, result: domain.EnrichmentResult{
			Provider:        "openai",
			MetaDescription: "Discover how analytics grows pipeline.",
			Keywords:        []string{"analytics", "pipeline", "revenue"},
			AltTexts:        map[string]string{"https://cdn.example.com/chart.png": "Bar chart of pipeline growth"},
			Errors:          []domain.StageError{},
		}},
		analyzer: &scoreAnalyzer{card: card, score: score},
		platform: &fakePlatform{},
		recorder: &memRecorder{},
		notifier: &fakeNotifier{},
	}

	adapter, err := publishing.NewAdapter(nil, publishing.NewRegistry(h.platform), "fake", time.Second)
	require.NoError(t, err)

	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	h.pipeline, err = NewPipeline(PipelineDeps{
		Source:         h.source,
		Validator:      validation.New(nil, validation.DefaultRules()),
		Enricher:       h.enricher,
		Analyzer:       h.analyzer,
		Publisher:      adapter,
		Recorder:       h.recorder,
		Notifier:       h.notifier,
		NotifyAdvisory: notifyAdvisory,
		Now: func() time.Time {
			clock = clock.Add(100 * time.Millisecond)
			return clock
		},
		NewID: func() string { return "act-fixed" },
	})
	require.NoError(t, err)
	return h
}

func request() domain.ActivationRequest {
	return domain.ActivationRequest{ContentID: "entry-1", ListID: "L1", EnrichmentEnabled: true}
}

func TestActivateSuccess(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 0.9, false)
	attempt, err := h.pipeline.Activate(context.Background(), request())
	require.NoError(t, err)

	assert.True(t, attempt.Success)
	assert.Equal(t, domain.StateLogged, attempt.State)
	assert.Equal(t, []domain.State{
		domain.StateReceived, domain.StateValidated, domain.StateEnriched,
		domain.StateVoiceChecked, domain.StatePublished, domain.StateLogged,
	}, attempt.History)
	assert.Equal(t, "cmp-1", attempt.Publishing.CampaignID)
	assert.Equal(t, "act-fixed", attempt.ID)
	assert.Positive(t, attempt.Duration())

	assert.Equal(t, "Discover how analytics grows pipeline.", h.platform.got.PreviewText)
	assert.Equal(t, "Bar chart of pipeline growth", h.platform.got.Images[0].AltText)
	assert.Equal(t, "Discover how analytics grows pipeline.", h.analyzer.got.MetaDescription,
		"brand voice scores the enriched copy")

	require.Len(t, h.recorder.attempts, 1)
	assert.Equal(t, domain.StateLogged, h.recorder.attempts[0].State)
	assert.Empty(t, h.notifier.notices)
}

func TestActivateBlockedNeverPublishes(t *testing.T) {
	t.Parallel()

	for _, score := range []float64{0.0, 0.2, 0.39} {
		h := newHarness(t, score, false)
		attempt, err := h.pipeline.Activate(context.Background(), request())

		var aErr *domain.ActivationError
		require.ErrorAs(t, err, &aErr)
		assert.Equal(t, domain.StateBlocked, aErr.State)
		var block *domain.QualityGateBlock
		require.ErrorAs(t, err, &block)

		assert.Equal(t, 0, h.platform.calls, "score %.2f must not publish", score)
		assert.Nil(t, attempt.Publishing)
		assert.Equal(t, domain.StateBlocked, attempt.State)
		assert.False(t, attempt.Success)
		require.GreaterOrEqual(t, len(attempt.History), 2)
		assert.Equal(t, []domain.State{domain.StateBlocked, domain.StateLogged}, attempt.History[len(attempt.History)-2:])
		require.Len(t, h.recorder.attempts, 1)
		assert.Equal(t, domain.StateBlocked, h.recorder.attempts[0].State)
		require.Len(t, h.notifier.notices, 1, "notifier failures are absorbed")
		assert.Equal(t, domain.VoiceFail, h.notifier.notices[0].Status)
		assert.NotEmpty(t, attempt.Errors)
	}
}

func TestActivateAdvisoryPublishes(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 0.65, true)
	attempt, err := h.pipeline.Activate(context.Background(), request())
	require.NoError(t, err)
	assert.Equal(t, domain.VoiceAdvisory, attempt.BrandVoice.OverallStatus)
	assert.Equal(t, 1, h.platform.calls)
	require.Len(t, h.notifier.notices, 1)
	assert.Equal(t, domain.VoiceAdvisory, h.notifier.notices[0].Status)

	quiet := newHarness(t, 0.65, false)
	_, err = quiet.pipeline.Activate(context.Background(), request())
	require.NoError(t, err)
	assert.Empty(t, quiet.notifier.notices)
}

func TestActivateRejectedWhenNotFound(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 0.9, false)
	req := request()
	req.ContentID = "missing"
	attempt, err := h.pipeline.Activate(context.Background(), req)

	var aErr *domain.ActivationError
	require.ErrorAs(t, err, &aErr)
	assert.Equal(t, domain.StageSource, aErr.Stage)
	assert.ErrorIs(t, err, domain.ErrContentNotFound)
	assert.Equal(t, domain.StateRejected, attempt.State)
	assert.Equal(t, []domain.State{domain.StateReceived, domain.StateRejected, domain.StateLogged}, attempt.History)
	assert.Equal(t, 0, h.enricher.calls)
	require.Len(t, h.recorder.attempts, 1)
	assert.Equal(t, "not_found", attempt.Errors[0].Kind)
}

func TestActivateRejectedOnSourceTimeout(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 0.9, false)
	h.source.err = context.DeadlineExceeded
	attempt, err := h.pipeline.Activate(context.Background(), request())
	require.Error(t, err)
	assert.Equal(t, domain.StateRejected, attempt.State)
	assert.Equal(t, "timeout", attempt.Errors[0].Kind)
}

func TestActivateRejectedOnValidation(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 0.9, false)
	raw := article()
	raw.Tags = []string{"webinr"}
	h.source.entries["entry-1"] = raw

	attempt, err := h.pipeline.Activate(context.Background(), request())
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.NotEmpty(t, vErr.Issues)
	assert.Contains(t, vErr.Issues[0].Suggestions, "webinar")

	assert.Equal(t, domain.StateRejected, attempt.State)
	assert.False(t, attempt.Validation.Valid)
	assert.Equal(t, 0, h.enricher.calls)
	assert.Equal(t, 0, h.platform.calls)
	require.Len(t, h.recorder.attempts, 1)
}

func TestActivateWithoutEnrichmentNeedsAltText(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 0.9, false)
	req := request()
	req.EnrichmentEnabled = false

	attempt, err := h.pipeline.Activate(context.Background(), req)
	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "alt_text", vErr.Issues[0].Field)
	assert.Equal(t, domain.StateRejected, attempt.State)

	raw := article()
	raw.AltText = "Bar chart of pipeline growth by quarter"
	h.source.entries["entry-1"] = raw
	attempt, err = h.pipeline.Activate(context.Background(), req)
	require.NoError(t, err)
	assert.Nil(t, attempt.Enrichment)
	assert.Equal(t, 0, h.enricher.calls)
	assert.Equal(t, "Bar chart of pipeline growth by quarter", h.platform.got.Images[0].AltText)
	assert.Equal(t, "How analytics grows pipeline", h.platform.got.PreviewText)
}

func TestActivatePublishFailedKeepsPriorResults(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 0.9, false)
	h.platform.err = errors.New("list archived")

	attempt, err := h.pipeline.Activate(context.Background(), request())
	var aErr *domain.ActivationError
	require.ErrorAs(t, err, &aErr)
	assert.Equal(t, domain.StatePublishFailed, aErr.State)
	var pubErr *domain.PublishingError
	require.ErrorAs(t, err, &pubErr)

	assert.Equal(t, domain.StatePublishFailed, attempt.State)
	assert.NotNil(t, attempt.Enrichment)
	assert.NotNil(t, attempt.BrandVoice)
	require.NotNil(t, attempt.Publishing)
	assert.False(t, attempt.Publishing.Success)
	require.Len(t, h.recorder.attempts, 1)
	assert.Equal(t, domain.StatePublishFailed, h.recorder.attempts[0].State)
}

func TestActivatePartialEnrichmentProceeds(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 0.9, false)
	h.enricher.result.MetaDescription = ""
	h.enricher.result.Errors = []domain.StageError{{
		Stage: domain.StageText, Field: domain.FieldMetaDescription, Kind: "timeout", Message: "all providers failed",
	}}

	attempt, err := h.pipeline.Activate(context.Background(), request())
	require.NoError(t, err)
	assert.True(t, attempt.Success)
	require.Len(t, attempt.Errors, 1)
	assert.Equal(t, domain.StageEnrichment, attempt.Errors[0].Stage)
	assert.Equal(t, "How analytics grows pipeline", h.platform.got.PreviewText)
}

func TestActivateIgnoresCallerCancellation(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 0.9, false)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempt, err := h.pipeline.Activate(ctx, request())
	require.NoError(t, err)
	assert.True(t, attempt.Success)
	assert.NoError(t, h.enricher.ctxErr)
}

func TestActivateRequiresEntryID(t *testing.T) {
	t.Parallel()

	h := newHarness(t, 0.9, false)
	attempt, err := h.pipeline.Activate(context.Background(), domain.ActivationRequest{})
	require.Error(t, err)
	assert.Equal(t, domain.StateRejected, attempt.State)
	require.Len(t, h.recorder.attempts, 1)
}

func TestNewPipelineRequiresCoreDeps(t *testing.T) {
	t.Parallel()

	_, err := NewPipeline(PipelineDeps{})
	require.Error(t, err)
}
