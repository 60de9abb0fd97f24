package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ContentActivation/internal/audit"
	"ContentActivation/internal/brandvoice"
	"ContentActivation/internal/domain"
	"ContentActivation/internal/ports"
	"ContentActivation/internal/publishing"
	"ContentActivation/internal/validation"
)

// Validator checks raw content against the content schema.
type Validator interface {
	Validate(raw domain.RawContent, opts validation.Options) (domain.ContentRecord, error)
}

// Enricher produces AI metadata. Enrich never fails; partial failures live in the result.
type Enricher interface {
	Enrich(ctx context.Context, record domain.ContentRecord) domain.EnrichmentResult
	VisionAvailable() bool
}

// VoiceAnalyzer scores copy against the brand-voice rubric.
type VoiceAnalyzer interface {
	Analyze(content brandvoice.Content, ctx brandvoice.Context) domain.BrandVoiceResult
}

// Publisher hands the campaign to the destination platform.
type Publisher interface {
	Publish(ctx context.Context, in publishing.CampaignInput) (domain.PublishingResult, error)
}

// Recorder writes the audit record for a finished attempt.
type Recorder interface {
	Record(attempt domain.ActivationAttempt) audit.Record
}

// Observer receives pipeline telemetry.
type Observer interface {
	Activation(state string)
	Stage(stage string, d time.Duration)
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source    ports.ContentSource
	Validator Validator
	Enricher  Enricher
	Analyzer  VoiceAnalyzer
	Publisher Publisher
	Recorder  Recorder
	Notifier  ports.ReviewNotifier
	Observer  Observer
	Logger    *slog.Logger

	// NotifyAdvisory also sends review notices for advisory brand-voice results.
	NotifyAdvisory bool
	SourceTimeout  time.Duration
	NotifyTimeout  time.Duration

	Now   func() time.Time
	NewID func() string
}

// Pipeline implements the content-activation workflow:
// received -> validated -> enriched -> voice_checked -> published -> logged.
type Pipeline struct {
	source    ports.ContentSource
	validator Validator
	enricher  Enricher
	analyzer  VoiceAnalyzer
	publisher Publisher
	recorder  Recorder
	notifier  ports.ReviewNotifier
	observer  Observer
	logger    *slog.Logger

	notifyAdvisory bool
	sourceTimeout  time.Duration
	notifyTimeout  time.Duration

	now   func() time.Time
	newID func() string
}

// NewPipeline constructs the orchestration component. Source, Validator, Analyzer and Publisher
// are required; the rest are optional.
func NewPipeline(deps PipelineDeps) (*Pipeline, error) {
	switch {
	case deps.Source == nil:
		return nil, errors.New("pipeline: content source is required")
	case deps.Validator == nil:
		return nil, errors.New("pipeline: validator is required")
	case deps.Analyzer == nil:
		return nil, errors.New("pipeline: brand voice analyzer is required")
	case deps.Publisher == nil:
		return nil, errors.New("pipeline: publisher is required")
	}

	p := &Pipeline{
		source:         deps.Source,
		validator:      deps.Validator,
		enricher:       deps.Enricher,
		analyzer:       deps.Analyzer,
		publisher:      deps.Publisher,
		recorder:       deps.Recorder,
		notifier:       deps.Notifier,
		observer:       deps.Observer,
		logger:         deps.Logger,
		notifyAdvisory: deps.NotifyAdvisory,
		sourceTimeout:  deps.SourceTimeout,
		notifyTimeout:  deps.NotifyTimeout,
		now:            deps.Now,
		newID:          deps.NewID,
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	p.logger = p.logger.With("component", "pipeline")
	if p.sourceTimeout <= 0 {
		p.sourceTimeout = 10 * time.Second
	}
	if p.notifyTimeout <= 0 {
		p.notifyTimeout = 5 * time.Second
	}
	if p.now == nil {
		p.now = time.Now
	}
	if p.newID == nil {
		p.newID = uuid.NewString
	}
	return p, nil
}

// Activate runs one attempt end to end. The attempt is always returned and always recorded; the
// error is a *domain.ActivationError when the attempt stopped in a terminal state.
//
// Caller cancellation does not abort a running attempt; every blocking step carries its own
// timeout instead.
func (p *Pipeline) Activate(ctx context.Context, req domain.ActivationRequest) (attempt domain.ActivationAttempt, err error) {
	ctx = context.WithoutCancel(ctx)

	attempt = domain.ActivationAttempt{
		ID:        p.newID(),
		CreatedAt: p.now(),
		Request:   req,
		Errors:    []domain.ErrorEntry{},
	}
	transition(&attempt, domain.StateReceived)
	log := p.logger.With("activation_id", attempt.ID, "entry_id", req.ContentID)

	defer func() {
		if attempt.Success {
			transition(&attempt, domain.StateLogged)
		} else {
			// Failed attempts are logged too but keep their terminal state.
			attempt.History = append(attempt.History, domain.StateLogged)
		}
		attempt.FinishedAt = p.now()
		if p.recorder != nil {
			p.recorder.Record(attempt)
		}
		if p.observer != nil {
			p.observer.Activation(string(attempt.State))
		}
		log.Info("activation finished", "state", attempt.State, "success", attempt.Success,
			"duration_ms", attempt.Duration().Milliseconds())
	}()

	err = p.run(ctx, &attempt, log)
	return attempt, err
}

func (p *Pipeline) run(ctx context.Context, attempt *domain.ActivationAttempt, log *slog.Logger) error {
	req := attempt.Request

	if strings.TrimSpace(req.ContentID) == "" {
		return p.reject(attempt, domain.StageSource, "invalid_request", "entry_id is required", nil)
	}

	// source
	started := time.Now()
	sourceCtx, cancel := context.WithTimeout(ctx, p.sourceTimeout)
	raw, err := p.source.GetArticle(sourceCtx, req.ContentID)
	cancel()
	p.stage(domain.StageSource, started)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrContentNotFound):
			return p.reject(attempt, domain.StageSource, "not_found",
				fmt.Sprintf("content entry %q was not found; check the entry id in the CMS", req.ContentID), err)
		case errors.Is(err, context.DeadlineExceeded):
			return p.reject(attempt, domain.StageSource, "timeout",
				fmt.Sprintf("the CMS did not answer within %s; retry later", p.sourceTimeout), err)
		default:
			return p.reject(attempt, domain.StageSource, "source",
				"could not load content from the CMS: "+err.Error(), err)
		}
	}
	attempt.Raw = &raw

	// validation
	started = time.Now()
	opts := validation.Options{VisionAvailable: req.EnrichmentEnabled && p.enricher != nil && p.enricher.VisionAvailable()}
	record, err := p.validator.Validate(raw, opts)
	p.stage(domain.StageValidation, started)
	if err != nil {
		var vErr *domain.ValidationError
		if !errors.As(err, &vErr) {
			return p.reject(attempt, domain.StageValidation, "validation", err.Error(), err)
		}
		attempt.Validation = domain.ValidationSummary{Valid: false, Issues: vErr.Issues}
		for _, issue := range vErr.Issues {
			attempt.Errors = append(attempt.Errors, domain.ErrorEntry{
				Stage: domain.StageValidation, Kind: "validation", Message: issue.String(),
			})
		}
		transition(attempt, domain.StateRejected)
		return &domain.ActivationError{
			Stage:   domain.StageValidation,
			State:   domain.StateRejected,
			Message: vErr.Error(),
			Err:     vErr,
		}
	}
	attempt.Record = &record
	attempt.Validation = domain.ValidationSummary{Valid: true}
	transition(attempt, domain.StateValidated)
	log.Debug("content validated", "tags", record.Tags, "images", len(record.ImageURLs))

	// enrichment
	if req.EnrichmentEnabled && p.enricher != nil {
		started = time.Now()
		result := p.enricher.Enrich(ctx, record)
		p.stage(domain.StageEnrichment, started)
		attempt.Enrichment = &result
		for _, e := range result.Errors {
			attempt.Errors = append(attempt.Errors, domain.ErrorEntry{
				Stage: domain.StageEnrichment, Kind: e.Kind, Message: e.String(),
			})
		}
		log.Debug("content enriched", "provider", result.Provider, "partial_failures", len(result.Errors))
	}
	transition(attempt, domain.StateEnriched)

	// brand voice
	started = time.Now()
	voice := p.analyzer.Analyze(voiceContent(record, attempt.Enrichment), brandvoice.Context{
		Tags:     record.Tags,
		Audience: record.Audience(),
	})
	p.stage(domain.StageBrandVoice, started)
	attempt.BrandVoice = &voice
	transition(attempt, domain.StateVoiceChecked)
	log.Debug("brand voice scored", "score", voice.OverallScore, "status", voice.OverallStatus)

	if !voice.Publishable() {
		block := &domain.QualityGateBlock{Score: voice.OverallScore, Failing: voice.Failing()}
		for _, cat := range block.Failing {
			attempt.Errors = append(attempt.Errors, domain.ErrorEntry{
				Stage:   domain.StageBrandVoice,
				Kind:    "quality_gate",
				Message: categoryMessage(cat),
			})
		}
		if len(block.Failing) == 0 {
			attempt.Errors = append(attempt.Errors, domain.ErrorEntry{
				Stage: domain.StageBrandVoice, Kind: "quality_gate", Message: block.Error(),
			})
		}
		transition(attempt, domain.StateBlocked)
		p.notify(ctx, *attempt, voice, log)
		return &domain.ActivationError{
			Stage:   domain.StageBrandVoice,
			State:   domain.StateBlocked,
			Message: block.Error(),
			Err:     block,
		}
	}
	if voice.OverallStatus == domain.VoiceAdvisory && p.notifyAdvisory {
		p.notify(ctx, *attempt, voice, log)
	}

	// publishing
	started = time.Now()
	published, err := p.publisher.Publish(ctx, publishing.CampaignInput{
		ActivationID: attempt.ID,
		ListID:       req.ListID,
		Record:       record,
		Enrichment:   attempt.Enrichment,
		BrandVoice:   &voice,
	})
	p.stage(domain.StagePublishing, started)
	attempt.Publishing = &published
	if err != nil {
		attempt.Errors = append(attempt.Errors, domain.ErrorEntry{
			Stage: domain.StagePublishing, Kind: "publishing", Message: err.Error(),
		})
		transition(attempt, domain.StatePublishFailed)
		return &domain.ActivationError{
			Stage:   domain.StagePublishing,
			State:   domain.StatePublishFailed,
			Message: "the marketing platform did not accept the campaign: " + err.Error() + "; retry the activation",
			Err:     err,
		}
	}

	transition(attempt, domain.StatePublished)
	attempt.Success = true
	return nil
}

func (p *Pipeline) reject(attempt *domain.ActivationAttempt, stage, kind, message string, cause error) error {
	attempt.Errors = append(attempt.Errors, domain.ErrorEntry{Stage: stage, Kind: kind, Message: message})
	transition(attempt, domain.StateRejected)
	return &domain.ActivationError{Stage: stage, State: domain.StateRejected, Message: message, Err: cause}
}

func (p *Pipeline) notify(ctx context.Context, attempt domain.ActivationAttempt, voice domain.BrandVoiceResult, log *slog.Logger) {
	if p.notifier == nil {
		return
	}
	notice := ports.ReviewNotice{
		ActivationID: attempt.ID,
		ContentID:    attempt.Request.ContentID,
		Status:       voice.OverallStatus,
		Score:        voice.OverallScore,
	}
	if attempt.Record != nil {
		notice.Title = attempt.Record.Title
	}
	for _, cat := range voice.Categories {
		if cat.Status == domain.VoiceFail {
			notice.Failing = append(notice.Failing, cat.Category)
		}
		notice.Recommendations = append(notice.Recommendations, cat.Recommendations...)
	}

	ctx, cancel := context.WithTimeout(ctx, p.notifyTimeout)
	defer cancel()
	if err := p.notifier.NotifyReview(ctx, notice); err != nil {
		log.Warn("review notification failed", "error", err)
	}
}

func (p *Pipeline) stage(stage string, started time.Time) {
	if p.observer != nil {
		p.observer.Stage(stage, time.Since(started))
	}
}

func transition(attempt *domain.ActivationAttempt, state domain.State) {
	attempt.State = state
	attempt.History = append(attempt.History, state)
}

func voiceContent(record domain.ContentRecord, enr *domain.EnrichmentResult) brandvoice.Content {
	content := brandvoice.Content{
		Title:        record.Title,
		Body:         record.Body,
		Summary:      record.Summary,
		CallToAction: record.CallToAction,
	}
	if enr != nil {
		content.MetaDescription = enr.MetaDescription
		content.Keywords = enr.Keywords
	}
	return content
}

func categoryMessage(cat domain.CategoryResult) string {
	msg := fmt.Sprintf("%s scored %.2f", cat.Category, cat.Score)
	if len(cat.Recommendations) > 0 {
		msg += ": " + strings.Join(cat.Recommendations, "; ")
	}
	return msg
}
