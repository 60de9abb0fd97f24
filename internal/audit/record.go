package audit

import (
	"time"

	"ContentActivation/internal/domain"
)

// Record is one line of the activation log. Field names and nullability are a stable contract
// for downstream readers.
type Record struct {
	ActivationID       string                   `json:"activation_id"`
	Timestamp          string                   `json:"timestamp"`
	Success            bool                     `json:"success"`
	ContentInput       ContentInput             `json:"content_input"`
	ValidationResults  domain.ValidationSummary `json:"validation_results"`
	AIEnrichment       *domain.EnrichmentResult `json:"ai_enrichment"`
	BrandVoiceAnalysis *domain.BrandVoiceResult `json:"brand_voice_analysis"`
	PlatformPublishing *domain.PublishingResult `json:"platform_publishing"`
	Errors             []string                 `json:"errors"`
	ProcessingMetadata Metadata                 `json:"processing_metadata"`
}

// ContentInput echoes the request and what the source returned for it.
type ContentInput struct {
	EntryID           string   `json:"entry_id"`
	ListID            string   `json:"list_id"`
	EnrichmentEnabled bool     `json:"enrichment_enabled"`
	Title             string   `json:"title,omitempty"`
	Tags              []string `json:"tags,omitempty"`
	HasImages         bool     `json:"has_images"`
	ImageCount        int      `json:"image_count"`
}

// Metadata summarises how the attempt ran.
type Metadata struct {
	ProviderUsed    string                    `json:"provider_used"`
	ModelUsed       string                    `json:"model_used"`
	ChainPositions  map[string]int            `json:"chain_positions"`
	Outcomes        map[string]domain.Outcome `json:"outcomes"`
	StageLatencyMS  map[string]int64          `json:"stage_latency_ms"`
	FinalState      domain.State              `json:"final_state"`
	StateHistory    []domain.State            `json:"state_history"`
	TotalDurationMS int64                     `json:"total_duration_ms"`
}

// FromAttempt flattens an attempt into its log record.
func FromAttempt(a domain.ActivationAttempt) Record {
	finished := a.FinishedAt
	if finished.IsZero() {
		finished = a.CreatedAt
	}

	rec := Record{
		ActivationID:       a.ID,
		Timestamp:          finished.UTC().Format(time.RFC3339),
		Success:            a.Success,
		ValidationResults:  a.Validation,
		AIEnrichment:       a.Enrichment,
		BrandVoiceAnalysis: a.BrandVoice,
		PlatformPublishing: a.Publishing,
		Errors:             make([]string, 0, len(a.Errors)),
		ContentInput: ContentInput{
			EntryID:           a.Request.ContentID,
			ListID:            a.Request.ListID,
			EnrichmentEnabled: a.Request.EnrichmentEnabled,
		},
		ProcessingMetadata: Metadata{
			ChainPositions:  map[string]int{},
			Outcomes:        map[string]domain.Outcome{},
			StageLatencyMS:  map[string]int64{},
			FinalState:      a.State,
			StateHistory:    append([]domain.State(nil), a.History...),
			TotalDurationMS: a.Duration().Milliseconds(),
		},
	}

	for _, e := range a.Errors {
		rec.Errors = append(rec.Errors, e.String())
	}

	if a.Raw != nil {
		rec.ContentInput.Title = a.Raw.Title
		rec.ContentInput.Tags = append([]string(nil), a.Raw.Tags...)
		rec.ContentInput.HasImages = a.Raw.HasImages
		rec.ContentInput.ImageCount = len(a.Raw.ImageURLs)
	}

	meta := &rec.ProcessingMetadata
	if enr := a.Enrichment; enr != nil {
		meta.ProviderUsed = enr.Provider
		meta.ModelUsed = enr.Model
		for field, p := range enr.Provenance {
			meta.ChainPositions[field] = p.ChainPosition
			meta.Outcomes[field] = p.Outcome
		}
		for stage, ms := range enr.StageLatencyMS {
			meta.StageLatencyMS[stage] = ms
		}
	}
	if a.Publishing != nil {
		meta.StageLatencyMS[domain.StagePublishing] = a.Publishing.LatencyMS
	}
	return rec
}
