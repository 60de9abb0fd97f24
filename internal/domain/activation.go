package domain

import "time"

// ActivationRequest is the inbound trigger for one activation.
type ActivationRequest struct {
	ContentID         string `json:"entry_id"`
	ListID            string `json:"list_id"`
	EnrichmentEnabled bool   `json:"enrichment_enabled"`
}

// State enumerates pipeline milestones and terminal outcomes.
type State string

const (
	StateReceived      State = "received"
	StateValidated     State = "validated"
	StateEnriched      State = "enriched"
	StateVoiceChecked  State = "voice_checked"
	StatePublished     State = "published"
	StateLogged        State = "logged"
	StateRejected      State = "rejected"
	StateBlocked       State = "blocked"
	StatePublishFailed State = "publish_failed"
)

// Terminal reports whether the state ends the pipeline before publishing succeeds.
func (s State) Terminal() bool {
	switch s {
	case StateRejected, StateBlocked, StatePublishFailed:
		return true
	default:
		return false
	}
}

// Pipeline stages used in error entries.
const (
	StageSource     = "source"
	StageValidation = "validation"
	StageEnrichment = "enrichment"
	StageBrandVoice = "brand_voice"
	StagePublishing = "publishing"
)

// ErrorEntry is a structured, user-facing error attached to an attempt.
type ErrorEntry struct {
	Stage   string `json:"stage"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (e ErrorEntry) String() string {
	return e.Stage + ": " + e.Message
}

// ValidationSummary captures the validator outcome for the audit trail.
type ValidationSummary struct {
	Valid  bool         `json:"valid"`
	Issues []FieldIssue `json:"issues,omitempty"`
}

// ActivationAttempt is the unit of work: populated stage by stage, immutable once logged.
type ActivationAttempt struct {
	ID         string
	CreatedAt  time.Time
	FinishedAt time.Time
	Request    ActivationRequest
	State      State
	History    []State
	Raw        *RawContent
	Record     *ContentRecord
	Validation ValidationSummary
	Enrichment *EnrichmentResult
	BrandVoice *BrandVoiceResult
	Publishing *PublishingResult
	Success    bool
	Errors     []ErrorEntry
}

// Duration returns the wall time spent on the attempt.
func (a ActivationAttempt) Duration() time.Duration {
	if a.FinishedAt.IsZero() {
		return 0
	}
	return a.FinishedAt.Sub(a.CreatedAt)
}
