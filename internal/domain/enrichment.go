package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ProviderTier describes what kind of generation backend a provider is.
type ProviderTier string

const (
	TierPrimary ProviderTier = "primary"
	TierLocal   ProviderTier = "local"
	TierStub    ProviderTier = "stub"
)

// Outcome tags how a generated field was obtained.
type Outcome string

const (
	// OutcomeSuccess means the first provider of the chain produced the value.
	OutcomeSuccess Outcome = "success"
	// OutcomeDegraded means a fallback provider or the deterministic stub produced it.
	OutcomeDegraded Outcome = "degraded"
	// OutcomeUnavailable means every provider in the chain failed.
	OutcomeUnavailable Outcome = "unavailable"
)

// Enrichment stage and field names used in provenance and error entries.
const (
	StageText   = "text"
	StageVision = "vision"

	FieldMetaDescription = "meta_description"
	FieldKeywords        = "keywords"
)

const maxImageKeyLength = 256

// ImageKey identifies an image reference in alt text maps. Data URLs and oversized references are
// replaced by a short digest so audit lines stay small.
func ImageKey(ref string) string {
	if len(ref) <= maxImageKeyLength && !strings.HasPrefix(strings.ToLower(ref), "data:") {
		return ref
	}
	sum := sha256.Sum256([]byte(ref))
	return "sha256:" + hex.EncodeToString(sum[:8])
}

// ImageField returns the provenance key for a single image.
func ImageField(ref string) string {
	return "image:" + ImageKey(ref)
}

// Provenance records which provider produced a field and how confident we are in it.
type Provenance struct {
	Provider      string  `json:"provider,omitempty"`
	Model         string  `json:"model,omitempty"`
	ChainPosition int     `json:"chain_position"`
	Outcome       Outcome `json:"outcome"`
	Attempts      int     `json:"attempts"`
	Confidence    float64 `json:"confidence"`
}

// StageError is a non-fatal enrichment failure scoped to a single field or image.
type StageError struct {
	Stage    string `json:"stage"`
	Field    string `json:"field"`
	Provider string `json:"provider,omitempty"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

func (e StageError) String() string {
	return e.Stage + "/" + e.Field + ": " + e.Message
}

// EnrichmentResult is built once per activation attempt and never mutated afterwards.
type EnrichmentResult struct {
	Provider        string                `json:"provider"`
	Model           string                `json:"model"`
	MetaDescription string                `json:"meta_description,omitempty"`
	Keywords        []string              `json:"keywords,omitempty"`
	KeywordDensity  map[string]float64    `json:"keyword_density,omitempty"`
	AltTexts        map[string]string     `json:"alt_texts,omitempty"` // keyed by ImageKey
	Provenance      map[string]Provenance `json:"provenance"`
	StageLatencyMS  map[string]int64      `json:"stage_latency_ms"`
	Errors          []StageError          `json:"errors"`
}

// Complete reports whether every requested field was produced.
func (r EnrichmentResult) Complete() bool {
	return len(r.Errors) == 0
}

// ImageError returns the recorded failure for an image, if any.
func (r EnrichmentResult) ImageError(url string) (StageError, bool) {
	for _, e := range r.Errors {
		if e.Stage == StageVision && e.Field == ImageField(url) {
			return e, true
		}
	}
	return StageError{}, false
}
