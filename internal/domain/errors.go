package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrContentNotFound is returned by content sources for unknown entry ids.
var ErrContentNotFound = errors.New("content not found")

// FieldIssue is a single validation failure with optional correction hints.
type FieldIssue struct {
	Field       string   `json:"field"`
	Message     string   `json:"message"`
	Value       string   `json:"value,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (i FieldIssue) String() string {
	msg := i.Field + ": " + i.Message
	if len(i.Suggestions) > 0 {
		msg += " (did you mean " + strings.Join(i.Suggestions, ", ") + "?)"
	}
	return msg
}

// ValidationError reports malformed or non-compliant input. Always terminal for the attempt.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		parts = append(parts, issue.String())
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ProviderErrorKind classifies why a provider call failed.
type ProviderErrorKind string

const (
	ProviderTimeout         ProviderErrorKind = "timeout"
	ProviderAuth            ProviderErrorKind = "auth"
	ProviderRateLimited     ProviderErrorKind = "rate_limit"
	ProviderContentFilter   ProviderErrorKind = "content_filter"
	ProviderUnavailable     ProviderErrorKind = "unavailable"
	ProviderInvalidResponse ProviderErrorKind = "invalid_response"
)

// ProviderError is a failed generation call; recovered by advancing the fallback chain.
type ProviderError struct {
	Provider string
	Kind     ProviderErrorKind
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s: %v", e.Provider, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// NewProviderError wraps err with a provider name and kind.
func NewProviderError(provider string, kind ProviderErrorKind, err error) *ProviderError {
	return &ProviderError{Provider: provider, Kind: kind, Err: err}
}

// ProviderKindOf extracts the kind from err, defaulting to unavailable.
func ProviderKindOf(err error) ProviderErrorKind {
	var pErr *ProviderError
	if errors.As(err, &pErr) {
		return pErr.Kind
	}
	return ProviderUnavailable
}

// QualityGateBlock is returned when the overall brand-voice status is fail.
type QualityGateBlock struct {
	Score   float64
	Failing []CategoryResult
}

func (e *QualityGateBlock) Error() string {
	names := make([]string, 0, len(e.Failing))
	for _, cat := range e.Failing {
		names = append(names, string(cat.Category))
	}
	if len(names) == 0 {
		return fmt.Sprintf("brand voice score %.2f is below the publishing threshold", e.Score)
	}
	return fmt.Sprintf("brand voice score %.2f is below the publishing threshold; failing categories: %s",
		e.Score, strings.Join(names, ", "))
}

// PublishingError means the destination platform rejected the campaign or was unreachable.
type PublishingError struct {
	Platform string
	Err      error
}

func (e *PublishingError) Error() string {
	return fmt.Sprintf("platform %s: %v", e.Platform, e.Err)
}

func (e *PublishingError) Unwrap() error { return e.Err }

// ActivationError is the user-visible failure of an attempt: the stage it stopped at plus an
// actionable message. The underlying cause is kept for errors.As.
type ActivationError struct {
	Stage   string
	State   State
	Message string
	Err     error
}

func (e *ActivationError) Error() string {
	return e.Stage + ": " + e.Message
}

func (e *ActivationError) Unwrap() error { return e.Err }
