package ports

import (
	"context"

	"ContentActivation/internal/domain"
)

// ContentSource pulls a single article from the CMS.
type ContentSource interface {
	GetArticle(ctx context.Context, id string) (domain.RawContent, error)
}

// GenerationContext carries article context into prompts. Field names what is being generated.
type GenerationContext struct {
	Field    string
	Title    string
	Tags     []string
	Audience string
	Excerpt  string
}

// Provider is an interchangeable text and vision generation backend.
type Provider interface {
	Name() string
	Model() string
	Tier() domain.ProviderTier
	SupportsVision() bool
	GenerateText(ctx context.Context, prompt string, gctx GenerationContext) (string, error)
	DescribeImage(ctx context.Context, img domain.Image, prompt string, gctx GenerationContext) (string, error)
}

// ImageFetcher downloads an image reference and checks its format and size.
type ImageFetcher interface {
	Fetch(ctx context.Context, url string) (domain.Image, error)
}

// Platform is the uniform destination contract for marketing-automation systems.
type Platform interface {
	Name() string
	CreateCampaign(ctx context.Context, content domain.CampaignContent) (domain.PlatformResponse, error)
	Ping(ctx context.Context) error
}

// ReviewNotice asks a human to look at an activation that did not pass cleanly.
type ReviewNotice struct {
	ActivationID    string
	ContentID       string
	Title           string
	Status          domain.VoiceStatus
	Score           float64
	Failing         []domain.VoiceCategory
	Recommendations []string
}

// ReviewNotifier forwards review notices to editors (Telegram or other channels).
type ReviewNotifier interface {
	NotifyReview(ctx context.Context, notice ReviewNotice) error
}

// Scheduler controls when recurring jobs execute.
type Scheduler interface {
	Schedule(spec string, job func()) error
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}
