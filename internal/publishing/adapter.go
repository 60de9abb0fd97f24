package publishing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ContentActivation/internal/domain"
	"ContentActivation/internal/ports"
)

const defaultTimeout = 15 * time.Second

// Adapter hands a campaign to the configured destination platform.
type Adapter struct {
	platform ports.Platform
	timeout  time.Duration
	logger   *slog.Logger
}

// NewAdapter picks the platform named by selector out of the registry.
func NewAdapter(logger *slog.Logger, registry *Registry, selector string, timeout time.Duration) (*Adapter, error) {
	platform, err := registry.Resolve(selector)
	if err != nil {
		return nil, fmt.Errorf("publishing adapter: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		platform: platform,
		timeout:  timeout,
		logger:   logger.With("component", "publishing", "platform", platform.Name()),
	}, nil
}

// Platform returns the destination name.
func (a *Adapter) Platform() string {
	return a.platform.Name()
}

// Ping checks the destination is reachable.
func (a *Adapter) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	return a.platform.Ping(ctx)
}

// Publish maps the input into a campaign and creates it on the platform. The result is filled
// even on failure; the error is always a *domain.PublishingError.
func (a *Adapter) Publish(ctx context.Context, in CampaignInput) (domain.PublishingResult, error) {
	content := BuildCampaign(in)
	result := domain.PublishingResult{Platform: a.platform.Name(), ListID: in.ListID}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	started := time.Now()
	resp, err := a.platform.CreateCampaign(ctx, content)
	result.LatencyMS = time.Since(started).Milliseconds()
	result.Response = resp.Raw

	if err == nil && !resp.Success {
		err = errors.New("campaign rejected by platform")
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("no response within %s: %w", a.timeout, err)
		}
		pubErr := &domain.PublishingError{Platform: a.platform.Name(), Err: err}
		result.Error = pubErr.Error()
		a.logger.Warn("publish failed", "content_id", content.ContentID, "list_id", in.ListID, "error", err)
		return result, pubErr
	}

	result.Success = true
	result.CampaignID = resp.CampaignID
	a.logger.Debug("campaign created", "content_id", content.ContentID, "campaign_id", resp.CampaignID,
		"latency_ms", result.LatencyMS)
	return result, nil
}
