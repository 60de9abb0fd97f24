package enrichment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"ContentActivation/internal/domain"
	"ContentActivation/internal/ports"
)

const (
	defaultTextTimeout   = 30 * time.Second
	defaultVisionTimeout = 10 * time.Second
)

// Guard configures the rate limiter and circuit breaker wrapped around one provider.
type Guard struct {
	// RatePerSecond of zero disables limiting.
	RatePerSecond float64
	Burst         int
	// FailureThreshold consecutive failures open the breaker; zero disables it.
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// DefaultGuard allows 50 calls per minute with bursts of 5 and opens after 5 straight failures.
func DefaultGuard() Guard {
	return Guard{
		RatePerSecond:    50.0 / 60.0,
		Burst:            5,
		FailureThreshold: 5,
		OpenTimeout:      30 * time.Second,
	}
}

// Member is one position of a fallback chain.
type Member struct {
	Provider ports.Provider
	Guard    Guard
}

// CallObserver receives one event per provider invocation.
type CallObserver interface {
	ProviderCall(provider, outcome string)
}

// ChainOptions bounds every provider call.
type ChainOptions struct {
	TextTimeout   time.Duration
	VisionTimeout time.Duration
	Observer      CallObserver
}

type link struct {
	provider ports.Provider
	limiter  *rate.Limiter
	breaker  *gobreaker.CircuitBreaker
}

// Chain walks an ordered list of providers until one of them answers.
// Limiters and breakers are per provider and shared by all concurrent callers.
type Chain struct {
	links         []link
	textTimeout   time.Duration
	visionTimeout time.Duration
	observer      CallObserver
	logger        *slog.Logger
}

// Generation is a value produced by one provider of the chain.
type Generation struct {
	Text     string
	Provider string
	Model    string
	Tier     domain.ProviderTier
	Position int
	Attempts int
}

// Outcome is success only when the head of the chain answered with a real model.
func (g Generation) Outcome() domain.Outcome {
	if g.Position == 0 && g.Tier != domain.TierStub {
		return domain.OutcomeSuccess
	}
	return domain.OutcomeDegraded
}

// Check normalises raw provider output; an error rejects it as an invalid response.
type Check func(raw string) (string, error)

// ExhaustedError means no provider of the chain produced a usable value.
type ExhaustedError struct {
	Attempts int
	Failures []error
}

func (e *ExhaustedError) Error() string {
	if len(e.Failures) == 0 {
		return "no capable provider configured"
	}
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, f.Error())
	}
	return fmt.Sprintf("all %d provider attempts failed: %s", e.Attempts, strings.Join(parts, "; "))
}

func (e *ExhaustedError) Unwrap() []error { return e.Failures }

// Kind is the kind of the last failure.
func (e *ExhaustedError) Kind() domain.ProviderErrorKind {
	if len(e.Failures) == 0 {
		return domain.ProviderUnavailable
	}
	last := e.Failures[len(e.Failures)-1]
	if errors.Is(last, context.DeadlineExceeded) {
		return domain.ProviderTimeout
	}
	return domain.ProviderKindOf(last)
}

// NewChain builds a fallback chain in the given order.
func NewChain(logger *slog.Logger, opts ChainOptions, members ...Member) (*Chain, error) {
	if len(members) == 0 {
		return nil, errors.New("fallback chain needs at least one provider")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "provider-chain")

	c := &Chain{
		textTimeout:   opts.TextTimeout,
		visionTimeout: opts.VisionTimeout,
		observer:      opts.Observer,
		logger:        logger,
	}
	if c.textTimeout <= 0 {
		c.textTimeout = defaultTextTimeout
	}
	if c.visionTimeout <= 0 {
		c.visionTimeout = defaultVisionTimeout
	}

	for _, m := range members {
		if m.Provider == nil {
			return nil, errors.New("fallback chain member has no provider")
		}
		c.links = append(c.links, newLink(logger, m))
	}
	return c, nil
}

func newLink(logger *slog.Logger, m Member) link {
	limit := rate.Inf
	burst := m.Guard.Burst
	if m.Guard.RatePerSecond > 0 {
		limit = rate.Limit(m.Guard.RatePerSecond)
	}
	if burst <= 0 {
		burst = 1
	}

	threshold := m.Guard.FailureThreshold
	settings := gobreaker.Settings{
		Name:        m.Provider.Name(),
		MaxRequests: 1,
		Timeout:     m.Guard.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return threshold > 0 && counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("provider breaker state changed", "provider", name, "from", from.String(), "to", to.String())
		},
		// Rejections of a single prompt say nothing about provider health.
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			switch domain.ProviderKindOf(err) {
			case domain.ProviderContentFilter, domain.ProviderInvalidResponse:
				return true
			default:
				return false
			}
		},
	}

	return link{
		provider: m.Provider,
		limiter:  rate.NewLimiter(limit, burst),
		breaker:  gobreaker.NewCircuitBreaker(settings),
	}
}

// Providers lists the chain members in order.
func (c *Chain) Providers() []ports.Provider {
	out := make([]ports.Provider, 0, len(c.links))
	for _, l := range c.links {
		out = append(out, l.provider)
	}
	return out
}

// SupportsVision reports whether any member can describe images.
func (c *Chain) SupportsVision() bool {
	for _, l := range c.links {
		if l.provider.SupportsVision() {
			return true
		}
	}
	return false
}

// Text generates text with the first provider that answers and passes check.
func (c *Chain) Text(ctx context.Context, prompt string, gctx ports.GenerationContext, check Check) (Generation, error) {
	return c.run(ctx, false, c.textTimeout, func(ctx context.Context, p ports.Provider) (string, error) {
		out, err := p.GenerateText(ctx, prompt, gctx)
		if err != nil {
			return "", err
		}
		if check == nil {
			return out, nil
		}
		cleaned, err := check(out)
		if err != nil {
			return "", domain.NewProviderError(p.Name(), domain.ProviderInvalidResponse, err)
		}
		return cleaned, nil
	})
}

// Describe asks vision-capable providers, in order, to describe img.
func (c *Chain) Describe(ctx context.Context, img domain.Image, prompt string, gctx ports.GenerationContext) (Generation, error) {
	return c.run(ctx, true, c.visionTimeout, func(ctx context.Context, p ports.Provider) (string, error) {
		out, err := p.DescribeImage(ctx, img, prompt, gctx)
		if err != nil {
			return "", err
		}
		out = strings.TrimSpace(out)
		if out == "" {
			return "", domain.NewProviderError(p.Name(), domain.ProviderInvalidResponse, errors.New("empty description"))
		}
		return out, nil
	})
}

type invocation func(ctx context.Context, p ports.Provider) (string, error)

func (c *Chain) run(ctx context.Context, vision bool, timeout time.Duration, call invocation) (Generation, error) {
	exhausted := &ExhaustedError{}
	for pos, l := range c.links {
		if vision && !l.provider.SupportsVision() {
			continue
		}
		if err := ctx.Err(); err != nil {
			exhausted.Failures = append(exhausted.Failures, err)
			break
		}

		name := l.provider.Name()
		exhausted.Attempts++
		out, err := l.invoke(ctx, timeout, call)
		if err == nil {
			c.observe(name, string(domain.OutcomeSuccess))
			return Generation{
				Text:     out,
				Provider: name,
				Model:    l.provider.Model(),
				Tier:     l.provider.Tier(),
				Position: pos,
				Attempts: exhausted.Attempts,
			}, nil
		}

		kind := domain.ProviderKindOf(err)
		c.observe(name, string(kind))
		c.logger.Warn("provider call failed, advancing chain",
			"provider", name,
			"position", pos,
			"kind", kind,
			"error", err,
		)
		exhausted.Failures = append(exhausted.Failures, err)
	}
	return Generation{}, exhausted
}

func (c *Chain) observe(provider, outcome string) {
	if c.observer != nil {
		c.observer.ProviderCall(provider, outcome)
	}
}

func (l link) invoke(ctx context.Context, timeout time.Duration, call invocation) (string, error) {
	name := l.provider.Name()

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := l.limiter.Wait(callCtx); err != nil {
		return "", domain.NewProviderError(name, domain.ProviderRateLimited, fmt.Errorf("local rate limit: %w", err))
	}

	res, err := l.breaker.Execute(func() (interface{}, error) {
		out, err := call(callCtx, l.provider)
		if err != nil {
			return nil, classify(callCtx, name, err)
		}
		return out, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", domain.NewProviderError(name, domain.ProviderUnavailable, err)
		}
		return "", err
	}
	return res.(string), nil
}

// classify makes sure every failure leaving a link is a ProviderError.
func classify(ctx context.Context, provider string, err error) error {
	var pErr *domain.ProviderError
	if errors.As(err, &pErr) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.NewProviderError(provider, domain.ProviderTimeout, err)
	}
	return domain.NewProviderError(provider, domain.ProviderUnavailable, err)
}
