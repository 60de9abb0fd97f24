package enrichment

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"ContentActivation/internal/domain"
	"ContentActivation/internal/ports"
)

type fakeProvider struct {
	name   string
	tier   domain.ProviderTier
	vision bool

	text  func(prompt string) (string, error)
	image func(prompt string) (string, error)

	mu          sync.Mutex
	textCalls   int
	imageCalls  int
	imagePrompt []string
}

func (f *fakeProvider) Name() string              { return f.name }
func (f *fakeProvider) Model() string             { return f.name + "-model" }
func (f *fakeProvider) Tier() domain.ProviderTier { return f.tier }
func (f *fakeProvider) SupportsVision() bool      { return f.vision }

func (f *fakeProvider) GenerateText(ctx context.Context, prompt string, _ ports.GenerationContext) (string, error) {
	f.mu.Lock()
	f.textCalls++
	f.mu.Unlock()
	if f.text == nil {
		return "", domain.NewProviderError(f.name, domain.ProviderUnavailable, errors.New("no text"))
	}
	return f.text(prompt)
}

func (f *fakeProvider) DescribeImage(ctx context.Context, _ domain.Image, prompt string, _ ports.GenerationContext) (string, error) {
	f.mu.Lock()
	f.imageCalls++
	f.imagePrompt = append(f.imagePrompt, prompt)
	f.mu.Unlock()
	if f.image == nil {
		return "", domain.NewProviderError(f.name, domain.ProviderUnavailable, errors.New("no vision"))
	}
	return f.image(prompt)
}

func (f *fakeProvider) calls() (text, image int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.textCalls, f.imageCalls
}

// goodText answers meta description and keyword prompts with valid output.
func goodText(prompt string) (string, error) {
	if strings.Contains(prompt, "SEO keywords") {
		return "Marketing Automation, lead scoring, campaign analytics, marketing automation", nil
	}
	return "\"Discover how marketing automation improves lead scoring and campaign results.\"", nil
}

func failing(kind domain.ProviderErrorKind) func(string) (string, error) {
	return func(string) (string, error) {
		return "", domain.NewProviderError("fake", kind, errors.New(string(kind)))
	}
}

func constant(s string) func(string) (string, error) {
	return func(string) (string, error) { return s, nil }
}

type fakeFetcher struct {
	fail map[string]error
}

func (f fakeFetcher) Fetch(_ context.Context, url string) (domain.Image, error) {
	if err := f.fail[url]; err != nil {
		return domain.Image{}, err
	}
	return domain.Image{URL: url, MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}, nil
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func members(providers ...ports.Provider) []Member {
	out := make([]Member, 0, len(providers))
	for _, p := range providers {
		out = append(out, Member{Provider: p})
	}
	return out
}
