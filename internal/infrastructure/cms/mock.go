package cms

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ContentActivation/internal/domain"
	"ContentActivation/internal/ports"
)

// SampleEntryID is the article the mock source always knows about.
const SampleEntryID = "sample-marketing-article"

// MockSource serves articles from memory. It starts with one sample article.
type MockSource struct {
	mu      sync.RWMutex
	entries map[string]domain.RawContent
}

var _ ports.ContentSource = (*MockSource)(nil)

func NewMockSource() *MockSource {
	return &MockSource{entries: map[string]domain.RawContent{SampleEntryID: SampleArticle()}}
}

// SampleArticle is a valid marketing article with an image that still needs alt text.
func SampleArticle() domain.RawContent {
	return domain.RawContent{
		ID:    SampleEntryID,
		Title: "Sample Marketing Article",
		Body: "This is a sample article body with sufficient length to meet validation requirements. " +
			"Marketing automation is transforming how businesses engage with prospects and customers " +
			"across the entire lifecycle.",
		Summary:   "Brief overview of marketing automation benefits",
		Tags:      []string{"thought-leadership", "marketer", "awareness"},
		HasImages: true,
		ImageURLs: []string{"https://images.ctfassets.net/sample/automation-dashboard.png"},
		AltText:   "Marketing automation dashboard screenshot",
		CTAText:   "Learn More",
		CTAURL:    "https://example.com/learn-more",
	}
}

// Put adds or replaces an article.
func (m *MockSource) Put(raw domain.RawContent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[raw.ID] = raw
}

func (m *MockSource) GetArticle(ctx context.Context, id string) (domain.RawContent, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawContent{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	raw, ok := m.entries[strings.TrimSpace(id)]
	if !ok {
		return domain.RawContent{}, fmt.Errorf("entry %s: %w", id, domain.ErrContentNotFound)
	}
	raw.Tags = append([]string(nil), raw.Tags...)
	raw.ImageURLs = append([]string(nil), raw.ImageURLs...)
	return raw, nil
}
