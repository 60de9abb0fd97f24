package destination

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"sync"

	"ContentActivation/internal/domain"
	"ContentActivation/internal/ports"
)

// DemoLists are the audience lists the mock platform accepts.
var DemoLists = map[string]string{
	"ML_DEMO_001": "Product Launch Prospects",
	"ML_DEMO_002": "Thought Leadership Audience",
	"ML_DEMO_003": "Developer Community",
	"HS_LIST_001": "Marketing Qualified Leads",
	"HS_LIST_002": "Newsletter Subscribers",
}

// Mock is an in-memory platform. Campaign ids are derived from the activation and list so the same
// attempt always maps to the same id.
type Mock struct {
	lists map[string]string

	mu        sync.Mutex
	campaigns []domain.CampaignContent
}

var _ ports.Platform = (*Mock)(nil)

func NewMock() *Mock {
	return &Mock{lists: DemoLists}
}

func (m *Mock) Name() string { return "mock" }

func (m *Mock) CreateCampaign(ctx context.Context, content domain.CampaignContent) (domain.PlatformResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.PlatformResponse{}, err
	}
	listName, ok := m.lists[content.ListID]
	if !ok {
		return domain.PlatformResponse{
			Raw: map[string]any{"error": "unknown_list", "list_id": content.ListID},
		}, fmt.Errorf("list %q does not exist; available lists: %v", content.ListID, m.ListIDs())
	}

	sum := sha256.Sum256([]byte(content.ActivationID + "|" + content.ListID + "|" + content.ContentID))
	id := "mock_" + hex.EncodeToString(sum[:6])

	m.mu.Lock()
	m.campaigns = append(m.campaigns, content)
	m.mu.Unlock()

	return domain.PlatformResponse{
		Success:    true,
		CampaignID: id,
		Raw: map[string]any{
			"campaign_id": id,
			"list_id":     content.ListID,
			"list_name":   listName,
			"status":      "draft",
			"images":      len(content.Images),
		},
	}, nil
}

func (m *Mock) Ping(context.Context) error { return nil }

// ListIDs returns the accepted list ids in sorted order.
func (m *Mock) ListIDs() []string {
	ids := make([]string, 0, len(m.lists))
	for id := range m.lists {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Campaigns returns what has been created so far.
func (m *Mock) Campaigns() []domain.CampaignContent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.CampaignContent(nil), m.campaigns...)
}
