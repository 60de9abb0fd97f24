package domain

// CampaignImage is an image with the alt text that will ship with it.
type CampaignImage struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text,omitempty"`
}

// CampaignContent is the platform-neutral shape handed to a destination platform.
type CampaignContent struct {
	ActivationID string          `json:"activation_id"`
	ListID       string          `json:"list_id"`
	ContentID    string          `json:"content_id"`
	Name         string          `json:"name"`
	Subject      string          `json:"subject"`
	PreviewText  string          `json:"preview_text"`
	Body         string          `json:"body"`
	Keywords     []string        `json:"keywords,omitempty"`
	Tags         []string        `json:"tags"`
	Images       []CampaignImage `json:"images,omitempty"`
	CallToAction *CallToAction   `json:"call_to_action,omitempty"`
	VoiceScore   float64         `json:"voice_score"`
	VoiceStatus  VoiceStatus     `json:"voice_status"`
}

// PlatformResponse is the uniform result of a destination platform call.
type PlatformResponse struct {
	Success    bool           `json:"success"`
	CampaignID string         `json:"campaign_id,omitempty"`
	Raw        map[string]any `json:"platform_response,omitempty"`
}

// PublishingResult records the publishing stage of an attempt.
type PublishingResult struct {
	Platform   string         `json:"platform"`
	ListID     string         `json:"list_id"`
	Success    bool           `json:"success"`
	CampaignID string         `json:"campaign_id,omitempty"`
	Response   map[string]any `json:"platform_response,omitempty"`
	LatencyMS  int64          `json:"latency_ms"`
	Error      string         `json:"error,omitempty"`
}
