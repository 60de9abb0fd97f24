package domain

// RawContent is an article as delivered by the content source, before validation.
type RawContent struct {
	ID        string
	Title     string
	Body      string
	Summary   string
	Tags      []string
	HasImages bool
	ImageURLs []string
	AltText   string
	CTAText   string
	CTAURL    string
}

// CallToAction is an optional closing prompt attached to an article.
type CallToAction struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// ContentRecord is a validated article ready for enrichment.
type ContentRecord struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Body         string        `json:"body"`
	Summary      string        `json:"summary,omitempty"`
	Tags         []string      `json:"tags"`
	HasImages    bool          `json:"has_images"`
	ImageURLs    []string      `json:"image_urls,omitempty"`
	AltText      string        `json:"alt_text,omitempty"`
	CallToAction *CallToAction `json:"call_to_action,omitempty"`
}

// NeedsAltText reports whether the vision sub-pipeline has work to do.
func (r ContentRecord) NeedsAltText() bool {
	return r.HasImages && r.AltText == ""
}

// Raw converts the record back into the shape a content source delivers.
func (r ContentRecord) Raw() RawContent {
	raw := RawContent{
		ID:        r.ID,
		Title:     r.Title,
		Body:      r.Body,
		Summary:   r.Summary,
		Tags:      append([]string(nil), r.Tags...),
		HasImages: r.HasImages,
		ImageURLs: append([]string(nil), r.ImageURLs...),
		AltText:   r.AltText,
	}
	if r.CallToAction != nil {
		raw.CTAText = r.CallToAction.Text
		raw.CTAURL = r.CallToAction.URL
	}
	return raw
}

// Image is a downloaded and format-checked image ready for a vision provider.
type Image struct {
	URL      string
	MIMEType string
	Data     []byte
}

// AudienceSegments are the tags that name who an article is written for.
var AudienceSegments = []string{
	"developer",
	"marketer",
	"enterprise",
	"startup",
	"technical-decision-maker",
	"content-creator",
	"product-manager",
	"executive",
}

// Audience returns the first audience-segment tag of the record, or an empty string.
func (r ContentRecord) Audience() string {
	for _, tag := range r.Tags {
		for _, segment := range AudienceSegments {
			if tag == segment {
				return tag
			}
		}
	}
	return ""
}
