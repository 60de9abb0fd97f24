package publishing

import (
	"strings"

	"ContentActivation/internal/domain"
)

const maxPreviewText = 160

// CampaignInput is everything the mapper needs from an activation attempt.
type CampaignInput struct {
	ActivationID string
	ListID       string
	Record       domain.ContentRecord
	Enrichment   *domain.EnrichmentResult
	BrandVoice   *domain.BrandVoiceResult
}

// BuildCampaign maps a validated record plus its enrichment into the platform-neutral campaign.
// Preview text prefers the generated meta description and falls back to the summary, then to the
// start of the body.
func BuildCampaign(in CampaignInput) domain.CampaignContent {
	rec := in.Record
	content := domain.CampaignContent{
		ActivationID: in.ActivationID,
		ListID:       in.ListID,
		ContentID:    rec.ID,
		Name:         campaignName(rec),
		Subject:      rec.Title,
		Body:         rec.Body,
		Tags:         append([]string(nil), rec.Tags...),
	}
	if rec.CallToAction != nil {
		cta := *rec.CallToAction
		content.CallToAction = &cta
	}

	var meta string
	var alts map[string]string
	if in.Enrichment != nil {
		meta = in.Enrichment.MetaDescription
		content.Keywords = append([]string(nil), in.Enrichment.Keywords...)
		alts = in.Enrichment.AltTexts
	}

	switch {
	case meta != "":
		content.PreviewText = meta
	case rec.Summary != "":
		content.PreviewText = rec.Summary
	default:
		content.PreviewText = preview(rec.Body)
	}

	for _, u := range rec.ImageURLs {
		alt := rec.AltText
		if alt == "" {
			alt = alts[domain.ImageKey(u)]
		}
		content.Images = append(content.Images, domain.CampaignImage{URL: u, AltText: alt})
	}

	if in.BrandVoice != nil {
		content.VoiceScore = in.BrandVoice.OverallScore
		content.VoiceStatus = in.BrandVoice.OverallStatus
	}
	return content
}

func campaignName(rec domain.ContentRecord) string {
	return rec.Title + " [" + rec.ID + "]"
}

func preview(body string) string {
	fields := strings.Fields(body)
	var b strings.Builder
	for _, w := range fields {
		if b.Len()+len(w)+1 > maxPreviewText {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(w)
	}
	return b.String()
}
