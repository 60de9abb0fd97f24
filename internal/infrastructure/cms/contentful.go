package cms

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"ContentActivation/internal/domain"
	"ContentActivation/internal/ports"
)

// EntrySource fetches article entries from a Contentful-style delivery API:
// GET {baseURL}/entries/{id}?include=1 returning sys, fields and linked assets.
type EntrySource struct {
	baseURL string
	token   string
	client  *http.Client
	policy  *bluemonday.Policy
	logger  *slog.Logger
}

var _ ports.ContentSource = (*EntrySource)(nil)

// NewEntrySource wires an HTTP client; a nil client gets a 10s default.
func NewEntrySource(baseURL, token string, client *http.Client, logger *slog.Logger) *EntrySource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &EntrySource{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		client:  client,
		policy:  bluemonday.UGCPolicy(),
		logger:  logger,
	}
}

type link struct {
	Sys struct {
		ID       string `json:"id"`
		LinkType string `json:"linkType"`
	} `json:"sys"`
}

type entryResponse struct {
	Sys struct {
		ID string `json:"id"`
	} `json:"sys"`
	Fields struct {
		Title         string   `json:"title"`
		Body          string   `json:"body"`
		Summary       string   `json:"summary"`
		AISummary     string   `json:"aiSummary"`
		CampaignTags  []string `json:"campaignTags"`
		HasImages     bool     `json:"hasImages"`
		AltText       string   `json:"altText"`
		CTAText       string   `json:"ctaText"`
		CTAURL        string   `json:"ctaUrl"`
		FeaturedImage *link    `json:"featuredImage"`
		ImageGallery  []link   `json:"imageGallery"`
	} `json:"fields"`
	Includes struct {
		Asset []struct {
			Sys struct {
				ID string `json:"id"`
			} `json:"sys"`
			Fields struct {
				File struct {
					URL         string `json:"url"`
					ContentType string `json:"contentType"`
				} `json:"file"`
			} `json:"fields"`
		} `json:"Asset"`
	} `json:"includes"`
}

// GetArticle loads one entry; unknown ids map to domain.ErrContentNotFound.
func (s *EntrySource) GetArticle(ctx context.Context, id string) (domain.RawContent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.RawContent{}, fmt.Errorf("entry id is empty: %w", domain.ErrContentNotFound)
	}

	entryURL := s.baseURL + "/entries/" + url.PathEscape(id) + "?include=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, entryURL, nil)
	if err != nil {
		return domain.RawContent{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ContentActivation/1.0")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return domain.RawContent{}, fmt.Errorf("request entry %s: %w", id, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.RawContent{}, fmt.Errorf("entry %s: %w", id, domain.ErrContentNotFound)
	case resp.StatusCode != http.StatusOK:
		return domain.RawContent{}, fmt.Errorf("cms returned %s for entry %s", resp.Status, id)
	}

	var entry entryResponse
	if err := json.NewDecoder(resp.Body).Decode(&entry); err != nil {
		return domain.RawContent{}, fmt.Errorf("decode entry %s: %w", id, err)
	}

	raw := s.toRaw(entry)
	s.debug("entry loaded", "entry_id", raw.ID, "images", len(raw.ImageURLs), "tags", len(raw.Tags))
	return raw, nil
}

func (s *EntrySource) toRaw(entry entryResponse) domain.RawContent {
	f := entry.Fields
	summary := f.Summary
	if summary == "" {
		summary = f.AISummary
	}

	body := s.policy.Sanitize(f.Body)
	images := ExtractImageURLs(body)

	assets := map[string]string{}
	for _, a := range entry.Includes.Asset {
		if strings.HasPrefix(a.Fields.File.ContentType, "image/") || a.Fields.File.ContentType == "" {
			assets[a.Sys.ID] = a.Fields.File.URL
		}
	}
	links := f.ImageGallery
	if f.FeaturedImage != nil {
		links = append([]link{*f.FeaturedImage}, links...)
	}
	for _, l := range links {
		if u := assets[l.Sys.ID]; u != "" {
			images = appendUnique(images, u)
		}
	}

	return domain.RawContent{
		ID:        entry.Sys.ID,
		Title:     f.Title,
		Body:      body,
		Summary:   summary,
		Tags:      f.CampaignTags,
		HasImages: f.HasImages,
		ImageURLs: images,
		AltText:   f.AltText,
		CTAText:   f.CTAText,
		CTAURL:    f.CTAURL,
	}
}

func (s *EntrySource) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
