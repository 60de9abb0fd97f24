package images

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"ContentActivation/internal/domain"
	"ContentActivation/internal/ports"
)

const defaultMaxBytes = 10 << 20

var allowedTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// ErrUnsupportedFormat is returned for anything outside the jpeg, png, gif and webp allow-list.
var ErrUnsupportedFormat = errors.New("unsupported image format")

// ErrTooLarge is returned when an image exceeds the configured size.
var ErrTooLarge = errors.New("image exceeds size limit")

// Fetcher downloads image references (http, https or data URLs) and checks format and size.
type Fetcher struct {
	http     *http.Client
	maxBytes int64
}

var _ ports.ImageFetcher = (*Fetcher)(nil)

// NewFetcher creates a fetcher; maxBytes <= 0 uses 10 MiB.
func NewFetcher(client *http.Client, maxBytes int64) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	return &Fetcher{http: client, maxBytes: maxBytes}
}

// Fetch resolves ref into image bytes.
func (f *Fetcher) Fetch(ctx context.Context, ref string) (domain.Image, error) {
	if strings.HasPrefix(ref, "data:") {
		return f.decodeDataURL(ref)
	}

	u, err := url.Parse(ref)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return domain.Image{}, fmt.Errorf("image %s: unsupported reference", ref)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return domain.Image{}, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/gif, image/webp")

	resp, err := f.http.Do(req)
	if err != nil {
		return domain.Image{}, fmt.Errorf("fetch image %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Image{}, fmt.Errorf("fetch image %s: unexpected status %s", ref, resp.Status)
	}
	if resp.ContentLength > f.maxBytes {
		return domain.Image{}, fmt.Errorf("image %s: %w (%d bytes)", ref, ErrTooLarge, resp.ContentLength)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return domain.Image{}, fmt.Errorf("read image %s: %w", ref, err)
	}
	return f.check(ref, data)
}

func (f *Fetcher) decodeDataURL(ref string) (domain.Image, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(ref, "data:"), ",")
	if !ok {
		return domain.Image{}, errors.New("malformed data url")
	}

	var data []byte
	if strings.HasSuffix(meta, ";base64") {
		if int64(base64.StdEncoding.DecodedLen(len(payload))) > f.maxBytes+3 {
			return domain.Image{}, fmt.Errorf("data url: %w", ErrTooLarge)
		}
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return domain.Image{}, fmt.Errorf("decode data url: %w", err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return domain.Image{}, fmt.Errorf("decode data url: %w", err)
		}
		data = []byte(unescaped)
	}
	img, err := f.check("data url", data)
	if err != nil {
		return domain.Image{}, err
	}
	img.URL = ref
	return img, nil
}

// check sniffs the real content type rather than trusting headers.
func (f *Fetcher) check(ref string, data []byte) (domain.Image, error) {
	name := domain.ImageKey(ref)
	if int64(len(data)) > f.maxBytes {
		return domain.Image{}, fmt.Errorf("image %s: %w", name, ErrTooLarge)
	}
	if len(data) == 0 {
		return domain.Image{}, fmt.Errorf("image %s: empty body", name)
	}
	mime := http.DetectContentType(data)
	if _, ok := allowedTypes[mime]; !ok {
		return domain.Image{}, fmt.Errorf("image %s: %w: %s", name, ErrUnsupportedFormat, mime)
	}
	return domain.Image{URL: ref, MIMEType: mime, Data: data}, nil
}
