package covercache

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
)

const (
	thumbnailWidth = 160
	fullWidth      = 800

	jpegQuality = 85
)

// Fetcher downloads cover images and renders the cached size variants.
type Fetcher struct {
	httpClient *http.Client
	cache      *Cache
}

// NewFetcher creates a Fetcher backed by cache. A nil client gets a
// default with a generous timeout; cover hosts can be slow.
func NewFetcher(client *http.Client, cache *Cache) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{httpClient: client, cache: cache}
}

// Get returns the requested variant for the cover at coverURL, cached
// under path. A miss downloads the image once and renders both variants
// so the other size is a later cache hit.
func (f *Fetcher) Get(ctx context.Context, coverURL, path string, variant Variant) ([]byte, error) {
	if data, ok := f.cache.Get(path, variant); ok {
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download cover: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d downloading cover from %s", resp.StatusCode, coverURL)
	}

	img, err := imaging.Decode(resp.Body, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover image: %w", err)
	}

	thumb, err := encodeResized(img, thumbnailWidth)
	if err != nil {
		return nil, err
	}
	full, err := encodeResized(img, fullWidth)
	if err != nil {
		return nil, err
	}

	f.cache.Put(path, Thumbnail, thumb)
	f.cache.Put(path, Full, full)
	slog.Debug("Cover fetched and cached", "path", path, "url", coverURL)

	if variant == Thumbnail {
		return thumb, nil
	}
	return full, nil
}

// Invalidate drops the cached variants for path. Call after uploading
// or removing the underlying cover.
func (f *Fetcher) Invalidate(path string) {
	f.cache.Invalidate(path)
}

// Save writes image bytes to dir/{name}.jpg, creating dir as needed,
// and returns the written path.
func (f *Fetcher) Save(dir, name string, data []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create covers directory: %w", err)
	}
	path := filepath.Join(dir, name+".jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write cover file: %w", err)
	}
	return path, nil
}

func encodeResized(img image.Image, maxWidth int) ([]byte, error) {
	resized := img
	if img.Bounds().Dx() > maxWidth {
		resized = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode cover image: %w", err)
	}
	return buf.Bytes(), nil
}
