package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/lepinkainen/shelfscan/internal/cache"
	"github.com/lepinkainen/shelfscan/internal/ratelimit"
)

const defaultGoogleBooksBaseURL = "https://www.googleapis.com/books/v1"

// GoogleBooks is the fallback metadata provider, consulted when Open
// Library has no match.
type GoogleBooks struct {
	httpClient *http.Client
	baseURL    string
	limiter    *ratelimit.Limiter
	store      *cache.Store
	apiKey     string
}

// Compile-time check that GoogleBooks implements Client.
var _ Client = (*GoogleBooks)(nil)

// GoogleBooksConfig holds the injected dependencies for a GoogleBooks
// client. The API key is optional; the volumes endpoint works without it
// at a lower quota.
type GoogleBooksConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Limiter    *ratelimit.Limiter
	Cache      *cache.Store
	APIKey     string
}

// NewGoogleBooks creates a Google Books client.
func NewGoogleBooks(cfg GoogleBooksConfig) *GoogleBooks {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultGoogleBooksBaseURL
	}
	return &GoogleBooks{
		httpClient: cfg.HTTPClient,
		baseURL:    cfg.BaseURL,
		limiter:    cfg.Limiter,
		store:      cfg.Cache,
		apiKey:     cfg.APIKey,
	}
}

// Name returns the human-readable provider name.
func (c *GoogleBooks) Name() string {
	return "Google Books"
}

// Lookup queries the volumes endpoint with an isbn: filter and maps the
// first matching volume.
func (c *GoogleBooks) Lookup(ctx context.Context, isbn string) (*Record, error) {
	cached, _, err := cache.GetOrFetch(c.store, cache.GoogleBooksTable, isbn, func() (*cachedLookup, error) {
		return c.fetchVolume(ctx, isbn)
	}, cache.NegativeTTLFor(cache.DefaultTTL, func(r *cachedLookup) bool {
		return r.NotFound
	}))
	if err != nil {
		return nil, err
	}
	if cached.NotFound {
		return nil, nil
	}
	return cached.Record, nil
}

// volumesResponse matches /volumes?q=isbn:{isbn}.
type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title      string   `json:"title"`
			Authors    []string `json:"authors"`
			ImageLinks struct {
				Thumbnail      string `json:"thumbnail"`
				SmallThumbnail string `json:"smallThumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

func (c *GoogleBooks) fetchVolume(ctx context.Context, isbn string) (*cachedLookup, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	reqURL := fmt.Sprintf("%s/volumes?q=isbn:%s&maxResults=1", c.baseURL, isbn)
	if c.apiKey != "" {
		reqURL += "&key=" + c.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Google Books request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return &cachedLookup{NotFound: true}, nil
	}
	if resp.StatusCode != http.StatusOK {
		slog.Debug("Google Books returned unexpected status", "isbn", isbn, "status", resp.StatusCode)
		return &cachedLookup{NotFound: true}, nil
	}

	var result volumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decoding volumes response: %v", ErrInvalidResponse, err)
	}

	if result.TotalItems == 0 || len(result.Items) == 0 {
		return &cachedLookup{NotFound: true}, nil
	}

	vol := result.Items[0].VolumeInfo

	title := vol.Title
	if title == "" {
		title = UnknownTitle
	}

	author := ""
	if len(vol.Authors) > 0 {
		author = vol.Authors[0]
	}

	// Prefer the larger thumbnail; the image host still serves plain
	// http URLs on occasion, so upgrade the scheme.
	coverURL := vol.ImageLinks.Thumbnail
	if coverURL == "" {
		coverURL = vol.ImageLinks.SmallThumbnail
	}
	coverURL = upgradeScheme(coverURL)

	return &cachedLookup{Record: &Record{
		ISBN:     isbn,
		Title:    title,
		Author:   author,
		CoverURL: coverURL,
	}}, nil
}

// upgradeScheme rewrites an http:// URL to https://.
func upgradeScheme(rawURL string) string {
	if strings.HasPrefix(rawURL, "http://") {
		return "https://" + strings.TrimPrefix(rawURL, "http://")
	}
	return rawURL
}
