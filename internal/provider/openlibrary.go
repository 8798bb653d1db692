package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lepinkainen/shelfscan/internal/cache"
	"github.com/lepinkainen/shelfscan/internal/ratelimit"
)

const (
	defaultOpenLibraryBaseURL = "https://openlibrary.org"
	// coversBaseURL hosts cover images keyed by ISBN or cover ID. Cover
	// URLs are derived, not read from responses, so they exist even when
	// the image itself later 404s.
	coversBaseURL = "https://covers.openlibrary.org"

	searchLimit = 20
)

// OpenLibrary is the primary metadata provider.
type OpenLibrary struct {
	httpClient *http.Client
	baseURL    string
	limiter    *ratelimit.Limiter
	store      *cache.Store
}

// Compile-time check that OpenLibrary implements Client.
var _ Client = (*OpenLibrary)(nil)

// OpenLibraryConfig holds the injected dependencies for an OpenLibrary
// client. Zero values get sensible defaults; Cache and Limiter may stay
// nil to disable caching and throttling (tests do this).
type OpenLibraryConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Limiter    *ratelimit.Limiter
	Cache      *cache.Store
}

// NewOpenLibrary creates an Open Library client.
func NewOpenLibrary(cfg OpenLibraryConfig) *OpenLibrary {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultOpenLibraryBaseURL
	}
	return &OpenLibrary{
		httpClient: cfg.HTTPClient,
		baseURL:    cfg.BaseURL,
		limiter:    cfg.Limiter,
		store:      cfg.Cache,
	}
}

// Name returns the human-readable provider name.
func (c *OpenLibrary) Name() string {
	return "OpenLibrary"
}

// CoverURL derives the large cover image URL for an ISBN. The URL is
// synthesized from the identifier alone; default=false makes the covers
// host 404 instead of serving a placeholder when no image exists.
func CoverURL(isbn string) string {
	return fmt.Sprintf("%s/b/isbn/%s-L.jpg?default=false", coversBaseURL, isbn)
}

// coverURLByID derives a medium cover image URL from a numeric cover ID,
// as returned by the search endpoint.
func coverURLByID(coverID int) string {
	return fmt.Sprintf("%s/b/id/%d-M.jpg", coversBaseURL, coverID)
}

// Lookup fetches the edition document for an ISBN and resolves the first
// author's name best-effort.
func (c *OpenLibrary) Lookup(ctx context.Context, isbn string) (*Record, error) {
	cached, _, err := cache.GetOrFetch(c.store, cache.OpenLibraryTable, isbn, func() (*cachedLookup, error) {
		return c.fetchEdition(ctx, isbn)
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

// editionDocument matches /isbn/{isbn}.json.
type editionDocument struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Authors  []struct {
		Key string `json:"key"`
	} `json:"authors"`
}

// authorDocument matches /{authorKey}.json.
type authorDocument struct {
	Name string `json:"name"`
}

func (c *OpenLibrary) fetchEdition(ctx context.Context, isbn string) (*cachedLookup, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	reqURL := fmt.Sprintf("%s/isbn/%s.json", c.baseURL, isbn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OpenLibrary request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// 404 is the provider's normal "no such edition" signal. Other
	// non-200 statuses also read as no result here; the fallback chain
	// moves on.
	if resp.StatusCode == http.StatusNotFound {
		return &cachedLookup{NotFound: true}, nil
	}
	if resp.StatusCode != http.StatusOK {
		slog.Debug("OpenLibrary returned unexpected status", "isbn", isbn, "status", resp.StatusCode)
		return &cachedLookup{NotFound: true}, nil
	}

	var doc editionDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decoding edition document: %v", ErrInvalidResponse, err)
	}

	title := doc.Title
	if title == "" {
		title = UnknownTitle
	} else if doc.Subtitle != "" {
		title = title + ": " + doc.Subtitle
	}

	// Author resolution needs a second request per reference key. It is
	// strictly best-effort: a failure yields an absent author, never a
	// failed lookup.
	author := ""
	if len(doc.Authors) > 0 {
		author = c.resolveAuthorName(ctx, doc.Authors[0].Key)
	}

	return &cachedLookup{Record: &Record{
		ISBN:     isbn,
		Title:    title,
		Author:   author,
		CoverURL: CoverURL(isbn),
	}}, nil
}

func (c *OpenLibrary) resolveAuthorName(ctx context.Context, authorKey string) string {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return ""
		}
	}

	reqURL := fmt.Sprintf("%s%s.json", c.baseURL, authorKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return ""
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("Author fetch failed", "key", authorKey, "error", err)
		return ""
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		slog.Debug("Author fetch returned unexpected status", "key", authorKey, "status", resp.StatusCode)
		return ""
	}

	var doc authorDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		slog.Debug("Author document undecodable", "key", authorKey, "error", err)
		return ""
	}
	return doc.Name
}

// searchResponse matches /search.json.
type searchResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Title            string   `json:"title"`
		AuthorNames      []string `json:"author_name"`
		FirstPublishYear int      `json:"first_publish_year"`
		Publisher        []string `json:"publisher"`
		CoverID          int      `json:"cover_i"`
		ISBN             []string `json:"isbn"`
	} `json:"docs"`
}

// Search runs a free-text title/author query. An empty result list is a
// normal outcome, not an error.
func (c *OpenLibrary) Search(ctx context.Context, title, author string) ([]SearchResult, error) {
	cacheKey := title + "|" + author
	results, _, err := cache.GetOrFetch(c.store, cache.SearchTable, cacheKey, func() ([]SearchResult, error) {
		return c.fetchSearch(ctx, title, author)
	}, nil)
	return results, err
}

func (c *OpenLibrary) fetchSearch(ctx context.Context, title, author string) ([]SearchResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	params := url.Values{}
	if title != "" {
		params.Set("title", title)
	}
	if author != "" {
		params.Set("author", author)
	}
	params.Set("fields", "title,author_name,first_publish_year,publisher,cover_i,isbn")
	params.Set("limit", strconv.Itoa(searchLimit))

	reqURL := fmt.Sprintf("%s/search.json?%s", c.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("OpenLibrary search failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenLibrary search returned status %d", resp.StatusCode)
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: decoding search response: %v", ErrInvalidResponse, err)
	}

	hits := make([]SearchResult, 0, len(result.Docs))
	for _, doc := range result.Docs {
		hit := SearchResult{
			Title:       doc.Title,
			Authors:     doc.AuthorNames,
			PublishYear: doc.FirstPublishYear,
		}
		if len(doc.Publisher) > 0 {
			hit.Publisher = doc.Publisher[0]
		}
		if len(doc.ISBN) > 0 {
			hit.ISBN = doc.ISBN[0]
		}
		if doc.CoverID > 0 {
			hit.CoverURL = coverURLByID(doc.CoverID)
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
