// Package provider contains read-only clients for public book-metadata
// services. Each client translates its provider-specific response shape
// into the common Record form; "no result" is modeled as (nil, nil) so
// callers can try the next provider.
package provider

import (
	"context"
	"errors"
)

// UnknownTitle is the display title used when a provider document
// carries no title at all.
const UnknownTitle = "Unknown Title"

// ErrInvalidResponse marks a 200 response whose body could not be
// decoded. Callers treat it as a local, non-fatal failure.
var ErrInvalidResponse = errors.New("invalid provider response")

// Record is the common result of an ISBN lookup. Constructed fresh per
// lookup, never mutated.
type Record struct {
	ISBN     string
	Title    string
	Author   string
	CoverURL string
}

// SearchResult is a single free-text search hit. Unlike Record it keeps
// the full ordered author list plus publication metadata for display.
type SearchResult struct {
	Title       string
	Authors     []string
	PublishYear int
	Publisher   string
	ISBN        string
	CoverURL    string
}

// Record promotes a search hit into a lookup-equivalent record.
func (s SearchResult) Record() Record {
	title := s.Title
	if title == "" {
		title = UnknownTitle
	}
	author := ""
	if len(s.Authors) > 0 {
		author = s.Authors[0]
	}
	return Record{
		ISBN:     s.ISBN,
		Title:    title,
		Author:   author,
		CoverURL: s.CoverURL,
	}
}

// Client resolves a canonical ISBN to zero-or-one structured book record.
// A (nil, nil) return means the provider has no match, which is not an
// error; errors are reserved for transport failures and undecodable
// responses.
type Client interface {
	Name() string
	Lookup(ctx context.Context, isbn string) (*Record, error)
}

// cachedLookup wraps a lookup outcome for TTL caching, so "not found"
// can be cached with its own shorter TTL.
type cachedLookup struct {
	Record   *Record `json:"record"`
	NotFound bool    `json:"not_found"`
}
