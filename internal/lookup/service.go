// Package lookup sequences provider clients into a single
// identifier-to-record pipeline with fixed-order fallback.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lepinkainen/shelfscan/internal/isbn"
	"github.com/lepinkainen/shelfscan/internal/provider"
)

// ErrNotFound is returned when every provider has been consulted and
// none had a match.
var ErrNotFound = errors.New("book not found")

// NetworkError reports a transport failure from the final provider in
// the chain. Earlier providers' outages fall through silently; the last
// resort must be visible so the caller can offer a retry.
type NetworkError struct {
	Provider string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Searcher runs a free-text title/author query against a single
// provider. No fallback: an empty slice is a normal result.
type Searcher interface {
	Search(ctx context.Context, title, author string) ([]provider.SearchResult, error)
}

// Service is the lookup pipeline entry point. Providers are tried
// strictly in order, one at a time; there is no parallel fan-out and no
// automatic retry.
type Service struct {
	providers []provider.Client
	searcher  Searcher
}

// New creates a Service trying providers in the given order. searcher
// may be nil if free-text search is not needed.
func New(searcher Searcher, providers ...provider.Client) *Service {
	return &Service{
		providers: providers,
		searcher:  searcher,
	}
}

// Lookup normalizes the identifier and resolves it to a book record.
// Fails with isbn.ErrInvalidIdentifier before any network call when the
// input cannot be cleaned into an ISBN, with ErrNotFound when all
// providers come up empty, and with *NetworkError when the final
// provider is unreachable.
func (s *Service) Lookup(ctx context.Context, identifier string) (*provider.Record, error) {
	canonical, err := isbn.Normalize(identifier)
	if err != nil {
		return nil, err
	}

	for i, p := range s.providers {
		rec, err := p.Lookup(ctx, canonical)
		if err != nil {
			// An undecodable 200 body is a local failure regardless of
			// position in the chain: log it and treat as no result.
			if errors.Is(err, provider.ErrInvalidResponse) {
				slog.Warn("Provider returned undecodable response", "provider", p.Name(), "isbn", canonical, "error", err)
				continue
			}
			if i == len(s.providers)-1 {
				return nil, &NetworkError{Provider: p.Name(), Err: err}
			}
			slog.Warn("Provider unavailable, trying next", "provider", p.Name(), "isbn", canonical, "error", err)
			continue
		}
		if rec != nil {
			slog.Debug("Lookup resolved", "provider", p.Name(), "isbn", canonical, "title", rec.Title)
			return rec, nil
		}
		slog.Debug("No match from provider", "provider", p.Name(), "isbn", canonical)
	}
	return nil, ErrNotFound
}

// Search runs a free-text query. A provider with zero matches yields an
// empty slice, not an error.
func (s *Service) Search(ctx context.Context, title, author string) ([]provider.SearchResult, error) {
	if s.searcher == nil {
		return nil, errors.New("no search provider configured")
	}
	return s.searcher.Search(ctx, title, author)
}
