package cmd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepinkainen/shelfscan/internal/lookup"
	"github.com/lepinkainen/shelfscan/internal/provider"
	"github.com/lepinkainen/shelfscan/internal/tui"
)

type stubSearcher struct {
	hits []provider.SearchResult
}

func (s *stubSearcher) Search(_ context.Context, _, _ string) ([]provider.SearchResult, error) {
	return s.hits, nil
}

func withStubSearch(t *testing.T, hits []provider.SearchResult) {
	t.Helper()
	original := newApp
	newApp = func() *app {
		return &app{service: lookup.New(&stubSearcher{hits: hits})}
	}
	t.Cleanup(func() { newApp = original })
}

func duneHits() []provider.SearchResult {
	return []provider.SearchResult{
		{Title: "Dune", Authors: []string{"Frank Herbert"}, PublishYear: 1965, ISBN: "9780441013593"},
		{Title: "Dune Messiah", Authors: []string{"Frank Herbert"}, PublishYear: 1969},
	}
}

func TestSearchPrintsHits(t *testing.T) {
	resetCmdState(t)
	withStubSearch(t, duneHits())

	cmd := &SearchCmd{Title: "Dune"}
	require.NoError(t, cmd.Run())
}

func TestSearchEmptyIsNotAnError(t *testing.T) {
	resetCmdState(t)
	withStubSearch(t, nil)

	cmd := &SearchCmd{Title: "no such book"}
	require.NoError(t, cmd.Run())
}

func TestSearchShelfFilesFirstHit(t *testing.T) {
	resetCmdState(t)
	useTempCatalog(t)
	withStubSearch(t, duneHits())

	require.NoError(t, (&ShelfCreateCmd{Name: "Reading"}).Run())
	require.NoError(t, (&SearchCmd{Title: "Dune", Shelf: "Reading"}).Run())

	store, err := openShelf()
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	sh, err := store.ShelfByName("Reading")
	require.NoError(t, err)
	books, err := store.Books(sh.ID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune", books[0].Title)
	assert.Equal(t, "Frank Herbert", books[0].Author)
}

func TestSearchInteractiveSelectionFiled(t *testing.T) {
	resetCmdState(t)
	useTempCatalog(t)
	withStubSearch(t, duneHits())

	original := selectResult
	selectResult = func(_ string, results []provider.SearchResult) (tui.SelectionResult, error) {
		return tui.SelectionResult{Action: tui.ActionSelected, Selection: &results[1]}, nil
	}
	t.Cleanup(func() { selectResult = original })

	require.NoError(t, (&ShelfCreateCmd{Name: "Reading"}).Run())
	require.NoError(t, (&SearchCmd{Title: "Dune", Interactive: true, Shelf: "Reading"}).Run())

	store, err := openShelf()
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	sh, err := store.ShelfByName("Reading")
	require.NoError(t, err)
	books, err := store.Books(sh.ID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Dune Messiah", books[0].Title)
}

func TestSearchInteractiveSkip(t *testing.T) {
	resetCmdState(t)
	withStubSearch(t, duneHits())

	original := selectResult
	selectResult = func(string, []provider.SearchResult) (tui.SelectionResult, error) {
		return tui.SelectionResult{Action: tui.ActionSkipped}, nil
	}
	t.Cleanup(func() { selectResult = original })

	require.NoError(t, (&SearchCmd{Title: "Dune", Interactive: true, Shelf: "Reading"}).Run())
}
