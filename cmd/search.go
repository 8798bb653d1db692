package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/lepinkainen/shelfscan/internal/provider"
	"github.com/lepinkainen/shelfscan/internal/tui"
)

var selectResult = tui.Select

// Run searches the providers and either prints the hits or, in
// interactive mode, lets the user pick one.
func (s *SearchCmd) Run() error {
	if s.Title == "" && s.Author == "" {
		return fmt.Errorf("provide a title (--title) or an author (--author) to search for")
	}

	a := newApp()
	defer a.close()

	ctx := context.Background()
	results, err := a.service.Search(ctx, s.Title, s.Author)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}

	if s.Interactive {
		return s.runInteractive(results)
	}

	// Without the picker, --shelf files the first hit.
	if s.Shelf != "" {
		rec := results[0].Record()
		printRecord(&rec)
		return addToShelf(s.Shelf, rec)
	}

	for _, hit := range results {
		printSearchHit(hit)
	}
	return nil
}

func (s *SearchCmd) runInteractive(results []provider.SearchResult) error {
	query := s.Title
	if query == "" {
		query = s.Author
	}

	selection, err := selectResult(query, results)
	if err != nil {
		return fmt.Errorf("selection failed: %w", err)
	}

	switch selection.Action {
	case tui.ActionSelected:
		rec := selection.Selection.Record()
		printRecord(&rec)
		if s.Shelf != "" {
			return addToShelf(s.Shelf, rec)
		}
		return nil
	case tui.ActionSkipped, tui.ActionStopped, tui.ActionNone:
		fmt.Println("Nothing selected.")
		return nil
	}
	return nil
}

func addToShelf(shelfName string, rec provider.Record) error {
	store, err := openShelf()
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = store.Close() }()

	sh, err := store.ShelfByName(shelfName)
	if err != nil {
		return err
	}
	book, err := store.AddBook(sh.ID, rec.ISBN, rec.Title, rec.Author, rec.CoverURL)
	if err != nil {
		return err
	}
	fmt.Printf("Added %q to shelf %q (book #%d)\n", book.Title, sh.Name, book.ID)
	return nil
}

func printSearchHit(hit provider.SearchResult) {
	line := hit.Title
	if hit.PublishYear > 0 {
		line = fmt.Sprintf("%s (%d)", line, hit.PublishYear)
	}
	if len(hit.Authors) > 0 {
		line = fmt.Sprintf("%s - %s", line, strings.Join(hit.Authors, ", "))
	}
	if hit.ISBN != "" {
		line = fmt.Sprintf("%s [%s]", line, hit.ISBN)
	}
	fmt.Println(line)
}
