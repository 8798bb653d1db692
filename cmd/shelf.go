package cmd

import (
	"context"
	"fmt"
	"os"
)

// Run creates a new shelf.
func (c *ShelfCreateCmd) Run() error {
	store, err := openShelf()
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = store.Close() }()

	sh, err := store.CreateShelf(c.Name)
	if err != nil {
		return err
	}
	fmt.Printf("Created shelf %q\n", sh.Name)
	return nil
}

// Run looks the ISBN up and files the result on the named shelf.
func (c *ShelfAddCmd) Run() error {
	a := newApp()
	defer a.close()

	rec, err := lookupBook(context.Background(), a.service, c.ISBN)
	if err != nil {
		return err
	}

	store, err := openShelf()
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = store.Close() }()

	sh, err := store.ShelfByName(c.Shelf)
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

// Run lists shelves, or the books on one shelf.
func (c *ShelfListCmd) Run() error {
	store, err := openShelf()
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = store.Close() }()

	if c.Shelf == "" {
		shelves, err := store.Shelves()
		if err != nil {
			return err
		}
		if len(shelves) == 0 {
			fmt.Println("No shelves yet.")
			return nil
		}
		for _, sh := range shelves {
			fmt.Println(sh.Name)
		}
		return nil
	}

	sh, err := store.ShelfByName(c.Shelf)
	if err != nil {
		return err
	}
	books, err := store.Books(sh.ID)
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Printf("Shelf %q is empty.\n", sh.Name)
		return nil
	}
	for _, b := range books {
		line := fmt.Sprintf("#%d %s", b.ID, b.Title)
		if b.Author != "" {
			line += " - " + b.Author
		}
		line += " [" + b.ISBN + "]"
		fmt.Println(line)
	}
	return nil
}

// Run moves a book onto another shelf.
func (c *ShelfMoveCmd) Run() error {
	store, err := openShelf()
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = store.Close() }()

	sh, err := store.ShelfByName(c.Shelf)
	if err != nil {
		return err
	}
	if err := store.MoveBook(c.BookID, sh.ID); err != nil {
		return err
	}
	fmt.Printf("Moved book #%d to shelf %q\n", c.BookID, sh.Name)
	return nil
}

// Run removes a book from the catalog.
func (c *ShelfRemoveCmd) Run() error {
	store, err := openShelf()
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = store.Close() }()

	if err := store.RemoveBook(c.BookID); err != nil {
		return err
	}
	fmt.Printf("Removed book #%d\n", c.BookID)
	return nil
}

// Run exports the catalog as YAML.
func (c *ShelfExportCmd) Run() error {
	store, err := openShelf()
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer func() { _ = store.Close() }()

	out := os.Stdout
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	return store.Export(out)
}
