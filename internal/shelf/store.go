// Package shelf persists the user's book catalog in SQLite: named
// shelves and the books filed on them.
package shelf

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var (
	// ErrShelfNotFound is returned when a shelf name or ID does not exist.
	ErrShelfNotFound = errors.New("shelf not found")
	// ErrBookNotFound is returned when a book ID does not exist.
	ErrBookNotFound = errors.New("book not found")
	// ErrDuplicateShelf is returned when creating a shelf whose name is taken.
	ErrDuplicateShelf = errors.New("shelf already exists")
)

// Shelf is a named group of books.
type Shelf struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Book is a cataloged volume filed on a shelf.
type Book struct {
	ID       int64
	ShelfID  int64
	ISBN     string
	Title    string
	Author   string
	CoverURL string
	AddedAt  time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS shelves (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL UNIQUE,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS books (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	shelf_id INTEGER NOT NULL REFERENCES shelves(id) ON DELETE CASCADE,
	isbn TEXT NOT NULL,
	title TEXT NOT NULL,
	author TEXT NOT NULL DEFAULT '',
	cover_url TEXT NOT NULL DEFAULT '',
	added_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_books_shelf ON books(shelf_id);
`

// Store provides shelf and book persistence backed by a SQLite file.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the catalog database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// CreateShelf creates a new, empty shelf and returns it.
func (s *Store) CreateShelf(name string) (*Shelf, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("shelf name cannot be empty")
	}

	now := time.Now()
	res, err := s.db.Exec("INSERT INTO shelves (name, created_at) VALUES (?, ?)", name, now.Unix())
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateShelf, name)
		}
		return nil, fmt.Errorf("failed to create shelf: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read shelf id: %w", err)
	}
	return &Shelf{ID: id, Name: name, CreatedAt: now}, nil
}

// Shelves returns all shelves ordered by creation time.
func (s *Store) Shelves() ([]Shelf, error) {
	rows, err := s.db.Query("SELECT id, name, created_at FROM shelves ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query shelves: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var shelves []Shelf
	for rows.Next() {
		var sh Shelf
		var created int64
		if err := rows.Scan(&sh.ID, &sh.Name, &created); err != nil {
			return nil, fmt.Errorf("failed to scan shelf: %w", err)
		}
		sh.CreatedAt = time.Unix(created, 0)
		shelves = append(shelves, sh)
	}
	return shelves, rows.Err()
}

// ShelfByName looks a shelf up by its exact name.
func (s *Store) ShelfByName(name string) (*Shelf, error) {
	var sh Shelf
	var created int64
	err := s.db.QueryRow("SELECT id, name, created_at FROM shelves WHERE name = ?", name).
		Scan(&sh.ID, &sh.Name, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrShelfNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query shelf: %w", err)
	}
	sh.CreatedAt = time.Unix(created, 0)
	return &sh, nil
}

// RenameShelf changes a shelf's name.
func (s *Store) RenameShelf(id int64, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return fmt.Errorf("shelf name cannot be empty")
	}
	res, err := s.db.Exec("UPDATE shelves SET name = ? WHERE id = ?", newName, id)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("%w: %s", ErrDuplicateShelf, newName)
		}
		return fmt.Errorf("failed to rename shelf: %w", err)
	}
	return s.requireRow(res, ErrShelfNotFound)
}

// DeleteShelf removes a shelf and, via the cascade, every book on it.
func (s *Store) DeleteShelf(id int64) error {
	res, err := s.db.Exec("DELETE FROM shelves WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete shelf: %w", err)
	}
	return s.requireRow(res, ErrShelfNotFound)
}

// AddBook files a book on the given shelf and returns it.
func (s *Store) AddBook(shelfID int64, isbn, title, author, coverURL string) (*Book, error) {
	now := time.Now()
	res, err := s.db.Exec(
		"INSERT INTO books (shelf_id, isbn, title, author, cover_url, added_at) VALUES (?, ?, ?, ?, ?, ?)",
		shelfID, isbn, title, author, coverURL, now.Unix(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			return nil, fmt.Errorf("%w: id %d", ErrShelfNotFound, shelfID)
		}
		return nil, fmt.Errorf("failed to add book: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read book id: %w", err)
	}
	return &Book{
		ID:       id,
		ShelfID:  shelfID,
		ISBN:     isbn,
		Title:    title,
		Author:   author,
		CoverURL: coverURL,
		AddedAt:  now,
	}, nil
}

// Books returns the books on a shelf, most recently added first.
func (s *Store) Books(shelfID int64) ([]Book, error) {
	rows, err := s.db.Query(
		"SELECT id, shelf_id, isbn, title, author, cover_url, added_at FROM books WHERE shelf_id = ? ORDER BY added_at DESC, id DESC",
		shelfID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var books []Book
	for rows.Next() {
		var b Book
		var added int64
		if err := rows.Scan(&b.ID, &b.ShelfID, &b.ISBN, &b.Title, &b.Author, &b.CoverURL, &added); err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		b.AddedAt = time.Unix(added, 0)
		books = append(books, b)
	}
	return books, rows.Err()
}

// MoveBook refiles a book onto another shelf.
func (s *Store) MoveBook(bookID, toShelfID int64) error {
	res, err := s.db.Exec("UPDATE books SET shelf_id = ? WHERE id = ?", toShelfID, bookID)
	if err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY") {
			return fmt.Errorf("%w: id %d", ErrShelfNotFound, toShelfID)
		}
		return fmt.Errorf("failed to move book: %w", err)
	}
	return s.requireRow(res, ErrBookNotFound)
}

// RemoveBook deletes a book from the catalog.
func (s *Store) RemoveBook(bookID int64) error {
	res, err := s.db.Exec("DELETE FROM books WHERE id = ?", bookID)
	if err != nil {
		return fmt.Errorf("failed to remove book: %w", err)
	}
	return s.requireRow(res, ErrBookNotFound)
}

func (s *Store) requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
