package shelf

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ExportShelf is one shelf in a catalog export.
type ExportShelf struct {
	Name  string       `yaml:"name"`
	Books []ExportBook `yaml:"books"`
}

// ExportBook is one book in a catalog export.
type ExportBook struct {
	ISBN     string `yaml:"isbn"`
	Title    string `yaml:"title"`
	Author   string `yaml:"author,omitempty"`
	CoverURL string `yaml:"cover_url,omitempty"`
}

// Export writes the whole catalog to w as YAML, shelves in creation
// order with their books.
func (s *Store) Export(w io.Writer) error {
	shelves, err := s.Shelves()
	if err != nil {
		return err
	}

	out := make([]ExportShelf, 0, len(shelves))
	for _, sh := range shelves {
		books, err := s.Books(sh.ID)
		if err != nil {
			return err
		}
		es := ExportShelf{Name: sh.Name, Books: make([]ExportBook, 0, len(books))}
		for _, b := range books {
			es.Books = append(es.Books, ExportBook{
				ISBN:     b.ISBN,
				Title:    b.Title,
				Author:   b.Author,
				CoverURL: b.CoverURL,
			})
		}
		out = append(out, es)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return enc.Close()
}
