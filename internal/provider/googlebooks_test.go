package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newGoogleBooksClient(server *httptest.Server) *GoogleBooks {
	return NewGoogleBooks(GoogleBooksConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
	})
}

func TestGoogleBooksLookupSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/volumes", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "isbn:9780316769488", r.URL.Query().Get("q"))
		require.Equal(t, "1", r.URL.Query().Get("maxResults"))
		_, _ = w.Write([]byte(`{
			"totalItems": 1,
			"items": [{
				"volumeInfo": {
					"title": "The Catcher in the Rye",
					"authors": ["J.D. Salinger", "Someone Else"],
					"imageLinks": {
						"thumbnail": "http://books.google.com/books/content?id=abc&zoom=1",
						"smallThumbnail": "http://books.google.com/books/content?id=abc&zoom=5"
					}
				}
			}]
		}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	rec, err := newGoogleBooksClient(server).Lookup(context.Background(), "9780316769488")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "The Catcher in the Rye", rec.Title)
	require.Equal(t, "J.D. Salinger", rec.Author)
	// thumbnail wins over smallThumbnail, scheme upgraded
	require.Equal(t, "https://books.google.com/books/content?id=abc&zoom=1", rec.CoverURL)
}

func TestGoogleBooksLookupSmallThumbnailFallback(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/volumes", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"totalItems": 1,
			"items": [{
				"volumeInfo": {
					"title": "Some Book",
					"imageLinks": {"smallThumbnail": "https://books.google.com/small.jpg"}
				}
			}]
		}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	rec, err := newGoogleBooksClient(server).Lookup(context.Background(), "9780000000001")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, "https://books.google.com/small.jpg", rec.CoverURL)
}

func TestGoogleBooksLookupMissingTitle(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/volumes", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems":1,"items":[{"volumeInfo":{}}]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	rec, err := newGoogleBooksClient(server).Lookup(context.Background(), "9780000000001")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, UnknownTitle, rec.Title)
	require.Equal(t, "", rec.Author)
	require.Equal(t, "", rec.CoverURL)
}

func TestGoogleBooksLookupEmptyItems(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/volumes", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems":0,"items":[]}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	rec, err := newGoogleBooksClient(server).Lookup(context.Background(), "9780000000001")
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestGoogleBooksLookupNotFoundStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	rec, err := newGoogleBooksClient(server).Lookup(context.Background(), "9780000000001")
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestGoogleBooksLookupUndecodableBody(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"totalItems": `))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	rec, err := newGoogleBooksClient(server).Lookup(context.Background(), "9780000000001")
	require.ErrorIs(t, err, ErrInvalidResponse)
	require.Nil(t, rec)
}

func TestGoogleBooksLookupTransportError(t *testing.T) {
	server := httptest.NewServer(http.NewServeMux())
	server.Close()

	client := NewGoogleBooks(GoogleBooksConfig{BaseURL: server.URL})
	rec, err := client.Lookup(context.Background(), "9780000000001")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidResponse)
	require.Nil(t, rec)
}

func TestGoogleBooksAPIKeyAppended(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/volumes", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "secret", r.URL.Query().Get("key"))
		_, _ = w.Write([]byte(`{"totalItems":0}`))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewGoogleBooks(GoogleBooksConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		APIKey:     "secret",
	})
	_, err := client.Lookup(context.Background(), "9780000000001")
	require.NoError(t, err)
}

func TestUpgradeScheme(t *testing.T) {
	require.Equal(t, "https://example.com/a.jpg", upgradeScheme("http://example.com/a.jpg"))
	require.Equal(t, "https://example.com/a.jpg", upgradeScheme("https://example.com/a.jpg"))
	require.Equal(t, "", upgradeScheme(""))
}
