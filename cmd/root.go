package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/viper"

	"github.com/lepinkainen/shelfscan/internal/cache"
	"github.com/lepinkainen/shelfscan/internal/config"
	"github.com/lepinkainen/shelfscan/internal/isbn"
	"github.com/lepinkainen/shelfscan/internal/lookup"
	"github.com/lepinkainen/shelfscan/internal/provider"
	"github.com/lepinkainen/shelfscan/internal/ratelimit"
	"github.com/lepinkainen/shelfscan/internal/shelf"
)

// CLI represents the complete command structure for the shelfscan application
type CLI struct {
	// Cache flags
	CacheDBFile string `help:"Path to cache SQLite database file" default:"shelfscan-cache.db"`
	CacheTTL    string `help:"Cache time-to-live duration (e.g., 720h for 30 days)" default:"720h"`

	// Catalog flags
	DBFile    string `help:"Path to catalog SQLite database file" default:"shelfscan.db"`
	CoversDir string `help:"Directory for saved cover images" default:"./covers/"`

	Lookup LookupCmd `cmd:"" help:"Look up a book by ISBN"`
	Search SearchCmd `cmd:"" help:"Search providers by title and author"`
	Scan   ScanCmd   `cmd:"" help:"Resolve barcode payloads from stdin into a book record"`
	Shelf  ShelfCmd  `cmd:"" help:"Manage shelves and the books on them"`
	Cover  CoverCmd  `cmd:"" help:"Download and save a book's cover image"`
}

// LookupCmd resolves a single identifier through the provider chain.
type LookupCmd struct {
	ISBN string `arg:"" help:"ISBN-10 or ISBN-13, with or without separators"`
}

// SearchCmd runs a free-text title/author query.
type SearchCmd struct {
	Title       string `short:"t" help:"Title to search for"`
	Author      string `short:"a" help:"Author to search for"`
	Interactive bool   `short:"i" help:"Pick a result interactively"`
	Shelf       string `help:"Shelf to add the result to (first hit, or the picked one with --interactive)"`
}

// ScanCmd consumes decoder output, one payload per line.
type ScanCmd struct{}

// ShelfCmd groups the catalog subcommands.
type ShelfCmd struct {
	Create ShelfCreateCmd `cmd:"" help:"Create a new shelf"`
	Add    ShelfAddCmd    `cmd:"" help:"Look an ISBN up and file it on a shelf"`
	List   ShelfListCmd   `cmd:"" help:"List shelves, or the books on one shelf"`
	Move   ShelfMoveCmd   `cmd:"" help:"Move a book to another shelf"`
	Remove ShelfRemoveCmd `cmd:"" help:"Remove a book from the catalog"`
	Export ShelfExportCmd `cmd:"" help:"Export the whole catalog as YAML"`
}

// ShelfCreateCmd creates a shelf.
type ShelfCreateCmd struct {
	Name string `arg:"" help:"Name of the new shelf"`
}

// ShelfAddCmd files a looked-up book on a shelf.
type ShelfAddCmd struct {
	Shelf string `arg:"" help:"Shelf to file the book on"`
	ISBN  string `arg:"" help:"ISBN-10 or ISBN-13"`
}

// ShelfListCmd lists shelves or books.
type ShelfListCmd struct {
	Shelf string `arg:"" optional:"" help:"Shelf whose books to list (omit to list shelves)"`
}

// ShelfMoveCmd refiles a book.
type ShelfMoveCmd struct {
	BookID int64  `arg:"" help:"ID of the book to move"`
	Shelf  string `arg:"" help:"Destination shelf"`
}

// ShelfRemoveCmd deletes a book.
type ShelfRemoveCmd struct {
	BookID int64 `arg:"" help:"ID of the book to remove"`
}

// ShelfExportCmd writes the catalog to stdout or a file.
type ShelfExportCmd struct {
	Output string `short:"o" help:"Output file (defaults to stdout)"`
}

// CoverCmd downloads the cover for an ISBN into the covers directory.
type CoverCmd struct {
	ISBN string `arg:"" help:"ISBN-10 or ISBN-13"`
	Full bool   `help:"Save the full-size rendition instead of the thumbnail"`
}

// Execute runs the Kong-based CLI
func Execute() {
	initLogging()
	initConfig()

	// Create CLI instance
	var cli CLI

	// Parse command line with Kong
	ctx := kong.Parse(&cli,
		kong.Name("shelfscan"),
		kong.Description("A tool to catalog books by scanning or typing their ISBNs."),
		kong.UsageOnError(),
	)

	// Update global config based on parsed flags
	updateGlobalConfig(&cli)

	// Execute the selected command
	err := ctx.Run()
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}

func initConfig() {
	// Cache defaults
	viper.SetDefault("cache.dbfile", "shelfscan-cache.db")
	viper.SetDefault("cache.ttl", "720h") // 30 days

	// Catalog defaults
	viper.SetDefault("shelf.dbfile", "shelfscan.db")
	viper.SetDefault("covers.dir", "./covers/")
	viper.SetDefault("covers.capacity", 64)

	// Provider defaults
	viper.SetDefault("openlibrary.ratelimit", 1)
	viper.SetDefault("googlebooks.ratelimit", 1)

	// Enable environment variable support
	viper.AutomaticEnv()
	// Bind specific environment variables to config keys
	if err := viper.BindEnv("GoogleBooksAPIKey", "GOOGLE_BOOKS_API_KEY"); err != nil {
		slog.Error("Failed to bind environment variable", "error", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			slog.Debug("Config file not found, using defaults")
		} else {
			slog.Error("Fatal error config file", "error", err)
			os.Exit(1)
		}
	}

	// Initialize global config
	config.InitConfig()
}

func updateGlobalConfig(cli *CLI) {
	// Update cache config
	viper.Set("cache.dbfile", cli.CacheDBFile)
	viper.Set("cache.ttl", cli.CacheTTL)

	// Update catalog config
	viper.Set("shelf.dbfile", cli.DBFile)
	viper.Set("covers.dir", cli.CoversDir)
}

func initLogging() {
	// Create a human-readable handler for logging
	handler := humanlog.NewHandler(os.Stdout, &humanlog.Options{
		Level: slog.LevelInfo,
	})

	// Set the default logger
	slog.SetDefault(slog.New(handler))
}

// app bundles the lookup pipeline dependencies built from config. The
// cache store may be nil when it cannot be opened; lookups still work,
// they just hit the network every time.
type app struct {
	service *lookup.Service
	store   *cache.Store
}

var newApp = func() *app {
	var store *cache.Store
	ttl, err := time.ParseDuration(viper.GetString("cache.ttl"))
	if err != nil {
		slog.Warn("Invalid cache TTL, using default", "value", viper.GetString("cache.ttl"))
		ttl = cache.DefaultTTL
	}
	store, err = cache.Open(viper.GetString("cache.dbfile"), ttl)
	if err != nil {
		slog.Warn("Cache unavailable, continuing without it", "error", err)
		store = nil
	}

	httpClient := &http.Client{Timeout: 10 * time.Second}

	openLibrary := provider.NewOpenLibrary(provider.OpenLibraryConfig{
		HTTPClient: httpClient,
		Limiter:    ratelimit.New("OpenLibrary", viper.GetInt("openlibrary.ratelimit")),
		Cache:      store,
	})
	googleBooks := provider.NewGoogleBooks(provider.GoogleBooksConfig{
		HTTPClient: httpClient,
		Limiter:    ratelimit.New("GoogleBooks", viper.GetInt("googlebooks.ratelimit")),
		Cache:      store,
		APIKey:     config.GoogleBooksAPIKey,
	})

	return &app{
		service: lookup.New(openLibrary, openLibrary, googleBooks),
		store:   store,
	}
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			slog.Warn("Failed to close cache", "error", err)
		}
	}
}

var openShelf = func() (*shelf.Store, error) {
	return shelf.Open(viper.GetString("shelf.dbfile"))
}

// lookupBook resolves an identifier and translates the pipeline errors
// into messages a person at the terminal can act on.
func lookupBook(ctx context.Context, service *lookup.Service, identifier string) (*provider.Record, error) {
	rec, err := service.Lookup(ctx, identifier)
	if err != nil {
		var netErr *lookup.NetworkError
		switch {
		case errors.Is(err, isbn.ErrInvalidIdentifier):
			return nil, fmt.Errorf("%q is not a valid ISBN", identifier)
		case errors.Is(err, lookup.ErrNotFound):
			return nil, fmt.Errorf("no book found for ISBN %s", identifier)
		case errors.As(err, &netErr):
			return nil, fmt.Errorf("lookup failed, check your network connection and try again: %w", err)
		default:
			return nil, err
		}
	}
	return rec, nil
}

func printRecord(rec *provider.Record) {
	fmt.Printf("Title:  %s\n", rec.Title)
	if rec.Author != "" {
		fmt.Printf("Author: %s\n", rec.Author)
	}
	fmt.Printf("ISBN:   %s\n", rec.ISBN)
	if rec.CoverURL != "" {
		fmt.Printf("Cover:  %s\n", rec.CoverURL)
	}
}
