package cache

// Table names for each cached provider surface.
const (
	OpenLibraryTable = "openlibrary_cache"
	GoogleBooksTable = "googlebooks_cache"
	SearchTable      = "search_cache"
)

// validTables whitelists table names interpolated into SQL.
var validTables = map[string]bool{
	OpenLibraryTable: true,
	GoogleBooksTable: true,
	SearchTable:      true,
}

var allSchemas = []string{
	`CREATE TABLE IF NOT EXISTS openlibrary_cache (
		cache_key TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		cached_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		ttl_seconds INTEGER NOT NULL DEFAULT 2592000
	)`,
	`CREATE TABLE IF NOT EXISTS googlebooks_cache (
		cache_key TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		cached_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		ttl_seconds INTEGER NOT NULL DEFAULT 2592000
	)`,
	`CREATE TABLE IF NOT EXISTS search_cache (
		cache_key TEXT PRIMARY KEY,
		data TEXT NOT NULL,
		cached_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		ttl_seconds INTEGER NOT NULL DEFAULT 2592000
	)`,
}
