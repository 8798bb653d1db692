// Package cache provides a SQLite-backed TTL cache for provider
// responses. Stores are constructed by the composition root and injected
// into clients so tests can run without one.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	// DefaultTTL is how long successful provider responses stay fresh (30 days).
	DefaultTTL = 720 * time.Hour
	// NegativeTTL is how long "not found" responses stay fresh (7 days).
	// Books do get added to the providers, so misses expire sooner.
	NegativeTTL = 168 * time.Hour
)

// Store manages a single SQLite cache database.
type Store struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
	ttl  time.Duration
}

// Open opens (or creates) a cache database at path and ensures all cache
// tables exist. A non-positive ttl falls back to DefaultTTL.
func Open(path string, ttl time.Duration) (*Store, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)

	if err := db.Ping(); err != nil {
		closeErr := db.Close()
		return nil, errors.Join(fmt.Errorf("failed to connect to cache database: %w", err), closeErr)
	}

	s := &Store{db: db, path: path, ttl: ttl}
	for _, schema := range allSchemas {
		if _, err := s.db.Exec(schema); err != nil {
			closeErr := s.db.Close()
			return nil, errors.Join(fmt.Errorf("failed to create cache table: %w", err), closeErr)
		}
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Get retrieves a cached value. Returns the raw JSON, whether a fresh
// entry was found, and any query error. An expired entry reads as a miss.
func (s *Store) Get(table, key string) (string, bool, error) {
	if err := validateTable(table); err != nil {
		return "", false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf("SELECT data, cached_at, ttl_seconds FROM %s WHERE cache_key = ?", table)

	var data string
	var cachedAt time.Time
	var ttlSeconds int64
	err := s.db.QueryRow(query, key).Scan(&data, &cachedAt, &ttlSeconds)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to query cache: %w", err)
	}

	age := time.Now().UTC().Sub(cachedAt)
	if age > time.Duration(ttlSeconds)*time.Second {
		slog.Debug("Cache entry expired", "table", table, "key", key, "age", age)
		return "", false, nil
	}
	return data, true, nil
}

// Set stores a value with the given TTL.
func (s *Store) Set(table, key, data string, ttl time.Duration) error {
	if err := validateTable(table); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := fmt.Sprintf(`
		INSERT OR REPLACE INTO %s (cache_key, data, cached_at, ttl_seconds)
		VALUES (?, ?, CURRENT_TIMESTAMP, ?)
	`, table)

	if _, err := s.db.Exec(query, key, data, int64(ttl.Seconds())); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Invalidate deletes a single cache entry.
func (s *Store) Invalidate(table, key string) error {
	if err := validateTable(table); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := fmt.Sprintf("DELETE FROM %s WHERE cache_key = ?", table)
	if _, err := s.db.Exec(query, key); err != nil {
		return fmt.Errorf("failed to invalidate cache entry: %w", err)
	}
	return nil
}

// Clear removes every entry in the given table. Returns rows deleted.
func (s *Store) Clear(table string) (int64, error) {
	if err := validateTable(table); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table))
	if err != nil {
		return 0, fmt.Errorf("failed to clear cache: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	slog.Debug("Cache table cleared", "table", table, "rows_deleted", rows)
	return rows, nil
}

// FetchFunc fetches a value from an external source on cache miss.
type FetchFunc[T any] func() (T, error)

// GetOrFetch returns the cached value for key, or calls fetch and caches
// the result. ttlFor picks the TTL per fetched value; nil means the
// store's default TTL. A nil store degrades to a plain fetch, as does any
// cache-side failure: caching problems are logged, never fatal.
func GetOrFetch[T any](s *Store, table, key string, fetch FetchFunc[T], ttlFor func(T) time.Duration) (T, bool, error) {
	var zero T

	if s == nil {
		data, err := fetch()
		return data, false, err
	}

	cached, hit, err := s.Get(table, key)
	if err == nil && hit {
		var result T
		if err := json.Unmarshal([]byte(cached), &result); err == nil {
			slog.Debug("Cache hit", "table", table, "key", key)
			return result, true, nil
		}
		slog.Warn("Failed to unmarshal cached data, refetching", "table", table, "key", key, "error", err)
	}
	if err != nil {
		slog.Warn("Cache read failed, fetching directly", "table", table, "key", key, "error", err)
	}

	slog.Debug("Cache miss, fetching data", "table", table, "key", key)
	data, err := fetch()
	if err != nil {
		return zero, false, err
	}

	ttl := s.ttl
	if ttlFor != nil {
		ttl = ttlFor(data)
	}

	raw, err := json.Marshal(data)
	if err != nil {
		slog.Warn("Failed to marshal data for caching", "table", table, "key", key, "error", err)
		return data, false, nil
	}
	if err := s.Set(table, key, string(raw), ttl); err != nil {
		slog.Warn("Failed to cache data", "table", table, "key", key, "error", err)
	}
	return data, false, nil
}

// NegativeTTLFor returns a TTL selector that caches "not found" results
// with NegativeTTL and everything else with ttl.
func NegativeTTLFor[T any](ttl time.Duration, isNotFound func(T) bool) func(T) time.Duration {
	return func(result T) time.Duration {
		if isNotFound(result) {
			return NegativeTTL
		}
		return ttl
	}
}

func validateTable(table string) error {
	if !validTables[table] {
		return fmt.Errorf("invalid cache table name: %s", table)
	}
	return nil
}
