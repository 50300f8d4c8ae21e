// Package store provides persistence backends for PrepDeck user data.
//
// The default backend is a single JSON file overwritten on every save.
// SQLite and PostgreSQL backends are available for installs that want a
// real database, and an in-memory store backs tests.
package store

import (
	"strings"

	"github.com/prepdeck/PrepDeck/internal/models"
)

// DetectDSNType classifies a DSN string as "postgres", "sqlite", or "json"
// so callers can pick a backend from a single configuration value.
func DetectDSNType(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"), strings.Contains(dsn, "host="):
		return "postgres"
	case strings.HasSuffix(dsn, ".db"), strings.HasSuffix(dsn, ".sqlite"), strings.HasSuffix(dsn, ".sqlite3"):
		return "sqlite"
	default:
		return "json"
	}
}

// Store persists the accumulated user history. Load must return a
// structurally complete zero-value UserData when nothing was saved yet;
// callers treat save/load failures as non-fatal.
type Store interface {
	SaveUserData(data models.UserData) error
	LoadUserData() (models.UserData, error)
	Close() error
}

// Opts holds configuration options for store backends.
type Opts struct {
	// DSN is the database connection string, or the file path for the
	// JSON and SQLite backends.
	DSN string
}

// Option configures store construction.
type Option func(*Opts)

// WithDSN sets the backend DSN (connection string or file path).
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// InMemoryStore is a simple in-memory store, used in tests.
type InMemoryStore struct {
	data models.UserData
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// SaveUserData keeps a copy of the user data in memory.
func (s *InMemoryStore) SaveUserData(data models.UserData) error {
	s.data = data
	return nil
}

// LoadUserData returns the stored user data, or the zero value if nothing
// was saved.
func (s *InMemoryStore) LoadUserData() (models.UserData, error) {
	return s.data, nil
}

// Close is a no-op for the in-memory store.
func (s *InMemoryStore) Close() error {
	return nil
}
