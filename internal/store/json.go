// Package store provides persistence backends for PrepDeck user data.
//
// This file implements the JSON file store: the whole record is rewritten
// on every save. A crash mid-write can corrupt the file; acceptable for a
// single-user tool, and the loader degrades to an empty default.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/prepdeck/PrepDeck/internal/models"
)

// Constants for JSON store configuration
const (
	// DefaultDirPermissions defines the default permissions for data directories
	DefaultDirPermissions = 0755
	// DefaultFilePermissions defines the default permissions for the data file
	DefaultFilePermissions = 0644
)

// JSONFileStore persists user data as a single JSON document on disk.
type JSONFileStore struct {
	path string
}

// NewJSONFileStore creates a JSON file store at the path given by WithDSN.
// The parent directory is created if it does not exist.
func NewJSONFileStore(opts ...Option) (*JSONFileStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Error("JSONFileStore path not set")
		return nil, fmt.Errorf("user data path not set")
	}

	dir := filepath.Dir(cfg.DSN)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create data directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	slog.Debug("JSONFileStore initialized", "path", cfg.DSN)
	return &JSONFileStore{path: cfg.DSN}, nil
}

// SaveUserData overwrites the data file with the full record.
func (s *JSONFileStore) SaveUserData(data models.UserData) error {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		slog.Error("JSONFileStore SaveUserData marshal failed", "error", err)
		return fmt.Errorf("failed to marshal user data: %w", err)
	}
	if err := os.WriteFile(s.path, jsonData, DefaultFilePermissions); err != nil {
		slog.Error("JSONFileStore SaveUserData write failed", "error", err, "path", s.path)
		return fmt.Errorf("failed to write user data to %s: %w", s.path, err)
	}
	slog.Debug("JSONFileStore SaveUserData succeeded", "path", s.path, "bytes", len(jsonData))
	return nil
}

// LoadUserData reads the data file. A missing file is a first run and
// returns the zero-value record.
func (s *JSONFileStore) LoadUserData() (models.UserData, error) {
	var data models.UserData
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("JSONFileStore LoadUserData: no data file, returning defaults", "path", s.path)
			return data, nil
		}
		slog.Error("JSONFileStore LoadUserData read failed", "error", err, "path", s.path)
		return data, fmt.Errorf("failed to read user data from %s: %w", s.path, err)
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		slog.Error("JSONFileStore LoadUserData unmarshal failed", "error", err, "path", s.path)
		return models.UserData{}, fmt.Errorf("failed to parse user data: %w", err)
	}
	slog.Debug("JSONFileStore LoadUserData succeeded",
		"path", s.path, "entries", len(data.ChatHistory), "sessions", len(data.InterviewSessions))
	return data, nil
}

// Close is a no-op for the JSON file store.
func (s *JSONFileStore) Close() error {
	return nil
}
