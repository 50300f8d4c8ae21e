// Package store provides persistence backends for PrepDeck user data.
//
// This file implements the SQLite-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "embed"

	_ "github.com/mattn/go-sqlite3"
	"github.com/prepdeck/PrepDeck/internal/models"
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store with the given DSN.
// The DSN should be a file path to the SQLite database file.
// If the directory doesn't exist, it will be created.
func NewSQLiteStore(opts ...Option) (*SQLiteStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("NewSQLiteStore invoked", "DSN_set", cfg.DSN != "")

	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("SQLiteStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	dir := filepath.Dir(dsn)
	if err := os.MkdirAll(dir, DefaultDirPermissions); err != nil {
		slog.Error("Failed to create database directory", "error", err, "dir", dir)
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("SQLite ping failed", "error", err)
		return nil, err
	}

	// Run migrations to ensure tables exist
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("SQLite migrations applied successfully")

	return &SQLiteStore{db: db}, nil
}

// SaveUserData replaces the full persisted record in one transaction,
// preserving the whole-record overwrite semantics of the JSON store.
func (s *SQLiteStore) SaveUserData(data models.UserData) error {
	tx, err := s.db.Begin()
	if err != nil {
		slog.Error("SQLiteStore SaveUserData begin failed", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"chat_history", "interview_sessions", "performance_scores", "user_counters"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			slog.Error("SQLiteStore SaveUserData clear failed", "error", err, "table", table)
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, e := range data.ChatHistory {
		_, err := tx.Exec(`INSERT INTO chat_history (role, content, timestamp, question_id) VALUES (?, ?, ?, ?)`,
			e.Role, e.Content, e.Timestamp, nilIfEmpty(e.QuestionID))
		if err != nil {
			slog.Error("SQLiteStore SaveUserData chat insert failed", "error", err)
			return fmt.Errorf("failed to insert chat entry: %w", err)
		}
	}

	for _, r := range data.InterviewSessions {
		_, err := tx.Exec(`INSERT INTO interview_sessions (id, timestamp, category, duration_min, questions_asked, responses)
			VALUES (?, ?, ?, ?, ?, ?)`,
			r.ID, r.Timestamp, r.Category, r.DurationMin, r.QuestionsAsked, r.Responses)
		if err != nil {
			slog.Error("SQLiteStore SaveUserData session insert failed", "error", err, "id", r.ID)
			return fmt.Errorf("failed to insert session record %s: %w", r.ID, err)
		}
	}

	if err := insertScores(tx, data.PerformanceData,
		`INSERT INTO performance_scores (category, score, timestamp) VALUES (?, ?, ?)`); err != nil {
		slog.Error("SQLiteStore SaveUserData score insert failed", "error", err)
		return err
	}

	_, err = tx.Exec(`INSERT INTO user_counters (id, session_count, total_study_time) VALUES (1, ?, ?)`,
		data.SessionCount, data.TotalStudyTime)
	if err != nil {
		slog.Error("SQLiteStore SaveUserData counters insert failed", "error", err)
		return fmt.Errorf("failed to insert counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		slog.Error("SQLiteStore SaveUserData commit failed", "error", err)
		return fmt.Errorf("failed to commit user data: %w", err)
	}
	slog.Debug("SQLiteStore SaveUserData succeeded",
		"entries", len(data.ChatHistory), "sessions", len(data.InterviewSessions))
	return nil
}

// LoadUserData reads the full persisted record. Empty tables yield the
// zero-value record.
func (s *SQLiteStore) LoadUserData() (models.UserData, error) {
	var data models.UserData

	rows, err := s.db.Query(`SELECT role, content, timestamp, question_id FROM chat_history ORDER BY id`)
	if err != nil {
		slog.Error("SQLiteStore LoadUserData chat query failed", "error", err)
		return data, fmt.Errorf("failed to query chat history: %w", err)
	}
	if data.ChatHistory, err = scanChatHistory(rows); err != nil {
		slog.Error("SQLiteStore LoadUserData chat scan failed", "error", err)
		return data, err
	}

	rows, err = s.db.Query(`SELECT id, timestamp, category, duration_min, questions_asked, responses
		FROM interview_sessions ORDER BY timestamp`)
	if err != nil {
		slog.Error("SQLiteStore LoadUserData session query failed", "error", err)
		return data, fmt.Errorf("failed to query session records: %w", err)
	}
	if data.InterviewSessions, err = scanSessions(rows); err != nil {
		slog.Error("SQLiteStore LoadUserData session scan failed", "error", err)
		return data, err
	}

	rows, err = s.db.Query(`SELECT category, score, timestamp FROM performance_scores ORDER BY id`)
	if err != nil {
		slog.Error("SQLiteStore LoadUserData score query failed", "error", err)
		return data, fmt.Errorf("failed to query performance scores: %w", err)
	}
	if data.PerformanceData, err = scanScores(rows); err != nil {
		slog.Error("SQLiteStore LoadUserData score scan failed", "error", err)
		return data, err
	}

	err = s.db.QueryRow(`SELECT session_count, total_study_time FROM user_counters WHERE id = 1`).
		Scan(&data.SessionCount, &data.TotalStudyTime)
	if err == sql.ErrNoRows {
		slog.Debug("SQLiteStore LoadUserData: no counters row, using defaults")
		return data, nil
	}
	if err != nil {
		slog.Error("SQLiteStore LoadUserData counters scan failed", "error", err)
		return data, fmt.Errorf("failed to read counters: %w", err)
	}

	slog.Debug("SQLiteStore LoadUserData succeeded",
		"entries", len(data.ChatHistory), "sessions", len(data.InterviewSessions), "session_count", data.SessionCount)
	return data, nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	slog.Debug("Closing SQLite database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close SQLite database", "error", err)
	}
	return err
}
