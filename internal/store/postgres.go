// Package store provides persistence backends for PrepDeck user data.
//
// This file implements the PostgreSQL-backed store.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	_ "github.com/lib/pq"
	"github.com/prepdeck/PrepDeck/internal/models"
)

// Database connection pool configuration constants
const (
	// DefaultMaxOpenConns is the default maximum number of open connections to the database
	DefaultMaxOpenConns = 25
	// DefaultMaxIdleConns is the default maximum number of idle connections in the pool
	DefaultMaxIdleConns = 25
	// DefaultConnMaxLifetime is the default maximum amount of time a connection may be reused
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store based on provided options.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore: creating Postgres store", "DSN_set", cfg.DSN != "")
	dsn := cfg.DSN
	if dsn == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		slog.Error("Failed to open Postgres connection", "error", err)
		return nil, err
	}

	// Configure connection pool for better performance
	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("Postgres ping failed", "error", err)
		return nil, err
	}

	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Debug("Postgres migrations applied successfully")
	return &PostgresStore{db: db}, nil
}

// SaveUserData replaces the full persisted record in one transaction.
func (s *PostgresStore) SaveUserData(data models.UserData) error {
	tx, err := s.db.Begin()
	if err != nil {
		slog.Error("PostgresStore SaveUserData begin failed", "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"chat_history", "interview_sessions", "performance_scores", "user_counters"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			slog.Error("PostgresStore SaveUserData clear failed", "error", err, "table", table)
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, e := range data.ChatHistory {
		_, err := tx.Exec(`INSERT INTO chat_history (role, content, timestamp, question_id) VALUES ($1, $2, $3, $4)`,
			e.Role, e.Content, e.Timestamp, nilIfEmpty(e.QuestionID))
		if err != nil {
			slog.Error("PostgresStore SaveUserData chat insert failed", "error", err)
			return fmt.Errorf("failed to insert chat entry: %w", err)
		}
	}

	for _, r := range data.InterviewSessions {
		_, err := tx.Exec(`INSERT INTO interview_sessions (id, timestamp, category, duration_min, questions_asked, responses)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			r.ID, r.Timestamp, r.Category, r.DurationMin, r.QuestionsAsked, r.Responses)
		if err != nil {
			slog.Error("PostgresStore SaveUserData session insert failed", "error", err, "id", r.ID)
			return fmt.Errorf("failed to insert session record %s: %w", r.ID, err)
		}
	}

	if err := insertScores(tx, data.PerformanceData,
		`INSERT INTO performance_scores (category, score, timestamp) VALUES ($1, $2, $3)`); err != nil {
		slog.Error("PostgresStore SaveUserData score insert failed", "error", err)
		return err
	}

	_, err = tx.Exec(`INSERT INTO user_counters (id, session_count, total_study_time) VALUES (1, $1, $2)`,
		data.SessionCount, data.TotalStudyTime)
	if err != nil {
		slog.Error("PostgresStore SaveUserData counters insert failed", "error", err)
		return fmt.Errorf("failed to insert counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		slog.Error("PostgresStore SaveUserData commit failed", "error", err)
		return fmt.Errorf("failed to commit user data: %w", err)
	}
	slog.Debug("PostgresStore SaveUserData succeeded",
		"entries", len(data.ChatHistory), "sessions", len(data.InterviewSessions))
	return nil
}

// LoadUserData reads the full persisted record. Empty tables yield the
// zero-value record.
func (s *PostgresStore) LoadUserData() (models.UserData, error) {
	var data models.UserData

	rows, err := s.db.Query(`SELECT role, content, timestamp, question_id FROM chat_history ORDER BY id`)
	if err != nil {
		slog.Error("PostgresStore LoadUserData chat query failed", "error", err)
		return data, fmt.Errorf("failed to query chat history: %w", err)
	}
	if data.ChatHistory, err = scanChatHistory(rows); err != nil {
		slog.Error("PostgresStore LoadUserData chat scan failed", "error", err)
		return data, err
	}

	rows, err = s.db.Query(`SELECT id, timestamp, category, duration_min, questions_asked, responses
		FROM interview_sessions ORDER BY timestamp`)
	if err != nil {
		slog.Error("PostgresStore LoadUserData session query failed", "error", err)
		return data, fmt.Errorf("failed to query session records: %w", err)
	}
	if data.InterviewSessions, err = scanSessions(rows); err != nil {
		slog.Error("PostgresStore LoadUserData session scan failed", "error", err)
		return data, err
	}

	rows, err = s.db.Query(`SELECT category, score, timestamp FROM performance_scores ORDER BY id`)
	if err != nil {
		slog.Error("PostgresStore LoadUserData score query failed", "error", err)
		return data, fmt.Errorf("failed to query performance scores: %w", err)
	}
	if data.PerformanceData, err = scanScores(rows); err != nil {
		slog.Error("PostgresStore LoadUserData score scan failed", "error", err)
		return data, err
	}

	err = s.db.QueryRow(`SELECT session_count, total_study_time FROM user_counters WHERE id = 1`).
		Scan(&data.SessionCount, &data.TotalStudyTime)
	if err == sql.ErrNoRows {
		slog.Debug("PostgresStore LoadUserData: no counters row, using defaults")
		return data, nil
	}
	if err != nil {
		slog.Error("PostgresStore LoadUserData counters scan failed", "error", err)
		return data, fmt.Errorf("failed to read counters: %w", err)
	}

	slog.Debug("PostgresStore LoadUserData succeeded",
		"entries", len(data.ChatHistory), "sessions", len(data.InterviewSessions), "session_count", data.SessionCount)
	return data, nil
}

// Close closes the Postgres database connection.
func (s *PostgresStore) Close() error {
	slog.Debug("Closing Postgres database connection")
	err := s.db.Close()
	if err != nil {
		slog.Error("Failed to close Postgres database", "error", err)
	}
	return err
}
