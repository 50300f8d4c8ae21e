package store

import (
	"database/sql"
	"fmt"

	"github.com/prepdeck/PrepDeck/internal/models"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// insertScores writes one row per recorded score using the backend's insert
// statement. PerformanceHistory does not record how category adds were
// interleaved, so timestamps are paired with scores in bank order (coding,
// design, behavioral); a second save/load cycle is stable.
func insertScores(tx *sql.Tx, perf models.PerformanceHistory, query string) error {
	i := 0
	for _, category := range []models.Category{models.CategoryCoding, models.CategoryDesign, models.CategoryBehavioral} {
		for _, score := range perf.Scores(category) {
			var ts interface{}
			if i < len(perf.Timestamps) {
				ts = perf.Timestamps[i]
			}
			if _, err := tx.Exec(query, category, score, ts); err != nil {
				return fmt.Errorf("failed to insert %s score: %w", category, err)
			}
			i++
		}
	}
	return nil
}

// scanChatHistory reads all conversation entries from rows ordered by insertion.
func scanChatHistory(rows *sql.Rows) ([]models.ConversationEntry, error) {
	defer rows.Close()
	var entries []models.ConversationEntry
	for rows.Next() {
		var e models.ConversationEntry
		var questionID sql.NullString
		if err := rows.Scan(&e.Role, &e.Content, &e.Timestamp, &questionID); err != nil {
			return nil, fmt.Errorf("scan chat entry failed: %w", err)
		}
		e.QuestionID = questionID.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chat entries failed: %w", err)
	}
	return entries, nil
}

// scanSessions reads all session records from rows ordered by timestamp.
func scanSessions(rows *sql.Rows) ([]models.SessionRecord, error) {
	defer rows.Close()
	var records []models.SessionRecord
	for rows.Next() {
		var r models.SessionRecord
		if err := rows.Scan(&r.ID, &r.Timestamp, &r.Category, &r.DurationMin, &r.QuestionsAsked, &r.Responses); err != nil {
			return nil, fmt.Errorf("scan session record failed: %w", err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session records failed: %w", err)
	}
	return records, nil
}

// scanScores rebuilds a PerformanceHistory from score rows ordered by insertion.
// Each row appends to its category sequence and to the shared timestamp sequence,
// matching how scores are recorded.
func scanScores(rows *sql.Rows) (models.PerformanceHistory, error) {
	defer rows.Close()
	var perf models.PerformanceHistory
	for rows.Next() {
		var category models.Category
		var score int
		var ts sql.NullTime
		if err := rows.Scan(&category, &score, &ts); err != nil {
			return perf, fmt.Errorf("scan score row failed: %w", err)
		}
		perf.AddScore(category, score, ts.Time)
	}
	if err := rows.Err(); err != nil {
		return perf, fmt.Errorf("iterate score rows failed: %w", err)
	}
	return perf, nil
}
