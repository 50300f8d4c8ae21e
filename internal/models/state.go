// Package models defines session state structures for the interview flow.
package models

import "time"

// StateType represents a specific state within the interview session flow.
type StateType string

// State constants for the interview session flow.
const (
	// StateIdle means no category or question is active.
	StateIdle StateType = "IDLE"
	// StateQuestionPosed means a category and question are selected.
	StateQuestionPosed StateType = "QUESTION_POSED"
	// StateAwaitingSubmission means the question was rendered and an answer is expected.
	StateAwaitingSubmission StateType = "AWAITING_SUBMISSION"
	// StateFollowUp means an answer was processed and a follow-up was issued.
	StateFollowUp StateType = "FOLLOW_UP"
	// StateEnded means the session was explicitly ended.
	StateEnded StateType = "ENDED"
)

// SessionState is the live state of one interview session. It is mutated
// only by the session machine's transition operations; there is no ambient
// global copy.
type SessionState struct {
	ID            string     `json:"id"`
	Current       StateType  `json:"state"`
	Category      Category   `json:"category,omitempty"`
	Question      *Question  `json:"question,omitempty"`
	FollowUpCount int        `json:"follow_up_count"` // answer rounds completed for the current question
	Cursor        int        `json:"cursor"`          // shared round-robin cursor, mirrors the persisted session count
	StartedAt     *time.Time `json:"started_at,omitempty"`
	Recording     bool       `json:"recording"` // UI-only voice recording flag
	DemoMode      bool       `json:"demo_mode"`
	LogStart      int        `json:"-"` // index into the retained chat history where this session began
}

// Active reports whether an interview session is in progress.
func (s *SessionState) Active() bool {
	switch s.Current {
	case StateQuestionPosed, StateAwaitingSubmission, StateFollowUp:
		return true
	default:
		return false
	}
}

// Elapsed returns time spent since the session started. Computed lazily;
// zero when no session is running.
func (s *SessionState) Elapsed(now time.Time) time.Duration {
	if s.StartedAt == nil {
		return 0
	}
	return now.Sub(*s.StartedAt)
}
