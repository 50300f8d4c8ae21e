// Package models defines the core data structures for PrepDeck.
//
// It includes question, conversation, and history types shared across modules.
package models

import (
	"errors"
	"time"
)

// Category identifies an interview question category.
type Category string

const (
	// CategoryCoding covers data structures and algorithms questions.
	CategoryCoding Category = "coding"
	// CategoryDesign covers system design questions.
	CategoryDesign Category = "design"
	// CategoryBehavioral covers leadership-principle behavioral questions.
	CategoryBehavioral Category = "behavioral"
)

// Role identifies the author of a conversation entry.
type Role string

const (
	// RoleUser marks an entry written by the candidate.
	RoleUser Role = "user"
	// RoleInterviewer marks an entry produced by the interviewer persona.
	RoleInterviewer Role = "interviewer"
	// RoleAssistant marks an entry produced by the coach persona.
	RoleAssistant Role = "assistant"
)

// Validation constants for answer input.
const (
	// MaxAnswerLength defines the maximum accepted length for an answer submission.
	MaxAnswerLength = 16384
)

// Error variables for better error handling and testability
var (
	ErrInvalidCategory  = errors.New("invalid question category")
	ErrEmptyAnswer      = errors.New("answer text cannot be empty")
	ErrAnswerTooLong    = errors.New("answer text exceeds maximum length")
	ErrNoActiveSession  = errors.New("no active interview session")
	ErrSessionActive    = errors.New("an interview session is already active")
	ErrNoActiveQuestion = errors.New("no active question")
	ErrNoHints          = errors.New("current question has no hints")
	ErrNoResponses      = errors.New("no responses submitted yet")
	ErrEmptyCatalog     = errors.New("question catalog has no questions for category")
)

// IsValidCategory checks if the given category is supported.
func IsValidCategory(c Category) bool {
	switch c {
	case CategoryCoding, CategoryDesign, CategoryBehavioral:
		return true
	default:
		return false
	}
}

// Question is an immutable catalog entry. Defined at load time, never mutated.
type Question struct {
	ID         string   `json:"id" yaml:"id"`
	Category   Category `json:"category" yaml:"category"`
	Difficulty string   `json:"difficulty,omitempty" yaml:"difficulty,omitempty"`
	Topic      string   `json:"topic,omitempty" yaml:"topic,omitempty"`
	Principle  string   `json:"principle,omitempty" yaml:"principle,omitempty"` // leadership principle for behavioral questions
	Prompt     string   `json:"prompt" yaml:"prompt"`
	Hints      []string `json:"hints,omitempty" yaml:"hints,omitempty"`
	FollowUps  []string `json:"follow_ups,omitempty" yaml:"follow_ups,omitempty"`
	FocusAreas []string `json:"focus_areas,omitempty" yaml:"focus_areas,omitempty"`
	Approach   string   `json:"expected_approach,omitempty" yaml:"expected_approach,omitempty"`
}

// ConversationEntry is a single message in the retained conversation log.
// Entries are append-only; they are never mutated after creation.
type ConversationEntry struct {
	Role       Role      `json:"role"`
	Content    string    `json:"content"`
	Timestamp  time.Time `json:"timestamp"`
	QuestionID string    `json:"question_id,omitempty"` // question active when the entry was created
}

// SessionRecord summarizes one completed interview session. Created exactly
// once at end-session and immutable thereafter.
type SessionRecord struct {
	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Category       Category  `json:"type"`
	DurationMin    int       `json:"duration"`
	QuestionsAsked int       `json:"questions_asked"`
	Responses      int       `json:"responses"`
}

// PerformanceHistory holds per-category score sequences plus the shared
// timestamp sequence used for charting. JSON keys match the persisted
// user-data layout.
type PerformanceHistory struct {
	CodingScores     []int       `json:"dsa_scores"`
	DesignScores     []int       `json:"system_design_scores"`
	BehavioralScores []int       `json:"behavioral_scores"`
	Timestamps       []time.Time `json:"timestamps"`
}

// AddScore appends a score for the given category along with its timestamp.
func (p *PerformanceHistory) AddScore(category Category, score int, ts time.Time) {
	switch category {
	case CategoryCoding:
		p.CodingScores = append(p.CodingScores, score)
	case CategoryDesign:
		p.DesignScores = append(p.DesignScores, score)
	case CategoryBehavioral:
		p.BehavioralScores = append(p.BehavioralScores, score)
	default:
		return
	}
	p.Timestamps = append(p.Timestamps, ts)
}

// Scores returns the score sequence for a category.
func (p *PerformanceHistory) Scores(category Category) []int {
	switch category {
	case CategoryCoding:
		return p.CodingScores
	case CategoryDesign:
		return p.DesignScores
	case CategoryBehavioral:
		return p.BehavioralScores
	}
	return nil
}

// Average returns the mean score for a category, or 0 with no samples.
func (p *PerformanceHistory) Average(category Category) float64 {
	scores := p.Scores(category)
	if len(scores) == 0 {
		return 0
	}
	sum := 0
	for _, s := range scores {
		sum += s
	}
	return float64(sum) / float64(len(scores))
}

// TotalScores returns the number of recorded scores across all categories.
func (p *PerformanceHistory) TotalScores() int {
	return len(p.CodingScores) + len(p.DesignScores) + len(p.BehavioralScores)
}

// Readiness computes the overall readiness percentage: the mean of the three
// category averages scaled to 0-100. Returns 0 with no recorded scores.
func (p *PerformanceHistory) Readiness() float64 {
	if p.TotalScores() == 0 {
		return 0
	}
	avg := (p.Average(CategoryCoding) + p.Average(CategoryDesign) + p.Average(CategoryBehavioral)) / 3
	return avg * 10
}

// UserData is the complete persisted record for a user. Field absence on
// load defaults to empty/zero; the zero value is a valid first-run state.
type UserData struct {
	ChatHistory       []ConversationEntry `json:"chat_history"`
	InterviewSessions []SessionRecord     `json:"interview_sessions"`
	PerformanceData   PerformanceHistory  `json:"performance_data"`
	SessionCount      int                 `json:"session_count"`
	TotalStudyTime    float64             `json:"total_study_time"` // minutes
}
