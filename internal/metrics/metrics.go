// Package metrics tracks in-process counters for PrepDeck operations.
package metrics

import (
	"sync"
	"time"
)

// Metrics holds cumulative counters since process start.
type Metrics struct {
	mu                 sync.RWMutex
	SessionsStarted    int64
	SessionsCompleted  int64
	AnswersSubmitted   int64
	HintsServed        int64
	EvaluatorCalls     int64
	EvaluatorSuccesses int64
	LastUpdateTime     time.Time
}

// New creates a zeroed metrics holder.
func New() *Metrics {
	return &Metrics{
		LastUpdateTime: time.Now(),
	}
}

// IncrementSessionsStarted records a started interview session.
func (m *Metrics) IncrementSessionsStarted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionsStarted++
	m.LastUpdateTime = time.Now()
}

// IncrementSessionsCompleted records an ended interview session.
func (m *Metrics) IncrementSessionsCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SessionsCompleted++
	m.LastUpdateTime = time.Now()
}

// IncrementAnswersSubmitted records a processed answer submission.
func (m *Metrics) IncrementAnswersSubmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnswersSubmitted++
	m.LastUpdateTime = time.Now()
}

// IncrementHintsServed records a served hint.
func (m *Metrics) IncrementHintsServed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HintsServed++
	m.LastUpdateTime = time.Now()
}

// IncrementEvaluatorCall records a collaborator call and whether it succeeded.
func (m *Metrics) IncrementEvaluatorCall(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EvaluatorCalls++
	if success {
		m.EvaluatorSuccesses++
	}
	m.LastUpdateTime = time.Now()
}

// Snapshot returns a copy of the current counters.
type Snapshot struct {
	SessionsStarted    int64     `json:"sessions_started"`
	SessionsCompleted  int64     `json:"sessions_completed"`
	AnswersSubmitted   int64     `json:"answers_submitted"`
	HintsServed        int64     `json:"hints_served"`
	EvaluatorCalls     int64     `json:"evaluator_calls"`
	EvaluatorSuccesses int64     `json:"evaluator_successes"`
	LastUpdateTime     time.Time `json:"last_update_time"`
}

// GetSnapshot returns a consistent copy of all counters.
func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		SessionsStarted:    m.SessionsStarted,
		SessionsCompleted:  m.SessionsCompleted,
		AnswersSubmitted:   m.AnswersSubmitted,
		HintsServed:        m.HintsServed,
		EvaluatorCalls:     m.EvaluatorCalls,
		EvaluatorSuccesses: m.EvaluatorSuccesses,
		LastUpdateTime:     m.LastUpdateTime,
	}
}
