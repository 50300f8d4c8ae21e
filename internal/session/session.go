// Package session implements the interview session state machine.
//
// A Machine owns the live session state and the accumulated user history.
// All transitions happen under one mutex; collaborator calls go through the
// Responder interface so the offline demo client and the live model client
// are interchangeable.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/prepdeck/PrepDeck/internal/catalog"
	"github.com/prepdeck/PrepDeck/internal/demo"
	"github.com/prepdeck/PrepDeck/internal/metrics"
	"github.com/prepdeck/PrepDeck/internal/models"
	"github.com/prepdeck/PrepDeck/internal/store"
)

// feedbackContextEntries is how many recent candidate responses are included
// as context for a mid-session feedback request.
const feedbackContextEntries = 3

// Machine drives the interview flow. Safe for concurrent use.
type Machine struct {
	mu      sync.Mutex
	state   models.SessionState
	history models.UserData

	catalog *catalog.Catalog
	live    Responder
	demo    Responder
	store   store.Store
	metrics *metrics.Metrics

	now func() time.Time
}

// Opts collects optional Machine configuration.
type Opts struct {
	Live     Responder
	Demo     Responder
	Metrics  *metrics.Metrics
	DemoMode bool
	Clock    func() time.Time
}

// Option configures the Machine.
type Option func(*Opts)

// WithLiveResponder sets the live collaborator client.
func WithLiveResponder(r Responder) Option {
	return func(o *Opts) { o.Live = r }
}

// WithDemoResponder overrides the offline collaborator client.
func WithDemoResponder(r Responder) Option {
	return func(o *Opts) { o.Demo = r }
}

// WithMetrics sets the metrics holder.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Opts) { o.Metrics = m }
}

// WithDemoMode forces the offline collaborator from startup.
func WithDemoMode(enabled bool) Option {
	return func(o *Opts) { o.DemoMode = enabled }
}

// WithClock overrides the time source. Used by tests.
func WithClock(clock func() time.Time) Option {
	return func(o *Opts) { o.Clock = clock }
}

// New builds a Machine over the given catalog and store, loading any
// previously persisted history. A failed load is logged and treated as a
// first run rather than a startup failure.
func New(cat *catalog.Catalog, st store.Store, opts ...Option) *Machine {
	cfg := Opts{Clock: time.Now}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Demo == nil {
		cfg.Demo = demo.NewClient()
	}

	m := &Machine{
		catalog: cat,
		live:    cfg.Live,
		demo:    cfg.Demo,
		store:   st,
		metrics: cfg.Metrics,
		now:     cfg.Clock,
	}
	m.state.Current = models.StateIdle
	m.state.DemoMode = cfg.DemoMode || cfg.Live == nil

	if st != nil {
		data, err := st.LoadUserData()
		if err != nil {
			slog.Warn("Machine.New: failed to load user data, starting fresh", "error", err)
		} else {
			m.history = data
		}
	}
	return m
}

// responder picks the collaborator for the current mode. Falls back to the
// demo client whenever no live client is configured.
func (m *Machine) responder() Responder {
	if m.state.DemoMode || m.live == nil {
		return m.demo
	}
	return m.live
}

// persist saves the accumulated history. Returns a warning string on failure
// so callers can degrade instead of dropping the in-memory result.
func (m *Machine) persist() string {
	if m.store == nil {
		return ""
	}
	if err := m.store.SaveUserData(m.history); err != nil {
		slog.Warn("Machine.persist: failed to save user data", "error", err)
		return fmt.Sprintf("progress could not be saved: %v", err)
	}
	return ""
}

// appendEntry appends one conversation entry tagged with the active question.
func (m *Machine) appendEntry(role models.Role, content string) {
	questionID := ""
	if m.state.Question != nil {
		questionID = m.state.Question.ID
	}
	m.history.ChatHistory = append(m.history.ChatHistory, models.ConversationEntry{
		Role:       role,
		Content:    content,
		Timestamp:  m.now(),
		QuestionID: questionID,
	})
}

// sessionResponses counts candidate entries logged since the session began.
func (m *Machine) sessionResponses() int {
	n := 0
	for _, e := range m.sessionLog() {
		if e.Role == models.RoleUser {
			n++
		}
	}
	return n
}

// sessionLog returns the slice of the retained history belonging to the
// current session.
func (m *Machine) sessionLog() []models.ConversationEntry {
	start := m.state.LogStart
	if start < 0 || start > len(m.history.ChatHistory) {
		return nil
	}
	return m.history.ChatHistory[start:]
}

// StartSession begins a new interview session for the given category. The
// round-robin cursor is the persisted session count, so consecutive sessions
// in one category walk the bank in order.
func (m *Machine) StartSession(category models.Category) (models.SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Active() {
		return m.state, models.ErrSessionActive
	}
	if !models.IsValidCategory(category) {
		return m.state, fmt.Errorf("%w: %q", models.ErrInvalidCategory, category)
	}

	m.history.SessionCount++
	m.state.Cursor = m.history.SessionCount

	q, err := m.catalog.NextQuestion(category, m.state.Cursor)
	if err != nil {
		m.history.SessionCount--
		m.state.Cursor = m.history.SessionCount
		return m.state, err
	}

	started := m.now()
	m.state.ID = uuid.New().String()
	m.state.Current = models.StateQuestionPosed
	m.state.Category = category
	m.state.Question = &q
	m.state.FollowUpCount = 0
	m.state.StartedAt = &started
	m.state.Recording = false
	m.state.LogStart = len(m.history.ChatHistory)

	if m.metrics != nil {
		m.metrics.IncrementSessionsStarted()
	}
	slog.Info("Machine.StartSession: session started",
		"session_id", m.state.ID, "category", category, "question_id", q.ID, "cursor", m.state.Cursor)
	return m.state, nil
}

// SubmitAnswer records the candidate's answer and obtains an interviewer
// follow-up. A collaborator failure degrades to a diagnostic entry in the
// log; the submitted answer is never lost.
func (m *Machine) SubmitAnswer(ctx context.Context, answer string) (models.ConversationEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return models.ConversationEntry{}, models.ErrEmptyAnswer
	}
	if len(answer) > models.MaxAnswerLength {
		return models.ConversationEntry{}, models.ErrAnswerTooLong
	}
	if m.state.Current != models.StateQuestionPosed && m.state.Current != models.StateAwaitingSubmission {
		return models.ConversationEntry{}, models.ErrNoActiveSession
	}

	m.appendEntry(models.RoleUser, trimmed)

	m.state.Current = models.StateFollowUp
	reply, err := m.responder().Respond(ctx, trimmed, interviewContext(&m.state), true)
	if err != nil {
		slog.Warn("Machine.SubmitAnswer: collaborator failed", "session_id", m.state.ID, "error", err)
		reply = fmt.Sprintf("The interviewer is temporarily unavailable (%v). Your answer was recorded; try submitting again or request a hint.", err)
	}
	if m.metrics != nil {
		m.metrics.IncrementAnswersSubmitted()
		m.metrics.IncrementEvaluatorCall(err == nil)
	}

	m.appendEntry(models.RoleInterviewer, reply)
	m.state.FollowUpCount++
	m.state.Current = models.StateAwaitingSubmission

	if notice := m.persist(); notice != "" {
		slog.Warn("Machine.SubmitAnswer: " + notice)
	}

	entry := m.history.ChatHistory[len(m.history.ChatHistory)-1]
	return entry, nil
}

// NextQuestion advances the active session to the next question in the same
// category. The conversation log is retained across the switch.
func (m *Machine) NextQuestion() (models.SessionState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.Active() {
		return m.state, models.ErrNoActiveSession
	}

	m.history.SessionCount++
	m.state.Cursor = m.history.SessionCount

	q, err := m.catalog.NextQuestion(m.state.Category, m.state.Cursor)
	if err != nil {
		m.history.SessionCount--
		m.state.Cursor = m.history.SessionCount
		return m.state, err
	}

	m.state.Question = &q
	m.state.FollowUpCount = 0
	m.state.Current = models.StateQuestionPosed

	slog.Info("Machine.NextQuestion: advanced to next question",
		"session_id", m.state.ID, "question_id", q.ID, "cursor", m.state.Cursor)
	return m.state, nil
}

// RequestHint returns the next hint for the active question. The hint index
// follows the answer round count and wraps around the hint list.
func (m *Machine) RequestHint() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.Active() || m.state.Question == nil {
		return "", models.ErrNoActiveQuestion
	}
	hint, err := catalog.HintAt(*m.state.Question, m.state.FollowUpCount)
	if err != nil {
		return "", err
	}
	if m.metrics != nil {
		m.metrics.IncrementHintsServed()
	}
	return hint, nil
}

// RequestFeedback asks the coach persona for a mid-session review of the
// candidate's responses so far. Read-only with respect to session state.
func (m *Machine) RequestFeedback(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.Active() {
		return "", models.ErrNoActiveSession
	}

	var responses []string
	for _, e := range m.sessionLog() {
		if e.Role == models.RoleUser {
			responses = append(responses, e.Content)
		}
	}
	if len(responses) == 0 {
		return "", models.ErrNoResponses
	}
	if len(responses) > feedbackContextEntries {
		responses = responses[len(responses)-feedbackContextEntries:]
	}

	contextStr := fmt.Sprintf("Interview type: %s\nRecent responses: %s",
		m.state.Category, strings.Join(responses, " | "))
	reply, err := m.responder().Respond(ctx, feedbackRequestPrompt, contextStr, false)
	if m.metrics != nil {
		m.metrics.IncrementEvaluatorCall(err == nil)
	}
	if err != nil {
		return "", fmt.Errorf("feedback request failed: %w", err)
	}
	return reply, nil
}

// Chat sends a free-form coaching question outside the interview flow and
// records both sides in the retained log.
func (m *Machine) Chat(ctx context.Context, message string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	trimmed := strings.TrimSpace(message)
	if trimmed == "" {
		return "", models.ErrEmptyAnswer
	}

	m.appendEntry(models.RoleUser, trimmed)
	reply, err := m.responder().Respond(ctx, trimmed, "", false)
	if m.metrics != nil {
		m.metrics.IncrementEvaluatorCall(err == nil)
	}
	if err != nil {
		slog.Warn("Machine.Chat: collaborator failed", "error", err)
		reply = fmt.Sprintf("The coach is temporarily unavailable (%v). Please try again.", err)
	}
	m.appendEntry(models.RoleAssistant, reply)

	if notice := m.persist(); notice != "" {
		slog.Warn("Machine.Chat: " + notice)
	}
	return reply, nil
}

// EvaluatePractice scores a standalone practice answer against a catalog
// question and records the score in the performance history. A collaborator
// failure yields a neutral default score rather than an error.
func (m *Machine) EvaluatePractice(ctx context.Context, question models.Question, answer string) (Evaluation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return Evaluation{}, models.ErrEmptyAnswer
	}
	if len(answer) > models.MaxAnswerLength {
		return Evaluation{}, models.ErrAnswerTooLong
	}

	feedback, err := m.responder().Respond(ctx,
		evaluationPrompt(question, trimmed, question.Category), "", false)
	if m.metrics != nil {
		m.metrics.IncrementEvaluatorCall(err == nil)
	}

	eval := Evaluation{Timestamp: m.now()}
	if err != nil {
		slog.Warn("Machine.EvaluatePractice: collaborator failed", "question_id", question.ID, "error", err)
		eval.Score = DefaultScore
		eval.Feedback = fmt.Sprintf("Evaluation is temporarily unavailable (%v). A neutral score was recorded.", err)
	} else {
		eval.Score = ParseScore(feedback)
		eval.Feedback = feedback
	}

	m.history.PerformanceData.AddScore(question.Category, eval.Score, eval.Timestamp)
	eval.Notice = m.persist()
	return eval, nil
}

// EndSession closes the active session: a summary record is appended to the
// history, study time is accumulated, and the machine returns to idle. A
// persistence failure is reported in the record's warning, never as a lost
// session.
func (m *Machine) EndSession() (models.SessionRecord, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.state.Active() {
		return models.SessionRecord{}, "", models.ErrNoActiveSession
	}

	now := m.now()
	duration := int(m.state.Elapsed(now).Minutes())

	record := models.SessionRecord{
		ID:             m.state.ID,
		Timestamp:      now,
		Category:       m.state.Category,
		DurationMin:    duration,
		QuestionsAsked: m.state.FollowUpCount + 1,
		Responses:      m.sessionResponses(),
	}
	m.history.InterviewSessions = append(m.history.InterviewSessions, record)
	m.history.TotalStudyTime += float64(duration)

	notice := m.persist()

	demoMode := m.state.DemoMode
	m.state = models.SessionState{Current: models.StateIdle, DemoMode: demoMode}
	m.state.Cursor = m.history.SessionCount

	if m.metrics != nil {
		m.metrics.IncrementSessionsCompleted()
	}
	slog.Info("Machine.EndSession: session ended",
		"session_id", record.ID, "category", record.Category,
		"duration_min", record.DurationMin, "responses", record.Responses)
	return record, notice, nil
}

// Snapshot returns a copy of the live session state.
func (m *Machine) Snapshot() models.SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// SessionConversation returns a copy of the conversation entries belonging
// to the current session.
func (m *Machine) SessionConversation() []models.ConversationEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	log := m.sessionLog()
	out := make([]models.ConversationEntry, len(log))
	copy(out, log)
	return out
}

// SetDemoMode switches between the live and offline collaborator. Takes
// effect on the next collaborator call.
func (m *Machine) SetDemoMode(enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state.DemoMode = enabled || m.live == nil
}

// ToggleRecording flips the voice recording flag for the active session and
// returns the new value.
func (m *Machine) ToggleRecording() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.state.Active() {
		return false, models.ErrNoActiveSession
	}
	m.state.Recording = !m.state.Recording
	return m.state.Recording, nil
}

// Dashboard aggregates readiness and progress statistics for display.
type Dashboard struct {
	Readiness         float64                `json:"readiness"`
	CodingAverage     float64                `json:"coding_average"`
	DesignAverage     float64                `json:"design_average"`
	BehavioralAverage float64                `json:"behavioral_average"`
	SessionCount      int                    `json:"session_count"`
	TotalScores       int                    `json:"total_scores"`
	StudyHours        float64                `json:"study_hours"`
	TotalStudyMinutes float64                `json:"total_study_minutes"`
	RecentSessions    []models.SessionRecord `json:"recent_sessions"`
}

// dashboardRecentSessions caps the session list shown on the dashboard.
const dashboardRecentSessions = 5

// GetDashboard computes the aggregate view over the stored history.
func (m *Machine) GetDashboard() Dashboard {
	m.mu.Lock()
	defer m.mu.Unlock()

	perf := &m.history.PerformanceData
	recent := m.history.InterviewSessions
	if len(recent) > dashboardRecentSessions {
		recent = recent[len(recent)-dashboardRecentSessions:]
	}
	out := make([]models.SessionRecord, len(recent))
	copy(out, recent)

	return Dashboard{
		Readiness:         perf.Readiness(),
		CodingAverage:     perf.Average(models.CategoryCoding),
		DesignAverage:     perf.Average(models.CategoryDesign),
		BehavioralAverage: perf.Average(models.CategoryBehavioral),
		SessionCount:      m.history.SessionCount,
		TotalScores:       perf.TotalScores(),
		StudyHours:        float64(m.history.SessionCount) * 0.5,
		TotalStudyMinutes: m.history.TotalStudyTime,
		RecentSessions:    out,
	}
}

// History returns a copy of the full session record list, newest last.
func (m *Machine) History() []models.SessionRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.SessionRecord, len(m.history.InterviewSessions))
	copy(out, m.history.InterviewSessions)
	return out
}

// Performance returns a copy of the accumulated performance history.
func (m *Machine) Performance() models.PerformanceHistory {
	m.mu.Lock()
	defer m.mu.Unlock()
	p := m.history.PerformanceData
	return models.PerformanceHistory{
		CodingScores:     append([]int(nil), p.CodingScores...),
		DesignScores:     append([]int(nil), p.DesignScores...),
		BehavioralScores: append([]int(nil), p.BehavioralScores...),
		Timestamps:       append([]time.Time(nil), p.Timestamps...),
	}
}
