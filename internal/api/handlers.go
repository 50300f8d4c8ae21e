// Package api provides HTTP handlers for PrepDeck endpoints.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prepdeck/PrepDeck/internal/models"
)

// guardErrors are rejected requests that leave session state untouched. They
// are reported as warnings, distinct from hard errors.
func isGuardError(err error) bool {
	switch {
	case errors.Is(err, models.ErrSessionActive),
		errors.Is(err, models.ErrNoActiveSession),
		errors.Is(err, models.ErrNoActiveQuestion),
		errors.Is(err, models.ErrNoHints),
		errors.Is(err, models.ErrNoResponses),
		errors.Is(err, models.ErrEmptyAnswer),
		errors.Is(err, models.ErrAnswerTooLong),
		errors.Is(err, models.ErrInvalidCategory):
		return true
	}
	return false
}

// writeGuardOrError reports a machine error: guard failures become warning
// responses, everything else an error response.
func writeGuardOrError(w http.ResponseWriter, err error) {
	if isGuardError(err) {
		writeJSONResponse(w, statusForError(err), models.Warning(err.Error()))
		return
	}
	writeJSONResponse(w, statusForError(err), models.Error(err.Error()))
}

type startSessionRequest struct {
	Category models.Category `json:"category"`
}

func (s *Server) startSessionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.startSessionHandler: processing start request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.startSessionHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.startSessionHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	state, err := s.machine.StartSession(req.Category)
	if err != nil {
		slog.Warn("Server.startSessionHandler: start rejected", "category", req.Category, "error", err)
		writeGuardOrError(w, err)
		return
	}
	slog.Info("Server.startSessionHandler: session started", "session_id", state.ID, "category", state.Category)
	writeJSONResponse(w, http.StatusCreated, models.SuccessWithMessage("Session started", state))
}

type submitAnswerRequest struct {
	Answer string `json:"answer"`
}

func (s *Server) submitAnswerHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.submitAnswerHandler: processing answer", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.submitAnswerHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req submitAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.submitAnswerHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	entry, err := s.machine.SubmitAnswer(r.Context(), req.Answer)
	if err != nil {
		slog.Warn("Server.submitAnswerHandler: submission rejected", "error", err)
		writeGuardOrError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(entry))
}

func (s *Server) nextQuestionHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.nextQuestionHandler: processing next request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		slog.Warn("Server.nextQuestionHandler: method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	state, err := s.machine.NextQuestion()
	if err != nil {
		slog.Warn("Server.nextQuestionHandler: advance rejected", "error", err)
		writeGuardOrError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Advanced to next question", state))
}

func (s *Server) hintHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.hintHandler: processing hint request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	hint, err := s.machine.RequestHint()
	if err != nil {
		slog.Warn("Server.hintHandler: hint rejected", "error", err)
		writeGuardOrError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"hint": hint}))
}

func (s *Server) feedbackHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.feedbackHandler: processing feedback request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	feedback, err := s.machine.RequestFeedback(r.Context())
	if err != nil {
		slog.Warn("Server.feedbackHandler: feedback rejected", "error", err)
		writeGuardOrError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"feedback": feedback}))
}

func (s *Server) endSessionHandler(w http.ResponseWriter, r *http.Request) {
	slog.Debug("Server.endSessionHandler: processing end request", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	record, notice, err := s.machine.EndSession()
	if err != nil {
		slog.Warn("Server.endSessionHandler: end rejected", "error", err)
		writeGuardOrError(w, err)
		return
	}
	if notice != "" {
		writeJSONResponse(w, http.StatusOK, models.APIResponse{
			Status:  string(models.APIStatusWarning),
			Message: notice,
			Result:  record,
		})
		return
	}
	slog.Info("Server.endSessionHandler: session ended", "session_id", record.ID)
	writeJSONResponse(w, http.StatusOK, models.SuccessWithMessage("Session ended", record))
}

// sessionStateHandler returns the live session state and its conversation
// (GET /api/session).
func (s *Server) sessionStateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	state := s.machine.Snapshot()
	conversation := s.machine.SessionConversation()
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"session":      state,
		"conversation": conversation,
	}))
}

type practiceAnswerRequest struct {
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}

// practiceAnswerHandler evaluates a standalone practice answer against a
// catalog question (POST /api/practice/answer).
func (s *Server) practiceAnswerHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.practiceAnswerHandler: processing practice answer", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req practiceAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.practiceAnswerHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	question, ok := s.catalog.QuestionByID(req.QuestionID)
	if !ok {
		slog.Warn("Server.practiceAnswerHandler: unknown question", "question_id", req.QuestionID)
		writeJSONResponse(w, http.StatusNotFound, models.Error("Question not found: "+req.QuestionID))
		return
	}

	eval, err := s.machine.EvaluatePractice(r.Context(), question, req.Answer)
	if err != nil {
		slog.Warn("Server.practiceAnswerHandler: evaluation rejected", "error", err)
		writeGuardOrError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(eval))
}

type chatRequest struct {
	Message string `json:"message"`
}

func (s *Server) chatHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	slog.Debug("Server.chatHandler: processing chat message", "method", r.Method, "path", r.URL.Path)
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Server.chatHandler: failed to decode JSON", "error", err)
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}

	reply, err := s.machine.Chat(r.Context(), req.Message)
	if err != nil {
		slog.Warn("Server.chatHandler: chat rejected", "error", err)
		writeGuardOrError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]string{"reply": reply}))
}

type modeRequest struct {
	DemoMode bool `json:"demo_mode"`
}

// modeHandler switches between the live and offline collaborator
// (POST /api/mode).
func (s *Server) modeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Body != nil {
		defer r.Body.Close()
	}
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req modeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONResponse(w, http.StatusBadRequest, models.Error("Invalid JSON format"))
		return
	}
	s.machine.SetDemoMode(req.DemoMode)
	state := s.machine.Snapshot()
	slog.Info("Server.modeHandler: collaborator mode set", "demo_mode", state.DemoMode)
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]bool{"demo_mode": state.DemoMode}))
}

// recordingHandler toggles the voice recording flag (POST /api/recording).
func (s *Server) recordingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	recording, err := s.machine.ToggleRecording()
	if err != nil {
		slog.Warn("Server.recordingHandler: toggle rejected", "error", err)
		writeGuardOrError(w, err)
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]bool{"recording": recording}))
}

func (s *Server) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	dashboard := s.machine.GetDashboard()
	slog.Debug("Server.dashboardHandler: dashboard computed",
		"readiness", dashboard.Readiness, "session_count", dashboard.SessionCount)
	writeJSONResponse(w, http.StatusOK, models.Success(dashboard))
}

func (s *Server) historyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	history := s.machine.History()
	performance := s.machine.Performance()
	writeJSONResponse(w, http.StatusOK, models.Success(map[string]interface{}{
		"sessions":    history,
		"performance": performance,
	}))
}

// statsHandler returns process counters (GET /api/stats).
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.metrics == nil {
		writeJSONResponse(w, http.StatusOK, models.Success(nil))
		return
	}
	writeJSONResponse(w, http.StatusOK, models.Success(s.metrics.GetSnapshot()))
}

// healthHandler provides a health check endpoint for monitoring and load balancing
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	healthData := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	writeJSONResponse(w, http.StatusOK, healthData)
}
