// Package api provides HTTP handlers and the main API server logic for PrepDeck.
//
// It exposes RESTful endpoints for the interview session flow, practice-mode
// evaluation, coaching chat, and progress reporting. The API integrates with
// the session, catalog, and metrics modules.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prepdeck/PrepDeck/internal/catalog"
	"github.com/prepdeck/PrepDeck/internal/metrics"
	"github.com/prepdeck/PrepDeck/internal/models"
	"github.com/prepdeck/PrepDeck/internal/session"
)

// Server timeouts.
const (
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 60 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
)

// Server hosts the PrepDeck HTTP API.
type Server struct {
	machine *session.Machine
	catalog *catalog.Catalog
	metrics *metrics.Metrics
	addr    string

	httpServer *http.Server
}

// Opts collects optional server configuration.
type Opts struct {
	Addr    string
	Metrics *metrics.Metrics
}

// Option configures the Server.
type Option func(*Opts)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithMetrics sets the metrics holder exposed on /api/stats.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Opts) { o.Metrics = m }
}

// NewServer builds a server around the session machine and question catalog.
func NewServer(machine *session.Machine, cat *catalog.Catalog, opts ...Option) *Server {
	cfg := Opts{Addr: ":8080"}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Server{
		machine: machine,
		catalog: cat,
		metrics: cfg.Metrics,
		addr:    cfg.Addr,
	}
}

// Routes registers all handlers on a fresh mux. Exposed so tests can drive
// the API through httptest without binding a port.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/session/start", s.startSessionHandler)
	mux.HandleFunc("/api/session/answer", s.submitAnswerHandler)
	mux.HandleFunc("/api/session/next", s.nextQuestionHandler)
	mux.HandleFunc("/api/session/hint", s.hintHandler)
	mux.HandleFunc("/api/session/feedback", s.feedbackHandler)
	mux.HandleFunc("/api/session/end", s.endSessionHandler)
	mux.HandleFunc("/api/session", s.sessionStateHandler)
	mux.HandleFunc("/api/practice/answer", s.practiceAnswerHandler)
	mux.HandleFunc("/api/chat", s.chatHandler)
	mux.HandleFunc("/api/mode", s.modeHandler)
	mux.HandleFunc("/api/recording", s.recordingHandler)
	mux.HandleFunc("/api/dashboard", s.dashboardHandler)
	mux.HandleFunc("/api/history", s.historyHandler)
	mux.HandleFunc("/api/stats", s.statsHandler)
	mux.HandleFunc("/health", s.healthHandler)
	return mux
}

// Run starts the HTTP server and blocks until the context is canceled, then
// shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.Routes(),
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server.Run: PrepDeck API listening", "addr", s.addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		slog.Info("Server.Run: shutting down")
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

// statusForError maps domain errors to HTTP status codes. Unknown errors are
// treated as internal failures.
func statusForError(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidCategory),
		errors.Is(err, models.ErrEmptyAnswer),
		errors.Is(err, models.ErrAnswerTooLong):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrSessionActive):
		return http.StatusConflict
	case errors.Is(err, models.ErrNoActiveSession),
		errors.Is(err, models.ErrNoActiveQuestion),
		errors.Is(err, models.ErrNoHints),
		errors.Is(err, models.ErrNoResponses):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
