package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/digest"
	"github.com/aretw0/digest/internal/logging"
	"github.com/aretw0/digest/internal/presentation/graph"
	"github.com/aretw0/digest/pkg/domain"
	"github.com/aretw0/digest/pkg/ports"
	"github.com/aretw0/digest/pkg/session"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

// Server exposes the pipeline over JSON/HTTP.
type Server struct {
	Pipeline      ports.Pipeline
	Sessions      *session.Manager
	Streams       *StreamManager
	Collaborators map[string]string

	logger *slog.Logger
	now    func() time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithStreams shares a StreamManager whose Hooks were registered on the pipeline.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) { s.Streams = sm }
}

// WithCollaborators describes the configured backends in /health.
func WithCollaborators(info map[string]string) Option {
	return func(s *Server) { s.Collaborators = info }
}

// NewServer creates a Server over a pipeline and a record session manager.
func NewServer(p ports.Pipeline, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		Pipeline: p,
		Sessions: sessions,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Streams == nil {
		s.Streams = NewStreamManager(s.logger)
	}
	return s
}

// Routes mounts every endpoint on a chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/graph", s.GetGraph)
	r.Get("/events", s.SubscribeEvents)

	r.Post("/research", s.Research)

	r.Route("/runs", func(r chi.Router) {
		r.Get("/", s.ListRuns)
		r.Get("/{id}", s.GetRun)
		r.Delete("/{id}", s.DeleteRun)
		r.Post("/{id}/resume", s.ResumeRun)
	})

	r.Route("/memory", func(r chi.Router) {
		r.Get("/", s.GetHistory)
		r.Delete("/", s.ClearHistory)
		r.Get("/stats", s.GetStats)
	})
	return r
}

// NewHandler is a shortcut for NewServer(...).Routes().
func NewHandler(p ports.Pipeline, sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(p, sessions, opts...).Routes()
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ResearchRequest is the body of POST /research.
type ResearchRequest struct {
	Query string `json:"query"`
	Style string `json:"style"`
}

// ResumeRequest is the body of POST /runs/{id}/resume.
type ResumeRequest struct {
	Step         string `json:"step"`
	Instructions string `json:"instructions"`
}

// Research handles POST /research.
func (s *Server) Research(w http.ResponseWriter, r *http.Request) {
	var body ResearchRequest
	if !s.decode(w, r, &body) {
		return
	}
	if strings.TrimSpace(body.Query) == "" {
		s.fail(w, http.StatusBadRequest, domain.ErrEmptyQuery)
		return
	}

	rec, err := s.Pipeline.Run(r.Context(), body.Query, domain.ParseStyle(body.Style))
	if rec != nil {
		// Cancelled runs are stored too so they can be resumed.
		if serr := s.Sessions.Save(context.WithoutCancel(r.Context()), rec); serr != nil {
			if err == nil {
				s.fail(w, http.StatusInternalServerError, fmt.Errorf("failed to store run: %w", serr))
				return
			}
			s.logger.Error("failed to store run", "run_id", rec.ID, "err", serr)
		} else {
			s.logger.Info("run stored", "run_id", rec.ID, "status", rec.Status)
			w.Header().Set("X-Run-ID", rec.ID)
		}
	}
	if err != nil {
		s.fail(w, statusFor(err), fmt.Errorf("research failed: %w", err))
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// GetRun handles GET /runs/{id}.
func (s *Server) GetRun(w http.ResponseWriter, r *http.Request) {
	rec, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, statusFor(err), err)
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// DeleteRun handles DELETE /runs/{id}.
func (s *Server) DeleteRun(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListRuns handles GET /runs.
func (s *Server) ListRuns(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": ids})
}

// ResumeRun handles POST /runs/{id}/resume.
func (s *Server) ResumeRun(w http.ResponseWriter, r *http.Request) {
	var body ResumeRequest
	if !s.decode(w, r, &body) {
		return
	}

	id := chi.URLParam(r, "id")
	rec, err := s.Sessions.Update(r.Context(), id, func(ctx context.Context, rec *domain.Record) (*domain.Record, error) {
		return s.Pipeline.Resume(ctx, rec, body.Step, body.Instructions)
	})
	if err != nil {
		s.fail(w, statusFor(err), fmt.Errorf("resume failed: %w", err))
		return
	}
	s.writeJSON(w, http.StatusOK, rec)
}

// GetHistory handles GET /memory.
func (s *Server) GetHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Pipeline.History(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	if entries == nil {
		entries = []domain.MemoryEntry{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"history": entries})
}

// GetStats handles GET /memory/stats.
func (s *Server) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.Pipeline.Stats(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

// ClearHistory handles DELETE /memory.
func (s *Server) ClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.Pipeline.ClearHistory(r.Context()); err != nil {
		s.fail(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetGraph handles GET /graph. With ?run=ID the run's path is highlighted.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	var overlay *graph.GraphOverlay
	if id := r.URL.Query().Get("run"); id != "" {
		rec, err := s.Sessions.Load(r.Context(), id)
		if err != nil {
			s.fail(w, statusFor(err), err)
			return
		}
		overlay = graph.OverlayFor(rec)
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(s.Pipeline.Inspect(), overlay)))
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	collab := s.Collaborators
	if collab == nil {
		collab = map[string]string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"timestamp":     s.now().UTC().Format(time.RFC3339),
		"collaborators": collab,
	})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "digest-http",
		"version": strings.TrimSpace(digest.Version),
	})
}

// -- Helpers --

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		s.fail(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) fail(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "status", status, "err", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyQuery), errors.Is(err, domain.ErrUnknownStep),
		errors.Is(err, domain.ErrInputTooLarge), errors.Is(err, domain.ErrInvalidUTF8):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
