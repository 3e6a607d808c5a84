package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/felixgeelhaar/trainer/internal/config"
	"github.com/felixgeelhaar/trainer/internal/domain"
	"github.com/felixgeelhaar/trainer/internal/session"
)

// ExerciseService lists and generates catalog exercises
type ExerciseService interface {
	List() []domain.CatalogEntry
	Generate(ctx context.Context, id int, difficulty float64) (*domain.Exercise, error)
}

// SessionService drives training sessions
type SessionService interface {
	Create(ctx context.Context, cfg domain.TrainingConfig) (*session.Session, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
	Exercise(ctx context.Context, id string, index int) (*domain.Exercise, error)
	Regenerate(ctx context.Context, id string, index int) (*domain.Exercise, error)
	Check(ctx context.Context, id string, index int, answers []string) (domain.CheckResult, error)
	Finish(ctx context.Context, id string) (session.Summary, error)
}

// Server is the trainer HTTP daemon
type Server struct {
	cfg     *config.Config
	version string
	server  *http.Server
	router  *http.ServeMux
	started time.Time

	exercises ExerciseService
	sessions  SessionService
}

// ServerConfig holds what a server needs
type ServerConfig struct {
	Config    *config.Config
	Exercises ExerciseService
	Sessions  SessionService
	Version   string
}

// NewServer creates a new daemon server
func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Exercises == nil || cfg.Sessions == nil {
		return nil, errors.New("exercise and session services are required")
	}
	if cfg.Config == nil {
		c, err := config.Load(nil)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg.Config = c
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}

	s := &Server{
		cfg:       cfg.Config,
		version:   cfg.Version,
		router:    http.NewServeMux(),
		started:   time.Now(),
		exercises: cfg.Exercises,
		sessions:  cfg.Sessions,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         net.JoinHostPort(s.cfg.Bind, strconv.Itoa(s.cfg.Port)),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s, nil
}

// Handler returns the router wrapped in the middleware chain
func (s *Server) Handler() http.Handler {
	return recoveryMiddleware(correlationIDMiddleware(loggingMiddleware(s.router)))
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /v1/health", s.handleHealth)
	s.router.HandleFunc("GET /v1/status", s.handleStatus)

	s.router.HandleFunc("GET /v1/exercises", s.handleListExercises)
	s.router.HandleFunc("GET /v1/exercises/{id}", s.handleGetExercise)

	s.router.HandleFunc("POST /v1/sessions", s.handleCreateSession)
	s.router.HandleFunc("GET /v1/sessions", s.handleListSessions)
	s.router.HandleFunc("GET /v1/sessions/{id}", s.handleGetSession)
	s.router.HandleFunc("DELETE /v1/sessions/{id}", s.handleDeleteSession)
	s.router.HandleFunc("POST /v1/sessions/{id}/finish", s.handleFinish)

	s.router.HandleFunc("GET /v1/sessions/{id}/exercises/{index}", s.handleSessionExercise)
	s.router.HandleFunc("POST /v1/sessions/{id}/exercises/{index}/check", s.handleCheck)
	s.router.HandleFunc("POST /v1/sessions/{id}/exercises/{index}/regenerate", s.handleRegenerate)
}

// Start listens until Shutdown is called
func (s *Server) Start() error {
	slog.Info("starting trainer daemon",
		"addr", s.server.Addr,
		"storage", s.cfg.StorageDriver,
		"exercises", len(s.exercises.List()),
	)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down daemon")
	return s.server.Shutdown(ctx)
}

// Views

type exerciseView struct {
	ID          int      `json:"id"`
	Level       string   `json:"level"`
	Folder      string   `json:"folder"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	BlankCount  int      `json:"blank_count"`
	SpecText    string   `json:"spec_text,omitempty"`
	Explanation string   `json:"explanation"`
	Answers     []string `json:"answers,omitempty"`
}

func newExerciseView(ex *domain.Exercise, withAnswers bool) exerciseView {
	v := exerciseView{
		ID:          ex.ID,
		Level:       string(ex.Level),
		Folder:      ex.Folder,
		Title:       ex.Title,
		Description: ex.Description,
		Code:        ex.Code,
		BlankCount:  len(ex.Blanks),
		SpecText:    ex.SpecText,
		Explanation: ex.Explanation,
	}
	if withAnswers {
		v.Answers = ex.Answers()
	}
	return v
}

type taskView struct {
	ExerciseID    int    `json:"exercise_id"`
	Level         string `json:"level"`
	Title         string `json:"title"`
	Opened        bool   `json:"opened"`
	Solved        bool   `json:"solved"`
	Attempts      int    `json:"attempts"`
	Regenerations int    `json:"regenerations"`
}

type sessionView struct {
	ID        string                `json:"id"`
	Status    session.Status        `json:"status"`
	Config    domain.TrainingConfig `json:"config"`
	Current   int                   `json:"current"`
	Tasks     []taskView            `json:"tasks"`
	Summary   session.Summary       `json:"summary"`
	CreatedAt time.Time             `json:"created_at"`
}

// newSessionView hides generated exercises and their answers
func newSessionView(sess *session.Session) sessionView {
	v := sessionView{
		ID:        sess.ID.String(),
		Status:    sess.Status,
		Config:    sess.Config,
		Current:   sess.Current,
		Tasks:     make([]taskView, len(sess.Tasks)),
		Summary:   sess.Summary(),
		CreatedAt: sess.CreatedAt,
	}
	for i, t := range sess.Tasks {
		v.Tasks[i] = taskView{
			ExerciseID:    t.Entry.ID,
			Level:         string(t.Entry.Level),
			Title:         t.Entry.Title,
			Opened:        t.Exercise != nil,
			Solved:        t.Solved(),
			Attempts:      t.Attempts,
			Regenerations: t.Regenerations,
		}
	}
	return v
}

// Handler implementations

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":    "running",
		"version":   s.version,
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"storage":   s.cfg.StorageDriver,
		"exercises": len(s.exercises.List()),
		"defaults":  s.cfg.Training,
	})
}

func (s *Server) handleListExercises(w http.ResponseWriter, r *http.Request) {
	entries := s.exercises.List()

	if raw := r.URL.Query().Get("level"); raw != "" {
		level, err := domain.ParseLevel(raw)
		if err != nil {
			s.jsonError(w, http.StatusBadRequest, "invalid level", err)
			return
		}
		filtered := make([]domain.CatalogEntry, 0, len(entries))
		for _, e := range entries {
			if e.Level == level {
				filtered = append(filtered, e)
			}
		}
		entries = filtered
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"exercises": entries,
	})
}

func (s *Server) handleGetExercise(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid exercise id", err)
		return
	}

	difficulty := s.cfg.Training.Difficulty
	if raw := r.URL.Query().Get("difficulty"); raw != "" {
		difficulty, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			s.jsonError(w, http.StatusBadRequest, "invalid difficulty", err)
			return
		}
	}
	withAnswers, _ := strconv.ParseBool(r.URL.Query().Get("answers"))

	ex, err := s.exercises.Generate(r.Context(), id, difficulty)
	if err != nil {
		s.serviceError(w, "failed to generate exercise", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newExerciseView(ex, withAnswers))
}

// Session handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tasks      int      `json:"tasks,omitempty"`
		Levels     []string `json:"levels,omitempty"`
		Difficulty float64  `json:"difficulty,omitempty"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
			return
		}
	}

	cfg := s.cfg.Training
	if req.Tasks != 0 {
		cfg.Tasks = req.Tasks
	}
	if req.Difficulty != 0 {
		cfg.Difficulty = req.Difficulty
	}
	if len(req.Levels) > 0 {
		cfg.Levels = make([]domain.Level, 0, len(req.Levels))
		for _, raw := range req.Levels {
			level, err := domain.ParseLevel(raw)
			if err != nil {
				s.jsonError(w, http.StatusBadRequest, "invalid level", err)
				return
			}
			cfg.Levels = append(cfg.Levels, level)
		}
	}

	sess, err := s.sessions.Create(r.Context(), cfg)
	if err != nil {
		s.serviceError(w, "failed to create session", err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, newSessionView(sess))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.sessions.List(r.Context())
	if err != nil {
		s.serviceError(w, "failed to list sessions", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"sessions": ids,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.serviceError(w, "failed to get session", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newSessionView(sess))
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.serviceError(w, "failed to delete session", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"deleted": true,
	})
}

func (s *Server) handleFinish(w http.ResponseWriter, r *http.Request) {
	sum, err := s.sessions.Finish(r.Context(), r.PathValue("id"))
	if err != nil {
		s.serviceError(w, "failed to finish session", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, sum)
}

func (s *Server) handleSessionExercise(w http.ResponseWriter, r *http.Request) {
	index, ok := s.pathIndex(w, r)
	if !ok {
		return
	}
	ex, err := s.sessions.Exercise(r.Context(), r.PathValue("id"), index)
	if err != nil {
		s.serviceError(w, "failed to load exercise", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newExerciseView(ex, false))
}

func (s *Server) handleRegenerate(w http.ResponseWriter, r *http.Request) {
	index, ok := s.pathIndex(w, r)
	if !ok {
		return
	}
	ex, err := s.sessions.Regenerate(r.Context(), r.PathValue("id"), index)
	if err != nil {
		s.serviceError(w, "failed to regenerate exercise", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, newExerciseView(ex, false))
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	index, ok := s.pathIndex(w, r)
	if !ok {
		return
	}

	var req struct {
		Answers []string `json:"answers"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	id := r.PathValue("id")
	result, err := s.sessions.Check(r.Context(), id, index, req.Answers)
	if err != nil {
		s.serviceError(w, "failed to check answers", err)
		return
	}

	sess, err := s.sessions.Get(r.Context(), id)
	if err != nil {
		s.serviceError(w, "failed to get session", err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"result":            result,
		"correct":           result.CorrectCount(),
		"session_completed": sess.Status == session.StatusCompleted,
		"summary":           sess.Summary(),
	})
}

// Helper methods

func (s *Server) pathIndex(w http.ResponseWriter, r *http.Request) (int, bool) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		s.jsonError(w, http.StatusBadRequest, "invalid exercise index", err)
		return 0, false
	}
	return index, true
}

// serviceError maps domain errors to HTTP statuses
func (s *Server) serviceError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, domain.ErrExerciseNotFound):
		s.jsonError(w, http.StatusNotFound, "exercise not found", err)
	case errors.Is(err, domain.ErrSessionNotFound):
		s.jsonError(w, http.StatusNotFound, "session not found", nil)
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrIndexOutOfRange):
		s.jsonError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, domain.ErrSessionCompleted):
		s.jsonError(w, http.StatusConflict, "session already completed", nil)
	case errors.Is(err, domain.ErrSourceFetch):
		s.jsonError(w, http.StatusBadGateway, "exercise source unavailable", err)
	default:
		s.jsonError(w, http.StatusInternalServerError, message, err)
	}
}

func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (s *Server) jsonError(w http.ResponseWriter, status int, message string, err error) {
	response := map[string]any{
		"error":  message,
		"status": status,
	}
	if err != nil {
		response["details"] = err.Error()
	}
	s.jsonResponse(w, status, response)
}
