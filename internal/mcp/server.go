package mcp

import (
	"context"
	"fmt"

	mcp "github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/mcp-go/server"

	"github.com/felixgeelhaar/trainer/internal/domain"
	"github.com/felixgeelhaar/trainer/internal/exercise"
	"github.com/felixgeelhaar/trainer/internal/session"
)

// Server exposes exercise generation and training sessions as MCP tools
type Server struct {
	mcpServer       *server.Server
	exerciseService *exercise.Service
	sessionService  *session.Service
	defaults        domain.TrainingConfig
}

// Config contains configuration for the MCP server
type Config struct {
	ExerciseService *exercise.Service
	SessionService  *session.Service
	Defaults        domain.TrainingConfig
	Version         string
}

// NewServer creates a new MCP server
func NewServer(cfg Config) *Server {
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.Defaults.Tasks == 0 {
		cfg.Defaults = domain.DefaultTrainingConfig()
	}

	s := &Server{
		exerciseService: cfg.ExerciseService,
		sessionService:  cfg.SessionService,
		defaults:        cfg.Defaults,
	}

	s.mcpServer = server.New(server.Info{
		Name:    "trainer",
		Version: cfg.Version,
	}, server.WithInstructions(`
Trainer turns Java exercise solutions into fill-in-the-blank practice.
Keywords, types, literals and calls are replaced by underscores; the learner
types the missing tokens back in order.

Available tools:
- trainer_list: List catalog exercises
- trainer_generate: Generate one exercise by ID
- trainer_start: Start a training session
- trainer_exercise: Show an exercise of a session
- trainer_check: Check answers for an exercise
- trainer_regenerate: Draw new blanks for an exercise
- trainer_status: Show session progress and score

Difficulty: 0.25 easy, 0.5 medium, 0.75 hard (fraction of candidates blanked).
`))

	s.registerTools()
	return s
}

func (s *Server) registerTools() {
	s.mcpServer.Tool("trainer_list").
		Description("List exercises in the catalog, optionally filtered by level.").
		Handler(s.handleList)

	s.mcpServer.Tool("trainer_generate").
		Description("Generate a fill-in-the-blank exercise outside a session.").
		Handler(s.handleGenerate)

	s.mcpServer.Tool("trainer_start").
		Description("Start a training session with a balanced set of exercises.").
		Handler(s.handleStart)

	s.mcpServer.Tool("trainer_exercise").
		Description("Show the exercise at an index of a session. Answers are not revealed.").
		Handler(s.handleExercise)

	s.mcpServer.Tool("trainer_check").
		Description("Check answers for an exercise of a session, in placeholder order.").
		Handler(s.handleCheck)

	s.mcpServer.Tool("trainer_regenerate").
		Description("Discard the exercise at an index and blank different tokens.").
		Handler(s.handleRegenerate)

	s.mcpServer.Tool("trainer_status").
		Description("Get session progress; finish=true ends the session.").
		Handler(s.handleStatus)
}

// Input/Output types for tools

type ListInput struct {
	Level string `json:"level,omitempty" jsonschema:"description=Only list this level,enum=g1,enum=g2,enum=g3,enum=g4"`
}

type ListOutput struct {
	Exercises []domain.CatalogEntry `json:"exercises"`
}

type GenerateInput struct {
	ExerciseID    int     `json:"exercise_id" jsonschema:"description=Catalog exercise ID"`
	Difficulty    float64 `json:"difficulty,omitempty" jsonschema:"description=Fraction of candidates to blank between 0 and 1 (default 0.5)"`
	RevealAnswers bool    `json:"reveal_answers,omitempty" jsonschema:"description=Include the answer key"`
}

type ExerciseOutput struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Level       string   `json:"level"`
	Description string   `json:"description"`
	Code        string   `json:"code"`
	BlankCount  int      `json:"blank_count"`
	Spec        string   `json:"spec,omitempty"`
	Answers     []string `json:"answers,omitempty"`
}

type StartInput struct {
	Tasks      int      `json:"tasks,omitempty" jsonschema:"description=Number of exercises (default 5)"`
	Levels     []string `json:"levels,omitempty" jsonschema:"description=Levels to draw from (default g1 and g2)"`
	Difficulty float64  `json:"difficulty,omitempty" jsonschema:"description=Fraction of candidates to blank between 0 and 1 (default 0.5)"`
}

type StartOutput struct {
	SessionID   string `json:"session_id"`
	ExerciseIDs []int  `json:"exercise_ids"`
	Difficulty  string `json:"difficulty"`
	Message     string `json:"message"`
}

type ExerciseInput struct {
	SessionID string `json:"session_id" jsonschema:"description=Session ID from trainer_start"`
	Index     int    `json:"index" jsonschema:"description=Zero-based exercise position in the session"`
}

type CheckInput struct {
	SessionID string   `json:"session_id" jsonschema:"description=Session ID from trainer_start"`
	Index     int      `json:"index" jsonschema:"description=Zero-based exercise position in the session"`
	Answers   []string `json:"answers" jsonschema:"description=One answer per blank in left-to-right order"`
}

type CheckOutput struct {
	Correct    int                  `json:"correct"`
	Total      int                  `json:"total"`
	AllCorrect bool                 `json:"all_correct"`
	Blanks     []domain.BlankResult `json:"blanks"`
	Completed  bool                 `json:"session_completed"`
	Message    string               `json:"message"`
}

type StatusInput struct {
	SessionID string `json:"session_id" jsonschema:"description=Session ID from trainer_start"`
	Finish    bool   `json:"finish,omitempty" jsonschema:"description=End the session and return the final score"`
}

type StatusOutput struct {
	session.Summary
	Current int `json:"current"`
}

// Tool handlers

func (s *Server) handleList(_ context.Context, input ListInput) (ListOutput, error) {
	entries := s.exerciseService.List()
	if input.Level == "" {
		return ListOutput{Exercises: entries}, nil
	}

	level, err := domain.ParseLevel(input.Level)
	if err != nil {
		return ListOutput{}, err
	}
	filtered := []domain.CatalogEntry{}
	for _, e := range entries {
		if e.Level == level {
			filtered = append(filtered, e)
		}
	}
	return ListOutput{Exercises: filtered}, nil
}

func (s *Server) handleGenerate(ctx context.Context, input GenerateInput) (ExerciseOutput, error) {
	difficulty := input.Difficulty
	if difficulty == 0 {
		difficulty = s.defaults.Difficulty
	}

	ex, err := s.exerciseService.Generate(ctx, input.ExerciseID, difficulty)
	if err != nil {
		return ExerciseOutput{}, fmt.Errorf("generate exercise %d: %w", input.ExerciseID, err)
	}
	return exerciseOutput(ex, input.RevealAnswers), nil
}

func (s *Server) handleStart(ctx context.Context, input StartInput) (StartOutput, error) {
	cfg := s.defaults
	if input.Tasks > 0 {
		cfg.Tasks = input.Tasks
	}
	if input.Difficulty != 0 {
		cfg.Difficulty = input.Difficulty
	}
	if len(input.Levels) > 0 {
		cfg.Levels = nil
		for _, l := range input.Levels {
			level, err := domain.ParseLevel(l)
			if err != nil {
				return StartOutput{}, err
			}
			cfg.Levels = append(cfg.Levels, level)
		}
	}

	sess, err := s.sessionService.Create(ctx, cfg)
	if err != nil {
		return StartOutput{}, fmt.Errorf("create session: %w", err)
	}

	return StartOutput{
		SessionID:   sess.ID.String(),
		ExerciseIDs: sess.ExerciseIDs(),
		Difficulty:  domain.DifficultyName(cfg.Difficulty),
		Message:     fmt.Sprintf("Session started with %d exercises. Open index 0 with trainer_exercise.", len(sess.Tasks)),
	}, nil
}

func (s *Server) handleExercise(ctx context.Context, input ExerciseInput) (ExerciseOutput, error) {
	ex, err := s.sessionService.Exercise(ctx, input.SessionID, input.Index)
	if err != nil {
		return ExerciseOutput{}, fmt.Errorf("load exercise %d: %w", input.Index, err)
	}
	return exerciseOutput(ex, false), nil
}

func (s *Server) handleRegenerate(ctx context.Context, input ExerciseInput) (ExerciseOutput, error) {
	ex, err := s.sessionService.Regenerate(ctx, input.SessionID, input.Index)
	if err != nil {
		return ExerciseOutput{}, fmt.Errorf("regenerate exercise %d: %w", input.Index, err)
	}
	return exerciseOutput(ex, false), nil
}

func (s *Server) handleCheck(ctx context.Context, input CheckInput) (CheckOutput, error) {
	result, err := s.sessionService.Check(ctx, input.SessionID, input.Index, input.Answers)
	if err != nil {
		return CheckOutput{}, fmt.Errorf("check answers: %w", err)
	}

	sum, err := s.sessionService.Summary(ctx, input.SessionID)
	if err != nil {
		return CheckOutput{}, err
	}

	out := CheckOutput{
		Correct:    result.CorrectCount(),
		Total:      len(result.Blanks),
		AllCorrect: result.AllCorrect,
		Blanks:     result.Blanks,
		Completed:  sum.Status == session.StatusCompleted,
	}
	switch {
	case out.Completed:
		out.Message = fmt.Sprintf("All exercises solved. Score %d%%. %s", sum.Score, sum.Message)
	case result.AllCorrect:
		out.Message = "All blanks correct."
	default:
		out.Message = fmt.Sprintf("%d of %d blanks correct. Try again.", out.Correct, out.Total)
	}
	return out, nil
}

func (s *Server) handleStatus(ctx context.Context, input StatusInput) (StatusOutput, error) {
	if input.Finish {
		sum, err := s.sessionService.Finish(ctx, input.SessionID)
		if err != nil {
			return StatusOutput{}, fmt.Errorf("finish session: %w", err)
		}
		return StatusOutput{Summary: sum}, nil
	}

	sess, err := s.sessionService.Get(ctx, input.SessionID)
	if err != nil {
		return StatusOutput{}, fmt.Errorf("get session: %w", err)
	}
	return StatusOutput{Summary: sess.Summary(), Current: sess.Current}, nil
}

func exerciseOutput(ex *domain.Exercise, reveal bool) ExerciseOutput {
	out := ExerciseOutput{
		ID:          ex.ID,
		Title:       ex.Title,
		Level:       string(ex.Level),
		Description: ex.Description,
		Code:        ex.Code,
		BlankCount:  len(ex.Blanks),
		Spec:        ex.SpecText,
	}
	if reveal {
		out.Answers = ex.Answers()
	}
	return out
}

// ServeStdio serves the tools over stdio for editor integrations
func (s *Server) ServeStdio(ctx context.Context) error {
	return mcp.ServeStdio(ctx, s.mcpServer)
}

// ServeHTTP serves the tools over HTTP
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	return mcp.ServeHTTP(ctx, s.mcpServer, addr)
}

// GetMCPServer returns the underlying MCP server
func (s *Server) GetMCPServer() *server.Server {
	return s.mcpServer
}
