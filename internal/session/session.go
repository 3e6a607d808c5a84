package session

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/trainer/internal/domain"
)

// Status represents the session state
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Task is one exercise slot of a session. Exercise is nil until the slot
// is first opened and is replaced on regeneration.
type Task struct {
	Entry         domain.CatalogEntry `json:"entry"`
	Exercise      *domain.Exercise    `json:"exercise,omitempty"`
	Attempts      int                 `json:"attempts"`
	Regenerations int                 `json:"regenerations"`
	LastResult    *domain.CheckResult `json:"last_result,omitempty"`
}

// Solved reports whether the last submitted answers were all correct
func (t *Task) Solved() bool {
	return t.LastResult != nil && t.LastResult.AllCorrect
}

// Session is a learner's run through a balanced list of exercises
type Session struct {
	ID      uuid.UUID             `json:"id"`
	Config  domain.TrainingConfig `json:"config"`
	Tasks   []Task                `json:"tasks"`
	Current int                   `json:"current"`
	Status  Status                `json:"status"`

	// Timestamps
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// NewSession creates an active session over entries
func NewSession(cfg domain.TrainingConfig, entries []domain.CatalogEntry) *Session {
	now := time.Now()
	tasks := make([]Task, len(entries))
	for i, e := range entries {
		tasks[i] = Task{Entry: e}
	}
	return &Session{
		ID:        uuid.New(),
		Config:    cfg,
		Tasks:     tasks,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ExerciseIDs returns the catalog IDs in task order
func (s *Session) ExerciseIDs() []int {
	ids := make([]int, len(s.Tasks))
	for i, t := range s.Tasks {
		ids[i] = t.Entry.ID
	}
	return ids
}

// Task returns the task at index
func (s *Session) Task(index int) (*Task, error) {
	if index < 0 || index >= len(s.Tasks) {
		return nil, domain.ErrIndexOutOfRange
	}
	return &s.Tasks[index], nil
}

// SolvedCount returns the number of tasks whose last check was all correct
func (s *Session) SolvedCount() int {
	n := 0
	for i := range s.Tasks {
		if s.Tasks[i].Solved() {
			n++
		}
	}
	return n
}

// AllSolved reports whether every task is solved
func (s *Session) AllSolved() bool {
	return len(s.Tasks) > 0 && s.SolvedCount() == len(s.Tasks)
}

// Complete marks the session as completed
func (s *Session) Complete() {
	now := time.Now()
	s.Status = StatusCompleted
	s.CompletedAt = &now
	s.UpdatedAt = now
}

// Touch records a modification
func (s *Session) Touch() {
	s.UpdatedAt = time.Now()
}

// Duration returns how long the session ran
func (s *Session) Duration() time.Duration {
	end := time.Now()
	if s.CompletedAt != nil {
		end = *s.CompletedAt
	}
	return end.Sub(s.CreatedAt)
}

// Summary is the completion screen of a session
type Summary struct {
	SessionID  uuid.UUID     `json:"session_id"`
	Status     Status        `json:"status"`
	Difficulty string        `json:"difficulty"`
	Total      int           `json:"total"`
	Solved     int           `json:"solved"`
	Attempts   int           `json:"attempts"`
	Score      int           `json:"score"`
	Message    string        `json:"message"`
	Duration   time.Duration `json:"duration"`
}

// Summary computes the session results
func (s *Session) Summary() Summary {
	sum := Summary{
		SessionID:  s.ID,
		Status:     s.Status,
		Difficulty: domain.DifficultyName(s.Config.Difficulty),
		Total:      len(s.Tasks),
		Solved:     s.SolvedCount(),
		Duration:   s.Duration(),
	}
	for _, t := range s.Tasks {
		sum.Attempts += t.Attempts
	}
	if sum.Total > 0 {
		sum.Score = int(math.Round(float64(sum.Solved) / float64(sum.Total) * 100))
	}
	sum.Message = scoreMessage(sum.Score)
	return sum
}

func scoreMessage(score int) string {
	switch {
	case score >= 90:
		return "Outstanding! You're a Java master!"
	case score >= 70:
		return "Great job! You're doing really well!"
	case score >= 50:
		return "Good effort! Keep practicing!"
	default:
		return "Nice try! Practice makes perfect!"
	}
}
