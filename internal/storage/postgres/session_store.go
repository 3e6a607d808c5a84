package postgres

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/felixgeelhaar/trainer/internal/domain"
	"github.com/felixgeelhaar/trainer/internal/session"
)

//go:embed schema.sql
var schema string

// Connect opens a pool and verifies connectivity
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return pool, nil
}

// SessionStore implements session persistence backed by PostgreSQL
type SessionStore struct {
	pool *pgxpool.Pool
}

// NewSessionStore creates a new PostgreSQL session store
func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

// Migrate creates the session tables if they do not exist
func (s *SessionStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Save persists a session and replaces its tasks
func (s *SessionStore) Save(ctx context.Context, sess *session.Session) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO training_sessions (id, status, tasks, levels, difficulty, current_index,
				created_at, updated_at, completed_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE SET
				status = EXCLUDED.status, tasks = EXCLUDED.tasks, levels = EXCLUDED.levels,
				difficulty = EXCLUDED.difficulty, current_index = EXCLUDED.current_index,
				updated_at = EXCLUDED.updated_at, completed_at = EXCLUDED.completed_at`,
			sess.ID, string(sess.Status), sess.Config.Tasks, levelStrings(sess.Config.Levels),
			sess.Config.Difficulty, sess.Current,
			sess.CreatedAt, sess.UpdatedAt, sess.CompletedAt,
		)
		if err != nil {
			return fmt.Errorf("upsert session: %w", err)
		}

		if _, err := tx.Exec(ctx, "DELETE FROM training_session_tasks WHERE session_id = $1", sess.ID); err != nil {
			return fmt.Errorf("clear tasks: %w", err)
		}

		batch := &pgx.Batch{}
		for i, task := range sess.Tasks {
			entry, exercise, result, err := encodeTask(task)
			if err != nil {
				return err
			}
			batch.Queue(`
				INSERT INTO training_session_tasks (session_id, position, exercise_id, entry, exercise,
					attempts, regenerations, last_result)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				sess.ID, i, task.Entry.ID, entry, exercise,
				task.Attempts, task.Regenerations, result,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("insert tasks: %w", err)
		}
		return nil
	})
}

// Get retrieves a session with its tasks
func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	sid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}

	sess := session.Session{ID: sid}
	var status string
	var levels []string
	var completedAt *time.Time

	err = s.pool.QueryRow(ctx, `
		SELECT status, tasks, levels, difficulty, current_index,
			created_at, updated_at, completed_at
		FROM training_sessions WHERE id = $1`, sid).Scan(
		&status, &sess.Config.Tasks, &levels, &sess.Config.Difficulty, &sess.Current,
		&sess.CreatedAt, &sess.UpdatedAt, &completedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	sess.Status = session.Status(status)
	sess.CompletedAt = completedAt
	sess.Config.Levels = parseLevels(levels)

	rows, err := s.pool.Query(ctx, `
		SELECT entry, exercise, attempts, regenerations, last_result
		FROM training_session_tasks WHERE session_id = $1 ORDER BY position`, sid)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	sess.Tasks = []session.Task{}
	for rows.Next() {
		var task session.Task
		var entry, exercise, result []byte
		if err := rows.Scan(&entry, &exercise, &task.Attempts, &task.Regenerations, &result); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if err := decodeTask(&task, entry, exercise, result); err != nil {
			return nil, err
		}
		sess.Tasks = append(sess.Tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}

	return &sess, nil
}

// Delete removes a session and its tasks
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	sid, err := uuid.Parse(id)
	if err != nil {
		return domain.ErrSessionNotFound
	}

	result, err := s.pool.Exec(ctx, "DELETE FROM training_sessions WHERE id = $1", sid)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// List returns all session IDs, newest first
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, "SELECT id FROM training_sessions ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id.String())
	}
	return ids, rows.Err()
}

func levelStrings(levels []domain.Level) []string {
	out := make([]string, len(levels))
	for i, l := range levels {
		out[i] = string(l)
	}
	return out
}

func parseLevels(levels []string) []domain.Level {
	out := make([]domain.Level, len(levels))
	for i, l := range levels {
		out[i] = domain.Level(l)
	}
	return out
}

// encodeTask returns the JSONB columns of a task; nil slices are stored as NULL
func encodeTask(task session.Task) (entry, exercise, result []byte, err error) {
	if entry, err = json.Marshal(task.Entry); err != nil {
		return nil, nil, nil, fmt.Errorf("marshal entry: %w", err)
	}
	if task.Exercise != nil {
		if exercise, err = json.Marshal(task.Exercise); err != nil {
			return nil, nil, nil, fmt.Errorf("marshal exercise: %w", err)
		}
	}
	if task.LastResult != nil {
		if result, err = json.Marshal(task.LastResult); err != nil {
			return nil, nil, nil, fmt.Errorf("marshal result: %w", err)
		}
	}
	return entry, exercise, result, nil
}

func decodeTask(task *session.Task, entry, exercise, result []byte) error {
	if err := json.Unmarshal(entry, &task.Entry); err != nil {
		return fmt.Errorf("unmarshal entry: %w", err)
	}
	if exercise != nil {
		task.Exercise = &domain.Exercise{}
		if err := json.Unmarshal(exercise, task.Exercise); err != nil {
			return fmt.Errorf("unmarshal exercise: %w", err)
		}
	}
	if result != nil {
		task.LastResult = &domain.CheckResult{}
		if err := json.Unmarshal(result, task.LastResult); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return nil
}

// Ensure SessionStore implements session.Store
var _ session.Store = (*SessionStore)(nil)
