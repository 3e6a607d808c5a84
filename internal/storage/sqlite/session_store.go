package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/trainer/internal/domain"
	"github.com/felixgeelhaar/trainer/internal/session"
)

// SessionStore implements session persistence backed by SQLite.
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a new SQLite-backed session store.
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// Save persists a session and replaces its tasks.
func (s *SessionStore) Save(ctx context.Context, sess *session.Session) error {
	levels, err := json.Marshal(sess.Config.Levels)
	if err != nil {
		return fmt.Errorf("marshal levels: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, status, tasks, levels, difficulty, current_index,
			created_at, updated_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status=excluded.status, tasks=excluded.tasks, levels=excluded.levels,
			difficulty=excluded.difficulty, current_index=excluded.current_index,
			updated_at=excluded.updated_at, completed_at=excluded.completed_at`,
		sess.ID.String(), string(sess.Status), sess.Config.Tasks, string(levels),
		sess.Config.Difficulty, sess.Current,
		sess.CreatedAt, sess.UpdatedAt, nullTime(sess.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM session_tasks WHERE session_id = ?", sess.ID.String()); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	for i, task := range sess.Tasks {
		entry, exercise, result, err := marshalTask(task)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO session_tasks (session_id, position, exercise_id, entry, exercise,
				attempts, regenerations, last_result)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			sess.ID.String(), i, task.Entry.ID, entry, exercise,
			task.Attempts, task.Regenerations, result,
		)
		if err != nil {
			return fmt.Errorf("insert task %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// Get retrieves a session with its tasks.
func (s *SessionStore) Get(ctx context.Context, id string) (*session.Session, error) {
	sid, err := uuid.Parse(id)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}

	sess := session.Session{ID: sid}
	var statusStr, levelsJSON string
	var completedAt sql.NullTime

	err = s.db.QueryRowContext(ctx, `
		SELECT status, tasks, levels, difficulty, current_index,
			created_at, updated_at, completed_at
		FROM sessions WHERE id = ?`, sid.String()).Scan(
		&statusStr, &sess.Config.Tasks, &levelsJSON, &sess.Config.Difficulty, &sess.Current,
		&sess.CreatedAt, &sess.UpdatedAt, &completedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}

	sess.Status = session.Status(statusStr)
	if completedAt.Valid {
		sess.CompletedAt = &completedAt.Time
	}
	if err := json.Unmarshal([]byte(levelsJSON), &sess.Config.Levels); err != nil {
		return nil, fmt.Errorf("unmarshal levels: %w", err)
	}

	tasks, err := s.tasks(ctx, sid.String())
	if err != nil {
		return nil, err
	}
	sess.Tasks = tasks
	return &sess, nil
}

func (s *SessionStore) tasks(ctx context.Context, id string) ([]session.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT entry, exercise, attempts, regenerations, last_result
		FROM session_tasks WHERE session_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	tasks := []session.Task{}
	for rows.Next() {
		var task session.Task
		var entry string
		var exercise, result sql.NullString

		if err := rows.Scan(&entry, &exercise, &task.Attempts, &task.Regenerations, &result); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if err := unmarshalTask(&task, entry, exercise, result); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

// Delete removes a session and its cascaded tasks.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, _ := result.RowsAffected()
	if n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// List returns all session IDs, newest first.
func (s *SessionStore) List(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id FROM sessions ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan session id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CountByStatus returns the number of sessions per status.
func (s *SessionStore) CountByStatus(ctx context.Context) (map[session.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM sessions GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count sessions: %w", err)
	}
	defer rows.Close()

	counts := make(map[session.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[session.Status(status)] = n
	}
	return counts, rows.Err()
}

// marshalTask encodes the JSON columns of a task
func marshalTask(task session.Task) (entry string, exercise, result *string, err error) {
	e, err := json.Marshal(task.Entry)
	if err != nil {
		return "", nil, nil, fmt.Errorf("marshal entry: %w", err)
	}
	if task.Exercise != nil {
		b, err := json.Marshal(task.Exercise)
		if err != nil {
			return "", nil, nil, fmt.Errorf("marshal exercise: %w", err)
		}
		exercise = nullString(b)
	}
	if task.LastResult != nil {
		b, err := json.Marshal(task.LastResult)
		if err != nil {
			return "", nil, nil, fmt.Errorf("marshal result: %w", err)
		}
		result = nullString(b)
	}
	return string(e), exercise, result, nil
}

// unmarshalTask decodes the JSON columns of a task
func unmarshalTask(task *session.Task, entry string, exercise, result sql.NullString) error {
	if err := json.Unmarshal([]byte(entry), &task.Entry); err != nil {
		return fmt.Errorf("unmarshal entry: %w", err)
	}
	if exercise.Valid {
		task.Exercise = &domain.Exercise{}
		if err := json.Unmarshal([]byte(exercise.String), task.Exercise); err != nil {
			return fmt.Errorf("unmarshal exercise: %w", err)
		}
	}
	if result.Valid {
		task.LastResult = &domain.CheckResult{}
		if err := json.Unmarshal([]byte(result.String), task.LastResult); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return nil
}

// nullTime converts a *time.Time to sql.NullTime for storage.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// nullString converts a byte slice to a *string for nullable TEXT columns.
func nullString(b []byte) *string {
	if b == nil {
		return nil
	}
	s := string(b)
	return &s
}
