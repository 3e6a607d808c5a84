package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/trainer/internal/domain"
	"github.com/felixgeelhaar/trainer/internal/session"
)

func newTestSession() *session.Session {
	cfg := domain.TrainingConfig{Tasks: 2, Levels: []domain.Level{domain.LevelG1, domain.LevelG3}, Difficulty: 0.75}
	return session.NewSession(cfg, []domain.CatalogEntry{
		{ID: 1, Level: domain.LevelG1, Folder: "AgeFinder", Title: "Age Finder"},
		{ID: 17, Level: domain.LevelG3, Folder: "FactoryBlueprint", Title: "Factory Pattern"},
	})
}

func TestSessionStore_SaveGet(t *testing.T) {
	store := NewSessionStore(openTestDB(t))
	ctx := context.Background()

	sess := newTestSession()
	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := store.Get(ctx, sess.ID.String())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	if loaded.ID != sess.ID {
		t.Errorf("ID = %s; want %s", loaded.ID, sess.ID)
	}
	if loaded.Status != session.StatusActive {
		t.Errorf("Status = %q; want active", loaded.Status)
	}
	if loaded.Config.Difficulty != 0.75 || loaded.Config.Tasks != 2 {
		t.Errorf("Config = %+v", loaded.Config)
	}
	if len(loaded.Config.Levels) != 2 || loaded.Config.Levels[1] != domain.LevelG3 {
		t.Errorf("Levels = %v", loaded.Config.Levels)
	}
	if len(loaded.Tasks) != 2 {
		t.Fatalf("Tasks = %d; want 2", len(loaded.Tasks))
	}
	if loaded.Tasks[1].Entry.Folder != "FactoryBlueprint" {
		t.Errorf("Tasks[1].Entry = %+v", loaded.Tasks[1].Entry)
	}
	if loaded.Tasks[0].Exercise != nil || loaded.Tasks[0].LastResult != nil {
		t.Error("unopened task should have no exercise or result")
	}
	if loaded.CompletedAt != nil {
		t.Error("CompletedAt should be nil")
	}
	if loaded.CreatedAt.Unix() != sess.CreatedAt.Unix() {
		t.Errorf("CreatedAt = %v; want %v", loaded.CreatedAt, sess.CreatedAt)
	}
}

func TestSessionStore_UpdateTasks(t *testing.T) {
	store := NewSessionStore(openTestDB(t))
	ctx := context.Background()

	sess := newTestSession()
	store.Save(ctx, sess)

	sess.Tasks[0].Exercise = &domain.Exercise{
		ID:     1,
		Folder: "AgeFinder",
		Code:   "___ age = 0;",
		Blanks: []domain.Blank{{Answer: "int"}},
	}
	result := sess.Tasks[0].Exercise.Check([]string{"int"})
	sess.Tasks[0].LastResult = &result
	sess.Tasks[0].Attempts = 3
	sess.Tasks[0].Regenerations = 1
	sess.Current = 1
	sess.Complete()

	if err := store.Save(ctx, sess); err != nil {
		t.Fatalf("Save() update error = %v", err)
	}

	loaded, err := store.Get(ctx, sess.ID.String())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	task := loaded.Tasks[0]
	if task.Exercise == nil || task.Exercise.Blanks[0].Answer != "int" {
		t.Fatalf("Exercise = %+v", task.Exercise)
	}
	if !task.Solved() {
		t.Error("task should be solved")
	}
	if task.Attempts != 3 || task.Regenerations != 1 {
		t.Errorf("Attempts/Regenerations = %d/%d", task.Attempts, task.Regenerations)
	}
	if loaded.Current != 1 {
		t.Errorf("Current = %d; want 1", loaded.Current)
	}
	if loaded.Status != session.StatusCompleted || loaded.CompletedAt == nil {
		t.Errorf("Status = %s, CompletedAt = %v", loaded.Status, loaded.CompletedAt)
	}
	if len(loaded.Tasks) != 2 {
		t.Errorf("Tasks = %d after update; want 2", len(loaded.Tasks))
	}
}

func TestSessionStore_GetNotFound(t *testing.T) {
	store := NewSessionStore(openTestDB(t))

	for _, id := range []string{"nonexistent", "6f1c4c2e-8f0b-4c4e-9a53-0d7b4a1e2f3a"} {
		if _, err := store.Get(context.Background(), id); !errors.Is(err, domain.ErrSessionNotFound) {
			t.Errorf("Get(%q) error = %v; want ErrSessionNotFound", id, err)
		}
	}
}

func TestSessionStore_DeleteCascades(t *testing.T) {
	db := openTestDB(t)
	store := NewSessionStore(db)
	ctx := context.Background()

	sess := newTestSession()
	store.Save(ctx, sess)

	if err := store.Delete(ctx, sess.ID.String()); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	var n int
	db.QueryRow("SELECT COUNT(*) FROM session_tasks").Scan(&n)
	if n != 0 {
		t.Errorf("session_tasks rows = %d after delete; want 0", n)
	}

	if err := store.Delete(ctx, sess.ID.String()); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("second Delete() error = %v; want ErrSessionNotFound", err)
	}
}

func TestSessionStore_ListAndCount(t *testing.T) {
	store := NewSessionStore(openTestDB(t))
	ctx := context.Background()

	older := newTestSession()
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := newTestSession()
	newer.Complete()

	store.Save(ctx, older)
	store.Save(ctx, newer)

	ids, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(ids) != 2 || ids[0] != newer.ID.String() {
		t.Errorf("List() = %v; want newest first", ids)
	}

	counts, err := store.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if counts[session.StatusActive] != 1 || counts[session.StatusCompleted] != 1 {
		t.Errorf("CountByStatus() = %v", counts)
	}
}

func TestSessionStore_WithService(t *testing.T) {
	store := NewSessionStore(openTestDB(t))
	ctx := context.Background()

	svc := session.NewService(store, fixedCatalog{}, nil)
	sess, err := svc.Create(ctx, domain.TrainingConfig{Tasks: 1, Levels: []domain.Level{domain.LevelG1}, Difficulty: 0.5})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	sum, err := svc.Finish(ctx, sess.ID.String())
	if err != nil {
		t.Fatalf("Finish() error = %v", err)
	}
	if sum.Total != 1 || sum.Status != session.StatusCompleted {
		t.Errorf("Finish() = %+v", sum)
	}
}
