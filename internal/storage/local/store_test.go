package local

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

type doc struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestNewStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "subdir", "nested")

	if _, err := NewStore(dir); err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected directory, got file")
	}
}

func TestStore_SaveLoad(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	if err := store.Save("sessions", "a1", doc{Name: "first", Value: 1}); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := store.Save("sessions", "a1", doc{Name: "second", Value: 2}); err != nil {
		t.Fatalf("Save() overwrite error = %v", err)
	}

	var got doc
	if err := store.Load("sessions", "a1", &got); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Name != "second" || got.Value != 2 {
		t.Errorf("Load() = %+v", got)
	}
	if !store.Exists("sessions", "a1") {
		t.Error("Exists() = false")
	}
}

func TestStore_NotFound(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	var got doc
	if err := store.Load("sessions", "missing", &got); !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
	if err := store.Delete("sessions", "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() error = %v, want ErrNotFound", err)
	}
	if store.Exists("sessions", "missing") {
		t.Error("Exists() = true for missing document")
	}
}

func TestStore_InvalidID(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	for _, id := range []string{"", "..", "../escape", `a\b`} {
		if err := store.Save("sessions", id, doc{}); !errors.Is(err, ErrInvalidID) {
			t.Errorf("Save(%q) error = %v, want ErrInvalidID", id, err)
		}
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	dir := t.TempDir()
	store, _ := NewStore(dir)

	ids, err := store.List("sessions")
	if err != nil || len(ids) != 0 {
		t.Fatalf("List() on empty store = %v, %v", ids, err)
	}

	for _, id := range []string{"c", "a", "b"} {
		store.Save("sessions", id, doc{Name: id})
	}
	// stray files are ignored
	os.WriteFile(filepath.Join(dir, "sessions", "notes.txt"), []byte("x"), 0644)
	os.WriteFile(filepath.Join(dir, "sessions", ".a-123"), []byte("x"), 0644)

	ids, _ = store.List("sessions")
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("List() = %v, want [a b c]", ids)
	}

	if err := store.Delete("sessions", "b"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	ids, _ = store.List("sessions")
	if len(ids) != 2 {
		t.Errorf("List() after delete = %v", ids)
	}
}

func TestStore_ConcurrentSaves(t *testing.T) {
	store, _ := NewStore(t.TempDir())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(v int) {
			defer wg.Done()
			if err := store.Save("sessions", "shared", doc{Value: v}); err != nil {
				t.Errorf("Save() error = %v", err)
			}
		}(i)
	}
	wg.Wait()

	var got doc
	if err := store.Load("sessions", "shared", &got); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Value < 0 || got.Value >= 20 {
		t.Errorf("Value = %d", got.Value)
	}
}
