package catalog

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/felixgeelhaar/trainer/internal/domain"
	"gopkg.in/yaml.v3"
)

// defaultMainFiles lists folders whose primary listing is not named after
// the folder itself.
var defaultMainFiles = map[string]string{
	"TimeTracker":        "ProjectTime",
	"Flexisort":          "Sorter",
	"IsAnagram":          "AnagramChecker",
	"FactoryBlueprint":   "Factory",
	"SingletonBlueprint": "Singleton",
	"DayOfWeek":          "DayOfWeekFinder",
}

// Catalog is the registry of known exercises.
// It is safe for concurrent use.
type Catalog struct {
	mu        sync.RWMutex
	entries   map[int]domain.CatalogEntry
	mainFiles map[string]string
}

// New creates a catalog from entries. Later entries replace earlier ones
// with the same ID.
func New(entries []domain.CatalogEntry) *Catalog {
	c := &Catalog{
		entries:   make(map[int]domain.CatalogEntry, len(entries)),
		mainFiles: make(map[string]string, len(defaultMainFiles)),
	}
	for folder, file := range defaultMainFiles {
		c.mainFiles[folder] = file
	}
	for _, e := range entries {
		c.entries[e.ID] = e
	}
	return c
}

// Default returns a catalog holding the built-in exercises
func Default() *Catalog {
	return New(DefaultEntries())
}

// Lookup returns the entry with the given ID
func (c *Catalog) Lookup(id int) (domain.CatalogEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[id]
	if !ok {
		return domain.CatalogEntry{}, fmt.Errorf("%w: %d", domain.ErrExerciseNotFound, id)
	}
	return e, nil
}

// List returns all entries ordered by ID
func (c *Catalog) List() []domain.CatalogEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]domain.CatalogEntry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ByLevel returns the entries of one level ordered by ID
func (c *Catalog) ByLevel(level domain.Level) []domain.CatalogEntry {
	var out []domain.CatalogEntry
	for _, e := range c.List() {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

// MainFile returns the base name (without extension) of the listing used
// as the exercise source.
func (c *Catalog) MainFile(entry domain.CatalogEntry) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if name, ok := c.mainFiles[entry.Folder]; ok {
		return name
	}
	return entry.Folder
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// File is the YAML layout of a catalog override file
type File struct {
	Exercises []FileEntry `yaml:"exercises"`
}

// FileEntry is one exercise in a catalog file
type FileEntry struct {
	domain.CatalogEntry `yaml:",inline"`
	MainFile            string `yaml:"main_file,omitempty"`
}

// LoadFile merges the exercises of a YAML catalog file into c.
// Entries with an existing ID replace the built-in entry.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read catalog file: %w", err)
	}
	return c.Merge(data)
}

// Merge applies the YAML catalog document in data
func (c *Catalog) Merge(data []byte) error {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse catalog file: %w", err)
	}

	for i, fe := range file.Exercises {
		if err := validateEntry(fe.CatalogEntry); err != nil {
			return fmt.Errorf("catalog entry %d: %w", i, err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	for _, fe := range file.Exercises {
		c.entries[fe.ID] = fe.CatalogEntry
		if fe.MainFile != "" {
			c.mainFiles[fe.Folder] = fe.MainFile
		}
	}
	return nil
}

func validateEntry(e domain.CatalogEntry) error {
	if e.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", domain.ErrInvalidInput)
	}
	if !e.Level.Valid() {
		return fmt.Errorf("%w: unknown level %q", domain.ErrInvalidInput, e.Level)
	}
	if e.Folder == "" {
		return fmt.Errorf("%w: folder is required", domain.ErrInvalidInput)
	}
	if e.Title == "" {
		return fmt.Errorf("%w: title is required", domain.ErrInvalidInput)
	}
	return nil
}
