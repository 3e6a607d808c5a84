package session

import (
	"context"

	"github.com/felixgeelhaar/trainer/internal/catalog"
	"github.com/felixgeelhaar/trainer/internal/domain"
)

// Store defines the persistence interface for sessions.
// The JSON file store, the SQLite store and the Postgres store implement it.
type Store interface {
	Save(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
}

// Catalog resolves and selects exercises
type Catalog interface {
	Lookup(id int) (domain.CatalogEntry, error)
	SelectBalanced(levels []domain.Level, total int, rnd catalog.Shuffler) []domain.CatalogEntry
}

// Builder produces a freshly blanked exercise for a catalog entry
type Builder interface {
	Build(ctx context.Context, entry domain.CatalogEntry, difficulty float64) (*domain.Exercise, error)
}

// Publisher delivers domain events
type Publisher interface {
	Publish(ctx context.Context, event domain.Event) error
}

// Ensure Store (JSON) implements the Store interface
var _ Store = (*FileStore)(nil)
