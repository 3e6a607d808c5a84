package exercise

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/trainer/internal/blank"
	"github.com/felixgeelhaar/trainer/internal/domain"
)

// Catalog resolves exercise identities
type Catalog interface {
	Lookup(id int) (domain.CatalogEntry, error)
	List() []domain.CatalogEntry
}

// Loader fetches an exercise's listing and README
type Loader interface {
	Load(ctx context.Context, entry domain.CatalogEntry) (source, spec string, err error)
}

// Service builds fill-in-the-blank exercises from catalog entries
type Service struct {
	catalog   Catalog
	loader    Loader
	generator *blank.Generator
	logger    *slog.Logger
}

// NewService creates a new exercise service. A nil generator uses
// blank.NewGenerator() and a nil logger uses slog.Default().
func NewService(cat Catalog, loader Loader, generator *blank.Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if generator == nil {
		generator = blank.NewGenerator(blank.WithLogger(logger))
	}
	return &Service{
		catalog:   cat,
		loader:    loader,
		generator: generator,
		logger:    logger,
	}
}

// List returns the catalog
func (s *Service) List() []domain.CatalogEntry {
	return s.catalog.List()
}

// Generate builds a new exercise for the catalog ID
func (s *Service) Generate(ctx context.Context, id int, difficulty float64) (*domain.Exercise, error) {
	entry, err := s.catalog.Lookup(id)
	if err != nil {
		return nil, err
	}
	return s.Build(ctx, entry, difficulty)
}

// Build fetches the entry's listing and README and blanks the listing.
// Every call draws a fresh set of blanks.
func (s *Service) Build(ctx context.Context, entry domain.CatalogEntry, difficulty float64) (*domain.Exercise, error) {
	if err := domain.ValidateDifficulty(difficulty); err != nil {
		return nil, err
	}

	source, spec, err := s.loader.Load(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("load exercise %d: %w", entry.ID, err)
	}

	ex, stats := s.generator.GenerateWithStats(entry, source, spec, difficulty)
	if stats.Blanks < stats.Target && stats.Blanks < stats.Eligible {
		s.logger.Debug("fewer blanks than targeted",
			"exercise_id", entry.ID,
			"target", stats.Target,
			"blanks", stats.Blanks)
	}
	return ex, nil
}
