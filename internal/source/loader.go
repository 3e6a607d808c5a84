package source

import (
	"context"
	"fmt"
	"log/slog"
	"path"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/trainer/internal/domain"
)

// specFile is the README stored next to every listing
const specFile = "README.md"

// Loader fetches the listing and README of a catalog entry
type Loader struct {
	fetcher  Fetcher
	resolver MainFileResolver
	logger   *slog.Logger
}

// NewLoader creates a loader. A nil logger uses slog.Default().
func NewLoader(fetcher Fetcher, resolver MainFileResolver, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		fetcher:  fetcher,
		resolver: resolver,
		logger:   logger,
	}
}

// Paths returns the listing and README paths of entry
func (l *Loader) Paths(entry domain.CatalogEntry) (sourcePath, specPath string) {
	dir := path.Join(string(entry.Level), entry.Folder)
	return path.Join(dir, l.resolver.MainFile(entry)+".java"), path.Join(dir, specFile)
}

// Load fetches the listing and README concurrently.
// A listing failure is returned as ErrSourceFetch. A README failure is
// logged and yields an empty spec text.
func (l *Loader) Load(ctx context.Context, entry domain.CatalogEntry) (source, spec string, err error) {
	sourcePath, specPath := l.Paths(entry)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		text, err := l.fetcher.Fetch(gctx, sourcePath)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", domain.ErrSourceFetch, sourcePath, err)
		}
		source = text
		return nil
	})

	g.Go(func() error {
		text, err := l.fetcher.Fetch(gctx, specPath)
		if err != nil {
			if gctx.Err() != nil {
				return nil
			}
			l.logger.Warn("spec unavailable, generating without protected identifiers",
				"exercise_id", entry.ID,
				"error", fmt.Errorf("%w: %s: %w", domain.ErrSpecFetch, specPath, err))
			return nil
		}
		spec = text
		return nil
	})

	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return source, spec, nil
}
