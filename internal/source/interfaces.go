package source

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/trainer/internal/domain"
)

// ErrNotFound is returned by fetchers when the requested file does not exist
var ErrNotFound = errors.New("file not found")

// Fetcher retrieves a file of the exercise tree by its slash-separated path,
// e.g. "g1/AgeFinder/AgeFinder.java".
type Fetcher interface {
	Fetch(ctx context.Context, path string) (string, error)
}

// MainFileResolver maps a catalog entry to the base name of its main listing
type MainFileResolver interface {
	MainFile(entry domain.CatalogEntry) string
}
