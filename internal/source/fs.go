package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// DirFetcher reads exercise files from a local directory tree
type DirFetcher struct {
	root string
}

// NewDirFetcher creates a fetcher rooted at dir
func NewDirFetcher(dir string) *DirFetcher {
	return &DirFetcher{root: dir}
}

// Root returns the directory the fetcher reads from
func (f *DirFetcher) Root() string {
	return f.root
}

// Fetch reads the file at p relative to the root
func (f *DirFetcher) Fetch(ctx context.Context, p string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	// Cleaning against "/" keeps the path inside root
	clean := path.Clean("/" + p)

	data, err := os.ReadFile(filepath.Join(f.root, filepath.FromSlash(clean)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, p)
		}
		return "", fmt.Errorf("read %s: %w", p, err)
	}
	return string(data), nil
}
