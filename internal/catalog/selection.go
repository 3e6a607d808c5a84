package catalog

import (
	"math/rand/v2"

	"github.com/felixgeelhaar/trainer/internal/domain"
)

// Shuffler supplies uniform integers in [0, n)
type Shuffler interface {
	IntN(n int) int
}

type globalShuffler struct{}

func (globalShuffler) IntN(n int) int { return rand.IntN(n) }

// SelectBalanced picks total exercises spread evenly over levels.
// Each level contributes total/len(levels) entries, the first
// total%len(levels) levels one more, capped by what the level holds.
// The merged selection is shuffled so levels are interleaved.
// A nil rnd uses the process-wide generator.
func (c *Catalog) SelectBalanced(levels []domain.Level, total int, rnd Shuffler) []domain.CatalogEntry {
	if len(levels) == 0 || total <= 0 {
		return nil
	}
	if rnd == nil {
		rnd = globalShuffler{}
	}

	perLevel := total / len(levels)
	remainder := total % len(levels)

	var selected []domain.CatalogEntry
	for i, level := range levels {
		count := perLevel
		if i < remainder {
			count++
		}

		pool := shuffle(c.ByLevel(level), rnd)
		if count > len(pool) {
			count = len(pool)
		}
		selected = append(selected, pool[:count]...)
	}

	return shuffle(selected, rnd)
}

// shuffle returns a Fisher-Yates permutation of entries
func shuffle(entries []domain.CatalogEntry, rnd Shuffler) []domain.CatalogEntry {
	out := make([]domain.CatalogEntry, len(entries))
	copy(out, entries)
	for i := len(out) - 1; i > 0; i-- {
		j := rnd.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}
