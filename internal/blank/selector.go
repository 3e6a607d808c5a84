package blank

import (
	"math"
	"math/rand/v2"
	"sort"
	"sync"
)

// MinBlanks is the floor applied to every target count
const MinBlanks = 3

// Source supplies uniform floats in [0, 1)
type Source interface {
	Float64() float64
}

// globalSource draws from the process-wide math/rand/v2 generator,
// which is safe for concurrent use.
type globalSource struct{}

func (globalSource) Float64() float64 { return rand.Float64() }

// LockedSource serialises access to a seeded generator so that a single
// deterministic stream can be shared by concurrent generations.
type LockedSource struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewLockedSource returns a deterministic Source for the given seed
func NewLockedSource(seed uint64) *LockedSource {
	return &LockedSource{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Float64 returns the next value of the stream
func (s *LockedSource) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Float64()
}

// TargetCount returns how many blanks to aim for given the number of
// scanned candidates: max(MinBlanks, floor(n * difficulty)).
func TargetCount(n int, difficulty float64) int {
	target := int(math.Floor(float64(n) * difficulty))
	if target < MinBlanks {
		return MinBlanks
	}
	return target
}

type scored struct {
	Candidate
	score float64
}

// Select scores each candidate with rnd.Float64() * Weight and keeps the
// target highest scores. Heavier categories are more likely, never certain,
// to be chosen. The result has min(target, len(candidates)) items, ordered
// by descending score.
func Select(rnd Source, candidates []Candidate, target int) []Candidate {
	if target <= 0 || len(candidates) == 0 {
		return nil
	}

	pool := make([]scored, len(candidates))
	for i, c := range candidates {
		pool[i] = scored{Candidate: c, score: rnd.Float64() * c.Weight}
	}

	sort.SliceStable(pool, func(i, j int) bool {
		return pool[i].score > pool[j].score
	})

	if target > len(pool) {
		target = len(pool)
	}
	selected := make([]Candidate, target)
	for i := range selected {
		selected[i] = pool[i].Candidate
	}
	return selected
}
