package blank

import (
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/trainer/internal/domain"
)

// Generator builds exercises from source listings.
// It holds no per-call state and is safe for concurrent use as long as its
// Source is.
type Generator struct {
	rules  []Rule
	rnd    Source
	logger *slog.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithSource injects the random source used for selection
func WithSource(src Source) Option {
	return func(g *Generator) {
		g.rnd = src
	}
}

// WithRules replaces the default rule catalog
func WithRules(rules []Rule) Option {
	return func(g *Generator) {
		g.rules = rules
	}
}

// WithLogger sets the logger used for skipped blanks
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		g.logger = logger
	}
}

// NewGenerator creates a generator using the default rules and the
// process-wide random source unless overridden.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		rules:  DefaultRules(),
		rnd:    globalSource{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Stats describes one generation run
type Stats struct {
	Protected  int `json:"protected"`
	Candidates int `json:"candidates"`
	Eligible   int `json:"eligible"`
	Target     int `json:"target"`
	Blanks     int `json:"blanks"`
}

// Generate redacts a random, weighted subset of tokens in source.
// specText is the exercise README; identifiers it declares under its
// "Expected ..." sections are never blanked. An empty specText is fine.
func (g *Generator) Generate(entry domain.CatalogEntry, source, specText string, difficulty float64) *domain.Exercise {
	ex, _ := g.GenerateWithStats(entry, source, specText, difficulty)
	return ex
}

// GenerateWithStats is Generate plus counters for diagnostics
func (g *Generator) GenerateWithStats(entry domain.CatalogEntry, source, specText string, difficulty float64) (*domain.Exercise, Stats) {
	protected := ExtractProtected(specText)
	candidates := Scan(g.rules, source, protected)
	target := TargetCount(len(candidates), difficulty)

	eligible := ResolveOverlaps(candidates)
	selected := Select(g.rnd, eligible, target)
	code, blanks := Render(source, selected, g.logger)

	stats := Stats{
		Protected:  len(protected),
		Candidates: len(candidates),
		Eligible:   len(eligible),
		Target:     target,
		Blanks:     len(blanks),
	}

	g.logger.Debug("generated exercise",
		"exercise_id", entry.ID,
		"folder", entry.Folder,
		"difficulty", difficulty,
		"candidates", stats.Candidates,
		"eligible", stats.Eligible,
		"target", stats.Target,
		"blanks", stats.Blanks,
	)

	return &domain.Exercise{
		ID:          entry.ID,
		Level:       entry.Level,
		Folder:      entry.Folder,
		Title:       entry.Title,
		Description: entry.Description,
		Code:        code,
		Blanks:      blanks,
		SpecText:    specText,
		Explanation: fmt.Sprintf("Complete the %s implementation with the missing code elements.", entry.Folder),
	}, stats
}
