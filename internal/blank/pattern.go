// Package blank turns complete source listings into fill-in-the-blank
// exercises.
//
// The pipeline works on raw text with regular expressions, not on a syntax
// tree: Scan finds candidate tokens, ResolveOverlaps keeps a non-overlapping
// subset, Select draws a weighted random sample and Render splices sized
// placeholders into the text while building the ordered answer key.
package blank

import "regexp"

// Category classifies the lexical shape a rule matches
type Category string

const (
	CategoryDataType      Category = "dataType"
	CategoryConstructor   Category = "constructor"
	CategoryMethodCall    Category = "methodCall"
	CategoryImport        Category = "import"
	CategoryVariable      Category = "variable"
	CategoryNumberLiteral Category = "numberLiteral"
	CategoryExceptionType Category = "exceptionType"
)

// Rule describes one redactable lexical shape.
// Weight lies in (0, 1]; Group selects the capture group holding the token.
type Rule struct {
	Matcher  *regexp.Regexp
	Category Category
	Weight   float64
	Group    int

	// Exclude drops a match whose token spans src[start:end].
	// RE2 has no lookaround, so context-sensitive exclusions live here.
	Exclude func(src string, start, end int) bool
}

// DefaultRules returns the rule catalog in scan order.
// A fresh slice is returned so callers may extend it safely.
func DefaultRules() []Rule {
	return []Rule{
		// Declared types in standalone declarations, not method signatures
		{
			Matcher:  regexp.MustCompile(`\b(String|int|boolean|double|float|long|char|byte|short)\s+(\w+)\s*[=;]`),
			Category: CategoryDataType,
			Weight:   0.9,
			Group:    1,
		},
		{
			Matcher:  regexp.MustCompile(`new\s+(\w+)\s*\(`),
			Category: CategoryConstructor,
			Weight:   0.9,
			Group:    1,
		},
		{
			Matcher:  regexp.MustCompile(`\.(\w+)\(`),
			Category: CategoryMethodCall,
			Weight:   0.7,
			Group:    1,
		},
		// Last segment of an import only
		{
			Matcher:  regexp.MustCompile(`import\s+[\w.]+\.(\w+);`),
			Category: CategoryImport,
			Weight:   0.6,
			Group:    1,
		},
		// Left-hand side of an assignment
		{
			Matcher:  regexp.MustCompile(`(\w+)\s*=\s*[^=]`),
			Category: CategoryVariable,
			Weight:   0.5,
			Group:    1,
		},
		{
			Matcher:  regexp.MustCompile(`\b(\d+)\b`),
			Category: CategoryNumberLiteral,
			Weight:   0.4,
			Group:    1,
			Exclude:  isNegativeOne,
		},
		{
			Matcher:  regexp.MustCompile(`catch\s*\(\s*(\w+)\s+\w+\)`),
			Category: CategoryExceptionType,
			Weight:   0.8,
			Group:    1,
		},
	}
}

// isNegativeOne reports whether the digits at src[start:end] form the
// sentinel -1, which stays visible in every exercise.
func isNegativeOne(src string, start, end int) bool {
	return src[start:end] == "1" && start > 0 && src[start-1] == '-'
}
