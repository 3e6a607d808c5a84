package blank

import (
	"sort"
	"strings"
)

// Candidate is a span of source text eligible for redaction.
// Start and End are half-open byte offsets and source[Start:End] == Text.
type Candidate struct {
	Start    int      `json:"start"`
	End      int      `json:"end"`
	Text     string   `json:"text"`
	Category Category `json:"category"`
	Weight   float64  `json:"weight"`
}

// Overlaps reports whether the half-open ranges of c and o intersect
func (c Candidate) Overlaps(o Candidate) bool {
	return c.Start < o.End && o.Start < c.End
}

// structuralTokens would corrupt the surrounding syntax if blanked
var structuralTokens = map[string]bool{
	"public":  true,
	"private": true,
	"class":   true,
	"{":       true,
	"}":       true,
}

// Scan applies every rule to source and returns the surviving matches
// sorted by ascending Start. Matches on comment lines, tokens shorter than
// two bytes, structural tokens and protected identifiers are dropped.
// Rules may yield overlapping or duplicate candidates.
func Scan(rules []Rule, source string, protected ProtectedSet) []Candidate {
	var candidates []Candidate

	for _, rule := range rules {
		for _, loc := range rule.Matcher.FindAllStringSubmatchIndex(source, -1) {
			matchStart := loc[0]
			if onCommentLine(source, matchStart) {
				continue
			}

			start, end := loc[0], loc[1]
			if g := rule.Group; g > 0 && 2*g+1 < len(loc) && loc[2*g] >= 0 && loc[2*g+1] > loc[2*g] {
				start, end = loc[2*g], loc[2*g+1]
			}
			text := source[start:end]

			if len(text) < 2 || structuralTokens[text] {
				continue
			}
			if protected.Contains(text) {
				continue
			}
			if rule.Exclude != nil && rule.Exclude(source, start, end) {
				continue
			}

			candidates = append(candidates, Candidate{
				Start:    start,
				End:      end,
				Text:     text,
				Category: rule.Category,
				Weight:   rule.Weight,
			})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Start < candidates[j].Start
	})
	return candidates
}

// onCommentLine reports whether a match starting at pos sits on a line that
// begins with "//" or that opens a block comment before pos.
// The check is per line: text inside a multi-line /* */ block on later
// lines is not recognised.
func onCommentLine(source string, pos int) bool {
	lineStart := strings.LastIndexByte(source[:pos], '\n') + 1
	lineEnd := len(source)
	if i := strings.IndexByte(source[pos:], '\n'); i >= 0 {
		lineEnd = pos + i
	}

	line := source[lineStart:lineEnd]
	if strings.HasPrefix(strings.TrimSpace(line), "//") {
		return true
	}
	return strings.Contains(source[lineStart:pos], "/*")
}
