package domain

import (
	"fmt"
	"strings"
)

// Level represents the grade an exercise belongs to
type Level string

const (
	LevelG1 Level = "g1"
	LevelG2 Level = "g2"
	LevelG3 Level = "g3"
	LevelG4 Level = "g4"
)

// Levels lists all known levels in ascending order
var Levels = []Level{LevelG1, LevelG2, LevelG3, LevelG4}

// Valid reports whether the level is one of the known grades
func (l Level) Valid() bool {
	for _, known := range Levels {
		if l == known {
			return true
		}
	}
	return false
}

// ParseLevel converts a case-insensitive string such as "G2" into a Level
func ParseLevel(s string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("%w: unknown level %q", ErrInvalidInput, s)
	}
	return l, nil
}

// CatalogEntry describes one exercise in the static catalog.
// Entries are configuration, never generated.
type CatalogEntry struct {
	ID          int    `json:"id" yaml:"id"`
	Level       Level  `json:"level" yaml:"level"`
	Folder      string `json:"folder" yaml:"folder"`
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
}

// Blank is one answer record. Blanks are ordered to match the
// left-to-right order of placeholders in Exercise.Code.
type Blank struct {
	Answer string `json:"answer"`
}

// Exercise is a generated fill-in-the-blank exercise
type Exercise struct {
	ID          int     `json:"id"`
	Level       Level   `json:"level"`
	Folder      string  `json:"folder"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Code        string  `json:"code"`
	Blanks      []Blank `json:"blanks"`
	SpecText    string  `json:"spec_text"`
	Explanation string  `json:"explanation"`
}

// Answers returns the expected answers in placeholder order
func (e *Exercise) Answers() []string {
	answers := make([]string, len(e.Blanks))
	for i, b := range e.Blanks {
		answers[i] = b.Answer
	}
	return answers
}

// BlankResult is the outcome of checking a single blank
type BlankResult struct {
	Index   int    `json:"index"`
	Given   string `json:"given"`
	Correct bool   `json:"correct"`
}

// CheckResult is the outcome of checking all blanks of an exercise
type CheckResult struct {
	Blanks     []BlankResult `json:"blanks"`
	AllCorrect bool          `json:"all_correct"`
}

// CorrectCount returns the number of correctly filled blanks
func (r CheckResult) CorrectCount() int {
	n := 0
	for _, b := range r.Blanks {
		if b.Correct {
			n++
		}
	}
	return n
}

// Check compares user input positionally against the answer key.
// Comparison is exact and case-sensitive after trimming whitespace.
// Missing inputs count as wrong; extra inputs are ignored.
func (e *Exercise) Check(inputs []string) CheckResult {
	result := CheckResult{
		Blanks:     make([]BlankResult, len(e.Blanks)),
		AllCorrect: true,
	}

	for i, b := range e.Blanks {
		var given string
		if i < len(inputs) {
			given = strings.TrimSpace(inputs[i])
		}
		correct := given == strings.TrimSpace(b.Answer)
		result.Blanks[i] = BlankResult{Index: i, Given: given, Correct: correct}
		if !correct {
			result.AllCorrect = false
		}
	}

	return result
}
