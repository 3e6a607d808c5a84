package blank

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerator_Invariants(t *testing.T) {
	protected := ExtractProtected(ageFinderReadme)

	for _, difficulty := range []float64{0.25, 0.5, 0.75, 1.0} {
		for seed := uint64(1); seed <= 50; seed++ {
			t.Run(fmt.Sprintf("d=%v/seed=%d", difficulty, seed), func(t *testing.T) {
				gen := NewGenerator(WithSource(NewLockedSource(seed)))
				ex, stats := gen.GenerateWithStats(ageFinderEntry, ageFinderSource, ageFinderReadme, difficulty)

				assertExerciseInvariants(t, ex, protected)
				assert.LessOrEqual(t, stats.Blanks, stats.Target)
				assert.LessOrEqual(t, stats.Blanks, stats.Eligible)
				assert.LessOrEqual(t, stats.Eligible, stats.Candidates)
				assert.GreaterOrEqual(t, stats.Target, MinBlanks)
				assert.Equal(t, len(ex.Blanks), stats.Blanks)
			})
		}
	}
}

func TestGenerator_CopiesCatalogEntry(t *testing.T) {
	gen := NewGenerator(WithSource(NewLockedSource(3)))
	ex := gen.Generate(ageFinderEntry, ageFinderSource, ageFinderReadme, 0.5)
	require.NotNil(t, ex)
	require.NotEmpty(t, ex.Blanks)

	assert.Equal(t, ageFinderEntry.ID, ex.ID)
	assert.Equal(t, ageFinderEntry.Level, ex.Level)
	assert.Equal(t, ageFinderEntry.Folder, ex.Folder)
	assert.Equal(t, ageFinderEntry.Title, ex.Title)
	assert.Equal(t, ageFinderEntry.Description, ex.Description)
	assert.Equal(t, ageFinderReadme, ex.SpecText)
	assert.Equal(t, "Complete the AgeFinder implementation with the missing code elements.", ex.Explanation)
}

func TestGenerator_SameSeedSameExercise(t *testing.T) {
	first := NewGenerator(WithSource(NewLockedSource(42))).Generate(ageFinderEntry, ageFinderSource, ageFinderReadme, 0.5)
	second := NewGenerator(WithSource(NewLockedSource(42))).Generate(ageFinderEntry, ageFinderSource, ageFinderReadme, 0.5)

	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.Answers(), second.Answers())
}

func TestGenerator_RegenerationVaries(t *testing.T) {
	gen := NewGenerator(WithSource(NewLockedSource(7)))

	seen := map[string]struct{}{}
	for i := 0; i < 20; i++ {
		ex := gen.Generate(ageFinderEntry, ageFinderSource, ageFinderReadme, 0.5)
		seen[strings.Join(ex.Answers(), "|")] = struct{}{}
	}
	assert.Greater(t, len(seen), 1, "repeated generation should not always pick the same blanks")
}

func TestGenerator_HigherDifficultyMoreBlanks(t *testing.T) {
	gen := NewGenerator(WithSource(NewLockedSource(11)))

	_, easy := gen.GenerateWithStats(ageFinderEntry, ageFinderSource, ageFinderReadme, 0.25)
	_, hard := gen.GenerateWithStats(ageFinderEntry, ageFinderSource, ageFinderReadme, 1.0)

	assert.Equal(t, easy.Candidates, hard.Candidates)
	assert.Greater(t, hard.Target, easy.Target)
	assert.GreaterOrEqual(t, hard.Blanks, easy.Blanks)
}

func TestGenerator_EmptySource(t *testing.T) {
	ex, stats := NewGenerator().GenerateWithStats(ageFinderEntry, "", "", 0.5)

	assert.Empty(t, ex.Code)
	assert.Empty(t, ex.Blanks)
	assert.Equal(t, MinBlanks, stats.Target)
	assert.Zero(t, stats.Candidates)
}

func TestGenerator_NoCandidatesLeavesSourceUntouched(t *testing.T) {
	source := "// nothing to see\n{ }"
	ex := NewGenerator().Generate(ageFinderEntry, source, "", 1)

	assert.Equal(t, source, ex.Code)
	assert.Empty(t, ex.Blanks)
}

func TestGenerator_WithRules(t *testing.T) {
	rules := []Rule{DefaultRules()[3]} // imports only

	ex := NewGenerator(WithRules(rules), WithSource(NewLockedSource(5))).
		Generate(ageFinderEntry, ageFinderSource, "", 1)

	assert.ElementsMatch(t, []string{"LocalDate", "Period", "DateTimeFormatter"}, ex.Answers())
}

func TestGenerator_StylesBanners(t *testing.T) {
	rule := strings.Repeat("=", 44)
	source := "// " + rule + "\n// FILE: Shape.java\n// " + rule + "\npublic interface Shape {\n    double area();\n}\n"

	ex := NewGenerator(WithSource(NewLockedSource(1))).Generate(ageFinderEntry, source, "", 1)
	assert.True(t, strings.HasPrefix(ex.Code, `<span class="file-separator">`), ex.Code)
}

func TestGenerator_ConcurrentUse(t *testing.T) {
	gen := NewGenerator(WithSource(NewLockedSource(8)))
	protected := ExtractProtected(ageFinderReadme)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ex := gen.Generate(ageFinderEntry, ageFinderSource, ageFinderReadme, 0.75)
			assertExerciseInvariants(t, ex, protected)
		}()
	}
	wg.Wait()
}
