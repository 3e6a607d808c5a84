package blank

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/trainer/internal/domain"
)

const ageFinderSource = `import java.time.LocalDate;
import java.time.Period;
import java.time.format.DateTimeFormatter;

public class AgeFinder {
    public int calculateAge(String date) {
        try {
            DateTimeFormatter formatter = DateTimeFormatter.ofPattern("yyyy-MM-dd");

            LocalDate birthDate = LocalDate.parse(date, formatter);

            LocalDate today = LocalDate.now();

            if (birthDate.isAfter(today)) {
                return -1;
            }
            return Period.between(birthDate, today).getYears();
        } catch(Exception e) {
            return -1;
        }
    }
}`

const ageFinderReadme = "# Age Finder\n\n" +
	"Calculate someone's age in years.\n\n" +
	"### Expected Class\n" +
	"```java\n" +
	"import java.time.LocalDate;\n\n" +
	"public class AgeFinder {\n" +
	"    public int calculateAge(String date)\n" +
	"}\n" +
	"```\n"

var ageFinderEntry = domain.CatalogEntry{
	ID:          1,
	Level:       domain.LevelG1,
	Folder:      "AgeFinder",
	Title:       "Age Finder",
	Description: "Calculate age from date with error handling",
}

var placeholderRunRe = regexp.MustCompile(`_+`)

// assertExerciseInvariants checks the properties every generated exercise
// must satisfy regardless of the random draw.
func assertExerciseInvariants(t *testing.T, ex *domain.Exercise, protected ProtectedSet) {
	t.Helper()
	require.NotNil(t, ex)

	runs := placeholderRunRe.FindAllString(ex.Code, -1)
	require.Len(t, runs, len(ex.Blanks), "placeholder runs must match answers")

	for i, b := range ex.Blanks {
		assert.Equal(t, Placeholder(b.Answer), runs[i], "blank %d placeholder length", i)
		assert.False(t, protected.Contains(b.Answer), "protected identifier %q was blanked", b.Answer)
	}
}

// texts returns the candidate texts in order
func texts(cs []Candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Text
	}
	return out
}
