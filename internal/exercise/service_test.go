package exercise_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/felixgeelhaar/trainer/internal/blank"
	"github.com/felixgeelhaar/trainer/internal/catalog"
	"github.com/felixgeelhaar/trainer/internal/domain"
	"github.com/felixgeelhaar/trainer/internal/exercise"
)

const nextPrime = `public class NextPrime {
    public static int nextPrime(int n) {
        int candidate = n + 1;
        while (!isPrime(candidate)) {
            candidate = candidate + 1;
        }
        return candidate;
    }

    private static boolean isPrime(int n) {
        if (n < 2) return false;
        for (int i = 2; i * i <= n; i++) {
            if (n % i == 0) return false;
        }
        return true;
    }
}`

const nextPrimeReadme = "# Next Prime\n\n### Expected Functions\n```java\npublic static int nextPrime(int n)\n```\n"

type fakeLoader struct {
	source, spec string
	err          error
	calls        int
}

func (l *fakeLoader) Load(ctx context.Context, entry domain.CatalogEntry) (string, string, error) {
	l.calls++
	return l.source, l.spec, l.err
}

func newService(loader exercise.Loader) *exercise.Service {
	gen := blank.NewGenerator(blank.WithSource(blank.NewLockedSource(17)))
	return exercise.NewService(catalog.Default(), loader, gen, nil)
}

func TestService_Generate(t *testing.T) {
	svc := newService(&fakeLoader{source: nextPrime, spec: nextPrimeReadme})

	ex, err := svc.Generate(context.Background(), 13, 0.5)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if ex.ID != 13 || ex.Folder != "NextPrime" || ex.Level != domain.LevelG2 {
		t.Errorf("exercise metadata = %d %s %s", ex.ID, ex.Folder, ex.Level)
	}
	if len(ex.Blanks) == 0 {
		t.Fatal("expected blanks")
	}
	if got := strings.Count(ex.Code, "___"); got < len(ex.Blanks) {
		t.Errorf("code has %d placeholder triples for %d blanks", got, len(ex.Blanks))
	}
	for _, b := range ex.Blanks {
		if b.Answer == "nextPrime" {
			t.Error("protected method name was blanked")
		}
	}
	if ex.SpecText != nextPrimeReadme {
		t.Error("spec text not carried over")
	}
}

func TestService_GenerateUnknownID(t *testing.T) {
	loader := &fakeLoader{source: nextPrime}
	svc := newService(loader)

	_, err := svc.Generate(context.Background(), 404, 0.5)
	if !errors.Is(err, domain.ErrExerciseNotFound) {
		t.Errorf("Generate() error = %v, want ErrExerciseNotFound", err)
	}
	if loader.calls != 0 {
		t.Errorf("loader called %d times", loader.calls)
	}
}

func TestService_GenerateInvalidDifficulty(t *testing.T) {
	svc := newService(&fakeLoader{source: nextPrime})

	for _, d := range []float64{0, -0.5, 1.5} {
		if _, err := svc.Generate(context.Background(), 13, d); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("Generate(difficulty=%v) error = %v, want ErrInvalidInput", d, err)
		}
	}
}

func TestService_GenerateSourceFailure(t *testing.T) {
	svc := newService(&fakeLoader{err: domain.ErrSourceFetch})

	_, err := svc.Generate(context.Background(), 13, 0.5)
	if !errors.Is(err, domain.ErrSourceFetch) {
		t.Errorf("Generate() error = %v, want ErrSourceFetch", err)
	}
}

func TestService_List(t *testing.T) {
	svc := newService(&fakeLoader{})
	if got := len(svc.List()); got != 25 {
		t.Errorf("List() = %d entries, want 25", got)
	}
}
