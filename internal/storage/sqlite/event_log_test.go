package sqlite

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/trainer/internal/catalog"
	"github.com/felixgeelhaar/trainer/internal/domain"
)

// fixedCatalog always selects the first total AgeFinder-like entries
type fixedCatalog struct{}

func (fixedCatalog) Lookup(id int) (domain.CatalogEntry, error) {
	return domain.CatalogEntry{ID: id, Level: domain.LevelG1, Folder: "AgeFinder", Title: "Age Finder"}, nil
}

func (c fixedCatalog) SelectBalanced(levels []domain.Level, total int, rnd catalog.Shuffler) []domain.CatalogEntry {
	out := make([]domain.CatalogEntry, total)
	for i := range out {
		out[i], _ = c.Lookup(i + 1)
	}
	return out
}

func TestEventLog(t *testing.T) {
	log := NewEventLog(openTestDB(t))
	ctx := context.Background()

	sessionID := uuid.New()
	started := domain.NewSessionStartedEvent(sessionID, []int{1, 7}, 0.5)
	checked := domain.NewAnswersCheckedEvent(sessionID, 1, 0, domain.CheckResult{
		Blanks:     []domain.BlankResult{{Index: 0, Given: "int", Correct: true}},
		AllCorrect: true,
	})

	for _, e := range []domain.Event{started, checked, started} {
		if err := log.Publish(ctx, e); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
	}
	// unrelated aggregate
	log.Publish(ctx, domain.NewSessionStartedEvent(uuid.New(), nil, 0.25))

	events, err := log.ForAggregate(ctx, sessionID.String())
	if err != nil {
		t.Fatalf("ForAggregate() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("events = %d; want 2 (duplicates ignored)", len(events))
	}
	if events[0].Type != domain.EventSessionStarted || events[1].Type != domain.EventAnswersChecked {
		t.Errorf("types = %s, %s", events[0].Type, events[1].Type)
	}

	var payload struct {
		ExerciseIDs []int   `json:"exercise_ids"`
		Difficulty  float64 `json:"difficulty"`
	}
	if err := json.Unmarshal(events[0].Payload, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(payload.ExerciseIDs) != 2 || payload.Difficulty != 0.5 {
		t.Errorf("payload = %+v", payload)
	}
}
