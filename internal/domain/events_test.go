package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewBaseEvent(t *testing.T) {
	aggregateID := uuid.New()
	before := time.Now()
	event := NewBaseEvent(EventSessionStarted, aggregateID)

	if event.EventID() == uuid.Nil {
		t.Error("EventID() should be set")
	}
	if event.EventType() != EventSessionStarted {
		t.Errorf("EventType() = %q", event.EventType())
	}
	if event.AggregateID() != aggregateID {
		t.Errorf("AggregateID() = %s; want %s", event.AggregateID(), aggregateID)
	}
	if event.OccurredAt().Before(before) {
		t.Error("OccurredAt() should not precede creation")
	}
	if NewBaseEvent(EventSessionStarted, aggregateID).EventID() == event.EventID() {
		t.Error("event IDs should be unique")
	}
}

func TestEventDispatcher(t *testing.T) {
	d := NewEventDispatcher()

	var started, all []string
	d.Subscribe(EventSessionStarted, func(e Event) { started = append(started, e.EventType()) })
	d.SubscribeAll(func(e Event) { all = append(all, e.EventType()) })

	sessionID := uuid.New()
	d.Publish(NewSessionStartedEvent(sessionID, []int{1, 2}, 0.5))
	d.Publish(NewSessionCompletedEvent(sessionID, 2, 2, time.Minute))

	if len(started) != 1 {
		t.Errorf("typed handler calls = %d; want 1", len(started))
	}
	if len(all) != 2 || all[1] != EventSessionCompleted {
		t.Errorf("all handler calls = %v", all)
	}
}

func TestTrainingEvents(t *testing.T) {
	sessionID := uuid.New()

	generated := NewExerciseGeneratedEvent(sessionID, 7, 2, 5, true)
	if generated.EventType() != EventExerciseGenerated || !generated.Regenerated || generated.BlankCount != 5 {
		t.Errorf("generated = %+v", generated)
	}

	checked := NewAnswersCheckedEvent(sessionID, 7, 2, CheckResult{
		Blanks: []BlankResult{{Index: 0, Correct: true}, {Index: 1}, {Index: 2, Correct: true}},
	})
	if checked.Correct != 2 || checked.Total != 3 || checked.AllCorrect {
		t.Errorf("checked = %+v", checked)
	}
	if checked.AggregateID() != sessionID {
		t.Error("events should be keyed by session")
	}
}
