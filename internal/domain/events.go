package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Event Interface and Base Event
// -----------------------------------------------------------------------------

// Event represents a domain event
type Event interface {
	// EventID returns the unique identifier for this event
	EventID() uuid.UUID
	// EventType returns the type name of this event
	EventType() string
	// OccurredAt returns when this event occurred
	OccurredAt() time.Time
	// AggregateID returns the ID of the aggregate that produced this event
	AggregateID() uuid.UUID
}

// BaseEvent provides common event fields
type BaseEvent struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateUUID uuid.UUID `json:"aggregate_id"`
}

// NewBaseEvent creates a new BaseEvent
func NewBaseEvent(eventType string, aggregateID uuid.UUID) BaseEvent {
	return BaseEvent{
		ID:            uuid.New(),
		Type:          eventType,
		Timestamp:     time.Now(),
		AggregateUUID: aggregateID,
	}
}

func (e BaseEvent) EventID() uuid.UUID     { return e.ID }
func (e BaseEvent) EventType() string      { return e.Type }
func (e BaseEvent) OccurredAt() time.Time  { return e.Timestamp }
func (e BaseEvent) AggregateID() uuid.UUID { return e.AggregateUUID }

// Event type names
const (
	EventSessionStarted    = "session.started"
	EventExerciseGenerated = "exercise.generated"
	EventAnswersChecked    = "answers.checked"
	EventSessionCompleted  = "session.completed"
)

// -----------------------------------------------------------------------------
// Event Handler and Dispatcher
// -----------------------------------------------------------------------------

// EventHandler processes domain events
type EventHandler func(event Event)

// EventDispatcher manages event subscriptions and publishing.
// Handlers receive events synchronously in subscription order.
type EventDispatcher struct {
	mu          sync.RWMutex
	handlers    map[string][]EventHandler
	allHandlers []EventHandler
}

// NewEventDispatcher creates a new event dispatcher
func NewEventDispatcher() *EventDispatcher {
	return &EventDispatcher{
		handlers: make(map[string][]EventHandler),
	}
}

// Subscribe registers a handler for a specific event type
func (d *EventDispatcher) Subscribe(eventType string, handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], handler)
}

// SubscribeAll registers a handler for all event types
func (d *EventDispatcher) SubscribeAll(handler EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.allHandlers = append(d.allHandlers, handler)
}

// Publish dispatches an event to all registered handlers
func (d *EventDispatcher) Publish(event Event) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, h := range d.handlers[event.EventType()] {
		h(event)
	}
	for _, h := range d.allHandlers {
		h(event)
	}
}

// -----------------------------------------------------------------------------
// Training Events
// -----------------------------------------------------------------------------

// SessionStartedEvent is published when a training session is created
type SessionStartedEvent struct {
	BaseEvent
	ExerciseIDs []int   `json:"exercise_ids"`
	Difficulty  float64 `json:"difficulty"`
}

// NewSessionStartedEvent creates a new session started event
func NewSessionStartedEvent(sessionID uuid.UUID, exerciseIDs []int, difficulty float64) SessionStartedEvent {
	return SessionStartedEvent{
		BaseEvent:   NewBaseEvent(EventSessionStarted, sessionID),
		ExerciseIDs: exerciseIDs,
		Difficulty:  difficulty,
	}
}

// ExerciseGeneratedEvent is published whenever blanks are (re)generated
type ExerciseGeneratedEvent struct {
	BaseEvent
	ExerciseID  int  `json:"exercise_id"`
	Index       int  `json:"index"`
	BlankCount  int  `json:"blank_count"`
	Regenerated bool `json:"regenerated"`
}

// NewExerciseGeneratedEvent creates a new exercise generated event
func NewExerciseGeneratedEvent(sessionID uuid.UUID, exerciseID, index, blankCount int, regenerated bool) ExerciseGeneratedEvent {
	return ExerciseGeneratedEvent{
		BaseEvent:   NewBaseEvent(EventExerciseGenerated, sessionID),
		ExerciseID:  exerciseID,
		Index:       index,
		BlankCount:  blankCount,
		Regenerated: regenerated,
	}
}

// AnswersCheckedEvent is published after a learner submits answers
type AnswersCheckedEvent struct {
	BaseEvent
	ExerciseID int  `json:"exercise_id"`
	Index      int  `json:"index"`
	Correct    int  `json:"correct"`
	Total      int  `json:"total"`
	AllCorrect bool `json:"all_correct"`
}

// NewAnswersCheckedEvent creates a new answers checked event
func NewAnswersCheckedEvent(sessionID uuid.UUID, exerciseID, index int, result CheckResult) AnswersCheckedEvent {
	return AnswersCheckedEvent{
		BaseEvent:  NewBaseEvent(EventAnswersChecked, sessionID),
		ExerciseID: exerciseID,
		Index:      index,
		Correct:    result.CorrectCount(),
		Total:      len(result.Blanks),
		AllCorrect: result.AllCorrect,
	}
}

// SessionCompletedEvent is published when a session reaches its completion screen
type SessionCompletedEvent struct {
	BaseEvent
	Solved   int           `json:"solved"`
	Total    int           `json:"total"`
	Duration time.Duration `json:"duration"`
}

// NewSessionCompletedEvent creates a new session completed event
func NewSessionCompletedEvent(sessionID uuid.UUID, solved, total int, duration time.Duration) SessionCompletedEvent {
	return SessionCompletedEvent{
		BaseEvent: NewBaseEvent(EventSessionCompleted, sessionID),
		Solved:    solved,
		Total:     total,
		Duration:  duration,
	}
}
