package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/trainer/internal/domain"
	"github.com/felixgeelhaar/trainer/internal/session"
)

// EventMessage is the wire form of a training event
type EventMessage struct {
	ID          uuid.UUID       `json:"id"`
	Type        string          `json:"type"`
	AggregateID uuid.UUID       `json:"aggregate_id"`
	OccurredAt  time.Time       `json:"occurred_at"`
	Payload     json.RawMessage `json:"payload"`
}

// EventPublisher forwards session events to the events queue
type EventPublisher struct {
	pub Publisher
}

// NewEventPublisher creates an event publisher
func NewEventPublisher(pub Publisher) *EventPublisher {
	return &EventPublisher{pub: pub}
}

// Publish sends the event to trainer.events
func (p *EventPublisher) Publish(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	msg := EventMessage{
		ID:          event.EventID(),
		Type:        event.EventType(),
		AggregateID: event.AggregateID(),
		OccurredAt:  event.OccurredAt(),
		Payload:     payload,
	}
	if err := p.pub.PublishJSON(ctx, EventQueueName, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", msg.Type, err)
	}
	return nil
}

var _ session.Publisher = (*EventPublisher)(nil)
