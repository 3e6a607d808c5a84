package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/trainer/internal/domain"
)

// EventLog records published domain events
type EventLog struct {
	db *DB
}

// NewEventLog creates a new SQLite-backed event log.
func NewEventLog(db *DB) *EventLog {
	return &EventLog{db: db}
}

// Publish stores the event; it implements session.Publisher.
func (l *EventLog) Publish(ctx context.Context, event domain.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	_, err = l.db.ExecContext(ctx, `
		INSERT INTO events (id, type, aggregate_id, payload, occurred_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING`,
		event.EventID().String(), event.EventType(), event.AggregateID().String(),
		string(payload), event.OccurredAt(),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// RecordedEvent is a stored event
type RecordedEvent struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	AggregateID string          `json:"aggregate_id"`
	Payload     json.RawMessage `json:"payload"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

// ForAggregate returns the events of one session in occurrence order.
func (l *EventLog) ForAggregate(ctx context.Context, aggregateID string) ([]RecordedEvent, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, type, aggregate_id, payload, occurred_at
		FROM events WHERE aggregate_id = ? ORDER BY occurred_at, rowid`, aggregateID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []RecordedEvent
	for rows.Next() {
		var e RecordedEvent
		var payload string
		if err := rows.Scan(&e.ID, &e.Type, &e.AggregateID, &payload, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Payload = json.RawMessage(payload)
		events = append(events, e)
	}
	return events, rows.Err()
}
