package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/felixgeelhaar/trainer/internal/domain"
)

// Queue names
const (
	GenerateQueueName = "trainer.generate"
	ResultQueueName   = "trainer.results"
	EventQueueName    = "trainer.events"
)

// Result statuses
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusTimeout   = "timeout"
)

// GenerateJob asks a worker to produce a fill-in-the-blank exercise
type GenerateJob struct {
	ID         uuid.UUID `json:"id"`
	ExerciseID int       `json:"exercise_id"`
	Difficulty float64   `json:"difficulty"`
	CreatedAt  time.Time `json:"created_at"`
}

// GenerateResult is published once a job has been processed
type GenerateResult struct {
	JobID       uuid.UUID        `json:"job_id"`
	Status      string           `json:"status"`
	Exercise    *domain.Exercise `json:"exercise,omitempty"`
	Error       string           `json:"error,omitempty"`
	Duration    time.Duration    `json:"duration"`
	CompletedAt time.Time        `json:"completed_at"`
}

// Publisher sends a JSON document to a named queue
type Publisher interface {
	PublishJSON(ctx context.Context, queue string, data any) error
}

// queueSpec describes a declared queue; ttl 0 keeps messages until consumed
type queueSpec struct {
	name string
	ttl  time.Duration
}

var declaredQueues = []queueSpec{
	{name: GenerateQueueName, ttl: 5 * time.Minute},
	{name: ResultQueueName, ttl: time.Minute},
	{name: EventQueueName},
}

// Connection manages the RabbitMQ connection with automatic reconnection
type Connection struct {
	url        string
	conn       *amqp.Connection
	channel    *amqp.Channel
	mu         sync.RWMutex
	closed     bool
	reconnects int
}

// NewConnection dials RabbitMQ and declares the trainer queues
func NewConnection(url string) (*Connection, error) {
	c := &Connection{url: url}
	if err := c.connect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Connection) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var err error
	c.conn, err = amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	c.channel, err = c.conn.Channel()
	if err != nil {
		c.conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	if err := declareQueues(c.channel); err != nil {
		c.channel.Close()
		c.conn.Close()
		return err
	}

	go c.handleReconnect(c.conn.NotifyClose(make(chan *amqp.Error, 1)))

	slog.Info("connected to RabbitMQ", "url", sanitizeURL(c.url))
	return nil
}

func declareQueues(ch *amqp.Channel) error {
	for _, q := range declaredQueues {
		var args amqp.Table
		if q.ttl > 0 {
			args = amqp.Table{"x-message-ttl": int32(q.ttl / time.Millisecond)}
		}
		// durable, not auto-deleted, not exclusive
		if _, err := ch.QueueDeclare(q.name, true, false, false, false, args); err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}
	return nil
}

// handleReconnect waits for an abnormal close and redials with backoff
func (c *Connection) handleReconnect(notifyClose <-chan *amqp.Error) {
	err, ok := <-notifyClose
	if !ok || err == nil {
		return
	}

	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return
	}

	slog.Warn("RabbitMQ connection closed, attempting to reconnect",
		"error", err,
		"reconnects", c.reconnects,
	)

	for i := 0; i < 10; i++ {
		c.reconnects++
		time.Sleep(reconnectBackoff(i))

		if err := c.connect(); err != nil {
			slog.Error("reconnection failed", "error", err, "attempt", i+1)
			continue
		}

		slog.Info("reconnected to RabbitMQ", "attempts", i+1)
		return
	}

	slog.Error("failed to reconnect to RabbitMQ after 10 attempts")
}

// reconnectBackoff doubles from one second, capped at 30s
func reconnectBackoff(attempt int) time.Duration {
	if attempt >= 5 {
		return 30 * time.Second
	}
	return time.Duration(1<<attempt) * time.Second
}

// Channel returns the current channel
func (c *Connection) Channel() *amqp.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// Close closes the channel and the connection
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsConnected checks if the connection is active
func (c *Connection) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil && !c.conn.IsClosed()
}

// PublishJSON publishes a persistent JSON message to a queue
func (c *Connection) PublishJSON(ctx context.Context, queue string, data any) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ch := c.Channel()
	return ch.PublishWithContext(
		ctx,
		"",    // default exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// sanitizeURL hides the password of an AMQP URL
func sanitizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "invalid-url"
	}
	return u.Redacted()
}
