package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/felixgeelhaar/trainer/internal/domain"
)

// JobHandler produces the exercise for a generation job
type JobHandler func(ctx context.Context, job *GenerateJob) (*domain.Exercise, error)

// Generator builds exercises by catalog ID
type Generator interface {
	Generate(ctx context.Context, id int, difficulty float64) (*domain.Exercise, error)
}

// GenerateHandler adapts a Generator to a JobHandler
func GenerateHandler(g Generator) JobHandler {
	return func(ctx context.Context, job *GenerateJob) (*domain.Exercise, error) {
		return g.Generate(ctx, job.ExerciseID, job.Difficulty)
	}
}

// Consumer runs a pool of workers over the generate queue
type Consumer struct {
	conn       *Connection
	handler    JobHandler
	producer   *Producer
	workers    int
	prefetch   int
	timeout    time.Duration
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// ConsumerConfig holds consumer configuration
type ConsumerConfig struct {
	Workers    int           // concurrent workers
	Prefetch   int           // unacknowledged deliveries per channel
	JobTimeout time.Duration // per-job deadline
}

// DefaultConsumerConfig returns sensible defaults
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Workers:    3,
		Prefetch:   1,
		JobTimeout: 30 * time.Second,
	}
}

func (cfg ConsumerConfig) withDefaults() ConsumerConfig {
	def := DefaultConsumerConfig()
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = def.Prefetch
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = def.JobTimeout
	}
	return cfg
}

// NewConsumer creates a new queue consumer
func NewConsumer(conn *Connection, handler JobHandler, cfg ConsumerConfig) *Consumer {
	cfg = cfg.withDefaults()
	return &Consumer{
		conn:     conn,
		handler:  handler,
		producer: NewProducer(conn),
		workers:  cfg.Workers,
		prefetch: cfg.Prefetch,
		timeout:  cfg.JobTimeout,
	}
}

// Start begins consuming generate jobs
func (c *Consumer) Start(ctx context.Context) error {
	ctx, c.cancelFunc = context.WithCancel(ctx)

	ch := c.conn.Channel()

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		GenerateQueueName,
		"",    // consumer tag (auto-generated)
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.Info("starting generate queue consumer", "workers", c.workers, "prefetch", c.prefetch)

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(ctx, i, msgs)
	}
	return nil
}

func (c *Consumer) worker(ctx context.Context, id int, msgs <-chan amqp.Delivery) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			slog.Debug("worker stopping", "worker_id", id)
			return

		case msg, ok := <-msgs:
			if !ok {
				slog.Info("message channel closed", "worker_id", id)
				return
			}
			c.processMessage(ctx, id, msg)
		}
	}
}

func (c *Consumer) processMessage(ctx context.Context, workerID int, msg amqp.Delivery) {
	var job GenerateJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		slog.Error("failed to unmarshal job", "worker_id", workerID, "error", err)
		// malformed messages are dropped, not requeued
		_ = msg.Reject(false)
		return
	}

	result := runJob(ctx, c.handler, &job, c.timeout)
	if result.Status == StatusCompleted {
		slog.Info("job completed",
			"worker_id", workerID,
			"job_id", job.ID,
			"exercise_id", job.ExerciseID,
			"blanks", len(result.Exercise.Blanks),
			"duration", result.Duration,
		)
	} else {
		slog.Error("job failed",
			"worker_id", workerID,
			"job_id", job.ID,
			"status", result.Status,
			"error", result.Error,
		)
	}

	if err := c.producer.PublishResult(ctx, result); err != nil {
		slog.Error("failed to publish result", "worker_id", workerID, "job_id", job.ID, "error", err)
	}

	if err := msg.Ack(false); err != nil {
		slog.Error("failed to ack message", "worker_id", workerID, "job_id", job.ID, "error", err)
	}
}

// runJob executes one job under its deadline and always returns a result
func runJob(ctx context.Context, handler JobHandler, job *GenerateJob, timeout time.Duration) *GenerateResult {
	start := time.Now()

	jobCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	exercise, err := handler(jobCtx, job)
	result := &GenerateResult{
		JobID:       job.ID,
		Duration:    time.Since(start),
		CompletedAt: time.Now(),
	}

	switch {
	case err == nil:
		result.Status = StatusCompleted
		result.Exercise = exercise
	case errors.Is(jobCtx.Err(), context.DeadlineExceeded):
		result.Status = StatusTimeout
		result.Error = "generation timed out"
	default:
		result.Status = StatusFailed
		result.Error = err.Error()
	}
	return result
}

// Stop cancels the workers and waits for them to exit
func (c *Consumer) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
	slog.Info("consumer stopped")
}

// ResultHandler handles the result of a specific job
type ResultHandler func(result *GenerateResult)

// ResultConsumer routes generate results to per-job subscribers
type ResultConsumer struct {
	conn       *Connection
	handlers   map[string]ResultHandler
	handlersMu sync.RWMutex
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// NewResultConsumer creates a result consumer
func NewResultConsumer(conn *Connection) *ResultConsumer {
	return &ResultConsumer{
		conn:     conn,
		handlers: make(map[string]ResultHandler),
	}
}

// Subscribe registers a handler for results of a job
func (rc *ResultConsumer) Subscribe(jobID uuid.UUID, handler ResultHandler) {
	rc.handlersMu.Lock()
	defer rc.handlersMu.Unlock()
	rc.handlers[jobID.String()] = handler
}

// Unsubscribe removes a handler
func (rc *ResultConsumer) Unsubscribe(jobID uuid.UUID) {
	rc.handlersMu.Lock()
	defer rc.handlersMu.Unlock()
	delete(rc.handlers, jobID.String())
}

// Await blocks until the result of jobID arrives or ctx is done
func (rc *ResultConsumer) Await(ctx context.Context, jobID uuid.UUID) (*GenerateResult, error) {
	return rc.Expect(jobID)(ctx)
}

// Expect subscribes to the result of jobID before the job is published.
// The returned function waits for it and removes the subscription.
func (rc *ResultConsumer) Expect(jobID uuid.UUID) func(ctx context.Context) (*GenerateResult, error) {
	ch := make(chan *GenerateResult, 1)
	rc.Subscribe(jobID, func(result *GenerateResult) {
		select {
		case ch <- result:
		default:
		}
	})

	return func(ctx context.Context) (*GenerateResult, error) {
		defer rc.Unsubscribe(jobID)

		select {
		case result := <-ch:
			return result, nil
		case <-ctx.Done():
			return nil, fmt.Errorf("await job %s: %w", jobID, ctx.Err())
		}
	}
}

// Start begins consuming results
func (rc *ResultConsumer) Start(ctx context.Context) error {
	ctx, rc.cancelFunc = context.WithCancel(ctx)

	msgs, err := rc.conn.Channel().Consume(
		ResultQueueName,
		"",    // consumer tag
		true,  // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("start result consumer: %w", err)
	}

	rc.wg.Add(1)
	go rc.consume(ctx, msgs)
	return nil
}

func (rc *ResultConsumer) consume(ctx context.Context, msgs <-chan amqp.Delivery) {
	defer rc.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			rc.dispatch(msg.Body)
		}
	}
}

// dispatch decodes a result and hands it to its subscriber, if any
func (rc *ResultConsumer) dispatch(body []byte) {
	var result GenerateResult
	if err := json.Unmarshal(body, &result); err != nil {
		slog.Error("failed to unmarshal result", "error", err)
		return
	}

	rc.handlersMu.RLock()
	handler, ok := rc.handlers[result.JobID.String()]
	rc.handlersMu.RUnlock()

	if ok {
		handler(&result)
	}
}

// Stop stops the result consumer
func (rc *ResultConsumer) Stop() {
	if rc.cancelFunc != nil {
		rc.cancelFunc()
	}
	rc.wg.Wait()
}
