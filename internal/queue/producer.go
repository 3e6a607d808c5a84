package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Producer publishes generation jobs and their results
type Producer struct {
	pub Publisher
}

// NewProducer creates a new queue producer
func NewProducer(pub Publisher) *Producer {
	return &Producer{pub: pub}
}

// PublishGenerateJob enqueues a generation job, filling in ID and timestamp
func (p *Producer) PublishGenerateJob(ctx context.Context, job *GenerateJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	if err := p.pub.PublishJSON(ctx, GenerateQueueName, job); err != nil {
		return fmt.Errorf("publish generate job: %w", err)
	}

	slog.Info("published generate job",
		"job_id", job.ID,
		"exercise_id", job.ExerciseID,
		"difficulty", job.Difficulty,
	)
	return nil
}

// PublishResult publishes a job result to the results queue
func (p *Producer) PublishResult(ctx context.Context, result *GenerateResult) error {
	if result.CompletedAt.IsZero() {
		result.CompletedAt = time.Now()
	}

	if err := p.pub.PublishJSON(ctx, ResultQueueName, result); err != nil {
		return fmt.Errorf("publish generate result: %w", err)
	}

	slog.Debug("published generate result",
		"job_id", result.JobID,
		"status", result.Status,
		"duration", result.Duration,
	)
	return nil
}

// NewGenerateJob creates a job for one catalog exercise
func NewGenerateJob(exerciseID int, difficulty float64) *GenerateJob {
	return &GenerateJob{
		ID:         uuid.New(),
		ExerciseID: exerciseID,
		Difficulty: difficulty,
		CreatedAt:  time.Now(),
	}
}
