package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Producer publishes synthesis jobs to the queue
type Producer struct {
	conn *Connection
}

// NewProducer creates a new queue producer
func NewProducer(conn *Connection) *Producer {
	return &Producer{conn: conn}
}

// PublishSynthesisJob publishes a batch synthesis job to the queue
func (p *Producer) PublishSynthesisJob(ctx context.Context, job *SynthesisJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	if err := p.conn.PublishJSON(ctx, SynthesisQueueName, job); err != nil {
		return fmt.Errorf("failed to publish synthesis job: %w", err)
	}

	slog.Info("published synthesis job",
		"job_id", job.ID,
		"document_id", job.DocumentID,
		"topics", len(job.Selections),
	)

	return nil
}

// PublishResult publishes a synthesis result to the results queue
func (p *Producer) PublishResult(ctx context.Context, result *SynthesisResult) error {
	if result.CompletedAt.IsZero() {
		result.CompletedAt = time.Now()
	}

	if err := p.conn.PublishJSON(ctx, ResultQueueName, result); err != nil {
		return fmt.Errorf("failed to publish synthesis result: %w", err)
	}

	slog.Info("published synthesis result",
		"job_id", result.JobID,
		"status", result.Status,
		"duration", result.Duration,
	)

	return nil
}

// CreateSynthesisJob creates a new synthesis job with the given parameters
func CreateSynthesisJob(documentID string, selections []TopicSelection, timeoutSeconds int) *SynthesisJob {
	return &SynthesisJob{
		ID:         uuid.New(),
		DocumentID: documentID,
		Selections: selections,
		Timeout:    timeoutSeconds,
		CreatedAt:  time.Now(),
	}
}
