package ports

import (
	"context"

	"github.com/aretw0/switchboard/pkg/domain"
)

// JobHandler processes one job taken from a queue.
type JobHandler func(ctx context.Context, job domain.Job) error

// JobQueue carries jobs from producers to workers.
type JobQueue interface {
	// Publish enqueues a job.
	Publish(ctx context.Context, job domain.Job) error

	// Consume runs workers goroutines feeding jobs to handler until ctx is canceled.
	Consume(ctx context.Context, workers int, handler JobHandler) error

	// Close releases the underlying connection.
	Close() error
}
