// Package worker runs queued tasks through an orchestrator.
package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/google/uuid"
)

// Runner executes one workflow. *switchboard.Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, task string, tc domain.Context) domain.Result
}

// Processor publishes tasks as jobs and consumes them with a pool of workers.
type Processor struct {
	runner   Runner
	queue    ports.JobQueue
	workers  int
	logger   *slog.Logger
	onResult func(domain.Job, domain.Result)
}

// Option configures a Processor.
type Option func(*Processor)

// WithWorkers sets the number of concurrent consumers. Workflows are still
// serialized by the orchestrator; extra workers only overlap queue I/O.
func WithWorkers(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.workers = n
		}
	}
}

// WithLogger sets the processor logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithResultHandler registers a callback invoked after every job.
func WithResultHandler(fn func(domain.Job, domain.Result)) Option {
	return func(p *Processor) {
		p.onResult = fn
	}
}

// New creates a processor.
func New(runner Runner, queue ports.JobQueue, opts ...Option) *Processor {
	p := &Processor{
		runner:  runner,
		queue:   queue,
		workers: 1,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Enqueue publishes a task and returns the job that carries it.
func (p *Processor) Enqueue(ctx context.Context, task string, tc domain.Context) (domain.Job, error) {
	if strings.TrimSpace(task) == "" {
		return domain.Job{}, domain.ErrEmptyTask
	}
	job := domain.Job{
		ID:          uuid.NewString(),
		Task:        task,
		Context:     tc,
		SubmittedAt: time.Now(),
	}
	if err := p.queue.Publish(ctx, job); err != nil {
		return domain.Job{}, fmt.Errorf("publish job: %w", err)
	}
	p.logger.Debug("Job enqueued", "job_id", job.ID)
	return job, nil
}

// Start consumes jobs until ctx is canceled or the queue fails.
func (p *Processor) Start(ctx context.Context) error {
	p.logger.Info("Worker started", "workers", p.workers)
	err := p.queue.Consume(ctx, p.workers, p.handle)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// handle runs one job. Only an interrupted workflow is reported as a
// failure, so the queue retries it; every other outcome is already in the
// transcript.
func (p *Processor) handle(ctx context.Context, job domain.Job) error {
	res := p.runner.Run(ctx, job.Task, job.Context)

	logger := p.logger.With("job_id", job.ID, "workflow_id", res.WorkflowID)
	switch res.Status {
	case domain.StatusCompleted:
		logger.Info("Job completed", "handler", res.Handler, "duration", res.Duration)
	case domain.StatusUnroutable:
		logger.Warn("Job unroutable", "task", job.Task)
	default:
		logger.Error("Job failed", "err", res.Err)
	}

	if p.onResult != nil {
		p.onResult(job, res)
	}

	if errors.Is(res.Err, context.Canceled) || errors.Is(res.Err, context.DeadlineExceeded) {
		return res.Err
	}
	return nil
}
