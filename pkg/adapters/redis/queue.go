package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// Queue implements ports.JobQueue over a Redis list (LPUSH/BRPOP).
type Queue struct {
	client *backend.Client
	key    string
	wait   time.Duration
	logger *slog.Logger
}

// QueueOption configures the Redis job queue.
type QueueOption func(*Queue)

// WithLogger sets the logger used for dropped and requeued jobs.
func WithLogger(logger *slog.Logger) QueueOption {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// NewQueue creates a job queue on the given list key.
// wait bounds each BRPOP so workers notice cancellation (5s by default).
func NewQueue(client *backend.Client, key string, wait time.Duration, opts ...QueueOption) *Queue {
	if key == "" {
		key = "switchboard:jobs"
	}
	if wait <= 0 {
		wait = 5 * time.Second
	}
	q := &Queue{client: client, key: key, wait: wait, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Publish pushes a job on the list.
func (q *Queue) Publish(ctx context.Context, job domain.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := q.client.LPush(ctx, q.key, data).Err(); err != nil {
		return fmt.Errorf("failed to publish job: %w", err)
	}
	return nil
}

// Consume pops jobs with BRPOP. A job whose handler fails is pushed back once
// per failure, at the consuming end of the list. Consume returns only after
// every in-flight handler has finished and its requeue has been attempted.
func (q *Queue) Consume(ctx context.Context, workers int, handler ports.JobHandler) error {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ctx.Err() == nil {
				values, err := q.client.BRPop(ctx, q.wait, q.key).Result()
				if err != nil {
					if errors.Is(err, backend.Nil) || ctx.Err() != nil {
						continue
					}
					fail(fmt.Errorf("failed to pop job: %w", err))
					return
				}
				if len(values) != 2 {
					continue
				}
				q.handle(ctx, values[1], handler)
			}
		}()
	}

	wg.Wait()
	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func (q *Queue) handle(ctx context.Context, raw string, handler ports.JobHandler) {
	var job domain.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		q.logger.Warn("Dropping malformed job", "error", err)
		return
	}
	if err := handler(ctx, job); err != nil {
		// Pushed back even when ctx is done, so an interrupted job survives shutdown.
		if perr := q.client.RPush(context.WithoutCancel(ctx), q.key, raw).Err(); perr != nil {
			q.logger.Error("Failed to requeue job", "job_id", job.ID, "error", perr)
			return
		}
		q.logger.Debug("Requeued job", "job_id", job.ID, "error", err)
	}
}

// Close closes the redis client.
func (q *Queue) Close() error {
	return q.client.Close()
}
