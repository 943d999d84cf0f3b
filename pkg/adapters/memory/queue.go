package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
)

// ErrQueueClosed is returned when publishing to a closed queue.
var ErrQueueClosed = errors.New("queue is closed")

// Queue implements ports.JobQueue over a buffered channel. Mostly used in tests
// and single-process deployments.
type Queue struct {
	ch        chan domain.Job
	done      chan struct{}
	closeOnce sync.Once
}

// NewQueue creates a queue holding up to size pending jobs (64 by default).
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 64
	}
	return &Queue{ch: make(chan domain.Job, size), done: make(chan struct{})}
}

// Publish enqueues a job, blocking while the buffer is full. A Publish blocked
// on a full buffer returns ErrQueueClosed once the queue is closed.
func (q *Queue) Publish(ctx context.Context, job domain.Job) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrQueueClosed
	case q.ch <- job:
		return nil
	}
}

// Consume starts workers goroutines and blocks until ctx is canceled or the queue is closed and drained.
func (q *Queue) Consume(ctx context.Context, workers int, handler ports.JobHandler) error {
	if workers <= 0 {
		workers = 1
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case job := <-q.ch:
					_ = handler(ctx, job)
				case <-q.done:
					q.drain(ctx, handler)
					return
				}
			}
		}()
	}
	wg.Wait()
	return ctx.Err()
}

// drain delivers the jobs still buffered when the queue was closed.
func (q *Queue) drain(ctx context.Context, handler ports.JobHandler) {
	for ctx.Err() == nil {
		select {
		case job := <-q.ch:
			_ = handler(ctx, job)
		default:
			return
		}
	}
}

// Close stops accepting jobs and releases blocked publishers. Pending jobs are
// still delivered. The channel itself is never closed, so a racing Publish
// cannot panic.
func (q *Queue) Close() error {
	q.closeOnce.Do(func() { close(q.done) })
	return nil
}
