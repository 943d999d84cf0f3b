package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Channel is the subset of *amqp.Channel used by this package.
type Channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Close() error
}

// Config describes a RabbitMQ connection and the queue to declare.
type Config struct {
	URL        string
	Queue      string
	Prefetch   int
	Durable    bool
	AutoDelete bool
}

// Dial connects, opens a channel and declares cfg.Queue.
func Dial(cfg Config) (*amqp.Connection, *amqp.Channel, error) {
	if cfg.URL == "" {
		return nil, nil, errors.New("rabbitmq url must not be empty")
	}
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}
	if cfg.Prefetch > 0 {
		if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
			ch.Close()
			conn.Close()
			return nil, nil, fmt.Errorf("set rabbitmq qos: %w", err)
		}
	}
	if _, err := ch.QueueDeclare(cfg.Queue, cfg.Durable, cfg.AutoDelete, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, nil, fmt.Errorf("declare rabbitmq queue %q: %w", cfg.Queue, err)
	}
	return conn, ch, nil
}

// Queue implements ports.JobQueue on a RabbitMQ queue with manual acks.
type Queue struct {
	conn   *amqp.Connection
	ch     Channel
	queue  string
	logger *slog.Logger
}

// QueueOption configures the RabbitMQ job queue.
type QueueOption func(*Queue)

// WithLogger sets the logger used for rejected and requeued deliveries.
func WithLogger(logger *slog.Logger) QueueOption {
	return func(q *Queue) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// NewQueue dials RabbitMQ and declares the job queue ("switchboard.jobs" by default).
func NewQueue(cfg Config, opts ...QueueOption) (*Queue, error) {
	if cfg.Queue == "" {
		cfg.Queue = "switchboard.jobs"
	}
	conn, ch, err := Dial(cfg)
	if err != nil {
		return nil, err
	}
	q := newQueue(ch, cfg.Queue, opts)
	q.conn = conn
	return q, nil
}

// NewQueueFromChannel wraps an already declared queue.
func NewQueueFromChannel(ch Channel, queue string, opts ...QueueOption) *Queue {
	return newQueue(ch, queue, opts)
}

func newQueue(ch Channel, queue string, opts []QueueOption) *Queue {
	q := &Queue{ch: ch, queue: queue, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Publish sends the job as a persistent JSON message.
func (q *Queue) Publish(ctx context.Context, job domain.Job) error {
	body, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return q.ch.PublishWithContext(ctx, "", q.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    job.ID,
		Body:         body,
	})
}

// Consume delivers jobs to workers goroutines. Jobs whose handler fails are
// requeued; malformed messages are dropped.
func (q *Queue) Consume(ctx context.Context, workers int, handler ports.JobHandler) error {
	if workers <= 0 {
		workers = 1
	}
	msgs, err := q.ch.Consume(q.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("subscribe to rabbitmq queue: %w", err)
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
				case msg, ok := <-msgs:
					if !ok {
						return
					}
					var job domain.Job
					if err := json.Unmarshal(msg.Body, &job); err != nil {
						q.logger.Warn("Dropping malformed job", "error", err)
						_ = msg.Reject(false)
						continue
					}
					if err := handler(ctx, job); err != nil {
						if nerr := msg.Nack(false, true); nerr != nil {
							q.logger.Error("Failed to requeue job", "job_id", job.ID, "error", nerr)
						} else {
							q.logger.Debug("Requeued job", "job_id", job.ID, "error", err)
						}
						continue
					}
					if err := msg.Ack(false); err != nil {
						q.logger.Warn("Failed to ack job", "job_id", job.ID, "error", err)
					}
				}
			}
		}()
	}

	wg.Wait()
	return ctx.Err()
}

// Close closes the channel and the connection.
func (q *Queue) Close() error {
	if q.ch != nil {
		_ = q.ch.Close()
	}
	if q.conn != nil {
		return q.conn.Close()
	}
	return nil
}
