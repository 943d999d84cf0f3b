package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Mailer implements ports.Mailer by publishing emails to an outbox queue.
// A separate delivery service drains the outbox.
type Mailer struct {
	conn  *amqp.Connection
	ch    Channel
	queue string
}

// NewMailer dials RabbitMQ and declares the outbox ("switchboard.outbox" by default).
func NewMailer(cfg Config) (*Mailer, error) {
	if cfg.Queue == "" {
		cfg.Queue = "switchboard.outbox"
	}
	conn, ch, err := Dial(cfg)
	if err != nil {
		return nil, err
	}
	return &Mailer{conn: conn, ch: ch, queue: cfg.Queue}, nil
}

// NewMailerFromChannel wraps an already declared outbox.
func NewMailerFromChannel(ch Channel, queue string) *Mailer {
	return &Mailer{ch: ch, queue: queue}
}

// Send enqueues the email and returns the confirmation line.
func (m *Mailer) Send(ctx context.Context, email domain.Email) (string, error) {
	body, err := json.Marshal(email)
	if err != nil {
		return "", fmt.Errorf("marshal email: %w", err)
	}
	err = m.ch.PublishWithContext(ctx, "", m.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		Body:         body,
	})
	if err != nil {
		return "", fmt.Errorf("publish email: %w", err)
	}
	return fmt.Sprintf("Email queued for %s with subject '%s'", email.To, email.Subject), nil
}

// Close closes the channel and the connection.
func (m *Mailer) Close() error {
	if m.ch != nil {
		_ = m.ch.Close()
	}
	if m.conn != nil {
		return m.conn.Close()
	}
	return nil
}
