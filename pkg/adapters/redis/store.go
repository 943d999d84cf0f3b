package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aretw0/switchboard/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// Transcript implements ports.TranscriptStore over a Redis list (RPUSH/LRANGE).
type Transcript struct {
	client *backend.Client
	prefix string
	name   string
	ttl    time.Duration
	maxLen int64
}

type Option func(*Transcript)

// WithTTL expires the transcript after a period without writes.
func WithTTL(ttl time.Duration) Option {
	return func(t *Transcript) {
		t.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(t *Transcript) {
		t.prefix = prefix
	}
}

// WithName selects which transcript the store reads and writes, so several
// orchestrators can share one Redis.
func WithName(name string) Option {
	return func(t *Transcript) {
		if name != "" {
			t.name = name
		}
	}
}

// WithMaxLen bounds the list with LTRIM; the oldest entries are dropped.
func WithMaxLen(n int64) Option {
	return func(t *Transcript) {
		t.maxLen = n
	}
}

// New creates a new Redis transcript with options.
func New(address, password string, db int, opts ...Option) *Transcript {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis transcript from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Transcript {
	t := &Transcript{
		client: client,
		prefix: "switchboard:transcript:",
		name:   "default",
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Transcript) key() string {
	return t.prefix + t.name
}

// Append pushes the entries in one pipeline.
func (t *Transcript) Append(ctx context.Context, entries ...domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	values := make([]any, 0, len(entries))
	for _, e := range entries {
		data, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
		values = append(values, data)
	}

	pipe := t.client.TxPipeline()
	pipe.RPush(ctx, t.key(), values...)
	if t.maxLen > 0 {
		pipe.LTrim(ctx, t.key(), -t.maxLen, -1)
	}
	if t.ttl > 0 {
		pipe.Expire(ctx, t.key(), t.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to append to redis: %w", err)
	}
	return nil
}

// Entries reads the whole list.
func (t *Transcript) Entries(ctx context.Context) ([]domain.Entry, error) {
	raw, err := t.client.LRange(ctx, t.key(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read from redis: %w", err)
	}

	entries := make([]domain.Entry, 0, len(raw))
	for _, item := range raw {
		var e domain.Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("failed to unmarshal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// Reset deletes the list.
func (t *Transcript) Reset(ctx context.Context) error {
	return t.client.Del(ctx, t.key()).Err()
}

// Close closes the redis client.
func (t *Transcript) Close() error {
	return t.client.Close()
}
