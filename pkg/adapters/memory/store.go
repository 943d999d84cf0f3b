package memory

import (
	"context"
	"sync"

	"github.com/aretw0/switchboard/pkg/domain"
)

// Transcript implements ports.TranscriptStore in memory.
// Safe for concurrent use.
type Transcript struct {
	mu       sync.RWMutex
	entries  []domain.Entry
	capacity int
}

// Option configures the in-memory transcript.
type Option func(*Transcript)

// WithCapacity bounds the transcript. Once full, the oldest entries are dropped.
// Zero (the default) keeps every entry.
func WithCapacity(n int) Option {
	return func(t *Transcript) {
		if n > 0 {
			t.capacity = n
		}
	}
}

// NewTranscript creates a new in-memory transcript.
func NewTranscript(opts ...Option) *Transcript {
	t := &Transcript{}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Append adds entries at the end.
func (t *Transcript) Append(ctx context.Context, entries ...domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, entries...)
	if t.capacity > 0 && len(t.entries) > t.capacity {
		// Copy so the dropped prefix can be collected.
		trimmed := make([]domain.Entry, t.capacity)
		copy(trimmed, t.entries[len(t.entries)-t.capacity:])
		t.entries = trimmed
	}
	return nil
}

// Entries returns a copy so callers cannot mutate the stored transcript.
func (t *Transcript) Entries(ctx context.Context) ([]domain.Entry, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.Entry, len(t.entries))
	copy(out, t.entries)
	return out, nil
}

// Reset removes every entry.
func (t *Transcript) Reset(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = nil
	return nil
}

// Close is a no-op.
func (t *Transcript) Close() error {
	return nil
}
