package ports

import (
	"context"

	"github.com/aretw0/switchboard/pkg/domain"
)

// TranscriptStore defines the interface for persisting the transcript.
// Implementations must preserve append order.
type TranscriptStore interface {
	// Append adds entries at the end of the transcript, in order.
	Append(ctx context.Context, entries ...domain.Entry) error

	// Entries returns a copy of the transcript, oldest first.
	Entries(ctx context.Context) ([]domain.Entry, error)

	// Reset discards every entry.
	Reset(ctx context.Context) error

	// Close releases the underlying resources.
	Close() error
}
