package ports

import (
	"context"

	"github.com/aretw0/switchboard/pkg/domain"
)

// Handler is a unit of work the orchestrator can route a task to.
type Handler interface {
	// Name is a display identifier. It is not required to be unique.
	Name() string

	// Description is a human readable summary of what the handler does.
	Description() string

	// CanHandle reports whether the handler accepts the task.
	// It must be pure: the same task always yields the same answer.
	CanHandle(task string) bool

	// Run executes the task. The context map is the caller's own value.
	Run(ctx context.Context, task string, tc domain.Context) (string, error)
}
