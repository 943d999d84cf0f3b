package runtime

import (
	"log/slog"
	"time"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	"go.opentelemetry.io/otel/trace"
)

// Option configures the Orchestrator.
type Option func(*Orchestrator)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = hooks
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithTracer sets the tracer used to open one span per workflow.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		if tracer != nil {
			o.tracer = tracer
		}
	}
}

// WithDistributedLocker serializes workflows across every orchestrator sharing
// the same locker and key. The lock is held for the whole workflow, up to ttl.
func WithDistributedLocker(locker ports.DistributedLocker, key string, ttl time.Duration) Option {
	return func(o *Orchestrator) {
		o.locker = locker
		if key != "" {
			o.lockKey = key
		}
		if ttl > 0 {
			o.lockTTL = ttl
		}
	}
}

// WithIDGenerator replaces the workflow ID generator (uuid by default).
func WithIDGenerator(fn func() string) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.newID = fn
		}
	}
}
