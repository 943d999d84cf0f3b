package switchboard

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/switchboard/internal/runtime"
	"github.com/aretw0/switchboard/pkg/adapters/memory"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	"go.opentelemetry.io/otel/trace"
)

// Version of the switchboard module.
const Version = "0.4.0"

// Orchestrator is the high-level entry point for the Switchboard library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Orchestrator struct {
	runtime     *runtime.Orchestrator
	store       ports.TranscriptStore
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	runtimeOpts []runtime.Option
}

// Option defines a functional option for configuring the Orchestrator.
type Option func(*Orchestrator)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = hooks
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithTranscriptStore replaces the default unbounded in-memory transcript.
func WithTranscriptStore(store ports.TranscriptStore) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// WithTracer sets the tracer used for workflow spans (global provider by default).
func WithTracer(tracer trace.Tracer) Option {
	return func(o *Orchestrator) {
		o.runtimeOpts = append(o.runtimeOpts, runtime.WithTracer(tracer))
	}
}

// WithDistributedLocker serializes workflows across replicas sharing a transcript.
func WithDistributedLocker(locker ports.DistributedLocker, key string, ttl time.Duration) Option {
	return func(o *Orchestrator) {
		o.runtimeOpts = append(o.runtimeOpts, runtime.WithDistributedLocker(locker, key, ttl))
	}
}

// New creates an Orchestrator over an ordered handler registry.
// Selection is first match in registration order.
func New(handlers []ports.Handler, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{}
	for _, opt := range opts {
		opt(o)
	}

	if o.store == nil {
		o.store = memory.NewTranscript()
	}
	if o.logger == nil {
		o.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	runtimeOpts := []runtime.Option{
		runtime.WithLifecycleHooks(o.hooks),
		runtime.WithLogger(o.logger),
	}
	runtimeOpts = append(runtimeOpts, o.runtimeOpts...)

	rt, err := runtime.NewOrchestrator(handlers, o.store, runtimeOpts...)
	if err != nil {
		return nil, err
	}
	o.runtime = rt
	return o, nil
}

// SelectHandler returns the first registered handler accepting the task,
// or a *domain.NoHandlerFoundError.
func (o *Orchestrator) SelectHandler(task string) (ports.Handler, error) {
	return o.runtime.SelectHandler(task)
}

// RunWorkflow routes and executes a task. An unroutable task yields an
// "Error: ..." string and a nil error; a handler failure yields a
// *domain.HandlerExecutionError. Both are recorded in the transcript.
func (o *Orchestrator) RunWorkflow(ctx context.Context, task string, tc domain.Context) (string, error) {
	return o.runtime.RunWorkflow(ctx, task, tc)
}

// Run executes a workflow and reports its outcome as a Result.
func (o *Orchestrator) Run(ctx context.Context, task string, tc domain.Context) domain.Result {
	return o.runtime.Run(ctx, task, tc)
}

// Submit runs a workflow on its own goroutine. The channel receives exactly
// one Result and is then closed.
func (o *Orchestrator) Submit(ctx context.Context, task string, tc domain.Context) <-chan domain.Result {
	ch := make(chan domain.Result, 1)
	go func() {
		defer close(ch)
		ch <- o.runtime.Run(ctx, task, tc)
	}()
	return ch
}

// Handlers returns the registry in registration order.
func (o *Orchestrator) Handlers() []ports.Handler {
	return o.runtime.Handlers()
}

// SetHandlers replaces the registry, e.g. after the routing table changed on disk.
func (o *Orchestrator) SetHandlers(handlers []ports.Handler) error {
	return o.runtime.SetHandlers(handlers)
}

// Transcript returns a copy of the transcript, oldest first.
func (o *Orchestrator) Transcript(ctx context.Context) ([]domain.Entry, error) {
	return o.runtime.Transcript(ctx)
}

// ResetTranscript clears the transcript.
func (o *Orchestrator) ResetTranscript(ctx context.Context) error {
	return o.runtime.ResetTranscript(ctx)
}

// Close releases the transcript store.
func (o *Orchestrator) Close() error {
	return o.runtime.Close()
}
