package runtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation name of the workflow spans.
const TracerName = "github.com/aretw0/switchboard"

// ErrNilStore is returned when no transcript store is supplied.
var ErrNilStore = errors.New("transcript store must not be nil")

// Orchestrator is the routing core: it owns the handler registry and the transcript.
//
// Workflows are serialized: entries written by one workflow are always contiguous.
// Selection only takes a read lock and may run alongside a workflow.
type Orchestrator struct {
	mu       sync.RWMutex
	handlers []ports.Handler

	gate  chan struct{}
	store ports.TranscriptStore

	locker  ports.DistributedLocker
	lockKey string
	lockTTL time.Duration

	hooks  domain.LifecycleHooks
	logger *slog.Logger
	tracer trace.Tracer
	newID  func() string
}

// NewOrchestrator creates an orchestrator over an ordered handler registry.
// An empty registry is valid: every task is then unroutable.
func NewOrchestrator(handlers []ports.Handler, store ports.TranscriptStore, opts ...Option) (*Orchestrator, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if err := validate(handlers); err != nil {
		return nil, err
	}

	o := &Orchestrator{
		handlers: append([]ports.Handler(nil), handlers...),
		gate:     make(chan struct{}, 1),
		store:    store,
		lockKey:  "workflow",
		lockTTL:  30 * time.Second,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:   otel.Tracer(TracerName),
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

func validate(handlers []ports.Handler) error {
	for i, h := range handlers {
		if h == nil {
			return fmt.Errorf("handler at position %d: %w", i, domain.ErrNilHandler)
		}
	}
	return nil
}

// Handlers returns a copy of the registry in registration order.
func (o *Orchestrator) Handlers() []ports.Handler {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return append([]ports.Handler(nil), o.handlers...)
}

// SetHandlers atomically replaces the registry. A workflow already past
// selection keeps the handler it picked.
func (o *Orchestrator) SetHandlers(handlers []ports.Handler) error {
	if err := validate(handlers); err != nil {
		return err
	}
	o.mu.Lock()
	o.handlers = append([]ports.Handler(nil), handlers...)
	o.mu.Unlock()
	o.logger.Info("Registry replaced", "handlers", len(handlers))
	return nil
}

// SelectHandler returns the first handler, in registration order, that accepts the task.
func (o *Orchestrator) SelectHandler(task string) (ports.Handler, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	for _, h := range o.handlers {
		if h.CanHandle(task) {
			return h, nil
		}
	}
	return nil, &domain.NoHandlerFoundError{Task: task}
}

// RunWorkflow routes and executes a task and returns its output.
//
// When no handler accepts the task, the routing error is recorded and returned
// as an "Error: ..." string with a nil error. A handler failure is recorded and
// returned as a *domain.HandlerExecutionError.
func (o *Orchestrator) RunWorkflow(ctx context.Context, task string, tc domain.Context) (string, error) {
	res := o.Run(ctx, task, tc)
	switch res.Status {
	case domain.StatusCompleted, domain.StatusUnroutable:
		return res.Text(), nil
	default:
		return "", res.Err
	}
}

// Run is RunWorkflow in result form: the outcome is reported in the Result
// instead of being split between a string and an error.
func (o *Orchestrator) Run(ctx context.Context, task string, tc domain.Context) domain.Result {
	res := domain.Result{WorkflowID: o.newID(), Task: task}
	start := time.Now()

	if strings.TrimSpace(task) == "" {
		res.Status = domain.StatusFailed
		res.Err = domain.ErrEmptyTask
		return res
	}

	release, err := o.acquire(ctx)
	if err != nil {
		res.Status = domain.StatusFailed
		res.Err = err
		return res
	}
	defer release()

	ctx, span := o.tracer.Start(ctx, "workflow", trace.WithAttributes(
		attribute.String("switchboard.workflow_id", res.WorkflowID),
		attribute.String("switchboard.task", task),
	))
	defer span.End()

	logger := o.logger.With("workflow_id", res.WorkflowID)
	o.emitWorkflow(ctx, o.hooks.OnWorkflowStart, domain.EventWorkflowStart, res)

	o.execute(ctx, &res, tc, logger)

	res.Duration = time.Since(start)
	span.SetAttributes(attribute.String("switchboard.status", string(res.Status)))
	if res.Handler != "" {
		span.SetAttributes(attribute.String("switchboard.handler", res.Handler))
	}
	if res.Status == domain.StatusFailed {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
	}
	o.emitWorkflow(ctx, o.hooks.OnWorkflowEnd, domain.EventWorkflowEnd, res)
	return res
}

// execute walks the workflow state machine and fills in res.
func (o *Orchestrator) execute(ctx context.Context, res *domain.Result, tc domain.Context, logger *slog.Logger) {
	// Transcript writes must land even if the caller gives up mid-workflow.
	storeCtx := context.WithoutCancel(ctx)

	if err := o.store.Append(storeCtx, domain.UserEntry(res.WorkflowID, res.Task)); err != nil {
		res.Status = domain.StatusFailed
		res.Err = fmt.Errorf("append user entry: %w", err)
		logger.Error("Transcript write failed", "error", err)
		return
	}

	h, err := o.SelectHandler(res.Task)
	if err != nil {
		res.Status = domain.StatusUnroutable
		res.Err = err
		logger.Warn("No handler found", "task", res.Task)
		if appendErr := o.store.Append(storeCtx, domain.ErrorEntry(res.WorkflowID, err.Error())); appendErr != nil {
			res.Status = domain.StatusFailed
			res.Err = fmt.Errorf("append error entry: %w", appendErr)
			logger.Error("Transcript write failed", "error", appendErr)
		}
		return
	}

	res.Handler = h.Name()
	logger.Debug("Handler selected", "handler", res.Handler)
	o.emitHandler(ctx, o.hooks.OnHandlerSelected, domain.HandlerEvent{
		EventBase: domain.NewEventBase(domain.EventHandlerSelected, res.WorkflowID),
		Handler:   res.Handler,
		Task:      res.Task,
	})

	runStart := time.Now()
	out, runErr := invoke(ctx, h, res.Task, tc)
	o.emitHandler(ctx, o.hooks.OnHandlerReturn, domain.HandlerEvent{
		EventBase: domain.NewEventBase(domain.EventHandlerReturn, res.WorkflowID),
		Handler:   res.Handler,
		Task:      res.Task,
		Output:    out,
		IsError:   runErr != nil,
		Duration:  time.Since(runStart),
	})

	if runErr != nil {
		execErr := &domain.HandlerExecutionError{Handler: res.Handler, Task: res.Task, Err: runErr}
		res.Status = domain.StatusFailed
		res.Err = execErr
		logger.Error("Handler failed", "handler", res.Handler, "error", runErr)
		if appendErr := o.store.Append(storeCtx, domain.ErrorEntry(res.WorkflowID, execErr.Error())); appendErr != nil {
			res.Err = errors.Join(execErr, fmt.Errorf("append error entry: %w", appendErr))
		}
		return
	}

	if err := o.store.Append(storeCtx, domain.AgentEntry(res.WorkflowID, res.Handler, out)); err != nil {
		res.Status = domain.StatusFailed
		res.Err = fmt.Errorf("append agent entry: %w", err)
		logger.Error("Transcript write failed", "error", err)
		return
	}

	res.Status = domain.StatusCompleted
	res.Output = out
	logger.Info("Workflow completed", "handler", res.Handler)
}

// invoke runs the handler, turning a panic into an error.
func invoke(ctx context.Context, h ports.Handler, task string, tc domain.Context) (out string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return h.Run(ctx, task, tc)
}

// acquire takes the local workflow slot and, when configured, the distributed lock.
func (o *Orchestrator) acquire(ctx context.Context) (func(), error) {
	select {
	case o.gate <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if o.locker == nil {
		return func() { <-o.gate }, nil
	}

	unlock, err := o.locker.Lock(ctx, o.lockKey, o.lockTTL)
	if err != nil {
		<-o.gate
		return nil, fmt.Errorf("acquire workflow lock: %w", err)
	}
	return func() {
		if err := unlock(context.Background()); err != nil {
			o.logger.Warn("Failed to release workflow lock", "error", err)
		}
		<-o.gate
	}, nil
}

// Transcript returns a copy of the transcript, oldest first.
func (o *Orchestrator) Transcript(ctx context.Context) ([]domain.Entry, error) {
	return o.store.Entries(ctx)
}

// ResetTranscript clears the transcript between workflows.
func (o *Orchestrator) ResetTranscript(ctx context.Context) error {
	release, err := o.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()
	return o.store.Reset(ctx)
}

// Close releases the transcript store.
func (o *Orchestrator) Close() error {
	return o.store.Close()
}

func (o *Orchestrator) emitWorkflow(ctx context.Context, fn func(context.Context, *domain.WorkflowEvent), t domain.EventType, res domain.Result) {
	if fn == nil {
		return
	}
	ev := &domain.WorkflowEvent{
		EventBase: domain.NewEventBase(t, res.WorkflowID),
		Task:      res.Task,
	}
	if t == domain.EventWorkflowEnd {
		ev.Status = res.Status
		ev.Duration = res.Duration
	}
	fn(ctx, ev)
}

func (o *Orchestrator) emitHandler(ctx context.Context, fn func(context.Context, *domain.HandlerEvent), ev domain.HandlerEvent) {
	if fn != nil {
		fn(ctx, &ev)
	}
}
