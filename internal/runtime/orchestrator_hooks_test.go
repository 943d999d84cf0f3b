package runtime_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/switchboard/internal/runtime"
	"github.com/aretw0/switchboard/pkg/adapters/memory"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/handlers"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestOrchestrator_LifecycleHooks(t *testing.T) {
	var events []domain.EventType
	var selected, returned string
	var endStatus domain.Status

	hooks := domain.LifecycleHooks{
		OnWorkflowStart: func(ctx context.Context, e *domain.WorkflowEvent) {
			events = append(events, e.Type)
		},
		OnHandlerSelected: func(ctx context.Context, e *domain.HandlerEvent) {
			events = append(events, e.Type)
			selected = e.Handler
		},
		OnHandlerReturn: func(ctx context.Context, e *domain.HandlerEvent) {
			events = append(events, e.Type)
			returned = e.Output
		},
		OnWorkflowEnd: func(ctx context.Context, e *domain.WorkflowEvent) {
			events = append(events, e.Type)
			endStatus = e.Status
		},
	}

	o, err := runtime.NewOrchestrator(handlers.Default(), memory.NewTranscript(), runtime.WithLifecycleHooks(hooks))
	require.NoError(t, err)

	res := o.Run(context.Background(), "draft a reply to the vendor", nil)
	require.NoError(t, res.Err)

	assert.Equal(t, []domain.EventType{
		domain.EventWorkflowStart,
		domain.EventHandlerSelected,
		domain.EventHandlerReturn,
		domain.EventWorkflowEnd,
	}, events)
	assert.Equal(t, "Email Agent", selected)
	assert.Equal(t, res.Output, returned)
	assert.Equal(t, domain.StatusCompleted, endStatus)

	// Unroutable workflows skip the handler events.
	events = nil
	o.Run(context.Background(), "bake a cake", nil)
	assert.Equal(t, []domain.EventType{domain.EventWorkflowStart, domain.EventWorkflowEnd}, events)
	assert.Equal(t, domain.StatusUnroutable, endStatus)
}

func TestOrchestrator_Tracing(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	o, err := runtime.NewOrchestrator(handlers.Default(), memory.NewTranscript(),
		runtime.WithTracer(provider.Tracer(runtime.TracerName)),
		runtime.WithIDGenerator(func() string { return "wf-fixed" }),
	)
	require.NoError(t, err)

	o.Run(context.Background(), "run the audit", nil)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "workflow", spans[0].Name())

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "wf-fixed", attrs["switchboard.workflow_id"])
	assert.Equal(t, "Compliance Agent", attrs["switchboard.handler"])
	assert.Equal(t, string(domain.StatusCompleted), attrs["switchboard.status"])
}

func TestOrchestrator_ConcurrentWorkflowsStayContiguous(t *testing.T) {
	slow := handlers.Func{
		HandlerName: "Slow",
		Match:       func(string) bool { return true },
		Exec: func(ctx context.Context, task string, _ domain.Context) (string, error) {
			time.Sleep(2 * time.Millisecond)
			return "done " + task, nil
		},
	}
	o, err := runtime.NewOrchestrator([]ports.Handler{slow}, memory.NewTranscript())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := o.RunWorkflow(context.Background(), fmt.Sprintf("task-%d", i), nil)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	entries, err := o.Transcript(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 16)
	for i := 0; i < len(entries); i += 2 {
		assert.Equal(t, domain.RoleUser, entries[i].Role)
		assert.Equal(t, domain.RoleAgent, entries[i+1].Role)
		assert.Equal(t, entries[i].WorkflowID, entries[i+1].WorkflowID, "workflow entries must be adjacent")
		assert.Equal(t, "done "+entries[i].Content, entries[i+1].Content)
	}
}

func TestOrchestrator_CancelWhileWaiting(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	blocking := handlers.Func{
		HandlerName: "Blocking",
		Match:       func(string) bool { return true },
		Exec: func(ctx context.Context, task string, _ domain.Context) (string, error) {
			close(started)
			<-release
			return "ok", nil
		},
	}
	o, err := runtime.NewOrchestrator([]ports.Handler{blocking}, memory.NewTranscript())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = o.RunWorkflow(context.Background(), "first", nil)
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = o.RunWorkflow(ctx, "second", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	<-done

	entries, err := o.Transcript(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2, "a cancelled waiter must not touch the transcript")
	assert.Equal(t, "first", entries[0].Content)
}

type recordingLocker struct {
	mu       sync.Mutex
	keys     []string
	released int
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	l.keys = append(l.keys, key)
	l.mu.Unlock()
	return func(context.Context) error {
		l.mu.Lock()
		l.released++
		l.mu.Unlock()
		return nil
	}, nil
}

func TestOrchestrator_DistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	o, err := runtime.NewOrchestrator(handlers.Default(), memory.NewTranscript(),
		runtime.WithDistributedLocker(locker, "team-a", time.Second))
	require.NoError(t, err)

	_, err = o.RunWorkflow(context.Background(), "run the audit", nil)
	require.NoError(t, err)
	_, err = o.RunWorkflow(context.Background(), "bake a cake", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"team-a", "team-a"}, locker.keys)
	assert.Equal(t, 2, locker.released)
}
