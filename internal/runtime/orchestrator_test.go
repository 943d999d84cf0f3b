package runtime_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/aretw0/switchboard/internal/runtime"
	"github.com/aretw0/switchboard/pkg/adapters/memory"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/handlers"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spy wraps a handler and counts calls to Run.
type spy struct {
	ports.Handler
	runs    int
	lastCtx domain.Context
}

func (s *spy) Run(ctx context.Context, task string, tc domain.Context) (string, error) {
	s.runs++
	s.lastCtx = tc
	return s.Handler.Run(ctx, task, tc)
}

func newOrchestrator(t *testing.T, hs ...ports.Handler) *runtime.Orchestrator {
	t.Helper()
	o, err := runtime.NewOrchestrator(hs, memory.NewTranscript())
	require.NoError(t, err)
	return o
}

func transcript(t *testing.T, o *runtime.Orchestrator) []domain.Entry {
	t.Helper()
	entries, err := o.Transcript(context.Background())
	require.NoError(t, err)
	return entries
}

func TestRunWorkflow_RetrievalMatch(t *testing.T) {
	o := newOrchestrator(t, handlers.NewRetrieval())

	out, err := o.RunWorkflow(context.Background(), "retrieve the Q1 report", domain.Context{"quarter": "Q1"})
	require.NoError(t, err)
	assert.Contains(t, out, "retrieve the Q1 report")
	assert.Contains(t, out, "Retrieved relevant information.")

	entries := transcript(t, o)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.RoleUser, entries[0].Role)
	assert.Equal(t, "retrieve the Q1 report", entries[0].Content)
	assert.Equal(t, domain.RoleAgent, entries[1].Role)
	assert.Equal(t, "RAG Agent", entries[1].Name)
	assert.Equal(t, out, entries[1].Content)
	assert.Equal(t, entries[0].WorkflowID, entries[1].WorkflowID)
}

func TestRunWorkflow_NoMatch(t *testing.T) {
	o := newOrchestrator(t, handlers.NewRetrieval())

	out, err := o.RunWorkflow(context.Background(), "send an email to finance", nil)
	require.NoError(t, err, "routing failures are recovered into the returned string")
	assert.True(t, len(out) > 0 && out[:6] == "Error:", "got %q", out)
	assert.Contains(t, out, "No suitable agent/handler found")

	entries := transcript(t, o)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.RoleUser, entries[0].Role)
	assert.Equal(t, domain.RoleError, entries[1].Role)
	assert.Equal(t, "No suitable agent/handler found for task: send an email to finance", entries[1].Content)
}

func TestRunWorkflow_FirstMatchSkipsNonMatching(t *testing.T) {
	messaging := &spy{Handler: handlers.NewMessaging()}
	sales := &spy{Handler: handlers.NewSales()}
	o := newOrchestrator(t, messaging, sales)

	out, err := o.RunWorkflow(context.Background(), "update the CRM lead for Acme", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Sales Agent executed task")
	assert.Equal(t, 0, messaging.runs)
	assert.Equal(t, 1, sales.runs)
}

func TestRunWorkflow_EmptyRegistry(t *testing.T) {
	o := newOrchestrator(t)

	_, err := o.SelectHandler("anything")
	var notFound *domain.NoHandlerFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "anything", notFound.Task)
	assert.ErrorIs(t, err, domain.ErrNoHandlerFound)

	out, err := o.RunWorkflow(context.Background(), "anything", nil)
	require.NoError(t, err)
	assert.Equal(t, "Error: "+notFound.Error(), out)

	entries := transcript(t, o)
	errorEntries := 0
	for _, e := range entries {
		if e.Role == domain.RoleError {
			errorEntries++
		}
	}
	assert.Equal(t, 1, errorEntries)
}

func TestRunWorkflow_SequentialCallsAccumulate(t *testing.T) {
	o := newOrchestrator(t, handlers.Default()...)
	ctx := context.Background()

	_, err := o.RunWorkflow(ctx, "audit the vendor contracts", nil)
	require.NoError(t, err)
	first := transcript(t, o)

	_, err = o.RunWorkflow(ctx, "bake a cake", nil)
	require.NoError(t, err)
	second := transcript(t, o)

	require.Len(t, second, 4)
	assert.Equal(t, first, second[:2], "entries from the first call must be untouched")
	assert.Equal(t, "Compliance Agent", second[1].Name)
	assert.Equal(t, "bake a cake", second[2].Content)
	assert.Equal(t, domain.RoleError, second[3].Role)
	assert.NotEqual(t, second[0].WorkflowID, second[2].WorkflowID)
}

func TestSelectHandler_FirstMatchDeterminism(t *testing.T) {
	// Both match "lead"; the earlier registration must always win.
	first := handlers.NewSales(handlers.WithName("first"))
	second := handlers.NewSales(handlers.WithName("second"))
	o := newOrchestrator(t, first, second)

	for i := 0; i < 10; i++ {
		h, err := o.SelectHandler("qualify the lead")
		require.NoError(t, err)
		assert.Equal(t, "first", h.Name())
	}
}

func TestRunWorkflow_NoMatchRunsNothing(t *testing.T) {
	spies := []*spy{
		{Handler: handlers.NewRetrieval()},
		{Handler: handlers.NewTabular()},
		{Handler: handlers.NewHR()},
	}
	o := newOrchestrator(t, spies[0], spies[1], spies[2])

	_, err := o.RunWorkflow(context.Background(), "bake a cake", nil)
	require.NoError(t, err)
	for _, s := range spies {
		assert.Zero(t, s.runs, "%s should not run", s.Name())
	}
}

func TestRunWorkflow_ContextPassthrough(t *testing.T) {
	s := &spy{Handler: handlers.NewSales()}
	o := newOrchestrator(t, s)

	tc := domain.Context{"lead_name": "Acme Corp", "nested": map[string]any{"k": 1}}
	snapshot := domain.Context{"lead_name": "Acme Corp", "nested": map[string]any{"k": 1}}

	_, err := o.RunWorkflow(context.Background(), "score the lead", tc)
	require.NoError(t, err)

	assert.Equal(t, reflect.ValueOf(tc).Pointer(), reflect.ValueOf(s.lastCtx).Pointer(), "handler must receive the caller's map")
	assert.Equal(t, snapshot, tc, "context must not be modified")
}

func TestRunWorkflow_HandlerFailure(t *testing.T) {
	boom := errors.New("boom")
	failing := handlers.Func{
		HandlerName: "Flaky",
		Match:       func(string) bool { return true },
		Exec: func(context.Context, string, domain.Context) (string, error) {
			return "", boom
		},
	}
	o := newOrchestrator(t, failing)

	out, err := o.RunWorkflow(context.Background(), "do it", nil)
	assert.Empty(t, out)
	require.ErrorIs(t, err, domain.ErrHandlerExecution)
	assert.ErrorIs(t, err, boom)

	var execErr *domain.HandlerExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Equal(t, "Flaky", execErr.Handler)

	entries := transcript(t, o)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.RoleError, entries[1].Role)
	assert.Contains(t, entries[1].Content, "boom")
}

func TestRunWorkflow_HandlerPanic(t *testing.T) {
	panicky := handlers.Func{
		HandlerName: "Panicky",
		Match:       func(string) bool { return true },
		Exec: func(context.Context, string, domain.Context) (string, error) {
			panic("nil map")
		},
	}
	o := newOrchestrator(t, panicky)

	res := o.Run(context.Background(), "do it", nil)
	assert.Equal(t, domain.StatusFailed, res.Status)
	assert.ErrorContains(t, res.Err, "panic: nil map")
	assert.Len(t, transcript(t, o), 2)
}

func TestRun_Result(t *testing.T) {
	o := newOrchestrator(t, handlers.Default()...)
	ctx := context.Background()

	completed := o.Run(ctx, "Fix payroll for March", nil)
	assert.Equal(t, domain.StatusCompleted, completed.Status)
	assert.Equal(t, "HR Agent", completed.Handler)
	assert.NotEmpty(t, completed.WorkflowID)
	assert.NoError(t, completed.Err)

	unroutable := o.Run(ctx, "bake a cake", nil)
	assert.Equal(t, domain.StatusUnroutable, unroutable.Status)
	assert.ErrorIs(t, unroutable.Err, domain.ErrNoHandlerFound)
	assert.Empty(t, unroutable.Handler)
}

func TestRun_EmptyTaskLeavesTranscriptAlone(t *testing.T) {
	o := newOrchestrator(t, handlers.Default()...)

	res := o.Run(context.Background(), "   ", nil)
	assert.ErrorIs(t, res.Err, domain.ErrEmptyTask)
	assert.Empty(t, transcript(t, o))
}

func TestNewOrchestrator_Validation(t *testing.T) {
	_, err := runtime.NewOrchestrator([]ports.Handler{handlers.NewHR(), nil}, memory.NewTranscript())
	assert.ErrorIs(t, err, domain.ErrNilHandler)

	_, err = runtime.NewOrchestrator(nil, nil)
	assert.ErrorIs(t, err, runtime.ErrNilStore)
}

func TestSetHandlers(t *testing.T) {
	o := newOrchestrator(t)
	_, err := o.SelectHandler("run the audit")
	require.Error(t, err)

	require.NoError(t, o.SetHandlers([]ports.Handler{handlers.NewCompliance()}))
	h, err := o.SelectHandler("run the audit")
	require.NoError(t, err)
	assert.Equal(t, "Compliance Agent", h.Name())
	assert.Len(t, o.Handlers(), 1)

	assert.ErrorIs(t, o.SetHandlers([]ports.Handler{nil}), domain.ErrNilHandler)
	assert.Len(t, o.Handlers(), 1, "a rejected registry must not replace the current one")
}

func TestResetTranscript(t *testing.T) {
	o := newOrchestrator(t, handlers.Default()...)
	_, err := o.RunWorkflow(context.Background(), "run the audit", nil)
	require.NoError(t, err)
	require.NotEmpty(t, transcript(t, o))

	require.NoError(t, o.ResetTranscript(context.Background()))
	assert.Empty(t, transcript(t, o))
}
