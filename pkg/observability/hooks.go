package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/switchboard/pkg/domain"
)

// Combine fans every event out to all hook sets, in argument order.
func Combine(sets ...domain.LifecycleHooks) domain.LifecycleHooks {
	var combined domain.LifecycleHooks
	for _, h := range sets {
		combined.OnWorkflowStart = chainWorkflow(combined.OnWorkflowStart, h.OnWorkflowStart)
		combined.OnHandlerSelected = chainHandler(combined.OnHandlerSelected, h.OnHandlerSelected)
		combined.OnHandlerReturn = chainHandler(combined.OnHandlerReturn, h.OnHandlerReturn)
		combined.OnWorkflowEnd = chainWorkflow(combined.OnWorkflowEnd, h.OnWorkflowEnd)
	}
	return combined
}

func chainWorkflow(a, b func(context.Context, *domain.WorkflowEvent)) func(context.Context, *domain.WorkflowEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.WorkflowEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

func chainHandler(a, b func(context.Context, *domain.HandlerEvent)) func(context.Context, *domain.HandlerEvent) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *domain.HandlerEvent) {
		a(ctx, e)
		b(ctx, e)
	}
}

// LoggingHooks logs every lifecycle event at debug level, except handler
// errors which are logged as warnings.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnWorkflowStart: func(ctx context.Context, e *domain.WorkflowEvent) {
			logger.Debug("workflow_start", "workflow_id", e.WorkflowID, "task", e.Task)
		},
		OnHandlerSelected: func(ctx context.Context, e *domain.HandlerEvent) {
			logger.Debug("handler_selected", "workflow_id", e.WorkflowID, "handler", e.Handler)
		},
		OnHandlerReturn: func(ctx context.Context, e *domain.HandlerEvent) {
			if e.IsError {
				logger.Warn("handler_return", "workflow_id", e.WorkflowID, "handler", e.Handler, "is_error", true)
				return
			}
			logger.Debug("handler_return", "workflow_id", e.WorkflowID, "handler", e.Handler, "duration", e.Duration)
		},
		OnWorkflowEnd: func(ctx context.Context, e *domain.WorkflowEvent) {
			logger.Debug("workflow_end", "workflow_id", e.WorkflowID, "status", e.Status, "duration", e.Duration)
		},
	}
}
