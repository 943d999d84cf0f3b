package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventWorkflowStart   EventType = "workflow_start"
	EventHandlerSelected EventType = "handler_selected"
	EventHandlerReturn   EventType = "handler_return"
	EventWorkflowEnd     EventType = "workflow_end"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"type"`
	WorkflowID string    `json:"workflow_id"`
}

// WorkflowEvent marks the start or the end of a workflow.
type WorkflowEvent struct {
	EventBase
	Task     string        `json:"task"`
	Status   Status        `json:"status,omitempty"`   // Set on end
	Duration time.Duration `json:"duration,omitempty"` // Set on end
}

// HandlerEvent represents the selection or the return of a handler.
type HandlerEvent struct {
	EventBase
	Handler  string        `json:"handler"`
	Task     string        `json:"task"`
	Output   string        `json:"output,omitempty"`
	IsError  bool          `json:"is_error,omitempty"`
	Duration time.Duration `json:"duration,omitempty"`
}

// LifecycleHooks defines callbacks for orchestrator observability.
type LifecycleHooks struct {
	OnWorkflowStart   func(context.Context, *WorkflowEvent)
	OnHandlerSelected func(context.Context, *HandlerEvent)
	OnHandlerReturn   func(context.Context, *HandlerEvent)
	OnWorkflowEnd     func(context.Context, *WorkflowEvent)
}

// NewEventBase stamps an event with the current time.
func NewEventBase(t EventType, workflowID string) EventBase {
	return EventBase{Timestamp: time.Now(), Type: t, WorkflowID: workflowID}
}
