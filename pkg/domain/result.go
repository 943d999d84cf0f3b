package domain

import "time"

// Status is the terminal state of a workflow.
type Status string

const (
	StatusCompleted  Status = "completed"  // A handler ran and returned output
	StatusUnroutable Status = "unroutable" // No handler accepted the task
	StatusFailed     Status = "failed"     // The handler or the transcript failed
)

// Result is the outcome of one workflow.
type Result struct {
	WorkflowID string        `json:"workflow_id"`
	Task       string        `json:"task"`
	Status     Status        `json:"status"`
	Handler    string        `json:"handler,omitempty"`
	Output     string        `json:"output"`
	Err        error         `json:"-"`
	Duration   time.Duration `json:"duration"`
}

// ErrorPrefix is prepended to the routing error in the string form of an unroutable result.
const ErrorPrefix = "Error: "

// Text is the caller facing string: the handler output, or the routing error
// prefixed with ErrorPrefix.
func (r Result) Text() string {
	if r.Status == StatusUnroutable && r.Err != nil {
		return ErrorPrefix + r.Err.Error()
	}
	return r.Output
}
