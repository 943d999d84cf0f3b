package domain

import "time"

// Role identifies who produced a transcript entry.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
	RoleError Role = "error"
)

// Entry is a single record of the transcript.
type Entry struct {
	Role    Role   `json:"role" yaml:"role"`
	Name    string `json:"name,omitempty" yaml:"name,omitempty"` // Only set for RoleAgent
	Content string `json:"content" yaml:"content"`

	// WorkflowID correlates the entries written by one workflow.
	WorkflowID string    `json:"workflow_id,omitempty" yaml:"workflow_id,omitempty"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
}

// UserEntry records the task as submitted.
func UserEntry(workflowID, task string) Entry {
	return Entry{Role: RoleUser, Content: task, WorkflowID: workflowID, Timestamp: time.Now()}
}

// AgentEntry records a handler's output.
func AgentEntry(workflowID, name, content string) Entry {
	return Entry{Role: RoleAgent, Name: name, Content: content, WorkflowID: workflowID, Timestamp: time.Now()}
}

// ErrorEntry records a routing or execution failure.
func ErrorEntry(workflowID, message string) Entry {
	return Entry{Role: RoleError, Content: message, WorkflowID: workflowID, Timestamp: time.Now()}
}
