package domain

import "time"

// Job is a task submitted for asynchronous execution through a queue.
type Job struct {
	ID          string    `json:"id"`
	Task        string    `json:"task"`
	Context     Context   `json:"context,omitempty"`
	SubmittedAt time.Time `json:"submitted_at"`
}
