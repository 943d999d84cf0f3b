package domain

// Record is one row returned by an external data source.
type Record map[string]any

// Email is an outgoing message handed to a Mailer.
type Email struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Snippet is a knowledge base entry a retrieval handler can cite.
type Snippet struct {
	Title    string   `json:"title" yaml:"title"`
	Content  string   `json:"content" yaml:"content"`
	Keywords []string `json:"keywords" yaml:"keywords"`
	Tags     []string `json:"tags" yaml:"tags"`
}
