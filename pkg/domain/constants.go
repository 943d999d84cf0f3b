package domain

// Well-known Context keys. The orchestrator never reads them; handlers and
// their collaborators do.
const (
	// KeyRecipient is the address a messaging handler delivers to.
	KeyRecipient = "recipient"
	// KeySubject is the subject line used by a messaging handler.
	KeySubject = "subject"
	// KeyTool selects the external system a tabular handler queries
	// (google_sheets, notion, crm).
	KeyTool = "tool"
	// KeyQuery overrides the query sent to a collaborator. Defaults to the task.
	KeyQuery = "query"
)

// DefaultRoutingFile is the routing table looked up when no path is given.
const DefaultRoutingFile = "handlers.yaml"
