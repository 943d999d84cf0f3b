package ports

import (
	"context"

	"github.com/aretw0/switchboard/pkg/domain"
)

// DataSource is an external system returning tabular records
// (spreadsheets, workspaces, CRM, HR systems).
type DataSource interface {
	Query(ctx context.Context, query string) ([]domain.Record, error)
}

// Mailer delivers an email and returns a delivery confirmation.
type Mailer interface {
	Send(ctx context.Context, email domain.Email) (string, error)
}

// KnowledgeBase returns the snippets relevant to a query.
type KnowledgeBase interface {
	Query(ctx context.Context, query string) ([]domain.Snippet, error)
}

// ToolDataSource dispatches a query to one of several named tools.
// Handlers use it when the task context names a tool.
type ToolDataSource interface {
	DataSource
	QueryTool(ctx context.Context, tool, query string) ([]domain.Record, error)
}
