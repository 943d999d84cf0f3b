// Package mock provides canned connectors for demos and tests.
// They never touch the network.
package mock

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/switchboard/pkg/domain"
)

// Tool names of the canned data sources.
const (
	ToolSheets = "google_sheets"
	ToolNotion = "notion"
	ToolCRM    = "crm"
)

// SourceFunc adapts a function to ports.DataSource.
type SourceFunc func(ctx context.Context, query string) ([]domain.Record, error)

func (f SourceFunc) Query(ctx context.Context, query string) ([]domain.Record, error) {
	return f(ctx, query)
}

// Sheets mimics a spreadsheet lookup.
var Sheets = SourceFunc(func(ctx context.Context, query string) ([]domain.Record, error) {
	slog.Debug("Mock sheets query", "query", query)
	if containsAny(query, "sales") {
		return []domain.Record{
			{"id": 1, "name": "Product A", "sales": 100},
			{"id": 2, "name": "Product B", "sales": 150},
		}, nil
	}
	return []domain.Record{{"column1": "sheet_data1", "column2": "sheet_data2"}}, nil
})

// Notion mimics a workspace search.
var Notion = SourceFunc(func(ctx context.Context, query string) ([]domain.Record, error) {
	slog.Debug("Mock notion query", "query", query)
	if containsAny(query, "task") {
		return []domain.Record{
			{"task": "Design UI", "status": "In Progress"},
			{"task": "Implement Backend", "status": "To Do"},
		}, nil
	}
	return []domain.Record{{"page_title": "notion_page1", "content": "notion_content1"}}, nil
})

// CRM mimics a contact search.
var CRM = SourceFunc(func(ctx context.Context, query string) ([]domain.Record, error) {
	slog.Debug("Mock crm query", "query", query)
	if containsAny(query, "lead", "customer") {
		return []domain.Record{
			{"contact": "John Doe", "company": "ABC Corp", "status": "Lead"},
			{"contact": "Jane Smith", "company": "XYZ Inc", "status": "Opportunity"},
		}, nil
	}
	return []domain.Record{{"crm_field": "crm_value"}}, nil
})

// Mailer pretends to deliver and keeps what it was given.
type Mailer struct {
	Sent []domain.Email
}

func (m *Mailer) Send(ctx context.Context, email domain.Email) (string, error) {
	if email.Subject == "" {
		email.Subject = "No Subject"
	}
	slog.Debug("Mock email send", "to", email.To, "subject", email.Subject)
	m.Sent = append(m.Sent, email)
	return fmt.Sprintf("Email sent to %s with subject '%s'", email.To, email.Subject), nil
}

func containsAny(s string, subs ...string) bool {
	s = strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
