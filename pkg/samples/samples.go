// Package samples holds the demonstration workflows shipped with the CLI.
// Each one builds its own small registry, so a sample never depends on the
// routing table in use.
package samples

import (
	"context"
	"fmt"

	"github.com/aretw0/switchboard"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/handlers"
	"github.com/aretw0/switchboard/pkg/ports"
)

// Workflow is a named, self-contained demonstration.
type Workflow struct {
	Name     string
	Title    string
	Task     string
	Context  domain.Context
	Handlers func() []ports.Handler
}

var all = []Workflow{
	{
		Name:    "lead-scoring",
		Title:   "Lead Scoring",
		Task:    "Score the lead 'Acme Corp' with contact 'Jane Doe' based on recent engagement data.",
		Context: domain.Context{"lead_name": "Acme Corp", "contact_person": "Jane Doe"},
		Handlers: func() []ports.Handler {
			return []ports.Handler{
				handlers.NewSales(handlers.WithName("LeadScorer"), handlers.WithDescription("Agent for scoring and qualifying leads.")),
			}
		},
	},
	{
		Name:    "invoice-extraction",
		Title:   "Invoice Extraction",
		Task:    "Extract line items and total amount from invoice INV-2023-001.",
		Context: domain.Context{"invoice_id": "INV-2023-001", "document_path": "data/invoices/inv-001.pdf"},
		Handlers: func() []ports.Handler {
			return []ports.Handler{
				handlers.NewTabular(handlers.WithName("InvoiceProcessor"), handlers.WithDescription("Agent for extracting and processing invoice data.")),
			}
		},
	},
	{
		Name:    "hr-screening",
		Title:   "HR Screening",
		Task:    "Screen candidate 'Alice Smith' for the 'Software Engineer' position based on resume 'alice_resume.pdf'.",
		Context: domain.Context{"candidate_name": "Alice Smith", "position": "Software Engineer", "resume_file": "alice_resume.pdf"},
		Handlers: func() []ports.Handler {
			return []ports.Handler{
				handlers.NewHR(handlers.WithName("CandidateScreener"), handlers.WithDescription("Agent for screening job applicants.")),
			}
		},
	},
	{
		Name:    "data-cleaning",
		Title:   "Data Cleaning",
		Task:    "Clean and deduplicate the 'customer_data.csv' spreadsheet.",
		Context: domain.Context{"dataset": "customer_data.csv", "operation": "clean_deduplicate"},
		Handlers: func() []ports.Handler {
			return []ports.Handler{
				handlers.NewTabular(handlers.WithName("DataCleaner"), handlers.WithDescription("Agent for cleaning and harmonizing data.")),
			}
		},
	},
	{
		Name:    "ticket-routing",
		Title:   "Customer Ticket Routing",
		Task:    "Route customer support ticket 'CT-9876' concerning a 'product return' and draft an initial response.",
		Context: domain.Context{"ticket_id": "CT-9876", "issue_summary": "Product return inquiry"},
		Handlers: func() []ports.Handler {
			return []ports.Handler{
				handlers.NewRetrieval(handlers.WithName("TicketClassifier"), handlers.WithDescription("Agent for classifying and routing customer tickets.")),
				handlers.NewMessaging(handlers.WithName("TicketResponder"), handlers.WithDescription("Agent for drafting and sending email replies.")),
			}
		},
	},
}

// All returns the samples in presentation order.
func All() []Workflow {
	return append([]Workflow(nil), all...)
}

// Find looks a sample up by name.
func Find(name string) (Workflow, bool) {
	for _, w := range all {
		if w.Name == name {
			return w, true
		}
	}
	return Workflow{}, false
}

// Run executes the sample on a fresh orchestrator.
func (w Workflow) Run(ctx context.Context, opts ...switchboard.Option) (domain.Result, error) {
	orch, err := switchboard.New(w.Handlers(), opts...)
	if err != nil {
		return domain.Result{}, fmt.Errorf("sample %s: %w", w.Name, err)
	}
	defer orch.Close()

	return orch.Run(ctx, w.Task, w.Context), nil
}
