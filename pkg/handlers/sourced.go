package handlers

import (
	"context"
	"fmt"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
)

var (
	// TabularKeywords route table and reporting work.
	TabularKeywords = []string{"table", "database", "query", "data analysis", "report", "spreadsheet"}
	// ComplianceKeywords route audits and policy reviews.
	ComplianceKeywords = []string{"compliance", "audit", "review", "policy", "regulation", "legal"}
	// SalesKeywords route pipeline work.
	SalesKeywords = []string{"sales", "lead", "customer", "deal", "opportunity", "crm", "follow-up", "proposal"}
	// HRKeywords route people operations.
	HRKeywords = []string{"hr", "human resources", "recruitment", "screening", "onboarding", "payroll", "employee"}
)

// Sourced is a handler backed by an optional DataSource. The tabular,
// compliance, sales and HR variants only differ in keywords and outcome.
type Sourced struct {
	Keyword
	outcome string
	source  ports.DataSource
}

// NewTabular creates the tabular-data handler ("TAG Agent").
func NewTabular(opts ...Option) *Sourced {
	return newSourced("TAG Agent", "Processes and analyzes tabular data.", TabularKeywords, "Processed table data.", opts)
}

// NewCompliance creates the compliance handler.
func NewCompliance(opts ...Option) *Sourced {
	return newSourced("Compliance Agent", "Ensures regulatory adherence and audits.", ComplianceKeywords, "Performed compliance check.", opts)
}

// NewSales creates the sales handler.
func NewSales(opts ...Option) *Sourced {
	return newSourced("Sales Agent", "Handles sales-related tasks like lead scoring.", SalesKeywords, "Performed sales operation.", opts)
}

// NewHR creates the HR handler.
func NewHR(opts ...Option) *Sourced {
	return newSourced("HR Agent", "Manages HR processes like candidate screening.", HRKeywords, "Performed HR operation.", opts)
}

func newSourced(name, description string, keywords []string, outcome string, opts []Option) *Sourced {
	s := newSettings(name, description, keywords, opts)
	return &Sourced{Keyword: s.keyword(), outcome: outcome, source: s.source}
}

// Run summarizes the task and, when a data source is attached, reports how many records matched.
// A KeyTool entry in the context picks the tool of a ToolDataSource.
func (h *Sourced) Run(ctx context.Context, task string, tc domain.Context) (string, error) {
	if h.source == nil {
		return h.Summary(task, tc, h.outcome), nil
	}

	var (
		records []domain.Record
		err     error
	)
	query := queryFor(task, tc)
	if tool, ok := tc.GetString(domain.KeyTool); ok {
		ts, isTool := h.source.(ports.ToolDataSource)
		if !isTool {
			return "", fmt.Errorf("data source cannot dispatch to tool %q", tool)
		}
		records, err = ts.QueryTool(ctx, tool, query)
	} else {
		records, err = h.source.Query(ctx, query)
	}
	if err != nil {
		return "", fmt.Errorf("query data source: %w", err)
	}
	return h.Summary(task, tc, fmt.Sprintf("%s Found %s.", h.outcome, countRecords(len(records)))), nil
}
