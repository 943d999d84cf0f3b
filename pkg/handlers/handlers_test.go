package handlers_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/handlers"
	"github.com/aretw0/switchboard/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSource struct {
	records []domain.Record
	err     error
	queries []string
}

func (s *stubSource) Query(ctx context.Context, query string) ([]domain.Record, error) {
	s.queries = append(s.queries, query)
	return s.records, s.err
}

type stubMailer struct {
	sent []domain.Email
	err  error
}

func (m *stubMailer) Send(ctx context.Context, email domain.Email) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, email)
	return "Email sent to " + email.To, nil
}

type stubKB struct {
	snippets []domain.Snippet
}

func (k stubKB) Query(ctx context.Context, query string) ([]domain.Snippet, error) {
	return k.snippets, nil
}

func TestDefault_OrderAndNames(t *testing.T) {
	reg := handlers.Default()
	require.Len(t, reg, 6)

	names := make([]string, len(reg))
	for i, h := range reg {
		names[i] = h.Name()
		assert.NotEmpty(t, h.Description())
	}
	assert.Equal(t, []string{"RAG Agent", "TAG Agent", "Email Agent", "Compliance Agent", "Sales Agent", "HR Agent"}, names)
}

func TestCanHandle_Keywords(t *testing.T) {
	cases := []struct {
		name    string
		kind    handlers.Kind
		task    string
		matches bool
	}{
		{"retrieval question", handlers.KindRetrieval, "Answer this question about refunds", true},
		{"retrieval multiword", handlers.KindRetrieval, "search the KNOWLEDGE BASE", true},
		{"tabular spreadsheet", handlers.KindTabular, "Clean the 'customer_data.csv' spreadsheet", true},
		{"tabular invoice miss", handlers.KindTabular, "Extract line items from invoice INV-2023-001", false},
		{"messaging draft", handlers.KindMessaging, "Draft an initial response", true},
		{"compliance audit", handlers.KindCompliance, "Run the quarterly Audit", true},
		{"sales lead", handlers.KindSales, "Score the lead 'Acme Corp'", true},
		{"hr payroll", handlers.KindHR, "Fix payroll for March", true},
		{"hr substring", handlers.KindHR, "Schedule a thread review", true},
		{"hr screen miss", handlers.KindHR, "Screen candidate 'Alice Smith'", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, err := handlers.New(tc.kind)
			require.NoError(t, err)
			assert.Equal(t, tc.matches, h.CanHandle(tc.task))
			assert.Equal(t, tc.matches, h.CanHandle(tc.task), "predicate must be stable")
		})
	}
}

func TestRun_Summary(t *testing.T) {
	h := handlers.NewSales()
	out, err := h.Run(context.Background(), "Score the lead", domain.Context{"lead_name": "Acme Corp"})
	require.NoError(t, err)
	assert.Equal(t, "Sales Agent executed task: 'Score the lead' with context: {lead_name: Acme Corp}. Performed sales operation.", out)

	out, err = handlers.NewRetrieval(handlers.WithName("TicketClassifier")).Run(context.Background(), "lookup", nil)
	require.NoError(t, err)
	assert.Equal(t, "TicketClassifier executed task: 'lookup' with context: {}. Retrieved relevant information.", out)
}

func TestOptions_Override(t *testing.T) {
	h := handlers.NewTabular(
		handlers.WithName("InvoiceProcessor"),
		handlers.WithDescription("Agent for extracting and processing invoice data."),
		handlers.WithKeywords("invoice", "Line Items"),
	)
	assert.Equal(t, "InvoiceProcessor", h.Name())
	assert.Equal(t, "Agent for extracting and processing invoice data.", h.Description())
	assert.Equal(t, []string{"invoice", "line items"}, h.Keywords())
	assert.True(t, h.CanHandle("Extract LINE ITEMS"))
	assert.False(t, h.CanHandle("build a spreadsheet"))
}

func TestSourced_WithDataSource(t *testing.T) {
	src := &stubSource{records: []domain.Record{{"name": "John Doe"}, {"name": "Jane Smith"}}}
	h := handlers.NewSales(handlers.WithDataSource(src))

	out, err := h.Run(context.Background(), "List every lead", domain.Context{domain.KeyQuery: "lead"})
	require.NoError(t, err)
	assert.Contains(t, out, "Performed sales operation. Found 2 records.")
	assert.Equal(t, []string{"lead"}, src.queries, "query override should be used")

	src.err = errors.New("crm offline")
	_, err = h.Run(context.Background(), "List every lead", nil)
	assert.ErrorIs(t, err, src.err)
}

func TestSourced_ToolDispatch(t *testing.T) {
	h := handlers.NewTabular(handlers.WithDataSource(registry.NewMockRegistry()))
	ctx := context.Background()

	out, err := h.Run(ctx, "Build the task report", domain.Context{domain.KeyTool: "notion"})
	require.NoError(t, err)
	assert.Contains(t, out, "Processed table data. Found 2 records.")

	_, err = h.Run(ctx, "Build the report", domain.Context{domain.KeyTool: "jira"})
	assert.ErrorIs(t, err, registry.ErrUnknownTool)

	plain := handlers.NewTabular(handlers.WithDataSource(&stubSource{}))
	_, err = plain.Run(ctx, "Build the report", domain.Context{domain.KeyTool: "notion"})
	assert.ErrorContains(t, err, "cannot dispatch")
}

func TestMessaging_WithMailer(t *testing.T) {
	mailer := &stubMailer{}
	h := handlers.NewMessaging(handlers.WithMailer(mailer))
	ctx := context.Background()

	t.Run("No Recipient Skips Delivery", func(t *testing.T) {
		out, err := h.Run(ctx, "draft a reply", domain.Context{})
		require.NoError(t, err)
		assert.Empty(t, mailer.sent)
		assert.Contains(t, out, "Processed email operation.")
	})

	t.Run("Recipient Sends", func(t *testing.T) {
		tc := domain.Context{domain.KeyRecipient: "ops@example.com", domain.KeySubject: "Ticket CT-9876"}
		out, err := h.Run(ctx, "draft a reply", tc)
		require.NoError(t, err)
		require.Len(t, mailer.sent, 1)
		assert.Equal(t, domain.Email{To: "ops@example.com", Subject: "Ticket CT-9876", Body: "draft a reply"}, mailer.sent[0])
		assert.Contains(t, out, "Processed email operation. Email sent to ops@example.com.")
	})

	t.Run("Delivery Failure", func(t *testing.T) {
		failing := handlers.NewMessaging(handlers.WithMailer(&stubMailer{err: errors.New("smtp down")}))
		_, err := failing.Run(ctx, "send it", domain.Context{domain.KeyRecipient: "a@b.c"})
		assert.ErrorContains(t, err, "smtp down")
	})
}

func TestRetrieval_WithKnowledgeBase(t *testing.T) {
	kb := stubKB{snippets: []domain.Snippet{{Title: "Refund Policy"}, {Title: "Returns FAQ"}}}
	h := handlers.NewRetrieval(handlers.WithKnowledgeBase(kb))

	out, err := h.Run(context.Background(), "retrieve the refund policy", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Retrieved relevant information. Sources: Refund Policy, Returns FAQ.")

	empty := handlers.NewRetrieval(handlers.WithKnowledgeBase(stubKB{}))
	out, err = empty.Run(context.Background(), "retrieve anything", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "No matching sources.")
}

func TestParseKind(t *testing.T) {
	k, err := handlers.ParseKind("RAG")
	require.NoError(t, err)
	assert.Equal(t, handlers.KindRetrieval, k)

	k, err = handlers.ParseKind("hr")
	require.NoError(t, err)
	assert.Equal(t, handlers.KindHR, k)

	_, err = handlers.ParseKind("astrology")
	assert.Error(t, err)
}

func TestFunc(t *testing.T) {
	f := handlers.Func{HandlerName: "noop"}
	assert.False(t, f.CanHandle("anything"))
	_, err := f.Run(context.Background(), "anything", nil)
	assert.Error(t, err)
}

func TestPrompts(t *testing.T) {
	p := handlers.RenderRetrievalPrompt("What is the refund window?", []domain.Snippet{{Title: "Refunds", Content: "30 days"}})
	assert.Contains(t, p, "Context: [Refunds] 30 days")
	assert.Contains(t, p, "Question: What is the refund window?")

	history := []domain.Entry{
		domain.UserEntry("wf", "score the lead"),
		domain.AgentEntry("wf", "Sales Agent", "done"),
	}
	g := handlers.RenderGeneralPrompt(history, "follow up")
	assert.Contains(t, g, "user: score the lead\nagent (Sales Agent): done")
	assert.Contains(t, g, "Task Description:\nfollow up")

	assert.Contains(t, handlers.RenderGeneralPrompt(nil, "x"), "(none)")
}
