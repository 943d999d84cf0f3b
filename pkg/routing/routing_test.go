package routing_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/switchboard/pkg/adapters/mock"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/aretw0/switchboard/pkg/registry"
	"github.com/aretw0/switchboard/pkg/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const table = `
handlers:
  - kind: invoice
    name: Invoice Agent
    description: Agent for extracting and processing invoice data.
    keywords: [invoice, line items]
  - kind: rag
    options:
      knowledge: kb.yaml
      max_results: 1
  - kind: tag
    options:
      source: registry
  - kind: email
    options:
      mailer: outbox
  - kind: sales
    options:
      source: crm
`

func deps() routing.Deps {
	return routing.Deps{
		Tools:   registry.NewMockRegistry(),
		Mailers: map[string]ports.Mailer{"outbox": &mock.Mailer{}},
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadHandlers(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "kb.yaml"), "- title: Refunds\n  content: 30 days\n  keywords: [refund]\n")
	path := filepath.Join(dir, "handlers.yaml")

	// invoice is not a built-in kind
	writeFile(t, path, table)
	_, err := routing.LoadHandlers(path, deps())
	assert.ErrorContains(t, err, "unknown handler kind")

	_, err = routing.LoadHandlers(filepath.Join(dir, "missing.yaml"), deps())
	assert.ErrorContains(t, err, "failed to read routing table")

	writeFile(t, path, `
handlers:
  - kind: sales
    name: Pipeline Agent
    keywords: [pipeline]
    options:
      source: crm
  - kind: rag
    options:
      knowledge: kb.yaml
  - kind: tag
    options:
      source: registry
  - kind: email
    options:
      mailer: outbox
`)
	hs, err := routing.LoadHandlers(path, deps())
	require.NoError(t, err)
	require.Len(t, hs, 4)
	assert.Equal(t, "Pipeline Agent", hs[0].Name())
	assert.True(t, hs[0].CanHandle("review the pipeline"))
	assert.False(t, hs[0].CanHandle("score the lead"), "keywords replace the defaults")
	assert.Equal(t, "RAG Agent", hs[1].Name())

	out, err := hs[0].Run(context.Background(), "pipeline leads", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Found 2 records.")

	out, err = hs[1].Run(context.Background(), "Lookup the refund window", nil)
	require.NoError(t, err)
	assert.Contains(t, out, "Sources: Refunds.")

	out, err = hs[3].Run(context.Background(), "Send the digest", domain.Context{domain.KeyRecipient: "a@example.com"})
	require.NoError(t, err)
	assert.Contains(t, out, "Email sent to a@example.com")
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"empty", "handlers: []", "no handlers"},
		{"unknown tool", "handlers:\n  - kind: tag\n    options: {source: jira}", "Unknown TAG tool: jira"},
		{"unknown mailer", "handlers:\n  - kind: email\n    options: {mailer: smtp}", "unknown mailer"},
		{"duplicate", "handlers:\n  - kind: sales\n  - kind: sales", "duplicate name"},
		{"bad options", "handlers:\n  - kind: rag\n    options: {max_results: many}", "decode options"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := routing.Parse([]byte(tt.doc), "handlers.yaml")
			require.NoError(t, err)
			_, err = tbl.Build(deps(), ".")
			assert.ErrorContains(t, err, tt.want)
		})
	}

	tbl, err := routing.Parse([]byte("handlers: []"), "handlers.yaml")
	require.NoError(t, err)
	_, err = tbl.Build(deps(), ".")
	assert.ErrorIs(t, err, routing.ErrEmptyRegistry)
}

func TestParse_JSON(t *testing.T) {
	tbl, err := routing.Parse([]byte(`{"handlers":[{"kind":"hr","name":"People Ops"}]}`), "handlers.json")
	require.NoError(t, err)
	hs, err := tbl.Build(routing.Deps{}, ".")
	require.NoError(t, err)
	assert.Equal(t, "People Ops", hs[0].Name())

	tbl, err = routing.Parse([]byte(`{"handlers":[{"kind":"tag","options":{"source":"crm"}}]}`), "handlers.json")
	require.NoError(t, err)
	_, err = tbl.Build(routing.Deps{}, ".")
	assert.ErrorContains(t, err, "no tool registry")
}

func TestWatch_Reloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "handlers.yaml")
	writeFile(t, path, "handlers:\n  - kind: sales\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	applied := make(chan []ports.Handler, 4)
	done := make(chan error, 1)
	go func() {
		done <- routing.Watch(ctx, path, deps(), func(hs []ports.Handler) { applied <- hs }, nil)
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	writeFile(t, path, "handlers:\n  - kind: hr\n  - kind: sales\n")

	select {
	case hs := <-applied:
		require.Len(t, hs, 2)
		assert.Equal(t, "HR Agent", hs[0].Name())
	case <-time.After(3 * time.Second):
		t.Fatal("routing table was not reloaded")
	}

	cancel()
	assert.NoError(t, <-done)
}
