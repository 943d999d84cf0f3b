package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/switchboard/internal/presentation/graph"
	"github.com/aretw0/switchboard/pkg/handlers"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestGenerateMermaid(t *testing.T) {
	hs := []ports.Handler{
		handlers.NewRetrieval(),
		handlers.NewMessaging(handlers.WithName("Say \"hi\"")),
	}

	tests := []struct {
		name     string
		handlers []ports.Handler
		overlay  *graph.RouteOverlay
		contains []string
	}{
		{
			name:     "Chain Order",
			handlers: hs,
			contains: []string{
				"task((\"task\"))",
				"task --> check0{\"RAG Agent? <br/> lookup, retrieve",
				"check0 -- yes --> h0[[\"RAG Agent\"]]",
				"check0 -- no --> check1{",
				"check1 -- no --> unroutable[/",
			},
		},
		{
			name:     "Quote Escaping",
			handlers: hs,
			contains: []string{"h1[[\"Say 'hi'\"]]"},
		},
		{
			name:     "Empty Registry",
			handlers: nil,
			contains: []string{"task --> unroutable[/"},
		},
		{
			name:     "Overlay Selected",
			handlers: hs,
			overlay:  graph.Trace(hs, "Draft a reply"),
			contains: []string{"class check0 visited;", "class check1 visited;", "class h1 current;"},
		},
		{
			name:     "Overlay Unroutable",
			handlers: hs,
			overlay:  graph.Trace(hs, "Bake a cake"),
			contains: []string{"class unroutable current;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := graph.GenerateMermaid(tt.handlers, tt.overlay)
			assert.True(t, strings.HasPrefix(got, "graph TD\n"))
			for _, want := range tt.contains {
				assert.Contains(t, got, want)
			}
		})
	}
}

func TestTrace(t *testing.T) {
	hs := handlers.Default()

	o := graph.Trace(hs, "Score the lead")
	assert.Equal(t, 5, o.Checked)
	assert.Equal(t, 4, o.Selected)

	o = graph.Trace(hs, "Bake a cake")
	assert.Equal(t, len(hs), o.Checked)
	assert.Equal(t, -1, o.Selected)
}
