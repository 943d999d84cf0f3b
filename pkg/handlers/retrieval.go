package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
)

// RetrievalKeywords route knowledge lookups.
var RetrievalKeywords = []string{"lookup", "retrieve", "knowledge base", "information", "fact", "question"}

// Retrieval answers questions from a knowledge base.
type Retrieval struct {
	Keyword
	kb ports.KnowledgeBase
}

// NewRetrieval creates the retrieval handler ("RAG Agent").
func NewRetrieval(opts ...Option) *Retrieval {
	s := newSettings("RAG Agent", "Retrieves information from knowledge bases.", RetrievalKeywords, opts)
	return &Retrieval{Keyword: s.keyword(), kb: s.kb}
}

// Run summarizes the task and, when a knowledge base is attached, cites the matching snippets.
func (h *Retrieval) Run(ctx context.Context, task string, tc domain.Context) (string, error) {
	outcome := "Retrieved relevant information."
	if h.kb == nil {
		return h.Summary(task, tc, outcome), nil
	}

	snippets, err := h.kb.Query(ctx, queryFor(task, tc))
	if err != nil {
		return "", fmt.Errorf("query knowledge base: %w", err)
	}
	if len(snippets) == 0 {
		return h.Summary(task, tc, outcome+" No matching sources."), nil
	}

	titles := make([]string, len(snippets))
	for i, sn := range snippets {
		titles[i] = sn.Title
	}
	return h.Summary(task, tc, fmt.Sprintf("%s Sources: %s.", outcome, strings.Join(titles, ", "))), nil
}

// Snippets exposes the knowledge base lookup for prompt rendering.
func (h *Retrieval) Snippets(ctx context.Context, query string) ([]domain.Snippet, error) {
	if h.kb == nil {
		return nil, nil
	}
	return h.kb.Query(ctx, query)
}
