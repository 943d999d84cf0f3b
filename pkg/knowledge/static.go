// Package knowledge provides a static, file-backed knowledge base for the
// retrieval handler.
package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
	"gopkg.in/yaml.v3"
)

// DefaultMaxResults caps the snippets returned per query.
const DefaultMaxResults = 3

// StaticProvider matches queries against snippet keywords and tags.
// Snippets without keywords or tags are matched on their content.
type StaticProvider struct {
	items      []domain.Snippet
	maxResults int
}

var _ ports.KnowledgeBase = (*StaticProvider)(nil)

// NewStaticProvider creates a provider over items.
func NewStaticProvider(items []domain.Snippet, maxResults int) *StaticProvider {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &StaticProvider{
		items:      items,
		maxResults: maxResults,
	}
}

// LoadStaticProvider reads snippets from a JSON or YAML file.
func LoadStaticProvider(path string, maxResults int) (*StaticProvider, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("knowledge file path must not be empty")
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve knowledge path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("read knowledge file: %w", err)
	}

	var entries []domain.Snippet
	ext := strings.ToLower(filepath.Ext(absPath))
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &entries)
	case ".json":
		err = json.Unmarshal(data, &entries)
	default:
		return nil, fmt.Errorf("unsupported knowledge file extension: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse knowledge file: %w", err)
	}

	return NewStaticProvider(entries, maxResults), nil
}

// FromDocuments chunks raw documents into untagged snippets.
func FromDocuments(docs []string, maxResults int) *StaticProvider {
	var items []domain.Snippet
	for i, doc := range docs {
		for j, chunk := range Chunk(doc, DefaultChunkSize, DefaultChunkOverlap) {
			items = append(items, domain.Snippet{
				Title:   fmt.Sprintf("doc-%d#%d", i+1, j+1),
				Content: chunk,
			})
		}
	}
	return NewStaticProvider(items, maxResults)
}

// Len reports how many snippets are loaded.
func (p *StaticProvider) Len() int {
	if p == nil {
		return 0
	}
	return len(p.items)
}

// Query returns up to maxResults matching snippets in file order.
func (p *StaticProvider) Query(ctx context.Context, query string) ([]domain.Snippet, error) {
	if p == nil {
		return nil, nil
	}

	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}

	results := make([]domain.Snippet, 0, p.maxResults)
	for _, item := range p.items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if matches(item, query) {
			results = append(results, item)
			if len(results) >= p.maxResults {
				break
			}
		}
	}
	return results, nil
}

func matches(snippet domain.Snippet, query string) bool {
	if len(snippet.Keywords) == 0 && len(snippet.Tags) == 0 {
		return matchesContent(snippet.Content, query)
	}
	for _, keyword := range snippet.Keywords {
		if containsTerm(query, keyword) {
			return true
		}
	}
	for _, tag := range snippet.Tags {
		if containsTerm(query, tag) {
			return true
		}
	}
	return false
}

func containsTerm(query, term string) bool {
	normalized := strings.ToLower(strings.TrimSpace(term))
	return normalized != "" && strings.Contains(query, normalized)
}

// matchesContent looks for any query word of four letters or more.
func matchesContent(content, query string) bool {
	content = strings.ToLower(content)
	for _, word := range strings.Fields(query) {
		word = strings.Trim(word, ".,;:!?\"'()")
		if len(word) >= 4 && strings.Contains(content, word) {
			return true
		}
	}
	return false
}
