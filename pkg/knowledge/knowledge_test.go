package knowledge_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/knowledge"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var items = []domain.Snippet{
	{Title: "Refund policy", Content: "Refunds within 30 days.", Keywords: []string{"refund"}},
	{Title: "Shipping", Content: "Ships in 2 days.", Tags: []string{"delivery"}},
	{Title: "Warranty", Content: "Two year warranty on hardware."},
}

func TestStaticProvider_Query(t *testing.T) {
	p := knowledge.NewStaticProvider(items, 0)
	ctx := context.Background()

	got, err := p.Query(ctx, "What is the REFUND window?")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Refund policy", got[0].Title)

	got, err = p.Query(ctx, "delivery times")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Shipping", got[0].Title)

	got, err = p.Query(ctx, "hardware warranty?")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Warranty", got[0].Title)

	got, err = p.Query(ctx, "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestStaticProvider_MaxResults(t *testing.T) {
	many := []domain.Snippet{
		{Title: "a", Keywords: []string{"x"}},
		{Title: "b", Keywords: []string{"x"}},
		{Title: "c", Keywords: []string{"x"}},
	}
	got, err := knowledge.NewStaticProvider(many, 2).Query(context.Background(), "x")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestLoadStaticProvider(t *testing.T) {
	dir := t.TempDir()

	yamlPath := filepath.Join(dir, "kb.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
- title: Refund policy
  content: Refunds within 30 days.
  keywords: [refund]
`), 0644))
	p, err := knowledge.LoadStaticProvider(yamlPath, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Len())

	jsonPath := filepath.Join(dir, "kb.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`[{"title":"Shipping","content":"2 days","tags":["delivery"]}]`), 0644))
	p, err = knowledge.LoadStaticProvider(jsonPath, 3)
	require.NoError(t, err)
	got, err := p.Query(context.Background(), "delivery")
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = knowledge.LoadStaticProvider(filepath.Join(dir, "kb.txt"), 3)
	assert.Error(t, err)
	_, err = knowledge.LoadStaticProvider("", 3)
	assert.Error(t, err)
}

func TestChunk(t *testing.T) {
	assert.Nil(t, knowledge.Chunk("  ", 10, 2))
	assert.Equal(t, []string{"short"}, knowledge.Chunk("short", 10, 2))

	text := strings.Repeat("word ", 50)
	chunks := knowledge.Chunk(text, 40, 10)
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 40)
		assert.False(t, strings.HasPrefix(c, "ord"), "chunks should start on a word boundary")
	}
}

func TestFromDocuments(t *testing.T) {
	p := knowledge.FromDocuments([]string{"Onboarding checklist for new employees.", ""}, 0)
	assert.Equal(t, 1, p.Len())

	got, err := p.Query(context.Background(), "employees onboarding")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "doc-1#1", got[0].Title)
}
