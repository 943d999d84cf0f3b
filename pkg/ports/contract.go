package ports

import (
	"context"
	"testing"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTranscriptStoreContract runs a suite of tests to verify that a TranscriptStore
// implementation adheres to the defined interface contract.
// The store must be empty when handed in; it is left empty on return.
func RunTranscriptStoreContract(t *testing.T, store TranscriptStore) {
	ctx := context.Background()

	t.Run("Empty", func(t *testing.T) {
		entries, err := store.Entries(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Append Preserves Order", func(t *testing.T) {
		err := store.Append(ctx,
			domain.UserEntry("wf-1", "look up the refund policy"),
			domain.AgentEntry("wf-1", "RAG Agent", "found it"),
		)
		require.NoError(t, err)
		require.NoError(t, store.Append(ctx, domain.UserEntry("wf-2", "bake a cake")))
		require.NoError(t, store.Append(ctx, domain.ErrorEntry("wf-2", "no handler")))

		entries, err := store.Entries(ctx)
		require.NoError(t, err)
		require.Len(t, entries, 4)

		assert.Equal(t, domain.RoleUser, entries[0].Role)
		assert.Equal(t, "look up the refund policy", entries[0].Content)
		assert.Equal(t, domain.RoleAgent, entries[1].Role)
		assert.Equal(t, "RAG Agent", entries[1].Name)
		assert.Equal(t, "wf-1", entries[1].WorkflowID)
		assert.Equal(t, domain.RoleUser, entries[2].Role)
		assert.Equal(t, domain.RoleError, entries[3].Role)
		assert.Equal(t, "no handler", entries[3].Content)
	})

	t.Run("Entries Returns Copy", func(t *testing.T) {
		entries, err := store.Entries(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		entries[0].Content = "mutated"

		fresh, err := store.Entries(ctx)
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", fresh[0].Content)
	})

	t.Run("Append Nothing", func(t *testing.T) {
		before, err := store.Entries(ctx)
		require.NoError(t, err)
		require.NoError(t, store.Append(ctx))
		after, err := store.Entries(ctx)
		require.NoError(t, err)
		assert.Len(t, after, len(before))
	})

	t.Run("Reset", func(t *testing.T) {
		require.NoError(t, store.Reset(ctx))
		entries, err := store.Entries(ctx)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})
}
