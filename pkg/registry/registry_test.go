package registry_test

import (
	"context"
	"testing"

	"github.com/aretw0/switchboard/pkg/adapters/mock"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_QueryTool(t *testing.T) {
	r := registry.NewMockRegistry()
	ctx := context.Background()

	assert.Equal(t, []string{"crm", "google_sheets", "notion"}, r.Names())

	records, err := r.QueryTool(ctx, "CRM", "find customer")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	_, err = r.QueryTool(ctx, "jira", "x")
	assert.ErrorIs(t, err, registry.ErrUnknownTool)
	assert.EqualError(t, err, "Unknown TAG tool: jira")
}

func TestRegistry_Fallback(t *testing.T) {
	ctx := context.Background()

	empty := registry.NewRegistry()
	_, err := empty.Query(ctx, "x")
	assert.Error(t, err)

	r := registry.NewRegistry()
	r.Register("notion", mock.Notion)
	r.Register("crm", mock.CRM)

	records, err := r.Query(ctx, "task list")
	require.NoError(t, err)
	assert.Equal(t, "Design UI", records[0]["task"])

	r.SetFallback("crm")
	records, err = r.Query(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, domain.Record{"crm_field": "crm_value"}, records[0])
}

func TestRegistry_Overwrite(t *testing.T) {
	r := registry.NewRegistry()
	r.Register("sheets", mock.Sheets)
	r.Register("Sheets", mock.SourceFunc(func(ctx context.Context, q string) ([]domain.Record, error) {
		return nil, nil
	}))

	records, err := r.QueryTool(context.Background(), "sheets", "sales")
	require.NoError(t, err)
	assert.Empty(t, records)
}
