package process

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shell(t *testing.T, script string) ToolConfig {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell fixtures need sh")
	}
	return ToolConfig{Name: "script", Command: "sh", Args: []string{"-c", script}}
}

func TestSource_Query(t *testing.T) {
	ctx := context.Background()

	t.Run("JSON Array", func(t *testing.T) {
		src := NewSource(shell(t, `echo '[{"name":"Acme"},{"name":"Globex"}]'`), "")
		records, err := src.Query(ctx, "customers")
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, "Globex", records[1]["name"])
	})

	t.Run("JSON Object", func(t *testing.T) {
		src := NewSource(shell(t, `echo '{"total": 3}'`), "")
		records, err := src.Query(ctx, "count")
		require.NoError(t, err)
		assert.Equal(t, []domain.Record{{"total": float64(3)}}, records)
	})

	t.Run("Plain Output", func(t *testing.T) {
		src := NewSource(shell(t, `echo hello`), "")
		records, err := src.Query(ctx, "q")
		require.NoError(t, err)
		assert.Equal(t, []domain.Record{{"output": "hello"}}, records)
	})

	t.Run("Query Via Env Var", func(t *testing.T) {
		cfg := shell(t, `echo "$SWITCHBOARD_QUERY from $REGION"`)
		cfg.Environment = map[string]string{"REGION": "emea"}
		records, err := NewSource(cfg, "").Query(ctx, "leads; rm -rf /")
		require.NoError(t, err)
		assert.Equal(t, "leads; rm -rf / from emea", records[0]["output"])
	})

	t.Run("Failure Includes Stderr", func(t *testing.T) {
		_, err := NewSource(shell(t, `echo boom >&2; exit 3`), "").Query(ctx, "q")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("Timeout", func(t *testing.T) {
		cfg := shell(t, `sleep 5`)
		cfg.Timeout = 100 * time.Millisecond
		start := time.Now()
		_, err := NewSource(cfg, "").Query(ctx, "q")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), 3*time.Second)
	})
}

func TestLoadTools(t *testing.T) {
	dir := t.TempDir()

	tools, err := LoadTools(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, tools)

	path := filepath.Join(dir, "tools.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tools:
  - name: warehouse
    command: ./warehouse.sh
    args: ["--json"]
    timeout: 5s
  - name: billing
    command: billing-cli
`), 0644))
	tools, err = LoadTools(path)
	require.NoError(t, err)
	require.Len(t, tools, 2)
	assert.Equal(t, "warehouse", tools[0].Name)
	assert.Equal(t, 5*time.Second, tools[0].Timeout)

	require.NoError(t, os.WriteFile(path, []byte("tools:\n  - name: broken\n"), 0644))
	_, err = LoadTools(path)
	assert.ErrorContains(t, err, "name and command are required")
}
