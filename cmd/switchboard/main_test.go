package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	cfg := filepath.Join(t.TempDir(), "switchboard.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log:\n  level: error\n"), 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--config", cfg}, args...))
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestRouteCommand(t *testing.T) {
	assert.Equal(t, "Sales Agent: Handles sales-related tasks like lead scoring.\n", execute(t, "route", "Score", "the", "lead"))
	assert.Equal(t, "Error: No suitable agent/handler found for task: Bake a cake\n", execute(t, "route", "Bake a cake"))
}

func TestHandlersCommand(t *testing.T) {
	out := execute(t, "handlers")
	assert.True(t, strings.HasPrefix(out, "1. RAG Agent - Retrieves information from knowledge bases.\n"))
	assert.Contains(t, out, "6. HR Agent")

	out = execute(t, "handlers", "--mermaid", "--task", "Score the lead")
	assert.Contains(t, out, "graph TD")
	assert.Contains(t, out, "class h4 current;")
}

func TestVersionCommand(t *testing.T) {
	assert.Contains(t, execute(t, "version"), "switchboard version ")
}
