package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithFormat(t *testing.T) {
	var buf bytes.Buffer
	NewWithFormat(&buf, slog.LevelInfo, "json").Error("write failed", "error", errors.New("disk full"))
	assert.Contains(t, buf.String(), `"err":"disk full"`)

	buf.Reset()
	logger := NewWithFormat(&buf, slog.LevelWarn, "text")
	logger.Info("hidden")
	logger.Warn("shown", "error", "x")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "err=x")
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("debug")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)

	level, err = ParseLevel("WARN")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, level)

	_, err = ParseLevel("loud")
	assert.Error(t, err)
}
