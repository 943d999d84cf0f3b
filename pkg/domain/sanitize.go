package domain

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxTaskSize is 4KB.
	DefaultMaxTaskSize = 4096
	// EnvMaxTaskSize overrides DefaultMaxTaskSize.
	EnvMaxTaskSize = "SWITCHBOARD_MAX_TASK_SIZE"
)

var (
	ErrTaskTooLarge = errors.New("task exceeds maximum allowed size")
	ErrInvalidUTF8  = errors.New("task contains invalid UTF-8 sequences")
)

// SanitizeTask is applied to tasks arriving from outer surfaces (CLI, HTTP,
// MCP, queues). Oversized tasks are rejected rather than truncated, and
// control characters other than newline, tab and carriage return are removed.
func SanitizeTask(task string) (string, error) {
	limit := maxTaskSize()
	if len(task) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrTaskTooLarge, len(task), limit)
	}

	if !utf8.ValidString(task) {
		return "", ErrInvalidUTF8
	}

	clean := true
	for _, r := range task {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return task, nil
	}

	var b strings.Builder
	b.Grow(len(task))
	for _, r := range task {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func maxTaskSize() int {
	if val := os.Getenv(EnvMaxTaskSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxTaskSize
}
