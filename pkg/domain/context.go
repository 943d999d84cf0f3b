package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Context is the caller supplied key/value bag passed through to the handler.
// The orchestrator never inspects, copies or persists it.
type Context map[string]any

// String renders the context with keys in sorted order so summaries stay deterministic.
func (c Context) String() string {
	if len(c) == 0 {
		return "{}"
	}

	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", k, c[k])
	}
	b.WriteByte('}')
	return b.String()
}

// GetString returns the value at key when it is a non-empty string.
func (c Context) GetString(key string) (string, bool) {
	v, ok := c[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}
