package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
)

// Mask replaces every redacted span.
const Mask = "***"

// DefaultPIIPatterns match email addresses and US social security numbers.
var DefaultPIIPatterns = []string{
	`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`,
	`\b\d{3}-\d{2}-\d{4}\b`,
}

type piiMiddleware struct {
	next     ports.TranscriptStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks the parts of entry
// content matching any of the patterns before they reach the store.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redaction pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.TranscriptStore) ports.TranscriptStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Append(ctx context.Context, entries ...domain.Entry) error {
	// Entries are values, so the caller's copies stay untouched.
	masked := make([]domain.Entry, len(entries))
	for i, e := range entries {
		for _, p := range m.patterns {
			e.Content = p.ReplaceAllString(e.Content, Mask)
		}
		masked[i] = e
	}
	return m.next.Append(ctx, masked...)
}

func (m *piiMiddleware) Entries(ctx context.Context) ([]domain.Entry, error) {
	return m.next.Entries(ctx)
}

func (m *piiMiddleware) Reset(ctx context.Context) error {
	return m.next.Reset(ctx)
}

func (m *piiMiddleware) Close() error {
	return m.next.Close()
}
