package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/switchboard/pkg/domain"
)

// Keyword is the reference capability policy: a task is accepted when its
// lowercase form contains any of the keywords.
type Keyword struct {
	name        string
	description string
	keywords    []string
}

// NewKeyword creates a keyword matcher. Keywords are lowercased once here.
func NewKeyword(name, description string, keywords []string) Keyword {
	lowered := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" {
			lowered = append(lowered, kw)
		}
	}
	return Keyword{name: name, description: description, keywords: lowered}
}

func (k Keyword) Name() string        { return k.name }
func (k Keyword) Description() string { return k.description }

// Keywords returns a copy of the keyword set.
func (k Keyword) Keywords() []string {
	return append([]string(nil), k.keywords...)
}

// CanHandle reports whether the task mentions any keyword.
func (k Keyword) CanHandle(task string) bool {
	lower := strings.ToLower(task)
	for _, kw := range k.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Summary is the deterministic line every built-in handler returns.
func (k Keyword) Summary(task string, tc domain.Context, outcome string) string {
	return fmt.Sprintf("%s executed task: '%s' with context: %s. %s", k.name, task, tc, outcome)
}

// Func adapts plain functions to the ports.Handler interface.
type Func struct {
	HandlerName        string
	HandlerDescription string
	Match              func(task string) bool
	Exec               func(ctx context.Context, task string, tc domain.Context) (string, error)
}

func (f Func) Name() string        { return f.HandlerName }
func (f Func) Description() string { return f.HandlerDescription }

func (f Func) CanHandle(task string) bool {
	if f.Match == nil {
		return false
	}
	return f.Match(task)
}

func (f Func) Run(ctx context.Context, task string, tc domain.Context) (string, error) {
	if f.Exec == nil {
		return "", fmt.Errorf("handler %q has no run function", f.HandlerName)
	}
	return f.Exec(ctx, task, tc)
}

// queryFor returns the collaborator query: the KeyQuery override or the task itself.
func queryFor(task string, tc domain.Context) string {
	if q, ok := tc.GetString(domain.KeyQuery); ok {
		return q
	}
	return task
}

func countRecords(n int) string {
	if n == 1 {
		return "1 record"
	}
	return fmt.Sprintf("%d records", n)
}
