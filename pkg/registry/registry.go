package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aretw0/switchboard/pkg/adapters/mock"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/ports"
)

// ErrUnknownTool is returned when a query names a tool that is not registered.
var ErrUnknownTool = errors.New("unknown tool")

// UnknownToolError carries the requested tool name.
type UnknownToolError struct {
	Tool string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("Unknown TAG tool: %s", e.Tool)
}

func (e *UnknownToolError) Is(target error) bool {
	return target == ErrUnknownTool
}

// Registry manages named data sources. It implements ports.ToolDataSource:
// plain queries go to the fallback tool.
type Registry struct {
	mu       sync.RWMutex
	tools    map[string]ports.DataSource
	fallback string
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]ports.DataSource),
	}
}

// NewMockRegistry returns a registry with the canned sheets, notion and crm
// sources, falling back to sheets.
func NewMockRegistry() *Registry {
	r := NewRegistry()
	r.Register(mock.ToolSheets, mock.Sheets)
	r.Register(mock.ToolNotion, mock.Notion)
	r.Register(mock.ToolCRM, mock.CRM)
	r.SetFallback(mock.ToolSheets)
	return r
}

// Register adds a source to the registry. Names are case-insensitive.
// If a source with the same name exists, it is overwritten.
// The first registered source becomes the fallback.
func (r *Registry) Register(name string, source ports.DataSource) {
	name = normalize(name)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[name] = source
	if r.fallback == "" {
		r.fallback = name
	}
}

// SetFallback selects the tool used by Query.
func (r *Registry) SetFallback(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fallback = normalize(name)
}

// Names lists the registered tools, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Source looks up a tool by name.
func (r *Registry) Source(name string) (ports.DataSource, error) {
	r.mu.RLock()
	source, ok := r.tools[normalize(name)]
	r.mu.RUnlock()

	if !ok {
		return nil, &UnknownToolError{Tool: name}
	}
	return source, nil
}

// QueryTool looks up a tool by name and queries it.
func (r *Registry) QueryTool(ctx context.Context, tool, query string) ([]domain.Record, error) {
	source, err := r.Source(tool)
	if err != nil {
		return nil, err
	}
	return source.Query(ctx, query)
}

// Query sends the query to the fallback tool.
func (r *Registry) Query(ctx context.Context, query string) ([]domain.Record, error) {
	r.mu.RLock()
	fallback := r.fallback
	r.mu.RUnlock()

	if fallback == "" {
		return nil, errors.New("registry has no tools")
	}
	return r.QueryTool(ctx, fallback, query)
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
