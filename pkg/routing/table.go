// Package routing loads the routing table: the ordered list of handlers
// declared in a handlers.yaml (or .json) file.
package routing

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/switchboard/pkg/handlers"
	"github.com/aretw0/switchboard/pkg/knowledge"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/aretw0/switchboard/pkg/registry"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ErrEmptyRegistry is returned when a routing table declares no handlers.
var ErrEmptyRegistry = errors.New("routing table declares no handlers")

// Table is the file format. Order is routing priority.
type Table struct {
	Handlers []HandlerConfig `yaml:"handlers" json:"handlers"`
}

// HandlerConfig declares one handler.
type HandlerConfig struct {
	Kind        string         `yaml:"kind" json:"kind"`
	Name        string         `yaml:"name" json:"name"`
	Description string         `yaml:"description" json:"description"`
	Keywords    []string       `yaml:"keywords" json:"keywords"`
	Options     map[string]any `yaml:"options" json:"options"`
}

// Options are the collaborator settings a HandlerConfig may carry.
type Options struct {
	// Knowledge is a JSON or YAML snippet file, relative to the table.
	Knowledge  string `mapstructure:"knowledge"`
	MaxResults int    `mapstructure:"max_results"`
	// Source names a registry tool, or "registry" for the whole registry.
	Source string `mapstructure:"source"`
	// Mailer names an entry of Deps.Mailers.
	Mailer string `mapstructure:"mailer"`
}

// Deps holds the collaborators a table can reference by name.
type Deps struct {
	Tools   *registry.Registry
	Mailers map[string]ports.Mailer
}

// Parse decodes a table. JSON is chosen by the .json extension, YAML otherwise.
func Parse(data []byte, path string) (*Table, error) {
	var t Table
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		if err := json.Unmarshal(data, &t); err != nil {
			return nil, fmt.Errorf("failed to parse routing table: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse routing table: %w", err)
	}
	return &t, nil
}

// Load reads and decodes the table at path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read routing table: %w", err)
	}
	return Parse(data, path)
}

// Build turns the table into handlers, in declaration order.
// Relative knowledge paths resolve against baseDir.
func (t *Table) Build(deps Deps, baseDir string) ([]ports.Handler, error) {
	if len(t.Handlers) == 0 {
		return nil, ErrEmptyRegistry
	}

	out := make([]ports.Handler, 0, len(t.Handlers))
	seen := make(map[string]bool, len(t.Handlers))
	for i, hc := range t.Handlers {
		h, err := hc.build(deps, baseDir)
		if err != nil {
			return nil, fmt.Errorf("handler #%d (%s): %w", i+1, hc.Kind, err)
		}
		if seen[h.Name()] {
			return nil, fmt.Errorf("handler #%d: duplicate name %q", i+1, h.Name())
		}
		seen[h.Name()] = true
		out = append(out, h)
	}
	return out, nil
}

// LoadHandlers is Load followed by Build relative to the table's directory.
func LoadHandlers(path string, deps Deps) ([]ports.Handler, error) {
	t, err := Load(path)
	if err != nil {
		return nil, err
	}
	return t.Build(deps, filepath.Dir(path))
}

func (s HandlerConfig) build(deps Deps, baseDir string) (ports.Handler, error) {
	kind, err := handlers.ParseKind(s.Kind)
	if err != nil {
		return nil, err
	}

	var o Options
	if len(s.Options) > 0 {
		if err := mapstructure.Decode(s.Options, &o); err != nil {
			return nil, fmt.Errorf("failed to decode options: %w", err)
		}
	}

	opts := []handlers.Option{
		handlers.WithName(s.Name),
		handlers.WithDescription(s.Description),
		handlers.WithKeywords(s.Keywords...),
	}

	if o.Knowledge != "" {
		path := o.Knowledge
		if !filepath.IsAbs(path) {
			path = filepath.Join(baseDir, path)
		}
		kb, err := knowledge.LoadStaticProvider(path, o.MaxResults)
		if err != nil {
			return nil, err
		}
		opts = append(opts, handlers.WithKnowledgeBase(kb))
	}

	if o.Source != "" {
		if deps.Tools == nil {
			return nil, fmt.Errorf("source %q requested but no tool registry is configured", o.Source)
		}
		if o.Source == "registry" {
			opts = append(opts, handlers.WithDataSource(deps.Tools))
		} else {
			src, err := deps.Tools.Source(o.Source)
			if err != nil {
				return nil, err
			}
			opts = append(opts, handlers.WithDataSource(src))
		}
	}

	if o.Mailer != "" {
		m, ok := deps.Mailers[o.Mailer]
		if !ok {
			return nil, fmt.Errorf("unknown mailer: %q", o.Mailer)
		}
		opts = append(opts, handlers.WithMailer(m))
	}

	return handlers.New(kind, opts...)
}
