package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/aretw0/switchboard/pkg/domain"
)

const (
	// EnvQuery carries the query to the process.
	EnvQuery = "SWITCHBOARD_QUERY"
	// DefaultTimeout bounds a single run.
	DefaultTimeout = 30 * time.Second
)

// Source implements ports.DataSource by running a local executable.
//
// The query is passed in the environment, never as arguments, so it cannot
// inject flags. Stdout is parsed as a JSON array of objects or a single
// object; any other output becomes one record under "output".
type Source struct {
	cfg     ToolConfig
	baseDir string
}

// NewSource creates a source for the tool. Processes run in baseDir.
func NewSource(cfg ToolConfig, baseDir string) *Source {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Source{cfg: cfg, baseDir: baseDir}
}

// Query runs the process once and returns its records.
func (s *Source) Query(ctx context.Context, query string) ([]domain.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.cfg.Command, s.cfg.Args...)
	cmd.Dir = s.baseDir
	// Give a process that ignores the kill signal a moment before its pipes are closed.
	cmd.WaitDelay = time.Second

	env := cmd.Environ()
	for k, v := range s.cfg.Environment {
		env = append(env, k+"="+v)
	}
	cmd.Env = append(env, EnvQuery+"="+query)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("tool %s: %w", s.cfg.Name, ctx.Err())
		}
		return nil, fmt.Errorf("tool %s: execution failed: %v. Stderr: %s", s.cfg.Name, err, strings.TrimSpace(stderr.String()))
	}

	return parseRecords(stdout.Bytes()), nil
}

func parseRecords(out []byte) []domain.Record {
	trimmed := bytes.TrimSpace(out)
	if len(trimmed) == 0 {
		return []domain.Record{}
	}

	switch trimmed[0] {
	case '[':
		var records []domain.Record
		if err := json.Unmarshal(trimmed, &records); err == nil {
			return records
		}
	case '{':
		var record domain.Record
		if err := json.Unmarshal(trimmed, &record); err == nil {
			return []domain.Record{record}
		}
	}

	// Fallback to string
	return []domain.Record{{"output": string(trimmed)}}
}
