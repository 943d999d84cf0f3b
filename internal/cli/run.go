package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aretw0/switchboard/internal/presentation/tui"
	"github.com/aretw0/switchboard/pkg/domain"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	Task    string
	Context domain.Context
	JSON    bool
	Timeout time.Duration
	// Render formats the markdown output; nil prints it raw.
	Render tui.Renderer
}

// JSONRequest is one line of NDJSON input in --json mode.
type JSONRequest struct {
	Task    string         `json:"task"`
	Context domain.Context `json:"context,omitempty"`
}

// JSONResult is one line of NDJSON output in --json mode.
type JSONResult struct {
	WorkflowID string        `json:"workflow_id,omitempty"`
	Task       string        `json:"task"`
	Status     domain.Status `json:"status"`
	Handler    string        `json:"handler,omitempty"`
	Output     string        `json:"output"`
	Error      string        `json:"error,omitempty"`
	DurationMs int64         `json:"duration_ms"`
}

// NewJSONResult flattens a Result for NDJSON output.
func NewJSONResult(res domain.Result) JSONResult {
	out := JSONResult{
		WorkflowID: res.WorkflowID,
		Task:       res.Task,
		Status:     res.Status,
		Handler:    res.Handler,
		Output:     res.Text(),
		DurationMs: res.Duration.Milliseconds(),
	}
	if res.Err != nil {
		out.Error = res.Err.Error()
	}
	return out
}

// Execute runs a single task, or in JSON mode one task per NDJSON line of in.
func Execute(ctx context.Context, app *App, opts RunOptions, in io.Reader, out io.Writer) error {
	if opts.JSON {
		return handleExecutionError(runJSON(ctx, app, opts, in, out))
	}
	if strings.TrimSpace(opts.Task) == "" {
		return domain.ErrEmptyTask
	}

	res := runOne(ctx, app, opts, opts.Task, opts.Context)
	if res.Status == domain.StatusFailed {
		return res.Err
	}

	text := res.Text()
	if opts.Render != nil && res.Status == domain.StatusCompleted {
		if rendered, err := opts.Render(fmt.Sprintf("**%s**\n\n%s", res.Handler, text)); err == nil {
			text = strings.TrimRight(rendered, "\n")
		}
	}
	fmt.Fprintln(out, text)
	return nil
}

func runOne(ctx context.Context, app *App, opts RunOptions, task string, tc domain.Context) domain.Result {
	clean, err := domain.SanitizeTask(task)
	if err != nil {
		return domain.Result{Task: task, Status: domain.StatusFailed, Err: err}
	}
	task = clean
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	return app.Orchestrator.Run(ctx, task, tc)
}

// runJSON reads requests until EOF. Malformed lines produce an error record
// and do not stop the stream.
func runJSON(ctx context.Context, app *App, opts RunOptions, in io.Reader, out io.Writer) error {
	enc := json.NewEncoder(out)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), domain.DefaultMaxTaskSize*4)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req JSONRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			_ = enc.Encode(JSONResult{Status: domain.StatusFailed, Error: fmt.Sprintf("invalid request: %v", err)})
			continue
		}
		tc := req.Context
		if tc == nil {
			tc = opts.Context
		}
		if err := enc.Encode(NewJSONResult(runOne(ctx, app, opts, req.Task, tc))); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
