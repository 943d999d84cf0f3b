package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/switchboard"
	"github.com/aretw0/switchboard/pkg/domain"
	"github.com/aretw0/switchboard/pkg/handlers"
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// TranscriptURI is the resource exposing the shared transcript.
const TranscriptURI = "switchboard://transcript"

// WorkflowResponse is the structured output of run_workflow.
type WorkflowResponse struct {
	WorkflowID string        `json:"workflow_id" jsonschema_description:"Identifier of the workflow"`
	Status     domain.Status `json:"status" jsonschema_description:"completed, unroutable or failed"`
	Handler    string        `json:"handler,omitempty" jsonschema_description:"Name of the handler that ran the task"`
	Output     string        `json:"output" jsonschema_description:"Handler output, or the routing error for unroutable tasks"`
}

// RunArgs are the arguments of run_workflow.
type RunArgs struct {
	Task    string `json:"task"`
	Context string `json:"context"`
}

// Engine defines the orchestrator surface required by the MCP server.
type Engine interface {
	Run(ctx context.Context, task string, tc domain.Context) domain.Result
	SelectHandler(task string) (ports.Handler, error)
	Handlers() []ports.Handler
	Transcript(ctx context.Context) ([]domain.Entry, error)
}

// Server wraps the orchestrator and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("switchboard-mcp", switchboard.Version),
	}
	s.registerTools()
	s.registerResources()
	s.registerPrompts()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		slog.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		fmt.Println("\nShutdown signal received, shutting down server...")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	// TOOL: run_workflow
	runTool := mcp.NewTool("run_workflow",
		mcp.WithDescription("Route a task to the first matching handler, run it and record both sides in the transcript."),
		mcp.WithString("task", mcp.Required(), mcp.Description("Free-text task description")),
		mcp.WithString("context", mcp.Description("JSON object of context values (optional)")),
		mcp.WithOutputSchema[WorkflowResponse](),
	)
	s.mcpServer.AddTool(runTool, mcp.NewStructuredToolHandler(s.handleRunWorkflow))

	// TOOL: route_task
	s.mcpServer.AddTool(mcp.NewTool("route_task",
		mcp.WithDescription("Report which handler would take a task, without running it."),
		mcp.WithString("task", mcp.Required(), mcp.Description("Free-text task description")),
	), s.handleRouteTask)

	// TOOL: list_handlers
	s.mcpServer.AddTool(mcp.NewTool("list_handlers",
		mcp.WithDescription("List the registered handlers in routing order."),
	), s.handleListHandlers)
}

func (s *Server) handleRunWorkflow(ctx context.Context, request mcp.CallToolRequest, args RunArgs) (WorkflowResponse, error) {
	task, err := domain.SanitizeTask(args.Task)
	if err != nil {
		slog.Warn("MCP run_workflow: Task rejected", "error", err, "size", len(args.Task))
		return WorkflowResponse{}, fmt.Errorf("task rejected: %w", err)
	}

	var tc domain.Context
	if args.Context != "" {
		if err := json.Unmarshal([]byte(args.Context), &tc); err != nil {
			return WorkflowResponse{}, fmt.Errorf("context must be a JSON object: %w", err)
		}
	}

	res := s.engine.Run(ctx, task, tc)
	if res.Status == domain.StatusFailed {
		return WorkflowResponse{}, fmt.Errorf("workflow %s failed: %w", res.WorkflowID, res.Err)
	}
	return WorkflowResponse{
		WorkflowID: res.WorkflowID,
		Status:     res.Status,
		Handler:    res.Handler,
		Output:     res.Text(),
	}, nil
}

func (s *Server) handleRouteTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	task, err := request.RequireString("task")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	h, err := s.engine.SelectHandler(task)
	if err != nil {
		if errors.Is(err, domain.ErrNoHandlerFound) {
			return mcp.NewToolResultText(domain.ErrorPrefix + err.Error()), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s: %s", h.Name(), h.Description())), nil
}

type handlerInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleListHandlers(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	hs := s.engine.Handlers()
	infos := make([]handlerInfo, len(hs))
	for i, h := range hs {
		infos[i] = handlerInfo{Name: h.Name(), Description: h.Description()}
	}
	jsonBytes, _ := json.Marshal(infos)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) registerResources() {
	// EXPOSE: switchboard://transcript
	s.mcpServer.AddResource(mcp.NewResource(TranscriptURI, "Shared Transcript",
		mcp.WithMIMEType("application/json"),
	), s.readTranscript)
}

func (s *Server) readTranscript(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	entries, err := s.engine.Transcript(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	jsonBytes, _ := json.Marshal(entries)

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      TranscriptURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func (s *Server) registerPrompts() {
	s.mcpServer.AddPrompt(mcp.NewPrompt("general_task",
		mcp.WithPromptDescription("Task prompt carrying the shared transcript as conversation history."),
		mcp.WithArgument("task", mcp.RequiredArgument(), mcp.ArgumentDescription("Task description")),
	), s.handleGeneralPrompt)
}

func (s *Server) handleGeneralPrompt(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	task := request.Params.Arguments["task"]
	if task == "" {
		return nil, errors.New("task argument is required")
	}
	history, err := s.engine.Transcript(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	return mcp.NewGetPromptResult("General task prompt", []mcp.PromptMessage{
		mcp.NewPromptMessage(mcp.RoleUser, mcp.NewTextContent(handlers.RenderGeneralPrompt(history, task))),
	}), nil
}
