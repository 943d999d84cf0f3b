package http

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
	"github.com/aretw0/switchboard/pkg/ports"
	"github.com/go-chi/chi/v5"
)

// Engine is the orchestrator surface served over HTTP.
type Engine interface {
	Run(ctx context.Context, task string, tc domain.Context) domain.Result
	SelectHandler(task string) (ports.Handler, error)
	Handlers() []ports.Handler
	Transcript(ctx context.Context) ([]domain.Entry, error)
	ResetTranscript(ctx context.Context) error
}

// Server holds the HTTP handlers.
type Server struct {
	Engine  Engine
	Streams *StreamManager
	metrics http.Handler
}

// Option configures the HTTP handler.
type Option func(*Server)

// WithStreams serves GET /events from sm. Pass sm.Hooks() to the orchestrator.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	server := &Server{Engine: engine}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Post("/workflows", server.RunWorkflow)
	r.Post("/route", server.Route)
	r.Get("/handlers", server.ListHandlers)
	r.Get("/transcript", server.GetTranscript)
	r.Delete("/transcript", server.ResetTranscript)
	r.Get("/healthz", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if server.Streams != nil {
		r.Get("/events", server.SubscribeEvents)
	}
	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics)
	}

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WorkflowRequest is the body of POST /workflows and POST /route.
type WorkflowRequest struct {
	Task    string         `json:"task"`
	Context domain.Context `json:"context,omitempty"`
}

// WorkflowResponse is the body returned by POST /workflows.
type WorkflowResponse struct {
	WorkflowID string        `json:"workflow_id"`
	Task       string        `json:"task"`
	Status     domain.Status `json:"status"`
	Handler    string        `json:"handler,omitempty"`
	Output     string        `json:"output"`
	Error      string        `json:"error,omitempty"`
	DurationMS int64         `json:"duration_ms"`
}

// HandlerInfo describes a registered handler.
type HandlerInfo struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
}

type keyworded interface {
	Keywords() []string
}

func describe(h ports.Handler) HandlerInfo {
	info := HandlerInfo{Name: h.Name(), Description: h.Description()}
	if k, ok := h.(keyworded); ok {
		info.Keywords = k.Keywords()
	}
	return info
}

func decodeTask(w http.ResponseWriter, r *http.Request, op string) (WorkflowRequest, bool) {
	var body WorkflowRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		slog.Warn(op+": Invalid request body", "error", err)
		return body, false
	}
	clean, err := domain.SanitizeTask(body.Task)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid task: %v", err), http.StatusBadRequest)
		slog.Warn(op+": Task rejected", "error", err, "size", len(body.Task))
		return body, false
	}
	body.Task = clean
	return body, true
}

// RunWorkflow handles the POST /workflows request.
// Unroutable tasks are a normal outcome and answer 200 with the error text as output.
func (s *Server) RunWorkflow(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeTask(w, r, "RunWorkflow")
	if !ok {
		return
	}

	res := s.Engine.Run(r.Context(), body.Task, body.Context)
	resp := WorkflowResponse{
		WorkflowID: res.WorkflowID,
		Task:       res.Task,
		Status:     res.Status,
		Handler:    res.Handler,
		Output:     res.Text(),
		DurationMS: res.Duration.Milliseconds(),
	}

	code := http.StatusOK
	if res.Status == domain.StatusFailed {
		resp.Error = res.Err.Error()
		code = statusFor(res.Err)
		slog.Error("Workflow failed", "workflow_id", res.WorkflowID, "error", res.Err)
	}
	writeJSON(w, code, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyTask):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrHandlerExecution):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Route handles the POST /route request: selection only, nothing is run or recorded.
func (s *Server) Route(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeTask(w, r, "Route")
	if !ok {
		return
	}

	h, err := s.Engine.SelectHandler(body.Task)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, describe(h))
}

// ListHandlers handles the GET /handlers request, in routing order.
func (s *Server) ListHandlers(w http.ResponseWriter, r *http.Request) {
	hs := s.Engine.Handlers()
	infos := make([]HandlerInfo, len(hs))
	for i, h := range hs {
		infos[i] = describe(h)
	}
	writeJSON(w, http.StatusOK, infos)
}

// GetTranscript handles the GET /transcript request.
func (s *Server) GetTranscript(w http.ResponseWriter, r *http.Request) {
	entries, err := s.Engine.Transcript(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Transcript error: %v", err), http.StatusInternalServerError)
		slog.Error("Transcript read failed", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// ResetTranscript handles the DELETE /transcript request.
func (s *Server) ResetTranscript(w http.ResponseWriter, r *http.Request) {
	if err := s.Engine.ResetTranscript(r.Context()); err != nil {
		http.Error(w, fmt.Sprintf("Reset error: %v", err), http.StatusInternalServerError)
		slog.Error("Transcript reset failed", "error", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles the GET /healthz request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"app":      "switchboard-http",
		"version":  switchboard.Version,
		"handlers": len(s.Engine.Handlers()),
	})
}

// SubscribeEvents handles the GET /events request (SSE).
// The optional types query parameter filters by event type, comma separated.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		slog.Error("SubscribeEvents: Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	filter := parseTypes(r.URL.Query().Get("types"))
	ch, cancel := s.Streams.Subscribe()
	defer cancel()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			slog.Debug("SSE client disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if len(filter) > 0 && !filter[msg.Type] {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Type, msg.Data)
			flusher.Flush()
		}
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encode failed", "error", err)
	}
}

// NewServer wraps the handler with the timeouts used by `switchboard serve`.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}
