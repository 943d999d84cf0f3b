package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	"github.com/aretw0/switchboard/pkg/domain"
)

// Message is one server-sent event.
type Message struct {
	Type domain.EventType
	Data string
}

// StreamManager fans lifecycle events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[chan Message]struct{}
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[chan Message]struct{}),
	}
}

// Subscribe registers a buffered channel. The returned function unsubscribes and closes it.
func (sm *StreamManager) Subscribe() (<-chan Message, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Message, 16)
	sm.subscribers[ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[ch]; ok {
			delete(sm.subscribers, ch)
			close(ch)
		}
	}
}

// Broadcast delivers msg to every subscriber, dropping it for slow clients.
func (sm *StreamManager) Broadcast(msg Message) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers {
		select {
		case ch <- msg:
		default:
			slog.Warn("SSE: Client buffer full, dropping message", "type", msg.Type)
		}
	}
}

// Hooks publishes every lifecycle event as JSON.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnWorkflowStart:   func(ctx context.Context, e *domain.WorkflowEvent) { sm.publish(e.Type, e) },
		OnHandlerSelected: func(ctx context.Context, e *domain.HandlerEvent) { sm.publish(e.Type, e) },
		OnHandlerReturn:   func(ctx context.Context, e *domain.HandlerEvent) { sm.publish(e.Type, e) },
		OnWorkflowEnd:     func(ctx context.Context, e *domain.WorkflowEvent) { sm.publish(e.Type, e) },
	}
}

func (sm *StreamManager) publish(t domain.EventType, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("SSE: Event encode failed", "error", err)
		return
	}
	sm.Broadcast(Message{Type: t, Data: string(data)})
}

func parseTypes(raw string) map[domain.EventType]bool {
	if raw == "" {
		return nil
	}
	set := make(map[domain.EventType]bool)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			set[domain.EventType(t)] = true
		}
	}
	return set
}
