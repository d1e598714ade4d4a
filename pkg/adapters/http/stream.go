package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/tapestry"
	"github.com/aretw0/tapestry/internal/logging"
	"github.com/aretw0/tapestry/pkg/domain"
)

// Event kinds pushed to SSE subscribers.
const (
	EventMutation  = "mutation"
	EventHistory   = "history"
	EventTelemetry = "telemetry"
)

// Event is one message on a session stream.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- Event]struct{} // SessionID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- Event]struct{}),
		logger:      logger,
	}
}

func (sm *StreamManager) Subscribe(sessionID string) (chan Event, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Event, 32)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- Event]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// Subscribers returns the number of open streams for a session.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

func (sm *StreamManager) Broadcast(sessionID string, ev Event) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- ev:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: Client buffer full, dropping message", "session_id", sessionID, "type", ev.Type)
		}
	}
}

// Hooks returns lifecycle hooks that broadcast the editor's events on the
// session stream. Install them through the session factory.
func (sm *StreamManager) Hooks(sessionID string) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMutation: func(e *domain.MutationEvent) {
			sm.Broadcast(sessionID, Event{Type: EventMutation, Payload: *e})
		},
		OnHistory: func(e *domain.HistoryEvent) {
			sm.Broadcast(sessionID, Event{Type: EventHistory, Payload: *e})
		},
		OnTelemetry: func(e *domain.TelemetryEvent) {
			sm.Broadcast(sessionID, Event{Type: EventTelemetry, Payload: *e})
		},
	}
}

// SubscribeEvents handles GET /sessions/{sessionID}/events (SSE).
// ?watch=mutation,history filters the event types.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	err := s.Sessions.WithEditor(r.Context(), sessionID, func(context.Context, *tapestry.Editor) error { return nil })
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	watch := make(map[string]bool)
	if q := r.URL.Query().Get("watch"); q != "" {
		for _, field := range strings.Split(q, ",") {
			watch[strings.TrimSpace(field)] = true
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()
	s.logger.Info("SSE: Subscribing to Session Updates", "session_id", sessionID)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE Client Disconnected", "session_id", sessionID)
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if len(watch) > 0 && !watch[ev.Type] {
				continue
			}
			data, err := json.Marshal(ev)
			if err != nil {
				s.logger.Error("SSE: event encode failed", "err", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
			flusher.Flush()
		}
	}
}
