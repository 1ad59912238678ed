package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/digest/pkg/domain"
)

// allRuns is the subscription key receiving every run's events.
const allRuns = "*"

// StreamManager fans lifecycle events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // RunID -> Set of Channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a channel for runID, or for every run when runID is empty.
func (sm *StreamManager) Subscribe(runID string) (chan string, func()) {
	if runID == "" {
		runID = allRuns
	}

	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 16)
	if _, ok := sm.subscribers[runID]; !ok {
		sm.subscribers[runID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[runID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[runID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, runID)
				}
			}
		})
	}
}

// Broadcast delivers msg to runID subscribers and to the catch-all ones.
func (sm *StreamManager) Broadcast(runID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for _, key := range []string{runID, allRuns} {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				sm.logger.Warn("SSE: client buffer full, dropping message", "run_id", runID)
			}
		}
	}
}

// Hooks returns lifecycle hooks that publish every event as JSON.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	publish := func(runID string, v any) {
		b, err := json.Marshal(v)
		if err != nil {
			sm.logger.Error("SSE: event encode failed", "err", err)
			return
		}
		sm.Broadcast(runID, string(b))
	}
	return domain.LifecycleHooks{
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) { publish(e.RunID, e) },
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) { publish(e.RunID, e) },
		OnRunEnd:    func(_ context.Context, e *domain.RunEvent) { publish(e.RunID, e) },
	}
}

// SubscribeEvents handles GET /events (SSE). ?run=ID narrows the stream.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	runID := r.URL.Query().Get("run")
	ch, cancel := s.Streams.Subscribe(runID)
	defer cancel()

	s.logger.Info("SSE: subscribed", "run_id", runID)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "run_id", runID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
