package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Type names a lifecycle event emitted by the session layer.
type Type string

const (
	TypeLoadProgress Type = "load.progress"
	TypeLoadSuccess  Type = "load.success"
	TypeLoadFailure  Type = "load.failure"
	TypePageError    Type = "page.error"
)

// Event is a structured, named notification with a payload object.
type Event struct {
	ID      string         `json:"id"`
	Type    Type           `json:"type"`
	Time    time.Time      `json:"time"`
	Payload map[string]any `json:"payload"`
}

// NewEvent stamps an event with an ID and timestamp.
func NewEvent(t Type, payload map[string]any) Event {
	if payload == nil {
		payload = map[string]any{}
	}
	return Event{
		ID:      uuid.NewString(),
		Type:    t,
		Time:    time.Now(),
		Payload: payload,
	}
}

// Sink receives events. Publish must not block the caller for long:
// the foreground open/getPage paths emit events inline.
type Sink interface {
	Publish(Event)
}

// Sinks fans one event out to several sinks.
type Sinks []Sink

func (s Sinks) Publish(e Event) {
	for _, sink := range s {
		sink.Publish(e)
	}
}

// LogSink mirrors events into a structured logger.
type LogSink struct {
	Log *slog.Logger
}

func (s *LogSink) Publish(e Event) {
	s.Log.Info("event", "event_id", e.ID, "type", string(e.Type), "payload", e.Payload)
}

// Hub is a fan-out sink for live subscribers (e.g. an SSE stream). Slow
// subscribers drop events rather than stalling the publisher.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]struct{})}
}

// Subscribe returns a channel of events and a cancel func. The channel
// is closed on cancel.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 64)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

func (h *Hub) Publish(e Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		select {
		case ch <- e:
		default:
			// Subscriber is behind; drop rather than block.
		}
	}
}

// Close drops all subscribers.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs {
		delete(h.subs, ch)
		close(ch)
	}
}
