package events

import (
	"sync"
	"time"
)

// Sink receives every published event in publish order.
type Sink interface {
	Append(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Append calls f(evt).
func (f SinkFunc) Append(evt Event) {
	f(evt)
}

// Hub stores recent events and fans them out to sinks. Sinks are called
// synchronously from Publish, outside the hub lock.
type Hub struct {
	mu       sync.Mutex
	capacity int
	buffer   []Event
	nextSeq  uint64
	sinks    []Sink

	// publishMu keeps sink delivery in sequence order across publishers.
	publishMu sync.Mutex
}

// NewHub constructs a bounded in-memory event buffer.
func NewHub(capacity int) *Hub {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Hub{capacity: capacity}
}

// AddSink wires a sink that receives every subsequent event.
func (h *Hub) AddSink(sink Sink) {
	if h == nil || sink == nil {
		return
	}
	h.mu.Lock()
	h.sinks = append(h.sinks, sink)
	h.mu.Unlock()
}

// Publish stamps evt with a sequence number and timestamp, buffers it, and
// delivers it to sinks. It returns the stamped event.
func (h *Hub) Publish(evt Event) Event {
	if h == nil {
		return evt
	}
	h.publishMu.Lock()
	defer h.publishMu.Unlock()

	h.mu.Lock()
	h.nextSeq++
	evt.Sequence = h.nextSeq
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	if len(h.buffer) == h.capacity {
		copy(h.buffer, h.buffer[1:])
		h.buffer = h.buffer[:h.capacity-1]
	}
	h.buffer = append(h.buffer, evt)
	sinks := append([]Sink(nil), h.sinks...)
	h.mu.Unlock()

	for _, sink := range sinks {
		sink.Append(evt)
	}
	return evt
}

// Filter returns buffered events of the given kind for a session; an empty
// sessionID matches every session.
func (h *Hub) Filter(sessionID string, kind Kind) []Event {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Event
	for _, evt := range h.buffer {
		if evt.Kind != kind {
			continue
		}
		if sessionID != "" && evt.SessionID != sessionID {
			continue
		}
		out = append(out, evt)
	}
	return out
}
