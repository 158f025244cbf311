// Package event carries observable session-lifecycle notifications: login,
// refresh, verify, logout, and forced logout. UI bindings and navigation
// collaborators subscribe through a [Sink]; emission is asynchronous and
// never blocks the session mutation that produced the event.
//
// # Architecture boundaries
//
// This package owns the event model and dispatch machinery only. It makes
// no decisions about what constitutes a session transition — the root
// package emits, sinks consume.
//
// # What this package must NOT do
//
//   - Perform HTTP calls or touch the credential store.
//   - Block the emitter (buffered channel, optional drop-if-full).
//   - Import the root package or any sibling.
package event

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Event is one observable session transition.
type Event struct {
	Timestamp time.Time         `json:"timestamp"`
	Type      string            `json:"type"`
	UserID    string            `json:"user_id,omitempty"`
	Email     string            `json:"email,omitempty"`
	Success   bool              `json:"success"`
	Error     string            `json:"error,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Sink receives emitted events.
type Sink interface {
	Emit(ctx context.Context, event Event)
}

// NoOpSink drops all events.
type NoOpSink struct{}

// Emit implements [Sink].
func (NoOpSink) Emit(context.Context, Event) {}

// ChannelSink forwards events into a buffered channel, for callers that
// want to range over transitions (UI state binding).
type ChannelSink struct {
	events chan Event
}

// NewChannelSink creates a ChannelSink with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{events: make(chan Event, buffer)}
}

// Emit implements [Sink].
func (s *ChannelSink) Emit(ctx context.Context, event Event) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

// Events returns the receive side of the sink.
func (s *ChannelSink) Events() <-chan Event {
	return s.events
}

// JSONWriterSink writes one JSON object per line.
type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONWriterSink creates a JSONWriterSink that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{writer: w}
}

// Emit implements [Sink].
func (s *JSONWriterSink) Emit(ctx context.Context, event Event) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}
