package event

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func TestDispatcherDeliversToSink(t *testing.T) {
	sink := NewChannelSink(4)
	d := NewDispatcher(Config{Enabled: true, BufferSize: 4}, sink)
	defer d.Close()

	d.Emit(context.Background(), Event{Type: "login_success", UserID: "u1", Success: true})

	select {
	case ev := <-sink.Events():
		if ev.Type != "login_success" || ev.UserID != "u1" {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("event not delivered")
	}
}

func TestDispatcherDisabledIsNil(t *testing.T) {
	d := NewDispatcher(Config{Enabled: false}, NoOpSink{})
	if d != nil {
		t.Fatalf("disabled dispatcher must be nil")
	}
	// Nil receiver is a no-op everywhere.
	d.Emit(context.Background(), Event{Type: "logout"})
	d.Close()
	if d.Dropped() != 0 {
		t.Fatalf("nil dispatcher reported drops")
	}
}

func TestDispatcherDropIfFullCountsDrops(t *testing.T) {
	block := make(chan struct{})
	sink := sinkFunc(func(context.Context, Event) { <-block })

	d := NewDispatcher(Config{Enabled: true, BufferSize: 1, DropIfFull: true}, sink)

	// First event occupies the worker, second fills the buffer, the rest
	// must drop without blocking.
	for i := 0; i < 8; i++ {
		d.Emit(context.Background(), Event{Type: "refresh_success"})
	}
	if d.Dropped() == 0 {
		t.Fatalf("expected dropped events")
	}
	close(block)
	d.Close()
}

func TestDispatcherCloseDrainsBuffer(t *testing.T) {
	var buf bytes.Buffer
	d := NewDispatcher(Config{Enabled: true, BufferSize: 16}, NewJSONWriterSink(&buf))

	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), Event{Type: "logout"})
	}
	d.Close()

	if got := strings.Count(buf.String(), "logout"); got != 5 {
		t.Fatalf("expected 5 drained events, got %d", got)
	}
}

type sinkFunc func(context.Context, Event)

func (f sinkFunc) Emit(ctx context.Context, ev Event) { f(ctx, ev) }
