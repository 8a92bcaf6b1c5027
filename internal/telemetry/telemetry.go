// Package telemetry emits fire-and-forget analytics events. Losing an event
// is never an error.
package telemetry

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one emitted analytics event.
type Event struct {
	ID    string
	Name  string
	Props map[string]any
	At    time.Time
}

// Tracker receives analytics events. Track must not block.
type Tracker interface {
	Track(ctx context.Context, name string, props map[string]any)
}

// Noop drops every event.
type Noop struct{}

func (Noop) Track(context.Context, string, map[string]any) {}

// NewEvent stamps an event with a fresh id and the current time.
func NewEvent(name string, props map[string]any) Event {
	return Event{ID: uuid.NewString(), Name: name, Props: props, At: time.Now()}
}

// LogTracker writes events as structured log lines.
type LogTracker struct {
	logger *slog.Logger
}

// NewLogTracker writes events to w with a text handler. A nil w yields Noop.
func NewLogTracker(w io.Writer) Tracker {
	if w == nil {
		return Noop{}
	}
	return &LogTracker{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (t *LogTracker) Track(ctx context.Context, name string, props map[string]any) {
	t.emit(ctx, NewEvent(name, props))
}

func (t *LogTracker) emit(ctx context.Context, e Event) {
	keys := make([]string, 0, len(e.Props))
	for k := range e.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]any, 0, 4+len(keys)*2)
	attrs = append(attrs, "event_id", e.ID, "event", e.Name)
	for _, k := range keys {
		attrs = append(attrs, k, e.Props[k])
	}
	t.logger.InfoContext(ctx, "telemetry", attrs...)
}

// Sink receives events drained by an AsyncTracker.
type Sink func(Event)

// AsyncTracker buffers events and hands them to a sink on a background
// goroutine. When the buffer is full new events are dropped.
type AsyncTracker struct {
	events chan Event
	sink   Sink

	mu      sync.Mutex
	closed  bool
	dropped int
	done    chan struct{}
}

// NewAsyncTracker starts the drain goroutine. Call Close to stop it.
func NewAsyncTracker(buffer int, sink Sink) *AsyncTracker {
	if buffer <= 0 {
		buffer = 64
	}
	t := &AsyncTracker{
		events: make(chan Event, buffer),
		sink:   sink,
		done:   make(chan struct{}),
	}
	go t.run()
	return t
}

// NewAsyncLogTracker drains into a LogTracker writing to w.
func NewAsyncLogTracker(buffer int, w io.Writer) *AsyncTracker {
	lt, ok := NewLogTracker(w).(*LogTracker)
	if !ok {
		return NewAsyncTracker(buffer, func(Event) {})
	}
	return NewAsyncTracker(buffer, func(e Event) { lt.emit(context.Background(), e) })
}

func (t *AsyncTracker) run() {
	defer close(t.done)
	for e := range t.events {
		t.sink(e)
	}
}

func (t *AsyncTracker) Track(_ context.Context, name string, props map[string]any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	select {
	case t.events <- NewEvent(name, props):
	default:
		t.dropped++
	}
}

// Dropped returns how many events were discarded because the buffer was full.
func (t *AsyncTracker) Dropped() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

// Close stops accepting events and waits for buffered ones to drain.
func (t *AsyncTracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.events)
	t.mu.Unlock()
	<-t.done
}
