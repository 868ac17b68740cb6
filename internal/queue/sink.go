package queue

import (
	"context"
	"sync"
)

// Sink receives events after the originating transaction has committed.
// Implementations must not block the caller for long.
type Sink interface {
	Publish(ctx context.Context, ev Event)
}

type discard struct{}

func (discard) Publish(context.Context, Event) {}

// Discard drops every event.
var Discard Sink = discard{}

// Fanout delivers each event to every non-nil sink in order.
type Fanout []Sink

func (f Fanout) Publish(ctx context.Context, ev Event) {
	for _, s := range f {
		if s != nil {
			s.Publish(ctx, ev)
		}
	}
}

// Recorder keeps published events in memory. Used in tests.
type Recorder struct {
	mu     sync.Mutex
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, ev)
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, ev := range r.Events {
		out = append(out, ev.Type)
	}
	return out
}

// Last returns the most recent event of type typ.
func (r *Recorder) Last(typ string) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.Events) - 1; i >= 0; i-- {
		if r.Events[i].Type == typ {
			return r.Events[i], true
		}
	}
	return Event{}, false
}
