// Package trace provides the per-invocation diagnostic trace: an append-only,
// timestamped sequence of event lines threaded through each pipeline phase.
// The trace is surfaced at the HTTP boundary for diagnostics only; nothing in
// the pipeline reads it back to make a control decision.
package trace

import (
	"fmt"
	"sync"
	"time"
)

// Event is a single timestamped trace line.
type Event struct {
	At  time.Time
	Msg string
}

// Recorder accumulates events for one invocation. It is safe for concurrent
// use, though the pipeline itself is strictly sequential.
type Recorder struct {
	mu     sync.Mutex
	start  time.Time
	events []Event
}

// NewRecorder creates a Recorder anchored at now; event lines are prefixed
// with the offset from this anchor.
func NewRecorder() *Recorder {
	return &Recorder{start: time.Now()}
}

// Addf appends a formatted event.
func (r *Recorder) Addf(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Event{At: time.Now(), Msg: fmt.Sprintf(format, args...)})
}

// Lines renders the events as "+123ms message" strings in append order.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = fmt.Sprintf("+%dms %s", e.At.Sub(r.start).Milliseconds(), e.Msg)
	}
	return out
}

// Len returns the number of recorded events.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}
