// Package budget tracks the invocation's fixed wall-clock allowance. The
// deadline is a single absolute point (start + total); it is never extended,
// only consumed, and every phase sizes its own sub-timeout from what is left.
package budget

import (
	"time"

	"audioconvert/pkg/models"
)

// Tracker computes remaining time against the invocation deadline.
type Tracker struct {
	start  time.Time
	total  time.Duration
	margin time.Duration

	// now is swappable for tests.
	now func() time.Time
}

// NewTracker anchors a budget of total at the current instant. margin is the
// slice reserved for response assembly and cleanup; no phase window ever
// includes it.
func NewTracker(total, margin time.Duration) *Tracker {
	return &Tracker{
		start:  time.Now(),
		total:  total,
		margin: margin,
		now:    time.Now,
	}
}

// NewTrackerAt is NewTracker with an injected clock, for tests.
func NewTrackerAt(start time.Time, total, margin time.Duration, now func() time.Time) *Tracker {
	return &Tracker{start: start, total: total, margin: margin, now: now}
}

// Elapsed returns time consumed since invocation start.
func (t *Tracker) Elapsed() time.Duration {
	return t.now().Sub(t.start)
}

// Remaining returns total budget minus elapsed time; never negative.
func (t *Tracker) Remaining() time.Duration {
	rem := t.total - t.Elapsed()
	if rem < 0 {
		return 0
	}
	return rem
}

// PhaseWindow returns the sub-timeout available to a phase that needs at
// least min to be worth starting. The reserved safety margin is subtracted
// first. When the window falls below min the phase must not start: the
// returned error is the typed InsufficientTime failure, making this a
// fail-fast guard rather than a deferred timeout.
func (t *Tracker) PhaseWindow(min time.Duration) (time.Duration, error) {
	window := t.Remaining() - t.margin
	if window < min {
		return 0, models.NewError(models.CodeInsufficientTime,
			"deadline budget exhausted: %dms remaining, phase needs at least %dms",
			t.Remaining().Milliseconds(), min.Milliseconds())
	}
	return window, nil
}
