package input

import "time"

// GestureAction is the disambiguated outcome of a prev-button press.
type GestureAction int

const (
	// GestureRestart restarts the current track from position zero.
	GestureRestart GestureAction = iota
	// GesturePrevious skips to the previous track.
	GesturePrevious
)

// DoubleTap is a two-state gesture recognizer for the prev button: a
// lone press restarts the track, a second press inside the window is
// reinterpreted as "previous track" and resets the counter.
//
// Single-writer: only the button scan loop observes presses, so no lock.
type DoubleTap struct {
	window time.Duration
	last   time.Time
	count  int
}

// NewDoubleTap creates a recognizer with the given double-press window.
func NewDoubleTap(window time.Duration) *DoubleTap {
	return &DoubleTap{window: window}
}

// Observe records a press at the given instant and returns the action
// it resolves to.
func (g *DoubleTap) Observe(now time.Time) GestureAction {
	if !g.last.IsZero() && now.Sub(g.last) < g.window {
		g.count++
	} else {
		g.count = 1
	}
	g.last = now

	if g.count == 2 {
		g.count = 0
		return GesturePrevious
	}
	return GestureRestart
}
