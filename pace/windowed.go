package pace

import (
	"fmt"
	"time"
)

// Windowed is the approximate fixed-window pacer. Calls admitted while
// the current window has capacity run immediately; once the window is
// full it advances one interval and every overflow call receives the
// same next-boundary delay, so a burst beyond the limit fires together
// at the boundary rather than spaced apart.
type Windowed struct {
	limit    int
	interval time.Duration

	windowStart time.Time
	active      int
}

var _ Limiter = &Windowed{}

// NewWindowed returns a Windowed pacer admitting up to limit calls per
// interval.
func NewWindowed(limit int, interval time.Duration) (*Windowed, error) {
	if limit <= 0 || interval <= 0 {
		return nil, fmt.Errorf("limit[%d] and interval[%s] %w", limit, interval, ErrMustNotBeZero)
	}

	return &Windowed{
		limit:    limit,
		interval: interval,
	}, nil
}

// Reserve admits a call at now. A call arriving more than one interval
// after the window opened starts a fresh window and runs immediately.
// Otherwise the call joins the current window, advancing it by one
// interval first when it is already full. The delay is the time left
// until the window it joined begins, clamped to zero for windows
// already open.
func (w *Windowed) Reserve(now time.Time) time.Duration {
	if now.Sub(w.windowStart) > w.interval {
		w.windowStart = now
		w.active = 1
		return 0
	}

	if w.active < w.limit {
		w.active++
	} else {
		w.windowStart = w.windowStart.Add(w.interval)
		w.active = 1
	}

	if delay := w.windowStart.Sub(now); delay > 0 {
		return delay
	}

	return 0
}

// Reset is a no-op. The window holds aggregate counters rather than
// per-call history, and they remain valid for the next boundary.
func (w *Windowed) Reset() {}
