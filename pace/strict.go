package pace

import (
	"fmt"
	"time"
)

// Strict is the exact sliding-window pacer. It remembers the effective
// execution time of the last limit admissions, oldest first. A call
// arriving at capacity is scheduled for the moment the oldest admission
// leaves the window, so any window of one interval, ending at any
// instant, holds at most limit execution times.
type Strict struct {
	limit    int
	interval time.Duration

	// ticks holds up to limit effective execution times, oldest
	// first and non-decreasing.
	ticks []time.Time
}

var _ Limiter = &Strict{}

// NewStrict returns a Strict pacer admitting up to limit calls per
// sliding interval.
func NewStrict(limit int, interval time.Duration) (*Strict, error) {
	if limit <= 0 || interval <= 0 {
		return nil, fmt.Errorf("limit[%d] and interval[%s] %w", limit, interval, ErrMustNotBeZero)
	}

	return &Strict{
		limit:    limit,
		interval: interval,
		ticks:    make([]time.Time, 0, limit),
	}, nil
}

// Reserve admits a call at now. Below capacity the call runs
// immediately and now is recorded. At capacity the oldest admission is
// dropped: if it left the sliding window already, the call runs
// immediately; otherwise the call inherits that admission's expiry as
// its own execution time and waits out the difference.
func (s *Strict) Reserve(now time.Time) time.Duration {
	if len(s.ticks) < s.limit {
		s.ticks = append(s.ticks, now)
		return 0
	}

	expiry := s.ticks[0].Add(s.interval)

	if !now.Before(expiry) {
		s.shift(now)
		return 0
	}

	s.shift(expiry)

	return expiry.Sub(now)
}

// Reset clears the admission history, so the next limit calls run
// immediately regardless of how recently earlier calls were admitted.
func (s *Strict) Reset() {
	s.ticks = s.ticks[:0]
}

// shift drops the oldest admission and records t as the newest,
// reusing the backing array.
func (s *Strict) shift(t time.Time) {
	copy(s.ticks, s.ticks[1:])
	s.ticks[len(s.ticks)-1] = t
}
