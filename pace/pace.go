package pace

import (
	"errors"
	"time"
)

// ErrMustNotBeZero is the sentinel error returned by the pacer
// constructors when a limit, interval, rate, or burst is not a
// positive value.
var ErrMustNotBeZero = errors.New("must be greater than zero")

// Limiter computes how long an admitted call must wait before it may
// run. Reserve mutates internal state as if the call fires after the
// returned delay, so every call must be reserved exactly once.
//
// Implementations are not safe for concurrent use on their own; the
// caller serializes access. The throttle engine holds its own mutex
// around the reserve-register-schedule sequence.
type Limiter interface {
	// Reserve admits a call at now and returns its non-negative
	// execution delay.
	Reserve(now time.Time) time.Duration

	// Reset drops any per-call admission history. Pacers that keep
	// only aggregate state treat this as a no-op.
	Reset()
}
