package throttler

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidConfig is returned by [Wrap] when fn is nil or the
	// limit or interval is not a positive value. Validation failures
	// carry the offending fields as wrapped [FieldErrors].
	ErrInvalidConfig = errors.New("invalid throttle configuration")

	// ErrAborted settles the [Result] of every call cancelled by
	// [Throttled.Abort]. It signals an expected cancellation, not a
	// failure of the wrapped Func.
	ErrAborted = errors.New("throttled call aborted")
)

// Func is the callable being throttled. Any receiver or captured state
// must be bound into the closure by the caller; the engine only passes
// through the per-call ctx and input value.
type Func[In, Out any] func(ctx context.Context, in In) (Out, error)

// Config defines the throttle's admission policy:
// at most Limit calls per Interval.
type Config struct {
	Limit    int           `json:"limit"    validate:"required,gt=0"`
	Interval time.Duration `json:"interval" validate:"required,gt=0"`
}
