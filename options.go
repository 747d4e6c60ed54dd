package throttler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/throttler/pace"
)

// Option is a functional option for configuring a [Throttled] via [Wrap].
type Option func(*options) error

type options struct {
	strict   bool
	pacer    pace.Limiter
	logger   *slog.Logger
	tracer   trace.Tracer
	onDelay  func(delay time.Duration, queued int)
	abortCtx context.Context
}

// WithStrict selects the exact sliding-window pacer instead of the
// default fixed-window one. Overflow calls are spaced out so that no
// interval-length window ever holds more than the limit, at the cost
// of remembering one timestamp per admitted call.
func WithStrict() Option {
	return func(o *options) error {
		o.strict = true
		return nil
	}
}

// WithLimiter replaces the built-in pacers with a custom
// [pace.Limiter], such as [pace.Bucket]. The limit and interval given
// to [Wrap] are still validated, but pacing decisions come entirely
// from the supplied limiter. WithStrict has no effect when combined
// with this option.
func WithLimiter(p pace.Limiter) Option {
	return func(o *options) error {
		if p == nil {
			return errors.New("limiter must not be nil")
		}
		o.pacer = p
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Throttled].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithTracer injects the given tracer into the [Throttled]. Each fired
// invocation runs under a span carrying the call id and its computed
// delay.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		o.tracer = tracer
		return nil
	}
}

// WithOnDelay registers fn to be invoked whenever a call is admitted
// with a positive delay, reporting the delay and the queue size at
// admission. fn runs on the calling goroutine and must not block.
func WithOnDelay(fn func(delay time.Duration, queued int)) Option {
	return func(o *options) error {
		if fn == nil {
			return errors.New("delay func must not be nil")
		}
		o.onDelay = fn
		return nil
	}
}

// WithAbortContext ties the engine to ctx: when ctx is done, every
// queued call is rejected as if [Throttled.Abort] had been called.
func WithAbortContext(ctx context.Context) Option {
	return func(o *options) error {
		if ctx == nil {
			return errors.New("context must not be nil")
		}
		o.abortCtx = ctx
		return nil
	}
}
