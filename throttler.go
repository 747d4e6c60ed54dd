package throttler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/throttler/pace"
)

// Throttled wraps a [Func] so that at most a configured number of
// invocations fire per interval. Excess calls are queued and fire
// after a computed delay instead of being rejected. Construct with
// [Wrap]; the zero value is not usable.
type Throttled[In, Out any] struct {
	fn      Func[In, Out]
	cfg     Config
	mode    string
	logger  *slog.Logger
	tracer  trace.Tracer
	onDelay func(delay time.Duration, queued int)

	enabled atomic.Bool

	// mu guards pacer and reg together: reserving a delay and
	// registering the pending call must be one atomic step, or two
	// racing calls could both be admitted into the same window slot.
	mu    sync.Mutex
	pacer pace.Limiter
	reg   *registry[Out]
}

// Wrap returns a [Throttled] engine around fn admitting up to limit
// calls per interval. The default pacer is the approximate fixed
// window; see [WithStrict] and [WithLimiter] for the alternatives.
// Wrap fails with [ErrInvalidConfig] when fn is nil or limit or
// interval is not positive.
func Wrap[In, Out any](fn Func[In, Out], limit int, interval time.Duration, optFns ...Option) (*Throttled[In, Out], error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: fn must not be nil", ErrInvalidConfig)
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying throttle option: %w", err)
		}
	}

	cfg := Config{Limit: limit, Interval: interval}
	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	t := &Throttled[In, Out]{
		fn:      fn,
		cfg:     cfg,
		logger:  slog.Default(),
		tracer:  noop.NewTracerProvider().Tracer("no-op tracer"),
		onDelay: opts.onDelay,
		reg:     newRegistry[Out](),
	}
	t.enabled.Store(true)

	switch {
	case opts.pacer != nil:
		t.pacer = opts.pacer
		t.mode = "custom"
	case opts.strict:
		p, err := pace.NewStrict(limit, interval)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		t.pacer = p
		t.mode = "strict"
	default:
		p, err := pace.NewWindowed(limit, interval)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
		}
		t.pacer = p
		t.mode = "windowed"
	}

	if opts.logger != nil {
		t.logger = opts.logger
	}
	if opts.tracer != nil {
		t.tracer = opts.tracer
	}
	if opts.abortCtx != nil {
		context.AfterFunc(opts.abortCtx, t.Abort)
	}

	return t, nil
}

// Call schedules one invocation of the wrapped Func with the given
// input and returns immediately with a [Result] that settles when the
// call fires, fails, or is aborted. Calls are admitted in invocation
// order; a delay of zero still fires asynchronously, never on the
// calling goroutine. If the engine is disabled, fn runs inline and the
// returned Result is already settled.
//
// A ctx that ends while the call is queued settles the Result with
// ctx.Err() without firing; the admission it consumed is not returned
// to the pacer.
func (t *Throttled[In, Out]) Call(ctx context.Context, in In) *Result[Out] {
	res := newResult[Out]()

	if !t.enabled.Load() {
		res.settle(t.invoke(ctx, in, uuid.New(), 0))
		return res
	}

	t.mu.Lock()
	delay := t.pacer.Reserve(time.Now())
	pc := t.reg.add(res, delay)
	queued := t.reg.size()
	t.mu.Unlock()

	if delay > 0 {
		t.logger.Debug("throttle engaged",
			"call", pc.uid.String(), "delay", delay.String(), "queued", queued,
			"limit", t.cfg.Limit, "interval", t.cfg.Interval.String())

		if t.onDelay != nil {
			t.onDelay(delay, queued)
		}
	}

	go t.fire(ctx, in, pc)

	return res
}

// QueueSize reports the number of scheduled calls that have not yet
// fired or been aborted.
func (t *Throttled[In, Out]) QueueSize() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.reg.size()
}

// Abort cancels every queued call, settling each Result with
// [ErrAborted] in registration order before returning. The strict
// pacer's admission history is cleared so aborted calls don't count
// against future ones; the windowed pacer keeps its aggregate window.
// Aborting an empty queue is a no-op.
func (t *Throttled[In, Out]) Abort() {
	t.mu.Lock()
	drained := t.reg.drain()
	t.pacer.Reset()
	t.mu.Unlock()

	if len(drained) == 0 {
		return
	}

	var zero Out
	for _, pc := range drained {
		pc.timer.Stop()
		pc.result.settle(zero, ErrAborted)
		close(pc.aborted)
	}

	t.logger.Debug("throttle aborted", "rejected", len(drained))
}

// Enable resumes throttling of subsequent calls.
func (t *Throttled[In, Out]) Enable() {
	t.enabled.Store(true)
}

// Disable turns throttling off: subsequent calls run inline with no
// delay, no queue entry, and no effect on pacer state. Calls already
// queued keep their original schedule.
func (t *Throttled[In, Out]) Disable() {
	t.enabled.Store(false)
}

// Enabled reports whether calls are currently being throttled.
func (t *Throttled[In, Out]) Enabled() bool {
	return t.enabled.Load()
}

// fire waits out the pending call's delay and runs the wrapped Func.
// Whoever claims the call from the registry first settles it: the
// timer path invokes fn, the context path settles with ctx.Err(), and
// an abort settles it elsewhere.
func (t *Throttled[In, Out]) fire(ctx context.Context, in In, pc *pendingCall[Out]) {
	defer pc.timer.Stop()

	select {
	case <-pc.timer.C:
		if !t.claim(pc.id) {
			return
		}

		if err := ctx.Err(); err != nil { // Check the call's context hasn't ended while queued.
			var zero Out
			pc.result.settle(zero, err)
			return
		}

		pc.result.settle(t.invoke(ctx, in, pc.uid, pc.delay))

	case <-ctx.Done():
		if !t.claim(pc.id) {
			return
		}

		var zero Out
		pc.result.settle(zero, ctx.Err())

	case <-pc.aborted:
	}
}

// claim removes the pending call from the registry, reporting whether
// the caller owns its settlement.
func (t *Throttled[In, Out]) claim(id uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.reg.claim(id)
}

// invoke runs the wrapped Func under a span, converting panics into
// errors so a panicking callee surfaces on the Result instead of
// killing the firing goroutine.
func (t *Throttled[In, Out]) invoke(ctx context.Context, in In, callID uuid.UUID, delay time.Duration) (out Out, err error) {
	ctx, span := t.tracer.Start(ctx, "throttler.call")
	span.SetAttributes(
		attribute.String("call.id", callID.String()),
		attribute.String("mode", t.mode),
		attribute.Int64("delay.ms", delay.Milliseconds()),
	)
	defer span.End()

	defer func() {
		if rec := recover(); rec != nil {
			stack := debug.Stack()
			err = fmt.Errorf("PANIC [%v] TRACE[%s]", rec, string(stack))
		}
	}()

	return t.fn(ctx, in)
}
