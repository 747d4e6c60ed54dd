package transport

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/adamwoolhether/throttler"
)

// RoundTripper is an http.RoundTripper that bounds the rate of
// outbound requests. Requests beyond the limit are queued and sent
// when their window arrives, never rejected, so a burst against a
// rate-limited API degrades into slower calls instead of errors.
type RoundTripper struct {
	engine *throttler.Throttled[*call, *http.Response]
	next   http.RoundTripper
}

var _ http.RoundTripper = &RoundTripper{}

// NewRoundTripper returns a RoundTripper sending at most limit
// requests per interval through next. A nil next falls back to
// http.DefaultTransport. Options are passed through to the underlying
// engine, so WithStrict, WithOnDelay and the rest apply here too.
func NewRoundTripper(limit int, interval time.Duration, next http.RoundTripper, optFns ...throttler.Option) (*RoundTripper, error) {
	if next == nil {
		next = http.DefaultTransport
	}

	rt := &RoundTripper{next: next}

	engine, err := throttler.Wrap(rt.send, limit, interval, optFns...)
	if err != nil {
		return nil, err
	}
	rt.engine = engine

	return rt, nil
}

// send is the engine-wrapped hop to the next transport.
func (rt *RoundTripper) send(_ context.Context, c *call) (*http.Response, error) {
	c.fired = true
	return rt.next.RoundTrip(c.req)
}

// RoundTrip queues the request on the throttle engine and blocks until
// it fires and the response arrives. Failures while waiting (an
// aborted engine, a request context ending in the queue) come back
// wrapped in ErrWaitingFailed; errors from the next transport come
// back unchanged.
func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w early: %w", ErrContextEnded, err)
	}

	c := &call{req: req}

	resp, err := rt.engine.Call(ctx, c).Get()
	if err != nil && !c.fired {
		return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	return resp, err
}

// Abort rejects every queued request with [throttler.ErrAborted].
func (rt *RoundTripper) Abort() { rt.engine.Abort() }

// QueueSize reports how many requests are queued waiting to fire.
func (rt *RoundTripper) QueueSize() int { return rt.engine.QueueSize() }

// Enable resumes throttling for subsequent requests.
func (rt *RoundTripper) Enable() { rt.engine.Enable() }

// Disable sends subsequent requests immediately, bypassing the
// throttle. Requests already queued keep their schedule.
func (rt *RoundTripper) Disable() { rt.engine.Disable() }

// Enabled reports whether throttling applies to new requests.
func (rt *RoundTripper) Enabled() bool { return rt.engine.Enabled() }
