// Package throttler wraps an arbitrary callable with a rate limiter
// that queues excess calls for delayed execution instead of rejecting
// them. All state is local to one wrapper instance; nothing is shared
// across processes.
//
// # Wrapping a Func
//
// Use [Wrap] to build a [Throttled] engine around any
// func(ctx, In) (Out, error):
//
//	t, err := throttler.Wrap(fetchUser, 5, time.Second)
//	if err != nil {
//		return err
//	}
//
//	res := t.Call(ctx, userID)
//	user, err := res.Get() // blocks until the call fires
//
// Each [Throttled.Call] returns a [Result] immediately; the wrapped
// Func fires once the computed delay elapses. Results settle with the
// Func's output and error unchanged.
//
// # Windowed vs Strict
//
// The default pacer admits up to limit calls per fixed window; a burst
// beyond the limit fires together at the next window boundary. With
// [WithStrict] every interval-length window, ending at any instant,
// holds at most limit calls, so overflow is spaced out instead of
// batched. [WithLimiter] swaps in any other [pace.Limiter], such as
// the token bucket [pace.Bucket].
//
// # Lifecycle
//
// [Throttled.QueueSize] reports the calls scheduled but not yet fired.
// [Throttled.Abort] rejects every queued call with [ErrAborted] and
// clears the strict pacer's history. [Throttled.Disable] bypasses
// throttling for subsequent calls without touching calls already
// queued; [Throttled.Enable] switches it back on.
//
// # Throttling HTTP clients
//
// The [github.com/adamwoolhether/throttler/transport] package applies
// the engine to outbound HTTP requests as an [net/http.RoundTripper].
package throttler
