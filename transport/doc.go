// Package transport adapts the throttle engine to outbound HTTP.
//
// A RoundTripper wraps any http.RoundTripper and paces the requests
// flowing through it, queueing the overflow instead of failing it:
//
//	rt, err := transport.NewRoundTripper(5, time.Second, nil)
//	if err != nil {
//		// ...
//	}
//
//	client := &http.Client{Transport: rt}
//
// Requests rejected by [RoundTripper.Abort] and requests whose context
// ends while queued return errors wrapped in [ErrWaitingFailed], so
// callers can tell a request that never left the queue from one the
// server actually saw. Errors from the wrapped transport come back
// unchanged.
package transport
