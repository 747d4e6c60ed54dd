package throttler

import "sync"

// Result represents an in-flight or completed throttled call.
type Result[Out any] struct {
	once sync.Once
	done chan struct{}
	out  Out
	err  error
}

func newResult[Out any]() *Result[Out] {
	return &Result[Out]{done: make(chan struct{})}
}

// Done returns a channel that is closed when the call completes,
// fails, or is aborted.
func (r *Result[Out]) Done() <-chan struct{} { return r.done }

// Get blocks until the call settles and returns the wrapped Func's
// output and error. The error is [ErrAborted] if the call was caught
// by [Throttled.Abort], the call context's error if it ended before
// the call fired, and otherwise whatever the Func returned, unchanged.
func (r *Result[Out]) Get() (Out, error) {
	<-r.done
	return r.out, r.err
}

// Err blocks until the call settles and returns its error.
func (r *Result[Out]) Err() error {
	<-r.done
	return r.err
}

// settle records the call's outcome and closes the done channel.
// Only the first settle takes effect.
func (r *Result[Out]) settle(out Out, err error) {
	r.once.Do(func() {
		r.out = out
		r.err = err
		close(r.done)
	})
}
