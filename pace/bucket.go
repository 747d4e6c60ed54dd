package pace

import (
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Bucket adapts the token bucket limiter from [golang.org/x/time/rate]
// to the [Limiter] contract. Unlike [Windowed] and [Strict], capacity
// refills continuously at the configured rate instead of a whole
// window at a time.
type Bucket struct {
	limiter *rate.Limiter
}

var _ Limiter = &Bucket{}

// NewBucket returns a Bucket refilling rps tokens per second with the
// given burst capacity.
func NewBucket(rps, burst int) (*Bucket, error) {
	if rps <= 0 || burst <= 0 {
		return nil, fmt.Errorf("rps[%d] and burst[%d] %w", rps, burst, ErrMustNotBeZero)
	}

	return &Bucket{
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}, nil
}

// Reserve consumes one token at now, returning how long the call must
// wait for it.
func (b *Bucket) Reserve(now time.Time) time.Duration {
	return b.limiter.ReserveN(now, 1).DelayFrom(now)
}

// Reset is a no-op. The token count is aggregate state, not per-call
// history.
func (b *Bucket) Reset() {}
