// Package pace provides the delay calculators behind the throttle
// engine. A pacer admits calls one at a time and answers a single
// question: how long must this call wait before it may run?
//
// # Pacers
//
// [Windowed] counts calls against a fixed window and defers overflow
// to the next window boundary. It is approximate: a burst beyond the
// limit fires together at the boundary rather than spaced apart, but
// state is two words regardless of the limit.
//
// [Strict] keeps the effective execution time of the last limit
// admissions and spaces overflow calls so that no sliding interval
// ever holds more than limit of them. Exact, at the cost of storing
// limit timestamps.
//
// [Bucket] wraps the token bucket from [golang.org/x/time/rate] for
// callers who want continuous refill semantics instead of windows.
//
// # Usage
//
// Pacers are consumed through the [Limiter] interface, usually by the
// throttle engine rather than directly:
//
//	p, err := pace.NewStrict(10, time.Second)
//	if err != nil {
//		return err
//	}
//
//	delay := p.Reserve(time.Now()) // 0 for the first 10 calls
//
// Reserve is not safe for concurrent use; callers serialize access.
package pace
