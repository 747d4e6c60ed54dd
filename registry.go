package throttler

import (
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

// pendingCall tracks one scheduled invocation that has not yet fired.
type pendingCall[Out any] struct {
	id    uint64
	uid   uuid.UUID
	delay time.Duration

	timer   *time.Timer
	aborted chan struct{}
	result  *Result[Out]
}

// registry tracks in-flight scheduled calls under a monotonically
// increasing id. It is not safe for concurrent use on its own; the
// engine's mutex serializes access alongside the pacer.
type registry[Out any] struct {
	nextID uint64
	calls  map[uint64]*pendingCall[Out]
}

func newRegistry[Out any]() *registry[Out] {
	return &registry[Out]{
		calls: make(map[uint64]*pendingCall[Out]),
	}
}

// add registers a call scheduled to fire after delay and starts its
// timer.
func (reg *registry[Out]) add(res *Result[Out], delay time.Duration) *pendingCall[Out] {
	reg.nextID++

	pc := &pendingCall[Out]{
		id:      reg.nextID,
		uid:     uuid.New(),
		delay:   delay,
		timer:   time.NewTimer(delay),
		aborted: make(chan struct{}),
		result:  res,
	}
	reg.calls[pc.id] = pc

	return pc
}

// claim removes the call with the given id, reporting whether the
// caller now owns its settlement. A failed claim means the call was
// already fired, cancelled, or aborted by someone else.
func (reg *registry[Out]) claim(id uint64) bool {
	if _, ok := reg.calls[id]; !ok {
		return false
	}

	delete(reg.calls, id)

	return true
}

// size reports the number of registered calls.
func (reg *registry[Out]) size() int {
	return len(reg.calls)
}

// drain removes and returns every registered call in registration
// order. The caller owns settlement of all returned calls.
func (reg *registry[Out]) drain() []*pendingCall[Out] {
	if len(reg.calls) == 0 {
		return nil
	}

	drained := make([]*pendingCall[Out], 0, len(reg.calls))
	for _, id := range slices.Sorted(maps.Keys(reg.calls)) {
		drained = append(drained, reg.calls[id])
	}
	clear(reg.calls)

	return drained
}
