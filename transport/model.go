package transport

import (
	"errors"
	"net/http"
)

var (
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// call carries one request through the throttle engine. fired records
// whether the next transport was actually invoked, separating its
// errors from failures that happened while the request was queued.
type call struct {
	req   *http.Request
	fired bool
}
