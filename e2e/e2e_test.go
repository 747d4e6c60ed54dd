//go:build integration

package e2e_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/adamwoolhether/throttler"
	"github.com/adamwoolhether/throttler/transport"
)

// -------------------------------------------------------------------------
// Helpers
// -------------------------------------------------------------------------

func newTestServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	return srv, &hits
}

func newEngine(t *testing.T, limit int, interval time.Duration, optFns ...throttler.Option) (*throttler.Throttled[int, int], *atomic.Int32) {
	t.Helper()

	var fired atomic.Int32

	fn := func(ctx context.Context, in int) (int, error) {
		fired.Add(1)
		return in, nil
	}

	eng, err := throttler.Wrap(fn, limit, interval, optFns...)
	if err != nil {
		t.Fatalf("wrapping func: %v", err)
	}

	return eng, &fired
}

func waitForQueue(t *testing.T, size func() int, want int) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if size() == want {
			return
		}
		time.Sleep(time.Millisecond)
	}

	t.Fatalf("queue size never reached %d (at %d)", want, size())
}

// -------------------------------------------------------------------------
// Tests
// -------------------------------------------------------------------------

// TestE2E_WallClockPacing drives 100 concurrent calls through a
// 5-per-100ms engine. The overflow spreads across twenty windows, so
// the whole run takes right around 1.9 seconds of wall time.
func TestE2E_WallClockPacing(t *testing.T) {
	eng, fired := newEngine(t, 5, 100*time.Millisecond)

	const numCalls = 100

	start := time.Now()

	var g errgroup.Group
	for i := range numCalls {
		g.Go(func() error {
			got, err := eng.Call(context.Background(), i).Get()
			if err != nil {
				return err
			}
			if got != i {
				return errors.New("output mismatch")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	elapsed := time.Since(start)

	if elapsed < 1800*time.Millisecond {
		t.Errorf("100 calls at 5/100ms finished in %v, want >= 1.8s", elapsed)
	}
	if elapsed > 3500*time.Millisecond {
		t.Errorf("100 calls at 5/100ms took %v, want around 2s", elapsed)
	}

	if got := fired.Load(); got != numCalls {
		t.Errorf("fired %d times, want %d", got, numCalls)
	}
	if qs := eng.QueueSize(); qs != 0 {
		t.Errorf("queue size after run = %d, want 0", qs)
	}
}

// TestE2E_ThrottledHTTPClient sends a concurrent burst through a real
// http.Client whose transport paces at 5 requests per 100ms.
func TestE2E_ThrottledHTTPClient(t *testing.T) {
	srv, hits := newTestServer(t)

	rt, err := transport.NewRoundTripper(5, 100*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("building round tripper: %v", err)
	}

	client := &http.Client{Transport: rt, Timeout: 30 * time.Second}

	const numRequests = 20 // four windows of five

	start := time.Now()

	var g errgroup.Group
	for range numRequests {
		g.Go(func() error {
			resp, err := client.Get(srv.URL)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return errors.New("unexpected status " + resp.Status)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	elapsed := time.Since(start)

	if elapsed < 280*time.Millisecond {
		t.Errorf("20 requests at 5/100ms finished in %v, want >= 280ms", elapsed)
	}
	if got := hits.Load(); got != numRequests {
		t.Errorf("server saw %d requests, want %d", got, numRequests)
	}
	if qs := rt.QueueSize(); qs != 0 {
		t.Errorf("queue size after run = %d, want 0", qs)
	}
}

// TestE2E_StrictPacingUnderLoad checks the strict pacer end to end: a
// concurrent burst of five at one call per 100ms cannot finish before
// the last admission's slot, 400ms in.
func TestE2E_StrictPacingUnderLoad(t *testing.T) {
	eng, fired := newEngine(t, 1, 100*time.Millisecond, throttler.WithStrict())

	const numCalls = 5

	start := time.Now()

	var g errgroup.Group
	for i := range numCalls {
		g.Go(func() error {
			return eng.Call(context.Background(), i).Err()
		})
	}

	if err := g.Wait(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if elapsed := time.Since(start); elapsed < 380*time.Millisecond {
		t.Errorf("5 calls at 1/100ms strict finished in %v, want >= 380ms", elapsed)
	}
	if got := fired.Load(); got != numCalls {
		t.Errorf("fired %d times, want %d", got, numCalls)
	}
}

// TestE2E_AbortUnderLoad queues a pile of calls behind a huge interval
// and rejects them all at once.
func TestE2E_AbortUnderLoad(t *testing.T) {
	eng, fired := newEngine(t, 1, 10*time.Second)

	if _, err := eng.Call(context.Background(), 0).Get(); err != nil {
		t.Fatalf("first call: %v", err)
	}

	const numQueued = 10

	errCh := make(chan error, numQueued)
	for i := range numQueued {
		go func() {
			errCh <- eng.Call(context.Background(), i).Err()
		}()
	}

	waitForQueue(t, eng.QueueSize, numQueued)

	start := time.Now()
	eng.Abort()

	var aborted int
	for range numQueued {
		select {
		case err := <-errCh:
			if errors.Is(err, throttler.ErrAborted) {
				aborted++
			} else {
				t.Errorf("exp ErrAborted, got: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("queued call never settled after abort")
		}
	}

	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("abort settled %d calls in %v, want milliseconds", numQueued, elapsed)
	}
	if aborted != numQueued {
		t.Errorf("aborted %d calls, want %d", aborted, numQueued)
	}
	if got := fired.Load(); got != 1 {
		t.Errorf("fired %d times, want 1", got)
	}
}

// TestE2E_LifecycleToggle disables throttling mid-run and re-enables
// it, checking the switch only affects calls made after it flips.
func TestE2E_LifecycleToggle(t *testing.T) {
	eng, fired := newEngine(t, 1, 300*time.Millisecond)

	start := time.Now()

	if _, err := eng.Call(context.Background(), 0).Get(); err != nil {
		t.Fatalf("first call: %v", err)
	}

	eng.Disable()

	for i := range 5 {
		if _, err := eng.Call(context.Background(), i).Get(); err != nil {
			t.Fatalf("disabled call %d: %v", i, err)
		}
	}

	if elapsed := time.Since(start); elapsed > 200*time.Millisecond {
		t.Fatalf("disabled burst took %v, want immediate", elapsed)
	}

	eng.Enable()

	// The window filled by the very first call still holds, so the
	// next throttled call waits for a boundary.
	if _, err := eng.Call(context.Background(), 6).Get(); err != nil {
		t.Fatalf("call after enable: %v", err)
	}

	if elapsed := time.Since(start); elapsed < 250*time.Millisecond {
		t.Errorf("call after enable finished %v in, want >= 250ms (throttling resumed)", elapsed)
	}
	if got := fired.Load(); got != 7 {
		t.Errorf("fired %d times, want 7", got)
	}
}
