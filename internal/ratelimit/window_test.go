package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	c.slept = append(c.slept, d)
	return nil
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) TotalSlept() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total time.Duration
	for _, d := range c.slept {
		total += d
	}
	return total
}

type recordingObserver struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *recordingObserver) ObserveWait(_ string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waits = append(r.waits, d)
}

func newTestWindow(t *testing.T, maxCalls int, window time.Duration, clock *fakeClock, opts ...Option) *Window {
	t.Helper()
	opts = append([]Option{WithClock(clock.Now, clock.Sleep)}, opts...)
	w, err := New("test", maxCalls, window, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return w
}

func TestWindow_OverBudgetCallIsDelayedByWindow(t *testing.T) {
	clock := newFakeClock()
	w := newTestWindow(t, 15, time.Second, clock)
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		if err := w.Wait(ctx); err != nil {
			t.Fatalf("Wait %d: %v", i, err)
		}
	}
	if got := clock.TotalSlept(); got != 0 {
		t.Fatalf("first 15 admissions should not wait, slept %s", got)
	}

	if err := w.Wait(ctx); err != nil {
		t.Fatalf("Wait 16: %v", err)
	}
	const eps = time.Millisecond
	if got := clock.TotalSlept(); got < time.Second-eps {
		t.Errorf("16th admission waited %s, want >= %s", got, time.Second-eps)
	}
}

func TestWindow_SpacedCallsNeverWait(t *testing.T) {
	clock := newFakeClock()
	w := newTestWindow(t, 3, time.Minute, clock)

	for i := 0; i < 3; i++ {
		if err := w.Wait(context.Background()); err != nil {
			t.Fatalf("Wait %d: %v", i, err)
		}
		clock.Advance(time.Minute + time.Millisecond)
	}
	if got := clock.TotalSlept(); got != 0 {
		t.Errorf("spaced admissions slept %s, want 0", got)
	}
}

func TestWindow_TrailingWindowNeverExceedsBudget(t *testing.T) {
	clock := newFakeClock()
	const maxCalls = 4
	const window = 100 * time.Millisecond
	w := newTestWindow(t, maxCalls, window, clock)

	gaps := []time.Duration{0, 5, 0, 40, 0, 0, 70, 10, 0, 0, 0, 120, 0, 3, 3, 3, 3, 3}
	var admitted []time.Time
	for _, gap := range gaps {
		clock.Advance(gap * time.Millisecond)
		if err := w.Wait(context.Background()); err != nil {
			t.Fatalf("Wait: %v", err)
		}
		admitted = append(admitted, clock.Now())
	}

	for i, at := range admitted {
		n := 0
		for _, other := range admitted[:i+1] {
			if other.After(at.Add(-window)) {
				n++
			}
		}
		if n > maxCalls {
			t.Errorf("admission %d at %s: %d admissions in trailing window, max %d", i, at.Format(time.StampMilli), n, maxCalls)
		}
	}
}

func TestWindow_CancelledWaitLeavesLogUntouched(t *testing.T) {
	clock := newFakeClock()
	w := newTestWindow(t, 1, time.Minute, clock)

	if err := w.Wait(context.Background()); err != nil {
		t.Fatalf("first Wait: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := w.Wait(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if got := w.InWindow(); got != 1 {
		t.Errorf("InWindow = %d after cancelled wait, want 1", got)
	}
}

func TestWindow_ObserverSeesDelay(t *testing.T) {
	clock := newFakeClock()
	obs := &recordingObserver{}
	w := newTestWindow(t, 1, time.Second, clock, WithObserver(obs))

	_ = w.Wait(context.Background())
	clock.Advance(250 * time.Millisecond)
	_ = w.Wait(context.Background())

	if len(obs.waits) != 1 {
		t.Fatalf("expected 1 observed wait, got %d", len(obs.waits))
	}
	if obs.waits[0] != 750*time.Millisecond {
		t.Errorf("observed wait = %s, want 750ms", obs.waits[0])
	}
}

func TestWindow_ConcurrentCallersShareBudget(t *testing.T) {
	w, err := New("concurrent", 5, 100*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	start := time.Now()
	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := w.Wait(context.Background()); err != nil {
				t.Errorf("Wait: %v", err)
			}
		}()
	}
	wg.Wait()

	// 12 callers at 5 per 100ms need three windows: the last two are
	// admitted no earlier than 200ms after the first five.
	if elapsed := time.Since(start); elapsed < 190*time.Millisecond {
		t.Errorf("12 admissions finished in %s, want >= 190ms", elapsed)
	}
}

func TestNew_RejectsInvalidBudget(t *testing.T) {
	if _, err := New("x", 0, time.Second); err == nil {
		t.Error("expected error for zero max calls")
	}
	if _, err := New("x", 1, 0); err == nil {
		t.Error("expected error for zero window")
	}
}

func TestWindow_NilIsUnlimited(t *testing.T) {
	var w *Window
	if err := w.Wait(context.Background()); err != nil {
		t.Errorf("nil Window.Wait = %v, want nil", err)
	}
}
