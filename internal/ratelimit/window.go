// Package ratelimit provides sliding-window admission control for calls to
// a single upstream service.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// WaitObserver is notified whenever a caller had to be delayed.
type WaitObserver interface {
	ObserveWait(limiter string, d time.Duration)
}

// Window admits at most maxCalls callers within any trailing window. The
// admission log is shared by every caller of the same instance.
type Window struct {
	name     string
	maxCalls int
	window   time.Duration

	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration) error
	observer WaitObserver

	mu    sync.Mutex
	calls []time.Time // admission times, oldest first
}

// Option configures a Window.
type Option func(*Window)

// WithClock replaces the time source and the sleep primitive.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(w *Window) {
		w.now = now
		w.sleep = sleep
	}
}

// WithObserver reports delays to o.
func WithObserver(o WaitObserver) Option {
	return func(w *Window) { w.observer = o }
}

// New returns a limiter named for the service it guards.
func New(name string, maxCalls int, window time.Duration, opts ...Option) (*Window, error) {
	if maxCalls <= 0 {
		return nil, fmt.Errorf("ratelimit %s: max calls must be positive, got %d", name, maxCalls)
	}
	if window <= 0 {
		return nil, fmt.Errorf("ratelimit %s: window must be positive, got %s", name, window)
	}
	w := &Window{
		name:     name,
		maxCalls: maxCalls,
		window:   window,
		now:      time.Now,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Name returns the service name the limiter was created for.
func (w *Window) Name() string { return w.name }

// Wait blocks until the caller may proceed. A caller whose context ends
// while waiting is not admitted and leaves no trace in the log.
func (w *Window) Wait(ctx context.Context) error {
	if w == nil {
		return nil
	}
	var waited time.Duration
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		w.mu.Lock()
		now := w.now()
		w.evict(now)
		if len(w.calls) < w.maxCalls {
			w.calls = append(w.calls, now)
			w.mu.Unlock()
			if waited > 0 && w.observer != nil {
				w.observer.ObserveWait(w.name, waited)
			}
			return nil
		}
		delay := w.window - now.Sub(w.calls[0])
		w.mu.Unlock()

		if delay <= 0 {
			continue
		}
		if err := w.sleep(ctx, delay); err != nil {
			return err
		}
		waited += delay
	}
}

// evict drops admissions that fell out of the window ending at now.
// Caller holds w.mu.
func (w *Window) evict(now time.Time) {
	cutoff := now.Add(-w.window)
	i := 0
	for i < len(w.calls) && !w.calls[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.calls = append(w.calls[:0], w.calls[i:]...)
	}
}

// InWindow reports how many admissions are inside the current window.
func (w *Window) InWindow() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.evict(w.now())
	return len(w.calls)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
