package ai

import (
	"context"
	"sync"
	"time"
)

// Default pacing for model calls.
const (
	DefaultBaseDelay  = 1500 * time.Millisecond
	DefaultMaxDelay   = 10 * time.Second
	DefaultMaxRetries = 3
)

// LimiterState is a snapshot of a Limiter.
type LimiterState struct {
	LastCall time.Time
	Delay    time.Duration
	Retries  int
}

// Limiter spaces out calls to a model API. Every call waits until Delay has
// passed since the previous call finished. A rate-limited response doubles
// the delay up to a ceiling; a successful one resets it to the base.
type Limiter struct {
	mu       sync.Mutex
	base     time.Duration
	max      time.Duration
	delay    time.Duration
	lastCall time.Time
	retries  int

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewLimiter creates a Limiter with the given base and maximum delay.
func NewLimiter(base, max time.Duration) *Limiter {
	if max < base {
		max = base
	}
	return &Limiter{
		base:  base,
		max:   max,
		delay: base,
		now:   time.Now,
		sleep: sleepContext,
	}
}

// Wait blocks until the current delay has elapsed since the last recorded
// call, or until ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	var remaining time.Duration
	if !l.lastCall.IsZero() {
		remaining = l.delay - l.now().Sub(l.lastCall)
	}
	l.mu.Unlock()

	if remaining <= 0 {
		return ctx.Err()
	}
	return l.sleep(ctx, remaining)
}

// Succeeded records a successful call and resets the delay and retry count.
func (l *Limiter) Succeeded() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastCall = l.now()
	l.delay = l.base
	l.retries = 0
}

// Throttled records a rate-limited call, doubles the delay (capped), and
// returns the number of consecutive rate-limited calls.
func (l *Limiter) Throttled() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastCall = l.now()
	l.delay = min(l.delay*2, l.max)
	l.retries++
	return l.retries
}

// Failed records a call that failed for any other reason. Only the last-call
// time changes.
func (l *Limiter) Failed() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastCall = l.now()
}

// State returns a snapshot of the limiter.
func (l *Limiter) State() LimiterState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return LimiterState{
		LastCall: l.lastCall,
		Delay:    l.delay,
		Retries:  l.retries,
	}
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
