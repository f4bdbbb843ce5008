package ai

import (
	"context"
	"sync"
	"time"
)

// fakeClock drives a Limiter without real sleeping. Sleep advances the clock
// by the requested duration and records it.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept []time.Duration
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
	c.slept = append(c.slept, d)
	c.now = c.now.Add(d)
	return nil
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeClock) Slept() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.slept...)
}

func newTestLimiter(base, max time.Duration) (*Limiter, *fakeClock) {
	clk := &fakeClock{now: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)}
	l := NewLimiter(base, max)
	l.now = clk.Now
	l.sleep = clk.Sleep
	return l, clk
}

type providerReply struct {
	text string
	err  error
}

// scriptedProvider returns the scripted replies in order and records every
// request. Once the script runs out it keeps returning the last reply.
type scriptedProvider struct {
	mu       sync.Mutex
	replies  []providerReply
	requests []CompletionRequest
}

func (p *scriptedProvider) Complete(_ context.Context, req CompletionRequest) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)

	i := len(p.requests) - 1
	if i >= len(p.replies) {
		i = len(p.replies) - 1
	}
	r := p.replies[i]
	return r.text, r.err
}

func (p *scriptedProvider) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func tooManyRequests() error {
	return &StatusError{StatusCode: 429, Message: "Rate limit reached"}
}
