// Package ratelimit paces calls to a rate-limited upstream.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Policy decides how long a caller must wait before hitting an upstream.
type Policy interface {
	Wait(ctx context.Context) error
}

// Unlimited never waits.
type Unlimited struct{}

func (Unlimited) Wait(ctx context.Context) error { return ctx.Err() }

// Cooldown enforces a minimum interval between consecutive calls.
// Each caller reserves the next free slot under the lock, so concurrent
// callers queue behind each other instead of firing together once the
// interval elapses.
type Cooldown struct {
	Interval time.Duration
	// Now and Sleep default to the wall clock; tests replace them.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error

	mu   sync.Mutex
	next time.Time
}

func NewCooldown(interval time.Duration) *Cooldown {
	return &Cooldown{Interval: interval}
}

// Wait blocks until the caller's slot opens or ctx is done.
func (c *Cooldown) Wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.Interval <= 0 {
		return nil
	}

	c.mu.Lock()
	now := c.now()
	slot := c.next
	if slot.Before(now) {
		slot = now
	}
	c.next = slot.Add(c.Interval)
	c.mu.Unlock()

	wait := slot.Sub(now)
	if wait <= 0 {
		return nil
	}
	if err := c.sleep(ctx, wait); err != nil {
		// Hand the slot back unless a later caller already queued behind it.
		c.mu.Lock()
		if c.next.Equal(slot.Add(c.Interval)) {
			c.next = slot
		}
		c.mu.Unlock()
		return err
	}
	return nil
}

func (c *Cooldown) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Cooldown) sleep(ctx context.Context, d time.Duration) error {
	if c.Sleep != nil {
		return c.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
