// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// FakeClock is a Clock whose time moves only when Advance or Set is
// called. Safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	waiters []*fakeWaiter
	changed *sync.Cond
}

type fakeWaiter struct {
	deadline time.Time
	channel  chan time.Time

	// interval is the tick period; the waiter is rescheduled at
	// deadline+interval after each fire.
	interval time.Duration
	stopped  bool
}

// Fake returns a FakeClock set to initial.
func Fake(initial time.Time) *FakeClock {
	clock := &FakeClock{current: initial}
	clock.changed = sync.NewCond(&clock.mu)
	return clock
}

// Now returns the fake current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NewTicker registers a periodic waiter.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	waiter := &fakeWaiter{
		deadline: c.current.Add(d),
		channel:  channel,
		interval: d,
	}
	c.waiters = append(c.waiters, waiter)
	c.changed.Broadcast()

	return &Ticker{
		C: channel,
		stopFunc: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			waiter.stopped = true
			c.removeStoppedLocked()
		},
		resetFunc: func(d time.Duration) {
			c.mu.Lock()
			defer c.mu.Unlock()
			waiter.interval = d
			waiter.deadline = c.current.Add(d)
			if waiter.stopped {
				waiter.stopped = false
				c.waiters = append(c.waiters, waiter)
				c.changed.Broadcast()
			}
		},
	}
}

// Advance moves the clock forward by d and fires every ticker whose
// deadline has been reached, in deadline order. Sends never block: a
// full ticker channel drops the tick.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	c.fireLocked()
}

// Set jumps the clock to t. Moving backwards fires nothing.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
	c.fireLocked()
}

// WaitForTimers blocks until at least n tickers are running.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.waiters) < n {
		c.changed.Wait()
	}
}

// PendingTimers returns the number of running tickers.
func (c *FakeClock) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

func (c *FakeClock) fireLocked() {
	for {
		sort.SliceStable(c.waiters, func(i, j int) bool {
			return c.waiters[i].deadline.Before(c.waiters[j].deadline)
		})
		if len(c.waiters) == 0 || c.waiters[0].deadline.After(c.current) {
			return
		}

		waiter := c.waiters[0]
		select {
		case waiter.channel <- waiter.deadline:
		default:
		}
		waiter.deadline = waiter.deadline.Add(waiter.interval)
		// A ticker that fell far behind fires once, not once per
		// missed interval.
		if !waiter.deadline.After(c.current) {
			waiter.deadline = c.current.Add(waiter.interval)
		}
	}
}

func (c *FakeClock) removeStoppedLocked() {
	kept := c.waiters[:0]
	for _, waiter := range c.waiters {
		if !waiter.stopped {
			kept = append(kept, waiter)
		}
	}
	c.waiters = kept
	c.changed.Broadcast()
}
