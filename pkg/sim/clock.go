package sim

import (
	"sync"
	"time"
)

// Clock is a virtual clock implementing aldl.Clock. Sleep advances it
// immediately, so a simulated capture runs as fast as the CPU allows
// while every component observes consistent timing. After only fires
// once some Sleep or Advance moves the clock past its deadline.
type Clock struct {
	lock   sync.Mutex
	now    time.Time
	timers []timer
}

type timer struct {
	at time.Time
	ch chan time.Time
}

// NewClock creates a Clock starting at an arbitrary fixed instant.
func NewClock() *Clock {
	return &Clock{now: time.Date(1989, 6, 1, 8, 0, 0, 0, time.UTC)}
}

// Now implements aldl.Clock.
func (c *Clock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

// Sleep implements aldl.Clock.
func (c *Clock) Sleep(d time.Duration) {
	c.Advance(d)
}

// After implements aldl.Clock.
func (c *Clock) After(d time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	c.lock.Lock()
	defer c.lock.Unlock()
	if d <= 0 {
		ch <- c.now
		return ch
	}
	c.timers = append(c.timers, timer{at: c.now.Add(d), ch: ch})
	return ch
}

// Pending returns the number of timers not fired yet.
func (c *Clock) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return len(c.timers)
}

// Advance moves the clock forward, fires due timers and returns the
// new time.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	if d > 0 {
		c.now = c.now.Add(d)
	}
	pending := c.timers[:0]
	for _, t := range c.timers {
		if t.at.After(c.now) {
			pending = append(pending, t)
			continue
		}
		t.ch <- t.at
	}
	c.timers = pending
	return c.now
}
