// Package testing provides a deterministic session.Clock for tests.
package testing

import (
	"time"

	"github.com/rileyhilliard/fieldmon/internal/session"
)

type timer struct {
	interval time.Duration
	due      time.Duration
	fn       func()
}

// ManualClock fires callbacks only when Advance moves its virtual time.
type ManualClock struct {
	now    time.Duration
	next   session.Handle
	timers map[session.Handle]*timer

	// Started and Cancelled record every call, in order.
	Started   []session.Handle
	Cancelled []session.Handle
	// Fired counts delivered ticks.
	Fired int
}

var _ session.Clock = (*ManualClock)(nil)

// NewManualClock returns a clock at virtual time zero.
func NewManualClock() *ManualClock {
	return &ManualClock{timers: make(map[session.Handle]*timer)}
}

// Start schedules fn every interval. It panics on a non-positive interval.
func (c *ManualClock) Start(interval time.Duration, fn func()) session.Handle {
	if interval <= 0 {
		panic("manual clock: non-positive interval")
	}
	c.next++
	h := c.next
	c.timers[h] = &timer{interval: interval, due: c.now + interval, fn: fn}
	c.Started = append(c.Started, h)
	return h
}

// Cancel drops h. Unknown and already-cancelled handles are ignored.
func (c *ManualClock) Cancel(h session.Handle) {
	c.Cancelled = append(c.Cancelled, h)
	delete(c.timers, h)
}

// Advance moves virtual time forward by d, firing every tick that falls due
// in order. Callbacks may start or cancel timers; cancelled timers stop
// firing immediately.
func (c *ManualClock) Advance(d time.Duration) {
	target := c.now + d
	for {
		t := c.earliest(target)
		if t == nil {
			break
		}
		c.now = t.due
		t.due += t.interval
		c.Fired++
		t.fn()
	}
	c.now = target
}

// Active returns the number of live timers.
func (c *ManualClock) Active() int {
	return len(c.timers)
}

// Now returns the elapsed virtual time.
func (c *ManualClock) Now() time.Duration {
	return c.now
}

func (c *ManualClock) earliest(limit time.Duration) *timer {
	var (
		bestH session.Handle
		best  *timer
	)
	for h, t := range c.timers {
		if t.due > limit {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && h < bestH) {
			bestH, best = h, t
		}
	}
	return best
}
