package console

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/fieldmon/internal/session"
)

// clockTickMsg is delivered by tea.Tick when a timer comes due.
type clockTickMsg struct {
	handle session.Handle
}

type clockTimer struct {
	interval time.Duration
	fn       func()
}

// teaClock implements session.Clock on Bubble Tea commands. Start and
// Cancel only touch state; the tick commands they produce are collected
// and handed to the runtime by drain at the end of Update. Ticks for a
// cancelled handle arrive later and are dropped because handles are never
// reused.
type teaClock struct {
	next    session.Handle
	timers  map[session.Handle]*clockTimer
	pending []tea.Cmd
}

var _ session.Clock = (*teaClock)(nil)

func newTeaClock() *teaClock {
	return &teaClock{timers: make(map[session.Handle]*clockTimer)}
}

func (c *teaClock) Start(interval time.Duration, onTick func()) session.Handle {
	if interval <= 0 {
		panic("console: clock interval must be positive")
	}
	c.next++
	h := c.next
	c.timers[h] = &clockTimer{interval: interval, fn: onTick}
	c.schedule(h, interval)
	return h
}

func (c *teaClock) Cancel(h session.Handle) {
	delete(c.timers, h)
}

// deliver runs the callback for msg and re-arms the timer unless the
// callback cancelled it.
func (c *teaClock) deliver(msg clockTickMsg) {
	t, ok := c.timers[msg.handle]
	if !ok {
		return
	}
	t.fn()
	if _, still := c.timers[msg.handle]; still {
		c.schedule(msg.handle, t.interval)
	}
}

// active reports whether h is still scheduled.
func (c *teaClock) active(h session.Handle) bool {
	_, ok := c.timers[h]
	return ok
}

func (c *teaClock) schedule(h session.Handle, d time.Duration) {
	c.pending = append(c.pending, tea.Tick(d, func(time.Time) tea.Msg {
		return clockTickMsg{handle: h}
	}))
}

func (c *teaClock) drain() []tea.Cmd {
	cmds := c.pending
	c.pending = nil
	return cmds
}
