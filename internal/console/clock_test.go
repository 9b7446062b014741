package console

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeaClock_StartQueuesTick(t *testing.T) {
	c := newTeaClock()

	h1 := c.Start(time.Second, func() {})
	h2 := c.Start(time.Second, func() {})

	assert.NotZero(t, h1)
	assert.Greater(t, h2, h1)
	assert.Len(t, c.drain(), 2)
	assert.Empty(t, c.drain(), "drain empties the queue")
}

func TestTeaClock_DeliverRearms(t *testing.T) {
	c := newTeaClock()
	fired := 0
	h := c.Start(time.Second, func() { fired++ })
	c.drain()

	c.deliver(clockTickMsg{handle: h})
	c.deliver(clockTickMsg{handle: h})

	assert.Equal(t, 2, fired)
	assert.Len(t, c.drain(), 2, "each delivery schedules the next tick")
	assert.True(t, c.active(h))
}

func TestTeaClock_CancelledTickDropped(t *testing.T) {
	c := newTeaClock()
	fired := 0
	h := c.Start(time.Second, func() { fired++ })
	c.drain()

	c.Cancel(h)
	c.deliver(clockTickMsg{handle: h})

	assert.Zero(t, fired)
	assert.Empty(t, c.drain())
	assert.False(t, c.active(h))
}

func TestTeaClock_CallbackCancelsItself(t *testing.T) {
	c := newTeaClock()
	var h = c.Start(time.Second, nil)
	c.timers[h].fn = func() { c.Cancel(h) }
	c.drain()

	c.deliver(clockTickMsg{handle: h})

	assert.Empty(t, c.drain(), "a one-shot timer is not re-armed")
	assert.False(t, c.active(h))
}

func TestTeaClock_HandlesNeverReused(t *testing.T) {
	c := newTeaClock()
	seen := map[uint64]bool{}
	for i := 0; i < 10; i++ {
		h := c.Start(time.Second, func() {})
		require.False(t, seen[uint64(h)])
		seen[uint64(h)] = true
		c.Cancel(h)
	}
}

func TestTeaClock_RejectsNonPositiveInterval(t *testing.T) {
	c := newTeaClock()
	assert.Panics(t, func() { c.Start(0, func() {}) })
}
