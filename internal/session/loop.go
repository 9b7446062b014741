package session

import (
	"context"
	"sync"
	"time"
)

// Loop is a cooperative event loop for headless runs. Callbacks posted to
// it, including every clock tick, run one at a time on the goroutine that
// called Run. Loop implements Clock on top of real tickers.
type Loop struct {
	events chan func()
	done   chan struct{}
	once   sync.Once

	mu     sync.Mutex
	next   Handle
	active map[Handle]chan struct{}
}

// NewLoop returns a loop that is not yet running.
func NewLoop() *Loop {
	return &Loop{
		events: make(chan func(), 64),
		done:   make(chan struct{}),
		active: make(map[Handle]chan struct{}),
	}
}

// Post queues fn for the loop goroutine. Posts after the loop has stopped
// are dropped.
func (l *Loop) Post(fn func()) {
	select {
	case l.events <- fn:
	case <-l.done:
	}
}

// Run executes posted callbacks until ctx is done or Stop is called.
func (l *Loop) Run(ctx context.Context) error {
	defer l.Stop()
	for {
		select {
		case fn := <-l.events:
			fn()
		case <-ctx.Done():
			return ctx.Err()
		case <-l.done:
			return nil
		}
	}
}

// Stop ends Run and every ticker. Safe to call more than once.
func (l *Loop) Stop() {
	l.once.Do(func() { close(l.done) })
}

// Start implements Clock. Each tick is posted to the loop and dropped there
// if the handle was cancelled in the meantime.
func (l *Loop) Start(interval time.Duration, onTick func()) Handle {
	l.mu.Lock()
	l.next++
	h := l.next
	stop := make(chan struct{})
	l.active[h] = stop
	l.mu.Unlock()

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				l.Post(func() {
					if l.alive(h) {
						onTick()
					}
				})
			case <-stop:
				return
			case <-l.done:
				return
			}
		}
	}()
	return h
}

// Cancel implements Clock.
func (l *Loop) Cancel(h Handle) {
	l.mu.Lock()
	stop, ok := l.active[h]
	delete(l.active, h)
	l.mu.Unlock()
	if ok {
		close(stop)
	}
}

// Active returns the number of live schedules.
func (l *Loop) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.active)
}

func (l *Loop) alive(h Handle) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.active[h]
	return ok
}
