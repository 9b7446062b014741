package nav

import (
	"github.com/rileyhilliard/fieldmon/internal/logger"
)

// Controller is the single authority for the visible page and the back
// history. It is not safe for concurrent use; every call is expected to run
// on the console's event loop.
type Controller struct {
	registry *Registry
	log      logger.Logger

	current PageID
	history []PageID

	observers []observer
	nextObs   int
}

type observer struct {
	id int
	fn func(PageID)
}

// NewController starts at Home with empty history. Call Start to activate
// the Home page once the pages are registered.
func NewController(registry *Registry, log logger.Logger) *Controller {
	if log == nil {
		log = logger.Noop()
	}
	return &Controller{
		registry: registry,
		log:      log,
		current:  Home,
	}
}

// Start activates the current page with an absent param.
func (c *Controller) Start() {
	c.activate(c.current, nil)
}

// Current returns the visible page.
func (c *Controller) Current() PageID {
	return c.current
}

// History returns a copy of the back stack, most recent last.
func (c *Controller) History() []PageID {
	out := make([]PageID, len(c.history))
	copy(out, c.history)
	return out
}

// Depth returns the number of entries in the back stack.
func (c *Controller) Depth() int {
	return len(c.history)
}

// OnPageChanged registers fn to run after every completed transition.
// The returned func removes the registration.
func (c *Controller) OnPageChanged(fn func(PageID)) (remove func()) {
	c.nextObs++
	id := c.nextObs
	c.observers = append(c.observers, observer{id: id, fn: fn})
	return func() {
		for i, o := range c.observers {
			if o.id == id {
				c.observers = append(c.observers[:i], c.observers[i+1:]...)
				return
			}
		}
	}
}

// NavigateTo moves to target, pushing the page being left onto history.
// Unknown targets and navigation to the current page are no-ops.
func (c *Controller) NavigateTo(target PageID, param Param) {
	if !target.Valid() {
		c.log.Debug("ignoring navigation to unknown page %s", target)
		return
	}
	if target == c.current {
		return
	}
	c.transition(target, param, true)
}

// GoBack pops the most recent page and moves to it without pushing the page
// being left. With an empty history it behaves as NavigateTo(Home, nil).
func (c *Controller) GoBack() {
	n := len(c.history)
	if n == 0 {
		c.NavigateTo(Home, nil)
		return
	}
	prev := c.history[n-1]
	c.history = c.history[:n-1]
	c.transition(prev, nil, false)
}

// Reset drops the history and moves to Home. Used by the idle return.
func (c *Controller) Reset() {
	if c.current == Home {
		c.history = c.history[:0]
		return
	}
	c.transition(Home, nil, false)
	c.history = c.history[:0]
}

func (c *Controller) transition(target PageID, param Param, push bool) {
	from := c.current
	c.deactivate(from)
	if push {
		c.history = append(c.history, from)
	}
	c.current = target
	c.activate(target, param)

	c.log.Debug("%s -> %s (depth %d)", from, target, len(c.history))
	for _, o := range append([]observer(nil), c.observers...) {
		o.fn(target)
	}
}

func (c *Controller) deactivate(id PageID) {
	page, ok := c.registry.Lookup(id)
	if !ok {
		return
	}
	defer c.recoverPage(id, "deactivate")
	page.Deactivate()
}

// activate runs the page hook; a panicking page is logged and left to show
// whatever state it reached.
func (c *Controller) activate(id PageID, param Param) {
	page, ok := c.registry.Lookup(id)
	if !ok {
		c.log.Debug("no page registered for %s", id)
		return
	}
	defer c.recoverPage(id, "activate")
	page.Activate(param)
}

func (c *Controller) recoverPage(id PageID, hook string) {
	if r := recover(); r != nil {
		c.log.Error("%s %s panicked: %v", id, hook, r)
	}
}
