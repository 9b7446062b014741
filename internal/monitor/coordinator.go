package monitor

import (
	"github.com/rileyhilliard/fieldmon/internal/errors"
	"github.com/rileyhilliard/fieldmon/internal/logger"
	"github.com/rileyhilliard/fieldmon/internal/nav"
)

// Poller is the part of session.Session the coordinator drives.
type Poller interface {
	StartSession(deviceID int) error
	StopSession()
	Running() bool
}

// Coordinator binds a Poller to the Monitor page lifecycle. It implements
// nav.Page, so it can be registered directly or wrapped by a richer page.
type Coordinator struct {
	poller   Poller
	log      logger.Logger
	selected int
}

var _ nav.Page = (*Coordinator)(nil)

// NewCoordinator returns a coordinator with no device selected.
func NewCoordinator(p Poller, log logger.Logger) *Coordinator {
	if log == nil {
		log = logger.Noop()
	}
	return &Coordinator{poller: p, log: log, selected: -1}
}

// OnMonitorPageActivated preselects the device carried by an IntParam.
// It never starts polling.
func (c *Coordinator) OnMonitorPageActivated(p nav.Param) {
	if id, ok := nav.AsInt(p); ok && id >= 0 {
		c.selected = id
	}
}

// OnDeviceSelectionChanged stops any running session before recording the
// new selection. The new device is not started.
func (c *Coordinator) OnDeviceSelectionChanged(deviceID int) {
	if c.poller.Running() {
		c.poller.StopSession()
	}
	c.selected = deviceID
}

// OnMonitorPageDeactivated stops polling unconditionally.
func (c *Coordinator) OnMonitorPageDeactivated() {
	c.poller.StopSession()
}

// Activate implements nav.Page.
func (c *Coordinator) Activate(p nav.Param) { c.OnMonitorPageActivated(p) }

// Deactivate implements nav.Page.
func (c *Coordinator) Deactivate() { c.OnMonitorPageDeactivated() }

// Start begins polling the selected device.
func (c *Coordinator) Start() error {
	if c.selected < 0 {
		return errors.New(errors.ErrSession, "No device selected", "Pick a device first")
	}
	c.log.Debug("operator start for device %d", c.selected)
	return c.poller.StartSession(c.selected)
}

// Stop ends polling.
func (c *Coordinator) Stop() {
	c.poller.StopSession()
}

// Toggle starts a stopped session or stops a running one.
func (c *Coordinator) Toggle() error {
	if c.poller.Running() {
		c.Stop()
		return nil
	}
	return c.Start()
}

// Selected returns the selected device id.
func (c *Coordinator) Selected() (int, bool) {
	return c.selected, c.selected >= 0
}

// Running reports whether the session is polling.
func (c *Coordinator) Running() bool {
	return c.poller.Running()
}
