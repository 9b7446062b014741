package session

import (
	"time"

	"github.com/google/uuid"

	"github.com/rileyhilliard/fieldmon/internal/errors"
	"github.com/rileyhilliard/fieldmon/internal/logger"
	"github.com/rileyhilliard/fieldmon/internal/service"
)

// Status is the outcome of the most recent read.
type Status int

const (
	StatusIdle Status = iota
	StatusOK
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "Ok"
	case StatusError:
		return "Error"
	default:
		return "Idle"
	}
}

// Update is delivered to subscribers after every read and when a session
// stops. Seq is 0 for the immediate read on start and counts ticks after.
type Update struct {
	SessionID string
	DeviceID  int
	Running   bool
	Status    Status
	Seq       int
	Readings  []service.RegisterReading
	Code      int
	Message   string
	Time      time.Time
}

// Err returns the read failure carried by u, or nil.
func (u Update) Err() error {
	if u.Status != StatusError {
		return nil
	}
	return errors.Newf(errors.ErrDevice, "%s (code %d)", u.Message, u.Code)
}

type subscriber struct {
	id int
	fn func(Update)
}

// Session owns "acquisition is active for device D". At most one device is
// polled per Session; starting a new one stops the old one first.
type Session struct {
	reader Reader
	clock  Clock
	log    logger.Logger
	now    func() time.Time

	running   bool
	deviceID  int
	sessionID string
	handle    Handle
	status    Status
	seq       int

	subs    []subscriber
	nextSub int
}

// New returns an idle Session.
func New(reader Reader, clock Clock, log logger.Logger) *Session {
	if log == nil {
		log = logger.Noop()
	}
	return &Session{
		reader:   reader,
		clock:    clock,
		log:      log,
		now:      time.Now,
		deviceID: -1,
	}
}

// Subscribe registers fn for every Update. The returned func removes it.
func (s *Session) Subscribe(fn func(Update)) (unsubscribe func()) {
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})
	return func() {
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// Running reports whether a session is active.
func (s *Session) Running() bool {
	return s.running
}

// DeviceID returns the device being polled.
func (s *Session) DeviceID() (int, bool) {
	return s.deviceID, s.running
}

// LastStatus is the result of the most recent read, Idle before any.
func (s *Session) LastStatus() Status {
	return s.status
}

// ID is the current session's id, empty before the first start.
func (s *Session) ID() string {
	return s.sessionID
}

// StartSession stops any running session, then starts polling deviceID:
// it marks the device as polling, reads once immediately and schedules a
// read every PollInterval. A negative deviceID is rejected and leaves the
// current state untouched.
func (s *Session) StartSession(deviceID int) error {
	if deviceID < 0 {
		return errors.New(errors.ErrSession,
			"Cannot start polling: invalid device id",
			"Select a device before pressing start")
	}

	// The stop update can reach a subscriber that starts its own session.
	// Stop until idle so that one is released too.
	for s.running || s.handle != 0 {
		s.StopSession()
	}

	sid := uuid.NewString()
	s.sessionID = sid
	s.deviceID = deviceID
	s.running = true
	s.status = StatusIdle
	s.seq = 0

	s.reader.MarkPolling(deviceID, true)
	s.log.Info("session %s: polling device %d every %s", sid, deviceID, PollInterval)

	s.read()

	// A subscriber may have stopped or replaced the session during the
	// immediate read.
	if !s.running || s.sessionID != sid {
		return nil
	}
	s.handle = s.clock.Start(PollInterval, func() { s.onTick(sid) })
	return nil
}

// StopSession cancels the tick schedule and releases the device. It is
// safe to call at any time, any number of times.
func (s *Session) StopSession() {
	if s.handle != 0 {
		s.clock.Cancel(s.handle)
		s.handle = 0
	}
	if !s.running {
		return
	}
	s.running = false
	s.reader.MarkPolling(s.deviceID, false)
	s.log.Info("session %s: stopped device %d after %d ticks", s.sessionID, s.deviceID, s.seq)

	s.emit(Update{
		SessionID: s.sessionID,
		DeviceID:  s.deviceID,
		Running:   false,
		Status:    s.status,
		Seq:       s.seq,
		Time:      s.now(),
	})
}

func (s *Session) onTick(sid string) {
	if !s.running || s.sessionID != sid {
		return
	}
	s.seq++
	s.read()
}

func (s *Session) read() {
	r := s.reader.ReadCurrentValues(s.deviceID)
	u := Update{
		SessionID: s.sessionID,
		DeviceID:  s.deviceID,
		Running:   true,
		Seq:       s.seq,
		Time:      s.now(),
	}
	if r.IsSuccess() {
		s.status = StatusOK
		u.Status = StatusOK
		u.Readings = r.Data
	} else {
		s.status = StatusError
		u.Status = StatusError
		u.Code = r.Code
		u.Message = r.Message
		s.log.Warn("session %s: read device %d failed: %s (code %d)", s.sessionID, s.deviceID, r.Message, r.Code)
	}
	s.emit(u)
}

func (s *Session) emit(u Update) {
	for _, sub := range append([]subscriber(nil), s.subs...) {
		sub.fn(u)
	}
}
