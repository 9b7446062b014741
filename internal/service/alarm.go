package service

import (
	"sync"
	"time"

	"github.com/rileyhilliard/fieldmon/internal/config"
)

// Alarm levels.
const (
	LevelWarning = "Warning"
	LevelError   = "Error"
)

// Alarm is one entry in the alarm center.
type Alarm struct {
	ID           int
	Time         string
	Device       string
	Type         string
	Level        string
	Message      string
	Acknowledged bool
	AckTime      string
}

// Status is "Active" until the alarm is acknowledged.
func (a Alarm) Status() string {
	if a.Acknowledged {
		return "Acknowledged"
	}
	return "Active"
}

// AlarmService stores alarms and the alarm rule values. Rules are
// configuration only; nothing here evaluates them.
type AlarmService struct {
	mu     sync.RWMutex
	alarms []Alarm
	nextID int
	rules  config.AlarmRules
	now    func() time.Time
}

// NewAlarmService seeds the alarm list with the panel's demo alarms.
func NewAlarmService(rules config.AlarmRules, now func() time.Time) *AlarmService {
	if now == nil {
		now = time.Now
	}
	s := &AlarmService{rules: rules, now: now, nextID: 1}
	for _, a := range []Alarm{
		{Time: "2024-01-15 09:30:15", Device: "Temperature Sensor", Type: "High Limit", Level: LevelWarning, Message: "Temperature exceeds 35C"},
		{Time: "2024-01-15 08:45:22", Device: "Flow Meter", Type: "Comm Fail", Level: LevelError, Message: "No response from device"},
		{Time: "2024-01-15 07:20:00", Device: "Pressure Gauge", Type: "Low Limit", Level: LevelWarning, Message: "Pressure below 1.0 bar", Acknowledged: true},
	} {
		a.ID = s.nextID
		s.nextID++
		s.alarms = append(s.alarms, a)
	}
	return s
}

// List returns every alarm, newest first as seeded.
func (s *AlarmService) List() Result[[]Alarm] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Alarm, len(s.alarms))
	copy(out, s.alarms)
	return OK(out)
}

// ActiveCount returns the number of unacknowledged alarms.
func (s *AlarmService) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, a := range s.alarms {
		if !a.Acknowledged {
			n++
		}
	}
	return n
}

// Ack acknowledges an alarm and stamps the time.
func (s *AlarmService) Ack(id int) Result[Empty] {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alarms {
		if s.alarms[i].ID == id {
			s.alarms[i].Acknowledged = true
			s.alarms[i].AckTime = s.now().Format("2006-01-02 15:04:05")
			return Done()
		}
	}
	return Fail[Empty](CodeNotFound, "Alarm not found")
}

// Clear removes an alarm.
func (s *AlarmService) Clear(id int) Result[Empty] {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.alarms {
		if s.alarms[i].ID == id {
			s.alarms = append(s.alarms[:i], s.alarms[i+1:]...)
			return Done()
		}
	}
	return Fail[Empty](CodeNotFound, "Alarm not found")
}

// LoadRules returns the stored rule values.
func (s *AlarmService) LoadRules() Result[config.AlarmRules] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return OK(s.rules)
}

// SaveRules replaces the rule values.
func (s *AlarmService) SaveRules(r config.AlarmRules) Result[Empty] {
	if r.LowLimit > r.HighLimit {
		return Fail[Empty](CodeInvalid, "Low limit must not exceed high limit")
	}
	if r.CommTimeoutMs < 100 || r.DurationSec < 0 {
		return Fail[Empty](CodeInvalid, "Timeout must be at least 100ms")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules = r
	return Done()
}
