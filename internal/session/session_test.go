package session_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rileyhilliard/fieldmon/internal/errors"
	"github.com/rileyhilliard/fieldmon/internal/logger"
	"github.com/rileyhilliard/fieldmon/internal/service"
	"github.com/rileyhilliard/fieldmon/internal/session"
	sessiontest "github.com/rileyhilliard/fieldmon/internal/session/testing"
)

// fakeReader records every call in order and can fail chosen reads.
type fakeReader struct {
	calls  []string
	reads  int
	failOn map[int]bool // 1-based read number
}

func (r *fakeReader) MarkPolling(deviceID int, active bool) {
	r.calls = append(r.calls, fmt.Sprintf("mark %d %t", deviceID, active))
}

func (r *fakeReader) ReadCurrentValues(deviceID int) service.Result[[]service.RegisterReading] {
	r.reads++
	r.calls = append(r.calls, fmt.Sprintf("read %d", deviceID))
	if r.failOn[r.reads] {
		return service.Fail[[]service.RegisterReading](service.CodeNoResponse, "No response from device %d", deviceID)
	}
	return service.OK([]service.RegisterReading{{Address: 0, Name: "Register 0", Value: float64(r.reads), Unit: "℃"}})
}

func (r *fakeReader) readsOf(deviceID int) int {
	n := 0
	want := fmt.Sprintf("read %d", deviceID)
	for _, c := range r.calls {
		if c == want {
			n++
		}
	}
	return n
}

func newSession(t *testing.T) (*session.Session, *fakeReader, *sessiontest.ManualClock, *[]session.Update) {
	t.Helper()
	r := &fakeReader{failOn: map[int]bool{}}
	clk := sessiontest.NewManualClock()
	s := session.New(r, clk, logger.Noop())
	var updates []session.Update
	s.Subscribe(func(u session.Update) { updates = append(updates, u) })
	return s, r, clk, &updates
}

func TestStartSession_ImmediateReadThenEverySecond(t *testing.T) {
	s, r, clk, updates := newSession(t)

	require.NoError(t, s.StartSession(2))

	assert.True(t, s.Running())
	assert.Equal(t, []string{"mark 2 true", "read 2"}, r.calls)
	require.Len(t, *updates, 1)
	assert.Equal(t, 0, (*updates)[0].Seq)
	assert.Equal(t, session.StatusOK, s.LastStatus())
	assert.NotEmpty(t, s.ID())

	clk.Advance(999 * time.Millisecond)
	assert.Equal(t, 1, r.readsOf(2), "the clock never ticks immediately")

	clk.Advance(time.Millisecond)
	assert.Equal(t, 2, r.readsOf(2))

	clk.Advance(3 * time.Second)
	assert.Equal(t, 5, r.readsOf(2))
	assert.Equal(t, 4, (*updates)[len(*updates)-1].Seq)
}

func TestStartSession_RejectsNegativeDevice(t *testing.T) {
	s, r, clk, _ := newSession(t)
	require.NoError(t, s.StartSession(1))
	r.calls = nil

	err := s.StartSession(-1)

	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrSession))
	assert.True(t, s.Running(), "existing session untouched")
	id, _ := s.DeviceID()
	assert.Equal(t, 1, id)
	assert.Empty(t, r.calls)
	assert.Equal(t, 1, clk.Active())
}

func TestStartSession_StopsPreviousFirst(t *testing.T) {
	s, r, clk, _ := newSession(t)
	require.NoError(t, s.StartSession(5))
	first := s.ID()
	clk.Advance(2 * time.Second)
	r.calls = nil

	require.NoError(t, s.StartSession(7))

	assert.Equal(t, []string{"mark 5 false", "mark 7 true", "read 7"}, r.calls)
	assert.Equal(t, []session.Handle{1}, clk.Cancelled)
	assert.Equal(t, 1, clk.Active(), "no overlapping timers")
	assert.NotEqual(t, first, s.ID())

	clk.Advance(3 * time.Second)
	assert.Zero(t, r.readsOf(5))
	assert.Equal(t, 4, r.readsOf(7))
}

func TestStartSession_SameDeviceRestarts(t *testing.T) {
	s, r, clk, _ := newSession(t)
	require.NoError(t, s.StartSession(3))
	require.NoError(t, s.StartSession(3))

	assert.Equal(t, []string{"mark 3 true", "read 3", "mark 3 false", "mark 3 true", "read 3"}, r.calls)
	assert.Equal(t, 1, clk.Active())
}

func TestStopSession(t *testing.T) {
	s, r, clk, updates := newSession(t)

	assert.NotPanics(t, s.StopSession, "stop without a session")
	assert.Empty(t, r.calls)
	assert.Empty(t, *updates)

	require.NoError(t, s.StartSession(4))
	s.StopSession()
	s.StopSession()

	assert.False(t, s.Running())
	assert.Equal(t, []string{"mark 4 true", "read 4", "mark 4 false"}, r.calls)
	assert.Zero(t, clk.Active())

	last := (*updates)[len(*updates)-1]
	assert.False(t, last.Running)
	n := len(*updates)

	clk.Advance(10 * time.Second)
	assert.Equal(t, 1, r.readsOf(4), "no reads after stop")
	assert.Len(t, *updates, n, "no renderer updates after stop")
}

func TestOnTick_ErrorKeepsRunning(t *testing.T) {
	s, r, clk, updates := newSession(t)
	// read 1 is the immediate read, so tick N is read N+1.
	r.failOn[4] = true

	require.NoError(t, s.StartSession(2))
	clk.Advance(3 * time.Second)

	assert.True(t, s.Running())
	assert.Equal(t, session.StatusError, s.LastStatus())
	last := (*updates)[len(*updates)-1]
	assert.Equal(t, 3, last.Seq)
	assert.Equal(t, session.StatusError, last.Status)
	assert.Equal(t, service.CodeNoResponse, last.Code)
	require.Error(t, last.Err())
	assert.True(t, errors.IsCode(last.Err(), errors.ErrDevice))

	clk.Advance(time.Second)
	assert.Equal(t, 5, r.readsOf(2), "tick 4 still fires")
	assert.Equal(t, session.StatusOK, s.LastStatus())
	assert.NoError(t, (*updates)[len(*updates)-1].Err())
}

func TestSubscriberStoppingDuringImmediateRead(t *testing.T) {
	r := &fakeReader{failOn: map[int]bool{}}
	clk := sessiontest.NewManualClock()
	s := session.New(r, clk, logger.Noop())
	s.Subscribe(func(u session.Update) {
		if u.Running {
			s.StopSession()
		}
	})

	require.NoError(t, s.StartSession(1))

	assert.False(t, s.Running())
	assert.Zero(t, clk.Active(), "no timer scheduled for a session stopped during start")
}

func TestSubscriberStartingDuringStopUpdate(t *testing.T) {
	s, r, clk, _ := newSession(t)
	require.NoError(t, s.StartSession(5))

	restarted := false
	s.Subscribe(func(u session.Update) {
		if !u.Running && u.DeviceID == 5 && !restarted {
			restarted = true
			require.NoError(t, s.StartSession(9))
		}
	})
	r.calls = nil

	require.NoError(t, s.StartSession(7))

	assert.True(t, restarted)
	assert.Equal(t, []string{
		"mark 5 false", "mark 9 true", "read 9", "mark 9 false", "mark 7 true", "read 7",
	}, r.calls)
	dev, ok := s.DeviceID()
	assert.True(t, ok)
	assert.Equal(t, 7, dev)
	assert.Equal(t, 1, clk.Active(), "only the outer session keeps a timer")

	clk.Advance(3 * time.Second)
	assert.Equal(t, 1, r.readsOf(9))
	assert.Equal(t, 4, r.readsOf(7))

	s.StopSession()
	assert.Zero(t, clk.Active())
	assert.Equal(t, "mark 7 false", r.calls[len(r.calls)-1])
}

func TestUnsubscribe(t *testing.T) {
	s, _, clk, _ := newSession(t)
	n := 0
	unsub := s.Subscribe(func(session.Update) { n++ })

	require.NoError(t, s.StartSession(1))
	unsub()
	unsub()
	clk.Advance(2 * time.Second)

	assert.Equal(t, 1, n)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Idle", session.StatusIdle.String())
	assert.Equal(t, "Ok", session.StatusOK.String())
	assert.Equal(t, "Error", session.StatusError.String())
}

func TestStartSession_CallOrderWithMock(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := session.NewMockReader(ctrl)
	clk := sessiontest.NewManualClock()
	s := session.New(reader, clk, logger.Noop())

	ok := service.OK([]service.RegisterReading{})
	gomock.InOrder(
		reader.EXPECT().MarkPolling(5, true),
		reader.EXPECT().ReadCurrentValues(5).Return(ok),
		reader.EXPECT().MarkPolling(5, false),
		reader.EXPECT().MarkPolling(7, true),
		reader.EXPECT().ReadCurrentValues(7).Return(ok),
		reader.EXPECT().ReadCurrentValues(7).Return(ok).Times(2),
		reader.EXPECT().MarkPolling(7, false),
	)

	require.NoError(t, s.StartSession(5))
	require.NoError(t, s.StartSession(7))
	clk.Advance(2 * time.Second)
	s.StopSession()
	clk.Advance(5 * time.Second)
}
