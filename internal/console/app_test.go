package console

import (
	"context"
	"os"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/fieldmon/internal/config"
	"github.com/rileyhilliard/fieldmon/internal/logger"
	"github.com/rileyhilliard/fieldmon/internal/nav"
	"github.com/rileyhilliard/fieldmon/internal/service"
	"github.com/rileyhilliard/fieldmon/internal/session"
)

func TestMain(m *testing.M) {
	lipgloss.SetColorProfile(termenv.Ascii)
	os.Exit(m.Run())
}

type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type rig struct {
	app   *App
	svc   *service.Services
	log   *logger.BufferLogger
	clock *testClock
}

func fakeProbe(context.Context) (service.SystemInfo, error) {
	return service.SystemInfo{CPUPercent: 12.5, MemPercent: 40, Uptime: 3 * time.Hour}, nil
}

func newRig(t *testing.T, mutate ...func(*config.Config)) *rig {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Simulation.Seed = 42
	cfg.Log.ExportDir = t.TempDir()
	for _, m := range mutate {
		m(cfg)
	}
	clk := &testClock{t: time.Date(2024, 1, 15, 9, 0, 0, 0, time.UTC)}
	log := logger.NewBufferLogger()
	devices := service.NewDeviceService(cfg.Devices, cfg.Simulation.OfflineAddresses)
	svc := &service.Services{
		Devices: devices,
		Modbus:  service.NewModbusService(devices, cfg.Simulation.Seed, clk.now),
		Alarms:  service.NewAlarmService(cfg.AlarmRules, clk.now),
		Network: service.NewNetworkService(cfg.Network),
		Mqtt:    service.NewMqttService(cfg.MQTT, nil, log),
		System:  service.NewSystemService(cfg, devices, "test", fakeProbe, clk.now),
	}
	app := New(Options{Config: cfg, Services: svc, Logger: log, Now: clk.now})
	app.Init()
	return &rig{app: app, svc: svc, log: log, clock: clk}
}

func (r *rig) send(msgs ...tea.Msg) {
	for _, m := range msgs {
		r.app.Update(m)
	}
}

func (r *rig) press(keys ...string) {
	for _, k := range keys {
		r.send(keyMsg(k))
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// fire delivers one tick to every live timer with the given interval.
func (r *rig) fire(interval time.Duration) int {
	var due []session.Handle
	for h, tm := range r.app.clock.timers {
		if tm.interval == interval {
			due = append(due, h)
		}
	}
	for _, h := range due {
		r.send(clockTickMsg{handle: h})
	}
	return len(due)
}

func (r *rig) monitor() *monitorPage {
	return r.app.pages[nav.Monitor].(*monitorPage)
}

func TestNew_StartsOnHome(t *testing.T) {
	r := newRig(t)

	assert.Equal(t, nav.Home, r.app.Current())
	home := r.app.pages[nav.Home].(*homePage)
	assert.True(t, r.app.clock.active(home.handle), "home refresh scheduled")
	assert.Equal(t, 2, home.online)
	assert.Equal(t, 3, home.total)
	assert.InDelta(t, 12.5, home.info.CPUPercent, 0.001)
}

func TestApp_GlobalKeys(t *testing.T) {
	t.Run("menu digit navigates and esc goes back", func(t *testing.T) {
		r := newRig(t)
		r.press("1")
		assert.Equal(t, nav.DeviceList, r.app.Current())
		r.press("esc")
		assert.Equal(t, nav.Home, r.app.Current())
	})

	t.Run("backspace goes back", func(t *testing.T) {
		r := newRig(t)
		r.press("4", "backspace")
		assert.Equal(t, nav.Home, r.app.Current())
	})

	t.Run("back on empty history stays home", func(t *testing.T) {
		r := newRig(t)
		r.press("esc")
		assert.Equal(t, nav.Home, r.app.Current())
		assert.False(t, r.app.Quitting())
	})

	t.Run("q quits only on home", func(t *testing.T) {
		r := newRig(t)
		r.press("1", "q")
		assert.False(t, r.app.Quitting())
		r.press("esc", "q")
		assert.True(t, r.app.Quitting())
	})

	t.Run("ctrl+c quits anywhere", func(t *testing.T) {
		r := newRig(t)
		r.press("2")
		_, cmd := r.app.Update(keyMsg("ctrl+c"))
		assert.True(t, r.app.Quitting())
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})

	t.Run("help overlay swallows keys", func(t *testing.T) {
		r := newRig(t)
		r.press("?")
		assert.True(t, r.app.showHelp)
		r.press("1")
		assert.Equal(t, nav.Home, r.app.Current())
		r.press("?")
		assert.False(t, r.app.showHelp)
	})
}

func TestApp_HomeRefreshCancelledOnLeave(t *testing.T) {
	r := newRig(t)
	home := r.app.pages[nav.Home].(*homePage)
	h := home.handle

	r.press("1")

	assert.False(t, r.app.clock.active(h))
	r.send(clockTickMsg{handle: h})
	assert.Equal(t, nav.DeviceList, r.app.Current())
}

func TestApp_HomeRefreshesOnTick(t *testing.T) {
	r := newRig(t)
	home := r.app.pages[nav.Home].(*homePage)
	first := home.updated

	r.clock.advance(5 * time.Second)
	require.Equal(t, 1, r.fire(homeRefreshInterval))

	assert.True(t, home.updated.After(first))
}

func TestApp_MonitorFlow(t *testing.T) {
	r := newRig(t)

	// DeviceList row 0 is device 1; m opens Monitor preselected.
	r.press("1", "m")
	require.Equal(t, nav.Monitor, r.app.Current())
	m := r.monitor()
	id, ok := r.app.coord.Selected()
	require.True(t, ok)
	assert.Equal(t, 1, id)
	assert.False(t, r.app.session.Running(), "activation never starts polling")

	r.press("s")
	require.True(t, r.app.session.Running())
	assert.True(t, r.svc.Modbus.IsPolling(1))
	require.Len(t, m.readings, 10, "immediate read")
	assert.Equal(t, 1, r.app.history.Count(1, 0))

	r.clock.advance(time.Second)
	require.Equal(t, 1, r.fire(session.PollInterval))
	assert.Equal(t, 2, r.app.history.Count(1, 0))

	comm := r.svc.System.Log(service.LogComm).Data
	require.Len(t, comm, 2)
	assert.Contains(t, comm[0], "Device 1: read 10 registers")

	r.press("esc")
	assert.Equal(t, nav.DeviceList, r.app.Current())
	assert.False(t, r.app.session.Running(), "leaving Monitor stops polling")
	assert.False(t, r.svc.Modbus.IsPolling(1))
	assert.Zero(t, r.fire(session.PollInterval))
}

func TestApp_MonitorDeviceChangeStops(t *testing.T) {
	r := newRig(t)
	r.press("2", "s")
	require.True(t, r.app.session.Running())

	r.press("right")

	assert.False(t, r.app.session.Running())
	id, _ := r.app.coord.Selected()
	assert.Equal(t, 2, id)
	assert.Empty(t, r.monitor().readings)
}

func TestApp_MonitorOfflineDeviceShowsError(t *testing.T) {
	r := newRig(t)
	r.app.nav.NavigateTo(nav.Monitor, nav.IntParam(3))
	r.press("s")

	require.True(t, r.app.session.Running())
	assert.Equal(t, session.StatusError, r.app.session.LastStatus())
	assert.Contains(t, r.monitor().lastErr, "code 503")
	assert.Contains(t, r.app.View(), "Error")
}

func TestApp_DetailRoundTrip(t *testing.T) {
	r := newRig(t)
	r.press("2", "s", "down", "enter")

	require.Equal(t, nav.DataDetail, r.app.Current())
	assert.False(t, r.app.session.Running(), "Monitor deactivation stopped polling")
	d := r.app.pages[nav.DataDetail].(*detailPage)
	assert.Equal(t, nav.RegisterParam{DeviceID: 1, Address: 1}, d.target)
	require.True(t, d.loaded)
	h := d.handle
	assert.True(t, r.app.clock.active(h))
	assert.Equal(t, 1, r.fire(detailRefreshInterval))

	r.press("esc")
	assert.Equal(t, nav.Monitor, r.app.Current())
	assert.False(t, r.app.clock.active(h), "detail refresh cancelled on leave")
	assert.False(t, r.app.session.Running(), "returning never restarts polling")
	id, _ := r.app.coord.Selected()
	assert.Equal(t, 1, id, "selection survives the round trip")

	// No param keeps the previous register.
	r.app.nav.NavigateTo(nav.DataDetail, nil)
	assert.Equal(t, nav.RegisterParam{DeviceID: 1, Address: 1}, d.target)
}

func TestApp_DetailNewRegisterDropsOldStats(t *testing.T) {
	r := newRig(t)
	r.press("2", "s", "down", "enter")
	d := r.app.pages[nav.DataDetail].(*detailPage)
	require.True(t, d.loaded)
	require.Contains(t, r.app.View(), "Device 1 · Register 1")

	r.press("esc")
	r.app.nav.NavigateTo(nav.DataDetail, nav.RegisterParam{DeviceID: 99, Address: 0})

	assert.Equal(t, nav.RegisterParam{DeviceID: 99, Address: 0}, d.target)
	assert.False(t, d.loaded)
	view := r.app.View()
	assert.Contains(t, view, "Device not found")
	assert.NotContains(t, view, "Device 1 · Register 1")
	assert.NotContains(t, view, "min ")
}

func TestApp_DetailWithoutRegister(t *testing.T) {
	r := newRig(t)
	r.app.nav.NavigateTo(nav.DataDetail, nil)
	assert.Contains(t, r.app.View(), "No register selected")
}

func TestApp_DeleteDeviceConfirm(t *testing.T) {
	r := newRig(t)
	r.press("1", "d")
	require.NotNil(t, r.app.confirm)

	r.press("n")
	assert.Nil(t, r.app.confirm)
	assert.Len(t, r.svc.Devices.List().Data, 3)

	r.press("d", "y")
	assert.Len(t, r.svc.Devices.List().Data, 2)
	assert.Equal(t, "Deleted Temperature Sensor", r.app.Toast())
}

func TestApp_ScanToast(t *testing.T) {
	r := newRig(t)
	r.press("1", "s")
	assert.Equal(t, "Found 2 device(s) at 1, 2", r.app.Toast())

	r.clock.advance(toastDuration)
	r.fire(toastDuration)
	assert.Empty(t, r.app.Toast())
}

func TestApp_DeviceConfigNewAndEdit(t *testing.T) {
	r := newRig(t)
	r.press("1", "a")
	require.Equal(t, nav.DeviceConfig, r.app.Current())
	p := r.app.pages[nav.DeviceConfig].(*deviceConfigPage)
	assert.Equal(t, -1, p.id)
	assert.True(t, p.CapturesInput())

	// Typing into the form never triggers global keys.
	r.press("q", "?")
	assert.Equal(t, nav.DeviceConfig, r.app.Current())
	assert.False(t, r.app.showHelp)
	assert.False(t, r.app.Quitting())

	p.fields.name = "Level Probe"
	p.fields.address = "0"
	p.submit()
	assert.Equal(t, nav.DeviceConfig, r.app.Current(), "invalid device stays on the form")
	assert.Contains(t, r.app.Toast(), "code 1")

	p.fields.address = "9"
	p.submit()
	assert.Equal(t, nav.DeviceList, r.app.Current())
	assert.Len(t, r.svc.Devices.List().Data, 4)

	r.app.nav.NavigateTo(nav.DeviceConfig, nav.IntParam(2))
	assert.Equal(t, 2, p.id)
	assert.Equal(t, "Pressure Gauge", p.fields.name)

	r.press("esc")
	r.app.nav.NavigateTo(nav.DeviceConfig, nav.IntParam(99))
	assert.Equal(t, -1, p.id, "unknown id falls back to a new device")
}

func TestApp_EscLeavesForm(t *testing.T) {
	r := newRig(t)
	r.press("1", "a", "esc")
	assert.Equal(t, nav.DeviceList, r.app.Current())
}

func TestApp_AlarmAckAndRules(t *testing.T) {
	r := newRig(t)
	r.press("3")
	require.Equal(t, nav.AlarmCenter, r.app.Current())
	require.Equal(t, 2, r.svc.Alarms.ActiveCount())

	r.press("a")
	assert.Equal(t, 1, r.svc.Alarms.ActiveCount())

	r.press("r")
	require.Equal(t, nav.AlarmRule, r.app.Current())
	p := r.app.pages[nav.AlarmRule].(*alarmRulePage)
	p.fields.low = "500"
	p.submit()
	assert.Equal(t, nav.AlarmRule, r.app.Current())
	assert.Contains(t, r.app.Toast(), "Low limit")

	p.fields.low = "10"
	p.submit()
	assert.Equal(t, nav.AlarmCenter, r.app.Current())
	assert.InDelta(t, 10, r.svc.Alarms.LoadRules().Data.LowLimit, 0.001)
}

func TestApp_NetworkApply(t *testing.T) {
	r := newRig(t)
	r.app.nav.NavigateTo(nav.Network, nil)
	p := r.app.pages[nav.Network].(*networkPage)

	p.fields.DHCP = false
	p.fields.IP = "not-an-ip"
	p.submit()
	assert.Equal(t, nav.Network, r.app.Current())

	p.fields.IP = "10.0.0.5"
	p.submit()
	assert.Equal(t, "10.0.0.5", r.svc.Network.Applied().IP)
	assert.Equal(t, nav.Home, r.app.Current())
}

func TestApp_SettingsMenu(t *testing.T) {
	r := newRig(t)
	r.press("4", "down", "down", "enter")
	assert.Equal(t, nav.Log, r.app.Current())

	r.press("x")
	assert.Contains(t, r.app.Toast(), "fieldmon-system-")
}

func TestApp_Click(t *testing.T) {
	r := newRig(t)
	r.app.click("home:alarms")
	assert.Equal(t, nav.AlarmCenter, r.app.Current())
	r.app.click(zoneBack)
	assert.Equal(t, nav.Home, r.app.Current())

	r.app.click("home:monitor")
	r.app.click("mon:toggle")
	require.True(t, r.app.session.Running())
	r.app.click("mon:row:2")
	assert.Equal(t, nav.DataDetail, r.app.Current())
	assert.False(t, r.app.session.Running())
}

func TestApp_IdleReturnsHome(t *testing.T) {
	r := newRig(t, func(c *config.Config) { c.Console.IdleHome = "30s" })
	require.NotZero(t, r.app.idleHandle)

	r.press("4", "enter")
	require.Equal(t, nav.Network, r.app.Current())

	r.clock.advance(20 * time.Second)
	r.send(clockTickMsg{handle: r.app.idleHandle})
	assert.Equal(t, nav.Network, r.app.Current())

	r.clock.advance(11 * time.Second)
	r.send(clockTickMsg{handle: r.app.idleHandle})
	assert.Equal(t, nav.Home, r.app.Current())
	assert.Empty(t, r.app.nav.History())
}

func TestApp_ViewFitsPanel(t *testing.T) {
	r := newRig(t)
	for _, keys := range [][]string{{}, {"1"}, {"esc", "2", "s"}, {"esc", "3"}, {"esc", "4"}, {"?"}} {
		r.press(keys...)
		out := r.app.View()
		assert.Equal(t, 80, lipgloss.Width(out), "page %s", r.app.Current())
		assert.Equal(t, 24, lipgloss.Height(out), "page %s", r.app.Current())
	}
}

func TestApp_ShutdownStopsPolling(t *testing.T) {
	r := newRig(t)
	r.press("2", "s")
	require.True(t, r.app.session.Running())

	r.press("ctrl+c")

	assert.False(t, r.app.session.Running())
	assert.False(t, r.svc.Modbus.IsPolling(1))
	assert.Empty(t, r.app.View())
	assert.True(t, r.log.Contains("info", "stopped device 1"))
}
