package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/fieldmon/internal/nav"
	"github.com/rileyhilliard/fieldmon/internal/service"
	"github.com/rileyhilliard/fieldmon/internal/session"
	"github.com/rileyhilliard/fieldmon/internal/ui"
)

const sparklineWidth = 16

var monitorWidths = []int{6, 14, 10, 5, sparklineWidth + 2, 9}

// monitorPage is the live register view. Its lifecycle is delegated to the
// monitor.Coordinator, so activation never starts polling and deactivation
// always stops it.
type monitorPage struct {
	app     *App
	devices []service.Device
	index   int

	readings []service.RegisterReading
	shownFor int
	lastErr  string
	cursor   int
}

func newMonitorPage(a *App) *monitorPage {
	return &monitorPage{app: a, index: -1, shownFor: -1}
}

func (p *monitorPage) Title() string { return "Monitor" }

func (p *monitorPage) Hints() string { return "←/→ device · s start/stop · enter detail" }

func (p *monitorPage) HelpBindings() []helpBinding {
	return []helpBinding{
		{Key: "← / →", Desc: "Previous / next device"},
		{Key: "s / space", Desc: "Start or stop polling"},
		{Key: "↑ / ↓", Desc: "Select register"},
		{Key: "enter", Desc: "Register detail"},
	}
}

func (p *monitorPage) Activate(param nav.Param) {
	p.reloadDevices()
	p.app.coord.OnMonitorPageActivated(param)

	id, ok := p.app.coord.Selected()
	p.index = p.indexOf(id)
	if (!ok || p.index < 0) && len(p.devices) > 0 {
		p.index = 0
		p.app.coord.OnDeviceSelectionChanged(p.devices[0].ID)
	}
	p.syncShown()
}

func (p *monitorPage) Deactivate() {
	p.app.coord.OnMonitorPageDeactivated()
}

func (p *monitorPage) reloadDevices() {
	if r := p.app.svc.Devices.List(); r.IsSuccess() {
		p.devices = r.Data
	} else {
		p.devices = nil
	}
}

func (p *monitorPage) indexOf(id int) int {
	for i, d := range p.devices {
		if d.ID == id {
			return i
		}
	}
	return -1
}

func (p *monitorPage) selectedDevice() (service.Device, bool) {
	if p.index < 0 || p.index >= len(p.devices) {
		return service.Device{}, false
	}
	return p.devices[p.index], true
}

// syncShown drops readings that belong to another device.
func (p *monitorPage) syncShown() {
	d, ok := p.selectedDevice()
	if !ok || d.ID != p.shownFor {
		p.readings = nil
		p.lastErr = ""
		p.cursor = 0
		p.shownFor = d.ID
		if !ok {
			p.shownFor = -1
		}
	}
}

// onUpdate receives every session update, whichever page is visible.
func (p *monitorPage) onUpdate(u session.Update) {
	if u.DeviceID != p.shownFor || !u.Running {
		return
	}
	switch u.Status {
	case session.StatusOK:
		p.readings = u.Readings
		p.lastErr = ""
		p.cursor = clamp(p.cursor, 0, len(p.readings)-1)
	case session.StatusError:
		p.lastErr = fmt.Sprintf("%s (code %d)", u.Message, u.Code)
	}
}

func (p *monitorPage) step(delta int) {
	if len(p.devices) == 0 {
		return
	}
	p.index = (p.index + delta + len(p.devices)) % len(p.devices)
	p.app.coord.OnDeviceSelectionChanged(p.devices[p.index].ID)
	p.syncShown()
}

func (p *monitorPage) toggle() {
	if err := p.app.coord.Toggle(); err != nil {
		p.app.notify(toastError, "No device selected")
	}
}

func (p *monitorPage) openDetail(i int) {
	if i < 0 || i >= len(p.readings) {
		return
	}
	p.app.nav.NavigateTo(nav.DataDetail, nav.RegisterParam{
		DeviceID: p.shownFor,
		Address:  p.readings[i].Address,
	})
}

func (p *monitorPage) Update(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(k, keys.Left):
		p.step(-1)
	case key.Matches(k, keys.Right):
		p.step(1)
	case key.Matches(k, keys.Up):
		p.cursor = clamp(p.cursor-1, 0, len(p.readings)-1)
	case key.Matches(k, keys.Down):
		p.cursor = clamp(p.cursor+1, 0, len(p.readings)-1)
	case key.Matches(k, keys.Enter):
		p.openDetail(p.cursor)
	case k.String() == "s" || k.String() == " ":
		p.toggle()
	}
	return nil
}

func (p *monitorPage) Click(id string) tea.Cmd {
	switch {
	case id == "mon:prev":
		p.step(-1)
	case id == "mon:next":
		p.step(1)
	case id == "mon:toggle":
		p.toggle()
	case strings.HasPrefix(id, "mon:row:"):
		i, err := strconv.Atoi(strings.TrimPrefix(id, "mon:row:"))
		if err == nil {
			p.cursor = i
			p.openDetail(i)
		}
	}
	return nil
}

func (p *monitorPage) statusLine() string {
	if !p.app.coord.Running() {
		return MutedStyle.Render(LEDOff + " Stopped")
	}
	switch p.app.session.LastStatus() {
	case session.StatusOK:
		return OKStyle.Render(LEDOn + " Ok")
	case session.StatusError:
		return ErrorStyle.Render(LEDOn + " Error")
	default:
		return WarnStyle.Render(LEDOn + " Polling")
	}
}

func (p *monitorPage) View(width, height int) string {
	d, ok := p.selectedDevice()
	if !ok {
		return MutedStyle.Render("No devices configured.")
	}

	label := "Start"
	if p.app.coord.Running() {
		label = "Stop"
	}
	selector := lipgloss.JoinHorizontal(lipgloss.Center,
		p.app.mark("mon:prev", AccentStyle.Render(" ‹ ")),
		ValueStyle.Render(fmt.Sprintf("%s (addr %d)", d.Name, d.Address)),
		p.app.mark("mon:next", AccentStyle.Render(" › ")),
		"  ",
		p.statusLine(),
		"  ",
		p.app.button("mon:toggle", label),
	)

	lines := []string{selector}
	if p.lastErr != "" {
		lines = append(lines, ErrorStyle.Render(p.lastErr))
	}
	lines = append(lines, LabelStyle.Render(row(monitorWidths, "Addr", "Name", "Value", "Unit", "Trend", "Time")))

	if len(p.readings) == 0 {
		hint := "Press s to start polling."
		if p.app.coord.Running() {
			hint = "Waiting for data..."
		}
		lines = append(lines, MutedStyle.Render(hint))
		return strings.Join(lines, "\n")
	}

	rules := p.app.svc.Alarms.LoadRules().Data
	limits := ui.Limits{Low: rules.LowLimit, High: rules.HighLimit, Enabled: rules.LimitAlarm}
	visible := height - lipgloss.Height(strings.Join(lines, "\n"))
	start, end := window(len(p.readings), p.cursor, visible)
	for i := start; i < end; i++ {
		r := p.readings[i]
		trend := ui.RenderSparkline(p.app.history.Last(p.shownFor, r.Address, sparklineWidth), sparklineWidth, limits)
		line := row(monitorWidths,
			strconv.Itoa(r.Address),
			r.Name,
			fmt.Sprintf("%.2f", r.Value),
			r.Unit,
			trend,
			r.Timestamp,
		)
		if i == p.cursor {
			line = SelectedRowStyle.Render(line)
		}
		lines = append(lines, p.app.mark("mon:row:"+strconv.Itoa(i), line))
	}
	return strings.Join(lines, "\n")
}
