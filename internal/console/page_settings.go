package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/fieldmon/internal/nav"
)

type settingsItem struct {
	label  string
	target nav.PageID
	action func(p *settingsPage)
}

var settingsItems = []settingsItem{
	{label: "Network", target: nav.Network},
	{label: "MQTT uplink", target: nav.MqttConfig},
	{label: "Logs", target: nav.Log},
	{label: "Help", target: nav.Help},
	{label: "Restart communication", action: (*settingsPage).restartComm},
}

type settingsPage struct {
	app    *App
	cursor int
}

func newSettingsPage(a *App) *settingsPage {
	return &settingsPage{app: a}
}

func (p *settingsPage) Title() string { return "Settings" }

func (p *settingsPage) Hints() string { return "↑/↓ select · enter open" }

func (p *settingsPage) Activate(nav.Param) {}

func (p *settingsPage) Deactivate() {}

func (p *settingsPage) open(i int) {
	it := settingsItems[i]
	if it.action != nil {
		it.action(p)
		return
	}
	p.app.nav.NavigateTo(it.target, nil)
}

func (p *settingsPage) restartComm() {
	if r := p.app.svc.System.RestartComm(); !r.IsSuccess() {
		p.app.notify(toastError, "%s", r.Message)
		return
	}
	p.app.notify(toastSuccess, "Communication restarted")
}

func (p *settingsPage) Update(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch {
	case key.Matches(k, keys.Up):
		p.cursor = clamp(p.cursor-1, 0, len(settingsItems)-1)
	case key.Matches(k, keys.Down):
		p.cursor = clamp(p.cursor+1, 0, len(settingsItems)-1)
	case key.Matches(k, keys.Enter):
		p.open(p.cursor)
	}
	return nil
}

func (p *settingsPage) Click(id string) tea.Cmd {
	if i, err := strconv.Atoi(strings.TrimPrefix(id, "settings:")); err == nil && i >= 0 && i < len(settingsItems) {
		p.cursor = i
		p.open(i)
	}
	return nil
}

func (p *settingsPage) View(width, height int) string {
	lines := make([]string, 0, len(settingsItems)+4)
	for i, it := range settingsItems {
		line := cell("  "+it.label, width/2)
		if i == p.cursor {
			line = SelectedRowStyle.Render(cell("› "+it.label, width/2))
		}
		lines = append(lines, p.app.mark("settings:"+strconv.Itoa(i), line))
	}

	serial := p.app.svc.System.SerialConfig().Data
	comm := p.app.svc.System.CommStatus().Data
	rs485 := ErrorStyle.Render(LEDOff + " down")
	if comm.RS485 {
		rs485 = OKStyle.Render(LEDOn + " up")
	}
	info := CardStyle.Render(strings.Join([]string{
		LabelStyle.Render("Serial  ") + ValueStyle.Render(serial.Port),
		LabelStyle.Render("Format  ") + fmt.Sprintf("%d %d%s%d", serial.BaudRate, serial.DataBits, parityLetter(serial.Parity), serial.StopBits),
		LabelStyle.Render("RS-485  ") + rs485,
		LabelStyle.Render("Rate    ") + fmt.Sprintf("%d%%", comm.RatePct),
	}, "\n"))

	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(lines, "\n"), "  ", info)
}

func parityLetter(parity string) string {
	if parity == "" {
		return "N"
	}
	return strings.ToUpper(parity[:1])
}
