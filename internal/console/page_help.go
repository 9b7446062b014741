package console

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rileyhilliard/fieldmon/internal/nav"
)

var helpText = []struct {
	title string
	body  string
}{
	{"Monitor", "Pick a device with ←/→ and press s to start polling. Values refresh every second. Leaving the page stops polling."},
	{"Devices", "Add, edit or delete Modbus RTU devices. Addresses are 1-247 and must be unique."},
	{"Alarms", "Acknowledge or clear alarms. Rules set the comm timeout and value limits."},
	{"Settings", "Network, MQTT uplink and logs. Exported logs are written to the export directory."},
	{"Touch", "Buttons and table rows respond to taps. esc or ‹ goes back."},
}

type helpPage struct {
	app *App
}

func newHelpPage(a *App) *helpPage {
	return &helpPage{app: a}
}

func (p *helpPage) Title() string { return "Help" }

func (p *helpPage) Hints() string { return "" }

func (p *helpPage) Activate(nav.Param) {}

func (p *helpPage) Deactivate() {}

func (p *helpPage) Update(tea.Msg) tea.Cmd { return nil }

func (p *helpPage) View(width, height int) string {
	var b strings.Builder
	for _, s := range helpText {
		b.WriteString(AccentStyle.Render(s.title))
		b.WriteString("\n")
		b.WriteString(LabelStyle.Width(width).Render(s.body))
		b.WriteString("\n")
	}
	b.WriteString(MutedStyle.Render("fieldmon " + p.app.svc.System.Version()))
	return b.String()
}
