package console

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/fieldmon/internal/nav"
	"github.com/rileyhilliard/fieldmon/internal/service"
	"github.com/rileyhilliard/fieldmon/internal/ui"
)

var alarmColumns = []ui.TableColumn{
	{Title: "Time", Width: 19},
	{Title: "Device", Width: 18},
	{Title: "Type", Width: 10},
	{Title: "Level", Width: 7},
	{Title: "Status", Width: 12},
}

type alarmPage struct {
	app    *App
	alarms []service.Alarm
	table  table.Model
}

func newAlarmPage(a *App) *alarmPage {
	return &alarmPage{app: a, table: ui.NewTable(alarmColumns, nil)}
}

func (p *alarmPage) Title() string { return "Alarm Center" }

func (p *alarmPage) Hints() string { return "a ack · c clear · r rules" }

func (p *alarmPage) HelpBindings() []helpBinding {
	return []helpBinding{
		{Key: "↑ / ↓", Desc: "Select alarm"},
		{Key: "a", Desc: "Acknowledge"},
		{Key: "c", Desc: "Clear"},
		{Key: "r", Desc: "Alarm rules"},
	}
}

func (p *alarmPage) Activate(nav.Param) {
	p.reload()
	p.table.Focus()
}

func (p *alarmPage) Deactivate() {
	p.table.Blur()
}

func (p *alarmPage) reload() {
	p.alarms = p.app.svc.Alarms.List().Data
	rows := make([]table.Row, 0, len(p.alarms))
	for _, a := range p.alarms {
		rows = append(rows, table.Row{a.Time, a.Device, a.Type, a.Level, a.Status()})
	}
	p.table.SetRows(rows)
	p.table.SetCursor(clamp(p.table.Cursor(), 0, len(rows)-1))
}

func (p *alarmPage) selected() (service.Alarm, bool) {
	i := p.table.Cursor()
	if i < 0 || i >= len(p.alarms) {
		return service.Alarm{}, false
	}
	return p.alarms[i], true
}

func (p *alarmPage) Update(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch k.String() {
	case "a":
		p.ack()
	case "c":
		p.clear()
	case "r":
		p.app.nav.NavigateTo(nav.AlarmRule, nil)
	default:
		var cmd tea.Cmd
		p.table, cmd = p.table.Update(msg)
		return cmd
	}
	return nil
}

func (p *alarmPage) Click(id string) tea.Cmd {
	switch id {
	case "alarm:ack":
		p.ack()
	case "alarm:clear":
		p.clear()
	case "alarm:rules":
		p.app.nav.NavigateTo(nav.AlarmRule, nil)
	}
	return nil
}

func (p *alarmPage) ack() {
	a, ok := p.selected()
	if !ok || a.Acknowledged {
		return
	}
	if r := p.app.svc.Alarms.Ack(a.ID); !r.IsSuccess() {
		p.app.notify(toastError, "%s", r.Message)
		return
	}
	p.app.svc.System.Logf(service.LogSystem, "Alarm %d acknowledged", a.ID)
	p.app.notify(toastSuccess, "Acknowledged")
	p.reload()
}

func (p *alarmPage) clear() {
	a, ok := p.selected()
	if !ok {
		return
	}
	p.app.ask(fmt.Sprintf("Clear alarm %d (%s)?", a.ID, a.Type), func() {
		if r := p.app.svc.Alarms.Clear(a.ID); !r.IsSuccess() {
			p.app.notify(toastError, "%s", r.Message)
			return
		}
		p.app.svc.System.Logf(service.LogSystem, "Alarm %d cleared", a.ID)
		p.app.notify(toastSuccess, "Cleared")
		p.reload()
	})
}

func (p *alarmPage) View(width, height int) string {
	buttons := buttonRow(
		p.app.button("alarm:ack", "Ack"),
		p.app.button("alarm:clear", "Clear"),
		p.app.button("alarm:rules", "Rules"),
	)
	active := p.app.svc.Alarms.ActiveCount()
	summary := OKStyle.Render("No active alarms")
	if active > 0 {
		summary = ErrorStyle.Render(strconv.Itoa(active) + " active")
	}
	if len(p.alarms) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, summary, MutedStyle.Render("Alarm list is empty."), buttons)
	}

	detail := ""
	if a, ok := p.selected(); ok {
		detail = LabelStyle.Render(a.Message)
		if a.Acknowledged {
			detail += MutedStyle.Render("  ack " + a.AckTime)
		}
	}
	p.table.SetWidth(width)
	p.table.SetHeight(height - 2 - lipgloss.Height(buttons))
	return lipgloss.JoinVertical(lipgloss.Left, summary, p.table.View(), detail, buttons)
}
