package console

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/fieldmon/internal/nav"
	"github.com/rileyhilliard/fieldmon/internal/service"
	"github.com/rileyhilliard/fieldmon/internal/session"
)

const homeRefreshInterval = 5 * time.Second

type homeEntry struct {
	id    string
	label string
	page  nav.PageID
}

var homeEntries = []homeEntry{
	{id: "home:devices", label: "1 Devices", page: nav.DeviceList},
	{id: "home:monitor", label: "2 Monitor", page: nav.Monitor},
	{id: "home:alarms", label: "3 Alarms", page: nav.AlarmCenter},
	{id: "home:settings", label: "4 Settings", page: nav.Settings},
}

// homePage shows the status cards and the main menu. While visible it
// refreshes the cards every homeRefreshInterval.
type homePage struct {
	app    *App
	handle session.Handle

	info    service.SystemInfo
	infoErr string
	online  int
	total   int
	alarms  int
	mqttOn  bool
	updated time.Time
}

func newHomePage(a *App) *homePage {
	return &homePage{app: a}
}

func (p *homePage) Title() string { return "Home" }

func (p *homePage) Hints() string { return "1-4 open · q quit" }

func (p *homePage) Activate(nav.Param) {
	p.refresh()
	p.handle = p.app.clock.Start(homeRefreshInterval, p.refresh)
}

func (p *homePage) Deactivate() {
	if p.handle != 0 {
		p.app.clock.Cancel(p.handle)
		p.handle = 0
	}
}

func (p *homePage) refresh() {
	svc := p.app.svc
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if r := svc.System.Info(ctx); r.IsSuccess() {
		p.info, p.infoErr = r.Data, ""
	} else {
		p.infoErr = r.Message
	}
	p.online, p.total = svc.Devices.Counts()
	p.alarms = svc.Alarms.ActiveCount()
	p.mqttOn = svc.Mqtt.Status().Data.Connected
	p.updated = p.app.now()
}

func (p *homePage) Update(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch s := k.String(); s {
	case "1", "2", "3", "4":
		p.app.nav.NavigateTo(homeEntries[s[0]-'1'].page, nil)
	case "r":
		p.refresh()
	}
	return nil
}

func (p *homePage) Click(id string) tea.Cmd {
	for _, e := range homeEntries {
		if e.id == id {
			p.app.nav.NavigateTo(e.page, nil)
		}
	}
	return nil
}

func (p *homePage) card(width int, label, value string) string {
	return CardStyle.Width(width).Render(LabelStyle.Render(label) + "\n" + value)
}

func (p *homePage) View(width, height int) string {
	cardW := width/3 - 2
	cpu := p.card(cardW, "CPU", MetricStyle(p.info.CPUPercent).Render(fmt.Sprintf("%.1f%%", p.info.CPUPercent))+
		"\n"+ProgressBar(cardW-2, p.info.CPUPercent))
	mem := p.card(cardW, "Memory", MetricStyle(p.info.MemPercent).Render(fmt.Sprintf("%.1f%%", p.info.MemPercent))+
		"\n"+ProgressBar(cardW-2, p.info.MemPercent))
	up := p.card(cardW, "Uptime", ValueStyle.Render(p.info.UptimeString())+"\n"+MutedStyle.Render(p.info.Version))

	devStyle := OKStyle
	if p.online < p.total {
		devStyle = WarnStyle
	}
	devices := p.card(cardW, "Devices", devStyle.Render(fmt.Sprintf("%d / %d online", p.online, p.total)))
	alarmStyle := OKStyle
	if p.alarms > 0 {
		alarmStyle = ErrorStyle
	}
	alarms := p.card(cardW, "Alarms", alarmStyle.Render(fmt.Sprintf("%d active", p.alarms)))
	mqttState := MutedStyle.Render(LEDOff + " offline")
	if p.mqttOn {
		mqttState = OKStyle.Render(LEDOn + " online")
	}
	uplink := p.card(cardW, "MQTT", mqttState)

	buttons := make([]string, 0, len(homeEntries))
	for _, e := range homeEntries {
		buttons = append(buttons, p.app.button(e.id, e.label))
	}

	footer := MutedStyle.Render("updated " + p.updated.Format("15:04:05"))
	if p.infoErr != "" {
		footer = ErrorStyle.Render(p.infoErr)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, cpu, mem, up),
		lipgloss.JoinHorizontal(lipgloss.Top, devices, alarms, uplink),
		buttonRow(buttons...),
		footer,
	)
}
