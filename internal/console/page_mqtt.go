package console

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/fieldmon/internal/config"
	"github.com/rileyhilliard/fieldmon/internal/nav"
	"github.com/rileyhilliard/fieldmon/internal/service"
)

type mqttConnectMsg struct {
	result service.Result[service.Empty]
}

type mqttFields struct {
	cfg  config.MQTTConfig
	port string
}

// mqttPage shows the uplink state and edits the broker settings. Connect
// runs as a command because paho blocks until the broker answers.
type mqttPage struct {
	app        *App
	status     service.MqttStatus
	fields     mqttFields
	host       formHost
	connecting bool
}

func newMqttPage(a *App) *mqttPage {
	return &mqttPage{app: a}
}

func (p *mqttPage) Title() string { return "MQTT" }

func (p *mqttPage) Hints() string {
	if p.host.active() {
		return "tab next · enter save"
	}
	return "c connect · x disconnect · e edit"
}

func (p *mqttPage) CapturesInput() bool { return p.host.active() }

func (p *mqttPage) Activate(nav.Param) {
	p.refresh()
}

func (p *mqttPage) Deactivate() {
	p.host.close()
}

func (p *mqttPage) refresh() {
	p.status = p.app.svc.Mqtt.Status().Data
}

func (p *mqttPage) edit() {
	cfg := p.app.svc.Mqtt.LoadConfig().Data
	p.fields = mqttFields{cfg: cfg, port: strconv.Itoa(cfg.Port)}
	p.app.queue(p.host.open(p.app.panelW-4,
		huh.NewGroup(
			huh.NewInput().Title("Broker").Value(&p.fields.cfg.Broker),
			huh.NewInput().Title("Port").Value(&p.fields.port).Validate(intField("Port", 1, 65535)),
			huh.NewInput().Title("Client ID").Value(&p.fields.cfg.ClientID),
			huh.NewInput().Title("Topic").Value(&p.fields.cfg.Topic),
		),
		huh.NewGroup(
			huh.NewInput().Title("Username").Value(&p.fields.cfg.Username),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&p.fields.cfg.Password),
			huh.NewConfirm().Title("TLS").Value(&p.fields.cfg.TLS),
			huh.NewConfirm().Title("Publish readings").Value(&p.fields.cfg.PublishReadings),
		),
	))
}

func (p *mqttPage) submit() {
	cfg := p.fields.cfg
	cfg.Port = atoi(p.fields.port)
	cfg.Broker = strings.TrimSpace(cfg.Broker)
	if r := p.app.svc.Mqtt.SaveConfig(cfg); !r.IsSuccess() {
		p.app.notify(toastError, "%s", r.Message)
		p.host.close()
		return
	}
	p.host.close()
	p.app.svc.System.Logf(service.LogSystem, "MQTT settings saved (%s:%d)", cfg.Broker, cfg.Port)
	p.app.notify(toastSuccess, "MQTT settings saved")
	p.refresh()
}

func (p *mqttPage) connect() tea.Cmd {
	if p.connecting {
		return nil
	}
	p.connecting = true
	mqtt := p.app.svc.Mqtt
	return func() tea.Msg {
		return mqttConnectMsg{result: mqtt.Connect()}
	}
}

func (p *mqttPage) disconnect() {
	p.app.svc.Mqtt.Disconnect()
	p.app.svc.System.Logf(service.LogSystem, "MQTT disconnected")
	p.refresh()
}

// onConnect handles the connect result wherever the operator is.
func (p *mqttPage) onConnect(m mqttConnectMsg) {
	p.connecting = false
	if m.result.IsSuccess() {
		p.app.svc.System.Logf(service.LogSystem, "MQTT connected")
		p.app.notify(toastSuccess, "MQTT connected")
	} else {
		p.app.notify(toastError, "%s", m.result.Message)
	}
	p.refresh()
}

func (p *mqttPage) Update(msg tea.Msg) tea.Cmd {
	if p.host.active() {
		cmd, submitted := p.host.update(msg)
		if submitted {
			p.submit()
		}
		return cmd
	}
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "c":
			return p.connect()
		case "x":
			p.disconnect()
		case "e":
			p.edit()
		}
	}
	return nil
}

func (p *mqttPage) Click(id string) tea.Cmd {
	switch id {
	case "mqtt:connect":
		return p.connect()
	case "mqtt:disconnect":
		p.disconnect()
	case "mqtt:edit":
		p.edit()
	}
	return nil
}

func (p *mqttPage) View(width, height int) string {
	if p.host.active() {
		return p.host.view()
	}
	cfg := p.app.svc.Mqtt.LoadConfig().Data
	state := MutedStyle.Render(LEDOff + " Disconnected")
	switch {
	case p.connecting:
		state = WarnStyle.Render(LEDOn + " Connecting...")
	case p.status.Connected:
		state = OKStyle.Render(LEDOn + " Connected since " + p.status.ConnectedAt)
	}
	uplink := "off"
	if cfg.PublishReadings {
		uplink = "on"
	}
	info := CardStyle.Width(width - 2).Render(strings.Join([]string{
		state,
		LabelStyle.Render("Broker     ") + ValueStyle.Render(fmt.Sprintf("%s:%d", cfg.Broker, cfg.Port)),
		LabelStyle.Render("Client ID  ") + cfg.ClientID,
		LabelStyle.Render("Topic      ") + cfg.Topic,
		LabelStyle.Render("Uplink     ") + uplink,
		LabelStyle.Render("Published  ") + strconv.Itoa(p.status.Published),
	}, "\n"))
	return lipgloss.JoinVertical(lipgloss.Left, info, buttonRow(
		p.app.button("mqtt:connect", "Connect"),
		p.app.button("mqtt:disconnect", "Disconnect"),
		p.app.button("mqtt:edit", "Edit"),
	))
}
