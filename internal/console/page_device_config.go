package console

import (
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/fieldmon/internal/config"
	"github.com/rileyhilliard/fieldmon/internal/nav"
	"github.com/rileyhilliard/fieldmon/internal/service"
)

var deviceTypes = []string{"Sensor", "Meter", "Actuator", "Controller"}

// deviceFields are the form-bound values of one device.
type deviceFields struct {
	name     string
	typ      string
	address  string
	function int
	start    string
	count    string
	interval string
	remark   string
}

func fieldsFromDevice(c config.DeviceConfig) deviceFields {
	return deviceFields{
		name:     c.Name,
		typ:      c.Type,
		address:  strconv.Itoa(c.Address),
		function: c.FunctionCode,
		start:    strconv.Itoa(c.StartAddress),
		count:    strconv.Itoa(c.RegisterCount),
		interval: strconv.Itoa(c.PollIntervalMs),
		remark:   c.Remark,
	}
}

func (f deviceFields) config() config.DeviceConfig {
	return config.DeviceConfig{
		Name:           strings.TrimSpace(f.name),
		Type:           f.typ,
		Address:        atoi(f.address),
		FunctionCode:   f.function,
		StartAddress:   atoi(f.start),
		RegisterCount:  atoi(f.count),
		PollIntervalMs: atoi(f.interval),
		Remark:         strings.TrimSpace(f.remark),
	}
}

var newDeviceDefaults = config.DeviceConfig{
	Type:           "Sensor",
	Address:        1,
	FunctionCode:   service.FuncReadHolding,
	RegisterCount:  10,
	PollIntervalMs: 1000,
}

// deviceConfigPage edits one device. An absent or negative id param means
// a new device.
type deviceConfigPage struct {
	app    *App
	id     int
	fields deviceFields
	host   formHost
	width  int
}

func newDeviceConfigPage(a *App) *deviceConfigPage {
	return &deviceConfigPage{app: a, id: -1, width: a.panelW - 4}
}

func (p *deviceConfigPage) Title() string {
	if p.id < 0 {
		return "New Device"
	}
	return "Edit Device"
}

func (p *deviceConfigPage) Hints() string { return "tab next · enter save" }

func (p *deviceConfigPage) CapturesInput() bool { return p.host.active() }

func (p *deviceConfigPage) Activate(param nav.Param) {
	p.id = -1
	p.fields = fieldsFromDevice(newDeviceDefaults)
	if id, ok := nav.AsInt(param); ok && id >= 0 {
		if r := p.app.svc.Devices.Load(id); r.IsSuccess() {
			p.id = id
			p.fields = fieldsFromDevice(r.Data.DeviceConfig)
		} else {
			p.app.notify(toastError, "%s, creating a new one", r.Message)
		}
	}
	p.openForm()
}

func (p *deviceConfigPage) Deactivate() {
	p.host.close()
}

func (p *deviceConfigPage) openForm() {
	fcOptions := make([]huh.Option[int], 0, config.MaxFunctionCode)
	for fc := config.MinFunctionCode; fc <= config.MaxFunctionCode; fc++ {
		fcOptions = append(fcOptions, huh.NewOption(functionCodeLabel(fc), fc))
	}
	p.app.queue(p.host.open(p.width,
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&p.fields.name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errRequired("Name")
					}
					return nil
				}),
			huh.NewSelect[string]().Title("Type").
				Options(huh.NewOptions(deviceTypes...)...).
				Value(&p.fields.typ),
			huh.NewInput().Title("Modbus address").Value(&p.fields.address).
				Validate(intField("Address", config.MinModbusAddress, config.MaxModbusAddress)),
			huh.NewSelect[int]().Title("Function code").
				Options(fcOptions...).
				Value(&p.fields.function),
		),
		huh.NewGroup(
			huh.NewInput().Title("Start address").Value(&p.fields.start).
				Validate(intField("Start address", 0, config.MaxStartAddress)),
			huh.NewInput().Title("Register count").Value(&p.fields.count).
				Validate(intField("Register count", config.MinRegisterCount, config.MaxRegisterCount)),
			huh.NewInput().Title("Poll interval (ms)").Value(&p.fields.interval).
				Validate(intField("Poll interval", config.MinPollIntervalMs, config.MaxPollIntervalMs)),
			huh.NewInput().Title("Remark").Value(&p.fields.remark).CharLimit(64),
		),
	))
}

func functionCodeLabel(fc int) string {
	switch fc {
	case 1:
		return "01 Read coils"
	case 2:
		return "02 Read discrete inputs"
	case 3:
		return "03 Read holding registers"
	case 4:
		return "04 Read input registers"
	case 5:
		return "05 Write single coil"
	default:
		return "06 Write single register"
	}
}

func (p *deviceConfigPage) Update(msg tea.Msg) tea.Cmd {
	cmd, submitted := p.host.update(msg)
	if submitted {
		p.submit()
	}
	return cmd
}

// submit saves the device. Success returns to the previous page; failure
// keeps the values and reopens the form.
func (p *deviceConfigPage) submit() {
	cfg := p.fields.config()
	r := p.app.svc.Devices.Save(p.id, cfg)
	if !r.IsSuccess() {
		p.app.notify(toastError, "%s (code %d)", r.Message, r.Code)
		p.openForm()
		return
	}
	verb := "Updated"
	if p.id < 0 {
		verb = "Added"
	}
	p.app.svc.System.Logf(service.LogSystem, "%s device %d (%s)", verb, r.Data, cfg.Name)
	p.app.notify(toastSuccess, "%s %s", verb, cfg.Name)
	p.app.nav.GoBack()
}

func (p *deviceConfigPage) View(width, height int) string {
	head := MutedStyle.Render("New device")
	if p.id >= 0 {
		head = MutedStyle.Render("Device " + strconv.Itoa(p.id))
	}
	return lipgloss.JoinVertical(lipgloss.Left, head, p.host.view())
}
