package console

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/fieldmon/internal/nav"
	"github.com/rileyhilliard/fieldmon/internal/service"
	"github.com/rileyhilliard/fieldmon/internal/ui"
)

var deviceColumns = []ui.TableColumn{
	{Title: "ID", Width: 4},
	{Title: "Name", Width: 20},
	{Title: "Type", Width: 10},
	{Title: "Addr", Width: 5},
	{Title: "FC", Width: 3},
	{Title: "Regs", Width: 5},
	{Title: "Status", Width: 8},
}

// deviceListPage lists the configured devices and launches add, edit,
// delete, scan and monitor.
type deviceListPage struct {
	app     *App
	devices []service.Device
	table   table.Model
	loadErr string
}

func newDeviceListPage(a *App) *deviceListPage {
	return &deviceListPage{app: a, table: ui.NewTable(deviceColumns, nil)}
}

func (p *deviceListPage) Title() string { return "Devices" }

func (p *deviceListPage) Hints() string { return "a add · e edit · d delete · s scan · m monitor" }

func (p *deviceListPage) HelpBindings() []helpBinding {
	return []helpBinding{
		{Key: "↑ / ↓", Desc: "Select device"},
		{Key: "a", Desc: "Add device"},
		{Key: "e / enter", Desc: "Edit device"},
		{Key: "d", Desc: "Delete device"},
		{Key: "s", Desc: "Scan the bus"},
		{Key: "m", Desc: "Monitor device"},
	}
}

func (p *deviceListPage) Activate(nav.Param) {
	p.reload()
	p.table.Focus()
}

func (p *deviceListPage) Deactivate() {
	p.table.Blur()
}

func (p *deviceListPage) reload() {
	r := p.app.svc.Devices.List()
	if !r.IsSuccess() {
		p.loadErr = r.Message
		p.devices = nil
	} else {
		p.loadErr = ""
		p.devices = r.Data
	}
	rows := make([]table.Row, 0, len(p.devices))
	for _, d := range p.devices {
		rows = append(rows, table.Row{
			strconv.Itoa(d.ID),
			d.Name,
			d.Type,
			strconv.Itoa(d.Address),
			strconv.Itoa(d.FunctionCode),
			strconv.Itoa(d.RegisterCount),
			d.Status(),
		})
	}
	p.table.SetRows(rows)
	p.table.SetCursor(clamp(p.table.Cursor(), 0, len(rows)-1))
}

// selected returns the device under the cursor.
func (p *deviceListPage) selected() (service.Device, bool) {
	i := p.table.Cursor()
	if i < 0 || i >= len(p.devices) {
		return service.Device{}, false
	}
	return p.devices[i], true
}

func (p *deviceListPage) Update(msg tea.Msg) tea.Cmd {
	k, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch k.String() {
	case "a":
		p.add()
	case "e", "enter":
		p.edit()
	case "d", "delete":
		p.remove()
	case "s":
		p.scan()
	case "m":
		p.monitor()
	default:
		var cmd tea.Cmd
		p.table, cmd = p.table.Update(msg)
		return cmd
	}
	return nil
}

func (p *deviceListPage) Click(id string) tea.Cmd {
	switch id {
	case "dev:add":
		p.add()
	case "dev:edit":
		p.edit()
	case "dev:delete":
		p.remove()
	case "dev:scan":
		p.scan()
	case "dev:monitor":
		p.monitor()
	}
	return nil
}

func (p *deviceListPage) add() {
	p.app.nav.NavigateTo(nav.DeviceConfig, nav.IntParam(-1))
}

func (p *deviceListPage) edit() {
	if d, ok := p.selected(); ok {
		p.app.nav.NavigateTo(nav.DeviceConfig, nav.IntParam(d.ID))
	}
}

func (p *deviceListPage) monitor() {
	if d, ok := p.selected(); ok {
		p.app.nav.NavigateTo(nav.Monitor, nav.IntParam(d.ID))
	}
}

func (p *deviceListPage) remove() {
	d, ok := p.selected()
	if !ok {
		return
	}
	p.app.ask(fmt.Sprintf("Delete %s (address %d)?", d.Name, d.Address), func() {
		if r := p.app.svc.Devices.Remove(d.ID); !r.IsSuccess() {
			p.app.notify(toastError, "%s", r.Message)
			return
		}
		p.app.history.Clear(d.ID)
		p.app.svc.System.Logf(service.LogSystem, "Device %d (%s) deleted", d.ID, d.Name)
		p.app.notify(toastSuccess, "Deleted %s", d.Name)
		p.reload()
	})
}

func (p *deviceListPage) scan() {
	r := p.app.svc.Devices.Scan()
	if !r.IsSuccess() {
		p.app.notify(toastError, "Scan failed: %s", r.Message)
		return
	}
	if len(r.Data) == 0 {
		p.app.notify(toastInfo, "Scan found no devices")
		return
	}
	addrs := make([]string, len(r.Data))
	for i, a := range r.Data {
		addrs[i] = strconv.Itoa(a)
	}
	p.app.notify(toastSuccess, "Found %d device(s) at %s", len(r.Data), strings.Join(addrs, ", "))
}

func (p *deviceListPage) View(width, height int) string {
	if p.loadErr != "" {
		return ErrorStyle.Render(p.loadErr)
	}
	buttons := buttonRow(
		p.app.button("dev:add", "Add"),
		p.app.button("dev:edit", "Edit"),
		p.app.button("dev:delete", "Delete"),
		p.app.button("dev:scan", "Scan"),
		p.app.button("dev:monitor", "Monitor"),
	)
	p.table.SetHeight(height - lipgloss.Height(buttons))
	p.table.SetWidth(width)
	if len(p.devices) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left,
			MutedStyle.Render("No devices configured. Press a to add one."),
			buttons,
		)
	}
	return lipgloss.JoinVertical(lipgloss.Left, p.table.View(), buttons)
}
