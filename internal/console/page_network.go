package console

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/fieldmon/internal/config"
	"github.com/rileyhilliard/fieldmon/internal/nav"
	"github.com/rileyhilliard/fieldmon/internal/service"
)

// networkPage edits and applies the Ethernet settings.
type networkPage struct {
	app    *App
	fields config.NetworkConfig
	host   formHost
}

func newNetworkPage(a *App) *networkPage {
	return &networkPage{app: a}
}

func (p *networkPage) Title() string { return "Network" }

func (p *networkPage) Hints() string { return "tab next · enter apply" }

func (p *networkPage) CapturesInput() bool { return p.host.active() }

func (p *networkPage) Activate(nav.Param) {
	p.fields = p.app.svc.Network.Get().Data
	p.openForm()
}

func (p *networkPage) Deactivate() {
	p.host.close()
}

func (p *networkPage) openForm() {
	p.app.queue(p.host.open(p.app.panelW-4,
		huh.NewGroup(
			huh.NewConfirm().Title("Use DHCP").Value(&p.fields.DHCP),
		),
		huh.NewGroup(
			huh.NewInput().Title("IP address").Value(&p.fields.IP),
			huh.NewInput().Title("Subnet mask").Value(&p.fields.Subnet),
			huh.NewInput().Title("Gateway").Value(&p.fields.Gateway),
		).WithHideFunc(func() bool { return p.fields.DHCP }),
		huh.NewGroup(
			huh.NewInput().Title("DNS 1").Value(&p.fields.DNS1),
			huh.NewInput().Title("DNS 2").Value(&p.fields.DNS2),
		),
	))
}

func (p *networkPage) Update(msg tea.Msg) tea.Cmd {
	cmd, submitted := p.host.update(msg)
	if submitted {
		p.submit()
	}
	return cmd
}

// submit stores the pending settings and applies them.
func (p *networkPage) submit() {
	if r := p.app.svc.Network.Set(p.fields); !r.IsSuccess() {
		p.app.notify(toastError, "%s", r.Message)
		p.openForm()
		return
	}
	if r := p.app.svc.Network.Apply(); !r.IsSuccess() {
		p.app.notify(toastError, "%s", r.Message)
		p.openForm()
		return
	}
	mode := "static " + p.fields.IP
	if p.fields.DHCP {
		mode = "DHCP"
	}
	p.app.svc.System.Logf(service.LogSystem, "Network applied: %s", mode)
	p.app.notify(toastSuccess, "Network settings applied")
	p.app.nav.GoBack()
}

func (p *networkPage) View(width, height int) string {
	applied := p.app.svc.Network.Applied()
	current := "DHCP"
	if !applied.DHCP {
		current = fmt.Sprintf("%s / %s via %s", applied.IP, applied.Subnet, applied.Gateway)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		LabelStyle.Render("Applied: ")+ValueStyle.Render(current),
		p.host.view(),
	)
}
