package console

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/fieldmon/internal/nav"
	"github.com/rileyhilliard/fieldmon/internal/service"
)

var logKinds = []string{service.LogSystem, service.LogComm}

// logPage shows the system and comm logs in a scrollable viewport.
type logPage struct {
	app  *App
	kind int
	vp   viewport.Model
}

func newLogPage(a *App) *logPage {
	return &logPage{app: a, vp: viewport.New(a.panelW-2, a.panelH-5)}
}

func (p *logPage) Title() string { return "Logs" }

func (p *logPage) Hints() string { return "tab switch · r refresh · x export" }

func (p *logPage) HelpBindings() []helpBinding {
	return []helpBinding{
		{Key: "tab", Desc: "System / comm log"},
		{Key: "↑ / ↓", Desc: "Scroll"},
		{Key: "r", Desc: "Reload"},
		{Key: "x", Desc: "Export to file"},
	}
}

func (p *logPage) Activate(nav.Param) {
	p.reload()
}

func (p *logPage) Deactivate() {}

func (p *logPage) reload() {
	r := p.app.svc.System.Log(logKinds[p.kind])
	if !r.IsSuccess() {
		p.vp.SetContent(ErrorStyle.Render(r.Message))
		return
	}
	if len(r.Data) == 0 {
		p.vp.SetContent(MutedStyle.Render("(empty)"))
		return
	}
	p.vp.SetContent(strings.Join(r.Data, "\n"))
	p.vp.GotoBottom()
}

func (p *logPage) switchKind() {
	p.kind = (p.kind + 1) % len(logKinds)
	p.reload()
}

func (p *logPage) export() {
	r := p.app.svc.System.Export(logKinds[p.kind])
	if !r.IsSuccess() {
		p.app.notify(toastError, "%s", r.Message)
		return
	}
	p.app.notify(toastSuccess, "Saved %s", r.Data)
}

func (p *logPage) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok {
		switch k.String() {
		case "tab":
			p.switchKind()
			return nil
		case "r":
			p.reload()
			return nil
		case "x":
			p.export()
			return nil
		}
	}
	var cmd tea.Cmd
	p.vp, cmd = p.vp.Update(msg)
	return cmd
}

func (p *logPage) Click(id string) tea.Cmd {
	switch id {
	case "log:tab":
		p.switchKind()
	case "log:export":
		p.export()
	}
	return nil
}

func (p *logPage) View(width, height int) string {
	tabs := make([]string, len(logKinds))
	for i, k := range logKinds {
		label := " " + strings.ToUpper(k[:1]) + k[1:] + " "
		if i == p.kind {
			tabs[i] = SelectedRowStyle.Render(label)
		} else {
			tabs[i] = MutedStyle.Render(label)
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top,
		p.app.mark("log:tab", strings.Join(tabs, " ")),
		"  ",
		p.app.mark("log:export", AccentStyle.Render("[export]")),
	)
	p.vp.Width = width
	p.vp.Height = height - 1
	return lipgloss.JoinVertical(lipgloss.Left, header, p.vp.View())
}
