package console

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/fieldmon/internal/session"
)

const toastDuration = 3 * time.Second

type toastLevel int

const (
	toastInfo toastLevel = iota
	toastSuccess
	toastError
)

type toast struct {
	level  toastLevel
	text   string
	handle session.Handle
}

func (t *toast) render() string {
	switch t.level {
	case toastSuccess:
		return OKStyle.Render("✓ " + t.text)
	case toastError:
		return ErrorStyle.Render("✗ " + t.text)
	default:
		return LabelStyle.Render(t.text)
	}
}

// notify shows a footer message that clears itself after toastDuration.
func (a *App) notify(level toastLevel, format string, args ...interface{}) {
	if a.toast != nil {
		a.clock.Cancel(a.toast.handle)
	}
	t := &toast{level: level, text: fmt.Sprintf(format, args...)}
	t.handle = a.clock.Start(toastDuration, func() {
		a.clock.Cancel(t.handle)
		if a.toast == t {
			a.toast = nil
		}
	})
	a.toast = t
}

// Toast returns the visible footer message, if any.
func (a *App) Toast() string {
	if a.toast == nil {
		return ""
	}
	return a.toast.text
}

type confirmDialog struct {
	text  string
	onYes func()
}

// ask opens a yes/no overlay. onYes runs only on confirmation.
func (a *App) ask(text string, onYes func()) {
	a.confirm = &confirmDialog{text: text, onYes: onYes}
}

func (a *App) answerConfirm(k string) {
	d := a.confirm
	switch k {
	case "y", "Y", "enter":
		a.confirm = nil
		d.onYes()
	case "n", "N", "esc":
		a.confirm = nil
	}
}

var (
	overlayBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Background(ColorSurfaceBg).
			Padding(1, 2)

	overlayTitleStyle = lipgloss.NewStyle().
				Foreground(ColorAccent).
				Bold(true).
				MarginBottom(1)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true).
			Width(12)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)
)

func (a *App) renderConfirm() string {
	buttons := lipgloss.JoinHorizontal(lipgloss.Top,
		a.mark(zoneConfirmYes, ButtonStyle.Render("Yes (y)")),
		" ",
		a.mark(zoneConfirmNo, ButtonStyle.BorderForeground(ColorBorder).Render("No (n)")),
	)
	return overlayBoxStyle.Render(lipgloss.JoinVertical(lipgloss.Center,
		overlayTitleStyle.Render("Confirm"),
		a.confirm.text,
		"",
		buttons,
	))
}

// helpBinding is one row of the help overlay.
type helpBinding struct {
	Key  string
	Desc string
}

var globalHelp = []helpBinding{
	{Key: "esc / ⌫", Desc: "Back"},
	{Key: "q", Desc: "Quit (Home only)"},
	{Key: "ctrl+c", Desc: "Quit"},
	{Key: "?", Desc: "Toggle this help"},
}

// pageHelper is implemented by pages that list their own bindings.
type pageHelper interface {
	HelpBindings() []helpBinding
}

func (a *App) renderHelpOverlay(v view) string {
	lines := []string{overlayTitleStyle.Render(v.Title() + " keys")}
	bindings := globalHelp
	if h, ok := v.(pageHelper); ok {
		bindings = append(h.HelpBindings(), globalHelp...)
	}
	for _, b := range bindings {
		lines = append(lines, helpKeyStyle.Render(b.Key)+helpDescStyle.Render(b.Desc))
	}
	lines = append(lines, "", a.mark(zoneHelpClose, MutedStyle.Render("Press ? to close")))
	return overlayBoxStyle.Padding(0, 1).Render(strings.Join(lines, "\n"))
}
