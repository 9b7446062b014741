package console

import (
	"fmt"
	"time"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/fieldmon/internal/nav"
	"github.com/rileyhilliard/fieldmon/internal/service"
	"github.com/rileyhilliard/fieldmon/internal/session"
)

const detailRefreshInterval = 2 * time.Second

// detailPage shows one register's statistics and trend. Without a
// RegisterParam it keeps showing the register loaded last time.
type detailPage struct {
	app    *App
	handle session.Handle

	target  nav.RegisterParam
	hasKey  bool
	stats   service.RegisterStats
	loaded  bool
	loadErr string
}

func newDetailPage(a *App) *detailPage {
	return &detailPage{app: a}
}

func (p *detailPage) Title() string { return "Data Detail" }

func (p *detailPage) Hints() string { return "r refresh" }

func (p *detailPage) Activate(param nav.Param) {
	if rp, ok := nav.AsRegister(param); ok {
		if !p.hasKey || rp != p.target {
			p.stats, p.loaded, p.loadErr = service.RegisterStats{}, false, ""
		}
		p.target = rp
		p.hasKey = true
	}
	p.refresh()
	p.handle = p.app.clock.Start(detailRefreshInterval, p.refresh)
}

func (p *detailPage) Deactivate() {
	if p.handle != 0 {
		p.app.clock.Cancel(p.handle)
		p.handle = 0
	}
}

func (p *detailPage) refresh() {
	if !p.hasKey {
		return
	}
	r := p.app.svc.Modbus.RegisterHistory(p.target.DeviceID, p.target.Address)
	if !r.IsSuccess() {
		p.loadErr = fmt.Sprintf("%s (code %d)", r.Message, r.Code)
		return
	}
	p.stats, p.loaded, p.loadErr = r.Data, true, ""
}

func (p *detailPage) Update(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "r" {
		p.refresh()
	}
	return nil
}

func (p *detailPage) View(width, height int) string {
	if !p.hasKey {
		return MutedStyle.Render("No register selected. Open one from the Monitor page.")
	}
	if !p.loaded {
		return ErrorStyle.Render(p.loadErr)
	}
	st := p.stats
	title := ValueStyle.Render(fmt.Sprintf("Device %d · Register %d", st.DeviceID, st.Address))
	current := AccentStyle.Render(fmt.Sprintf("%.2f %s", st.Current, st.Unit))
	summary := LabelStyle.Render(fmt.Sprintf("min %.2f  max %.2f  avg %.2f  updated %s", st.Min, st.Max, st.Avg, st.Updated))

	lines := []string{lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", current), summary}
	if p.loadErr != "" {
		lines = append(lines, ErrorStyle.Render(p.loadErr))
	}
	chartH := height - len(lines)
	if chartH >= 4 {
		lines = append(lines, p.chart(width, chartH))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// chart draws the trend scaled to the observed range with a little
// headroom.
func (p *detailPage) chart(width, height int) string {
	pts := p.stats.Points
	lo, hi := p.stats.Min, p.stats.Max
	pad := (hi - lo) * 0.1
	if pad == 0 {
		pad = 1
	}
	lc := linechart.New(width, height, 0, float64(len(pts)), lo-pad, hi+pad)
	lc.Clear()
	for i := 0; i+1 < len(pts); i++ {
		lc.DrawBrailleLine(
			canvas.Float64Point{X: float64(i), Y: pts[i].Value},
			canvas.Float64Point{X: float64(i + 1), Y: pts[i+1].Value},
		)
	}
	lc.DrawXYAxisAndLabel()
	return lipgloss.NewStyle().Foreground(ColorGraph).Render(lc.View())
}
