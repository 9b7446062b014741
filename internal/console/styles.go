package console

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Panel palette. Dark glass surface with neon status colors.
const (
	ColorDarkBg    = lipgloss.Color("#0A0A0F")
	ColorSurfaceBg = lipgloss.Color("#12121A")
	ColorBorder    = lipgloss.Color("#2A2A4A")

	ColorHealthy  = lipgloss.Color("#39FF14")
	ColorWarning  = lipgloss.Color("#FFAA00")
	ColorCritical = lipgloss.Color("#FF0055")

	ColorTextPrimary   = lipgloss.Color("#FFFFFF")
	ColorTextSecondary = lipgloss.Color("#B4B4D0")
	ColorTextMuted     = lipgloss.Color("#6B6B8D")

	ColorAccent = lipgloss.Color("#FF2E97")
	ColorGraph  = lipgloss.Color("#00FFFF")
)

// Home card thresholds for cpu and memory.
const (
	WarningThreshold  = 70.0
	CriticalThreshold = 90.0
)

var (
	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	HeaderStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Background(ColorSurfaceBg).
			Bold(true).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted).
			Padding(0, 1)

	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder).
			Padding(0, 1)

	ButtonStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorAccent).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorTextSecondary)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorTextPrimary).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	SelectedRowStyle = lipgloss.NewStyle().
				Foreground(ColorTextPrimary).
				Background(ColorBorder)

	OKStyle = lipgloss.NewStyle().
		Foreground(ColorHealthy)

	WarnStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorCritical)

	AccentStyle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)
)

// Status LED glyphs.
const (
	LEDOn  = "●"
	LEDOff = "○"
)

// MetricStyle colors a percentage by the card thresholds.
func MetricStyle(percent float64) lipgloss.Style {
	switch {
	case percent >= CriticalThreshold:
		return ErrorStyle
	case percent >= WarningThreshold:
		return WarnStyle
	default:
		return OKStyle
	}
}

// ProgressBar renders a bracketless bar of the given width.
func ProgressBar(width int, percent float64) string {
	if width < 1 {
		width = 1
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return MetricStyle(percent).Render(bar)
}
