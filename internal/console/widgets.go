package console

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// button renders a touchable button.
func (a *App) button(id, label string) string {
	return a.mark(id, ButtonStyle.Render(label))
}

// buttonRow lays buttons out left to right with one space between them.
func buttonRow(buttons ...string) string {
	parts := make([]string, 0, len(buttons)*2)
	for i, b := range buttons {
		if i > 0 {
			parts = append(parts, " ")
		}
		parts = append(parts, b)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// cell pads or truncates s to exactly w columns.
func cell(s string, w int) string {
	return lipgloss.NewStyle().Width(w).MaxWidth(w).Render(s)
}

// row joins cells sized by widths.
func row(widths []int, values ...string) string {
	var b strings.Builder
	for i, v := range values {
		if i < len(widths) {
			b.WriteString(cell(v, widths[i]))
		} else {
			b.WriteString(v)
		}
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// window returns the [start, end) slice of n rows that keeps cursor
// visible in height rows.
func window(n, cursor, height int) (int, int) {
	if height <= 0 || n <= height {
		return 0, n
	}
	start := cursor - height + 1
	if start < 0 {
		start = 0
	}
	return start, start + height
}
