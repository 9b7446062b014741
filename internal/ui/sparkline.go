package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline block characters representing 8 vertical levels (lowest to highest).
const sparklineBlocks = "▁▂▃▄▅▆▇█"

var sparklineBlockRunes = []rune(sparklineBlocks)

// Limits is an alarm band. A zero value (Enabled false) never colors a
// sparkline as out of range.
type Limits struct {
	Low     float64
	High    float64
	Enabled bool
}

// RenderSparkline draws the most recent width values of data, scaled to
// their own min/max. The color reflects the last value against limits:
// red outside the band, yellow in its outer tenth, green otherwise.
func RenderSparkline(data []float64, width int, limits Limits) string {
	if len(data) == 0 || width <= 0 {
		return ""
	}
	if len(data) > width {
		data = data[len(data)-width:]
	}

	minVal, maxVal := data[0], data[0]
	for _, v := range data {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}

	var sb strings.Builder
	sb.Grow(len(data) * 3)

	numLevels := len(sparklineBlockRunes)
	valueRange := maxVal - minVal
	for _, v := range data {
		level := numLevels / 2
		if valueRange != 0 {
			level = int((v - minVal) / valueRange * float64(numLevels-1))
			if level < 0 {
				level = 0
			} else if level >= numLevels {
				level = numLevels - 1
			}
		}
		sb.WriteRune(sparklineBlockRunes[level])
	}

	color := limitColor(data[len(data)-1], limits)
	return lipgloss.NewStyle().Foreground(color).Render(sb.String())
}

func limitColor(v float64, l Limits) lipgloss.Color {
	if !l.Enabled || l.High <= l.Low {
		return ColorInfo
	}
	margin := (l.High - l.Low) / 10
	switch {
	case v < l.Low || v > l.High:
		return ColorError
	case v < l.Low+margin || v > l.High-margin:
		return ColorWarning
	default:
		return ColorSuccess
	}
}
