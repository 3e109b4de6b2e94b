package ui

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/idlab-discover/agropredict-cli/internal/dataset"
)

// HorizontalBars renders one bar per entry, scaled so the largest value
// spans width cells. Values are printed with the given format.
func HorizontalBars(bars []dataset.Bar, width int, format string) string {
	if len(bars) == 0 || width <= 0 {
		return Dim.Render("(no data)")
	}
	labelWidth := 0
	peak := 0.0
	for _, b := range bars {
		labelWidth = max(labelWidth, lipgloss.Width(b.Label))
		peak = max(peak, b.Value)
	}

	var sb strings.Builder
	for i, b := range bars {
		filled := 0
		if peak > 0 && b.Value > 0 {
			filled = int(b.Value / peak * float64(width))
		}
		sb.WriteString(BarLabel.Render(padRight(b.Label, labelWidth)))
		sb.WriteString(" ")
		sb.WriteString(BarFilled.Render(strings.Repeat("█", filled)))
		sb.WriteString(BarEmpty.Render(strings.Repeat("░", width-filled)))
		sb.WriteString(" ")
		sb.WriteString(fmt.Sprintf(format, b.Value))
		if i < len(bars)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// SpreadChart draws a min..max range per group with the mean marked, on a
// shared axis from lo to hi.
func SpreadChart(spreads []dataset.Spread, lo, hi float64, width int) string {
	if len(spreads) == 0 || width <= 0 || hi <= lo {
		return Dim.Render("(no data)")
	}
	labelWidth := 0
	for _, s := range spreads {
		labelWidth = max(labelWidth, lipgloss.Width(s.Label))
	}
	pos := func(v float64) int {
		p := int((v - lo) / (hi - lo) * float64(width-1))
		return max(0, min(p, width-1))
	}

	var sb strings.Builder
	for i, s := range spreads {
		from, to, mid := pos(s.Min), pos(s.Max), pos(s.Mean)
		row := make([]string, width)
		for j := range row {
			switch {
			case j == mid:
				row[j] = Highlight.Render("●")
			case j >= from && j <= to:
				row[j] = BarFilled.Render("─")
			default:
				row[j] = " "
			}
		}
		sb.WriteString(BarLabel.Render(padRight(s.Label, labelWidth)))
		sb.WriteString(" ")
		sb.WriteString(strings.Join(row, ""))
		sb.WriteString(Dim.Render(fmt.Sprintf(" %.1f / %.2f / %.1f", s.Min, s.Mean, s.Max)))
		if i < len(spreads)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Sparkline compresses values into a single row of block characters.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	levels := []rune("▁▂▃▄▅▆▇█")
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	out := make([]rune, len(values))
	for i, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(levels)-1))
		}
		out[i] = levels[idx]
	}
	return Secondary.Render(string(out))
}

func padRight(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
