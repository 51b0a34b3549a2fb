package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Gauge renders packed weight against the limit as a bar with a percentage.
// The bar fills completely once the limit is reached.
func Gauge(total, limit float64, width int) string {
	if width < 5 {
		width = 5
	}
	var ratio float64
	switch {
	case limit > 0:
		ratio = total / limit
	case total > 0:
		ratio = 1
	}
	filled := int(ratio * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	t := Current()
	bar := strings.Repeat(t.GaugeFull, filled) + strings.Repeat(t.GaugeEmpty, width-filled)
	style := t.Success
	if total > limit {
		style = t.Error
	}
	return fmt.Sprintf("%s %3d%%", style.Render(bar), int(ratio*100))
}

// Weight formats a weight the way the summary line shows it ("55.00lb").
func Weight(v float64, unit string) string {
	return fmt.Sprintf("%.2f%s", v, unit)
}

// Summary is the total line plus, when over the limit, the warning banner.
func Summary(total, limit float64, unit string) []string {
	t := Current()
	lines := []string{fmt.Sprintf("%s %s   %s %s",
		t.Title.Render("Total Packed Weight:"), Weight(total, unit),
		t.Muted.Render("limit"), Weight(limit, unit),
	)}
	if total > limit {
		lines = append(lines, t.Error.Render(t.SymWarn+" Overweight Limit!"))
	}
	return lines
}

// Panel frames lines in a box using the current theme.
func Panel(lines []string) string {
	t := Current()
	border := lipgloss.NewStyle().
		Border(t.Border).
		BorderForeground(t.BorderColor).
		Padding(0, 1)
	return border.Render(strings.Join(lines, "\n"))
}
