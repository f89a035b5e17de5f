package components

import (
	"strings"

	"github.com/asteroid-belt/vidtally/internal/tui/theme"
	"github.com/charmbracelet/lipgloss"
)

// Bar renders a horizontal gauge of width cells filled to frac (0..1).
func Bar(width int, frac float64) string {
	if width <= 0 {
		return ""
	}
	switch {
	case frac < 0:
		frac = 0
	case frac > 1:
		frac = 1
	}
	filled := int(frac*float64(width) + 0.5)

	fill := lipgloss.NewStyle().Foreground(theme.Current.BarFill)
	empty := lipgloss.NewStyle().Foreground(theme.Current.BarEmpty)
	return fill.Render(strings.Repeat("█", filled)) +
		empty.Render(strings.Repeat("░", width-filled))
}

// Truncate shortens s to max runes, marking the cut with an ellipsis.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 {
		return ""
	}
	if len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
