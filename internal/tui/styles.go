package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/asteroid-belt/vidtally/internal/tui/theme"
)

// Styles holds the dashboard chrome styles: header, tab bar and footer.
// Tab bodies style themselves from theme.Current.
type Styles struct {
	Header        lipgloss.Style
	HeaderTitle   lipgloss.Style
	HeaderVersion lipgloss.Style
	TimerLive     lipgloss.Style
	Muted         lipgloss.Style

	Tab       lipgloss.Style
	TabActive lipgloss.Style

	Footer        lipgloss.Style
	FooterLeft    lipgloss.Style
	StatusWarning lipgloss.Style

	// Footer key hints.
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

// DefaultStyles builds the styles from the current theme. Call it again
// after theme.Use.
func DefaultStyles() Styles {
	t := theme.Current
	fg := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return Styles{
		Header:        lipgloss.NewStyle().Padding(0, 1),
		HeaderTitle:   fg(t.Primary).Bold(true),
		HeaderVersion: fg(t.TextMuted).Italic(true),
		TimerLive:     fg(t.TimerLive).Bold(true),
		Muted:         fg(t.TextMuted),

		Tab:       fg(t.TextMuted).Padding(0, 2),
		TabActive: fg(t.TextHighlight).Background(t.Primary).Bold(true).Padding(0, 2),

		Footer:        fg(t.TextMuted).Padding(0, 1),
		FooterLeft:    fg(t.TextMuted),
		StatusWarning: fg(t.Warning),

		HelpKey:  fg(t.Accent).Bold(true),
		HelpDesc: fg(t.TextMuted),
	}
}
