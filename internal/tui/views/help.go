package views

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/asteroid-belt/vidtally/internal/telemetry"
	"github.com/asteroid-belt/vidtally/internal/tui/theme"
)

// HelpView lists the global bindings and those of the tab it was opened from.
type HelpView struct {
	width     int
	height    int
	global    []Command
	current   ViewCommands
	telemetry telemetry.Client
}

// NewHelpView creates a help view over the dashboard's global commands.
func NewHelpView(tc telemetry.Client, global []Command) *HelpView {
	if tc == nil {
		tc = telemetry.Noop()
	}
	return &HelpView{telemetry: tc, global: global}
}

// SetSize sets the width and height of the view.
func (hv *HelpView) SetSize(width, height int) {
	hv.width = width
	hv.height = height
}

// SetViewCommands records the tab the help was opened from.
func (hv *HelpView) SetViewCommands(commands ViewCommands) {
	hv.current = commands
	hv.telemetry.TrackViewNavigated("help", strings.ToLower(commands.ViewName))
}

// Update reports whether key closes the view.
func (hv *HelpView) Update(key string) bool {
	return key == "esc" || key == "?" || key == "q"
}

// View renders the help view.
func (hv *HelpView) View() string {
	t := theme.Current
	heading := lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginTop(1)

	parts := []string{
		lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Render("Help - Available Commands"),
		heading.Render("Global Commands"),
		hv.commandTable(hv.global),
	}
	if len(hv.current.Commands) > 0 {
		parts = append(parts,
			heading.Render(hv.current.ViewName+" Commands"),
			hv.commandTable(hv.current.Commands),
		)
	}
	parts = append(parts, lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Italic(true).
		MarginTop(1).
		Render("Press Esc, ?, or q to close"))

	return lipgloss.NewStyle().Padding(1, 3).Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
}

func (hv *HelpView) commandTable(commands []Command) string {
	t := theme.Current
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).PaddingRight(2)
	descStyle := lipgloss.NewStyle().Foreground(t.Text)

	rows := make([][]string, 0, len(commands))
	for _, c := range commands {
		rows = append(rows, []string{c.Key, c.Description})
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderColumn(false).
		BorderStyle(lipgloss.NewStyle().Foreground(t.TextMuted)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return keyStyle
			}
			return descStyle
		}).
		Rows(rows...)
	if hv.width > 12 {
		tbl = tbl.Width(hv.width - 6)
	}
	return tbl.String()
}
