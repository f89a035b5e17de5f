package views

import (
	"fmt"
	"strings"

	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/models"
	"github.com/asteroid-belt/vidtally/internal/progress"
	"github.com/asteroid-belt/vidtally/internal/tui/components"
	"github.com/asteroid-belt/vidtally/internal/tui/theme"
	"github.com/charmbracelet/lipgloss"
)

// ProgressView lists recently watched items with their playback position.
type ProgressView struct {
	width   int
	height  int
	records []models.ProgressRecord
	last    string
	list    scroller
}

// NewProgressView creates the progress tab.
func NewProgressView() *ProgressView {
	return &ProgressView{}
}

// SetSize sets the width and height of the view.
func (v *ProgressView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.list.setHeight(height - 4)
}

// SetSnapshot replaces the rendered state, keeping the cursor on the same
// item when it is still listed.
func (v *ProgressView) SetSnapshot(s engine.Snapshot) {
	selected := v.Selected()
	v.records = s.Recent
	v.last = ""
	if s.LastWatched != nil {
		v.last = s.LastWatched.ItemID
	}
	v.list.setRows(len(v.records))
	for i, r := range v.records {
		if r.ItemID == selected {
			v.list.cursor = i
			v.list.clamp()
			break
		}
	}
}

// Update moves the cursor.
func (v *ProgressView) Update(key string) {
	v.list.update(key)
}

// Selected returns the item under the cursor, or "" when the list is empty.
func (v *ProgressView) Selected() string {
	if len(v.records) == 0 {
		return ""
	}
	return v.records[v.list.cursor].ItemID
}

// Commands lists progress key bindings.
func (v *ProgressView) Commands() ViewCommands {
	return ViewCommands{
		ViewName: "Progress",
		Commands: []Command{
			{Key: "↑/↓, j/k", Description: "Move selection"},
			{Key: "x, delete", Description: "Forget progress for the selected item"},
		},
	}
}

// View renders the list.
func (v *ProgressView) View() string {
	t := theme.Current
	muted := lipgloss.NewStyle().Foreground(t.TextMuted)
	text := lipgloss.NewStyle().Foreground(t.Text)
	selected := lipgloss.NewStyle().Foreground(t.TextHighlight).Background(t.Overlay).Bold(true)

	if len(v.records) == 0 {
		return lipgloss.NewStyle().Padding(1, 2).Render(
			muted.Render("No progress recorded yet. Use `vidtally progress record` or the MCP tools."))
	}

	barWidth := v.width - 60
	if barWidth < 10 {
		barWidth = 10
	}

	lines := []string{
		lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Render(fmt.Sprintf("Recent (%d)", len(v.records))),
		"",
	}
	start, end := v.list.window()
	for i := start; i < end; i++ {
		r := v.records[i]
		marker := "  "
		if r.ItemID == v.last {
			marker = "▶ "
		}
		name := fmt.Sprintf("%s%-12s %-14s", marker, r.ItemID, components.Truncate(r.ContainerID, 14))
		pos := fmt.Sprintf("%s / %s", progress.FormatClock(r.SecondsWatched), progress.FormatClock(r.DurationSeconds))
		pct := progress.Percent(r)

		style := text
		if i == v.list.cursor {
			style = selected
		}
		lines = append(lines, style.Render(name)+"  "+
			muted.Render(fmt.Sprintf("%-15s", pos))+" "+
			components.Bar(barWidth, pct/100)+" "+
			text.Render(fmt.Sprintf("%3.0f%%", pct)))
	}
	if end < len(v.records) {
		lines = append(lines, muted.Render(fmt.Sprintf("  … %d more", len(v.records)-end)))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}
