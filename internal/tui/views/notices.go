package views

import (
	"strings"

	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/notify"
	"github.com/asteroid-belt/vidtally/internal/tui/theme"
	"github.com/charmbracelet/lipgloss"
)

const maxNotices = 100

// NoticesView keeps the notices published during this session, newest first.
type NoticesView struct {
	width   int
	height  int
	notices []notify.Notice
	list    scroller
}

// NewNoticesView creates the notices tab.
func NewNoticesView() *NoticesView {
	return &NoticesView{}
}

// SetSize sets the width and height of the view.
func (v *NoticesView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.list.setHeight(height - 4)
}

// SetSnapshot is a no-op; notices arrive through Add.
func (v *NoticesView) SetSnapshot(engine.Snapshot) {}

// Add prepends notices, dropping the oldest beyond the retention limit.
func (v *NoticesView) Add(ns ...notify.Notice) {
	if len(ns) == 0 {
		return
	}
	merged := make([]notify.Notice, 0, len(ns)+len(v.notices))
	for i := len(ns) - 1; i >= 0; i-- {
		merged = append(merged, ns[i])
	}
	merged = append(merged, v.notices...)
	if len(merged) > maxNotices {
		merged = merged[:maxNotices]
	}
	v.notices = merged
	v.list.setRows(len(v.notices))
}

// Notices returns the retained notices, newest first.
func (v *NoticesView) Notices() []notify.Notice {
	return v.notices
}

// Update moves the cursor.
func (v *NoticesView) Update(key string) {
	v.list.update(key)
}

// Commands lists notice key bindings.
func (v *NoticesView) Commands() ViewCommands {
	return ViewCommands{
		ViewName: "Notices",
		Commands: []Command{
			{Key: "↑/↓, j/k", Description: "Scroll notices"},
		},
	}
}

// View renders the notice log.
func (v *NoticesView) View() string {
	t := theme.Current
	muted := lipgloss.NewStyle().Foreground(t.TextMuted)
	pad := lipgloss.NewStyle().Padding(1, 2)

	if len(v.notices) == 0 {
		return pad.Render(muted.Render("Nothing yet. Earned badges and sync warnings show up here."))
	}

	var lines []string
	start, end := v.list.window()
	for i := start; i < end; i++ {
		n := v.notices[i]
		style := lipgloss.NewStyle().Foreground(t.BadgeEarned).Bold(true)
		if n.Kind == notify.KindWarning {
			style = lipgloss.NewStyle().Foreground(t.Warning).Bold(true)
		}
		lines = append(lines, muted.Render(n.At.Local().Format("15:04:05"))+"  "+style.Render(n.Title)+"  "+
			lipgloss.NewStyle().Foreground(t.Text).Render(n.Message))
	}
	return pad.Render(strings.Join(lines, "\n"))
}
