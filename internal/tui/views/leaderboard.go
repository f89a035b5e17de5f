package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/models"
	"github.com/asteroid-belt/vidtally/internal/tui/theme"
	"github.com/asteroid-belt/vidtally/internal/usage"
	"github.com/charmbracelet/lipgloss"
)

// LeaderboardView shows the cached ranking with this installation marked.
type LeaderboardView struct {
	width    int
	height   int
	enabled  bool
	self     string
	ranked   []models.RankingRecord
	rankedAt *time.Time
	position int
	now      func() time.Time
	list     scroller
}

// NewLeaderboardView creates the leaderboard tab.
func NewLeaderboardView(now func() time.Time) *LeaderboardView {
	if now == nil {
		now = time.Now
	}
	return &LeaderboardView{now: now}
}

// SetSize sets the width and height of the view.
func (v *LeaderboardView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.list.setHeight(height - 5)
}

// SetSnapshot replaces the rendered state. The cursor jumps to this
// installation's row the first time it appears.
func (v *LeaderboardView) SetSnapshot(s engine.Snapshot) {
	firstRanking := v.rankedAt == nil && s.RankedAt != nil
	v.enabled = s.RankingEnabled
	v.self = s.ClientID
	v.ranked = s.Ranked
	v.rankedAt = s.RankedAt
	v.position = s.Position
	v.list.setRows(len(v.ranked))
	if firstRanking && s.Position > 0 {
		v.list.cursor = s.Position - 1
		v.list.clamp()
	}
}

// Update moves the cursor.
func (v *LeaderboardView) Update(key string) {
	v.list.update(key)
}

// Commands lists leaderboard key bindings.
func (v *LeaderboardView) Commands() ViewCommands {
	return ViewCommands{
		ViewName: "Leaderboard",
		Commands: []Command{
			{Key: "↑/↓, j/k", Description: "Scroll ranking"},
			{Key: "r", Description: "Sync now"},
		},
	}
}

// View renders the ranking table.
func (v *LeaderboardView) View() string {
	t := theme.Current
	muted := lipgloss.NewStyle().Foreground(t.TextMuted)
	text := lipgloss.NewStyle().Foreground(t.Text)
	self := lipgloss.NewStyle().Foreground(t.RankSelf).Bold(true)
	pad := lipgloss.NewStyle().Padding(1, 2)

	if !v.enabled {
		return pad.Render(muted.Render("Leaderboard is not configured. Set ranking.backend to postgres or redis."))
	}
	if v.rankedAt == nil {
		return pad.Render(muted.Render("No ranking fetched yet. Press r to sync."))
	}

	title := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).Render("Leaderboard")
	status := fmt.Sprintf("   %d viewers, synced %s", len(v.ranked), since(v.now(), *v.rankedAt))
	if v.position > 0 {
		status = fmt.Sprintf("   you are #%d of %d, synced %s", v.position, len(v.ranked), since(v.now(), *v.rankedAt))
	}

	lines := []string{title + muted.Render(status), "", muted.Render(fmt.Sprintf("  %4s  %-10s %10s", "#", "viewer", "watched"))}

	start, end := v.list.window()
	for i := start; i < end; i++ {
		r := v.ranked[i]
		cursor := "  "
		if i == v.list.cursor {
			cursor = "> "
		}
		name := shortID(r.ClientID)
		style := text
		if r.ClientID == v.self {
			name += " (you)"
			style = self
		}
		lines = append(lines, cursor+style.Render(fmt.Sprintf("%4d  %-10s %10s", i+1, name, usage.FormatMinutes(r.TotalMinutes))))
	}

	return pad.Render(strings.Join(lines, "\n"))
}
