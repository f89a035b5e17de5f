package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/progress"
	"github.com/asteroid-belt/vidtally/internal/tui/theme"
	"github.com/asteroid-belt/vidtally/internal/usage"
	"github.com/charmbracelet/lipgloss"
)

// OverviewView summarizes the session, totals and where to resume.
type OverviewView struct {
	width  int
	height int
	snap   engine.Snapshot
	now    func() time.Time
}

// NewOverviewView creates the overview tab.
func NewOverviewView(now func() time.Time) *OverviewView {
	if now == nil {
		now = time.Now
	}
	return &OverviewView{now: now}
}

// SetSize sets the width and height of the view.
func (v *OverviewView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// SetSnapshot replaces the rendered state.
func (v *OverviewView) SetSnapshot(s engine.Snapshot) {
	v.snap = s
}

// Update is a no-op; the overview has no cursor.
func (v *OverviewView) Update(string) {}

// Commands lists overview key bindings.
func (v *OverviewView) Commands() ViewCommands {
	return ViewCommands{
		ViewName: "Overview",
		Commands: []Command{
			{Key: "p, space", Description: "Pause or resume the usage session"},
			{Key: "r", Description: "Sync leaderboard and re-check badges"},
		},
	}
}

// View renders the overview.
func (v *OverviewView) View() string {
	t := theme.Current
	label := lipgloss.NewStyle().Foreground(t.TextMuted).Width(11)
	value := lipgloss.NewStyle().Foreground(t.Text)
	strong := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	s := v.snap

	row := func(name, body string) string {
		return label.Render(name) + body
	}

	var rows []string

	if s.TimerState == usage.Running && s.SessionStart != nil {
		elapsed := v.now().Sub(*s.SessionStart)
		live := lipgloss.NewStyle().Foreground(t.TimerLive).Bold(true)
		rows = append(rows, row("Session", live.Render("● watching")+
			value.Render(fmt.Sprintf(" since %s (%s)", s.SessionStart.Local().Format("15:04"),
				usage.FormatMinutes(usage.SessionMinutes(elapsed))))))
	} else {
		rows = append(rows, row("Session", lipgloss.NewStyle().Foreground(t.TextMuted).Render("○ paused")))
	}

	rows = append(rows,
		row("Today", strong.Render(usage.FormatMinutes(s.TodayMinutes))),
		row("Total", value.Render(totalLine(s.Usage))),
		row("Streak", value.Render(fmt.Sprintf("%d day%s in a row, %d day%s opened",
			s.Streak, plural(s.Streak), s.OpenDays, plural(s.OpenDays)))),
		row("Badges", value.Render(fmt.Sprintf("%d / %d earned", s.EarnedBadges, len(s.Badges)))),
		row("Completed", value.Render(fmt.Sprintf("%d item%s", s.CompletedCount, plural(s.CompletedCount)))),
	)

	if lw := s.LastWatched; lw != nil {
		where := ""
		if lw.ContainerID != "" {
			where = " in " + lw.ContainerID
		}
		rows = append(rows, row("Continue", value.Render(fmt.Sprintf("%s at %s%s",
			lw.ItemID, progress.FormatClock(lw.SecondsWatched), where))))
	} else {
		rows = append(rows, row("Continue", lipgloss.NewStyle().Foreground(t.TextMuted).Render("nothing yet")))
	}

	rows = append(rows, row("Rank", v.rankLine()))

	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(rows, "\n"))
}

func (v *OverviewView) rankLine() string {
	t := theme.Current
	muted := lipgloss.NewStyle().Foreground(t.TextMuted)
	s := v.snap

	switch {
	case !s.RankingEnabled:
		return muted.Render("leaderboard offline")
	case s.RankedAt == nil:
		return muted.Render("not synced yet (press r)")
	case s.Position == 0:
		return muted.Render(fmt.Sprintf("unranked of %d, synced %s", len(s.Ranked), since(v.now(), *s.RankedAt)))
	default:
		return lipgloss.NewStyle().Foreground(t.RankSelf).Bold(true).
			Render(fmt.Sprintf("#%d", s.Position)) +
			muted.Render(fmt.Sprintf(" of %d, synced %s", len(s.Ranked), since(v.now(), *s.RankedAt)))
	}
}

func totalLine(s usage.Summary) string {
	if s.DaysTracked == 0 {
		return usage.FormatMinutes(s.TotalMinutes)
	}
	return fmt.Sprintf("%s across %d day%s (avg %s, best %s on %s)",
		usage.FormatMinutes(s.TotalMinutes), s.DaysTracked, plural(s.DaysTracked),
		usage.FormatMinutes(int(s.AveragePerDay+0.5)),
		usage.FormatMinutes(s.BestDay.Minutes), s.BestDay.Date)
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
