package views

import (
	"fmt"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/vidtally/internal/achievements"
	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/models"
	"github.com/asteroid-belt/vidtally/internal/notify"
	"github.com/asteroid-belt/vidtally/internal/usage"
)

var testNow = time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testNow }

func TestScroller(t *testing.T) {
	var s scroller
	s.setHeight(3)
	s.setRows(10)

	s.update("down")
	s.update("down")
	s.update("down")
	assert.Equal(t, 3, s.cursor)
	start, end := s.window()
	assert.Equal(t, 1, start)
	assert.Equal(t, 4, end)

	s.update("end")
	assert.Equal(t, 9, s.cursor)
	start, end = s.window()
	assert.Equal(t, 7, start)
	assert.Equal(t, 10, end)

	s.update("down")
	assert.Equal(t, 9, s.cursor)

	s.update("home")
	assert.Equal(t, 0, s.cursor)
	s.update("up")
	assert.Equal(t, 0, s.cursor)

	s.update("end")
	s.setRows(2)
	assert.Equal(t, 1, s.cursor)
	start, end = s.window()
	assert.Equal(t, 0, start)
	assert.Equal(t, 2, end)
}

func TestScrollerEmpty(t *testing.T) {
	var s scroller
	s.setHeight(5)
	s.setRows(0)
	s.update("down")
	assert.Equal(t, 0, s.cursor)
	start, end := s.window()
	assert.Equal(t, start, end)
}

func TestOverviewView(t *testing.T) {
	start := testNow.Add(-12 * time.Minute)
	v := NewOverviewView(fixedNow)
	v.SetSize(100, 30)
	v.SetSnapshot(engine.Snapshot{
		TimerState:   usage.Running,
		SessionStart: &start,
		TodayMinutes: 42,
		Usage:        usage.Summarize([]models.DailyUsage{{Date: "2026-03-09", Minutes: 70}, {Date: "2026-03-10", Minutes: 42}}),
		Streak:       2,
		OpenDays:     2,
		Badges:       make([]models.Achievement, 9),
		EarnedBadges: 3,
		LastWatched:  &models.LastWatched{ItemID: "abc12345678", SecondsWatched: 580, ContainerID: "ramadan"},
	})

	out := v.View()
	assert.Contains(t, out, "watching")
	assert.Contains(t, out, "(12m)")
	assert.Contains(t, out, "42m")
	assert.Contains(t, out, "1h 52m across 2 days")
	assert.Contains(t, out, "best 1h 10m on 2026-03-09")
	assert.Contains(t, out, "3 / 9 earned")
	assert.Contains(t, out, "abc12345678 at 9:40 in ramadan")
	assert.Contains(t, out, "leaderboard offline")
}

func TestOverviewRankLine(t *testing.T) {
	at := testNow.Add(-5 * time.Minute)
	v := NewOverviewView(fixedNow)
	v.SetSnapshot(engine.Snapshot{
		RankingEnabled: true,
		Ranked:         []models.RankingRecord{{ClientID: "a"}, {ClientID: "b"}},
		RankedAt:       &at,
		Position:       2,
	})
	out := v.View()
	assert.Contains(t, out, "#2")
	assert.Contains(t, out, "of 2, synced 5m ago")

	v.SetSnapshot(engine.Snapshot{RankingEnabled: true})
	assert.Contains(t, v.View(), "not synced yet")
}

func TestUsageViewFillsIdleDays(t *testing.T) {
	v := NewUsageView(fixedNow)
	v.SetSize(80, 8)
	v.SetSnapshot(engine.Snapshot{Daily: []models.DailyUsage{
		{Date: "2026-03-10", Minutes: 30},
		{Date: "2026-03-08", Minutes: 60},
	}})

	days := v.Days()
	require.Len(t, days, 4)
	assert.Equal(t, models.DailyUsage{Date: "2026-03-10", Minutes: 30}, days[0])
	assert.Equal(t, models.DailyUsage{Date: "2026-03-09", Minutes: 0}, days[1])
	assert.Equal(t, models.DailyUsage{Date: "2026-03-08", Minutes: 60}, days[2])

	out := v.View()
	assert.Contains(t, out, "Last 4 days")
	assert.Contains(t, out, "1h 00m")
}

func TestProgressViewKeepsSelection(t *testing.T) {
	v := NewProgressView()
	v.SetSize(120, 20)
	assert.Equal(t, "", v.Selected())
	assert.Contains(t, v.View(), "No progress recorded yet")

	recs := []models.ProgressRecord{
		{ItemID: "aaaaaaaaaaa", SecondsWatched: 60, DurationSeconds: 600},
		{ItemID: "bbbbbbbbbbb", SecondsWatched: 300, DurationSeconds: 600, ContainerID: "ramadan"},
	}
	v.SetSnapshot(engine.Snapshot{Recent: recs, LastWatched: &models.LastWatched{ItemID: "aaaaaaaaaaa"}})
	v.Update("down")
	assert.Equal(t, "bbbbbbbbbbb", v.Selected())

	// A newer sample moves another item to the front.
	v.SetSnapshot(engine.Snapshot{Recent: []models.ProgressRecord{
		{ItemID: "ccccccccccc", SecondsWatched: 10, DurationSeconds: 600},
		recs[0], recs[1],
	}})
	assert.Equal(t, "bbbbbbbbbbb", v.Selected())

	out := v.View()
	assert.Contains(t, out, "Recent (3)")
	assert.Contains(t, out, "5:00 / 10:00")
	assert.Contains(t, out, " 50%")
}

func TestBadgesView(t *testing.T) {
	earnedAt := testNow
	v := NewBadgesView()
	v.SetSize(100, 40)
	v.SetSnapshot(engine.Snapshot{Badges: []models.Achievement{
		{ID: achievements.AppFirstOpen, Name: "First Timer", Description: "Opened the app for the first time", Earned: true, EarnedAt: &earnedAt},
		{ID: achievements.Time30Min, Name: "30-Minute Viewer", Description: "Watched videos for 30 minutes"},
	}})

	out := v.View()
	assert.Contains(t, out, "Badges 1 / 2")
	assert.Contains(t, out, "★  First Timer")
	assert.Contains(t, out, "earned 2026-03-10")
	assert.Contains(t, out, "30-Minute Viewer")
}

func TestLeaderboardView(t *testing.T) {
	at := testNow.Add(-30 * time.Second)
	ranked := make([]models.RankingRecord, 0, 30)
	for i := 0; i < 30; i++ {
		ranked = append(ranked, models.RankingRecord{ClientID: fmt.Sprintf("client-%02d-xyz", i), TotalMinutes: 300 - i})
	}

	v := NewLeaderboardView(fixedNow)
	v.SetSize(100, 15)
	assert.Contains(t, v.View(), "not configured")

	v.SetSnapshot(engine.Snapshot{RankingEnabled: true})
	assert.Contains(t, v.View(), "Press r to sync")

	v.SetSnapshot(engine.Snapshot{
		RankingEnabled: true,
		ClientID:       "client-25-xyz",
		Ranked:         ranked,
		RankedAt:       &at,
		Position:       26,
	})
	assert.Equal(t, 25, v.list.cursor, "cursor starts on own row")

	out := v.View()
	assert.Contains(t, out, "you are #26 of 30, synced just now")
	assert.Contains(t, out, "client-2 (you)")
	assert.Contains(t, out, "4h 35m")
}

func TestNoticesViewNewestFirst(t *testing.T) {
	v := NewNoticesView()
	v.SetSize(100, 20)
	assert.Contains(t, v.View(), "Nothing yet")

	v.Add(notify.Notice{Title: "one", At: testNow}, notify.Notice{Title: "two", At: testNow})
	v.Add(notify.Notice{Kind: notify.KindWarning, Title: "three", Message: "boom", At: testNow})

	got := v.Notices()
	require.Len(t, got, 3)
	assert.Equal(t, "three", got[0].Title)
	assert.Equal(t, "two", got[1].Title)
	assert.Equal(t, "one", got[2].Title)
	assert.Contains(t, v.View(), "boom")
}

func TestNoticesViewRetentionLimit(t *testing.T) {
	v := NewNoticesView()
	for i := 0; i < maxNotices+10; i++ {
		v.Add(notify.Notice{Title: fmt.Sprint(i)})
	}
	got := v.Notices()
	assert.Len(t, got, maxNotices)
	assert.Equal(t, fmt.Sprint(maxNotices+9), got[0].Title)
}

func TestHelpView(t *testing.T) {
	hv := NewHelpView(nil, []Command{{Key: "tab/→", Description: "next tab"}})
	hv.SetSize(80, 30)
	hv.SetViewCommands(NewProgressView().Commands())

	out := hv.View()
	assert.Contains(t, out, "Global Commands")
	assert.Contains(t, out, "next tab")
	assert.Contains(t, out, "Progress Commands")
	assert.Contains(t, out, "Forget progress")

	assert.True(t, hv.Update("esc"))
	assert.True(t, hv.Update("?"))
	assert.False(t, hv.Update("j"))
}

func TestCommandsFromBindings(t *testing.T) {
	sync := key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "sync"))
	hidden := key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "forget"), key.WithDisabled())
	quit := key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))

	got := CommandsFromBindings([]key.Binding{sync, hidden}, []key.Binding{quit})
	assert.Equal(t, []Command{
		{Key: "r", Description: "sync"},
		{Key: "q", Description: "quit"},
	}, got)
	assert.Empty(t, CommandsFromBindings())
}

func TestGlyph(t *testing.T) {
	assert.Equal(t, "★", glyph("star"))
	assert.Equal(t, "•", glyph("unknown"))
}
