package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/models"
	"github.com/asteroid-belt/vidtally/internal/tui/components"
	"github.com/asteroid-belt/vidtally/internal/tui/theme"
	"github.com/asteroid-belt/vidtally/internal/usage"
	"github.com/charmbracelet/lipgloss"
)

const maxUsageDays = 30

// UsageView charts minutes per day, most recent first, including idle days.
type UsageView struct {
	width  int
	height int
	byDate map[string]int
	now    func() time.Time
	sum    usage.Summary
}

// NewUsageView creates the usage tab.
func NewUsageView(now func() time.Time) *UsageView {
	if now == nil {
		now = time.Now
	}
	return &UsageView{now: now, byDate: map[string]int{}}
}

// SetSize sets the width and height of the view.
func (v *UsageView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// SetSnapshot replaces the rendered state.
func (v *UsageView) SetSnapshot(s engine.Snapshot) {
	v.byDate = make(map[string]int, len(s.Daily))
	for _, d := range s.Daily {
		v.byDate[d.Date] = d.Minutes
	}
	v.sum = s.Usage
}

// Update is a no-op.
func (v *UsageView) Update(string) {}

// Commands lists usage key bindings.
func (v *UsageView) Commands() ViewCommands {
	return ViewCommands{ViewName: "Usage"}
}

// Days returns the charted days, newest first.
func (v *UsageView) Days() []models.DailyUsage {
	n := v.height - 4
	if n > maxUsageDays {
		n = maxUsageDays
	}
	if n < 1 {
		n = 7
	}

	today := v.now()
	days := make([]models.DailyUsage, 0, n)
	for i := 0; i < n; i++ {
		date := today.AddDate(0, 0, -i).Format(models.DateLayout)
		days = append(days, models.DailyUsage{Date: date, Minutes: v.byDate[date]})
	}
	return days
}

// View renders the chart.
func (v *UsageView) View() string {
	t := theme.Current
	muted := lipgloss.NewStyle().Foreground(t.TextMuted)
	text := lipgloss.NewStyle().Foreground(t.Text)

	days := v.Days()
	peak := 0
	for _, d := range days {
		if d.Minutes > peak {
			peak = d.Minutes
		}
	}

	barWidth := v.width - 30
	if barWidth < 10 {
		barWidth = 10
	}

	header := lipgloss.NewStyle().Foreground(t.Accent).Bold(true).
		Render(fmt.Sprintf("Last %d days", len(days))) +
		muted.Render(fmt.Sprintf("   all time %s over %d days", usage.FormatMinutes(v.sum.TotalMinutes), v.sum.DaysTracked))

	lines := []string{header, ""}
	for _, d := range days {
		frac := 0.0
		if peak > 0 {
			frac = float64(d.Minutes) / float64(peak)
		}
		amount := muted.Render("-")
		if d.Minutes > 0 {
			amount = text.Render(usage.FormatMinutes(d.Minutes))
		}
		lines = append(lines, fmt.Sprintf("%s  %s  %s", muted.Render(d.Date), components.Bar(barWidth, frac), amount))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}
