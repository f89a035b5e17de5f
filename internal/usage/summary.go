package usage

import (
	"fmt"

	"github.com/asteroid-belt/vidtally/internal/models"
)

// Summary aggregates daily usage for display.
type Summary struct {
	TotalMinutes  int               `json:"total_minutes"`
	DaysTracked   int               `json:"days_tracked"`
	AveragePerDay float64           `json:"average_per_day"`
	BestDay       models.DailyUsage `json:"best_day"`
}

// Summary computes totals over every recorded day.
func (t *Timer) Summary() Summary {
	return Summarize(t.Daily())
}

// Summarize computes a Summary over daily. Ties for the best day go to the
// earliest date.
func Summarize(daily []models.DailyUsage) Summary {
	var s Summary
	for _, d := range daily {
		if d.Minutes <= 0 {
			continue
		}
		s.TotalMinutes += d.Minutes
		s.DaysTracked++
		if d.Minutes > s.BestDay.Minutes ||
			(d.Minutes == s.BestDay.Minutes && d.Date < s.BestDay.Date) {
			s.BestDay = d
		}
	}
	if s.DaysTracked > 0 {
		s.AveragePerDay = float64(s.TotalMinutes) / float64(s.DaysTracked)
	}
	return s
}

// FormatMinutes renders minutes as "1h 05m" or "42m".
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	return fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)
}
