package usage

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/asteroid-belt/vidtally/internal/models"
)

func TestSummarize(t *testing.T) {
	s := Summarize([]models.DailyUsage{
		{Date: "2026-03-01", Minutes: 30},
		{Date: "2026-03-02", Minutes: 90},
		{Date: "2026-03-03", Minutes: 90},
		{Date: "2026-03-04", Minutes: 0},
	})

	assert.Equal(t, 210, s.TotalMinutes)
	assert.Equal(t, 3, s.DaysTracked)
	assert.InDelta(t, 70.0, s.AveragePerDay, 0.001)
	assert.Equal(t, "2026-03-02", s.BestDay.Date)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Equal(t, Summary{}, Summarize(nil))
}

func TestFormatMinutes(t *testing.T) {
	assert.Equal(t, "42m", FormatMinutes(42))
	assert.Equal(t, "1h 05m", FormatMinutes(65))
	assert.Equal(t, "20h 00m", FormatMinutes(1200))
}
