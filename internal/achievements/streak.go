package achievements

import (
	"sort"
	"time"

	"github.com/asteroid-belt/vidtally/internal/models"
)

// ConsecutiveDays returns the length of the run of adjacent calendar days
// ending at the latest date in dates. Unparseable dates are ignored.
func ConsecutiveDays(dates []string) int {
	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		t, err := time.Parse(models.DateLayout, d)
		if err != nil {
			continue
		}
		days = append(days, t)
	}
	if len(days) == 0 {
		return 0
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	run := 1
	for i := len(days) - 1; i > 0; i-- {
		if !days[i-1].AddDate(0, 0, 1).Equal(days[i]) {
			break
		}
		run++
	}
	return run
}
