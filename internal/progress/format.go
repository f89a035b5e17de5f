package progress

import (
	"fmt"
	"math"
	"regexp"

	"github.com/asteroid-belt/vidtally/internal/models"
)

var mediaIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// IsValidItemID reports whether id looks like an 11-character media ID.
// It is advisory only; the ledger accepts any non-empty ID.
func IsValidItemID(id string) bool {
	return mediaIDPattern.MatchString(id)
}

// Percent returns how much of rec has been watched, clamped to [0, 100].
func Percent(rec models.ProgressRecord) float64 {
	if rec.DurationSeconds <= 0 {
		return 0
	}
	p := rec.SecondsWatched / rec.DurationSeconds * 100
	return math.Max(0, math.Min(100, p))
}

// FormatProgress renders rec as "Progress: m:ss / m:ss (NN%)".
func FormatProgress(rec models.ProgressRecord) string {
	return fmt.Sprintf("Progress: %s / %s (%.0f%%)",
		FormatClock(rec.SecondsWatched), FormatClock(rec.DurationSeconds), Percent(rec))
}

// FormatClock renders seconds as m:ss.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(math.Round(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
