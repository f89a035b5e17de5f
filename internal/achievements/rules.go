package achievements

import "github.com/asteroid-belt/vidtally/internal/models"

// Achievement IDs.
const (
	Time30Min      models.AchievementID = "time-30min"
	Time1Hour      models.AchievementID = "time-1hour"
	Time5Hour      models.AchievementID = "time-5hour"
	VideoFirst     models.AchievementID = "video-first"
	Video5Complete models.AchievementID = "video-5complete"
	AppFirstOpen   models.AchievementID = "app-first-open"
	App5Days       models.AchievementID = "app-5-days"
	App10Days      models.AchievementID = "app-10-days"
	App20Days      models.AchievementID = "app-20-days"
)

// Rule unlocks an achievement once its signal reaches Threshold.
type Rule struct {
	ID          models.AchievementID
	Name        string
	Description string
	Icon        string
	Signal      models.SignalKind
	Threshold   int
}

// Rules is the closed achievement table, in display order.
var Rules = []Rule{
	{Time30Min, "30-Minute Viewer", "Watched videos for 30 minutes", "badge-check", models.SignalWatchMinutes, 30},
	{Time1Hour, "1-Hour Enthusiast", "Watched videos for 1 hour", "badge-plus", models.SignalWatchMinutes, 60},
	{Time5Hour, "5-Hour Dedicated", "Watched videos for 5 hours", "award", models.SignalWatchMinutes, 300},
	{VideoFirst, "First Video", "Finished watching your first video", "badge", models.SignalCompletedItems, 1},
	{Video5Complete, "5 Videos Completed", "Finished watching 5 videos", "trophy", models.SignalCompletedItems, 5},
	{AppFirstOpen, "First Timer", "Opened the app for the first time", "star", models.SignalOpenDays, 1},
	{App5Days, "5-Day Streak", "Used the app for 5 consecutive days", "calendar-check", models.SignalConsecutiveDays, 5},
	{App10Days, "10-Day Streak", "Used the app for 10 consecutive days", "check-check", models.SignalConsecutiveDays, 10},
	{App20Days, "20-Day Streak", "Used the app for 20 consecutive days", "trophy", models.SignalConsecutiveDays, 20},
}

// RuleFor returns the rule for id.
func RuleFor(id models.AchievementID) (Rule, bool) {
	for _, r := range Rules {
		if r.ID == id {
			return r, true
		}
	}
	return Rule{}, false
}

// Satisfied returns the rules for signal whose threshold value meets.
func Satisfied(signal models.SignalKind, value int) []Rule {
	var out []Rule
	for _, r := range Rules {
		if r.Signal == signal && value >= r.Threshold {
			out = append(out, r)
		}
	}
	return out
}
