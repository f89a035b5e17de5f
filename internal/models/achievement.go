package models

import "time"

// AchievementID identifies one entry in the closed achievement table.
type AchievementID string

// SignalKind is the accumulated signal an achievement threshold applies to.
type SignalKind string

const (
	SignalWatchMinutes    SignalKind = "watch_minutes"
	SignalCompletedItems  SignalKind = "completed_items"
	SignalConsecutiveDays SignalKind = "consecutive_days"
	SignalOpenDays        SignalKind = "open_days"
)

// Achievement is the earned state of one achievement.
type Achievement struct {
	ID          AchievementID `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Earned      bool          `json:"earned"`
	EarnedAt    *time.Time    `json:"earned_at,omitempty"`
}
