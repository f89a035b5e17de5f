package engine

import (
	"context"
	"time"

	"github.com/asteroid-belt/vidtally/internal/models"
	"github.com/asteroid-belt/vidtally/internal/usage"
)

// Snapshot is a read-only view of engine state for display.
type Snapshot struct {
	ClientID       string                  `json:"client_id"`
	TimerState     usage.State             `json:"timer_state"`
	SessionStart   *time.Time              `json:"session_start,omitempty"`
	TotalMinutes   int                     `json:"total_minutes"`
	TodayMinutes   int                     `json:"today_minutes"`
	Usage          usage.Summary           `json:"usage"`
	Daily          []models.DailyUsage     `json:"daily"`
	Streak         int                     `json:"streak"`
	OpenDays       int                     `json:"open_days"`
	Badges         []models.Achievement    `json:"badges"`
	EarnedBadges   int                     `json:"earned_badges"`
	CompletedCount int                     `json:"completed_count"`
	LastWatched    *models.LastWatched     `json:"last_watched,omitempty"`
	Recent         []models.ProgressRecord `json:"recent"`
	RankingEnabled bool                    `json:"ranking_enabled"`
	Ranked         []models.RankingRecord  `json:"ranked,omitempty"`
	RankedAt       *time.Time              `json:"ranked_at,omitempty"`
	Position       int                     `json:"position,omitempty"`
}

// Snapshot aggregates the current state. It never contacts the remote store;
// Ranked holds whatever the last sync or fetch cached.
func (e *Engine) Snapshot(_ context.Context) (Snapshot, error) {
	s := Snapshot{
		TimerState:     e.Timer.State(),
		TotalMinutes:   e.Timer.TotalMinutes(),
		TodayMinutes:   e.Timer.Today(),
		Usage:          e.Timer.Summary(),
		Daily:          e.Timer.Daily(),
		Streak:         e.Achievements.ConsecutiveDays(),
		OpenDays:       len(e.Achievements.OpenDays()),
		Badges:         e.Achievements.List(),
		EarnedBadges:   e.Achievements.EarnedCount(),
		CompletedCount: e.Ledger.CompletedCount(),
		RankingEnabled: e.Ranking.Configured(),
	}

	if start, ok := e.Timer.SessionStart(); ok {
		s.SessionStart = &start
	}
	if lw, ok := e.Ledger.LastWatched(); ok {
		s.LastWatched = &lw
	}

	recent, err := e.Ledger.Recent(e.progress.RecentLimit)
	if err != nil {
		return Snapshot{}, err
	}
	s.Recent = recent

	if e.identity != nil {
		id, err := e.identity.GetOrCreateClientID()
		if err != nil {
			return Snapshot{}, err
		}
		s.ClientID = id
	}

	if ranked, at := e.Ranking.Cached(); !at.IsZero() {
		s.Ranked = ranked
		s.RankedAt = &at
		s.Position = e.Ranking.Position(s.ClientID)
	}
	return s, nil
}
