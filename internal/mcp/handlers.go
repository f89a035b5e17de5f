package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/asteroid-belt/vidtally/internal/models"
	"github.com/asteroid-belt/vidtally/internal/notify"
	"github.com/asteroid-belt/vidtally/internal/progress"
	"github.com/asteroid-belt/vidtally/internal/ranking"
	"github.com/asteroid-belt/vidtally/internal/usage"
)

// Default and maximum limits for list-shaped tools.
const (
	defaultRecentLimit      = 10
	maxRecentLimit          = 50
	defaultUsageDays        = 14
	maxUsageDays            = 366
	defaultLeaderboardLimit = 20
	maxLeaderboardLimit     = 100
)

// parseLimit extracts and validates a numeric argument from tool arguments.
func parseLimit(arguments map[string]interface{}, key string, defaultVal, maxVal int) int {
	if l, ok := arguments[key].(float64); ok && l > 0 {
		limit := int(l)
		if limit > maxVal {
			return maxVal
		}
		return limit
	}
	return defaultVal
}

// parseVideoID extracts a trimmed, non-empty video_id argument.
func parseVideoID(arguments map[string]interface{}) (string, bool) {
	id, ok := arguments["video_id"].(string)
	if !ok {
		return "", false
	}
	id = strings.TrimSpace(id)
	return id, id != ""
}

// trackToolCall is a helper to track MCP tool invocations.
func (s *Server) trackToolCall(toolName string, start time.Time, success bool) {
	if s.telemetry != nil {
		durationMs := time.Since(start).Milliseconds()
		s.telemetry.TrackMCPToolCalled(toolName, durationMs, success)
	}
}

// jsonResult marshals v into a text tool result, tracking the call outcome.
func (s *Server) jsonResult(toolName string, start time.Time, v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		s.trackToolCall(toolName, start, false)
		return mcp.NewToolResultError(fmt.Sprintf("Failed to marshal response: %v", err)), nil
	}
	s.trackToolCall(toolName, start, true)
	return mcp.NewToolResultText(string(data)), nil
}

// toolError returns an error tool result, tracking the failed call.
func (s *Server) toolError(toolName string, start time.Time, msg string) (*mcp.CallToolResult, error) {
	s.trackToolCall(toolName, start, false)
	return mcp.NewToolResultError(msg), nil
}

// ProgressResponse is one video's stored progress in MCP tool responses.
type ProgressResponse struct {
	VideoID     string     `json:"video_id"`
	Playlist    string     `json:"playlist,omitempty"`
	Seconds     float64    `json:"seconds"`
	Duration    float64    `json:"duration"`
	Percent     float64    `json:"percent"`
	Position    string     `json:"position"`
	Completed   bool       `json:"completed"`
	HasProgress bool       `json:"has_progress"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

func (s *Server) progressResponse(videoID string) ProgressResponse {
	rec := s.eng.Ledger.ReadProgress(videoID)
	resp := ProgressResponse{
		VideoID:     videoID,
		Playlist:    rec.ContainerID,
		Seconds:     rec.SecondsWatched,
		Duration:    rec.DurationSeconds,
		Percent:     progress.Percent(rec),
		Position:    progress.FormatProgress(rec),
		Completed:   s.eng.Ledger.IsCompleted(videoID),
		HasProgress: s.eng.Ledger.HasProgress(videoID),
	}
	if !rec.LastUpdated.IsZero() {
		updated := rec.LastUpdated
		resp.LastUpdated = &updated
	}
	return resp
}

// RecordResponse is the result of vidtally_record_progress.
type RecordResponse struct {
	Recorded       bool             `json:"recorded"`
	NewlyCompleted bool             `json:"newly_completed"`
	CompletedCount int              `json:"completed_count"`
	Progress       ProgressResponse `json:"progress"`
	Notices        []notify.Notice  `json:"notices,omitempty"`
}

// handleRecordProgress handles the vidtally_record_progress tool.
func (s *Server) handleRecordProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const tool = "vidtally_record_progress"
	start := time.Now()

	videoID, ok := parseVideoID(req.Params.Arguments)
	if !ok {
		return s.toolError(tool, start, "video_id parameter is required")
	}
	seconds, ok := req.Params.Arguments["seconds"].(float64)
	if !ok {
		return s.toolError(tool, start, "seconds parameter is required")
	}
	duration, ok := req.Params.Arguments["duration"].(float64)
	if !ok {
		return s.toolError(tool, start, "duration parameter is required")
	}
	playlist, _ := req.Params.Arguments["playlist"].(string)

	res, err := s.eng.Ledger.RecordSample(videoID, strings.TrimSpace(playlist), seconds, duration)
	if err != nil {
		return s.toolError(tool, start, fmt.Sprintf("Failed to record progress: %v", err))
	}

	return s.jsonResult(tool, start, RecordResponse{
		Recorded:       res.Recorded,
		NewlyCompleted: res.NewlyCompleted,
		CompletedCount: res.CompletedCount,
		Progress:       s.progressResponse(videoID),
		Notices:        s.eng.Notices(),
	})
}

// handleGetProgress handles the vidtally_get_progress tool.
func (s *Server) handleGetProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const tool = "vidtally_get_progress"
	start := time.Now()

	videoID, ok := parseVideoID(req.Params.Arguments)
	if !ok {
		return s.toolError(tool, start, "video_id parameter is required")
	}
	return s.jsonResult(tool, start, s.progressResponse(videoID))
}

// handleDeleteProgress handles the vidtally_delete_progress tool.
func (s *Server) handleDeleteProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const tool = "vidtally_delete_progress"
	start := time.Now()

	videoID, ok := parseVideoID(req.Params.Arguments)
	if !ok {
		return s.toolError(tool, start, "video_id parameter is required")
	}

	existed := s.eng.Ledger.HasProgress(videoID)
	if err := s.eng.Ledger.DeleteProgress(videoID); err != nil {
		return s.toolError(tool, start, fmt.Sprintf("Failed to delete progress: %v", err))
	}

	return s.jsonResult(tool, start, map[string]any{
		"success":   true,
		"video_id":  videoID,
		"deleted":   existed,
		"completed": s.eng.Ledger.IsCompleted(videoID),
	})
}

// handleRecent handles the vidtally_recent tool.
func (s *Server) handleRecent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const tool = "vidtally_recent"
	start := time.Now()

	limit := parseLimit(req.Params.Arguments, "limit", defaultRecentLimit, maxRecentLimit)
	records, err := s.eng.Ledger.Recent(limit)
	if err != nil {
		return s.toolError(tool, start, fmt.Sprintf("Failed to list progress: %v", err))
	}

	results := make([]ProgressResponse, 0, len(records))
	for _, rec := range records {
		results = append(results, s.progressResponse(rec.ItemID))
	}
	return s.jsonResult(tool, start, results)
}

// handleResume handles the vidtally_resume tool.
func (s *Server) handleResume(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const tool = "vidtally_resume"
	start := time.Now()

	lw, ok := s.eng.Ledger.LastWatched()
	if !ok {
		return s.jsonResult(tool, start, map[string]any{"found": false})
	}

	resume := s.eng.Ledger.ResumePoint(lw.ItemID)
	return s.jsonResult(tool, start, map[string]any{
		"found":          true,
		"video_id":       lw.ItemID,
		"playlist":       lw.ContainerID,
		"resume_seconds": resume,
		"resume_at":      progress.FormatClock(resume),
		"progress":       s.progressResponse(lw.ItemID),
	})
}

// SessionResponse describes the usage timer after a session tool ran.
type SessionResponse struct {
	State        usage.State     `json:"state"`
	SessionStart *time.Time      `json:"session_start,omitempty"`
	Minutes      int             `json:"minutes_recorded"`
	TodayMinutes int             `json:"today_minutes"`
	TotalMinutes int             `json:"total_minutes"`
	StreakDays   int             `json:"streak_days"`
	NoChange     bool            `json:"no_change"`
	Notices      []notify.Notice `json:"notices,omitempty"`
}

func (s *Server) sessionResponse() SessionResponse {
	resp := SessionResponse{
		State:        s.eng.Timer.State(),
		TodayMinutes: s.eng.Timer.Today(),
		TotalMinutes: s.eng.Timer.TotalMinutes(),
		StreakDays:   s.eng.Achievements.ConsecutiveDays(),
	}
	if at, ok := s.eng.Timer.SessionStart(); ok {
		resp.SessionStart = &at
	}
	return resp
}

// handleSessionStart handles the vidtally_session_start tool.
func (s *Server) handleSessionStart(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const tool = "vidtally_session_start"
	start := time.Now()

	wasRunning := s.eng.Timer.State() == usage.Running
	if err := s.eng.Open(ctx); err != nil {
		return s.toolError(tool, start, fmt.Sprintf("Failed to start session: %v", err))
	}

	resp := s.sessionResponse()
	resp.NoChange = wasRunning
	resp.Notices = s.eng.Notices()
	return s.jsonResult(tool, start, resp)
}

// handleSessionStop handles the vidtally_session_stop tool.
func (s *Server) handleSessionStop(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const tool = "vidtally_session_stop"
	start := time.Now()

	res, err := s.eng.Background(ctx)
	if err != nil {
		return s.toolError(tool, start, fmt.Sprintf("Failed to stop session: %v", err))
	}

	resp := s.sessionResponse()
	resp.Minutes = res.Minutes
	resp.NoChange = !res.WasRunning
	resp.Notices = s.eng.Notices()
	return s.jsonResult(tool, start, resp)
}

// handleUsage handles the vidtally_usage tool.
func (s *Server) handleUsage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const tool = "vidtally_usage"
	start := time.Now()

	days := parseLimit(req.Params.Arguments, "days", defaultUsageDays, maxUsageDays)
	daily := s.eng.Timer.Daily()
	if len(daily) > days {
		daily = daily[len(daily)-days:]
	}

	return s.jsonResult(tool, start, map[string]any{
		"state":         s.eng.Timer.State(),
		"today_minutes": s.eng.Timer.Today(),
		"total_minutes": s.eng.Timer.TotalMinutes(),
		"summary":       s.eng.Timer.Summary(),
		"daily":         daily,
	})
}

// handleBadges handles the vidtally_badges tool.
func (s *Server) handleBadges(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const tool = "vidtally_badges"
	start := time.Now()

	earnedOnly, _ := req.Params.Arguments["earned_only"].(bool)
	list := s.eng.Achievements.List()
	badges := make([]models.Achievement, 0, len(list))
	for _, a := range list {
		if earnedOnly && !a.Earned {
			continue
		}
		badges = append(badges, a)
	}

	return s.jsonResult(tool, start, map[string]any{
		"earned":      s.eng.Achievements.EarnedCount(),
		"total":       len(list),
		"streak_days": s.eng.Achievements.ConsecutiveDays(),
		"badges":      badges,
	})
}

// LeaderboardResponse is the result of vidtally_leaderboard.
type LeaderboardResponse struct {
	ClientID string                 `json:"client_id"`
	Position int                    `json:"position"`
	Entries  []models.RankingRecord `json:"entries"`
	Cached   bool                   `json:"cached,omitempty"`
	Warning  string                 `json:"warning,omitempty"`
}

// handleLeaderboard handles the vidtally_leaderboard tool.
func (s *Server) handleLeaderboard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const tool = "vidtally_leaderboard"
	start := time.Now()

	if !s.eng.Ranking.Configured() {
		return s.toolError(tool, start, "Leaderboard is not configured: set ranking.backend to postgres or redis")
	}

	clientID, err := s.eng.ClientID()
	if err != nil {
		return s.toolError(tool, start, fmt.Sprintf("Failed to read client id: %v", err))
	}

	refresh, _ := req.Params.Arguments["refresh"].(bool)
	limit := parseLimit(req.Params.Arguments, "limit", defaultLeaderboardLimit, maxLeaderboardLimit)

	var ranked []models.RankingRecord
	if refresh {
		ranked, err = s.eng.Refresh(ctx)
	} else {
		ranked, err = s.eng.Ranking.FetchRanked(ctx)
	}

	resp := LeaderboardResponse{ClientID: clientID}
	if err != nil {
		cached, at := s.eng.Ranking.Cached()
		if at.IsZero() {
			return s.toolError(tool, start, fmt.Sprintf("Failed to fetch leaderboard: %v", err))
		}
		ranked = cached
		resp.Cached = true
		resp.Warning = err.Error()
	}

	resp.Position = s.eng.Ranking.Position(clientID)
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	resp.Entries = ranked
	return s.jsonResult(tool, start, resp)
}

// handleSync handles the vidtally_sync tool.
func (s *Server) handleSync(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const tool = "vidtally_sync"
	start := time.Now()

	if !s.eng.Ranking.Configured() {
		// Re-check badges even without a leaderboard.
		_, err := s.eng.Refresh(ctx)
		if err != nil && !errors.Is(err, ranking.ErrNotConfigured) {
			return s.toolError(tool, start, fmt.Sprintf("Failed to re-check badges: %v", err))
		}
		return s.jsonResult(tool, start, map[string]any{
			"synced":  false,
			"reason":  "leaderboard not configured",
			"notices": s.eng.Notices(),
		})
	}

	res, err := s.eng.Ranking.Sync(ctx)
	if err != nil {
		return s.toolError(tool, start, fmt.Sprintf("Sync failed: %v", err))
	}
	if _, err := s.eng.Achievements.CheckTimeBadges(s.eng.Timer.TotalMinutes()); err != nil {
		return s.toolError(tool, start, fmt.Sprintf("Failed to re-check badges: %v", err))
	}

	return s.jsonResult(tool, start, map[string]any{
		"synced":        true,
		"outcome":       res.Outcome,
		"total_minutes": res.TotalMinutes,
		"position":      s.eng.Ranking.Position(res.ClientID),
		"notices":       s.eng.Notices(),
	})
}

// handleStatus handles the vidtally_status tool.
func (s *Server) handleStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	const tool = "vidtally_status"
	start := time.Now()

	snap, err := s.eng.Snapshot(ctx)
	if err != nil {
		return s.toolError(tool, start, fmt.Sprintf("Failed to read state: %v", err))
	}

	status := map[string]any{
		"timer_state":     snap.TimerState,
		"today_minutes":   snap.TodayMinutes,
		"total_minutes":   snap.TotalMinutes,
		"streak_days":     snap.Streak,
		"open_days":       snap.OpenDays,
		"earned_badges":   snap.EarnedBadges,
		"total_badges":    len(snap.Badges),
		"completed_count": snap.CompletedCount,
		"ranking_enabled": snap.RankingEnabled,
	}
	if snap.LastWatched != nil {
		status["last_watched"] = snap.LastWatched
	}
	if snap.Position > 0 {
		status["position"] = snap.Position
	}
	return s.jsonResult(tool, start, status)
}
