package mcp

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/vidtally/internal/notify"
	"github.com/asteroid-belt/vidtally/internal/usage"
)

func callTool(t *testing.T, handler func() (*mcp.CallToolResult, error)) *mcp.CallToolResult {
	t.Helper()
	result, err := handler()
	require.NoError(t, err)
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	return result
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	textContent, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return textContent.Text
}

func decodeResult(t *testing.T, result *mcp.CallToolResult, v any) {
	t.Helper()
	require.False(t, result.IsError, resultText(t, result))
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), v))
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func noticeTitles(notices []notify.Notice) []string {
	out := make([]string, 0, len(notices))
	for _, n := range notices {
		out = append(out, n.Title)
	}
	return out
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name string
		args map[string]any
		want int
	}{
		{"missing", map[string]any{}, 10},
		{"valid", map[string]any{"limit": float64(5)}, 5},
		{"capped", map[string]any{"limit": float64(500)}, 50},
		{"zero", map[string]any{"limit": float64(0)}, 10},
		{"negative", map[string]any{"limit": float64(-3)}, 10},
		{"wrong type", map[string]any{"limit": "5"}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseLimit(tt.args, "limit", 10, 50))
		})
	}
}

func TestHandleRecordProgress(t *testing.T) {
	env := setupTestServer(t, false)
	ctx := t.Context()

	t.Run("records partial progress", func(t *testing.T) {
		result := callTool(t, func() (*mcp.CallToolResult, error) {
			return env.server.handleRecordProgress(ctx, toolRequest(map[string]any{
				"video_id": "abc12345678",
				"seconds":  float64(120),
				"duration": float64(600),
				"playlist": "PL1",
			}))
		})

		var resp RecordResponse
		decodeResult(t, result, &resp)
		assert.True(t, resp.Recorded)
		assert.False(t, resp.NewlyCompleted)
		assert.Equal(t, "PL1", resp.Progress.Playlist)
		assert.InDelta(t, 20.0, resp.Progress.Percent, 0.001)
		assert.True(t, resp.Progress.HasProgress)
	})

	t.Run("completion earns a badge", func(t *testing.T) {
		result := callTool(t, func() (*mcp.CallToolResult, error) {
			return env.server.handleRecordProgress(ctx, toolRequest(map[string]any{
				"video_id": "abc12345678",
				"seconds":  float64(580),
				"duration": float64(600),
			}))
		})

		var resp RecordResponse
		decodeResult(t, result, &resp)
		assert.True(t, resp.NewlyCompleted)
		assert.Equal(t, 1, resp.CompletedCount)
		assert.True(t, resp.Progress.Completed)
		assert.Contains(t, noticeTitles(resp.Notices), "Badge earned: First Video")
	})

	t.Run("invalid sample is ignored", func(t *testing.T) {
		result := callTool(t, func() (*mcp.CallToolResult, error) {
			return env.server.handleRecordProgress(ctx, toolRequest(map[string]any{
				"video_id": "zzz12345678",
				"seconds":  float64(10),
				"duration": float64(0),
			}))
		})

		var resp RecordResponse
		decodeResult(t, result, &resp)
		assert.False(t, resp.Recorded)
		assert.False(t, env.eng.Ledger.HasProgress("zzz12345678"))
	})

	t.Run("missing arguments", func(t *testing.T) {
		for _, args := range []map[string]any{
			{"seconds": float64(1), "duration": float64(2)},
			{"video_id": "  ", "seconds": float64(1), "duration": float64(2)},
			{"video_id": "abc12345678", "duration": float64(2)},
			{"video_id": "abc12345678", "seconds": float64(1)},
		} {
			result := callTool(t, func() (*mcp.CallToolResult, error) {
				return env.server.handleRecordProgress(ctx, toolRequest(args))
			})
			assert.True(t, result.IsError)
		}
	})

	assert.False(t, env.tc.toolCalls()["vidtally_record_progress"])
}

func TestHandleGetAndDeleteProgress(t *testing.T) {
	env := setupTestServer(t, false)
	ctx := t.Context()

	_, err := env.eng.Ledger.RecordSample("abc12345678", "", 590, 600)
	require.NoError(t, err)

	var got ProgressResponse
	decodeResult(t, callTool(t, func() (*mcp.CallToolResult, error) {
		return env.server.handleGetProgress(ctx, toolRequest(map[string]any{"video_id": "abc12345678"}))
	}), &got)
	assert.True(t, got.HasProgress)
	assert.True(t, got.Completed)
	assert.InDelta(t, 590.0, got.Seconds, 0.001)

	var deleted map[string]any
	decodeResult(t, callTool(t, func() (*mcp.CallToolResult, error) {
		return env.server.handleDeleteProgress(ctx, toolRequest(map[string]any{"video_id": "abc12345678"}))
	}), &deleted)
	assert.Equal(t, true, deleted["deleted"])
	// Forgetting the position keeps the video counted as finished.
	assert.Equal(t, true, deleted["completed"])
	assert.False(t, env.eng.Ledger.HasProgress("abc12345678"))

	decodeResult(t, callTool(t, func() (*mcp.CallToolResult, error) {
		return env.server.handleGetProgress(ctx, toolRequest(map[string]any{"video_id": "abc12345678"}))
	}), &got)
	assert.False(t, got.HasProgress)
	assert.Zero(t, got.Seconds)

	result := callTool(t, func() (*mcp.CallToolResult, error) {
		return env.server.handleGetProgress(ctx, toolRequest(map[string]any{}))
	})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "video_id")
}

func TestHandleRecentAndResume(t *testing.T) {
	env := setupTestServer(t, false)
	ctx := t.Context()

	var resume map[string]any
	decodeResult(t, callTool(t, func() (*mcp.CallToolResult, error) {
		return env.server.handleResume(ctx, toolRequest(nil))
	}), &resume)
	assert.Equal(t, false, resume["found"])

	for _, id := range []string{"aaa11111111", "bbb22222222", "ccc33333333"} {
		_, err := env.eng.Ledger.RecordSample(id, "", 30, 600)
		require.NoError(t, err)
		env.clock.Advance(time.Minute)
	}

	var recent []ProgressResponse
	decodeResult(t, callTool(t, func() (*mcp.CallToolResult, error) {
		return env.server.handleRecent(ctx, toolRequest(map[string]any{"limit": float64(2)}))
	}), &recent)
	require.Len(t, recent, 2)
	assert.Equal(t, "ccc33333333", recent[0].VideoID)
	assert.Equal(t, "bbb22222222", recent[1].VideoID)

	decodeResult(t, callTool(t, func() (*mcp.CallToolResult, error) {
		return env.server.handleResume(ctx, toolRequest(nil))
	}), &resume)
	assert.Equal(t, true, resume["found"])
	assert.Equal(t, "ccc33333333", resume["video_id"])
	assert.Equal(t, "0:30", resume["resume_at"])

	calls := env.tc.toolCalls()
	assert.True(t, calls["vidtally_recent"])
	assert.True(t, calls["vidtally_resume"])
}

func TestHandleSession(t *testing.T) {
	env := setupTestServer(t, false)
	ctx := t.Context()

	var started SessionResponse
	decodeResult(t, callTool(t, func() (*mcp.CallToolResult, error) {
		return env.server.handleSessionStart(ctx, toolRequest(nil))
	}), &started)
	assert.Equal(t, usage.Running, started.State)
	assert.NotNil(t, started.SessionStart)
	assert.False(t, started.NoChange)
	assert.Equal(t, 1, started.StreakDays)
	assert.Contains(t, noticeTitles(started.Notices), "Badge earned: First Timer")

	decodeResult(t, callTool(t, func() (*mcp.CallToolResult, error) {
		return env.server.handleSessionStart(ctx, toolRequest(nil))
	}), &started)
	assert.True(t, started.NoChange)

	env.clock.Advance(90 * time.Second)

	var stopped SessionResponse
	decodeResult(t, callTool(t, func() (*mcp.CallToolResult, error) {
		return env.server.handleSessionStop(ctx, toolRequest(nil))
	}), &stopped)
	assert.Equal(t, 1, stopped.Minutes)
	assert.Equal(t, 1, stopped.TodayMinutes)
	assert.Nil(t, stopped.SessionStart)
	assert.Empty(t, stopped.Notices)

	decodeResult(t, callTool(t, func() (*mcp.CallToolResult, error) {
		return env.server.handleSessionStop(ctx, toolRequest(nil))
	}), &stopped)
	assert.True(t, stopped.NoChange)
	assert.Zero(t, stopped.Minutes)
}

func TestHandleUsage(t *testing.T) {
	env := setupTestServer(t, false)
	ctx := t.Context()

	for day := 0; day < 3; day++ {
		_, err := env.eng.Timer.Start()
		require.NoError(t, err)
		env.clock.Advance(time.Duration(day+2) * time.Minute)
		_, err = env.eng.Timer.Stop()
		require.NoError(t, err)
		env.clock.Advance(24 * time.Hour)
	}

	var resp struct {
		TotalMinutes int `json:"total_minutes"`
		Daily        []struct {
			Date    string `json:"date"`
			Minutes int    `json:"minutes"`
		} `json:"daily"`
	}
	decodeResult(t, callTool(t, func() (*mcp.CallToolResult, error) {
		return env.server.handleUsage(ctx, toolRequest(map[string]any{"days": float64(2)}))
	}), &resp)
	assert.Equal(t, 9, resp.TotalMinutes)
	require.Len(t, resp.Daily, 2)
	assert.Equal(t, 4, resp.Daily[1].Minutes)
}

func TestHandleBadges(t *testing.T) {
	env := setupTestServer(t, false)
	ctx := t.Context()

	_, err := env.eng.Ledger.RecordSample("abc12345678", "", 600, 600)
	require.NoError(t, err)

	var all struct {
		Earned int `json:"earned"`
		Total  int `json:"total"`
		Badges []struct {
			Name   string `json:"name"`
			Earned bool   `json:"earned"`
		} `json:"badges"`
	}
	decodeResult(t, callTool(t, func() (*mcp.CallToolResult, error) {
		return env.server.handleBadges(ctx, toolRequest(nil))
	}), &all)
	assert.Equal(t, 1, all.Earned)
	assert.Equal(t, 9, all.Total)
	assert.Len(t, all.Badges, 9)

	decodeResult(t, callTool(t, func() (*mcp.CallToolResult, error) {
		return env.server.handleBadges(ctx, toolRequest(map[string]any{"earned_only": true}))
	}), &all)
	require.Len(t, all.Badges, 1)
	assert.Equal(t, "First Video", all.Badges[0].Name)
}

func TestHandleLeaderboard_NotConfigured(t *testing.T) {
	env := setupTestServer(t, false)

	result := callTool(t, func() (*mcp.CallToolResult, error) {
		return env.server.handleLeaderboard(t.Context(), toolRequest(nil))
	})
	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), "not configured")
	assert.False(t, env.tc.toolCalls()["vidtally_leaderboard"])
}

func TestHandleLeaderboard_Refresh(t *testing.T) {
	env := setupTestServer(t, true)
	ctx := t.Context()

	_, err := env.eng.Timer.Start()
	require.NoError(t, err)
	env.clock.Advance(12 * time.Minute)
	_, err = env.eng.Timer.Stop()
	require.NoError(t, err)
	env.eng.Wait()

	var resp LeaderboardResponse
	decodeResult(t, callTool(t, func() (*mcp.CallToolResult, error) {
		return env.server.handleLeaderboard(ctx, toolRequest(map[string]any{"refresh": true}))
	}), &resp)
	assert.Equal(t, "client-a", resp.ClientID)
	assert.Equal(t, 1, resp.Position)
	require.Len(t, resp.Entries, 1)
	assert.Equal(t, 12, resp.Entries[0].TotalMinutes)
	assert.False(t, resp.Cached)
	assert.True(t, env.tc.toolCalls()["vidtally_leaderboard"])
}

func TestHandleSync(t *testing.T) {
	t.Run("not configured still re-checks badges", func(t *testing.T) {
		env := setupTestServer(t, false)

		var resp map[string]any
		decodeResult(t, callTool(t, func() (*mcp.CallToolResult, error) {
			return env.server.handleSync(t.Context(), toolRequest(nil))
		}), &resp)
		assert.Equal(t, false, resp["synced"])
	})

	t.Run("pushes the local total", func(t *testing.T) {
		env := setupTestServer(t, true)
		ctx := t.Context()

		_, err := env.eng.Timer.Start()
		require.NoError(t, err)
		env.clock.Advance(5 * time.Minute)
		_, err = env.eng.Timer.Stop()
		require.NoError(t, err)
		env.eng.Wait()

		var resp map[string]any
		decodeResult(t, callTool(t, func() (*mcp.CallToolResult, error) {
			return env.server.handleSync(ctx, toolRequest(nil))
		}), &resp)
		assert.Equal(t, true, resp["synced"])
		assert.EqualValues(t, 5, resp["total_minutes"])
		assert.EqualValues(t, 1, resp["position"])

		rec, found, err := env.remote.SelectByID(ctx, "client-a")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, 5, rec.TotalMinutes)
	})
}

func TestHandleStatus(t *testing.T) {
	env := setupTestServer(t, false)
	ctx := t.Context()

	_, err := env.eng.Ledger.RecordSample("abc12345678", "", 600, 600)
	require.NoError(t, err)

	var status map[string]any
	decodeResult(t, callTool(t, func() (*mcp.CallToolResult, error) {
		return env.server.handleStatus(ctx, toolRequest(nil))
	}), &status)
	assert.EqualValues(t, 1, status["completed_count"])
	assert.EqualValues(t, 1, status["earned_badges"])
	assert.EqualValues(t, 9, status["total_badges"])
	assert.Equal(t, false, status["ranking_enabled"])
	assert.NotNil(t, status["last_watched"])
}
