package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// Tool definitions for the vidtally MCP server.

// recordProgressTool returns the vidtally_record_progress tool definition.
func recordProgressTool() mcp.Tool {
	return mcp.NewTool("vidtally_record_progress",
		mcp.WithDescription("Record the playback position of a video. A video counts as finished once the position reaches 95% of its duration; finishing videos unlocks badges."),
		mcp.WithString("video_id",
			mcp.Required(),
			mcp.Description("The video's identifier, usually an 11-character video ID"),
		),
		mcp.WithNumber("seconds",
			mcp.Required(),
			mcp.Description("Current playback position in seconds (>= 0)"),
		),
		mcp.WithNumber("duration",
			mcp.Required(),
			mcp.Description("Total video duration in seconds (> 0)"),
		),
		mcp.WithString("playlist",
			mcp.Description("Playlist the video is watched from (optional)"),
		),
	)
}

// getProgressTool returns the vidtally_get_progress tool definition.
func getProgressTool() mcp.Tool {
	return mcp.NewTool("vidtally_get_progress",
		mcp.WithDescription("Get the stored playback position, percentage and completion state of a video."),
		mcp.WithString("video_id",
			mcp.Required(),
			mcp.Description("The video's identifier"),
		),
	)
}

// deleteProgressTool returns the vidtally_delete_progress tool definition.
func deleteProgressTool() mcp.Tool {
	return mcp.NewTool("vidtally_delete_progress",
		mcp.WithDescription("Forget the stored playback position of a video. Finished videos stay counted."),
		mcp.WithString("video_id",
			mcp.Required(),
			mcp.Description("The video's identifier"),
		),
	)
}

// recentTool returns the vidtally_recent tool definition.
func recentTool() mcp.Tool {
	return mcp.NewTool("vidtally_recent",
		mcp.WithDescription("List recently watched videos, most recent first."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of results to return (default: 10, max: 50)"),
		),
	)
}

// resumeTool returns the vidtally_resume tool definition.
func resumeTool() mcp.Tool {
	return mcp.NewTool("vidtally_resume",
		mcp.WithDescription("Get the last watched video and the position to resume from."),
	)
}

// sessionStartTool returns the vidtally_session_start tool definition.
func sessionStartTool() mcp.Tool {
	return mcp.NewTool("vidtally_session_start",
		mcp.WithDescription("Mark the app as active: records today's open for streak badges and starts the usage timer. Does nothing while a session is already running."),
	)
}

// sessionStopTool returns the vidtally_session_stop tool definition.
func sessionStopTool() mcp.Tool {
	return mcp.NewTool("vidtally_session_stop",
		mcp.WithDescription("Mark the app as inactive: stops the usage timer and adds whole minutes to today's total. Sessions under a minute are discarded."),
	)
}

// usageTool returns the vidtally_usage tool definition.
func usageTool() mcp.Tool {
	return mcp.NewTool("vidtally_usage",
		mcp.WithDescription("Get watch-time totals: today, all time, per-day history, best day and the current session state."),
		mcp.WithNumber("days",
			mcp.Description("Number of most recent days of history to include (default: 14, max: 366)"),
		),
	)
}

// badgesTool returns the vidtally_badges tool definition.
func badgesTool() mcp.Tool {
	return mcp.NewTool("vidtally_badges",
		mcp.WithDescription("List every badge with whether and when it was earned, plus the current daily streak."),
		mcp.WithBoolean("earned_only",
			mcp.Description("Only return earned badges (default: false)"),
		),
	)
}

// leaderboardTool returns the vidtally_leaderboard tool definition.
func leaderboardTool() mcp.Tool {
	return mcp.NewTool("vidtally_leaderboard",
		mcp.WithDescription("Get the watch-time leaderboard ordered by total minutes, with this installation's position."),
		mcp.WithBoolean("refresh",
			mcp.Description("Push this installation's total before fetching (default: false)"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to return (default: 20, max: 100)"),
		),
	)
}

// syncTool returns the vidtally_sync tool definition.
func syncTool() mcp.Tool {
	return mcp.NewTool("vidtally_sync",
		mcp.WithDescription("Push this installation's watch-time total to the leaderboard now and re-check badges."),
	)
}

// statusTool returns the vidtally_status tool definition.
func statusTool() mcp.Tool {
	return mcp.NewTool("vidtally_status",
		mcp.WithDescription("Get a compact summary of usage, streaks, badges, last watched video and leaderboard position."),
	)
}
