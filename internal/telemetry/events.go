package telemetry

import (
	"runtime"

	"github.com/asteroid-belt/vidtally/pkg/version"
)

// Event names - CLI
const (
	EventAppStarted         = "app_started"
	EventAppExited          = "app_exited"
	EventCLICommandExecuted = "cli_command_executed"
	EventCLIErrorOccurred   = "cli_error_occurred"
)

// Event names - TUI
const (
	EventViewNavigated = "view_navigated"
)

// Event names - Engine
const (
	EventBadgeEarned   = "badge_earned"
	EventItemCompleted = "item_completed"
	EventUsageRecorded = "usage_recorded"
	EventRankingSynced = "ranking_synced"
	EventMCPToolCalled = "mcp_tool_called"
)

// baseProperties returns common properties for all events.
func baseProperties() map[string]interface{} {
	return map[string]interface{}{
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"version":    version.Version,
		"prerelease": version.IsPrerelease(),
		"dev_build":  version.IsDevBuild(),
	}
}

// --- CLI Tracking Methods ---

// TrackAppStarted tracks application startup.
func (c *posthogClient) TrackAppStarted(mode string, rankingEnabled bool) {
	props := baseProperties()
	props["mode"] = mode
	props["ranking_enabled"] = rankingEnabled
	c.Track(EventAppStarted, props)
}

// TrackAppExited tracks application exit.
func (c *posthogClient) TrackAppExited(mode string, sessionDurationMs int64, commandsRun int) {
	props := baseProperties()
	props["mode"] = mode
	props["session_duration_ms"] = sessionDurationMs
	props["commands_run"] = commandsRun
	c.Track(EventAppExited, props)
}

// TrackCLICommandExecuted tracks CLI command execution.
func (c *posthogClient) TrackCLICommandExecuted(commandName string, hasFlags bool, durationMs int64) {
	props := baseProperties()
	props["command_name"] = commandName
	props["has_flags"] = hasFlags
	props["execution_duration_ms"] = durationMs
	c.Track(EventCLICommandExecuted, props)
}

// TrackCLIError tracks CLI errors. Only the error category is sent.
func (c *posthogClient) TrackCLIError(commandName, errorType string) {
	props := baseProperties()
	props["command_name"] = commandName
	props["error_type"] = errorType
	c.Track(EventCLIErrorOccurred, props)
}

// --- TUI Tracking Methods ---

// TrackViewNavigated tracks dashboard tab changes.
func (c *posthogClient) TrackViewNavigated(viewName, previousView string) {
	props := baseProperties()
	props["view_name"] = viewName
	props["previous_view"] = previousView
	c.Track(EventViewNavigated, props)
}

// --- Engine Tracking Methods ---

// TrackBadgeEarned tracks a newly earned achievement.
func (c *posthogClient) TrackBadgeEarned(badgeID, signal string) {
	props := baseProperties()
	props["badge_id"] = badgeID
	props["signal"] = signal
	c.Track(EventBadgeEarned, props)
}

// TrackItemCompleted tracks an item crossing the completion threshold.
// Item IDs are never sent.
func (c *posthogClient) TrackItemCompleted(completedCount int) {
	props := baseProperties()
	props["completed_count"] = completedCount
	c.Track(EventItemCompleted, props)
}

// TrackUsageRecorded tracks a usage session folded into daily totals.
func (c *posthogClient) TrackUsageRecorded(minutes, totalMinutes int) {
	props := baseProperties()
	props["minutes"] = minutes
	props["total_minutes"] = totalMinutes
	c.Track(EventUsageRecorded, props)
}

// TrackRankingSynced tracks a remote ranking sync.
func (c *posthogClient) TrackRankingSynced(outcome string) {
	props := baseProperties()
	props["outcome"] = outcome
	c.Track(EventRankingSynced, props)
}

// TrackMCPToolCalled tracks MCP tool invocations.
func (c *posthogClient) TrackMCPToolCalled(toolName string, durationMs int64, success bool) {
	props := baseProperties()
	props["tool_name"] = toolName
	props["duration_ms"] = durationMs
	props["success"] = success
	c.Track(EventMCPToolCalled, props)
}

// --- No-op implementations ---

func (c *noopClient) TrackAppStarted(mode string, rankingEnabled bool)                            {}
func (c *noopClient) TrackAppExited(mode string, sessionDurationMs int64, commandsRun int)        {}
func (c *noopClient) TrackCLICommandExecuted(commandName string, hasFlags bool, durationMs int64) {}
func (c *noopClient) TrackCLIError(commandName, errorType string)                                 {}
func (c *noopClient) TrackViewNavigated(viewName, previousView string)                            {}
func (c *noopClient) TrackBadgeEarned(badgeID, signal string)                                     {}
func (c *noopClient) TrackItemCompleted(completedCount int)                                       {}
func (c *noopClient) TrackUsageRecorded(minutes, totalMinutes int)                                {}
func (c *noopClient) TrackRankingSynced(outcome string)                                           {}
func (c *noopClient) TrackMCPToolCalled(toolName string, durationMs int64, success bool)          {}
