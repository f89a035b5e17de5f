// Package mcp provides the Model Context Protocol server for vidtally.
//
// The server exposes the progress ledger, usage timer, badges and the
// leaderboard to MCP-compatible clients. It drives the same engine the
// CLI and TUI use, so every trigger (completion badges, time badges,
// leaderboard pushes) fires the same way regardless of the host.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/telemetry"
	"github.com/asteroid-belt/vidtally/pkg/version"
)

// Server wraps the MCP server with vidtally-specific functionality.
type Server struct {
	eng       *engine.Engine
	server    *server.MCPServer
	telemetry telemetry.Client
}

// NewServer creates a new MCP server instance.
func NewServer(eng *engine.Engine, tc telemetry.Client) *Server {
	s := &Server{
		eng:       eng,
		telemetry: tc,
	}

	s.server = server.NewMCPServer(
		"vidtally",
		version.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.registerTools()
	s.registerResources()

	return s
}

// Serve starts the MCP server over stdio.
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.server)
}

// registerTools adds all vidtally tools to the MCP server.
func (s *Server) registerTools() {
	// Progress ledger
	s.server.AddTool(recordProgressTool(), s.handleRecordProgress)
	s.server.AddTool(getProgressTool(), s.handleGetProgress)
	s.server.AddTool(deleteProgressTool(), s.handleDeleteProgress)
	s.server.AddTool(recentTool(), s.handleRecent)
	s.server.AddTool(resumeTool(), s.handleResume)

	// Usage session
	s.server.AddTool(sessionStartTool(), s.handleSessionStart)
	s.server.AddTool(sessionStopTool(), s.handleSessionStop)
	s.server.AddTool(usageTool(), s.handleUsage)

	// Badges and leaderboard
	s.server.AddTool(badgesTool(), s.handleBadges)
	s.server.AddTool(leaderboardTool(), s.handleLeaderboard)
	s.server.AddTool(syncTool(), s.handleSync)

	s.server.AddTool(statusTool(), s.handleStatus)
}

// registerResources adds all vidtally resources to the MCP server.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(
		mcp.NewResourceTemplate(
			resourcePrefix+"progress/{video_id}",
			"Video progress",
			mcp.WithTemplateDescription("JSON playback position, percentage and completion state for one video"),
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleProgressResource,
	)

	s.server.AddResource(
		mcp.NewResource(
			resourcePrefix+"snapshot",
			"Dashboard snapshot",
			mcp.WithResourceDescription("JSON summary of usage, streaks, badges, recent progress and cached ranking"),
			mcp.WithMIMEType("application/json"),
		),
		s.handleSnapshotResource,
	)
}
