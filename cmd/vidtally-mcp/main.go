// Package main provides the vidtally-mcp server.
//
// vidtally-mcp exposes the progress ledger, usage timer, badges and the
// leaderboard via the Model Context Protocol, so that an MCP client can
// report playback and read back watch statistics.
//
// Usage:
//
//	vidtally-mcp [flags]
//
// The server communicates via JSON-RPC 2.0 over stdio (stdin/stdout).
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asteroid-belt/vidtally/internal/config"
	"github.com/asteroid-belt/vidtally/internal/db"
	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/log"
	"github.com/asteroid-belt/vidtally/internal/mcp"
	"github.com/asteroid-belt/vidtally/internal/telemetry"
	"github.com/asteroid-belt/vidtally/pkg/version"
)

func main() {
	// Handle --version flag
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("vidtally-mcp %s\n", version.Version)
		os.Exit(0)
	}

	// Handle --help flag
	if len(os.Args) > 1 && (os.Args[1] == "--help" || os.Args[1] == "-h") {
		printHelp()
		os.Exit(0)
	}

	// Setup context with cancellation on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	paths := config.GetPaths(cfg)
	// stdout carries JSON-RPC; keep logs in the file.
	if err := log.InitFileOnly(paths.Logs, cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Close() }()

	// Use persistent tracking ID from database
	database, err := db.New(db.DefaultConfig(paths.Database))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = database.Close()
	}()
	telemetryClient := telemetry.NewWithOptions(database, telemetry.Options{
		Properties: telemetry.BackendProperties(cfg.Store.Backend, cfg.Ranking.Backend),
	})
	defer telemetryClient.Close()

	built, err := engine.Build(ctx, cfg, telemetryClient, log.Base())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open store: %v\n", err)
		os.Exit(1)
	}

	telemetryClient.TrackAppStarted("mcp", built.Ranking.Configured())
	started := time.Now()

	server := mcp.NewServer(built.Engine, telemetryClient)
	serveErr := server.Serve(ctx)

	// A session opened through vidtally_session_start spans the server's
	// lifetime unless the client stopped it.
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := built.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", err)
	}
	telemetryClient.TrackAppExited("mcp", time.Since(started).Milliseconds(), 0)

	if serveErr != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", serveErr)
		os.Exit(1)
	}
}

func printHelp() {
	help := `vidtally-mcp - MCP server for vidtally watch statistics

USAGE:
    vidtally-mcp [FLAGS]

FLAGS:
    -h, --help       Print this help message
    -v, --version    Print version information

DESCRIPTION:
    vidtally-mcp is a Model Context Protocol (MCP) server that records
    video playback progress and reports usage time, badges and the
    leaderboard to MCP-compatible clients.

    The server communicates via JSON-RPC 2.0 over stdio (stdin/stdout).

CONFIGURATION:
    Add to your client's MCP configuration:

    {
      "mcpServers": {
        "vidtally": {
          "type": "stdio",
          "command": "vidtally-mcp"
        }
      }
    }

TOOLS PROVIDED:
    vidtally_record_progress  Record a playback position
    vidtally_get_progress     Get stored progress for a video
    vidtally_delete_progress  Forget stored progress for a video
    vidtally_recent           List recently watched videos
    vidtally_resume           Get the video and position to resume
    vidtally_session_start    Start the usage session
    vidtally_session_stop     Stop the usage session
    vidtally_usage            Get watch-time totals and history
    vidtally_badges           List badges and the daily streak
    vidtally_leaderboard      Get the watch-time leaderboard
    vidtally_sync             Push the local total to the leaderboard
    vidtally_status           Get a compact status summary

RESOURCES PROVIDED:
    vidtally://progress/{video_id}  Video progress as JSON
    vidtally://snapshot             Dashboard snapshot as JSON

MORE INFO:
    https://github.com/asteroid-belt/vidtally
`
	fmt.Print(help)
}
