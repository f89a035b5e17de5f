// Vidtally - watch progress, usage time, badges and a leaderboard
//
// A punk-rock themed, offline-first CLI and dashboard that remembers where
// you stopped each video, counts the minutes you spend, awards badges and
// optionally ranks your total against other installations.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/asteroid-belt/vidtally/internal/cli"
	"github.com/asteroid-belt/vidtally/internal/config"
	"github.com/asteroid-belt/vidtally/internal/db"
	"github.com/asteroid-belt/vidtally/internal/telemetry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	// Load config and open database for persistent tracking ID
	cfg, err := config.Load()
	if err != nil {
		os.Exit(1)
	}

	paths := config.GetPaths(cfg)
	database, err := db.New(db.DefaultConfig(paths.Database))
	if err != nil {
		os.Exit(1)
	}
	defer func() {
		_ = database.Close()
	}()

	// Use persistent tracking ID from database
	telemetryClient := telemetry.NewWithOptions(database, telemetry.Options{
		Properties: telemetry.BackendProperties(cfg.Store.Backend, cfg.Ranking.Backend),
	})
	defer telemetryClient.Close()

	if err := cli.Execute(ctx, telemetryClient); err != nil {
		os.Exit(1)
	}
}
