package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/asteroid-belt/vidtally/internal/config"
	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/log"
	"github.com/asteroid-belt/vidtally/internal/telemetry"
	"github.com/asteroid-belt/vidtally/internal/tui"
	"github.com/asteroid-belt/vidtally/internal/tui/design"
	"github.com/asteroid-belt/vidtally/internal/tui/theme"
	"github.com/asteroid-belt/vidtally/pkg/version"
)

var (
	themeName    string
	noBanner     bool
	tuiStartTime time.Time
)

func init() {
	rootCmd.Flags().StringVar(&themeName, "theme", "punk",
		"Dashboard color theme ("+strings.Join(theme.Names(), ", ")+")")
	rootCmd.Flags().BoolVar(&noBanner, "no-banner", false, "Skip the startup banner")
}

// runTUI executes the TUI when no subcommand is specified.
func runTUI(cmd *cobra.Command, args []string) error {
	if !theme.Use(themeName) {
		return trackCLIError("tui", fmt.Errorf("invalid theme %q: choose one of %s",
			themeName, strings.Join(theme.Names(), ", ")))
	}

	cfg, err := config.Load()
	if err != nil {
		return trackCLIError("tui", fmt.Errorf("load config: %w", err))
	}

	paths := config.GetPaths(cfg)
	if err := log.InitFileOnly(paths.Logs, cfg.Log.Level); err != nil {
		return trackCLIError("tui", fmt.Errorf("initialize logger: %w", err))
	}
	defer func() { _ = log.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	out := cmd.OutOrStdout()
	if !noBanner {
		printBanner(out)
		printStartupInfo(out, cfg, paths)
	}

	built, err := engine.Build(ctx, cfg, telemetryClient, log.Base())
	if err != nil {
		return trackCLIError("tui", fmt.Errorf("initialize store: %w", err))
	}

	tuiStartTime = time.Now()
	telemetryClient.TrackAppStarted("tui", built.Ranking.Configured())

	runErr := tui.Run(ctx, built.Engine, telemetryClient, tui.Options{
		Logger: log.WithComponent("tui"),
	})

	// The dashboard is the host; leaving it ends the usage session.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	shutdownErr := built.Shutdown(shutdownCtx)
	printNotices(out, built.Notices())

	if err := errors.Join(runErr, shutdownErr); err != nil {
		return trackCLIError("tui", err)
	}
	return nil
}

func printBanner(w io.Writer) {
	logo := lipgloss.NewStyle().Foreground(lipgloss.Color(design.LogoColorPrimary)).Render(design.VidtallyLogo)
	tagline := lipgloss.NewStyle().Foreground(lipgloss.Color(design.LogoColorAccent)).Render("   " + design.Tagline)
	_, _ = fmt.Fprintln(w, logo)
	_, _ = fmt.Fprintln(w, tagline)
	_, _ = fmt.Fprintf(w, "   Version: %s\n", version.Short())
}

func printStartupInfo(w io.Writer, cfg *config.Config, paths config.Paths) {
	_, _ = fmt.Fprintf(w, "\n📁 Base directory: %s\n", cfg.BaseDir)
	_, _ = fmt.Fprintf(w, "💾 Store: %s\n", cfg.Store.Backend)
	_, _ = fmt.Fprintf(w, "📁 Log file: %s\n", paths.Logs)

	if cfg.Ranking.Backend == "" || cfg.Ranking.Backend == "none" {
		_, _ = fmt.Fprintln(w, "🏁 Leaderboard: off (set ranking.backend to postgres or redis)")
	} else {
		_, _ = fmt.Fprintf(w, "🏁 Leaderboard: %s\n", cfg.Ranking.Backend)
	}

	if telemetry.IsEnabled() {
		_, _ = fmt.Fprintln(w, "📊 Telemetry: ON (set VIDTALLY_TELEMETRY_TRACKING_ENABLED=false to disable)")
	} else {
		_, _ = fmt.Fprintln(w, "📊 Telemetry: OFF")
	}
}
