// Package cli provides the command-line interface for vidtally.
package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"github.com/asteroid-belt/vidtally/internal/telemetry"
	"github.com/asteroid-belt/vidtally/pkg/version"
)

var telemetryClient telemetry.Client = telemetry.Noop()

var commandStartTime time.Time

var rootCmd = &cobra.Command{
	Use:   "vidtally",
	Short: "Watch progress, usage time and badges for your video playlists",
	Long: `Watch progress, usage time and badges for your video playlists

Tracks how far you got in every video, how long you watch each day,
unlocks badges as you go and keeps your total on a shared leaderboard.

Run without arguments to launch the interactive dashboard.

Telemetry:
  Telemetry is enabled by default, always anonymous, and will never track
  video IDs, playlists or IP addresses.

  Opt-out with:
  	VIDTALLY_TELEMETRY_TRACKING_ENABLED=false`,
	SilenceUsage: true,
	RunE:         runTUI,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		commandStartTime = time.Now()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if cmd.Name() != "vidtally" {
			durationMs := time.Since(commandStartTime).Milliseconds()
			hasFlags := cmd.Flags().NFlag() > 0
			telemetryClient.TrackCLICommandExecuted(cmd.CommandPath(), hasFlags, durationMs)
		}
	},
}

var jsonOutput bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print machine-readable JSON")

	rootCmd.AddCommand(openCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(timerCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(badgesCmd)
	rootCmd.AddCommand(usageCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the CLI with fang enhancements.
func Execute(ctx context.Context, tc telemetry.Client) error {
	if tc == nil {
		tc = telemetry.New(nil)
	}
	telemetryClient = tc

	err := fang.Execute(
		ctx,
		rootCmd,
		fang.WithVersion(version.Short()),
		fang.WithCommit(version.Commit),
	)

	// Track app exit for CLI mode (non-TUI subcommands)
	if rootCmd.CalledAs() != "" && rootCmd.CalledAs() != "vidtally" {
		durationMs := time.Since(commandStartTime).Milliseconds()
		telemetryClient.TrackAppExited("cli", durationMs, 1)
	}

	return err
}
