package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/progress"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Record and inspect per-video watch progress",
	Long: `Record and inspect per-video watch progress.

Subcommands:
  record <video-id> <seconds> <duration>  Store a playback position
  show <video-id>                         Show stored progress
  delete <video-id>                       Forget stored progress
  resume                                  Show the last watched video
  recent                                  List recently watched videos`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var progressContainer string
var recentLimit int

var progressRecordCmd = &cobra.Command{
	Use:   "record <video-id> <seconds> <duration>",
	Short: "Store a playback position",
	Long: `Store a playback position for a video.

A video counts as finished once the position reaches 95% of its duration.`,
	Args: cobra.ExactArgs(3),
	RunE: runProgressRecord,
}

var progressShowCmd = &cobra.Command{
	Use:   "show <video-id>",
	Short: "Show stored progress for a video",
	Args:  cobra.ExactArgs(1),
	RunE:  runProgressShow,
}

var progressDeleteCmd = &cobra.Command{
	Use:   "delete <video-id>",
	Short: "Forget stored progress for a video",
	Long:  `Forget stored progress for a video. Finished videos stay counted.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runProgressDelete,
}

var progressResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Show the last watched video and where to resume",
	Args:  cobra.NoArgs,
	RunE:  runProgressResume,
}

var progressRecentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List recently watched videos",
	Args:  cobra.NoArgs,
	RunE:  runProgressRecent,
}

func init() {
	progressRecordCmd.Flags().StringVarP(&progressContainer, "playlist", "p", "", "Playlist the video is watched from")
	progressRecentCmd.Flags().IntVarP(&recentLimit, "limit", "n", 0, "Number of videos to list (default from config)")

	progressCmd.AddCommand(progressRecordCmd)
	progressCmd.AddCommand(progressShowCmd)
	progressCmd.AddCommand(progressDeleteCmd)
	progressCmd.AddCommand(progressResumeCmd)
	progressCmd.AddCommand(progressRecentCmd)
}

func runProgressRecord(cmd *cobra.Command, args []string) error {
	itemID := args[0]
	seconds, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return trackCLIError("progress record", fmt.Errorf("invalid seconds %q: %w", args[1], err))
	}
	duration, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return trackCLIError("progress record", fmt.Errorf("invalid duration %q: %w", args[2], err))
	}

	return withEngine(cmd, "progress record", func(ctx context.Context, e *engine.Built) error {
		out := cmd.OutOrStdout()
		if !progress.IsValidItemID(itemID) {
			_, _ = fmt.Fprintf(out, "Note: %q does not look like an 11-character video ID\n", itemID)
		}

		res, err := e.Ledger.RecordSample(itemID, progressContainer, seconds, duration)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out, res)
		}
		if !res.Recorded {
			_, _ = fmt.Fprintln(out, "Sample ignored: duration must be positive and position non-negative")
			return nil
		}
		_, _ = fmt.Fprintln(out, progress.FormatProgress(e.Ledger.ReadProgress(itemID)))
		if res.NewlyCompleted {
			_, _ = fmt.Fprintf(out, "✓ Finished (%d videos completed)\n", res.CompletedCount)
		}
		return nil
	})
}

func runProgressShow(cmd *cobra.Command, args []string) error {
	itemID := args[0]
	return withEngine(cmd, "progress show", func(ctx context.Context, e *engine.Built) error {
		out := cmd.OutOrStdout()
		rec := e.Ledger.ReadProgress(itemID)
		if jsonOutput {
			return printJSON(out, map[string]any{
				"progress":  rec,
				"percent":   progress.Percent(rec),
				"completed": e.Ledger.IsCompleted(itemID),
			})
		}
		if !e.Ledger.HasProgress(itemID) {
			_, _ = fmt.Fprintf(out, "No progress stored for %s\n", itemID)
			return nil
		}
		_, _ = fmt.Fprintf(out, "%s\n", itemID)
		_, _ = fmt.Fprintf(out, "  %s\n", progress.FormatProgress(rec))
		if rec.ContainerID != "" {
			_, _ = fmt.Fprintf(out, "  Playlist: %s\n", rec.ContainerID)
		}
		_, _ = fmt.Fprintf(out, "  Updated: %s\n", formatTimeSince(rec.LastUpdated))
		if e.Ledger.IsCompleted(itemID) {
			_, _ = fmt.Fprintln(out, "  ✓ Finished")
		}
		return nil
	})
}

func runProgressDelete(cmd *cobra.Command, args []string) error {
	itemID := args[0]
	return withEngine(cmd, "progress delete", func(ctx context.Context, e *engine.Built) error {
		if err := e.Ledger.DeleteProgress(itemID); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Progress for %s deleted\n", itemID)
		return nil
	})
}

func runProgressResume(cmd *cobra.Command, args []string) error {
	return withEngine(cmd, "progress resume", func(ctx context.Context, e *engine.Built) error {
		out := cmd.OutOrStdout()
		lw, ok := e.Ledger.LastWatched()
		if jsonOutput {
			if !ok {
				return printJSON(out, nil)
			}
			return printJSON(out, lw)
		}
		if !ok {
			_, _ = fmt.Fprintln(out, "Nothing watched yet.")
			return nil
		}
		_, _ = fmt.Fprintf(out, "Continue %s at %s\n", lw.ItemID, progress.FormatClock(lw.SecondsWatched))
		if lw.ContainerID != "" {
			_, _ = fmt.Fprintf(out, "  Playlist: %s\n", lw.ContainerID)
		}
		return nil
	})
}

func runProgressRecent(cmd *cobra.Command, args []string) error {
	return withEngine(cmd, "progress recent", func(ctx context.Context, e *engine.Built) error {
		out := cmd.OutOrStdout()
		limit := recentLimit
		if limit <= 0 {
			limit = e.RecentLimit()
		}
		recent, err := e.Ledger.Recent(limit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(out, recent)
		}
		if len(recent) == 0 {
			_, _ = fmt.Fprintln(out, "No videos watched yet.")
			return nil
		}
		_, _ = fmt.Fprintf(out, "RECENT (%d videos)\n", len(recent))
		_, _ = fmt.Fprintln(out, "──────────────────────────────────────────────────")
		for _, rec := range recent {
			mark := " "
			if e.Ledger.IsCompleted(rec.ItemID) {
				mark = "✓"
			}
			_, _ = fmt.Fprintf(out, "  %s %s  %3.0f%%  %s\n", mark, rec.ItemID, progress.Percent(rec), formatTimeSince(rec.LastUpdated))
		}
		return nil
	})
}
