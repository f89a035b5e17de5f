package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/usage"
)

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Mark the app as active and start the usage timer",
	Long: `Mark the app as active: records today's open for streak badges and
starts the usage timer. Running it again while a session is open does nothing.

The session stays open across invocations until 'vidtally close'.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, "open", func(ctx context.Context, e *engine.Built) error {
			wasRunning := e.Timer.State() == usage.Running
			if err := e.Open(ctx); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if wasRunning {
				start, _ := e.Timer.SessionStart()
				_, _ = fmt.Fprintf(out, "Session already running since %s\n", start.Local().Format(time.Kitchen))
				return nil
			}
			_, _ = fmt.Fprintln(out, "▶ Session started")
			_, _ = fmt.Fprintf(out, "  Streak: %d day(s)\n", e.Achievements.ConsecutiveDays())
			showResumeHint(e.Engine, out)
			return nil
		})
	},
}

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Mark the app as inactive and record the session",
	Long: `Stop the usage timer and add the session to today's total.

Sessions shorter than one minute are discarded. Recording minutes
re-checks time badges and pushes the new total to the leaderboard.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, "close", func(ctx context.Context, e *engine.Built) error {
			res, err := e.Background(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case !res.WasRunning:
				_, _ = fmt.Fprintln(out, "No session running.")
			case !res.Recorded():
				_, _ = fmt.Fprintln(out, "■ Session under a minute, not recorded")
			default:
				_, _ = fmt.Fprintf(out, "■ Recorded %s (total %s)\n",
					usage.FormatMinutes(res.Minutes), usage.FormatMinutes(res.TotalMinutes))
			}
			return nil
		})
	},
}

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Show the usage timer state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, "timer", func(ctx context.Context, e *engine.Built) error {
			out := cmd.OutOrStdout()
			start, running := e.Timer.SessionStart()
			if jsonOutput {
				payload := map[string]any{"state": e.Timer.State(), "today_minutes": e.Timer.Today()}
				if running {
					payload["session_start"] = start
				}
				return printJSON(out, payload)
			}
			if !running {
				_, _ = fmt.Fprintln(out, "Timer: idle")
			} else {
				_, _ = fmt.Fprintf(out, "Timer: running for %s (since %s)\n",
					time.Since(start).Truncate(time.Second), start.Local().Format(time.Kitchen))
			}
			_, _ = fmt.Fprintf(out, "Today: %s\n", usage.FormatMinutes(e.Timer.Today()))
			return nil
		})
	},
}
