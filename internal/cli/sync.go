package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/ranking"
	"github.com/asteroid-belt/vidtally/internal/usage"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push your watch-time total to the leaderboard",
	Long: `Push your watch-time total to the leaderboard.

Nothing is sent when the leaderboard already has your current total.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, "sync", func(ctx context.Context, e *engine.Built) error {
			res, err := e.Ranking.Sync(ctx)
			if err != nil {
				return fmt.Errorf("sync ranking: %w", err)
			}
			out := cmd.OutOrStdout()
			if jsonOutput {
				return printJSON(out, res)
			}
			switch res.Outcome {
			case ranking.Inserted:
				_, _ = fmt.Fprintf(out, "✓ Joined the leaderboard with %s\n", usage.FormatMinutes(res.TotalMinutes))
			case ranking.Updated:
				_, _ = fmt.Fprintf(out, "✓ Leaderboard updated to %s\n", usage.FormatMinutes(res.TotalMinutes))
			case ranking.Unchanged:
				_, _ = fmt.Fprintln(out, "Leaderboard already up to date")
			case ranking.Throttled:
				_, _ = fmt.Fprintln(out, "Synced recently, try again later")
			}
			if pos := e.Ranking.Position(res.ClientID); pos > 0 {
				_, _ = fmt.Fprintf(out, "  Position: #%d\n", pos)
			}
			return nil
		})
	},
}
