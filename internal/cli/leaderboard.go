package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/models"
	"github.com/asteroid-belt/vidtally/internal/ranking"
	"github.com/asteroid-belt/vidtally/internal/usage"
)

var leaderboardRefresh bool

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the shared watch-time leaderboard",
	Long: `Show the shared watch-time leaderboard.

With --refresh, your total is pushed first and badges are re-checked.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, "leaderboard", func(ctx context.Context, e *engine.Built) error {
			out := cmd.OutOrStdout()
			if !e.Ranking.Configured() {
				_, _ = fmt.Fprintln(out, "Leaderboard is not configured (set ranking.backend in config.yaml).")
				return nil
			}

			var ranked []models.RankingRecord
			var err error
			if leaderboardRefresh {
				ranked, err = e.Refresh(ctx)
			} else {
				ranked, err = e.Ranking.FetchRanked(ctx)
			}
			// Sync failures are already shown as warnings; fall back to the cache.
			if err != nil && len(ranked) == 0 && !errors.Is(err, ranking.ErrNotConfigured) {
				return err
			}

			clientID, err := e.ClientID()
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(out, map[string]any{
					"client_id": clientID,
					"position":  e.Ranking.Position(clientID),
					"ranked":    ranked,
				})
			}
			printLeaderboard(cmd, ranked, clientID)
			return nil
		})
	},
}

func init() {
	leaderboardCmd.Flags().BoolVarP(&leaderboardRefresh, "refresh", "r", false, "Push your total before fetching")
}

func printLeaderboard(cmd *cobra.Command, ranked []models.RankingRecord, clientID string) {
	out := cmd.OutOrStdout()
	if len(ranked) == 0 {
		_, _ = fmt.Fprintln(out, "Nobody on the leaderboard yet.")
		return
	}
	_, _ = fmt.Fprintf(out, "LEADERBOARD (%d viewers)\n", len(ranked))
	_, _ = fmt.Fprintln(out, "──────────────────────────────────────────────────")
	for i, rec := range ranked {
		you := ""
		if rec.ClientID == clientID {
			you = "  ← you"
		}
		_, _ = fmt.Fprintf(out, "  %3d. %-10s %8s%s\n", i+1, shortID(rec.ClientID), usage.FormatMinutes(rec.TotalMinutes), you)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
