package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/vidtally/internal/engine"
)

var badgesCmd = &cobra.Command{
	Use:     "badges",
	Aliases: []string{"achievements"},
	Short:   "List badges and which ones you have earned",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, "badges", func(ctx context.Context, e *engine.Built) error {
			out := cmd.OutOrStdout()
			list := e.Achievements.List()
			if jsonOutput {
				return printJSON(out, list)
			}

			_, _ = fmt.Fprintf(out, "BADGES (%d/%d earned)\n", e.Achievements.EarnedCount(), len(list))
			_, _ = fmt.Fprintln(out, "──────────────────────────────────────────────────")
			for _, a := range list {
				mark := "○"
				when := ""
				if a.Earned {
					mark = "●"
					if a.EarnedAt != nil {
						when = "  " + a.EarnedAt.Local().Format("2006-01-02")
					}
				}
				_, _ = fmt.Fprintf(out, "  %s %-20s %s%s\n", mark, a.Name, a.Description, when)
			}
			_, _ = fmt.Fprintf(out, "\nCurrent streak: %d day(s)\n", e.Achievements.ConsecutiveDays())
			return nil
		})
	},
}
