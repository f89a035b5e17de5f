package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/usage"
)

var usageDays int

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show watch time per day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, "usage", func(ctx context.Context, e *engine.Built) error {
			out := cmd.OutOrStdout()
			daily := e.Timer.Daily()
			summary := usage.Summarize(daily)
			if jsonOutput {
				return printJSON(out, map[string]any{"summary": summary, "daily": daily})
			}

			_, _ = fmt.Fprintf(out, "Total:       %s\n", usage.FormatMinutes(summary.TotalMinutes))
			_, _ = fmt.Fprintf(out, "Today:       %s\n", usage.FormatMinutes(e.Timer.Today()))
			_, _ = fmt.Fprintf(out, "Days:        %d\n", summary.DaysTracked)
			_, _ = fmt.Fprintf(out, "Daily avg:   %.0fm\n", summary.AveragePerDay)
			if summary.BestDay.Minutes > 0 {
				_, _ = fmt.Fprintf(out, "Best day:    %s (%s)\n", summary.BestDay.Date, usage.FormatMinutes(summary.BestDay.Minutes))
			}
			if len(daily) == 0 {
				return nil
			}

			if usageDays > 0 && len(daily) > usageDays {
				daily = daily[len(daily)-usageDays:]
			}
			_, _ = fmt.Fprintln(out)
			for _, d := range daily {
				_, _ = fmt.Fprintf(out, "  %s %6s %s\n", d.Date, usage.FormatMinutes(d.Minutes), bar(d.Minutes, summary.BestDay.Minutes, 30))
			}
			return nil
		})
	},
}

func init() {
	usageCmd.Flags().IntVarP(&usageDays, "days", "d", 14, "Number of most recent days to chart (0 for all)")
}

func bar(value, max, width int) string {
	if max <= 0 || value <= 0 {
		return ""
	}
	n := value * width / max
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}
