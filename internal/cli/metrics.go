package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/metrics"
)

var metricsCmd = &cobra.Command{
	Use:    "metrics",
	Short:  "Print engine counters in Prometheus text format",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withEngine(cmd, "metrics", func(ctx context.Context, e *engine.Built) error {
			// Reading state surfaces corrupt-value counters.
			if _, err := e.Snapshot(ctx); err != nil {
				return err
			}
			return metrics.WriteText(cmd.OutOrStdout())
		})
	},
}
