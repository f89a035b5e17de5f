package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/vidtally/internal/config"
	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/log"
	"github.com/asteroid-belt/vidtally/internal/notify"
)

// withEngine loads configuration, builds the engine, runs fn and closes the
// engine, waiting for background syncs. Notices raised while fn ran are
// printed afterwards.
func withEngine(cmd *cobra.Command, name string, fn func(ctx context.Context, e *engine.Built) error) error {
	cfg, err := config.Load()
	if err != nil {
		return trackCLIError(name, fmt.Errorf("load config: %w", err))
	}

	paths := config.GetPaths(cfg)
	if err := log.Init(paths.Logs, cfg.Log.Level); err != nil {
		return trackCLIError(name, fmt.Errorf("initialize logger: %w", err))
	}
	defer func() { _ = log.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	e, err := engine.Build(ctx, cfg, telemetryClient, log.Base())
	if err != nil {
		return trackCLIError(name, fmt.Errorf("initialize store: %w", err))
	}

	runErr := fn(ctx, e)
	closeErr := e.Close()
	printNotices(cmd.OutOrStdout(), e.Notices())

	if runErr != nil {
		return trackCLIError(name, runErr)
	}
	if closeErr != nil {
		return trackCLIError(name, fmt.Errorf("close store: %w", closeErr))
	}
	return nil
}

func printNotices(w io.Writer, notices []notify.Notice) {
	if jsonOutput {
		return
	}
	for _, n := range notices {
		icon := "🏆"
		if n.Kind == notify.KindWarning {
			icon = "⚠️ "
		}
		_, _ = fmt.Fprintf(w, "%s %s\n", icon, n.Title)
		if n.Message != "" {
			_, _ = fmt.Fprintf(w, "   %s\n", n.Message)
		}
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
