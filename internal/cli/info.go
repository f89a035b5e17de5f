package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/asteroid-belt/vidtally/internal/config"
	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/models"
	"github.com/asteroid-belt/vidtally/internal/telemetry"
	"github.com/asteroid-belt/vidtally/pkg/version"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show where vidtally keeps its data and how it is configured",
	Long: `Display the data directory, storage backends, installation IDs and
bookkeeping such as the last leaderboard sync.`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

// installInfo is the payload of 'vidtally info --json'.
type installInfo struct {
	Version         string `json:"version"`
	BaseDir         string `json:"base_dir"`
	Database        string `json:"database"`
	Logs            string `json:"logs"`
	StoreBackend    string `json:"store_backend"`
	RankingBackend  string `json:"ranking_backend"`
	RankingEnabled  bool   `json:"ranking_enabled"`
	ClientID        string `json:"client_id"`
	TrackingID      string `json:"tracking_id,omitempty"`
	Telemetry       bool   `json:"telemetry"`
	SchemaVersion   string `json:"schema_version"`
	LastAppVersion  string `json:"last_app_version"`
	LastRankingSync string `json:"last_ranking_sync"`
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return trackCLIError("info", fmt.Errorf("load config: %w", err))
	}
	paths := config.GetPaths(cfg)

	return withEngine(cmd, "info", func(ctx context.Context, e *engine.Built) error {
		clientID, err := e.ClientID()
		if err != nil {
			return fmt.Errorf("read client id: %w", err)
		}

		info := installInfo{
			Version:        version.Short(),
			BaseDir:        cfg.BaseDir,
			Database:       paths.Database,
			Logs:           paths.Logs,
			StoreBackend:   cfg.Store.Backend,
			RankingBackend: cfg.Ranking.Backend,
			RankingEnabled: e.Ranking.Configured(),
			ClientID:       clientID,
			Telemetry:      telemetry.IsEnabled(),
		}
		if info.Telemetry {
			info.TrackingID = e.DB.GetOrCreateTrackingID()
		}
		info.SchemaVersion, _ = e.DB.GetSyncMeta(models.SyncMetaSchemaVersion)
		info.LastAppVersion, _ = e.DB.GetSyncMeta(models.SyncMetaAppVersion)
		info.LastRankingSync, _ = e.DB.GetSyncMeta(models.SyncMetaLastSync)

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), info)
		}

		out := cmd.OutOrStdout()
		row := func(label, value string) {
			if value == "" {
				value = "-"
			}
			_, _ = fmt.Fprintf(out, "%-18s %s\n", label+":", value)
		}
		row("Version", info.Version)
		row("Base directory", info.BaseDir)
		row("Database", info.Database)
		row("Logs", info.Logs)
		row("Store", info.StoreBackend)
		row("Leaderboard", info.RankingBackend)
		row("Client ID", info.ClientID)
		if info.Telemetry {
			row("Telemetry", "on ("+info.TrackingID+")")
		} else {
			row("Telemetry", "off")
		}
		row("Schema version", info.SchemaVersion)
		row("Last app version", info.LastAppVersion)
		row("Last ranking sync", info.LastRankingSync)
		return nil
	})
}
