package engine

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/asteroid-belt/vidtally/internal/config"
	"github.com/asteroid-belt/vidtally/internal/db"
	"github.com/asteroid-belt/vidtally/internal/kv"
	"github.com/asteroid-belt/vidtally/internal/models"
	"github.com/asteroid-belt/vidtally/internal/notify"
	"github.com/asteroid-belt/vidtally/internal/ranking"
	"github.com/asteroid-belt/vidtally/internal/telemetry"
	"github.com/asteroid-belt/vidtally/pkg/version"
)

// Built is an engine together with the handles hosts need directly.
type Built struct {
	*Engine
	DB *db.DB
}

// Build opens the database, the configured local store, the remote ranking
// backend and the notice sinks, and returns a wired Engine. An unreachable
// remote backend or NATS server is logged and skipped.
func Build(ctx context.Context, cfg *config.Config, tc telemetry.Client, logger zerolog.Logger) (*Built, error) {
	paths := config.GetPaths(cfg)

	database, err := db.New(db.DefaultConfig(paths.Database))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	closers := []io.Closer{database}

	fail := func(err error) (*Built, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
		return nil, err
	}

	store, closer, err := OpenStore(cfg, database, logger)
	if err != nil {
		return fail(err)
	}
	if closer != nil {
		closers = append(closers, closer)
	}

	remote, err := OpenRemote(ctx, cfg.Ranking)
	if err != nil {
		logger.Warn().Err(err).Str("backend", cfg.Ranking.Backend).Msg("ranking backend unavailable, continuing offline")
		remote = nil
	}
	if remote != nil {
		closers = append(closers, remote)
	}

	sinks := notify.Multi{notify.LogSink{Logger: logger.With().Str("component", "notify").Logger()}}
	if cfg.Notify.NATSURL != "" {
		natsSink, err := notify.ConnectNATS(cfg.Notify.NATSURL, cfg.Notify.Subject)
		if err != nil {
			logger.Warn().Err(err).Msg("nats unavailable, notices stay local")
		} else {
			sinks = append(sinks, natsSink)
			closers = append(closers, natsSink)
		}
	}

	checkAppVersion(database, logger)

	e := New(Deps{
		Store:     store,
		Identity:  database,
		Remote:    remote,
		Meta:      database,
		Sink:      sinks,
		Telemetry: tc,
		Progress:  cfg.Progress,
		Ranking:   cfg.Ranking,
		Logger:    logger,
		Closers:   closers,
	})
	return &Built{Engine: e, DB: database}, nil
}

// OpenStore opens the local key-value backend named by cfg.Store.Backend.
// The returned closer is nil when the store shares the database handle.
func OpenStore(cfg *config.Config, database *db.DB, logger zerolog.Logger) (kv.Store, io.Closer, error) {
	paths := config.GetPaths(cfg)
	switch cfg.Store.Backend {
	case "", "sqlite":
		return database, nil, nil
	case "badger":
		s, err := kv.OpenBadgerStore(paths.Badger)
		if err != nil {
			return nil, nil, fmt.Errorf("open badger store: %w", err)
		}
		return s, s, nil
	case "file":
		s, err := kv.OpenFileStore(paths.StateFile, logger.With().Str("component", "kv").Logger())
		if err != nil {
			return nil, nil, fmt.Errorf("open file store: %w", err)
		}
		return s, s, nil
	case "memory":
		s := kv.NewMemoryStore()
		return s, s, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// OpenRemote connects to the ranking backend named by cfg.Backend. It
// returns nil for "none".
func OpenRemote(ctx context.Context, cfg config.RankingConfig) (ranking.RemoteStore, error) {
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "memory":
		return ranking.NewMemoryStore(), nil
	case "postgres":
		return ranking.OpenPostgres(ctx, cfg.PostgresDSN)
	case "redis":
		return ranking.OpenRedis(ctx, ranking.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	default:
		return nil, fmt.Errorf("unknown ranking backend %q", cfg.Backend)
	}
}

// checkAppVersion warns when the database was last opened by a newer build,
// then records the running version.
func checkAppVersion(database *db.DB, logger zerolog.Logger) {
	stored, err := database.GetSyncMeta(models.SyncMetaAppVersion)
	if err != nil {
		logger.Warn().Err(err).Msg("read stored app version failed")
		return
	}
	if stored != "" && version.OlderThan(stored) {
		logger.Warn().
			Str("stored", stored).
			Str("running", version.Version).
			Msg("local data was written by a newer vidtally")
		return
	}
	if version.IsDevBuild() {
		return
	}
	if err := database.SetSyncMeta(models.SyncMetaAppVersion, version.Version); err != nil {
		logger.Warn().Err(err).Msg("record app version failed")
	}
}
