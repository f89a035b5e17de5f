// Package engine wires the progress ledger, usage timer, achievement engine
// and ranking synchronizer over one durable store, and exposes the host
// lifecycle hooks that drive them.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/asteroid-belt/vidtally/internal/achievements"
	"github.com/asteroid-belt/vidtally/internal/config"
	"github.com/asteroid-belt/vidtally/internal/kv"
	"github.com/asteroid-belt/vidtally/internal/models"
	"github.com/asteroid-belt/vidtally/internal/notify"
	"github.com/asteroid-belt/vidtally/internal/playback"
	"github.com/asteroid-belt/vidtally/internal/progress"
	"github.com/asteroid-belt/vidtally/internal/ranking"
	"github.com/asteroid-belt/vidtally/internal/telemetry"
	"github.com/asteroid-belt/vidtally/internal/usage"
)

// MetaStore persists bookkeeping values such as the last sync time.
type MetaStore interface {
	GetSyncMeta(key string) (string, error)
	SetSyncMeta(key, value string) error
}

// Deps are the collaborators an Engine is built from.
type Deps struct {
	Store    kv.Store
	Identity ranking.IdentitySource
	// Remote is nil when no ranking backend is configured.
	Remote    ranking.RemoteStore
	Meta      MetaStore
	Sink      notify.Sink
	Telemetry telemetry.Client

	Progress config.ProgressConfig
	Ranking  config.RankingConfig

	Now    func() time.Time
	Logger zerolog.Logger

	// Closers run in reverse order on Close.
	Closers []io.Closer
}

// Engine owns the four state components and the triggers between them.
type Engine struct {
	Ledger       *progress.Ledger
	Timer        *usage.Timer
	Achievements *achievements.Engine
	Ranking      *ranking.Synchronizer

	identity  ranking.IdentitySource
	meta      MetaStore
	sink      notify.Sink
	notices   *notify.Buffer
	telemetry telemetry.Client
	progress  config.ProgressConfig
	now       func() time.Time
	logger    zerolog.Logger
	closers   []io.Closer

	syncs     sync.WaitGroup
	closeOnce sync.Once
}

// New builds an Engine from deps and registers the cross-component triggers.
func New(deps Deps) *Engine {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Telemetry == nil {
		deps.Telemetry = telemetry.Noop()
	}
	buffer := notify.NewBuffer(20)
	sink := notify.Multi{buffer}
	if deps.Sink != nil {
		sink = append(sink, deps.Sink)
	}

	logger := deps.Logger
	e := &Engine{
		Ledger: progress.New(deps.Store, progress.Options{
			CompletionThreshold: deps.Progress.CompletionThreshold,
			Now:                 deps.Now,
			Logger:              logger.With().Str("component", "progress").Logger(),
		}),
		Timer: usage.New(deps.Store, usage.Options{
			Now:    deps.Now,
			Logger: logger.With().Str("component", "usage").Logger(),
		}),
		Achievements: achievements.New(deps.Store, achievements.Options{
			Now:    deps.Now,
			Logger: logger.With().Str("component", "achievements").Logger(),
		}),
		identity:  deps.Identity,
		meta:      deps.Meta,
		sink:      sink,
		notices:   buffer,
		telemetry: deps.Telemetry,
		progress:  deps.Progress,
		now:       deps.Now,
		logger:    logger,
		closers:   deps.Closers,
	}

	e.Ranking = ranking.NewSynchronizer(deps.Remote, e.Timer, deps.Identity, ranking.Options{
		MinSyncInterval: deps.Ranking.MinSyncInterval,
		RequestTimeout:  deps.Ranking.RequestTimeout,
		Now:             deps.Now,
		Logger:          logger.With().Str("component", "ranking").Logger(),
	})

	e.wire()
	return e
}

func (e *Engine) wire() {
	e.Ledger.OnComplete(func(completed int) {
		e.telemetry.TrackItemCompleted(completed)
		if _, err := e.Achievements.CheckVideoCompletionBadges(completed); err != nil {
			e.logger.Error().Err(err).Msg("completion badge check failed")
		}
	})

	e.Timer.OnStop(func(total int) {
		if _, err := e.Achievements.CheckTimeBadges(total); err != nil {
			e.logger.Error().Err(err).Msg("time badge check failed")
		}
		e.syncAsync()
	})

	e.Achievements.OnEarn(func(a models.Achievement) {
		rule, _ := achievements.RuleFor(a.ID)
		e.telemetry.TrackBadgeEarned(string(a.ID), string(rule.Signal))
		e.publish(notify.Notice{
			Kind:    notify.KindAchievement,
			Title:   "Badge earned: " + a.Name,
			Message: a.Description,
		})
	})

	e.Ranking.OnWarning(func(err error) {
		e.publish(notify.Notice{
			Kind:    notify.KindWarning,
			Title:   "Leaderboard sync failed",
			Message: err.Error(),
		})
	})

	e.Ranking.OnSynced(func(res ranking.SyncResult) {
		e.telemetry.TrackRankingSynced(string(res.Outcome))
		if e.meta == nil {
			return
		}
		if err := e.meta.SetSyncMeta(models.SyncMetaLastSync, e.now().UTC().Format(time.RFC3339)); err != nil {
			e.logger.Warn().Err(err).Msg("record last sync failed")
		}
	})
}

func (e *Engine) publish(n notify.Notice) {
	if n.At.IsZero() {
		n.At = e.now()
	}
	if err := e.sink.Publish(context.Background(), n); err != nil {
		e.logger.Warn().Err(err).Str("title", n.Title).Msg("notice delivery failed")
	}
}

// syncAsync pushes the usage total on a background goroutine. Close waits
// for it.
func (e *Engine) syncAsync() {
	if !e.Ranking.Configured() {
		return
	}
	e.syncs.Add(1)
	go func() {
		defer e.syncs.Done()
		// Failures are already reported as warnings.
		_, _ = e.Ranking.Sync(context.Background())
	}()
}

// Open handles the host becoming active for the first time in a process:
// it records today's app open and starts the usage timer.
func (e *Engine) Open(ctx context.Context) error {
	if _, err := e.Achievements.RecordAppOpen(); err != nil {
		return fmt.Errorf("record app open: %w", err)
	}
	return e.Foreground(ctx)
}

// Foreground starts the usage timer. It is a no-op while a session is open.
func (e *Engine) Foreground(_ context.Context) error {
	if _, err := e.Timer.Start(); err != nil {
		return fmt.Errorf("start usage timer: %w", err)
	}
	return nil
}

// Background stops the usage timer, which triggers time badges and a
// ranking sync when minutes were recorded.
func (e *Engine) Background(_ context.Context) (usage.StopResult, error) {
	res, err := e.Timer.Stop()
	if err != nil {
		return usage.StopResult{}, fmt.Errorf("stop usage timer: %w", err)
	}
	if res.Recorded() {
		e.telemetry.TrackUsageRecorded(res.Minutes, res.TotalMinutes)
	}
	return res, nil
}

// Refresh syncs the ranking now, then re-checks time and completion badges.
// A sync failure is returned after the badge checks still run.
func (e *Engine) Refresh(ctx context.Context) ([]models.RankingRecord, error) {
	var syncErr error
	if e.Ranking.Configured() {
		_, syncErr = e.Ranking.Sync(ctx)
	} else {
		syncErr = ranking.ErrNotConfigured
	}

	_, timeErr := e.Achievements.CheckTimeBadges(e.Timer.TotalMinutes())
	_, doneErr := e.Achievements.CheckVideoCompletionBadges(e.Ledger.CompletedCount())

	ranked, _ := e.Ranking.Cached()
	return ranked, errors.Join(syncErr, timeErr, doneErr)
}

// NewTracker returns a playback tracker recording into the ledger with the
// configured cadences.
func (e *Engine) NewTracker(sched playback.Scheduler) *playback.Tracker {
	return playback.NewTracker(e.Ledger, playback.Options{
		SampleInterval: e.progress.SampleInterval,
		FlushDebounce:  e.progress.FlushDebounce,
		Scheduler:      sched,
		Logger:         e.logger.With().Str("component", "playback").Logger(),
	})
}

// RecentLimit is the configured length of recent-progress lists.
func (e *Engine) RecentLimit() int {
	return e.progress.RecentLimit
}

// Notices drains notices published since the last call.
func (e *Engine) Notices() []notify.Notice {
	return e.notices.Drain()
}

// ClientID returns the installation's ranking client ID.
func (e *Engine) ClientID() (string, error) {
	if e.identity == nil {
		return "", errors.New("no identity source")
	}
	return e.identity.GetOrCreateClientID()
}

// Wait blocks until background syncs finish.
func (e *Engine) Wait() {
	e.syncs.Wait()
}

// Shutdown ends the usage session, then closes the engine.
func (e *Engine) Shutdown(ctx context.Context) error {
	_, stopErr := e.Background(ctx)
	return errors.Join(stopErr, e.Close())
}

// Close waits for in-flight syncs and releases the store and remote
// connections. The usage timer is left as is so that a session can span
// processes; hosts that end the session call Background first.
func (e *Engine) Close() error {
	var errs []error
	e.closeOnce.Do(func() {
		e.syncs.Wait()
		for i := len(e.closers) - 1; i >= 0; i-- {
			if err := e.closers[i].Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
