package ranking

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/asteroid-belt/vidtally/internal/metrics"
	"github.com/asteroid-belt/vidtally/internal/models"
)

// Outcome is what a Sync did to the remote store.
type Outcome string

const (
	Inserted  Outcome = "inserted"
	Updated   Outcome = "updated"
	Unchanged Outcome = "unchanged"
	Throttled Outcome = "throttled"
)

// SyncResult describes a completed Sync.
type SyncResult struct {
	Outcome      Outcome
	ClientID     string
	TotalMinutes int
}

// TotalSource provides the local usage total.
type TotalSource interface {
	TotalMinutes() int
}

// IdentitySource provides the stable client ID.
type IdentitySource interface {
	GetOrCreateClientID() (string, error)
}

// Options configures a Synchronizer.
type Options struct {
	// MinSyncInterval throttles remote round trips; zero disables throttling.
	MinSyncInterval time.Duration
	// RequestTimeout bounds each remote call; zero leaves ctx in charge.
	RequestTimeout time.Duration
	Now            func() time.Time
	Logger         zerolog.Logger
}

// Synchronizer pushes the local total to the remote store when it differs
// from the remote value, and caches the ranked list.
type Synchronizer struct {
	remote   RemoteStore
	totals   TotalSource
	identity IdentitySource
	limiter  *rate.Limiter
	timeout  time.Duration
	now      func() time.Time
	logger   zerolog.Logger

	group singleflight.Group

	mu        sync.RWMutex
	cache     []models.RankingRecord
	cachedAt  time.Time
	onWarning []func(error)
	onSynced  []func(SyncResult)
}

// NewSynchronizer creates a Synchronizer. A nil remote makes every call
// return ErrNotConfigured.
func NewSynchronizer(remote RemoteStore, totals TotalSource, identity IdentitySource, opts Options) *Synchronizer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Synchronizer{
		remote:   remote,
		totals:   totals,
		identity: identity,
		timeout:  opts.RequestTimeout,
		now:      opts.Now,
		logger:   opts.Logger,
	}
	if opts.MinSyncInterval > 0 {
		s.limiter = rate.NewLimiter(rate.Every(opts.MinSyncInterval), 1)
	}
	return s
}

// Configured reports whether a remote store is attached.
func (s *Synchronizer) Configured() bool {
	return s.remote != nil
}

// OnWarning registers fn to receive transient sync failures.
func (s *Synchronizer) OnWarning(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onWarning = append(s.onWarning, fn)
}

// OnSynced registers fn to run after every successful remote sync.
func (s *Synchronizer) OnSynced(fn func(SyncResult)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSynced = append(s.onSynced, fn)
}

// Sync reconciles the local total with the remote record. Nothing is written
// when the remote total already matches. Failures are reported to warning
// listeners and returned; local state is never touched.
//
// Concurrent calls share one round trip.
func (s *Synchronizer) Sync(ctx context.Context) (SyncResult, error) {
	if s.remote == nil {
		return SyncResult{}, ErrNotConfigured
	}
	if s.limiter != nil && !s.limiter.Allow() {
		metrics.RankingSyncTotal.WithLabelValues(string(Throttled)).Inc()
		return SyncResult{Outcome: Throttled, TotalMinutes: s.totals.TotalMinutes()}, nil
	}

	v, err, _ := s.group.Do("sync", func() (any, error) {
		return s.sync(ctx)
	})
	if err != nil {
		metrics.RankingSyncTotal.WithLabelValues("failed").Inc()
		s.warn(err)
		return SyncResult{}, err
	}

	res := v.(SyncResult)
	metrics.RankingSyncTotal.WithLabelValues(string(res.Outcome)).Inc()
	s.mu.RLock()
	listeners := slices.Clone(s.onSynced)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(res)
	}
	return res, nil
}

func (s *Synchronizer) sync(ctx context.Context) (SyncResult, error) {
	clientID, err := s.identity.GetOrCreateClientID()
	if err != nil {
		return SyncResult{}, fmt.Errorf("client id: %w", err)
	}
	total := s.totals.TotalMinutes()
	res := SyncResult{ClientID: clientID, TotalMinutes: total}

	rctx, cancel := s.requestContext(ctx)
	existing, found, err := s.remote.SelectByID(rctx, clientID)
	cancel()
	if err != nil {
		return SyncResult{}, fmt.Errorf("fetch remote record: %w", err)
	}

	rec := models.RankingRecord{ClientID: clientID, TotalMinutes: total, LastUpdated: s.now().UTC()}
	switch {
	case !found:
		rctx, cancel := s.requestContext(ctx)
		err = s.remote.Insert(rctx, rec)
		cancel()
		res.Outcome = Inserted
	case existing.TotalMinutes != total:
		rctx, cancel := s.requestContext(ctx)
		err = s.remote.Update(rctx, rec)
		cancel()
		res.Outcome = Updated
	default:
		res.Outcome = Unchanged
	}
	if err != nil {
		return SyncResult{}, fmt.Errorf("%s remote record: %w", verb(res.Outcome), err)
	}

	s.logger.Debug().Str("outcome", string(res.Outcome)).Int("total", total).Msg("ranking synced")

	if _, err := s.refresh(ctx); err != nil {
		s.warn(err)
	}
	return res, nil
}

// FetchRanked loads the ordered ranking from the remote store and caches it.
func (s *Synchronizer) FetchRanked(ctx context.Context) ([]models.RankingRecord, error) {
	if s.remote == nil {
		return nil, ErrNotConfigured
	}
	ranked, err := s.refresh(ctx)
	if err != nil {
		s.warn(err)
		return nil, err
	}
	return ranked, nil
}

func (s *Synchronizer) refresh(ctx context.Context) ([]models.RankingRecord, error) {
	rctx, cancel := s.requestContext(ctx)
	defer cancel()
	ranked, err := s.remote.SelectAllOrderedByTotalDesc(rctx)
	if err != nil {
		return nil, fmt.Errorf("fetch ranking: %w", err)
	}

	s.mu.Lock()
	s.cache = ranked
	s.cachedAt = s.now()
	s.mu.Unlock()
	return slices.Clone(ranked), nil
}

// Cached returns the last fetched ranking and when it was fetched.
func (s *Synchronizer) Cached() ([]models.RankingRecord, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.cache), s.cachedAt
}

// Position returns the 1-based rank of clientID in the cached ranking, or 0
// when it is absent.
func (s *Synchronizer) Position(clientID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, rec := range s.cache {
		if rec.ClientID == clientID {
			return i + 1
		}
	}
	return 0
}

func (s *Synchronizer) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}

func (s *Synchronizer) warn(err error) {
	s.logger.Warn().Err(err).Msg("ranking sync failed")
	s.mu.RLock()
	listeners := slices.Clone(s.onWarning)
	s.mu.RUnlock()
	for _, fn := range listeners {
		fn(err)
	}
}

func verb(o Outcome) string {
	if o == Inserted {
		return "insert"
	}
	return "update"
}
