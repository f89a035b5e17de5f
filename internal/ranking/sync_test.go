package ranking

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/vidtally/internal/models"
)

type staticTotal struct {
	minutes atomic.Int64
}

func (s *staticTotal) TotalMinutes() int { return int(s.minutes.Load()) }

type staticIdentity string

func (s staticIdentity) GetOrCreateClientID() (string, error) { return string(s), nil }

type failingIdentity struct{}

func (failingIdentity) GetOrCreateClientID() (string, error) { return "", errors.New("db locked") }

func newTestSync(t *testing.T, minutes int) (*Synchronizer, *MemoryStore, *staticTotal) {
	t.Helper()
	remote := NewMemoryStore()
	totals := &staticTotal{}
	totals.minutes.Store(int64(minutes))
	return NewSynchronizer(remote, totals, staticIdentity("client-a"), Options{}), remote, totals
}

func TestSync_InsertThenUnchanged(t *testing.T) {
	s, remote, _ := newTestSync(t, 42)
	ctx := context.Background()

	res, err := s.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, Inserted, res.Outcome)
	assert.Equal(t, 1, remote.Writes())

	res, err = s.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, Unchanged, res.Outcome)
	assert.Equal(t, 1, remote.Writes(), "unchanged total must not write")
}

func TestSync_UpdatesWhenTotalChanges(t *testing.T) {
	s, remote, totals := newTestSync(t, 10)
	ctx := context.Background()

	_, err := s.Sync(ctx)
	require.NoError(t, err)

	totals.minutes.Store(25)
	res, err := s.Sync(ctx)
	require.NoError(t, err)
	assert.Equal(t, Updated, res.Outcome)

	rec, found, err := remote.SelectByID(ctx, "client-a")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 25, rec.TotalMinutes)
}

func TestSync_RefreshesCache(t *testing.T) {
	s, remote, _ := newTestSync(t, 30)
	ctx := context.Background()
	require.NoError(t, remote.Insert(ctx, models.RankingRecord{ClientID: "client-b", TotalMinutes: 90}))
	require.NoError(t, remote.Insert(ctx, models.RankingRecord{ClientID: "client-c", TotalMinutes: 5}))

	_, err := s.Sync(ctx)
	require.NoError(t, err)

	cached, at := s.Cached()
	require.Len(t, cached, 3)
	assert.False(t, at.IsZero())
	assert.Equal(t, "client-b", cached[0].ClientID)
	assert.Equal(t, 2, s.Position("client-a"))
	assert.Equal(t, 0, s.Position("nobody"))
}

func TestSync_FailureWarnsAndKeepsCache(t *testing.T) {
	s, remote, _ := newTestSync(t, 30)
	ctx := context.Background()

	_, err := s.Sync(ctx)
	require.NoError(t, err)
	before, _ := s.Cached()

	var warnings []error
	s.OnWarning(func(err error) { warnings = append(warnings, err) })

	remote.Err = errors.New("network unreachable")
	_, err = s.Sync(ctx)
	require.Error(t, err)
	assert.Len(t, warnings, 1)

	after, _ := s.Cached()
	assert.Equal(t, before, after)
}

func TestSync_IdentityFailure(t *testing.T) {
	s := NewSynchronizer(NewMemoryStore(), &staticTotal{}, failingIdentity{}, Options{})

	_, err := s.Sync(context.Background())
	assert.ErrorContains(t, err, "client id")
}

func TestSync_NotConfigured(t *testing.T) {
	s := NewSynchronizer(nil, &staticTotal{}, staticIdentity("x"), Options{})
	assert.False(t, s.Configured())

	_, err := s.Sync(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = s.FetchRanked(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSync_Throttled(t *testing.T) {
	remote := NewMemoryStore()
	totals := &staticTotal{}
	totals.minutes.Store(3)
	s := NewSynchronizer(remote, totals, staticIdentity("client-a"), Options{MinSyncInterval: time.Hour})

	res, err := s.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Inserted, res.Outcome)

	totals.minutes.Store(9)
	res, err = s.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Throttled, res.Outcome)
	assert.Equal(t, 1, remote.Writes())
}

func TestSync_ConcurrentCallsWriteOnce(t *testing.T) {
	s, remote, _ := newTestSync(t, 77)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Sync(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, remote.Writes())
}

func TestSync_NotifiesListeners(t *testing.T) {
	s, _, _ := newTestSync(t, 12)

	var got []SyncResult
	s.OnSynced(func(r SyncResult) { got = append(got, r) })

	_, err := s.Sync(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, SyncResult{Outcome: Inserted, ClientID: "client-a", TotalMinutes: 12}, got[0])
}
