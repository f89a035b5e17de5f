package usage

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asteroid-belt/vidtally/internal/kv"
	"github.com/asteroid-belt/vidtally/internal/kv/kvtest"
	"github.com/asteroid-belt/vidtally/internal/models"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestTimer(t *testing.T) (*Timer, *kv.MemoryStore, *fakeClock) {
	t.Helper()
	store := kv.NewMemoryStore()
	clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	return New(store, Options{Now: clock.Now}), store, clock
}

func TestStop_RecordsRoundedMinutes(t *testing.T) {
	timer, _, clock := newTestTimer(t)

	started, err := timer.Start()
	require.NoError(t, err)
	assert.True(t, started)
	assert.Equal(t, Running, timer.State())

	clock.Advance(90 * time.Second)
	res, err := timer.Stop()
	require.NoError(t, err)

	assert.Equal(t, 1, res.Minutes)
	assert.Equal(t, 1, timer.TotalMinutes())
	assert.Equal(t, Idle, timer.State())
}

func TestStop_HalfMinuteSessionLeavesDailyUntouched(t *testing.T) {
	timer, store, clock := newTestTimer(t)

	_, err := timer.Start()
	require.NoError(t, err)
	clock.Advance(30 * time.Second)

	res, err := timer.Stop()
	require.NoError(t, err)
	assert.True(t, res.WasRunning)
	assert.False(t, res.Recorded())

	_, err = store.Get(keyDaily)
	assert.ErrorIs(t, err, kv.ErrNotFound)
	assert.Equal(t, Idle, timer.State())
}

func TestStart_IsIdempotent(t *testing.T) {
	timer, _, clock := newTestTimer(t)

	_, err := timer.Start()
	require.NoError(t, err)
	clock.Advance(3 * time.Minute)

	started, err := timer.Start()
	require.NoError(t, err)
	assert.False(t, started)

	clock.Advance(2 * time.Minute)
	res, err := timer.Stop()
	require.NoError(t, err)
	assert.Equal(t, 5, res.Minutes, "second start must not reset the session")
}

func TestStop_WithoutSession(t *testing.T) {
	timer, _, _ := newTestTimer(t)

	called := false
	timer.OnStop(func(int) { called = true })

	res, err := timer.Stop()
	require.NoError(t, err)
	assert.False(t, res.WasRunning)
	assert.False(t, called)
}

func TestStop_SameDaySessionsShareOneEntry(t *testing.T) {
	timer, _, clock := newTestTimer(t)

	for range 2 {
		_, err := timer.Start()
		require.NoError(t, err)
		clock.Advance(2 * time.Minute)
		_, err = timer.Stop()
		require.NoError(t, err)
		clock.Advance(10 * time.Minute)
	}

	daily := timer.Daily()
	require.Len(t, daily, 1)
	assert.Equal(t, models.DailyUsage{Date: "2026-03-10", Minutes: 4}, daily[0])
	assert.Equal(t, 4, timer.Today())
}

func TestStop_AttributesToStopDay(t *testing.T) {
	timer, _, clock := newTestTimer(t)

	_, err := timer.Start()
	require.NoError(t, err)
	clock.Advance(5 * time.Minute)
	_, err = timer.Stop()
	require.NoError(t, err)

	clock.Advance(24 * time.Hour)
	_, err = timer.Start()
	require.NoError(t, err)
	clock.Advance(7 * time.Minute)
	_, err = timer.Stop()
	require.NoError(t, err)

	want := []models.DailyUsage{
		{Date: "2026-03-10", Minutes: 5},
		{Date: "2026-03-11", Minutes: 7},
	}
	if diff := cmp.Diff(want, timer.Daily()); diff != "" {
		t.Errorf("daily usage mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 12, timer.TotalMinutes())
}

func TestStop_NotifiesListeners(t *testing.T) {
	timer, _, clock := newTestTimer(t)

	var totals []int
	timer.OnStop(func(total int) { totals = append(totals, total) })

	_, err := timer.Start()
	require.NoError(t, err)
	clock.Advance(30 * time.Minute)
	_, err = timer.Stop()
	require.NoError(t, err)

	// A discarded session does not notify.
	_, err = timer.Start()
	require.NoError(t, err)
	_, err = timer.Stop()
	require.NoError(t, err)

	assert.Equal(t, []int{30}, totals)
}

func TestSessionSurvivesRestart(t *testing.T) {
	store := kv.NewMemoryStore()
	clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}

	first := New(store, Options{Now: clock.Now})
	_, err := first.Start()
	require.NoError(t, err)

	clock.Advance(12 * time.Minute)
	second := New(store, Options{Now: clock.Now})
	start, ok := second.SessionStart()
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC), start.UTC())

	res, err := second.Stop()
	require.NoError(t, err)
	assert.Equal(t, 12, res.Minutes)
}

func TestCorruptDailyFallsBackToEmpty(t *testing.T) {
	timer, store, _ := newTestTimer(t)
	require.NoError(t, store.Set(keyDaily, []byte("not json")))

	assert.Equal(t, 0, timer.TotalMinutes())
	assert.Empty(t, timer.Daily())
}

func TestSessionMinutes(t *testing.T) {
	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{-time.Minute, 0},
		{0, 0},
		{30 * time.Second, 0},
		{31 * time.Second, 1},
		{90 * time.Second, 1},
		{110 * time.Second, 2},
		{150 * time.Second, 2},
		{151 * time.Second, 3},
	}
	for _, tt := range tests {
		t.Run(tt.elapsed.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, SessionMinutes(tt.elapsed))
		})
	}
}

func TestStop_RoundsToNearestMinute(t *testing.T) {
	timer, _, clock := newTestTimer(t)

	_, err := timer.Start()
	require.NoError(t, err)
	clock.Advance(110 * time.Second)

	res, err := timer.Stop()
	require.NoError(t, err)
	assert.Equal(t, 2, res.Minutes)
	assert.Equal(t, 2, timer.TotalMinutes())
}

func TestStop_ReadFailureKeepsHistoryAndSession(t *testing.T) {
	store := kvtest.NewFlakyStore(kv.NewMemoryStore())
	clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	timer := New(store, Options{Now: clock.Now})

	_, err := timer.Start()
	require.NoError(t, err)
	clock.Advance(120 * time.Minute)
	_, err = timer.Stop()
	require.NoError(t, err)

	_, err = timer.Start()
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)

	store.FailGet(keyDaily, 1)
	_, err = timer.Stop()
	require.ErrorIs(t, err, kvtest.ErrInjected)
	assert.Equal(t, 120, timer.TotalMinutes(), "history must survive a failed read")
	assert.Equal(t, Running, timer.State(), "session stays open for the next stop")

	res, err := timer.Stop()
	require.NoError(t, err)
	assert.Equal(t, 2, res.Minutes)
	assert.Equal(t, 122, res.TotalMinutes)
}

func TestStart_ReadFailureKeepsOpenSession(t *testing.T) {
	store := kvtest.NewFlakyStore(kv.NewMemoryStore())
	clock := &fakeClock{t: time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)}
	timer := New(store, Options{Now: clock.Now})

	_, err := timer.Start()
	require.NoError(t, err)
	clock.Advance(10 * time.Minute)

	store.FailGet(keySessionStart, 1)
	started, err := timer.Start()
	require.ErrorIs(t, err, kvtest.ErrInjected)
	assert.False(t, started)

	res, err := timer.Stop()
	require.NoError(t, err)
	assert.Equal(t, 10, res.Minutes, "the original start time is kept")
}

func TestStop_CorruptDailyStartsFresh(t *testing.T) {
	timer, store, clock := newTestTimer(t)
	require.NoError(t, store.Set(keyDaily, []byte("{not json")))

	_, err := timer.Start()
	require.NoError(t, err)
	clock.Advance(5 * time.Minute)

	res, err := timer.Stop()
	require.NoError(t, err)
	assert.Equal(t, 5, res.TotalMinutes)
}
