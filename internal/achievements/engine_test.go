package achievements

import (
	"sync"
	"testing"
	"time"

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

func newTestEngine(t *testing.T) (*Engine, *kv.MemoryStore, *fakeClock) {
	t.Helper()
	store := kv.NewMemoryStore()
	clock := &fakeClock{t: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)}
	return New(store, Options{Now: clock.Now}), store, clock
}

func TestCheckTimeBadges_EarnsOnce(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	var announced []models.AchievementID
	engine.OnEarn(func(a models.Achievement) { announced = append(announced, a.ID) })

	for range 10 {
		_, err := engine.CheckTimeBadges(45)
		require.NoError(t, err)
	}

	assert.Equal(t, []models.AchievementID{Time30Min}, announced)
	assert.Equal(t, 1, engine.EarnedCount())
}

func TestCheckTimeBadges_Thresholds(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	earned, err := engine.CheckTimeBadges(29)
	require.NoError(t, err)
	assert.Empty(t, earned)

	earned, err = engine.CheckTimeBadges(300)
	require.NoError(t, err)
	require.Len(t, earned, 3)
	assert.Equal(t, Time5Hour, earned[2].ID)
}

func TestCheckVideoCompletionBadges(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	earned, err := engine.CheckVideoCompletionBadges(1)
	require.NoError(t, err)
	require.Len(t, earned, 1)
	assert.Equal(t, VideoFirst, earned[0].ID)

	earned, err = engine.CheckVideoCompletionBadges(5)
	require.NoError(t, err)
	require.Len(t, earned, 1)
	assert.Equal(t, Video5Complete, earned[0].ID)
}

func TestEarn(t *testing.T) {
	engine, _, clock := newTestEngine(t)

	ok, err := engine.Earn(AppFirstOpen)
	require.NoError(t, err)
	assert.True(t, ok)

	clock.Advance(time.Hour)
	ok, err = engine.Earn(AppFirstOpen)
	require.NoError(t, err)
	assert.False(t, ok)

	for _, a := range engine.List() {
		if a.ID == AppFirstOpen {
			require.NotNil(t, a.EarnedAt)
			assert.Equal(t, time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC), a.EarnedAt.UTC(), "earnedAt is never overwritten")
		}
	}
}

func TestEarn_Unknown(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	_, err := engine.Earn("time-100hour")
	assert.ErrorIs(t, err, ErrUnknownAchievement)
}

func TestEarn_ConcurrentAnnouncesOnce(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	var mu sync.Mutex
	count := 0
	engine.OnEarn(func(models.Achievement) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = engine.CheckTimeBadges(30)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, count)
}

func TestList_TableOrder(t *testing.T) {
	engine, _, _ := newTestEngine(t)

	list := engine.List()
	require.Len(t, list, len(Rules))
	assert.Equal(t, Time30Min, list[0].ID)
	assert.Equal(t, App20Days, list[len(list)-1].ID)
	for _, a := range list {
		assert.False(t, a.Earned)
		assert.Nil(t, a.EarnedAt)
	}
}

func TestRecordAppOpen_OncePerDay(t *testing.T) {
	engine, _, clock := newTestEngine(t)

	recorded, err := engine.RecordAppOpen()
	require.NoError(t, err)
	assert.True(t, recorded)

	clock.Advance(3 * time.Hour)
	recorded, err = engine.RecordAppOpen()
	require.NoError(t, err)
	assert.False(t, recorded)

	assert.Equal(t, []string{"2026-03-10"}, engine.OpenDays())
	assert.Equal(t, 1, engine.ConsecutiveDays())
	assert.Equal(t, 1, engine.EarnedCount(), "first open earns First Timer")
}

func TestRecordAppOpen_Streaks(t *testing.T) {
	engine, _, clock := newTestEngine(t)

	for range 3 {
		_, err := engine.RecordAppOpen()
		require.NoError(t, err)
		clock.Advance(24 * time.Hour)
	}
	assert.Equal(t, 3, engine.ConsecutiveDays())

	// Skip a day.
	clock.Advance(24 * time.Hour)
	_, err := engine.RecordAppOpen()
	require.NoError(t, err)
	assert.Equal(t, 1, engine.ConsecutiveDays())
}

func TestRecordAppOpen_FiveDayStreak(t *testing.T) {
	engine, _, clock := newTestEngine(t)

	var announced []models.AchievementID
	engine.OnEarn(func(a models.Achievement) { announced = append(announced, a.ID) })

	for range 5 {
		_, err := engine.RecordAppOpen()
		require.NoError(t, err)
		clock.Advance(24 * time.Hour)
	}

	assert.Equal(t, []models.AchievementID{AppFirstOpen, App5Days}, announced)
}

func TestCorruptLedgerFallsBack(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	require.NoError(t, store.Set(keyLedger, []byte("[1,2")))

	assert.Equal(t, 0, engine.EarnedCount())

	ok, err := engine.Earn(VideoFirst)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, engine.EarnedCount())
}

func TestEarn_ReadFailureNeverUnearns(t *testing.T) {
	store := kvtest.NewFlakyStore(kv.NewMemoryStore())
	clock := &fakeClock{t: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)}
	engine := New(store, Options{Now: clock.Now})

	var announced []models.AchievementID
	engine.OnEarn(func(a models.Achievement) { announced = append(announced, a.ID) })

	earned, err := engine.CheckTimeBadges(45)
	require.NoError(t, err)
	require.NotEmpty(t, earned)
	before := engine.EarnedCount()

	store.FailGet(keyLedger, 1)
	_, err = engine.CheckVideoCompletionBadges(1)
	require.ErrorIs(t, err, kvtest.ErrInjected)
	assert.Equal(t, before, engine.EarnedCount(), "a failed read must not overwrite the ledger")

	_, err = engine.CheckVideoCompletionBadges(1)
	require.NoError(t, err)
	again, err := engine.CheckTimeBadges(45)
	require.NoError(t, err)
	assert.Empty(t, again)

	seen := map[models.AchievementID]int{}
	for _, id := range announced {
		seen[id]++
	}
	for id, n := range seen {
		assert.Equal(t, 1, n, "%s announced more than once", id)
	}
}

func TestRecordAppOpen_ReadFailureKeepsOpenDays(t *testing.T) {
	store := kvtest.NewFlakyStore(kv.NewMemoryStore())
	clock := &fakeClock{t: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)}
	engine := New(store, Options{Now: clock.Now})

	for range 3 {
		_, err := engine.RecordAppOpen()
		require.NoError(t, err)
		clock.Advance(24 * time.Hour)
	}

	store.FailGet(keyAppOpens, 1)
	recorded, err := engine.RecordAppOpen()
	require.ErrorIs(t, err, kvtest.ErrInjected)
	assert.False(t, recorded)
	assert.Len(t, engine.OpenDays(), 3)

	recorded, err = engine.RecordAppOpen()
	require.NoError(t, err)
	assert.True(t, recorded)
	assert.Len(t, engine.OpenDays(), 4)
	assert.Equal(t, 4, engine.ConsecutiveDays())
}

func TestEarn_CorruptLedgerStartsFresh(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	require.NoError(t, store.Set(keyLedger, []byte("{oops")))

	earned, err := engine.CheckTimeBadges(45)
	require.NoError(t, err)
	assert.NotEmpty(t, earned)
	assert.Equal(t, len(earned), engine.EarnedCount())
}
