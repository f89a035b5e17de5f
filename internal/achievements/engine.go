// Package achievements evaluates the achievement table against accumulated
// signals and keeps the one-time earned ledger.
package achievements

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/asteroid-belt/vidtally/internal/kv"
	"github.com/asteroid-belt/vidtally/internal/metrics"
	"github.com/asteroid-belt/vidtally/internal/models"
)

// ErrUnknownAchievement is returned by Earn for IDs outside the table.
var ErrUnknownAchievement = errors.New("unknown achievement")

// Storage keys owned by the engine.
const (
	keyLedger   = "achievements_ledger"
	keyAppOpens = "achievements_app_opens"
)

type earnedState struct {
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}

type appOpens struct {
	Dates           []string `json:"dates"`
	ConsecutiveDays int      `json:"consecutive_days"`
}

// Options configures an Engine.
type Options struct {
	// Now defaults to time.Now. Its location decides the calendar day.
	Now    func() time.Time
	Logger zerolog.Logger
}

// Engine holds earned state. Read-check-write of the ledger is serialized,
// so each achievement is earned and announced exactly once.
type Engine struct {
	store  kv.Store
	now    func() time.Time
	logger zerolog.Logger

	mu     sync.Mutex
	onEarn []func(models.Achievement)
}

// New creates an Engine persisting to store.
func New(store kv.Store, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Engine{store: store, now: opts.Now, logger: opts.Logger}
}

// OnEarn registers fn to run once for every newly earned achievement.
func (e *Engine) OnEarn(fn func(models.Achievement)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEarn = append(e.onEarn, fn)
}

// Earn marks id as earned. Earning an achievement twice is a no-op that
// returns false.
func (e *Engine) Earn(id models.AchievementID) (bool, error) {
	rule, ok := RuleFor(id)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrUnknownAchievement, id)
	}
	earned, err := e.earnRules([]Rule{rule})
	return len(earned) > 0, err
}

// CheckTimeBadges earns every watch-time achievement totalMinutes satisfies.
func (e *Engine) CheckTimeBadges(totalMinutes int) ([]models.Achievement, error) {
	return e.earnRules(Satisfied(models.SignalWatchMinutes, totalMinutes))
}

// CheckVideoCompletionBadges earns every completion achievement
// completedCount satisfies.
func (e *Engine) CheckVideoCompletionBadges(completedCount int) ([]models.Achievement, error) {
	return e.earnRules(Satisfied(models.SignalCompletedItems, completedCount))
}

// CheckAppUsageBadges earns the open-day and streak achievements the recorded
// app opens satisfy.
func (e *Engine) CheckAppUsageBadges() ([]models.Achievement, error) {
	opens, err := e.readAppOpens()
	if err != nil {
		return nil, err
	}
	rules := append(
		Satisfied(models.SignalOpenDays, len(opens.Dates)),
		Satisfied(models.SignalConsecutiveDays, opens.ConsecutiveDays)...,
	)
	return e.earnRules(rules)
}

// RecordAppOpen records today as an open day, at most once per calendar day,
// then re-checks app usage achievements. It returns false when today was
// already recorded.
func (e *Engine) RecordAppOpen() (bool, error) {
	today := e.now().Format(models.DateLayout)

	e.mu.Lock()
	opens, err := e.readAppOpens()
	if err != nil {
		e.mu.Unlock()
		return false, err
	}
	if slices.Contains(opens.Dates, today) {
		e.mu.Unlock()
		return false, nil
	}
	opens.Dates = append(opens.Dates, today)
	slices.Sort(opens.Dates)
	opens.ConsecutiveDays = ConsecutiveDays(opens.Dates)
	err = kv.SetJSON(e.store, keyAppOpens, opens)
	e.mu.Unlock()
	if err != nil {
		return false, fmt.Errorf("write app opens: %w", err)
	}

	e.logger.Debug().Str("day", today).Int("streak", opens.ConsecutiveDays).Msg("app open recorded")
	if _, err := e.CheckAppUsageBadges(); err != nil {
		return true, err
	}
	return true, nil
}

// ConsecutiveDays returns the current open-day streak.
func (e *Engine) ConsecutiveDays() int {
	return e.loadAppOpens().ConsecutiveDays
}

// OpenDays returns every recorded open day, oldest first.
func (e *Engine) OpenDays() []string {
	return e.loadAppOpens().Dates
}

// List returns every achievement in table order with its earned state.
func (e *Engine) List() []models.Achievement {
	ledger := e.loadLedger()
	out := make([]models.Achievement, 0, len(Rules))
	for _, r := range Rules {
		a := models.Achievement{ID: r.ID, Name: r.Name, Description: r.Description}
		if st, ok := ledger[r.ID]; ok && st.Earned {
			a.Earned = true
			a.EarnedAt = st.EarnedAt
		}
		out = append(out, a)
	}
	return out
}

// EarnedCount returns how many achievements have been earned.
func (e *Engine) EarnedCount() int {
	n := 0
	for _, st := range e.loadLedger() {
		if st.Earned {
			n++
		}
	}
	return n
}

func (e *Engine) earnRules(rules []Rule) ([]models.Achievement, error) {
	if len(rules) == 0 {
		return nil, nil
	}

	e.mu.Lock()
	ledger, err := e.readLedger()
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	var earned []models.Achievement
	for _, r := range rules {
		if ledger[r.ID].Earned {
			continue
		}
		at := e.now().UTC()
		ledger[r.ID] = earnedState{Earned: true, EarnedAt: &at}
		earned = append(earned, models.Achievement{
			ID:          r.ID,
			Name:        r.Name,
			Description: r.Description,
			Earned:      true,
			EarnedAt:    &at,
		})
	}
	if len(earned) == 0 {
		e.mu.Unlock()
		return nil, nil
	}
	if err := kv.SetJSON(e.store, keyLedger, ledger); err != nil {
		e.mu.Unlock()
		return nil, fmt.Errorf("write achievements: %w", err)
	}
	listeners := slices.Clone(e.onEarn)
	e.mu.Unlock()

	for _, a := range earned {
		rule, _ := RuleFor(a.ID)
		metrics.AchievementsEarnedTotal.WithLabelValues(string(rule.Signal)).Inc()
		e.logger.Info().Str("achievement", string(a.ID)).Msg("achievement earned")
		for _, fn := range listeners {
			fn(a)
		}
	}
	return earned, nil
}

// readLedger reads the earned ledger for a read-modify-write. Absent and
// corrupt ledgers read as empty; other failures are returned so nothing
// already earned is overwritten.
func (e *Engine) readLedger() (map[models.AchievementID]earnedState, error) {
	ledger := make(map[models.AchievementID]earnedState)
	if _, err := kv.GetJSON(e.store, keyLedger, &ledger); err != nil {
		e.readFailed(keyLedger, err)
		if !errors.Is(err, kv.ErrCorrupt) {
			return nil, fmt.Errorf("read achievements: %w", err)
		}
		ledger = make(map[models.AchievementID]earnedState)
	}
	if ledger == nil {
		ledger = make(map[models.AchievementID]earnedState)
	}
	return ledger, nil
}

// loadLedger is readLedger for display: every failure reads as empty.
func (e *Engine) loadLedger() map[models.AchievementID]earnedState {
	ledger, err := e.readLedger()
	if err != nil {
		return make(map[models.AchievementID]earnedState)
	}
	return ledger
}

func (e *Engine) readAppOpens() (appOpens, error) {
	var opens appOpens
	if _, err := kv.GetJSON(e.store, keyAppOpens, &opens); err != nil {
		e.readFailed(keyAppOpens, err)
		if !errors.Is(err, kv.ErrCorrupt) {
			return appOpens{}, fmt.Errorf("read app opens: %w", err)
		}
		return appOpens{}, nil
	}
	return opens, nil
}

func (e *Engine) loadAppOpens() appOpens {
	opens, err := e.readAppOpens()
	if err != nil {
		return appOpens{}
	}
	return opens
}

func (e *Engine) readFailed(key string, err error) {
	if errors.Is(err, kv.ErrCorrupt) {
		metrics.CorruptReadsTotal.WithLabelValues("achievements").Inc()
	}
	e.logger.Warn().Err(err).Str("key", key).Msg("achievement read failed, using default")
}
