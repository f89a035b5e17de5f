// Package usage implements the usage timer: wall-clock sessions folded into
// per-calendar-day minute totals.
package usage

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/asteroid-belt/vidtally/internal/kv"
	"github.com/asteroid-belt/vidtally/internal/metrics"
	"github.com/asteroid-belt/vidtally/internal/models"
)

// Storage keys owned by the timer.
const (
	keyDaily        = "usage_daily"
	keySessionStart = "usage_session_start"
)

// State is the timer's session state.
type State string

const (
	Idle    State = "idle"
	Running State = "running"
)

// Options configures a Timer.
type Options struct {
	// Now defaults to time.Now. Its location decides the calendar day.
	Now    func() time.Time
	Logger zerolog.Logger
}

// StopResult describes what Stop did.
type StopResult struct {
	// Minutes is the session length in whole minutes. Zero means nothing was written.
	Minutes int
	// TotalMinutes is the sum over every recorded day after the stop.
	TotalMinutes int
	// WasRunning is false when Stop was called with no open session.
	WasRunning bool
}

// Recorded reports whether the stop added minutes to daily usage.
func (r StopResult) Recorded() bool {
	return r.Minutes > 0
}

type session struct {
	Start time.Time `json:"start"`
}

// Timer accounts usage sessions. It is safe for concurrent use.
//
// The open-session marker is persisted, so a session started by one process
// can be stopped by another.
type Timer struct {
	store  kv.Store
	now    func() time.Time
	logger zerolog.Logger

	mu     sync.Mutex
	onStop []func(totalMinutes int)
}

// New creates a Timer persisting to store.
func New(store kv.Store, opts Options) *Timer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Timer{store: store, now: opts.Now, logger: opts.Logger}
}

// OnStop registers fn to run with the new total whenever a stop records
// minutes.
func (t *Timer) OnStop(fn func(totalMinutes int)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onStop = append(t.onStop, fn)
}

// Start opens a session. It returns false without changing anything when a
// session is already open.
func (t *Timer) Start() (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	_, ok, err := t.openSession()
	if err != nil {
		return false, err
	}
	if ok {
		return false, nil
	}
	if err := kv.SetJSON(t.store, keySessionStart, session{Start: t.now()}); err != nil {
		return false, fmt.Errorf("start session: %w", err)
	}
	t.logger.Debug().Msg("usage session started")
	return true, nil
}

// Stop closes the open session. Elapsed time is rounded to whole minutes,
// halves down, so sessions of 30 seconds or less are discarded without
// touching daily usage. When the stored usage can't be read the session is
// left open and nothing is written.
func (t *Timer) Stop() (StopResult, error) {
	t.mu.Lock()
	res, listeners, err := t.stopLocked()
	t.mu.Unlock()
	if err != nil {
		return StopResult{}, err
	}

	if res.Recorded() {
		for _, fn := range listeners {
			fn(res.TotalMinutes)
		}
	}
	return res, nil
}

func (t *Timer) stopLocked() (StopResult, []func(int), error) {
	sess, ok, err := t.openSession()
	if err != nil || !ok {
		return StopResult{}, nil, err
	}

	now := t.now()
	minutes := SessionMinutes(now.Sub(sess.Start))
	res := StopResult{Minutes: minutes, WasRunning: true}

	if minutes <= 0 {
		res.Minutes = 0
		metrics.UsageSessionsTotal.WithLabelValues("discarded").Inc()
		t.logger.Debug().Dur("elapsed", now.Sub(sess.Start)).Msg("discarding short usage session")
	} else {
		daily, err := t.readDaily()
		if err != nil {
			return StopResult{}, nil, err
		}
		daily = addMinutes(daily, now.Format(models.DateLayout), minutes)
		if err := kv.SetJSON(t.store, keyDaily, daily); err != nil {
			return StopResult{}, nil, fmt.Errorf("write daily usage: %w", err)
		}
		res.TotalMinutes = sumMinutes(daily)
		metrics.UsageSessionsTotal.WithLabelValues("recorded").Inc()
		metrics.UsageMinutesTotal.Add(float64(minutes))
		t.logger.Info().Int("minutes", minutes).Int("total", res.TotalMinutes).Msg("usage recorded")
	}

	if err := t.store.Delete(keySessionStart); err != nil {
		return StopResult{}, nil, fmt.Errorf("clear session: %w", err)
	}

	listeners := make([]func(int), len(t.onStop))
	copy(listeners, t.onStop)
	return res, listeners, nil
}

// State reports whether a session is open.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok, _ := t.openSession(); ok {
		return Running
	}
	return Idle
}

// SessionStart returns when the open session began.
func (t *Timer) SessionStart() (time.Time, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	sess, ok, _ := t.openSession()
	return sess.Start, ok
}

// TotalMinutes returns the sum of every recorded day.
func (t *Timer) TotalMinutes() int {
	return sumMinutes(t.loadDaily())
}

// Daily returns every recorded day, oldest first.
func (t *Timer) Daily() []models.DailyUsage {
	daily := t.loadDaily()
	sort.Slice(daily, func(i, j int) bool { return daily[i].Date < daily[j].Date })
	return daily
}

// Today returns the minutes recorded for the current calendar day.
func (t *Timer) Today() int {
	today := t.now().Format(models.DateLayout)
	for _, d := range t.loadDaily() {
		if d.Date == today {
			return d.Minutes
		}
	}
	return 0
}

// openSession reads the open-session marker. A corrupt marker reads as no
// session; other read failures are returned.
func (t *Timer) openSession() (session, bool, error) {
	var sess session
	found, err := kv.GetJSON(t.store, keySessionStart, &sess)
	if err != nil {
		t.readFailed(keySessionStart, err)
		if errors.Is(err, kv.ErrCorrupt) {
			return session{}, false, nil
		}
		return session{}, false, fmt.Errorf("read session: %w", err)
	}
	if !found || sess.Start.IsZero() {
		return session{}, false, nil
	}
	return sess, true, nil
}

// readDaily reads the daily collection for a read-modify-write. Absent and
// corrupt collections read as empty; other failures are returned so the
// caller leaves the stored history alone.
func (t *Timer) readDaily() ([]models.DailyUsage, error) {
	var daily []models.DailyUsage
	if _, err := kv.GetJSON(t.store, keyDaily, &daily); err != nil {
		t.readFailed(keyDaily, err)
		if errors.Is(err, kv.ErrCorrupt) {
			return nil, nil
		}
		return nil, fmt.Errorf("read daily usage: %w", err)
	}
	return daily, nil
}

// loadDaily is readDaily for display: every failure reads as empty.
func (t *Timer) loadDaily() []models.DailyUsage {
	daily, err := t.readDaily()
	if err != nil {
		return nil
	}
	return daily
}

func (t *Timer) readFailed(key string, err error) {
	if errors.Is(err, kv.ErrCorrupt) {
		metrics.CorruptReadsTotal.WithLabelValues("usage").Inc()
	}
	t.logger.Warn().Err(err).Str("key", key).Msg("usage read failed, using default")
}

// SessionMinutes rounds elapsed to whole minutes, halves down.
func SessionMinutes(elapsed time.Duration) int {
	if elapsed <= 0 {
		return 0
	}
	return int((elapsed + 30*time.Second - 1) / time.Minute)
}

func addMinutes(daily []models.DailyUsage, day string, minutes int) []models.DailyUsage {
	for i := range daily {
		if daily[i].Date == day {
			daily[i].Minutes += minutes
			return daily
		}
	}
	return append(daily, models.DailyUsage{Date: day, Minutes: minutes})
}

func sumMinutes(daily []models.DailyUsage) int {
	total := 0
	for _, d := range daily {
		total += d.Minutes
	}
	return total
}
