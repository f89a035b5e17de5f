// Package progress implements the progress ledger: durable per-item playback
// positions, completion detection and the last-watched pointer.
package progress

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/asteroid-belt/vidtally/internal/kv"
	"github.com/asteroid-belt/vidtally/internal/metrics"
	"github.com/asteroid-belt/vidtally/internal/models"
)

// DefaultCompletionThreshold is the watched fraction at which an item counts
// as finished. Trailing credits make exact-100% unreliable; tunable through
// Options.CompletionThreshold.
const DefaultCompletionThreshold = 0.95

// Storage keys owned by the ledger.
const (
	keyPrefix      = "progress:"
	keyLastWatched = "progress_last_watched"
	keyCompleted   = "progress_completed"
)

// defaultDuration is reported for items with no record so that callers can
// divide by it safely.
const defaultDuration = 1

// Options configures a Ledger.
type Options struct {
	// CompletionThreshold defaults to DefaultCompletionThreshold.
	CompletionThreshold float64
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger zerolog.Logger
}

// Result describes what RecordSample did.
type Result struct {
	// Recorded is false when the sample was invalid and dropped.
	Recorded bool `json:"recorded"`
	// NewlyCompleted is true the first time the item crosses the threshold.
	NewlyCompleted bool `json:"newly_completed"`
	// CompletedCount is the size of the completed set after the call.
	CompletedCount int `json:"completed_count"`
}

// Ledger owns ProgressRecords, the LastWatched pointer and the completed set.
// It is safe for concurrent use.
type Ledger struct {
	store     kv.Store
	threshold float64
	now       func() time.Time
	logger    zerolog.Logger

	mu         sync.Mutex
	onComplete []func(completedCount int)
}

// New creates a Ledger persisting to store.
func New(store kv.Store, opts Options) *Ledger {
	if opts.CompletionThreshold <= 0 || opts.CompletionThreshold > 1 {
		opts.CompletionThreshold = DefaultCompletionThreshold
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Ledger{
		store:     store,
		threshold: opts.CompletionThreshold,
		now:       opts.Now,
		logger:    opts.Logger,
	}
}

// OnComplete registers fn to run, with the new completed count, whenever an
// item is newly added to the completed set.
func (l *Ledger) OnComplete(fn func(completedCount int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onComplete = append(l.onComplete, fn)
}

// Threshold returns the completion threshold in use.
func (l *Ledger) Threshold() float64 {
	return l.threshold
}

// IsComplete reports whether seconds of duration satisfies threshold.
func IsComplete(seconds, duration, threshold float64) bool {
	return duration > 0 && seconds >= threshold*duration
}

// RecordSample stores a playback sample for itemID. Samples with a
// non-positive duration, a negative position or an empty item ID are dropped
// without touching stored state.
func (l *Ledger) RecordSample(itemID, containerID string, seconds, duration float64) (Result, error) {
	if itemID == "" || duration <= 0 || seconds < 0 {
		metrics.ProgressSamplesTotal.WithLabelValues("skipped").Inc()
		l.logger.Debug().
			Str("item", itemID).
			Float64("seconds", seconds).
			Float64("duration", duration).
			Msg("dropping invalid progress sample")
		return Result{}, nil
	}

	l.mu.Lock()
	res, listeners, err := l.recordLocked(itemID, containerID, seconds, duration)
	l.mu.Unlock()
	if err != nil {
		metrics.ProgressSamplesTotal.WithLabelValues("failed").Inc()
		return Result{}, err
	}
	metrics.ProgressSamplesTotal.WithLabelValues("recorded").Inc()

	if res.NewlyCompleted {
		metrics.ItemsCompletedTotal.Inc()
		l.logger.Info().Str("item", itemID).Int("completed", res.CompletedCount).Msg("item completed")
		for _, fn := range listeners {
			fn(res.CompletedCount)
		}
	}
	return res, nil
}

func (l *Ledger) recordLocked(itemID, containerID string, seconds, duration float64) (Result, []func(int), error) {
	// Read before any write so a failed read leaves the sample unrecorded
	// instead of half-applied.
	completed, err := l.readCompleted()
	if err != nil {
		return Result{}, nil, err
	}

	rec := models.ProgressRecord{
		ItemID:          itemID,
		SecondsWatched:  seconds,
		DurationSeconds: duration,
		LastUpdated:     l.now().UTC(),
		ContainerID:     containerID,
	}
	if err := kv.SetJSON(l.store, keyPrefix+itemID, rec); err != nil {
		return Result{}, nil, fmt.Errorf("write progress: %w", err)
	}

	res := Result{Recorded: true}
	res.CompletedCount = len(completed)
	if IsComplete(seconds, duration, l.threshold) && !containsItem(completed, itemID) {
		completed = append(completed, models.CompletedItem{ItemID: itemID, CompletedAt: l.now().UTC()})
		if err := kv.SetJSON(l.store, keyCompleted, completed); err != nil {
			return Result{}, nil, fmt.Errorf("write completed set: %w", err)
		}
		res.NewlyCompleted = true
		res.CompletedCount = len(completed)
	}

	pointer := models.LastWatched{ItemID: itemID, SecondsWatched: seconds, ContainerID: containerID}
	if err := kv.SetJSON(l.store, keyLastWatched, pointer); err != nil {
		return Result{}, nil, fmt.Errorf("write last watched: %w", err)
	}

	listeners := make([]func(int), len(l.onComplete))
	copy(listeners, l.onComplete)
	return res, listeners, nil
}

// ReadProgress returns the stored record for itemID, or a zero record with a
// duration of 1 when none exists or it cannot be decoded.
func (l *Ledger) ReadProgress(itemID string) models.ProgressRecord {
	rec, ok := l.read(itemID)
	if !ok {
		return models.ProgressRecord{ItemID: itemID, SecondsWatched: 0, DurationSeconds: defaultDuration}
	}
	return rec
}

// HasProgress reports whether a record exists for itemID.
func (l *Ledger) HasProgress(itemID string) bool {
	_, ok := l.read(itemID)
	return ok
}

func (l *Ledger) read(itemID string) (models.ProgressRecord, bool) {
	var rec models.ProgressRecord
	found, err := kv.GetJSON(l.store, keyPrefix+itemID, &rec)
	if err != nil {
		l.readFailed(keyPrefix+itemID, err)
		return models.ProgressRecord{}, false
	}
	if !found || rec.DurationSeconds <= 0 {
		return models.ProgressRecord{}, false
	}
	rec.ItemID = itemID
	return rec, true
}

// ResumePoint returns the position to seek to when itemID is opened again.
func (l *Ledger) ResumePoint(itemID string) float64 {
	rec, ok := l.read(itemID)
	if !ok {
		return 0
	}
	return rec.SecondsWatched
}

// DeleteProgress removes the record for itemID and clears the last-watched
// pointer if it referenced the item. The completed set is left untouched.
func (l *Ledger) DeleteProgress(itemID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Delete(keyPrefix + itemID); err != nil {
		return fmt.Errorf("delete progress: %w", err)
	}

	var pointer models.LastWatched
	found, err := kv.GetJSON(l.store, keyLastWatched, &pointer)
	if err != nil {
		l.readFailed(keyLastWatched, err)
		return nil
	}
	if found && pointer.ItemID == itemID {
		if err := l.store.Delete(keyLastWatched); err != nil {
			return fmt.Errorf("clear last watched: %w", err)
		}
	}
	return nil
}

// LastWatched returns the resume pointer, if any.
func (l *Ledger) LastWatched() (models.LastWatched, bool) {
	var pointer models.LastWatched
	found, err := kv.GetJSON(l.store, keyLastWatched, &pointer)
	if err != nil {
		l.readFailed(keyLastWatched, err)
		return models.LastWatched{}, false
	}
	if !found || pointer.ItemID == "" {
		return models.LastWatched{}, false
	}
	return pointer, true
}

// Completed returns the completed set in the order items finished.
func (l *Ledger) Completed() []models.CompletedItem {
	return l.loadCompleted()
}

// CompletedCount returns the number of completed items.
func (l *Ledger) CompletedCount() int {
	return len(l.loadCompleted())
}

// IsCompleted reports whether itemID is in the completed set.
func (l *Ledger) IsCompleted(itemID string) bool {
	return containsItem(l.loadCompleted(), itemID)
}

// readCompleted reads the completed set for a read-modify-write. Absent and
// corrupt sets read as empty; other failures are returned.
func (l *Ledger) readCompleted() ([]models.CompletedItem, error) {
	var items []models.CompletedItem
	if _, err := kv.GetJSON(l.store, keyCompleted, &items); err != nil {
		l.readFailed(keyCompleted, err)
		if errors.Is(err, kv.ErrCorrupt) {
			return nil, nil
		}
		return nil, fmt.Errorf("read completed set: %w", err)
	}
	return items, nil
}

func (l *Ledger) loadCompleted() []models.CompletedItem {
	items, err := l.readCompleted()
	if err != nil {
		return nil
	}
	return items
}

// Recent returns up to limit records, most recently updated first.
// A non-positive limit returns every record.
func (l *Ledger) Recent(limit int) ([]models.ProgressRecord, error) {
	keys, err := l.store.Keys(keyPrefix)
	if err != nil {
		return nil, fmt.Errorf("list progress keys: %w", err)
	}

	records := make([]models.ProgressRecord, 0, len(keys))
	for _, key := range keys {
		if rec, ok := l.read(strings.TrimPrefix(key, keyPrefix)); ok {
			records = append(records, rec)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].LastUpdated.After(records[j].LastUpdated)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (l *Ledger) readFailed(key string, err error) {
	if errors.Is(err, kv.ErrCorrupt) {
		metrics.CorruptReadsTotal.WithLabelValues("progress").Inc()
	}
	l.logger.Warn().Err(err).Str("key", key).Msg("progress read failed, using default")
}

func containsItem(items []models.CompletedItem, itemID string) bool {
	for _, it := range items {
		if it.ItemID == itemID {
			return true
		}
	}
	return false
}
