// Package playback drives the progress ledger from a media player: it samples
// the position while playing and flushes on pause, end, item switch and close.
package playback

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/asteroid-belt/vidtally/internal/metrics"
	"github.com/asteroid-belt/vidtally/internal/progress"
)

// Default cadences.
const (
	DefaultSampleInterval = time.Second
	DefaultFlushDebounce  = 400 * time.Millisecond
)

// State is a player state.
type State string

const (
	Unstarted State = "unstarted"
	Playing   State = "playing"
	Paused    State = "paused"
	Buffering State = "buffering"
	Ended     State = "ended"
)

// Source is the embedded media player.
type Source interface {
	CurrentTime() (float64, error)
	Duration() (float64, error)
	Seek(seconds float64) error
	Play() error
}

// Recorder persists samples.
type Recorder interface {
	RecordSample(itemID, containerID string, seconds, duration float64) (progress.Result, error)
	ResumePoint(itemID string) float64
}

// Options configures a Tracker.
type Options struct {
	SampleInterval time.Duration
	FlushDebounce  time.Duration
	Scheduler      Scheduler
	Logger         zerolog.Logger
}

// Tracker follows one active item at a time. It is safe for concurrent use.
type Tracker struct {
	ledger   Recorder
	sched    Scheduler
	interval time.Duration
	debounce time.Duration
	logger   zerolog.Logger

	mu        sync.Mutex
	gen       uint64
	itemID    string
	container string
	src       Source
	state     State
	duration  float64
	last      float64
	hasSample bool
	sampler   Handle
	flusher   Handle
	closed    bool
}

// NewTracker creates a Tracker writing to ledger.
func NewTracker(ledger Recorder, opts Options) *Tracker {
	if opts.SampleInterval <= 0 {
		opts.SampleInterval = DefaultSampleInterval
	}
	if opts.FlushDebounce <= 0 {
		opts.FlushDebounce = DefaultFlushDebounce
	}
	if opts.Scheduler == nil {
		opts.Scheduler = RealScheduler{}
	}
	return &Tracker{
		ledger:   ledger,
		sched:    opts.Scheduler,
		interval: opts.SampleInterval,
		debounce: opts.FlushDebounce,
		logger:   opts.Logger,
		state:    Unstarted,
	}
}

// Load switches to itemID. The previous item's last sample is flushed and its
// scheduled tasks are cancelled before src is attached.
func (t *Tracker) Load(itemID, containerID string, src Source) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return fmt.Errorf("tracker closed")
	}
	t.flushLocked("switch")
	t.cancelLocked()

	t.gen++
	t.itemID = itemID
	t.container = containerID
	t.src = src
	t.state = Unstarted
	t.duration = 0
	t.last = 0
	t.hasSample = false

	t.logger.Debug().Str("item", itemID).Msg("item loaded")
	return nil
}

// Item returns the active item ID.
func (t *Tracker) Item() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.itemID
}

// State returns the last reported player state.
func (t *Tracker) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// OnReady records the item duration and seeks to the saved position.
func (t *Tracker) OnReady(duration float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.src == nil {
		return nil
	}
	t.duration = duration
	resume := t.ledger.ResumePoint(t.itemID)
	if resume <= 0 {
		return nil
	}
	if err := t.src.Seek(resume); err != nil {
		return fmt.Errorf("seek to %.0fs: %w", resume, err)
	}
	t.last = resume
	t.logger.Debug().Str("item", t.itemID).Float64("resume", resume).Msg("resumed playback")
	return nil
}

// OnStateChange starts sampling while playing and schedules a debounced
// flush on pause and end.
func (t *Tracker) OnStateChange(state State) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.src == nil || t.closed {
		return
	}
	t.state = state
	switch state {
	case Playing:
		t.startSamplingLocked()
	case Paused, Ended:
		t.stopSamplingLocked()
		t.scheduleFlushLocked(string(state))
	default:
		t.stopSamplingLocked()
	}
}

// OnProgressSample records a position pushed by the player.
func (t *Tracker) OnProgressSample(seconds float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.src == nil || t.closed {
		return
	}
	t.recordLocked(seconds)
}

// Flush writes the last known position now, cancelling any pending
// debounced flush.
func (t *Tracker) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.flusher != nil {
		t.flusher.Stop()
		t.flusher = nil
	}
	t.flushLocked("manual")
}

// Close flushes pending progress synchronously and cancels every scheduled
// task. The tracker cannot be reused.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.flushLocked("close")
	t.cancelLocked()
	t.closed = true
	t.gen++
}

func (t *Tracker) startSamplingLocked() {
	t.stopSamplingLocked()
	gen := t.gen
	t.sampler = t.sched.Every(t.interval, func() { t.tick(gen) })
}

func (t *Tracker) stopSamplingLocked() {
	if t.sampler != nil {
		t.sampler.Stop()
		t.sampler = nil
	}
}

func (t *Tracker) scheduleFlushLocked(trigger string) {
	if t.flusher != nil {
		t.flusher.Stop()
	}
	gen := t.gen
	t.flusher = t.sched.After(t.debounce, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if gen != t.gen {
			return
		}
		t.flusher = nil
		t.flushLocked(trigger)
	})
}

func (t *Tracker) cancelLocked() {
	t.stopSamplingLocked()
	if t.flusher != nil {
		t.flusher.Stop()
		t.flusher = nil
	}
}

func (t *Tracker) tick(gen uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if gen != t.gen || t.src == nil {
		return
	}

	pos, err := t.src.CurrentTime()
	if err != nil {
		metrics.PlaybackSampleErrorsTotal.Inc()
		t.logger.Warn().Err(err).Str("item", t.itemID).Msg("position sample failed")
		return
	}
	t.recordLocked(math.Floor(pos))
}

func (t *Tracker) recordLocked(seconds float64) {
	if t.duration <= 0 {
		if d, err := t.src.Duration(); err == nil {
			t.duration = d
		}
	}
	t.last = seconds
	t.hasSample = true
	if _, err := t.ledger.RecordSample(t.itemID, t.container, seconds, t.duration); err != nil {
		t.logger.Warn().Err(err).Str("item", t.itemID).Msg("record progress failed")
	}
}

// flushLocked persists the last known position of the active item.
func (t *Tracker) flushLocked(trigger string) {
	if t.src == nil || t.itemID == "" || !t.hasSample {
		return
	}
	if t.duration <= 0 {
		if d, err := t.src.Duration(); err == nil {
			t.duration = d
		}
	}
	if _, err := t.ledger.RecordSample(t.itemID, t.container, t.last, t.duration); err != nil {
		t.logger.Warn().Err(err).Str("item", t.itemID).Str("trigger", trigger).Msg("flush progress failed")
		return
	}
	metrics.PlaybackFlushesTotal.WithLabelValues(trigger).Inc()
	t.logger.Debug().Str("item", t.itemID).Str("trigger", trigger).Float64("seconds", t.last).Msg("progress flushed")
}
