package playback

import (
	"sync"
	"time"
)

// Handle cancels a scheduled task. Stop is idempotent and never blocks.
type Handle interface {
	Stop()
}

// Scheduler runs deferred and periodic tasks.
type Scheduler interface {
	// Every runs fn every d until the handle is stopped.
	Every(d time.Duration, fn func()) Handle
	// After runs fn once after d unless the handle is stopped first.
	After(d time.Duration, fn func()) Handle
}

// RealScheduler schedules on the wall clock.
type RealScheduler struct{}

type tickerHandle struct {
	once sync.Once
	stop chan struct{}
}

func (h *tickerHandle) Stop() {
	h.once.Do(func() { close(h.stop) })
}

func (RealScheduler) Every(d time.Duration, fn func()) Handle {
	h := &tickerHandle{stop: make(chan struct{})}
	ticker := time.NewTicker(d)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-h.stop:
				return
			case <-ticker.C:
				select {
				case <-h.stop:
					return
				default:
				}
				fn()
			}
		}
	}()
	return h
}

type timerHandle struct {
	t *time.Timer
}

func (h timerHandle) Stop() {
	h.t.Stop()
}

func (RealScheduler) After(d time.Duration, fn func()) Handle {
	return timerHandle{t: time.AfterFunc(d, fn)}
}
