// Package notify delivers user-facing notices: achievement unlocks and
// transient warnings such as a failed ranking sync.
package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Kind classifies a notice.
type Kind string

const (
	KindAchievement Kind = "achievement"
	KindWarning     Kind = "warning"
)

// Notice is a single user-facing message.
type Notice struct {
	Kind    Kind      `json:"kind"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Sink receives notices.
type Sink interface {
	Publish(ctx context.Context, n Notice) error
}

// Multi fans a notice out to every sink and joins their errors.
type Multi []Sink

func (m Multi) Publish(ctx context.Context, n Notice) error {
	var errs []error
	for _, s := range m {
		if err := s.Publish(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// LogSink writes notices to a zerolog logger.
type LogSink struct {
	Logger zerolog.Logger
}

func (s LogSink) Publish(_ context.Context, n Notice) error {
	ev := s.Logger.Info()
	if n.Kind == KindWarning {
		ev = s.Logger.Warn()
	}
	ev.Str("kind", string(n.Kind)).Str("title", n.Title).Msg(n.Message)
	return nil
}

// Buffer keeps the most recent notices in memory for display.
type Buffer struct {
	mu      sync.Mutex
	size    int
	notices []Notice
}

// NewBuffer creates a Buffer holding at most size notices.
func NewBuffer(size int) *Buffer {
	if size <= 0 {
		size = 20
	}
	return &Buffer{size: size}
}

func (b *Buffer) Publish(_ context.Context, n Notice) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, n)
	if over := len(b.notices) - b.size; over > 0 {
		b.notices = b.notices[over:]
	}
	return nil
}

// Drain returns buffered notices, oldest first, and empties the buffer.
func (b *Buffer) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	return out
}
