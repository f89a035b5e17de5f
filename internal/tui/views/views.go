// Package views renders the individual dashboard tabs.
package views

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"

	"github.com/asteroid-belt/vidtally/internal/engine"
)

// Command represents a single keyboard command.
type Command struct {
	Key         string
	Description string
}

// ViewCommands represents commands for a specific view.
type ViewCommands struct {
	ViewName string
	Commands []Command
}

// CommandsFromBindings lists the enabled bindings of each group, in order.
func CommandsFromBindings(groups ...[]key.Binding) []Command {
	var cmds []Command
	for _, group := range groups {
		for _, b := range group {
			if !b.Enabled() {
				continue
			}
			h := b.Help()
			cmds = append(cmds, Command{Key: h.Key, Description: h.Desc})
		}
	}
	return cmds
}

// Tab is a dashboard tab that renders from a snapshot.
type Tab interface {
	SetSize(width, height int)
	SetSnapshot(s engine.Snapshot)
	Update(key string)
	View() string
	Commands() ViewCommands
}

// scroller keeps a cursor and viewport offset over n rows.
type scroller struct {
	cursor int
	offset int
	rows   int
	height int
}

func (s *scroller) setRows(n int) {
	s.rows = n
	if s.cursor >= n {
		s.cursor = n - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	s.clamp()
}

func (s *scroller) setHeight(h int) {
	if h < 1 {
		h = 1
	}
	s.height = h
	s.clamp()
}

func (s *scroller) update(key string) {
	switch key {
	case "up", "k":
		s.cursor--
	case "down", "j":
		s.cursor++
	case "home", "g":
		s.cursor = 0
	case "end", "G":
		s.cursor = s.rows - 1
	case "pgup":
		s.cursor -= s.height
	case "pgdown":
		s.cursor += s.height
	}
	if s.cursor >= s.rows {
		s.cursor = s.rows - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	s.clamp()
}

func (s *scroller) clamp() {
	if s.height <= 0 {
		return
	}
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+s.height {
		s.offset = s.cursor - s.height + 1
	}
	if max := s.rows - s.height; s.offset > max {
		s.offset = max
	}
	if s.offset < 0 {
		s.offset = 0
	}
}

// window returns the half-open row range currently visible.
func (s *scroller) window() (int, int) {
	end := s.offset + s.height
	if end > s.rows {
		end = s.rows
	}
	return s.offset, end
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func since(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("Jan 2")
	}
}

var iconGlyphs = map[string]string{
	"badge-check":    "✔",
	"badge-plus":     "✚",
	"award":          "✪",
	"badge":          "●",
	"trophy":         "♛",
	"star":           "★",
	"calendar-check": "▦",
	"check-check":    "✔✔",
}

func glyph(icon string) string {
	if g, ok := iconGlyphs[icon]; ok {
		return g
	}
	return "•"
}
