package views

import (
	"fmt"
	"strings"

	"github.com/asteroid-belt/vidtally/internal/achievements"
	"github.com/asteroid-belt/vidtally/internal/engine"
	"github.com/asteroid-belt/vidtally/internal/models"
	"github.com/asteroid-belt/vidtally/internal/tui/theme"
	"github.com/charmbracelet/lipgloss"
)

// BadgesView shows every achievement, earned or locked.
type BadgesView struct {
	width  int
	height int
	badges []models.Achievement
	list   scroller
}

// NewBadgesView creates the badges tab.
func NewBadgesView() *BadgesView {
	return &BadgesView{}
}

// SetSize sets the width and height of the view.
func (v *BadgesView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.list.setHeight((height - 4) / 2)
}

// SetSnapshot replaces the rendered state.
func (v *BadgesView) SetSnapshot(s engine.Snapshot) {
	v.badges = s.Badges
	v.list.setRows(len(v.badges))
}

// Update moves the cursor.
func (v *BadgesView) Update(key string) {
	v.list.update(key)
}

// Commands lists badge key bindings.
func (v *BadgesView) Commands() ViewCommands {
	return ViewCommands{
		ViewName: "Badges",
		Commands: []Command{
			{Key: "↑/↓, j/k", Description: "Scroll badges"},
		},
	}
}

// View renders the badge list.
func (v *BadgesView) View() string {
	t := theme.Current
	earnedStyle := lipgloss.NewStyle().Foreground(t.BadgeEarned).Bold(true)
	lockedStyle := lipgloss.NewStyle().Foreground(t.BadgeLocked)
	desc := lipgloss.NewStyle().Foreground(t.TextMuted)

	earned := 0
	for _, b := range v.badges {
		if b.Earned {
			earned++
		}
	}

	lines := []string{
		lipgloss.NewStyle().Foreground(t.Accent).Bold(true).
			Render(fmt.Sprintf("Badges %d / %d", earned, len(v.badges))),
		"",
	}

	start, end := v.list.window()
	for i := start; i < end; i++ {
		b := v.badges[i]
		icon := "•"
		if r, ok := achievements.RuleFor(b.ID); ok {
			icon = glyph(r.Icon)
		}

		if b.Earned {
			when := ""
			if b.EarnedAt != nil {
				when = desc.Render("  earned " + b.EarnedAt.Local().Format("2006-01-02"))
			}
			lines = append(lines, earnedStyle.Render(fmt.Sprintf("%-3s%s", icon, b.Name))+when)
		} else {
			lines = append(lines, lockedStyle.Render(fmt.Sprintf("%-3s%s", "·", b.Name)))
		}
		lines = append(lines, desc.Render("   "+b.Description))
	}

	return lipgloss.NewStyle().Padding(1, 2).Render(strings.Join(lines, "\n"))
}
