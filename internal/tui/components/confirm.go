package components

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/asteroid-belt/vidtally/internal/tui/theme"
)

// ConfirmDialog asks a yes/no question about one subject, e.g. the video
// whose saved position is about to be forgotten. It starts on "No".
type ConfirmDialog struct {
	title   string
	message string
	subject string
	yes     bool
}

// NewConfirmDialog creates a dialog about subject.
func NewConfirmDialog(title, message, subject string) *ConfirmDialog {
	return &ConfirmDialog{title: title, message: message, subject: subject}
}

// Subject returns what the dialog is about.
func (c *ConfirmDialog) Subject() string {
	return c.subject
}

// Update applies a key press. done reports whether the dialog closed and
// confirmed whether it closed on "Yes".
func (c *ConfirmDialog) Update(key string) (done, confirmed bool) {
	switch key {
	case "left", "right", "h", "l", "tab":
		c.yes = !c.yes
		return false, false
	case "y", "Y":
		return true, true
	case "n", "N", "esc", "q":
		return true, false
	case "enter":
		return true, c.yes
	}
	return false, false
}

// View renders the dialog box.
func (c *ConfirmDialog) View() string {
	t := theme.Current
	idle := lipgloss.NewStyle().Foreground(t.TextMuted).Padding(0, 2)
	focused := idle.Background(t.Accent).Foreground(t.Background).Bold(true)

	button := func(label string, on bool) string {
		if on {
			return "[ " + focused.Render(label) + " ]"
		}
		return "[ " + idle.Render(label) + " ]"
	}
	text := lipgloss.NewStyle().Foreground(t.Text)

	body := lipgloss.JoinVertical(lipgloss.Center,
		text.Bold(true).Render(c.title),
		"",
		text.Render(c.message),
		"",
		button("Yes", c.yes)+" "+button("No", !c.yes),
	)
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Primary).
		Padding(1, 2).
		Render(body)
}

// CenteredView renders the dialog in the middle of a width x height screen.
func (c *ConfirmDialog) CenteredView(width, height int) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, c.View())
}
