package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
)

// Keymap holds the dashboard's global bindings. It satisfies help.KeyMap,
// so the footer and the help screen are both generated from it.
type Keymap struct {
	// List navigation, handled by the tabs themselves.
	Up   key.Binding
	Down key.Binding
	Home key.Binding
	End  key.Binding

	NextTab key.Binding
	PrevTab key.Binding
	JumpTab key.Binding

	Refresh key.Binding
	Timer   key.Binding
	Delete  key.Binding
	Help    key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// DefaultKeymap returns the default key bindings for a dashboard with the
// given number of tabs.
func DefaultKeymap(tabs int) Keymap {
	digits := make([]string, 0, tabs)
	for i := 1; i <= tabs && i <= 9; i++ {
		digits = append(digits, strconv.Itoa(i))
	}
	jumpHelp := "1"
	if len(digits) > 1 {
		jumpHelp = "1-" + digits[len(digits)-1]
	}

	return Keymap{
		Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
		Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
		Home: key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home/g", "go to top")),
		End:  key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end/G", "go to bottom")),

		NextTab: key.NewBinding(key.WithKeys("tab", "right", "l"), key.WithHelp("tab/→", "next tab")),
		PrevTab: key.NewBinding(key.WithKeys("shift+tab", "left", "h"), key.WithHelp("shift+tab/←", "previous tab")),
		JumpTab: key.NewBinding(key.WithKeys(digits...), key.WithHelp(jumpHelp, "jump to tab")),

		Refresh: key.NewBinding(key.WithKeys("r", "s"), key.WithHelp("r", "sync")),
		Timer:   key.NewBinding(key.WithKeys("p", " "), key.WithHelp("p/space", "pause/resume")),
		Delete:  key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "forget progress")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Back:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp is rendered in the footer.
func (k Keymap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextTab, k.Refresh, k.Timer, k.Help, k.Quit}
}

// FullHelp is rendered on the help screen as the global commands.
func (k Keymap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextTab, k.PrevTab, k.JumpTab},
		{k.Up, k.Down, k.Home, k.End},
		{k.Refresh, k.Timer, k.Help, k.Quit},
	}
}

// tabIndex returns the zero-based tab selected by a JumpTab key.
func tabIndex(keyName string) (int, bool) {
	if len(keyName) != 1 || keyName[0] < '1' || keyName[0] > '9' {
		return 0, false
	}
	return int(keyName[0] - '1'), true
}
