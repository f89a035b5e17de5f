// Package theme provides color theming for the TUI.
package theme

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the color palette for the TUI.
type Theme struct {
	// Primary colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Accent    lipgloss.AdaptiveColor

	// Background colors
	Background lipgloss.AdaptiveColor
	Surface    lipgloss.AdaptiveColor
	Overlay    lipgloss.AdaptiveColor

	// Text colors
	Text          lipgloss.AdaptiveColor
	TextMuted     lipgloss.AdaptiveColor
	TextHighlight lipgloss.AdaptiveColor

	// Semantic colors
	Success lipgloss.AdaptiveColor
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	Info    lipgloss.AdaptiveColor

	// Dashboard colors
	BadgeEarned lipgloss.AdaptiveColor
	BadgeLocked lipgloss.AdaptiveColor
	BarFill     lipgloss.AdaptiveColor
	BarEmpty    lipgloss.AdaptiveColor
	TimerLive   lipgloss.AdaptiveColor
	RankSelf    lipgloss.AdaptiveColor
}

// PunkTheme is the default color scheme.
var PunkTheme = Theme{
	Primary:   lipgloss.AdaptiveColor{Light: "#8B0000", Dark: "#DC143C"}, // Crimson
	Secondary: lipgloss.AdaptiveColor{Light: "#6B3FA0", Dark: "#9B59B6"}, // Purple
	Accent:    lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#F1C40F"}, // Gold

	Background: lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#0D0D0D"},
	Surface:    lipgloss.AdaptiveColor{Light: "#F5F5F5", Dark: "#1A1A1A"},
	Overlay:    lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#2D2D2D"},

	Text:          lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#E5E5E5"},
	TextMuted:     lipgloss.AdaptiveColor{Light: "#6B6B6B", Dark: "#6B6B6B"},
	TextHighlight: lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"},

	Success: lipgloss.AdaptiveColor{Light: "#008000", Dark: "#00FF41"},
	Warning: lipgloss.AdaptiveColor{Light: "#CC5500", Dark: "#FF6B35"},
	Error:   lipgloss.AdaptiveColor{Light: "#CC0033", Dark: "#FF0040"},
	Info:    lipgloss.AdaptiveColor{Light: "#0088CC", Dark: "#00D4FF"},

	BadgeEarned: lipgloss.AdaptiveColor{Light: "#B87A00", Dark: "#F59E0B"}, // Amber
	BadgeLocked: lipgloss.AdaptiveColor{Light: "#9A9A9A", Dark: "#4A4A4A"},
	BarFill:     lipgloss.AdaptiveColor{Light: "#8B0000", Dark: "#DC143C"},
	BarEmpty:    lipgloss.AdaptiveColor{Light: "#E5E5E5", Dark: "#2D2D2D"},
	TimerLive:   lipgloss.AdaptiveColor{Light: "#0D8A5E", Dark: "#10B981"}, // Emerald
	RankSelf:    lipgloss.AdaptiveColor{Light: "#1E5FAA", Dark: "#3B82F6"},
}

// NeonTheme is an alternative synthwave-inspired color scheme.
var NeonTheme = Theme{
	Primary:   lipgloss.AdaptiveColor{Light: "#AA00AA", Dark: "#FF00FF"}, // Magenta
	Secondary: lipgloss.AdaptiveColor{Light: "#008B8B", Dark: "#00FFFF"}, // Cyan
	Accent:    lipgloss.AdaptiveColor{Light: "#B8B800", Dark: "#FFFF00"}, // Yellow

	Background: lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#000000"},
	Surface:    lipgloss.AdaptiveColor{Light: "#F0F0F0", Dark: "#111111"},
	Overlay:    lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#222222"},

	Text:          lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"},
	TextMuted:     lipgloss.AdaptiveColor{Light: "#888888", Dark: "#888888"},
	TextHighlight: lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"},

	Success: lipgloss.AdaptiveColor{Light: "#228B22", Dark: "#39FF14"},
	Warning: lipgloss.AdaptiveColor{Light: "#CC7700", Dark: "#FF9500"},
	Error:   lipgloss.AdaptiveColor{Light: "#CC0022", Dark: "#FF073A"},
	Info:    lipgloss.AdaptiveColor{Light: "#0077BB", Dark: "#00BFFF"},

	BadgeEarned: lipgloss.AdaptiveColor{Light: "#B8B800", Dark: "#FFFF00"},
	BadgeLocked: lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#444444"},
	BarFill:     lipgloss.AdaptiveColor{Light: "#008B8B", Dark: "#00FFFF"},
	BarEmpty:    lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#222222"},
	TimerLive:   lipgloss.AdaptiveColor{Light: "#228B22", Dark: "#39FF14"},
	RankSelf:    lipgloss.AdaptiveColor{Light: "#AA00AA", Dark: "#FF00FF"},
}

// BloodTheme is a dark red and black theme.
var BloodTheme = Theme{
	Primary:   lipgloss.AdaptiveColor{Light: "#660000", Dark: "#8B0000"},
	Secondary: lipgloss.AdaptiveColor{Light: "#8B1A2B", Dark: "#C41E3A"},
	Accent:    lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFD700"},

	Background: lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#0A0000"},
	Surface:    lipgloss.AdaptiveColor{Light: "#FFF5F5", Dark: "#1A0000"},
	Overlay:    lipgloss.AdaptiveColor{Light: "#FFE5E5", Dark: "#2D0000"},

	Text:          lipgloss.AdaptiveColor{Light: "#1A0000", Dark: "#EEEEEE"},
	TextMuted:     lipgloss.AdaptiveColor{Light: "#666666", Dark: "#666666"},
	TextHighlight: lipgloss.AdaptiveColor{Light: "#000000", Dark: "#FFFFFF"},

	Success: lipgloss.AdaptiveColor{Light: "#006600", Dark: "#00AA00"},
	Warning: lipgloss.AdaptiveColor{Light: "#CC8800", Dark: "#FFAA00"},
	Error:   lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF0000"},
	Info:    lipgloss.AdaptiveColor{Light: "#0077AA", Dark: "#00AAFF"},

	BadgeEarned: lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFD700"},
	BadgeLocked: lipgloss.AdaptiveColor{Light: "#999999", Dark: "#3A0000"},
	BarFill:     lipgloss.AdaptiveColor{Light: "#8B1A2B", Dark: "#C41E3A"},
	BarEmpty:    lipgloss.AdaptiveColor{Light: "#FFE5E5", Dark: "#2D0000"},
	TimerLive:   lipgloss.AdaptiveColor{Light: "#006600", Dark: "#00AA00"},
	RankSelf:    lipgloss.AdaptiveColor{Light: "#0077AA", Dark: "#00AAFF"},
}

// Current is the active theme (can be changed at runtime).
var Current = PunkTheme

var byName = map[string]Theme{
	"punk":  PunkTheme,
	"neon":  NeonTheme,
	"blood": BloodTheme,
}

// ByName looks up a theme by case-insensitive name.
func ByName(name string) (Theme, bool) {
	t, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

// Names lists the available theme names in sorted order.
func Names() []string {
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Use makes the named theme current. Unknown names leave Current untouched.
func Use(name string) bool {
	t, ok := ByName(name)
	if ok {
		Current = t
	}
	return ok
}
