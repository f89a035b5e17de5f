package design

// Color constants for the logo
const (
	// LogoColorPrimary is the main red color for the wordmark
	LogoColorPrimary = "#DC143C"
	// LogoColorAccent is the gold/amber accent color
	LogoColorAccent = "#D4A84B"
)

// Tagline is printed under the wordmark.
const Tagline = "WATCH PROGRESS • USAGE • BADGES • LEADERBOARD"

// VidtallyLogo is the block wordmark.
const VidtallyLogo = `
██╗   ██╗██╗██████╗ ████████╗ █████╗ ██╗     ██╗     ██╗   ██╗
██║   ██║██║██╔══██╗╚══██╔══╝██╔══██╗██║     ██║     ╚██╗ ██╔╝
██║   ██║██║██║  ██║   ██║   ███████║██║     ██║      ╚████╔╝
╚██╗ ██╔╝██║██║  ██║   ██║   ██╔══██║██║     ██║       ╚██╔╝
 ╚████╔╝ ██║██████╔╝   ██║   ██║  ██║███████╗███████╗   ██║
  ╚═══╝  ╚═╝╚═════╝    ╚═╝   ╚═╝  ╚═╝╚══════╝╚══════╝   ╚═╝`

// VidtallyLogoMinimal is a single-line version for very tight spaces.
const VidtallyLogoMinimal = `VIDTALLY`
