// Package ui provides the visual styling and shared widgets for the echomap
// terminal client, with light/dark mode support.
package ui

import (
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"echomap/internal/record"
)

var (
	// Light mode colors
	LightForeground = lipgloss.Color("#101820")
	LightPrimary    = lipgloss.Color("#1a2b4a")
	LightAccent     = lipgloss.Color("#4A90E2")
	LightMuted      = lipgloss.Color("#9aa3ad")
	LightBorder     = lipgloss.Color("#d6dae0")
	LightCard       = lipgloss.Color("#ffffff")

	// Dark mode colors
	DarkForeground = lipgloss.Color("#f2f2f2")
	DarkPrimary    = lipgloss.Color("#8ab4f8")
	DarkAccent     = lipgloss.Color("#4A90E2")
	DarkMuted      = lipgloss.Color("#5c6773")
	DarkBorder     = lipgloss.Color("#2a3850")
	DarkCard       = lipgloss.Color("#1a2536")

	// Semantic colors (same in both modes)
	Destructive = lipgloss.Color("#e53935")
	Success     = lipgloss.Color("#2ECC71")
	Warning     = lipgloss.Color("#FFC107")
)

// emotionColors is the marker palette for the fixed emotion set.
var emotionColors = map[record.Emotion]lipgloss.Color{
	record.EmotionJoy:        lipgloss.Color("#FFD700"),
	record.EmotionLoneliness: lipgloss.Color("#4A90E2"),
	record.EmotionNostalgia:  lipgloss.Color("#9B59B6"),
	record.EmotionLove:       lipgloss.Color("#E74C3C"),
	record.EmotionPeace:      lipgloss.Color("#2ECC71"),
	record.EmotionExcitement: lipgloss.Color("#FF6B6B"),
}

// unknownEmotionColor renders labels outside the fixed set.
var unknownEmotionColor = lipgloss.Color("#888888")

// EmotionColor returns the marker color for an emotion label.
func EmotionColor(e record.Emotion) lipgloss.Color {
	if c, ok := emotionColors[e]; ok {
		return c
	}
	return unknownEmotionColor
}

// Theme holds the current color scheme.
type Theme struct {
	Foreground lipgloss.Color
	Primary    lipgloss.Color
	Accent     lipgloss.Color
	Muted      lipgloss.Color
	Border     lipgloss.Color
	Card       lipgloss.Color
	IsDark     bool
}

// LightTheme returns the light mode theme.
func LightTheme() Theme {
	return Theme{
		Foreground: LightForeground,
		Primary:    LightPrimary,
		Accent:     LightAccent,
		Muted:      LightMuted,
		Border:     LightBorder,
		Card:       LightCard,
		IsDark:     false,
	}
}

// DarkTheme returns the dark mode theme.
func DarkTheme() Theme {
	return Theme{
		Foreground: DarkForeground,
		Primary:    DarkPrimary,
		Accent:     DarkAccent,
		Muted:      DarkMuted,
		Border:     DarkBorder,
		Card:       DarkCard,
		IsDark:     true,
	}
}

// ThemeFor resolves a configured theme name ("light", "dark", anything else
// auto-detects from the terminal).
func ThemeFor(name string) Theme {
	switch name {
	case "light":
		return LightTheme()
	case "dark":
		return DarkTheme()
	}
	return DetectTheme()
}

// DetectTheme guesses the terminal background from COLORFGBG, falling back
// to dark (the app renders a night-time map, dark is the safer default).
func DetectTheme() Theme {
	if v := os.Getenv("COLORFGBG"); v != "" {
		parts := strings.Split(v, ";")
		if len(parts) == 2 {
			if bg, err := strconv.Atoi(parts[1]); err == nil {
				if bg >= 7 && bg != 8 {
					return LightTheme()
				}
			}
		}
	}
	if os.Getenv("ECHOMAP_LIGHT_MODE") == "1" {
		return LightTheme()
	}
	return DarkTheme()
}

// Styles holds all the styled components.
type Styles struct {
	Theme Theme

	Header  lipgloss.Style
	Title   lipgloss.Style
	Badge   lipgloss.Style
	Bold    lipgloss.Style
	Body    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Content lipgloss.Style
	Panel   lipgloss.Style
	Overlay lipgloss.Style
	Prompt  lipgloss.Style
}

// NewStyles builds the style set for a theme.
func NewStyles(theme Theme) Styles {
	return Styles{
		Theme: theme,

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Card).
			Background(theme.Primary).
			Padding(0, 1),
		Title:   lipgloss.NewStyle().Bold(true).Foreground(theme.Primary),
		Badge:   lipgloss.NewStyle().Foreground(theme.Accent).Bold(true),
		Bold:    lipgloss.NewStyle().Bold(true),
		Body:    lipgloss.NewStyle().Foreground(theme.Foreground),
		Muted:   lipgloss.NewStyle().Foreground(theme.Muted),
		Success: lipgloss.NewStyle().Foreground(Success),
		Error:   lipgloss.NewStyle().Foreground(Destructive),
		Content: lipgloss.NewStyle().Padding(0, 1),
		Panel: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		Overlay: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Accent).
			Padding(0, 1),
		Prompt: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(theme.Accent).
			Padding(1, 2),
	}
}

// RenderDivider renders a horizontal rule of the given width.
func (s Styles) RenderDivider(width int) string {
	if width <= 0 {
		return ""
	}
	return s.Muted.Render(strings.Repeat("─", width))
}
